// Package repo persists activity tables and group reports
// every backend reads and writes a table wholesale
package repo

import (
	perr "pulse/internal/platform/errors"
)

// Backend names accepted by CORE_TIMELINE_BACKEND
const (
	BackendFile  = "file"
	BackendPG    = "pg"
	BackendRedis = "redis"
)

// ValidTable rejects names that could escape a directory or key namespace
func ValidTable(name string) error {
	if name == "" || len(name) > 64 {
		return perr.Validationf("table", "table name must be 1-64 characters")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return perr.Validationf("table", "table name %q may only hold a-z 0-9 _ -", name)
		}
	}
	return nil
}
