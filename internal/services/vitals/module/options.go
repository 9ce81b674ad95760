package module

import (
	"time"

	"pulse/internal/adapters/oracle"
	"pulse/internal/adapters/search"
	"pulse/internal/platform/config"
	"pulse/internal/services/vitals/service"
)

// Options holds configuration options for the vitals module
type Options struct {
	Service service.Config
	Search  search.Options
	Oracle  oracle.Options
}

// FromConfig reads CORE_VITALS_, SERVICE_SEARCH_ and SERVICE_ORACLE_ settings
func FromConfig(cfg config.Conf) Options {
	v := cfg.Prefix("CORE_VITALS_")
	s := cfg.Prefix("SERVICE_SEARCH_")
	o := cfg.Prefix("SERVICE_ORACLE_")
	return Options{
		Service: service.Config{
			Subject:     v.MayString("SUBJECT", ""),
			Query:       v.MayString("QUERY", service.DefaultQuery),
			Timeout:     v.MayDuration("TIMEOUT", service.DefaultTimeout),
			MaxEvidence: v.MayInt("MAX_EVIDENCE", service.DefaultMaxEvidence),
		},
		Search: search.Options{
			BaseURL: s.MayString("BASE_URL", search.DefaultBaseURL),
			Key:     s.MayString("KEY", ""),
			CX:      s.MayString("CX", ""),
			Num:     s.MayInt("NUM", 5),
			Timeout: s.MayDuration("TIMEOUT", 10*time.Second),
		},
		Oracle: oracle.Options{
			BaseURL:     o.MayString("BASE_URL", ""),
			MaxTokens:   o.MayInt("MAX_TOKENS", 16),
			Temperature: o.MayFloat64("TEMPERATURE", 0),
			Timeout:     o.MayDuration("TIMEOUT", 30*time.Second),
			MaxRetries:  o.MayInt("RETRIES", 2),
		},
	}
}

// Enabled reports whether a subject and an oracle are configured
func (o Options) Enabled() bool {
	return o.Service.Subject != "" && o.Oracle.BaseURL != ""
}
