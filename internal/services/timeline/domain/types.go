// Package domain holds timeline DTOs and the ports between service, repo and http
package domain

import (
	"time"

	"pulse/internal/core/activity"
)

// DefaultLimit caps list endpoints when no limit is given
const DefaultLimit = 100

// ActivitiesInput filters the stored activity table
type ActivitiesInput struct {
	// Kind takes the $type tag or its short form ("push", "create-tag")
	Kind     string `json:"kind,omitempty" validate:"omitempty,max=64" example:"PushActivity"`
	Platform string `json:"platform,omitempty" validate:"omitempty,max=64" example:"github"`
	Offset   int    `json:"offset,omitempty" validate:"omitempty,min=0" example:"0"`
	Limit    int    `json:"limit,omitempty" validate:"omitempty,min=1,max=1000" example:"100"`
}

// ActivitiesPage is one window of exported records, newest first
type ActivitiesPage struct {
	Items  []activity.Record `json:"items"`
	Total  int               `json:"total"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
}

// GroupsInput partitions the stored table
// Gap overrides the configured gap; accepts go durations plus a d suffix ("15m", "1d")
type GroupsInput struct {
	Gap   string `json:"gap,omitempty" validate:"omitempty,max=32" example:"15m"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=1000" example:"50"`
}

// GroupRow is a reportable view of one collector group
type GroupRow struct {
	Root       string            `json:"root" example:"PushActivity"`
	Platform   string            `json:"platform" example:"github"`
	Repository string            `json:"repository" example:"octocat/hello"`
	Size       int               `json:"size" example:"3"`
	Newest     time.Time         `json:"newest"`
	Oldest     time.Time         `json:"oldest"`
	Span       string            `json:"span" example:"0d 0h 25m"`
	SpanMillis int64             `json:"span_ms" example:"1500000"`
	Items      []activity.Record `json:"items,omitempty"`
}

// GroupsResult carries the groups and the gap that produced them
type GroupsResult struct {
	Gap    string     `json:"gap" example:"15m0s"`
	Groups []GroupRow `json:"groups"`
}

// RefreshResult summarizes one refresh run
type RefreshResult struct {
	RunID      string    `json:"run_id" example:"0f8c1a9e-6f0e-4a59-9d55-3f1b1c0c3a3e"`
	Table      string    `json:"table" example:"activities"`
	Crawled    int       `json:"crawled" example:"42"`
	Added      int       `json:"added" example:"7"`
	Stored     int       `json:"stored" example:"500"`
	Walkers    int       `json:"walkers" example:"2"`
	FinishedAt time.Time `json:"finished_at"`
}
