package domain

import (
	"context"

	"pulse/internal/core/activity"
)

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Refresh(ctx context.Context) (RefreshResult, error)
	Activities(ctx context.Context, in ActivitiesInput) (ActivitiesPage, error)
	Groups(ctx context.Context, in GroupsInput) (GroupsResult, error)
}

// TableStore reads and writes a whole activity table
// Load of a table that was never saved returns an empty slice and no error
type TableStore interface {
	Load(ctx context.Context, table string) ([]activity.Activity, error)
	Save(ctx context.Context, table string, xs []activity.Activity) error
}

// GroupSink receives one report row per group
type GroupSink interface {
	WriteGroups(ctx context.Context, runID, table string, rows []GroupRow) error
}
