package module

import (
	"context"

	"pulse/internal/services/timeline/domain"
	tlsvc "pulse/internal/services/timeline/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptTimelinePort struct{ svc tlsvc.Service }

// Refresh crawls the walkers and rewrites the stored table
func (a adaptTimelinePort) Refresh(ctx context.Context) (domain.RefreshResult, error) {
	return a.svc.Refresh(ctx)
}

// Activities lists stored activities
func (a adaptTimelinePort) Activities(ctx context.Context, in domain.ActivitiesInput) (domain.ActivitiesPage, error) {
	return a.svc.Activities(ctx, in)
}

// Groups partitions the stored table
func (a adaptTimelinePort) Groups(ctx context.Context, in domain.GroupsInput) (domain.GroupsResult, error) {
	return a.svc.Groups(ctx, in)
}
