package module

import (
	"context"

	"pulse/internal/adapters/search"
	"pulse/internal/services/vitals/domain"
	vsvc "pulse/internal/services/vitals/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptVitalsPort struct{ svc vsvc.Service }

// Check runs the diagnostics and reports the result
func (a adaptVitalsPort) Check(ctx context.Context) (domain.Result, error) {
	return a.svc.Check(ctx)
}

// RunDiagnostics reports whether the subject appears to have died
func (a adaptVitalsPort) RunDiagnostics(ctx context.Context) bool {
	return a.svc.RunDiagnostics(ctx)
}

// searchPort adapts the search client to domain.Searcher
type searchPort struct{ c *search.Client }

func (s searchPort) Search(ctx context.Context, q string) ([]domain.Hit, error) {
	rs, err := s.c.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hit, len(rs))
	for i, r := range rs {
		out[i] = domain.Hit{Title: r.Title, Link: r.Link, Snippet: r.Snippet}
	}
	return out, nil
}
