package service

import (
	"context"
	"sync"

	"pulse/internal/core/activity"
	"pulse/internal/services/timeline/domain"
)

// scratch holds saved tables in memory; tables it never saved are read from base
type scratch struct {
	base domain.TableStore

	mu     sync.Mutex
	tables map[string][]activity.Activity
}

func newScratch(base domain.TableStore) *scratch {
	return &scratch{base: base, tables: map[string][]activity.Activity{}}
}

func (s *scratch) Load(ctx context.Context, table string) ([]activity.Activity, error) {
	s.mu.Lock()
	xs, ok := s.tables[table]
	s.mu.Unlock()
	if !ok {
		return s.base.Load(ctx, table)
	}
	return append([]activity.Activity(nil), xs...), nil
}

func (s *scratch) Save(_ context.Context, table string, xs []activity.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append([]activity.Activity(nil), xs...)
	return nil
}
