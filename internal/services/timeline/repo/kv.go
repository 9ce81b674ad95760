package repo

import (
	"context"

	"pulse/internal/core/activity"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/store"
)

// KV keeps each table under one key, timeline:<table>
type KV struct{ kv store.KV }

// NewKV wraps a key value store such as redis
func NewKV(kv store.KV) *KV {
	if kv == nil {
		panic("timeline.KV requires a non nil store")
	}
	return &KV{kv: kv}
}

func kvKey(table string) string { return "timeline:" + table }

// Load implements domain.TableStore
func (k *KV) Load(ctx context.Context, table string) ([]activity.Activity, error) {
	if err := ValidTable(table); err != nil {
		return nil, err
	}
	b, err := k.kv.Get(ctx, kvKey(table))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return []activity.Activity{}, nil
	}
	if err != nil {
		return nil, err
	}
	return activity.UnmarshalTable(b, table)
}

// Save implements domain.TableStore
func (k *KV) Save(ctx context.Context, table string, xs []activity.Activity) error {
	if err := ValidTable(table); err != nil {
		return err
	}
	b, err := activity.MarshalTable(xs)
	if err != nil {
		return err
	}
	return k.kv.Set(ctx, kvKey(table), b, 0)
}
