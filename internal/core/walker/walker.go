// Package walker turns a platform's raw event feed into normalized activities
package walker

import (
	"context"
	"iter"
	"sync/atomic"

	"pulse/internal/core/activity"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"
)

// Walker crawls one platform
// Crawl performs at most one read pass; the returned sequence cannot be restarted
type Walker interface {
	Platform() string
	Crawl(ctx context.Context) iter.Seq2[activity.Activity, error]
}

// ErrCrawlConsumed is yielded when a crawl sequence is ranged over a second time
var ErrCrawlConsumed = perr.New(perr.ErrorCodeConflict, "walker: crawl sequence already consumed")

// FetchFunc performs the single bulk read of raw events
type FetchFunc[E any] func(ctx context.Context) ([]E, error)

// ClassifyFunc maps the i-th raw event to an activity
// ok=false with a nil error means the event is not representable and is skipped
type ClassifyFunc[E any] func(i int, e E) (a activity.Activity, ok bool, err error)

// EventWalker is a Walker assembled from a fetch and a classify step
type EventWalker[E any] struct {
	platform string
	fetch    FetchFunc[E]
	classify ClassifyFunc[E]
	log      logger.Logger
}

// NewEventWalker builds a walker for platform
func NewEventWalker[E any](platform string, fetch FetchFunc[E], classify ClassifyFunc[E]) *EventWalker[E] {
	if platform == "" {
		panic("walker: platform is required")
	}
	if fetch == nil || classify == nil {
		panic("walker: fetch and classify are required")
	}
	return &EventWalker[E]{
		platform: platform,
		fetch:    fetch,
		classify: classify,
		log:      logger.Named("walker").With().Str("platform", platform).Logger(),
	}
}

// Platform implements Walker
func (w *EventWalker[E]) Platform() string { return w.platform }

// Crawl implements Walker
// the fetch happens lazily on the first range; malformed recognized events are
// yielded as errors and the consumer decides whether to keep going
func (w *EventWalker[E]) Crawl(ctx context.Context) iter.Seq2[activity.Activity, error] {
	var used atomic.Bool
	return func(yield func(activity.Activity, error) bool) {
		if !used.CompareAndSwap(false, true) {
			yield(nil, ErrCrawlConsumed)
			return
		}

		events, err := w.fetch(ctx)
		if err != nil {
			yield(nil, perr.WithOp(err, w.platform+".fetch"))
			return
		}

		var produced, skipped, failed int
		defer func() {
			w.log.Debug().
				Int("events", len(events)).
				Int("produced", produced).
				Int("skipped", skipped).
				Int("failed", failed).
				Msg("crawl finished")
		}()

		for i, e := range events {
			a, ok, err := w.classify(i, e)
			switch {
			case err != nil:
				failed++
				if !yield(nil, err) {
					return
				}
			case !ok:
				skipped++
			default:
				produced++
				if !yield(a, nil) {
					return
				}
			}
		}
	}
}

// Slice returns a walker over an in-memory list of already validated activities
func Slice(platform string, xs []activity.Activity) *EventWalker[activity.Activity] {
	return NewEventWalker(platform,
		func(context.Context) ([]activity.Activity, error) { return xs, nil },
		func(_ int, a activity.Activity) (activity.Activity, bool, error) { return a, true, nil },
	)
}

// Collect drains a crawl, stopping at the first error, and sorts newest first
func Collect(seq iter.Seq2[activity.Activity, error]) ([]activity.Activity, error) {
	var out []activity.Activity
	for a, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	activity.Sort(out)
	return out, nil
}

// CollectAll crawls each walker in turn and merges the results newest first
// walkers run sequentially; the first failure aborts the whole collection
func CollectAll(ctx context.Context, walkers ...Walker) ([]activity.Activity, error) {
	sets := make([][]activity.Activity, 0, len(walkers))
	for _, w := range walkers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		xs, err := Collect(w.Crawl(ctx))
		if err != nil {
			return nil, err
		}
		sets = append(sets, xs)
	}
	return activity.Merge(sets...), nil
}
