package gharchive

import (
	"context"
	"errors"
	"io"

	"pulse/internal/adapters/ingest/ghevent"
	"pulse/internal/core/walker"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"
	pstrings "pulse/internal/platform/strings"
)

// WalkerOptions configures NewWalker
type WalkerOptions struct {
	Login string
	Hours []HourRef
	// SkipMissing treats hours the archive has not published yet as empty
	SkipMissing bool
}

// NewWalker returns a walker over login's events in the given archive hours
// all hours are read in one pass on the first range
func NewWalker(f Fetcher, o WalkerOptions) walker.Walker {
	log := logger.Named("gharchive")
	return ghevent.NewWalker("archive", func(ctx context.Context) ([]ghevent.Event, error) {
		var out []ghevent.Event
		for _, h := range o.Hours {
			evs, st, err := readHour(ctx, f, h, o.Login)
			if err != nil {
				if o.SkipMissing && perr.IsCode(err, perr.ErrorCodeNotFound) {
					log.Debug().Str("hour", h.String()).Msg("hour not published, skipping")
					continue
				}
				return nil, err
			}
			log.Debug().Str("hour", h.String()).Int("scanned", st.events).Int("skipped", st.skipped).Int64("bytes", st.bytes).Int("matched", len(evs)).Msg("hour read")
			out = append(out, evs...)
		}
		return out, nil
	})
}

type hourStats struct {
	events, skipped int
	bytes           int64
}

func readHour(ctx context.Context, f Fetcher, h HourRef, login string) ([]ghevent.Event, hourStats, error) {
	var st hourStats
	rc, err := f.Fetch(ctx, h)
	if err != nil {
		return nil, st, err
	}
	rd, err := NewReader(rc)
	if err != nil {
		return nil, st, perr.Wrapf(err, perr.ErrorCodeUnavailable, "gharchive: open %s", h)
	}
	defer func() { _ = rd.Close() }()

	var out []ghevent.Event
	for {
		if err := ctx.Err(); err != nil {
			return nil, st, err
		}
		e, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, st, perr.Wrapf(err, perr.ErrorCodeUnavailable, "gharchive: read %s", h)
		}
		if pstrings.SameHandle(e.Actor.Login, login) {
			out = append(out, e)
		}
	}
	st.events, st.bytes = rd.Stats()
	st.skipped = rd.Skipped()
	return out, st, nil
}
