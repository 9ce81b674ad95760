package repo

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"pulse/internal/core/activity"
	perr "pulse/internal/platform/errors"
)

// File keeps each table as <dir>/<table>.json
type File struct{ dir string }

// NewFile returns a file backed table store rooted at dir
func NewFile(dir string) *File {
	if dir == "" {
		dir = "."
	}
	return &File{dir: dir}
}

func (f *File) path(table string) string { return filepath.Join(f.dir, table+".json") }

// Load implements domain.TableStore
func (f *File) Load(ctx context.Context, table string) ([]activity.Activity, error) {
	if err := ValidTable(table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return []activity.Activity{}, nil
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "timeline: read %s", table)
	}
	return activity.UnmarshalTable(b, table)
}

// Save implements domain.TableStore
// the table is written to a temp file and renamed over the old one
func (f *File) Save(ctx context.Context, table string, xs []activity.Activity) error {
	if err := ValidTable(table); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := activity.MarshalTable(xs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "timeline: mkdir %s", f.dir)
	}
	tmp, err := os.CreateTemp(f.dir, table+".*.tmp")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "timeline: temp file for %s", table)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "timeline: write %s", table)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "timeline: sync %s", table)
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "timeline: close %s", table)
	}
	if err := os.Rename(tmp.Name(), f.path(table)); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "timeline: replace %s", table)
	}
	return nil
}
