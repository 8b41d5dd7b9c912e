/*
Package storage exports generated images to a local directory or an S3-compatible bucket
and records every export in the local ledger.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"zimage/internal/pkg/errs"
)

// Sink is a destination for exported images.
type Sink interface {
	// Name identifies the sink in the export ledger.
	Name() string

	// Put stores data under name and returns where it ended up.
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// LocalSink writes exports into a directory.
type LocalSink struct {
	Dir string
}

// Name implements Sink.
func (s LocalSink) Name() string { return "local" }

// Put writes the file atomically: a temp file in the same directory is renamed into place.
func (s LocalSink) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", errs.Wrap(errs.ErrStorage, err)
	}

	target := s.path(name)
	tmp, err := os.CreateTemp(s.Dir, ".zimage-*")
	if err != nil {
		return "", errs.Wrap(errs.ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errs.Wrap(errs.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return "", errs.Wrap(errs.ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", errs.Wrap(errs.ErrStorage, fmt.Errorf("failed to move export into place: %w", err))
	}

	return target, nil
}

// Stat reports whether name already exists in the directory.
func (s LocalSink) Stat(_ context.Context, name string) (ObjectInfo, bool, error) {
	fi, err := os.Stat(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return ObjectInfo{}, false, nil
	}
	if err != nil {
		return ObjectInfo{}, false, errs.Wrap(errs.ErrStorage, err)
	}
	return ObjectInfo{Location: s.path(name), Size: fi.Size()}, true, nil
}

func (s LocalSink) path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}
