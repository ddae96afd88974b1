// Package blobsink persists delivered files to local disk, SMB shares or S3.
package blobsink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/target/report-relay/internal/core"
	apperrors "github.com/target/report-relay/internal/errors"
)

var (
	_ core.RemoteShare = (*LocalSink)(nil)
	_ core.Pinger      = (*LocalSink)(nil)
)

// LocalSink writes files below Root. An empty Root accepts absolute paths as-is.
type LocalSink struct {
	root string
}

// NewLocalSink creates a sink rooted at root.
func NewLocalSink(root string) *LocalSink {
	return &LocalSink{root: strings.TrimSpace(root)}
}

// Store writes content to a temp file in the target directory, syncs it and
// renames it into place.
func (s *LocalSink) Store(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return apperrors.SinkError(err, path)
	}
	full, err := s.resolve(path)
	if err != nil {
		return apperrors.SinkError(err, path)
	}
	if err := writeFileAtomic(full, content); err != nil {
		return apperrors.SinkError(err, path)
	}
	return nil
}

// Exists reports whether path exists below the root.
func (s *LocalSink) Exists(_ context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// Ping checks that the root directory exists or can be created.
func (s *LocalSink) Ping(_ context.Context) error {
	if s.root == "" {
		return nil
	}
	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return fmt.Errorf("create sink root: %w", err)
	}
	return nil
}

func (s *LocalSink) resolve(path string) (string, error) {
	clean := filepath.FromSlash(strings.ReplaceAll(strings.TrimSpace(path), `\`, "/"))
	if clean == "" {
		return "", errors.New("empty path")
	}
	if s.root == "" {
		return filepath.Clean(clean), nil
	}
	full := filepath.Join(s.root, clean)
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes sink root", path)
	}
	return full, nil
}

func writeFileAtomic(full string, content []byte) (err error) {
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return errors.Join(fmt.Errorf("write temp file: %w", err), tmp.Close())
	}
	if err := tmp.Sync(); err != nil {
		return errors.Join(fmt.Errorf("sync temp file: %w", err), tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
