package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/target/report-relay/internal/core"
	apperrors "github.com/target/report-relay/internal/errors"
)

var (
	_ core.DedupLedger = (*FileLedger)(nil)
	_ core.LedgerStore = (*FileLedgerStore)(nil)
)

// FileLedger is a newline-delimited, append-only list of delivered job ids.
// The file is loaded once at open; every Record is fsynced before the
// in-memory set is updated.
type FileLedger struct {
	path string

	mu    sync.Mutex
	ids   map[string]struct{}
	order []string
}

// OpenFileLedger loads the ledger at path. A missing file is an empty ledger.
func OpenFileLedger(path string) (*FileLedger, error) {
	l := &FileLedger{path: path, ids: make(map[string]struct{})}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return l, nil
		}
		return nil, apperrors.LedgerError(err, "read ledger "+path)
	}

	content := strings.TrimPrefix(string(raw), "\ufeff")
	for _, line := range strings.Split(content, "\n") {
		id := strings.TrimSpace(line)
		if id == "" {
			continue
		}
		if _, seen := l.ids[id]; seen {
			continue
		}
		l.ids[id] = struct{}{}
		l.order = append(l.order, id)
	}
	return l, nil
}

// Path returns the backing file.
func (l *FileLedger) Path() string { return l.path }

// Contains reports whether jobID has been recorded.
func (l *FileLedger) Contains(_ context.Context, jobID string) (bool, error) {
	id, err := validateJobID(jobID)
	if err != nil {
		return false, apperrors.LedgerError(err, "contains")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.ids[id]
	return ok, nil
}

// Record appends jobID. Recording an id that is already present is a no-op.
func (l *FileLedger) Record(_ context.Context, jobID string) error {
	id, err := validateJobID(jobID)
	if err != nil {
		return apperrors.LedgerError(err, "record")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[id]; ok {
		return nil
	}
	if appendErr := l.append(id); appendErr != nil {
		return apperrors.LedgerError(appendErr, "record "+id)
	}
	l.ids[id] = struct{}{}
	l.order = append(l.order, id)
	return nil
}

// List returns the recorded ids in insertion order.
func (l *FileLedger) List(_ context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.order), nil
}

func (l *FileLedger) append(id string) (err error) {
	if dir := filepath.Dir(l.path); dir != "" {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return fmt.Errorf("create ledger dir: %w", mkErr)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close ledger: %w", closeErr))
		}
	}()

	if _, err = f.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	return nil
}

// FileLedgerStore opens file ledgers under a directory, one file per name.
// Ledgers are cached so every caller of a name shares one mutex.
type FileLedgerStore struct {
	dir string

	mu      sync.Mutex
	ledgers map[string]*FileLedger
}

// NewFileLedgerStore creates a store rooted at dir.
func NewFileLedgerStore(dir string) *FileLedgerStore {
	return &FileLedgerStore{dir: dir, ledgers: make(map[string]*FileLedger)}
}

// Open returns the ledger stored at <dir>/<name>.txt.
func (s *FileLedgerStore) Open(_ context.Context, name string) (core.DedupLedger, error) {
	name, err := validateLedgerName(name)
	if err != nil {
		return nil, apperrors.LedgerError(err, "open ledger")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.ledgers[name]; ok {
		return l, nil
	}
	l, err := OpenFileLedger(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return nil, err
	}
	s.ledgers[name] = l
	return l, nil
}
