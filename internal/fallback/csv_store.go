// Package fallback keeps leads on local disk when the remote sheet is unreachable.
package fallback

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/wolfman30/insurance-leadform/internal/leads"
)

// CSVStore appends lead records to a CSV file, creating it with a header row
// on first use.
type CSVStore struct {
	mu     sync.Mutex
	path   string
	header []string
}

// NewCSVStore returns a store writing to path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path, header: leads.Columns}
}

// Path returns the backing file location.
func (s *CSVStore) Path() string {
	return s.path
}

// syncFile is swapped in tests to simulate a failing disk.
var syncFile = (*os.File).Sync

// Append writes rec as a new row. Existing rows are left untouched. The write
// is local and short, so it runs to completion even if ctx is already done.
func (s *CSVStore) Append(_ context.Context, rec leads.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("fallback: create dir: %w", err)
		}
	}

	rows := [][]string{rec.Row()}
	created := false
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	switch {
	case err == nil:
		created = true
		rows = append([][]string{s.header}, rows...)
	case errors.Is(err, fs.ErrExist):
		f, err = os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("fallback: open %s: %w", s.path, err)
		}
	default:
		return fmt.Errorf("fallback: create %s: %w", s.path, err)
	}

	if err := writeRows(f, rows); err != nil {
		f.Close()
		if created {
			// a headerless or partial file would break every later append
			_ = os.Remove(s.path)
		}
		return fmt.Errorf("fallback: write %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		if created {
			_ = os.Remove(s.path)
		}
		return fmt.Errorf("fallback: close %s: %w", s.path, err)
	}
	return nil
}

func writeRows(f *os.File, rows [][]string) error {
	if err := csv.NewWriter(f).WriteAll(rows); err != nil {
		return err
	}
	return syncFile(f)
}

// ReadAll returns every row in the file, header included. A missing file
// reads as no rows.
func (s *CSVStore) ReadAll() ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fallback: open %s: %w", s.path, err)
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}
