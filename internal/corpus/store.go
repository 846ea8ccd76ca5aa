// Package corpus persists normalized records as a flat CSV table with
// merge-on-write semantics.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/taoufikbo/preprint-empirical/internal/models"
)

// Store reads and rewrites one corpus file. There is no locking and no
// atomic rename: the tool assumes a single operator, and a crash
// mid-write can corrupt the file (known limitation).
type Store struct {
	path string
	log  *slog.Logger
}

// NewStore builds a store for the given path. A nil logger discards output.
func NewStore(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{path: path, log: log}
}

// Path returns the file the store writes.
func (s *Store) Path() string {
	return s.path
}

// Prepare creates the parent directory. Callers run it up front so an
// unwritable output location fails the run before any network activity.
func (s *Store) Prepare() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return nil
}

// Load reads the persisted table. A missing or empty file yields an
// empty slice, not an error.
func (s *Store) Load() ([]models.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var records []models.Record
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read corpus %s: %w", s.path, err)
	}

	return records, nil
}

// Merge concatenates the existing table with the batch, drops later
// duplicates by id keeping first-occurrence order, and rewrites the
// whole file. Re-merging an identical batch does not grow the corpus.
// It returns the total row count after the merge and how many of the
// batch rows were new.
func (s *Store) Merge(batch []models.Record) (total, added int, err error) {
	existing, err := s.Load()
	if err != nil {
		return 0, 0, err
	}

	merged := dedupe(append(existing, batch...))
	before := len(dedupe(existing))

	if err := s.write(merged); err != nil {
		return 0, 0, err
	}

	s.log.Info("corpus saved",
		slog.String("path", s.path),
		slog.Int("rows", len(merged)),
		slog.Int("added", len(merged)-before),
	)
	return len(merged), len(merged) - before, nil
}

func (s *Store) write(records []models.Record) error {
	if err := s.Prepare(); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create corpus file: %w", err)
	}

	if err := gocsv.MarshalFile(&records, f); err != nil {
		f.Close()
		return fmt.Errorf("write corpus %s: %w", s.path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close corpus file: %w", err)
	}
	return nil
}

// dedupe keeps the first occurrence of every id, preserving order.
func dedupe(records []models.Record) []models.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Sample returns a deterministic subset for dry runs: the records
// sorted by id, truncated to n. The sort key is arbitrary with respect
// to content; it exists for reproducibility, not representativeness.
func Sample(records []models.Record, n int) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if n < 0 {
		n = 0
	}
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}
