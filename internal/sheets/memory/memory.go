package memory

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"fincharts/internal/core"
	ports "fincharts/internal/sheets"
)

// SeedFile is the optional ledger grid read by NewFromFiles.
const SeedFile = "seed_ledger.csv"

var _ ports.LedgerReadWriter = (*Store)(nil)

// Store keeps committed ledgers in memory, one per year. Years never written
// read back as sample data, or as the seed grid when one was loaded.
type Store struct {
	mu      sync.Mutex
	catalog *core.Catalog
	seed    *core.LedgerData
	years   map[int]core.LedgerData
	commits int
}

func New(catalog *core.Catalog) *Store {
	return &Store{catalog: catalog, years: make(map[int]core.LedgerData)}
}

// NewFromFiles seeds the store from base/seed_ledger.csv when present. A
// missing or unreadable seed falls back to sample data.
func NewFromFiles(ctx context.Context, base string, catalog *core.Catalog) *Store {
	s := New(catalog)
	rows := readRows(filepath.Join(base, SeedFile))
	if len(rows) == 0 {
		return s
	}
	d, skipped, err := ports.ParseGrid(catalog, 0, rows)
	if err != nil {
		slog.WarnContext(ctx, "Ignoring seed ledger", "path", filepath.Join(base, SeedFile), "error", err)
		return s
	}
	if len(skipped) > 0 {
		slog.WarnContext(ctx, "Seed ledger rows skipped", "categories", skipped)
	}
	s.seed = &d
	return s
}

// ReadLedger returns the last committed ledger for year.
func (s *Store) ReadLedger(_ context.Context, year int) (core.LedgerData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.years[year]; ok {
		return d.Clone(), nil
	}
	if s.seed != nil {
		d := s.seed.Clone()
		d.Year = year
		return d, nil
	}
	return core.SampleData(s.catalog, year), nil
}

// WriteLedger stores the ledger and returns a synthetic commit reference.
func (s *Store) WriteLedger(_ context.Context, d core.LedgerData) (string, error) {
	if err := d.Validate(s.catalog); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years[d.Year] = d.Clone()
	s.commits++
	return fmt.Sprintf("mem:%d", s.commits), nil
}

func readRows(path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil
	}
	return rows
}
