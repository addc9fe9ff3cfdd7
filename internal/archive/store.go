package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/pkg/models"
)

const defaultFileMode os.FileMode = 0o644

// MergeReport describes the archive after a merge
type MergeReport struct {
	Path       string   `json:"path"`
	Created    bool     `json:"created"`
	Existing   int      `json:"existing"`
	Added      int      `json:"added"`
	Duplicates int      `json:"duplicates"`
	Total      int      `json:"total"`
	Columns    []string `json:"columns"`
	Backfilled []string `json:"backfilled,omitempty"`
}

// Store merges tables into archive files. It is safe for concurrent use;
// merges into the same path are serialized.
type Store struct {
	schema SchemaPolicy
	locks  pathLocks
}

// NewStore creates a store with the given schema policy
func NewStore(schema SchemaPolicy) *Store {
	if schema == "" {
		schema = SchemaReject
	}
	return &Store{schema: schema}
}

// Load reads the archive at path. A missing file is reported with
// exists=false and no error.
func (s *Store) Load(path string) (table *models.Table, exists bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, persistError(path, "open archive", err)
	}
	defer f.Close()

	t, err := CodecFor(path).Decode(f)
	if err != nil {
		return nil, true, persistError(path, "read archive", err)
	}
	return t, true, nil
}

// Merge appends incoming to the archive at path, drops full-row duplicates
// keeping the first occurrence, and replaces the file atomically.
//
// Rows already in the archive come first in their stored order, followed by
// the new rows in scrape order. A table without columns re-deduplicates the
// existing archive.
func (s *Store) Merge(ctx context.Context, path string, incoming *models.Table) (*MergeReport, error) {
	if incoming == nil {
		incoming = &models.Table{}
	}

	unlock := s.locks.lock(path)
	defer unlock()

	existing, exists, err := s.Load(path)
	if err != nil {
		return nil, err
	}

	mode := defaultFileMode
	if exists {
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode().Perm()
		}
	}

	report := &MergeReport{Path: path, Created: !exists}

	var columns []string
	var stored []models.AlertRecord
	switch {
	case exists && len(existing.Columns) > 0 && len(incoming.Columns) > 0:
		columns, report.Backfilled, err = reconcile(s.schema, existing.Columns, incoming.Columns)
		if err != nil {
			return nil, err
		}
		stored = existing.Records
	case exists && len(existing.Columns) > 0:
		columns = existing.Columns
		stored = existing.Records
	case len(incoming.Columns) > 0:
		columns = incoming.Columns
	default:
		return nil, engine.NewEngineError(engine.ErrCodeValidation,
			"nothing to merge: archive and input have no columns", nil)
	}

	merged := &models.Table{Columns: columns, Records: make([]models.AlertRecord, 0, len(stored)+len(incoming.Records))}
	seen := make(map[string]struct{}, len(stored)+len(incoming.Records))

	add := func(rec models.AlertRecord) bool {
		k := rowKey(columns, rec)
		if _, dup := seen[k]; dup {
			report.Duplicates++
			return false
		}
		seen[k] = struct{}{}
		merged.Records = append(merged.Records, rec)
		return true
	}
	for _, rec := range stored {
		if add(rec) {
			report.Existing++
		}
	}
	for _, rec := range incoming.Records {
		if add(rec) {
			report.Added++
		}
	}
	report.Total = len(merged.Records)
	report.Columns = columns

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	codec := CodecFor(path)
	if err := writeAtomic(path, mode, func(w io.Writer) error {
		return codec.Encode(w, merged)
	}); err != nil {
		return nil, persistError(path, "write archive", err)
	}

	log.Debug().
		Str("path", path).
		Int("existing", report.Existing).
		Int("added", report.Added).
		Int("duplicates", report.Duplicates).
		Int("total", report.Total).
		Msg("Archive merged")

	return report, nil
}

// Dedup removes duplicate rows from an existing archive in place
func (s *Store) Dedup(ctx context.Context, path string) (*MergeReport, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, persistError(path, "open archive", err)
	}
	return s.Merge(ctx, path, nil)
}

// rowKey joins cells in column order with a separator that cannot appear
// in scraped text. Missing cells compare equal to empty ones.
func rowKey(columns []string, rec models.AlertRecord) string {
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(rec[col])
	}
	return b.String()
}

func persistError(path, op string, err error) error {
	return engine.NewEngineError(engine.ErrCodePersistError, fmt.Sprintf("%s %s", op, path), err).
		WithDetail("path", path)
}
