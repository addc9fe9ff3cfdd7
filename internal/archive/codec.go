package archive

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/law-makers/rasff/pkg/models"
)

// Codec reads and writes an archive in one file format
type Codec interface {
	Decode(r io.Reader) (*models.Table, error)
	Encode(w io.Writer, t *models.Table) error
}

// CodecFor picks the codec from the file extension. Unknown extensions use CSV.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonCodec{}
	case ".tsv", ".tab":
		return csvCodec{comma: '\t'}
	default:
		return csvCodec{comma: ','}
	}
}

// csvCodec stores the header row first and one record per following row
type csvCodec struct {
	comma rune
}

func (c csvCodec) Decode(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = c.comma
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return &models.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		// Spreadsheet tools prepend a byte order mark
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	if err := checkColumns(header); err != nil {
		return nil, err
	}

	t := &models.Table{Columns: header, Records: []models.AlertRecord{}}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Records)+1, err)
		}
		t.Records = append(t.Records, recordFromRow(header, row))
	}
	return t, nil
}

func (c csvCodec) Encode(w io.Writer, t *models.Table) error {
	writer := csv.NewWriter(w)
	writer.Comma = c.comma

	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for i := range t.Records {
		if err := writer.Write(t.Row(i)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// jsonDocument keeps column order explicit, which a JSON object cannot
type jsonDocument struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type jsonCodec struct{}

func (jsonCodec) Decode(r io.Reader) (*models.Table, error) {
	var doc jsonDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return &models.Table{}, nil
		}
		return nil, fmt.Errorf("decode archive: %w", err)
	}

	if err := checkColumns(doc.Columns); err != nil {
		return nil, err
	}

	t := &models.Table{Columns: doc.Columns, Records: make([]models.AlertRecord, 0, len(doc.Rows))}
	for i, row := range doc.Rows {
		if len(row) != len(doc.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i+1, len(row), len(doc.Columns))
		}
		t.Records = append(t.Records, recordFromRow(doc.Columns, row))
	}
	return t, nil
}

func (jsonCodec) Encode(w io.Writer, t *models.Table) error {
	doc := jsonDocument{Columns: t.Columns, Rows: make([][]string, len(t.Records))}
	for i := range t.Records {
		doc.Rows[i] = t.Row(i)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// checkColumns rejects a repeated column name: records are keyed by name,
// so the later cell would overwrite the earlier one on load.
func checkColumns(columns []string) error {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col] {
			return fmt.Errorf("duplicate column %q in header", col)
		}
		seen[col] = true
	}
	return nil
}

func recordFromRow(columns, row []string) models.AlertRecord {
	rec := make(models.AlertRecord, len(columns))
	for i, col := range columns {
		rec[col] = row[i]
	}
	return rec
}
