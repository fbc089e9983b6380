package record

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Column names of the CSV interchange table consumed and produced by the
// machine-translation collaborator.
const (
	ColKey           = "key"
	ColText          = "text"
	ColTag           = "tag"
	ColFile          = "file"
	ColType          = "type"
	ColProtectedText = "protected_text"
	ColTranslated    = "translated"
)

// Row is one line of the interchange table. Optional columns are empty
// when the table was written without them.
type Row struct {
	Key           string
	Text          string
	Tag           string
	File          string
	Type          string
	ProtectedText string
	Translated    string
}

// MTInput returns the column the translation collaborator must consume:
// protected_text when present, text otherwise.
func (r Row) MTInput() string {
	if r.ProtectedText != "" {
		return r.ProtectedText
	}
	return r.Text
}

// Value returns the column a downstream step should treat as the record
// text: translated when present, text otherwise.
func (r Row) Value() string {
	if r.Translated != "" {
		return r.Translated
	}
	return r.Text
}

// Table is an in-memory CSV interchange file. Columns tracks which
// optional columns the file carries so a rewrite preserves its shape.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable builds a table from records with the base column set.
func NewTable(records []Record, withType bool) *Table {
	cols := []string{ColKey, ColText, ColTag, ColFile}
	if withType {
		cols = append(cols, ColType)
	}
	t := &Table{Columns: cols}
	for _, rec := range records {
		t.Rows = append(t.Rows, Row{
			Key:  rec.Key,
			Text: rec.Text,
			Tag:  rec.Tag,
			File: rec.SourcePath,
			Type: rec.UnitType,
		})
	}
	return t
}

// Records converts table rows back into records. The translated column,
// when present, takes precedence over text.
func (t *Table) Records() []Record {
	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, Record{
			Key:        row.Key,
			Text:       row.Value(),
			Tag:        row.Tag,
			SourcePath: row.File,
			SourceText: row.Text,
			UnitType:   row.Type,
		})
	}
	return records
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn appends a column if the table does not carry it yet.
func (t *Table) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// ReadTable loads a CSV interchange file. Unknown columns are ignored;
// missing optional columns leave the corresponding fields empty.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	lines, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("table %s has no header row", path)
	}

	header := lines[0]
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	if _, ok := idx[ColKey]; !ok {
		return nil, fmt.Errorf("table %s missing %q column", path, ColKey)
	}

	t := &Table{Columns: append([]string(nil), header...)}
	cell := func(line []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(line) {
			return ""
		}
		return line[i]
	}

	for _, line := range lines[1:] {
		t.Rows = append(t.Rows, Row{
			Key:           cell(line, ColKey),
			Text:          cell(line, ColText),
			Tag:           cell(line, ColTag),
			File:          cell(line, ColFile),
			Type:          cell(line, ColType),
			ProtectedText: cell(line, ColProtectedText),
			Translated:    cell(line, ColTranslated),
		})
	}

	log.Debug().Str("path", path).Int("rows", len(t.Rows)).Msg("Loaded interchange table")
	return t, nil
}

// Write saves the table, header first, one line per row.
func (t *Table) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row.Line(t.Columns)); err != nil {
			return fmt.Errorf("write table row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush table %s: %w", path, err)
	}
	return nil
}

// Line renders the row in the given column order.
func (r Row) Line(columns []string) []string {
	line := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case ColKey:
			line[i] = r.Key
		case ColText:
			line[i] = r.Text
		case ColTag:
			line[i] = r.Tag
		case ColFile:
			line[i] = r.File
		case ColType:
			line[i] = r.Type
		case ColProtectedText:
			line[i] = r.ProtectedText
		case ColTranslated:
			line[i] = r.Translated
		}
	}
	return line
}

// CountDataRows returns the number of data rows (header excluded) in a
// CSV file, or 0 if the file cannot be read. Used by the resume check.
func CountDataRows(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	lines, err := r.ReadAll()
	if err != nil || len(lines) == 0 {
		return 0
	}
	return len(lines) - 1
}
