// Package ingest reads the reference corpus and the event stream from tabular files.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/simstream/internal/models"
)

const utf8BOM = "\ufeff"

// rowSource yields raw records in file order and io.EOF at the end.
type rowSource interface {
	next() ([]string, error)
	close() error
}

// Table is a header plus a forward-only cursor over data rows.
type Table struct {
	path   string
	header []string
	src    rowSource
	row    int
}

// OpenTable opens a tabular file and reads its header. The format is chosen by
// extension: .tsv is tab separated, .xlsx reads the first sheet, anything else
// is parsed as CSV.
func OpenTable(path string) (*Table, error) {
	return openTable(path, "input file")
}

func openTable(path, kind string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.NotFoundError{Kind: kind, Path: path}
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var (
		src rowSource
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		src, err = openXLSX(path)
	case ".tsv":
		src, err = openDelimited(path, '\t')
	default:
		src, err = openDelimited(path, ',')
	}
	if err != nil {
		return nil, err
	}

	header, err := src.next()
	if err == io.EOF {
		header = nil
	} else if err != nil {
		src.close()
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return &Table{path: path, header: header, src: src}, nil
}

// Path returns the file the table was opened from.
func (t *Table) Path() string {
	return t.path
}

// Header returns the column names.
func (t *Table) Header() []string {
	return t.header
}

// Columns returns the position of each named column, or a SchemaError naming
// every one that is absent. When a name repeats in the header the first wins.
func (t *Table) Columns(names ...string) ([]int, error) {
	pos := make(map[string]int, len(t.header))
	for i, h := range t.header {
		if _, ok := pos[h]; !ok {
			pos[h] = i
		}
	}
	idx := make([]int, len(names))
	var missing []string
	for i, name := range names {
		p, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[i] = p
	}
	if len(missing) > 0 {
		return nil, &models.SchemaError{Source: t.path, Missing: missing}
	}
	return idx, nil
}

// Next returns the next data row, or io.EOF when the table is exhausted.
func (t *Table) Next() ([]string, error) {
	rec, err := t.src.next()
	if err == io.EOF {
		return nil, io.EOF
	}
	t.row++
	if err != nil {
		return nil, fmt.Errorf("%s: row %d: %w", t.path, t.row, err)
	}
	return rec, nil
}

// Row returns the 1-based number of the last data row read.
func (t *Table) Row() int {
	return t.row
}

// Close releases the underlying file.
func (t *Table) Close() error {
	return t.src.close()
}

// field returns rec[i] as valid UTF-8, or "" when the row is too short.
func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	v := rec[i]
	if !utf8.ValidString(v) {
		v = strings.ToValidUTF8(v, "\uFFFD")
	}
	return v
}
