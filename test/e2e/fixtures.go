package e2e

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/simstream/internal/models"
)

// SupportedTableExtensions lists the input formats the E2E tests write.
var SupportedTableExtensions = []string{".csv", ".tsv", ".xlsx"}

// WriteReference writes items as a reference table with an item_id,text header.
func WriteReference(dir, ext string, items []models.ReferenceItem) (string, error) {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.ItemID, it.Text}
	}
	return WriteTable(filepath.Join(dir, "reference"+ext), []string{"item_id", "text"}, rows)
}

// WriteStream writes events as a stream table with an event_id,text header.
func WriteStream(dir, ext string, events []models.Event) (string, error) {
	rows := make([][]string, len(events))
	for i, ev := range events {
		rows[i] = []string{ev.EventID, ev.Text}
	}
	return WriteTable(filepath.Join(dir, "stream"+ext), []string{"event_id", "text"}, rows)
}

// WriteTable writes header and rows to path in the format implied by its extension
// and returns path.
func WriteTable(path string, header []string, rows [][]string) (string, error) {
	switch filepath.Ext(path) {
	case ".xlsx":
		return path, writeWorkbook(path, header, rows)
	case ".tsv":
		return path, writeDelimited(path, '\t', header, rows)
	case ".csv":
		return path, writeDelimited(path, ',', header, rows)
	default:
		return "", fmt.Errorf("unsupported table extension: %s", filepath.Ext(path))
	}
}

func writeDelimited(path string, comma rune, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = comma
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func writeWorkbook(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cell, &row)
}
