package ingest

import (
	"io"

	"github.com/hyperjump/simstream/internal/models"
)

// ReadReference loads the whole reference corpus in file order. The table must
// have item_id and text columns; empty cells become "".
func ReadReference(path string) ([]models.ReferenceItem, error) {
	t, err := openTable(path, "reference file")
	if err != nil {
		return nil, err
	}
	defer t.Close()

	cols, err := t.Columns("item_id", "text")
	if err != nil {
		return nil, err
	}

	var items []models.ReferenceItem
	for {
		rec, err := t.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		items = append(items, models.ReferenceItem{
			ItemID: field(rec, cols[0]),
			Text:   field(rec, cols[1]),
		})
	}
	return items, nil
}
