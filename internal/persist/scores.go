// Package persist writes and reads run artifacts: the parquet scores table and
// the resolved run configuration.
package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/hyperjump/simstream/internal/models"
)

// parallelism is the number of goroutines parquet-go uses to encode and decode pages.
const parallelism = 1

// ScoreRow is one row of the scores table.
type ScoreRow struct {
	EventID      string    `parquet:"name=event_id, type=BYTE_ARRAY, convertedtype=UTF8" json:"event_id"`
	Text         string    `parquet:"name=text, type=BYTE_ARRAY, convertedtype=UTF8" json:"text"`
	TopKIDs      []string  `parquet:"name=topk_ids, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8" json:"topk_ids"`
	TopKScores   []float64 `parquet:"name=topk_scores, type=LIST, valuetype=DOUBLE" json:"topk_scores"`
	Top1Score    float64   `parquet:"name=top1_score, type=DOUBLE" json:"top1_score"`
	IsMatch      bool      `parquet:"name=is_match, type=BOOLEAN" json:"is_match"`
	ScoredAt     string    `parquet:"name=scored_at, type=BYTE_ARRAY, convertedtype=UTF8" json:"scored_at"`
	TimestampUTC string    `parquet:"name=timestamp_utc, type=BYTE_ARRAY, convertedtype=UTF8" json:"timestamp_utc"`
}

// requiredColumns must be present for a scores file to be readable.
var requiredColumns = []string{"event_id", "top1_score", "is_match"}

// NewScoreRows converts results into table rows stamped with generatedAt.
func NewScoreRows(results []models.ScoreResult, generatedAt time.Time) []ScoreRow {
	ts := generatedAt.UTC().Format(time.RFC3339Nano)
	rows := make([]ScoreRow, len(results))
	for i := range results {
		r := &results[i]
		rows[i] = ScoreRow{
			EventID:      r.EventID,
			Text:         r.Text,
			TopKIDs:      r.MatchIDs(),
			TopKScores:   r.MatchScores(),
			Top1Score:    r.Top1Score,
			IsMatch:      r.IsMatch,
			ScoredAt:     r.ScoredAt.UTC().Format(time.RFC3339Nano),
			TimestampUTC: ts,
		}
	}
	return rows
}

// WriteScores writes results to path as parquet. The table is written to a
// temporary file in the same directory and renamed into place, so an existing
// file at path is left untouched when writing fails.
func WriteScores(results []models.ScoreResult, path string, generatedAt time.Time) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	pw, err := writer.NewParquetWriterFromWriter(tmp, new(ScoreRow), parallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	for _, row := range NewScoreRows(results, generatedAt) {
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", row.EventID, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("move scores into place: %w", err)
	}
	committed = true
	return nil
}

// ReadScores reads a scores file written by WriteScores. A file lacking
// event_id, top1_score or is_match fails with a SchemaError.
func ReadScores(path string) ([]ScoreRow, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &models.NotFoundError{Kind: "scores file", Path: path}
	}
	if err := checkColumns(path); err != nil {
		return nil, err
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open scores: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(ScoreRow), parallelism)
	if err != nil {
		return nil, fmt.Errorf("read parquet footer: %w", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]ScoreRow, n)
	if n == 0 {
		return rows, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	return rows, nil
}

// checkColumns opens path with the file's own schema and reports any required
// column it lacks.
func checkColumns(path string) error {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return fmt.Errorf("open scores: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, parallelism)
	if err != nil {
		return fmt.Errorf("read parquet footer: %w", err)
	}
	defer pr.ReadStop()

	present := make(map[string]bool, len(pr.SchemaHandler.Infos))
	for _, info := range pr.SchemaHandler.Infos {
		present[info.ExName] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &models.SchemaError{Source: path, Missing: missing}
	}
	return nil
}
