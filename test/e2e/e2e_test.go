package e2e

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/simstream/internal/config"
	"github.com/hyperjump/simstream/internal/evaluate"
	"github.com/hyperjump/simstream/internal/models"
	"github.com/hyperjump/simstream/internal/persist"
	"github.com/hyperjump/simstream/internal/pipeline"
	"github.com/hyperjump/simstream/internal/storage"
)

const e2eTopK = 5

var e2eClock = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }

func e2eConfig(t *testing.T, reference, stream string, maxEvents int) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Reference = reference
	cfg.Stream = stream
	cfg.TopK = e2eTopK
	cfg.MaxEvents = maxEvents
	cfg.MinScore = 0.1
	cfg.Out = filepath.Join(dir, "outputs", "scores.parquet")
	cfg.Log = filepath.Join(dir, "outputs", "logs", "run.log")
	return cfg
}

func runE2E(t *testing.T, cfg *config.Config, opts ...pipeline.JobOption) []persist.ScoreRow {
	t.Helper()
	opts = append([]pipeline.JobOption{pipeline.WithJobClock(e2eClock)}, opts...)
	if _, err := pipeline.Execute(context.Background(), cfg, opts...); err != nil {
		t.Fatalf("execute: %v", err)
	}
	rows, err := persist.ReadScores(cfg.Out)
	if err != nil {
		t.Fatalf("read scores: %v", err)
	}
	return rows
}

func TestE2E_StreamRanksExpectedItems(t *testing.T) {
	corpus := BuildCorpus()
	if corpus.TotalItems == 0 || corpus.TotalEvents == 0 {
		t.Fatal("corpus is empty")
	}

	for _, ext := range SupportedTableExtensions {
		ext := ext
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			reference, err := WriteReference(dir, ext, corpus.Items)
			if err != nil {
				t.Fatal(err)
			}
			stream, err := WriteStream(dir, ext, corpus.Events())
			if err != nil {
				t.Fatal(err)
			}

			rows := runE2E(t, e2eConfig(t, reference, stream, corpus.TotalEvents))
			if len(rows) != corpus.TotalEvents {
				t.Fatalf("expected %d rows, got %d", corpus.TotalEvents, len(rows))
			}
			t.Logf("scored %d events against %d items", len(rows), corpus.TotalItems)

			for i, tc := range corpus.TestCases {
				row := rows[i]
				if row.EventID != tc.Event.EventID {
					t.Fatalf("row %d: event_id = %q, want %q", i, row.EventID, tc.Event.EventID)
				}
				if len(row.TopKIDs) != len(row.TopKScores) || len(row.TopKIDs) > e2eTopK {
					t.Errorf("%s: %d ids, %d scores", tc.Description, len(row.TopKIDs), len(row.TopKScores))
				}
				for j := 1; j < len(row.TopKScores); j++ {
					if row.TopKScores[j] > row.TopKScores[j-1] {
						t.Errorf("%s: scores not non-increasing: %v", tc.Description, row.TopKScores)
						break
					}
				}
				if tc.OffTopic {
					if row.Top1Score != 0 || row.IsMatch {
						t.Errorf("%s: top1_score = %v, is_match = %v", tc.Description, row.Top1Score, row.IsMatch)
					}
					continue
				}
				if len(row.TopKIDs) == 0 || row.TopKIDs[0] != tc.ExpectedItemID {
					t.Errorf("%s: got ranking %v", tc.Description, row.TopKIDs)
				}
				if !row.IsMatch {
					t.Errorf("%s: expected a match, top1_score = %v", tc.Description, row.Top1Score)
				}
			}
		})
	}
}

func TestE2E_SelfSimilarity(t *testing.T) {
	corpus := BuildCorpus()
	dir := t.TempDir()
	reference, err := WriteReference(dir, ".csv", corpus.Items)
	if err != nil {
		t.Fatal(err)
	}
	events := make([]models.Event, len(corpus.Items))
	for i, it := range corpus.Items {
		events[i] = models.Event{EventID: "self-" + it.ItemID, Text: it.Text}
	}
	stream, err := WriteStream(dir, ".csv", events)
	if err != nil {
		t.Fatal(err)
	}

	rows := runE2E(t, e2eConfig(t, reference, stream, len(events)))
	for i, row := range rows {
		if row.TopKIDs[0] != corpus.Items[i].ItemID {
			t.Errorf("event %s: top1 = %s", row.EventID, row.TopKIDs[0])
		}
		if diff := row.Top1Score - 1; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("event %s: top1_score = %v, want 1", row.EventID, row.Top1Score)
		}
	}
}

func TestE2E_CatsAndDogs(t *testing.T) {
	dir := t.TempDir()
	reference, err := WriteReference(dir, ".csv", []models.ReferenceItem{
		{ItemID: "A", Text: "cats and dogs"},
		{ItemID: "B", Text: "rockets and space"},
	})
	if err != nil {
		t.Fatal(err)
	}
	stream, err := WriteStream(dir, ".csv", []models.Event{{EventID: "q", Text: "dogs and cats"}})
	if err != nil {
		t.Fatal(err)
	}
	cfg := e2eConfig(t, reference, stream, 1)
	cfg.TopK = 1

	rows := runE2E(t, cfg)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if len(rows[0].TopKIDs) != 1 || rows[0].TopKIDs[0] != "A" {
		t.Errorf("ranking = %v, want [A]", rows[0].TopKIDs)
	}
	if rows[0].Top1Score <= 0.9 {
		t.Errorf("top1_score = %v, want > 0.9", rows[0].Top1Score)
	}
}

func TestE2E_EmptyReference(t *testing.T) {
	dir := t.TempDir()
	reference, err := WriteReference(dir, ".csv", nil)
	if err != nil {
		t.Fatal(err)
	}
	stream, err := WriteStream(dir, ".csv", []models.Event{
		{EventID: "e1", Text: "anything at all"},
		{EventID: "e2", Text: "still nothing"},
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg := e2eConfig(t, reference, stream, 10)
	cfg.MinScore = 0

	rows := runE2E(t, cfg)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if len(row.TopKIDs) != 0 || len(row.TopKScores) != 0 {
			t.Errorf("event %s: ranking = %v %v, want empty", row.EventID, row.TopKIDs, row.TopKScores)
		}
		if row.Top1Score != 0 || row.IsMatch {
			t.Errorf("event %s: top1_score = %v, is_match = %v", row.EventID, row.Top1Score, row.IsMatch)
		}
	}
}

func TestE2E_MaxEventsKeepsInputOrder(t *testing.T) {
	corpus := BuildCorpus()
	dir := t.TempDir()
	reference, err := WriteReference(dir, ".xlsx", corpus.Items)
	if err != nil {
		t.Fatal(err)
	}
	events := corpus.Events()[:10]
	stream, err := WriteStream(dir, ".csv", events)
	if err != nil {
		t.Fatal(err)
	}

	rows := runE2E(t, e2eConfig(t, reference, stream, 4))
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.EventID != events[i].EventID {
			t.Errorf("row %d: event_id = %q, want %q", i, row.EventID, events[i].EventID)
		}
	}
}

func TestE2E_InclusiveThreshold(t *testing.T) {
	corpus := BuildCorpus()
	dir := t.TempDir()
	reference, err := WriteReference(dir, ".csv", corpus.Items)
	if err != nil {
		t.Fatal(err)
	}
	stream, err := WriteStream(dir, ".csv", corpus.Events()[:1])
	if err != nil {
		t.Fatal(err)
	}

	first := runE2E(t, e2eConfig(t, reference, stream, 1))
	threshold := first[0].Top1Score

	cfg := e2eConfig(t, reference, stream, 1)
	cfg.MinScore = threshold
	second := runE2E(t, cfg)
	if second[0].Top1Score != threshold {
		t.Fatalf("top1_score changed between runs: %v != %v", second[0].Top1Score, threshold)
	}
	if !second[0].IsMatch {
		t.Errorf("top1_score %v equal to min_score should match", threshold)
	}
}

func TestE2E_EvaluateAndHistory(t *testing.T) {
	corpus := BuildCorpus()
	dir := t.TempDir()
	reference, err := WriteReference(dir, ".tsv", corpus.Items)
	if err != nil {
		t.Fatal(err)
	}
	stream, err := WriteStream(dir, ".tsv", corpus.Events())
	if err != nil {
		t.Fatal(err)
	}

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cfg := e2eConfig(t, reference, stream, corpus.TotalEvents)
	runE2E(t, cfg, pipeline.WithHistory(store), pipeline.WithRunID("e2e-run"))

	report, err := evaluate.File(cfg.Out)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.Rows != corpus.TotalEvents {
		t.Errorf("report rows = %d, want %d", report.Rows, corpus.TotalEvents)
	}
	wantZero := float64(corpus.OffTopicCount()) / float64(corpus.TotalEvents)
	if diff := report.ZeroTop1Rate - wantZero; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("zero_top1_rate = %v, want %v", report.ZeroTop1Rate, wantZero)
	}
	wantMatch := 1 - wantZero
	if diff := report.MatchRate - wantMatch; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("match_rate = %v, want %v", report.MatchRate, wantMatch)
	}

	run, err := store.GetRun(context.Background(), "e2e-run")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Events != corpus.TotalEvents {
		t.Errorf("run events = %d, want %d", run.Events, corpus.TotalEvents)
	}
	results, err := store.GetResults(context.Background(), "e2e-run")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	if len(results) != corpus.TotalEvents {
		t.Errorf("stored %d results, want %d", len(results), corpus.TotalEvents)
	}
}
