package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/simstream/internal/config"
	"github.com/hyperjump/simstream/internal/models"
	"github.com/hyperjump/simstream/internal/persist"
	"github.com/hyperjump/simstream/internal/storage"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func jobConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	var stream strings.Builder
	stream.WriteString("event_id,text\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&stream, "e%d,dogs and cats %d\n", i, i)
	}

	cfg := config.Default()
	cfg.Reference = writeCSV(t, dir, "reference.csv", "item_id,text\nA,cats and dogs\nB,rockets and space\n")
	cfg.Stream = writeCSV(t, dir, "stream.csv", stream.String())
	cfg.Out = filepath.Join(dir, "outputs", "scores.parquet")
	cfg.Log = filepath.Join(dir, "outputs", "logs", "run.log")
	cfg.MaxEvents = 4
	return cfg
}

func TestExecute_WritesArtifacts(t *testing.T) {
	cfg := jobConfig(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	out, err := Execute(context.Background(), cfg, WithRunID("run-1"), WithJobClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	assert.Equal(t, 4, out.Events)
	assert.Equal(t, 4, out.Matches)
	assert.Equal(t, 2, out.ReferenceRows)
	assert.True(t, strings.HasPrefix(out.ReferenceFingerprint, "sha256:"))

	rows, err := persist.ReadScores(cfg.Out)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.Equal(t, fmt.Sprintf("e%d", i+1), row.EventID)
		assert.Equal(t, "A", row.TopKIDs[0])
		assert.Equal(t, "2024-05-01T12:00:00Z", row.TimestampUTC)
	}

	rc, err := persist.ReadRunConfig(filepath.Join(filepath.Dir(cfg.Out), "run_config.json"))
	require.NoError(t, err)
	assert.Equal(t, "run-1", rc.RunID)
	assert.Equal(t, 4, rc.MaxEvents)
	assert.Greater(t, out.Artifacts.Total(), int64(0))

	logData, err := os.ReadFile(cfg.Log)
	require.NoError(t, err)
	log := string(logData)
	assert.Contains(t, log, " | INFO | run started")
	assert.Contains(t, log, "scored event")
	assert.Contains(t, log, "run finished")
	assert.Equal(t, 4, strings.Count(log, "scored event"))
}

func TestExecute_MissingInput(t *testing.T) {
	cfg := jobConfig(t)
	cfg.Stream = filepath.Join(t.TempDir(), "missing.csv")

	_, err := Execute(context.Background(), cfg)
	var nf *models.NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, "stream file", nf.Kind)

	_, statErr := os.Stat(cfg.Log)
	assert.True(t, os.IsNotExist(statErr), "log should not be opened when inputs are missing")
}

func TestExecute_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	_, err := Execute(context.Background(), cfg)
	var ce *models.ConfigError
	assert.True(t, errors.As(err, &ce), "got %v", err)
}

func TestExecute_SchemaErrorWritesNothing(t *testing.T) {
	cfg := jobConfig(t)
	cfg.Stream = writeCSV(t, filepath.Dir(cfg.Stream), "bad.csv", "id,body\n1,x\n")

	_, err := Execute(context.Background(), cfg)
	var se *models.SchemaError
	require.True(t, errors.As(err, &se), "got %v", err)

	_, statErr := os.Stat(cfg.Out)
	assert.True(t, os.IsNotExist(statErr), "scores must not be written on failure")
	_, statErr = os.Stat(persist.RunConfigPath(cfg.Out))
	assert.True(t, os.IsNotExist(statErr), "run config must not be written on failure")

	logData, err := os.ReadFile(cfg.Log)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "run failed")
}

func TestExecute_RecordsHistory(t *testing.T) {
	cfg := jobConfig(t)
	cfg.History.DatabasePath = filepath.Join(t.TempDir(), "history.db")

	out, err := Execute(context.Background(), cfg)
	require.NoError(t, err)

	store, err := storage.NewSQLiteStorage(cfg.History.DatabasePath)
	require.NoError(t, err)
	defer store.Close()

	run, err := store.GetRun(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.Equal(t, 4, run.Events)
	assert.Equal(t, cfg.Out, run.OutputPath)
	assert.Equal(t, out.ReferenceFingerprint, run.ReferenceFingerprint)

	results, err := store.GetResults(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.Len(t, results, 4)
}

type failingStore struct{ storage.RunStore }

func (failingStore) RecordRun(context.Context, *models.Run, []models.ScoreResult) error {
	return errors.New("disk full")
}

func TestExecute_HistoryFailureKeepsRun(t *testing.T) {
	cfg := jobConfig(t)

	out, err := Execute(context.Background(), cfg, WithHistory(failingStore{}))
	require.NoError(t, err)
	assert.Equal(t, 4, out.Events)

	logData, err := os.ReadFile(cfg.Log)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "history record failed")
}
