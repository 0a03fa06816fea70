package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/simstream/internal/models"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
reference: /data/reference.csv
stream: /data/stream.csv
topk: 3
sleep: 0.25
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Reference != "/data/reference.csv" || cfg.Stream != "/data/stream.csv" {
		t.Errorf("unexpected inputs: %q %q", cfg.Reference, cfg.Stream)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.TopK)
	}
	if cfg.MaxEvents != DefaultMaxEvents {
		t.Errorf("MaxEvents = %d, want default %d", cfg.MaxEvents, DefaultMaxEvents)
	}
	if cfg.Delay() != 250*time.Millisecond {
		t.Errorf("Delay = %v", cfg.Delay())
	}
	if cfg.Out != DefaultOut || cfg.Log != DefaultLog {
		t.Errorf("unexpected output paths: %q %q", cfg.Out, cfg.Log)
	}
	if cfg.Vectorizer.MaxFeatures != 50000 || cfg.Vectorizer.CacheSize != 1024 {
		t.Errorf("unexpected vectorizer defaults: %+v", cfg.Vectorizer)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
	"reference": "/r.csv",
	"stream": "/s.csv",
	"max_events": 4,
	"min_score": 0.05,
	"vectorizer": {"cache_size": 0}
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxEvents != 4 || cfg.MinScore != 0.05 {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.TopK != DefaultTopK {
		t.Errorf("TopK = %d, want default", cfg.TopK)
	}
	if cfg.Vectorizer.CacheSize != 0 {
		t.Errorf("explicit cache_size 0 should be kept, got %d", cfg.Vectorizer.CacheSize)
	}
	if cfg.Vectorizer.NGramMax != 2 {
		t.Errorf("NGramMax = %d, want default 2", cfg.Vectorizer.NGramMax)
	}
}

func TestLoad_explicitZeroTopK(t *testing.T) {
	path := writeConfig(t, "config.yaml", "topk: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TopK != 0 {
		t.Errorf("TopK = %d, want 0", cfg.TopK)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
reference: ./data/reference.csv
stream: data/stream.csv
out: ./outputs/scores.parquet
history:
  database_path: ./history.db
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "reference.csv"); cfg.Reference != want {
		t.Errorf("Reference = %q, want %q", cfg.Reference, want)
	}
	if cfg.Stream != "data/stream.csv" {
		t.Errorf("Stream = %q, want unchanged relative path", cfg.Stream)
	}
	if want := filepath.Join(dir, "outputs", "scores.parquet"); cfg.Out != want {
		t.Errorf("Out = %q, want %q", cfg.Out, want)
	}
	if want := filepath.Join(dir, "history.db"); cfg.History.DatabasePath != want {
		t.Errorf("History.DatabasePath = %q, want %q", cfg.History.DatabasePath, want)
	}
	if cfg.Log != DefaultLog {
		t.Errorf("Log = %q, defaults are not rebased", cfg.Log)
	}
}

func TestLoad_notFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var nf *models.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLoad_invalid(t *testing.T) {
	path := writeConfig(t, "config.yaml", "topk: [1, 2\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMerge_overridesWin(t *testing.T) {
	cfg := Default()
	cfg.Reference = "file-ref.csv"
	cfg.TopK = 3
	cfg.MinScore = 0.2

	ref := "cli-ref.csv"
	topk := 7
	Merge(cfg, Overrides{Reference: &ref, TopK: &topk})

	if cfg.Reference != "cli-ref.csv" || cfg.TopK != 7 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.MinScore != 0.2 {
		t.Errorf("MinScore = %v, unset override should keep file value", cfg.MinScore)
	}
}

func TestMerge_zeroOverride(t *testing.T) {
	cfg := Default()
	zero := 0.0
	events := 0
	Merge(cfg, Overrides{Sleep: &zero, MaxEvents: &events})
	if cfg.MaxEvents != 0 {
		t.Errorf("MaxEvents = %d, explicit zero override should win", cfg.MaxEvents)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	var ce *models.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if len(ce.Fields) != 2 || ce.Fields[0] != "reference" || ce.Fields[1] != "stream" {
		t.Errorf("Fields = %v", ce.Fields)
	}

	cfg.Reference = "r.csv"
	cfg.Stream = "s.csv"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cfg.MaxEvents = -1
	if err := cfg.Validate(); !errors.As(err, &ce) {
		t.Errorf("negative max_events should fail, got %v", err)
	}
	cfg.MaxEvents = 1
	cfg.Sleep = -0.5
	if err := cfg.Validate(); !errors.As(err, &ce) {
		t.Errorf("negative sleep should fail, got %v", err)
	}
	cfg.Sleep = 0
	cfg.Vectorizer.NGramMax = 0
	if err := cfg.Validate(); !errors.As(err, &ce) {
		t.Errorf("ngram_max 0 should fail, got %v", err)
	}
}

func TestSave_roundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Reference = "/r.csv"
	cfg.Stream = "/s.csv"
	cfg.MinScore = 0.1
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}
