package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperjump/simstream/internal/config"
)

// RunConfigFile is the artifact name written next to the scores file.
const RunConfigFile = "run_config.json"

// RunConfig is the resolved configuration of one run as stored on disk.
type RunConfig struct {
	RunID        string  `json:"run_id"`
	Reference    string  `json:"reference"`
	Stream       string  `json:"stream"`
	TopK         int     `json:"topk"`
	MaxEvents    int     `json:"max_events"`
	Sleep        float64 `json:"sleep"`
	Out          string  `json:"out"`
	Log          string  `json:"log"`
	MinScore     float64 `json:"min_score"`
	TimestampUTC string  `json:"timestamp_utc"`

	Vectorizer config.VectorizerConfig `json:"vectorizer"`
}

// RunConfigPath returns where the run config for a scores file at out belongs.
func RunConfigPath(out string) string {
	return filepath.Join(filepath.Dir(out), RunConfigFile)
}

// WriteRunConfig writes cfg as indented JSON to path.
func WriteRunConfig(cfg *config.Config, runID, path string, generatedAt time.Time) error {
	payload := RunConfig{
		RunID:        runID,
		Reference:    cfg.Reference,
		Stream:       cfg.Stream,
		TopK:         cfg.TopK,
		MaxEvents:    cfg.MaxEvents,
		Sleep:        cfg.Sleep,
		Out:          cfg.Out,
		Log:          cfg.Log,
		MinScore:     cfg.MinScore,
		TimestampUTC: generatedAt.UTC().Format(time.RFC3339Nano),
		Vectorizer:   cfg.Vectorizer,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write run config: %w", err)
	}
	return nil
}

// ReadRunConfig loads a run config written by WriteRunConfig.
func ReadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config: %w", err)
	}
	var rc RunConfig
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("parse run config: %w", err)
	}
	return &rc, nil
}
