// Package config provides configuration loading and merging for simstream runs.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/simstream/internal/models"
)

// Config holds all settings for a scoring run.
type Config struct {
	Reference string  `yaml:"reference" json:"reference"`
	Stream    string  `yaml:"stream" json:"stream"`
	TopK      int     `yaml:"topk" json:"topk"`
	MaxEvents int     `yaml:"max_events" json:"max_events"`
	Sleep     float64 `yaml:"sleep" json:"sleep"`
	Out       string  `yaml:"out" json:"out"`
	Log       string  `yaml:"log" json:"log"`
	MinScore  float64 `yaml:"min_score" json:"min_score"`
	Debug     bool    `yaml:"debug" json:"debug"`

	Vectorizer VectorizerConfig `yaml:"vectorizer" json:"vectorizer"`
	History    HistoryConfig    `yaml:"history" json:"history"`
}

// VectorizerConfig holds TF-IDF settings.
type VectorizerConfig struct {
	MaxFeatures    int `yaml:"max_features" json:"max_features"`
	NGramMax       int `yaml:"ngram_max" json:"ngram_max"`
	MinTokenLength int `yaml:"min_token_length" json:"min_token_length"`
	CacheSize      int `yaml:"cache_size" json:"cache_size"`
}

// HistoryConfig holds the run history database location. An empty path disables history.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path" json:"database_path"`
}

// Delay returns the pause between events.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Sleep * float64(time.Second))
}

// Load reads the config file at path. Values in the file overlay Default();
// keys the file leaves out keep their defaults. Files ending in .json are
// decoded as JSON, anything else as YAML. Paths starting with "./" are
// resolved against the directory holding the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.NotFoundError{Kind: "config file", Path: path}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	ApplyDefaults(cfg)

	configDir := filepath.Dir(path)
	cfg.Reference = expandPath(cfg.Reference, configDir)
	cfg.Stream = expandPath(cfg.Stream, configDir)
	cfg.Out = expandPath(cfg.Out, configDir)
	cfg.Log = expandPath(cfg.Log, configDir)
	cfg.History.DatabasePath = expandPath(cfg.History.DatabasePath, configDir)

	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Overrides carries caller-supplied values. Nil fields leave the config untouched.
type Overrides struct {
	Reference   *string
	Stream      *string
	TopK        *int
	MaxEvents   *int
	Sleep       *float64
	Out         *string
	Log         *string
	MinScore    *float64
	Debug       *bool
	HistoryPath *string
}

// Merge applies every non-nil override to cfg. Overrides win over file values.
func Merge(cfg *Config, o Overrides) {
	if o.Reference != nil {
		cfg.Reference = *o.Reference
	}
	if o.Stream != nil {
		cfg.Stream = *o.Stream
	}
	if o.TopK != nil {
		cfg.TopK = *o.TopK
	}
	if o.MaxEvents != nil {
		cfg.MaxEvents = *o.MaxEvents
	}
	if o.Sleep != nil {
		cfg.Sleep = *o.Sleep
	}
	if o.Out != nil {
		cfg.Out = *o.Out
	}
	if o.Log != nil {
		cfg.Log = *o.Log
	}
	if o.MinScore != nil {
		cfg.MinScore = *o.MinScore
	}
	if o.Debug != nil {
		cfg.Debug = *o.Debug
	}
	if o.HistoryPath != nil {
		cfg.History.DatabasePath = *o.HistoryPath
	}
}

// Validate checks that the merged config can drive a run.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Reference) == "" {
		missing = append(missing, "reference")
	}
	if strings.TrimSpace(c.Stream) == "" {
		missing = append(missing, "stream")
	}
	if len(missing) > 0 {
		return &models.ConfigError{Fields: missing, Reason: "required"}
	}
	if c.MaxEvents < 0 {
		return &models.ConfigError{Fields: []string{"max_events"}, Reason: "must not be negative"}
	}
	if c.Sleep < 0 {
		return &models.ConfigError{Fields: []string{"sleep"}, Reason: "must not be negative"}
	}
	if c.Out == "" {
		return &models.ConfigError{Fields: []string{"out"}, Reason: "required"}
	}
	if c.Log == "" {
		return &models.ConfigError{Fields: []string{"log"}, Reason: "required"}
	}
	if c.Vectorizer.MaxFeatures < 1 {
		return &models.ConfigError{Fields: []string{"vectorizer.max_features"}, Reason: "must be at least 1"}
	}
	if c.Vectorizer.NGramMax < 1 {
		return &models.ConfigError{Fields: []string{"vectorizer.ngram_max"}, Reason: "must be at least 1"}
	}
	if c.Vectorizer.MinTokenLength < 1 {
		return &models.ConfigError{Fields: []string{"vectorizer.min_token_length"}, Reason: "must be at least 1"}
	}
	return nil
}

// expandPath resolves paths starting with "./" against configDir. Absolute
// and other relative paths are returned unchanged.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	return path
}
