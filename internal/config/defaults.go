package config

const (
	DefaultTopK      = 5
	DefaultMaxEvents = 20
	DefaultOut       = "outputs/scores.parquet"
	DefaultLog       = "outputs/logs/run.log"
)

// Default returns a config with every setting at its default. Reference and
// Stream are left empty and must be supplied.
func Default() *Config {
	return &Config{
		TopK:      DefaultTopK,
		MaxEvents: DefaultMaxEvents,
		Out:       DefaultOut,
		Log:       DefaultLog,
		Vectorizer: VectorizerConfig{
			MaxFeatures:    50000,
			NGramMax:       2,
			MinTokenLength: 2,
			CacheSize:      1024,
		},
	}
}

// ApplyDefaults fills settings a file may have blanked out. TopK, MaxEvents,
// Sleep, MinScore and CacheSize keep explicit zeros since zero is meaningful for them.
func ApplyDefaults(cfg *Config) {
	if cfg.Out == "" {
		cfg.Out = DefaultOut
	}
	if cfg.Log == "" {
		cfg.Log = DefaultLog
	}
	if cfg.Vectorizer.MaxFeatures == 0 {
		cfg.Vectorizer.MaxFeatures = 50000
	}
	if cfg.Vectorizer.NGramMax == 0 {
		cfg.Vectorizer.NGramMax = 2
	}
	if cfg.Vectorizer.MinTokenLength == 0 {
		cfg.Vectorizer.MinTokenLength = 2
	}
}
