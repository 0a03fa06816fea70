package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/simstream/internal/cli"
	"github.com/hyperjump/simstream/internal/config"
	"github.com/hyperjump/simstream/internal/pipeline"
)

type runFlags struct {
	configPath string
	reference  string
	stream     string
	topK       int
	maxEvents  int
	sleep      float64
	out        string
	log        string
	minScore   float64
	historyDB  string
	debug      bool
}

func newRunCommand() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score a stream of events against a reference corpus",
		Long: `Fit the vectorizer on the reference table (item_id, text), then score each
event of the stream table (event_id, text) and write the results.

Flags given on the command line override values from --config.`,
		Example: `  simstream run --reference data/reference.csv --stream data/stream.csv --topk 3
  simstream run --config simstream.yaml --max-events 100 --min-score 0.05`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveRunConfig(cmd, &f)
			if err != nil {
				return err
			}
			logger := processLogger(cfg.Debug)
			defer logger.Sync()
			logger.Debug("config resolved",
				zap.String("config_path", f.configPath),
				zap.String("reference", cfg.Reference),
				zap.String("stream", cfg.Stream),
			)

			out, err := pipeline.Execute(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			logger.Debug("run complete", zap.String("run_id", out.RunID), zap.Int64("artifact_bytes", out.Artifacts.Total()))
			cli.WriteRunSummary(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "config file (YAML, or JSON by .json extension)")
	flags.StringVar(&f.reference, "reference", "", "reference table with columns item_id,text")
	flags.StringVar(&f.stream, "stream", "", "stream table with columns event_id,text")
	flags.IntVar(&f.topK, "topk", config.DefaultTopK, "number of matches to keep per event")
	flags.IntVar(&f.maxEvents, "max-events", config.DefaultMaxEvents, "maximum number of events to score")
	flags.Float64Var(&f.sleep, "sleep", 0, "seconds to pause between events")
	flags.StringVar(&f.out, "out", config.DefaultOut, "scores parquet path")
	flags.StringVar(&f.log, "log", config.DefaultLog, "run log path")
	flags.Float64Var(&f.minScore, "min-score", 0, "minimum top-1 score counted as a match")
	flags.StringVar(&f.historyDB, "history-db", "", "SQLite database to record the run in")
	flags.BoolVar(&f.debug, "debug", false, "debug logging")
	return cmd
}

// resolveRunConfig loads --config when given and applies every flag the user
// set explicitly on top of it.
func resolveRunConfig(cmd *cobra.Command, f *runFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	var o config.Overrides
	if changed("reference") {
		o.Reference = &f.reference
	}
	if changed("stream") {
		o.Stream = &f.stream
	}
	if changed("topk") {
		o.TopK = &f.topK
	}
	if changed("max-events") {
		o.MaxEvents = &f.maxEvents
	}
	if changed("sleep") {
		o.Sleep = &f.sleep
	}
	if changed("out") {
		o.Out = &f.out
	}
	if changed("log") {
		o.Log = &f.log
	}
	if changed("min-score") {
		o.MinScore = &f.minScore
	}
	if changed("history-db") {
		o.HistoryPath = &f.historyDB
	}
	if changed("debug") {
		o.Debug = &f.debug
	}
	config.Merge(cfg, o)
	return cfg, nil
}
