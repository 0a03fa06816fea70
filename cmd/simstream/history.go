package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperjump/simstream/internal/cli"
	"github.com/hyperjump/simstream/internal/config"
	"github.com/hyperjump/simstream/internal/models"
	"github.com/hyperjump/simstream/internal/storage"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath     string
		configPath string
		limit      int
		runID      string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long:  "List runs recorded in the history database, newest first, or show one run with its per-event results.",
		Example: `  simstream history --db outputs/history.db
  simstream history --config simstream.yaml --run 3f0c2a4e-... --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			path, err := historyPath(dbPath, configPath)
			if err != nil {
				return err
			}
			if err := requireExisting(path, "history database"); err != nil {
				return err
			}
			store, err := storage.NewSQLiteStorage(path)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if runID != "" {
				run, err := store.GetRun(ctx, runID)
				if err != nil {
					return err
				}
				results, err := store.GetResults(ctx, runID)
				if err != nil {
					return err
				}
				return cli.WriteRunDetail(cmd.OutOrStdout(), run, results, format)
			}
			runs, err := store.ListRuns(ctx, 0, limit)
			if err != nil {
				return err
			}
			return cli.WriteRuns(cmd.OutOrStdout(), runs, format)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "history database path")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "read the database path from this config file")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "show a single run with its results")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json)")
	return cmd
}

func historyPath(dbPath, configPath string) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return "", err
		}
		if cfg.History.DatabasePath != "" {
			return cfg.History.DatabasePath, nil
		}
	}
	return "", &models.ConfigError{Fields: []string{"history.database_path"}, Reason: "required (use --db or --config)"}
}
