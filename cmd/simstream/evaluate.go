package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperjump/simstream/internal/cli"
	"github.com/hyperjump/simstream/internal/config"
	"github.com/hyperjump/simstream/internal/evaluate"
)

func newEvaluateCommand() *cobra.Command {
	var scoresPath, output string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Summarize a scores file",
		Long:  "Report the match rate, the share of events with a zero top-1 score, and the top-1 score distribution of a scores file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			rep, err := evaluate.File(scoresPath)
			if err != nil {
				return err
			}
			return cli.WriteReport(cmd.OutOrStdout(), rep, format)
		},
	}
	cmd.Flags().StringVar(&scoresPath, "scores", config.DefaultOut, "scores parquet path")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json)")
	return cmd
}
