// Package cli provides output writers for the simstream commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperjump/simstream/internal/evaluate"
	"github.com/hyperjump/simstream/internal/fileid"
	"github.com/hyperjump/simstream/internal/models"
	"github.com/hyperjump/simstream/internal/pipeline"
	"github.com/hyperjump/simstream/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteRunSummary prints the two confirmation lines for a finished run.
func WriteRunSummary(w io.Writer, out *pipeline.Outcome) {
	fmt.Fprintf(w, "OK: wrote %d events -> %s\n", out.Events, out.OutputPath)
	fmt.Fprintf(w, "OK: log -> %s\n", out.LogPath)
}

// WriteReport writes an evaluation report to w in the given format.
func WriteReport(w io.Writer, rep *evaluate.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, rep)
	}
	s := rep.Top1Score
	fmt.Fprintf(w, "rows: %d\n", rep.Rows)
	fmt.Fprintf(w, "match_rate: %.3f\n", rep.MatchRate)
	fmt.Fprintf(w, "zero_top1_rate: %.3f\n", rep.ZeroTop1Rate)
	fmt.Fprintln(w, "top1_score_summary:")
	for _, kv := range []struct {
		name  string
		value float64
	}{
		{"count", float64(s.Count)},
		{"mean", s.Mean},
		{"std", s.Std},
		{"min", s.Min},
		{"25%", s.P25},
		{"50%", s.P50},
		{"75%", s.P75},
		{"max", s.Max},
	} {
		fmt.Fprintf(w, "  %s: %.6f\n", kv.name, kv.value)
	}
	return nil
}

// WriteRuns writes a run history listing.
func WriteRuns(w io.Writer, runs []*models.Run, format OutputFormat) error {
	if format == OutputJSON {
		if runs == nil {
			runs = []*models.Run{}
		}
		return writeJSON(w, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-36s  %-20s  %6s  %7s  %-12s  %s\n", "RUN", "STARTED", "EVENTS", "MATCHES", "REFERENCE", "OUTPUT")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %6d  %7d  %-12s  %s\n",
			r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Events, r.Matches,
			fileid.Short(r.ReferenceFingerprint, 12), r.OutputPath)
	}
	return nil
}

type runDetail struct {
	*models.Run
	Results []models.ScoreResult `json:"results"`
}

// WriteRunDetail writes one run with its per-event results.
func WriteRunDetail(w io.Writer, run *models.Run, results []models.ScoreResult, format OutputFormat) error {
	if format == OutputJSON {
		if results == nil {
			results = []models.ScoreResult{}
		}
		return writeJSON(w, runDetail{Run: run, Results: results})
	}
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  started:   %s\n", run.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "  finished:  %s (%s)\n", run.FinishedAt.UTC().Format(time.RFC3339), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "  reference: %s (%d rows, %s)\n", run.Reference, run.ReferenceRows, fileid.Short(run.ReferenceFingerprint, 12))
	fmt.Fprintf(w, "  stream:    %s\n", run.Stream)
	fmt.Fprintf(w, "  topk=%d min_score=%.4f events=%d matches=%d\n", run.TopK, run.MinScore, run.Events, run.Matches)
	fmt.Fprintf(w, "  output:    %s\n\n", run.OutputPath)
	for _, r := range results {
		mark := " "
		if r.IsMatch {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-12s top1=%-12s score=%.4f  %s\n", mark, r.EventID, r.Top1ID(), r.Top1Score, utils.Truncate(r.Text, 60))
	}
	return nil
}
