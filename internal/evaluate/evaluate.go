// Package evaluate summarizes a scores table: match rate, share of events with
// no similarity at all, and the distribution of top-1 scores.
package evaluate

import (
	"github.com/hyperjump/simstream/internal/models"
	"github.com/hyperjump/simstream/internal/persist"
	"github.com/hyperjump/simstream/pkg/utils"
)

// Summary describes a sample of scores. Every field is 0 for an empty sample
// and Std is 0 for fewer than two values.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

// Report is the evaluation of one scores table.
type Report struct {
	Rows         int     `json:"rows"`
	MatchRate    float64 `json:"match_rate"`
	ZeroTop1Rate float64 `json:"zero_top1_rate"`
	Top1Score    Summary `json:"top1_score_summary"`
}

// File evaluates the scores file at path.
func File(path string) (*Report, error) {
	rows, err := persist.ReadScores(path)
	if err != nil {
		return nil, err
	}
	return FromRows(rows), nil
}

// FromRows evaluates rows read from a scores file.
func FromRows(rows []persist.ScoreRow) *Report {
	top1 := make([]float64, len(rows))
	matched := make([]bool, len(rows))
	for i, r := range rows {
		top1[i] = r.Top1Score
		matched[i] = r.IsMatch
	}
	return build(top1, matched)
}

// FromResults evaluates in-memory results.
func FromResults(results []models.ScoreResult) *Report {
	top1 := make([]float64, len(results))
	matched := make([]bool, len(results))
	for i := range results {
		top1[i] = results[i].Top1Score
		matched[i] = results[i].IsMatch
	}
	return build(top1, matched)
}

func build(top1 []float64, matched []bool) *Report {
	rep := &Report{Rows: len(top1), Top1Score: Summarize(top1)}
	if rep.Rows == 0 {
		return rep
	}
	var matches, zeros int
	for i, s := range top1 {
		if matched[i] {
			matches++
		}
		if s == 0 {
			zeros++
		}
	}
	rep.MatchRate = float64(matches) / float64(rep.Rows)
	rep.ZeroTop1Rate = float64(zeros) / float64(rep.Rows)
	return rep
}

// Summarize computes count, mean, sample standard deviation and the
// min/25%/50%/75%/max quantiles of x.
func Summarize(x []float64) Summary {
	if len(x) == 0 {
		return Summary{}
	}
	sorted := utils.SortedCopy(x)
	return Summary{
		Count: len(x),
		Mean:  utils.Mean(x),
		Std:   utils.SampleStd(x),
		Min:   sorted[0],
		P25:   utils.Quantile(sorted, 0.25),
		P50:   utils.Quantile(sorted, 0.5),
		P75:   utils.Quantile(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
	}
}
