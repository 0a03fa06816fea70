// Package pipeline scores an event stream against a reference corpus and
// drives a complete run from config to persisted artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/simstream/internal/models"
	"github.com/hyperjump/simstream/internal/vector"
	"github.com/hyperjump/simstream/internal/vectorize"
	"github.com/hyperjump/simstream/pkg/utils"
)

// EventSource yields events until it returns io.EOF.
type EventSource interface {
	Next(ctx context.Context) (models.Event, error)
}

// Request is the input to one scoring pass.
type Request struct {
	Reference []models.ReferenceItem
	Events    EventSource
	TopK      int
	MinScore  float64
}

// Runner fits a vectorizer over the reference corpus and scores events one at a time.
type Runner struct {
	vectorizer *vectorize.Vectorizer
	logger     *zap.Logger
	now        func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for per-event progress.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock sets the time source used to stamp results.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner returns a Runner using v for vectorization.
func NewRunner(v *vectorize.Vectorizer, opts ...RunnerOption) *Runner {
	r := &Runner{
		vectorizer: v,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fits the reference corpus once, then scores every event from req.Events
// in order. Any error stops the run and no partial results are returned.
func (r *Runner) Run(ctx context.Context, req Request) ([]models.ScoreResult, error) {
	if req.Events == nil {
		return nil, errors.New("no event source")
	}

	model, err := r.vectorizer.Fit(models.ReferenceTexts(req.Reference))
	if err != nil {
		return nil, fmt.Errorf("fit reference corpus: %w", err)
	}
	ids := models.ReferenceIDs(req.Reference)
	r.logger.Info("reference loaded",
		zap.Int("rows", len(req.Reference)),
		zap.Int("vocabulary", model.VocabularySize()),
		zap.Int("nonzero", model.Matrix().NonZero()),
	)

	results := make([]models.ScoreResult, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, err := req.Events.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read event %d: %w", len(results)+1, err)
		}

		res, err := r.score(model, ids, ev, req.TopK, req.MinScore)
		if err != nil {
			return nil, fmt.Errorf("score event %q: %w", ev.EventID, err)
		}
		results = append(results, res)

		r.logger.Info("scored event",
			zap.String("event_id", res.EventID),
			zap.String("top1_id", res.Top1ID()),
			zap.Float64("top1_score", res.Top1Score),
			zap.Bool("is_match", res.IsMatch),
		)
		r.logger.Debug("event text", zap.String("event_id", res.EventID), zap.String("text", utils.Truncate(res.Text, 120)))
	}

	if cache := model.Cache(); cache != nil {
		hits, misses := cache.Stats()
		r.logger.Debug("transform cache", zap.Int("hits", hits), zap.Int("misses", misses))
	}
	return results, nil
}

func (r *Runner) score(model *vectorize.Model, ids []string, ev models.Event, topK int, minScore float64) (models.ScoreResult, error) {
	q, err := model.Transform(ev.Text)
	if err != nil {
		return models.ScoreResult{}, err
	}
	topIDs, scores, err := vector.Rank(q, model.Matrix(), ids, topK)
	if err != nil {
		return models.ScoreResult{}, err
	}

	matches := make([]models.Match, len(topIDs))
	for i := range topIDs {
		matches[i] = models.Match{ItemID: topIDs[i], Score: scores[i]}
	}
	var top1 float64
	if len(scores) > 0 {
		top1 = scores[0]
	}
	return models.ScoreResult{
		EventID:   ev.EventID,
		Text:      ev.Text,
		Matches:   matches,
		Top1Score: top1,
		IsMatch:   len(scores) > 0 && top1 >= minScore,
		ScoredAt:  r.now().UTC(),
	}, nil
}
