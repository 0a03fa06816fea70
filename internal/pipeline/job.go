package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/simstream/internal/config"
	"github.com/hyperjump/simstream/internal/fileid"
	"github.com/hyperjump/simstream/internal/ingest"
	"github.com/hyperjump/simstream/internal/models"
	"github.com/hyperjump/simstream/internal/persist"
	"github.com/hyperjump/simstream/internal/storage"
	"github.com/hyperjump/simstream/internal/vectorize"
	"github.com/hyperjump/simstream/pkg/utils"
)

// Outcome describes a completed run.
type Outcome struct {
	RunID                string
	Results              []models.ScoreResult
	Events               int
	Matches              int
	ReferenceRows        int
	ReferenceFingerprint string
	OutputPath           string
	RunConfigPath        string
	LogPath              string
	Artifacts            storage.ArtifactSizes
	StartedAt            time.Time
	FinishedAt           time.Time
}

type job struct {
	history storage.RunStore
	now     func() time.Time
	runID   string
}

// JobOption configures Execute.
type JobOption func(*job)

// WithHistory records the run in store instead of the database named in the config.
func WithHistory(store storage.RunStore) JobOption {
	return func(j *job) { j.history = store }
}

// WithJobClock sets the time source for run timestamps.
func WithJobClock(now func() time.Time) JobOption {
	return func(j *job) {
		if now != nil {
			j.now = now
		}
	}
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) JobOption {
	return func(j *job) { j.runID = id }
}

// Execute performs a full run described by cfg: it checks the inputs exist,
// opens the run log, scores the stream, and only once every event is scored
// writes the scores file and run config next to it. The run is then recorded
// in the history store if one is configured.
func Execute(ctx context.Context, cfg *config.Config, opts ...JobOption) (*Outcome, error) {
	j := &job{now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	if j.runID == "" {
		j.runID = uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := requireFile(cfg.Reference, "reference file"); err != nil {
		return nil, err
	}
	if err := requireFile(cfg.Stream, "stream file"); err != nil {
		return nil, err
	}

	logger, closeLog, err := utils.NewRunLogger(cfg.Log, cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeLog() }()
	logger = logger.With(zap.String("run_id", j.runID))

	logger.Info("run started",
		zap.String("reference", cfg.Reference),
		zap.String("stream", cfg.Stream),
		zap.Int("topk", cfg.TopK),
		zap.Int("max_events", cfg.MaxEvents),
		zap.Float64("sleep", cfg.Sleep),
		zap.Float64("min_score", cfg.MinScore),
		zap.String("out", cfg.Out),
	)

	out, err := j.run(ctx, cfg, logger)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return nil, err
	}
	logger.Info("run finished",
		zap.Int("events", out.Events),
		zap.Int("matches", out.Matches),
		zap.Duration("elapsed", out.FinishedAt.Sub(out.StartedAt)),
	)
	return out, nil
}

func (j *job) run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Outcome, error) {
	started := j.now().UTC()

	fingerprint, err := fileid.Fingerprint(cfg.Reference)
	if err != nil {
		return nil, err
	}
	reference, err := ingest.ReadReference(cfg.Reference)
	if err != nil {
		return nil, err
	}

	stream, err := ingest.OpenEventStream(cfg.Stream, ingest.StreamOptions{
		MaxEvents: cfg.MaxEvents,
		Delay:     cfg.Delay(),
	})
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	vec, err := vectorize.NewVectorizer(vectorize.Options{
		MaxFeatures:    cfg.Vectorizer.MaxFeatures,
		NGramMax:       cfg.Vectorizer.NGramMax,
		MinTokenLength: cfg.Vectorizer.MinTokenLength,
		CacheSize:      cfg.Vectorizer.CacheSize,
	})
	if err != nil {
		return nil, err
	}
	runner := NewRunner(vec, WithLogger(logger), WithClock(j.now))
	results, err := runner.Run(ctx, Request{
		Reference: reference,
		Events:    stream,
		TopK:      cfg.TopK,
		MinScore:  cfg.MinScore,
	})
	if err != nil {
		return nil, err
	}

	generatedAt := j.now().UTC()
	if err := persist.WriteScores(results, cfg.Out, generatedAt); err != nil {
		return nil, fmt.Errorf("write scores: %w", err)
	}
	runConfigPath := persist.RunConfigPath(cfg.Out)
	if err := persist.WriteRunConfig(cfg, j.runID, runConfigPath, generatedAt); err != nil {
		return nil, err
	}
	artifacts, err := storage.MeasureArtifacts(cfg.Out, runConfigPath)
	if err != nil {
		return nil, fmt.Errorf("measure artifacts: %w", err)
	}
	logger.Info("wrote scores",
		zap.Int("events", len(results)),
		zap.String("path", cfg.Out),
		zap.Int64("bytes", artifacts[cfg.Out]),
	)

	out := &Outcome{
		RunID:                j.runID,
		Results:              results,
		Events:               len(results),
		Matches:              models.CountMatches(results),
		ReferenceRows:        len(reference),
		ReferenceFingerprint: fingerprint,
		OutputPath:           cfg.Out,
		RunConfigPath:        runConfigPath,
		LogPath:              cfg.Log,
		Artifacts:            artifacts,
		StartedAt:            started,
		FinishedAt:           j.now().UTC(),
	}
	j.record(ctx, cfg, out, logger)
	return out, nil
}

// record stores the run in the history database. The scores file is already
// in place at this point, so failures are logged rather than failing the run.
func (j *job) record(ctx context.Context, cfg *config.Config, out *Outcome, logger *zap.Logger) {
	store := j.history
	if store == nil {
		if cfg.History.DatabasePath == "" {
			return
		}
		s, err := storage.NewSQLiteStorage(cfg.History.DatabasePath)
		if err != nil {
			logger.Warn("history unavailable", zap.Error(err))
			return
		}
		defer s.Close()
		store = s
	}

	run := &models.Run{
		ID:                   out.RunID,
		StartedAt:            out.StartedAt,
		FinishedAt:           out.FinishedAt,
		Reference:            cfg.Reference,
		Stream:               cfg.Stream,
		ReferenceFingerprint: out.ReferenceFingerprint,
		ReferenceRows:        out.ReferenceRows,
		TopK:                 cfg.TopK,
		MinScore:             cfg.MinScore,
		Events:               out.Events,
		Matches:              out.Matches,
		OutputPath:           out.OutputPath,
	}
	if err := store.RecordRun(ctx, run, out.Results); err != nil {
		logger.Warn("history record failed", zap.Error(err))
		return
	}
	logger.Debug("history recorded", zap.String("database", cfg.History.DatabasePath))
}

func requireFile(path, kind string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &models.NotFoundError{Kind: kind, Path: path}
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}
