// Package storage defines the persistence interface for completed runs.
package storage

import (
	"context"

	"github.com/hyperjump/simstream/internal/models"
)

// RunStore records completed runs and their per-event results.
type RunStore interface {
	// Run operations
	RecordRun(ctx context.Context, run *models.Run, results []models.ScoreResult) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, offset, limit int) ([]*models.Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Result operations
	GetResults(ctx context.Context, runID string) ([]models.ScoreResult, error)

	// Stats
	CountRuns(ctx context.Context) (int64, error)
	CountResults(ctx context.Context) (int64, error)

	Close() error
}
