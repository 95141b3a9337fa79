package storage

import (
	"context"

	"ontokern/internal/model"
)

// Store defines persistence operations for generated kernels and
// ontogenesis runs.
type Store interface {
	Init(ctx context.Context) error
	SaveKernel(ctx context.Context, kernel model.Kernel) error
	GetKernel(ctx context.Context, id string) (model.Kernel, bool, error)
	SavePopulation(ctx context.Context, population model.Population) error
	GetPopulation(ctx context.Context, id string) (model.Population, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveLineage(ctx context.Context, runID string, lineage []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
}
