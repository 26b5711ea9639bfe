package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	GetPlot(ctx context.Context, id string) (Plot, error)
	DeletePlot(ctx context.Context, id string) error
	ListPlots(ctx context.Context, filter PlotListFilter) ([]Plot, error)

	UpdatePlanTask(ctx context.Context, in PlanTask) error
	ListPlanTasks(ctx context.Context, plotID string) ([]PlanTask, error)

	// SavePlots upserts every plot row and replaces each plan in one
	// transaction. Nothing is written when any plot fails.
	SavePlots(ctx context.Context, plots []PlotRows) error
}
