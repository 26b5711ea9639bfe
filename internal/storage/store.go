package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/registry"
)

// Store maps domain plots onto a Repository.
type Store struct {
	repo Repository
	now  func() time.Time
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// SavePlot writes the plot and replaces its stored plan.
func (s *Store) SavePlot(ctx context.Context, p model.Plot) error {
	row, tasks := plotToRows(p, s.now().UTC())
	if err := s.repo.SavePlots(ctx, []PlotRows{{Plot: row, Tasks: tasks}}); err != nil {
		return fmt.Errorf("save plot %s: %w", p.ID, err)
	}
	return nil
}

// SavePlots writes all plots in one transaction; on error none are stored.
func (s *Store) SavePlots(ctx context.Context, plots []model.Plot) error {
	now := s.now().UTC()
	batch := make([]PlotRows, 0, len(plots))
	for _, p := range plots {
		row, tasks := plotToRows(p, now)
		batch = append(batch, PlotRows{Plot: row, Tasks: tasks})
	}
	if err := s.repo.SavePlots(ctx, batch); err != nil {
		return fmt.Errorf("save %d plots: %w", len(plots), err)
	}
	return nil
}

// SaveTask updates a single stored task. ErrNotFound is returned when the
// task row does not exist yet.
func (s *Store) SaveTask(ctx context.Context, plotID string, position int, task model.TaskItem) error {
	return s.repo.UpdatePlanTask(ctx, taskToRow(plotID, position, task))
}

// DeletePlot removes the plot. Deleting a plot that was never stored is not
// an error.
func (s *Store) DeletePlot(ctx context.Context, plotID string) error {
	err := s.repo.DeletePlot(ctx, plotID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete plot %s: %w", plotID, err)
	}
	return nil
}

// LoadPlot returns one stored plot with its plan. ErrNotFound is returned
// for an unknown id.
func (s *Store) LoadPlot(ctx context.Context, id string) (model.Plot, error) {
	row, err := s.repo.GetPlot(ctx, id)
	if err != nil {
		return model.Plot{}, fmt.Errorf("get plot %s: %w", id, err)
	}
	return s.withPlan(ctx, row)
}

// LoadPlots returns the stored plots matching filter with their plans, in
// insertion order.
func (s *Store) LoadPlots(ctx context.Context, filter PlotListFilter) ([]model.Plot, error) {
	rows, err := s.repo.ListPlots(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list plots: %w", err)
	}
	out := make([]model.Plot, 0, len(rows))
	for _, row := range rows {
		plot, err := s.withPlan(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, plot)
	}
	return out, nil
}

func (s *Store) withPlan(ctx context.Context, row Plot) (model.Plot, error) {
	tasks, err := s.repo.ListPlanTasks(ctx, row.ID)
	if err != nil {
		return model.Plot{}, fmt.Errorf("list plan for %s: %w", row.ID, err)
	}
	return plotFromRows(row, tasks), nil
}

// LoadInto restores every stored plot into reg and reports how many were
// loaded.
func (s *Store) LoadInto(ctx context.Context, reg *registry.Registry) (int, error) {
	plots, err := s.LoadPlots(ctx, PlotListFilter{})
	if err != nil {
		return 0, err
	}
	reg.Restore(plots...)
	return len(plots), nil
}
