// Package registry owns the farmer's plots and their plans. It is the single
// source of truth the rest of the application reads from and subscribes to.
//
// A Registry is not safe for concurrent use; callers that share one across
// goroutines must serialise access themselves.
package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/plan"
)

var ErrNotFound = errors.New("registry: plot not found")

type Registry struct {
	plots     map[string]*model.Plot
	order     []string
	listeners map[int]Listener
	nextSubID int
}

func New() *Registry {
	return &Registry{
		plots:     make(map[string]*model.Plot),
		order:     make([]string, 0),
		listeners: make(map[int]Listener),
	}
}

// CreatePlot does not validate its input; callers are expected to check
// name and crop before calling.
func (r *Registry) CreatePlot(name, crop, soilType, dimension string) model.Plot {
	plot := model.NewPlot(name, crop, soilType, dimension)
	stored := plot.Clone()
	r.plots[plot.ID] = &stored
	r.order = append(r.order, plot.ID)
	r.emit(Event{Kind: EventPlotCreated, PlotID: plot.ID})
	return plot
}

// InstallPlan resolves drafts against start and replaces the plot's plan
// wholesale. It is the only path that sets PlanStartDate.
func (r *Registry) InstallPlan(plotID string, drafts []model.TaskItem, start time.Time) error {
	plot, ok := r.plots[plotID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, plotID)
	}
	anchor := model.DateOf(start)
	plot.Plan = plan.Resolve(drafts, anchor)
	plot.PlanStartDate = &anchor
	plot.HasPlan = true
	r.emit(Event{Kind: EventPlanInstalled, PlotID: plotID})
	return nil
}

// UpdateTask replaces the task with the same id, keeping its position.
// A plot without a plan or an unknown task id is silently ignored.
func (r *Registry) UpdateTask(plotID string, updated model.TaskItem) error {
	plot, ok := r.plots[plotID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, plotID)
	}
	if !plot.HasPlan {
		return nil
	}
	idx := plot.TaskIndex(updated.ID)
	if idx < 0 {
		return nil
	}
	plot.Plan[idx] = updated.Clone()
	r.emit(Event{Kind: EventTaskUpdated, PlotID: plotID, TaskID: updated.ID})
	return nil
}

func (r *Registry) DeletePlot(plotID string) {
	if _, ok := r.plots[plotID]; !ok {
		return
	}
	delete(r.plots, plotID)
	for i, id := range r.order {
		if id == plotID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.emit(Event{Kind: EventPlotDeleted, PlotID: plotID})
}

// Restore inserts previously saved plots exactly as stored, ids included.
// Plots already present are overwritten in place. No events are emitted.
func (r *Registry) Restore(plots ...model.Plot) {
	for _, p := range plots {
		stored := p.Clone()
		if _, exists := r.plots[p.ID]; !exists {
			r.order = append(r.order, p.ID)
		}
		r.plots[p.ID] = &stored
	}
}

func (r *Registry) Plot(plotID string) (model.Plot, bool) {
	plot, ok := r.plots[plotID]
	if !ok {
		return model.Plot{}, false
	}
	return plot.Clone(), true
}

func (r *Registry) Plots() []model.Plot {
	out := make([]model.Plot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.plots[id].Clone())
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}
