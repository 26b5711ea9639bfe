package registry

import (
	"sort"
	"time"

	"github.com/sandeepkv93/agroplan/internal/model"
)

// PlotTask is a task together with the plot that owns it.
type PlotTask struct {
	Task     model.TaskItem
	PlotID   string
	PlotName string
}

// TasksOn returns the plot's tasks due on the calendar day of date.
// Unknown plots and plots without a plan yield an empty slice.
func (r *Registry) TasksOn(date time.Time, plotID string) []model.TaskItem {
	return r.filterPlan(plotID, func(due time.Time) bool {
		return model.SameDay(due, date)
	})
}

// TasksInMonth returns the plot's tasks due in the month containing date.
func (r *Registry) TasksInMonth(date time.Time, plotID string) []model.TaskItem {
	return r.filterPlan(plotID, func(due time.Time) bool {
		return model.SameMonth(due, date)
	})
}

// AllTasksInMonth is TasksInMonth across every plot, in plot order.
func (r *Registry) AllTasksInMonth(date time.Time) []PlotTask {
	out := make([]PlotTask, 0)
	for _, id := range r.order {
		plot := r.plots[id]
		for _, task := range r.TasksInMonth(date, id) {
			out = append(out, PlotTask{Task: task, PlotID: id, PlotName: plot.Name})
		}
	}
	return out
}

// NextPendingTask returns the pending dated task with the earliest due date.
// Ties go to the earlier plot, then the earlier task in the plan.
func (r *Registry) NextPendingTask() (PlotTask, bool) {
	pending := r.pendingDated(func(time.Time) bool { return true })
	if len(pending) == 0 {
		return PlotTask{}, false
	}
	return pending[0], true
}

// PendingTasksWithinDays returns pending tasks due between the start of ref's
// day and n days later inclusive, sorted by due date.
func (r *Registry) PendingTasksWithinDays(n int, ref time.Time) []PlotTask {
	from := model.DateOf(ref)
	to := model.AddDays(from, n)
	return r.pendingDated(func(due time.Time) bool {
		return !due.Before(from) && !due.After(to)
	})
}

func (r *Registry) pendingDated(keep func(due time.Time) bool) []PlotTask {
	out := make([]PlotTask, 0)
	for _, id := range r.order {
		plot := r.plots[id]
		for _, task := range plot.Plan {
			if task.IsCompleted || task.DueDate == nil || !keep(*task.DueDate) {
				continue
			}
			out = append(out, PlotTask{Task: task.Clone(), PlotID: id, PlotName: plot.Name})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Task.DueDate.Before(*out[j].Task.DueDate)
	})
	return out
}

func (r *Registry) filterPlan(plotID string, keep func(due time.Time) bool) []model.TaskItem {
	out := make([]model.TaskItem, 0)
	plot, ok := r.plots[plotID]
	if !ok {
		return out
	}
	for _, task := range plot.Plan {
		if task.DueDate != nil && keep(*task.DueDate) {
			out = append(out, task.Clone())
		}
	}
	return out
}
