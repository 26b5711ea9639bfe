package storage

import (
	"time"

	"github.com/sandeepkv93/agroplan/internal/model"
)

func plotToRows(p model.Plot, createdAt time.Time) (Plot, []PlanTask) {
	row := Plot{
		ID:            p.ID,
		Name:          p.Name,
		PrimaryCrop:   p.PrimaryCrop,
		SoilType:      p.SoilType,
		Dimension:     p.Dimension,
		HasPlan:       p.HasPlan,
		PlanStartDate: p.PlanStartDate,
		CreatedAt:     createdAt,
	}
	tasks := make([]PlanTask, 0, len(p.Plan))
	for i, task := range p.Plan {
		tasks = append(tasks, taskToRow(p.ID, i, task))
	}
	return row, tasks
}

func taskToRow(plotID string, position int, task model.TaskItem) PlanTask {
	return PlanTask{
		ID:            task.ID,
		PlotID:        plotID,
		Position:      position,
		Text:          task.Text,
		IsCompleted:   task.IsCompleted,
		DueDate:       task.DueDate,
		DaysFromStart: task.DaysFromStart,
	}
}

func plotFromRows(row Plot, tasks []PlanTask) model.Plot {
	out := model.Plot{
		ID:            row.ID,
		Name:          row.Name,
		PrimaryCrop:   row.PrimaryCrop,
		SoilType:      row.SoilType,
		Dimension:     row.Dimension,
		HasPlan:       row.HasPlan,
		PlanStartDate: row.PlanStartDate,
	}
	if row.HasPlan {
		out.Plan = make([]model.TaskItem, 0, len(tasks))
		for _, task := range tasks {
			out.Plan = append(out.Plan, model.TaskItem{
				ID:            task.ID,
				Text:          task.Text,
				IsCompleted:   task.IsCompleted,
				DueDate:       task.DueDate,
				DaysFromStart: task.DaysFromStart,
			})
		}
	}
	return out.Clone()
}
