package plan

import (
	"time"

	"github.com/sandeepkv93/agroplan/internal/model"
)

// Resolve returns copies of tasks with DueDate set to start plus
// DaysFromStart calendar days. Tasks without an offset come back undated.
// The input slice is not modified.
func Resolve(tasks []model.TaskItem, start time.Time) []model.TaskItem {
	anchor := model.DateOf(start)
	out := make([]model.TaskItem, 0, len(tasks))
	for _, task := range tasks {
		resolved := task.Clone()
		resolved.DueDate = nil
		if resolved.DaysFromStart != nil {
			due := model.AddDays(anchor, *resolved.DaysFromStart)
			resolved.DueDate = &due
		}
		out = append(out, resolved)
	}
	return out
}
