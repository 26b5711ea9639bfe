package scheduler

import (
	"time"

	"github.com/sandeepkv93/agroplan/internal/registry"
)

// TriggerTime is the local wall-clock moment on the task's due day at which
// its reminder fires.
func TriggerTime(due time.Time, hour int, loc *time.Location) time.Time {
	y, m, d := due.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, loc)
}

// ScheduleDue queues one reminder per pending dated task whose trigger time
// is not before now. It returns how many reminders were queued.
func ScheduleDue(engine *Engine, tasks []registry.PlotTask, hour int, now time.Time) (int, error) {
	loc := now.Location()
	scheduled := 0
	for _, pt := range tasks {
		if pt.Task.IsCompleted || pt.Task.DueDate == nil {
			continue
		}
		at := TriggerTime(*pt.Task.DueDate, hour, loc)
		if at.Before(now) {
			continue
		}
		err := engine.Schedule(DueEvent{
			ID:        EventID(pt.PlotID, pt.Task.ID),
			PlotID:    pt.PlotID,
			TaskID:    pt.Task.ID,
			Text:      pt.PlotName + ": " + pt.Task.Text,
			TriggerAt: at,
		})
		if err != nil {
			return scheduled, err
		}
		scheduled++
	}
	return scheduled, nil
}
