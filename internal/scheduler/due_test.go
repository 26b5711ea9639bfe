package scheduler

import (
	"testing"
	"time"

	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/registry"
)

func TestScheduleDueQueuesPendingFutureTasks(t *testing.T) {
	reg := registry.New()
	plot := reg.CreatePlot("Huerto", "Tomate", "", "")
	drafts := []model.TaskItem{
		model.NewTaskItem("Preparar tierra", model.Offset(0)),
		model.NewTaskItem("Sembrar", model.Offset(3)),
		model.NewTaskItem("Primer riego", model.Offset(7)),
		model.NewTaskItem("Observar", nil),
	}
	if err := reg.InstallPlan(plot.ID, drafts, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("install plan: %v", err)
	}
	stored, _ := reg.Plot(plot.ID)
	done := stored.Plan[1]
	done.IsCompleted = true
	if err := reg.UpdateTask(plot.ID, done); err != nil {
		t.Fatalf("update task: %v", err)
	}

	tasks := make([]registry.PlotTask, 0)
	for _, task := range reg.TasksInMonth(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), plot.ID) {
		tasks = append(tasks, registry.PlotTask{Task: task, PlotID: plot.ID, PlotName: "Huerto"})
	}

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(4)
	n, err := ScheduleDue(engine, tasks, 7, now)
	if err != nil {
		t.Fatalf("schedule due: %v", err)
	}
	// Day 0 fired at 07:00 already; day 3 is completed; only day 7 remains.
	if n != 1 || engine.Pending() != 1 {
		t.Fatalf("expected one queued reminder, got n=%d pending=%d", n, engine.Pending())
	}
	next, ok := engine.peek()
	if !ok || next.Text != "Huerto: Primer riego" || next.TriggerAt.Format(time.RFC3339) != "2025-03-08T07:00:00Z" {
		t.Fatalf("unexpected queued reminder: %+v", next)
	}
}

func TestTriggerTimeUsesLocalWallClock(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	got := TriggerTime(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), 7, loc)
	if got.Day() != 8 || got.Hour() != 7 || got.Location() != loc {
		t.Fatalf("unexpected trigger time: %s", got)
	}
}
