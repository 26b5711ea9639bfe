package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/plan"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := model.ParseDate(value)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return out
}

func TestCreatePlotStartsWithoutPlan(t *testing.T) {
	reg := New()
	plot := reg.CreatePlot("Parcela Norte", "Maíz", "Arcilloso", "100x50m")
	if plot.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	stored, ok := reg.Plot(plot.ID)
	if !ok {
		t.Fatal("expected created plot to be stored")
	}
	if stored.HasPlan || stored.Plan != nil || stored.PlanStartDate != nil {
		t.Fatalf("expected no plan on creation: %+v", stored)
	}

	plot.Name = "mutated by caller"
	again, _ := reg.Plot(plot.ID)
	if again.Name != "Parcela Norte" {
		t.Fatalf("caller copy aliased storage: %q", again.Name)
	}
}

func TestCreatePlotIsPermissive(t *testing.T) {
	reg := New()
	plot := reg.CreatePlot("", "", "", "")
	if _, ok := reg.Plot(plot.ID); !ok {
		t.Fatal("registry must not reject blank plots")
	}
}

func TestPlotsKeepInsertionOrder(t *testing.T) {
	reg := New()
	a := reg.CreatePlot("A", "Maíz", "", "")
	b := reg.CreatePlot("B", "Frijol", "", "")
	c := reg.CreatePlot("C", "Papa", "", "")
	reg.DeletePlot(b.ID)

	plots := reg.Plots()
	if len(plots) != 2 || plots[0].ID != a.ID || plots[1].ID != c.ID {
		t.Fatalf("unexpected order: %+v", plots)
	}
}

func TestInstallPlanUnknownPlot(t *testing.T) {
	reg := New()
	err := reg.InstallPlan("missing", plan.Parse("0. Arar"), date(t, "2025-03-01"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInstallPlanSetsStartAndDueDates(t *testing.T) {
	reg := New()
	plot := reg.CreatePlot("Huerto", "Tomate", "Franco", "10x5m")
	start := time.Date(2025, 3, 1, 17, 20, 0, 0, time.UTC)
	drafts := plan.Parse("0. Preparar tierra\nRevisar plagas\n7. Primer riego")

	if err := reg.InstallPlan(plot.ID, drafts, start); err != nil {
		t.Fatalf("install plan: %v", err)
	}
	stored, _ := reg.Plot(plot.ID)
	if !stored.HasPlan || stored.PlanStartDate == nil {
		t.Fatalf("expected plan and start date set together: %+v", stored)
	}
	if got := stored.PlanStartDate.Format(model.DateLayout); got != "2025-03-01" {
		t.Fatalf("unexpected start date: %s", got)
	}
	for _, task := range stored.Plan {
		if task.DaysFromStart == nil {
			if task.DueDate != nil {
				t.Fatalf("undated task received a due date: %+v", task)
			}
			continue
		}
		want := model.AddDays(*stored.PlanStartDate, *task.DaysFromStart)
		if task.DueDate == nil || !task.DueDate.Equal(want) {
			t.Fatalf("due date invariant broken for %q: %v", task.Text, task.DueDate)
		}
	}
	if drafts[0].DueDate != nil {
		t.Fatal("install must not mutate the caller's drafts")
	}
}

func TestInstallPlanOverwrites(t *testing.T) {
	reg := New()
	plot := reg.CreatePlot("Huerto", "Tomate", "", "")
	first := plan.Parse("0. a\n1. b\n2. c")
	second := plan.Parse("0. x\n5. y")

	if err := reg.InstallPlan(plot.ID, first, date(t, "2025-03-01")); err != nil {
		t.Fatalf("first install: %v", err)
	}
	if err := reg.InstallPlan(plot.ID, second, date(t, "2025-04-01")); err != nil {
		t.Fatalf("second install: %v", err)
	}
	stored, _ := reg.Plot(plot.ID)
	if len(stored.Plan) != len(second) {
		t.Fatalf("expected %d tasks after overwrite, got %d", len(second), len(stored.Plan))
	}
	if stored.Plan[0].ID != second[0].ID || stored.PlanStartDate.Format(model.DateLayout) != "2025-04-01" {
		t.Fatalf("unexpected plan after overwrite: %+v", stored)
	}
}

func TestInstallEmptyPlanIsDistinctFromNoPlan(t *testing.T) {
	reg := New()
	plot := reg.CreatePlot("Huerto", "Tomate", "", "")
	if err := reg.InstallPlan(plot.ID, plan.Parse(""), date(t, "2025-03-01")); err != nil {
		t.Fatalf("install: %v", err)
	}
	stored, _ := reg.Plot(plot.ID)
	if !stored.HasPlan || len(stored.Plan) != 0 || stored.PlanStartDate == nil {
		t.Fatalf("expected present-but-empty plan: %+v", stored)
	}
}

func TestUpdateTaskPreservesIdentityAndOrder(t *testing.T) {
	reg := New()
	plot := reg.CreatePlot("Huerto", "Tomate", "", "")
	if err := reg.InstallPlan(plot.ID, plan.Parse("0. a\n1. b\n2. c"), date(t, "2025-03-01")); err != nil {
		t.Fatalf("install: %v", err)
	}
	before, _ := reg.Plot(plot.ID)

	target := before.Plan[1]
	target.IsCompleted = true
	target.Text = "b (hecho)"
	if err := reg.UpdateTask(plot.ID, target); err != nil {
		t.Fatalf("update: %v", err)
	}

	after, _ := reg.Plot(plot.ID)
	if len(after.Plan) != 3 {
		t.Fatalf("unexpected plan length: %d", len(after.Plan))
	}
	for i := range before.Plan {
		if after.Plan[i].ID != before.Plan[i].ID {
			t.Fatalf("order changed at %d", i)
		}
	}
	if !after.Plan[1].IsCompleted || after.Plan[1].Text != "b (hecho)" {
		t.Fatalf("target not updated: %+v", after.Plan[1])
	}
	if after.Plan[0].IsCompleted || after.Plan[2].IsCompleted || after.Plan[0].Text != "a" {
		t.Fatalf("other tasks changed: %+v", after.Plan)
	}
	if !after.PlanStartDate.Equal(*before.PlanStartDate) {
		t.Fatal("update must not touch the plan start date")
	}
}

func TestUpdateTaskTolerantNoOps(t *testing.T) {
	reg := New()
	plot := reg.CreatePlot("Huerto", "Tomate", "", "")

	stray := model.NewTaskItem("stray", nil)
	if err := reg.UpdateTask(plot.ID, stray); err != nil {
		t.Fatalf("plot without plan should be a no-op, got %v", err)
	}
	if stored, _ := reg.Plot(plot.ID); stored.HasPlan {
		t.Fatal("no-op update created a plan")
	}

	if err := reg.InstallPlan(plot.ID, plan.Parse("0. a\n1. b"), date(t, "2025-03-01")); err != nil {
		t.Fatalf("install: %v", err)
	}
	before, _ := reg.Plot(plot.ID)
	if err := reg.UpdateTask(plot.ID, stray); err != nil {
		t.Fatalf("unknown task should be a no-op, got %v", err)
	}
	after, _ := reg.Plot(plot.ID)
	if len(after.Plan) != len(before.Plan) || after.Plan[0].ID != before.Plan[0].ID || after.Plan[1].ID != before.Plan[1].ID {
		t.Fatalf("plan changed on unknown task update: %+v", after.Plan)
	}

	if err := reg.UpdateTask("missing", stray); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown plot, got %v", err)
	}
}

func TestDeletePlotIsIdempotent(t *testing.T) {
	reg := New()
	plot := reg.CreatePlot("Huerto", "Tomate", "", "")
	reg.DeletePlot(plot.ID)
	reg.DeletePlot(plot.ID)
	reg.DeletePlot("never-existed")
	if _, ok := reg.Plot(plot.ID); ok || reg.Len() != 0 {
		t.Fatal("expected plot to be gone")
	}
}

func TestRestoreKeepsIDsAndOrder(t *testing.T) {
	start := date(t, "2025-03-01")
	saved := model.NewPlot("Huerto", "Tomate", "", "")
	saved.HasPlan = true
	saved.PlanStartDate = &start
	saved.Plan = plan.Resolve(plan.Parse("0. a"), start)
	other := model.NewPlot("Parcela", "Maíz", "", "")

	reg := New()
	events := 0
	reg.Subscribe(func(Event) { events++ })
	reg.Restore(saved, other)
	reg.Restore(saved)

	plots := reg.Plots()
	if len(plots) != 2 || plots[0].ID != saved.ID || plots[1].ID != other.ID {
		t.Fatalf("unexpected restored plots: %+v", plots)
	}
	if plots[0].Plan[0].ID != saved.Plan[0].ID {
		t.Fatal("task id not restored exactly")
	}
	if events != 0 {
		t.Fatalf("restore must not emit events, got %d", events)
	}
}

func TestSubscribeReceivesEventsUntilUnsubscribed(t *testing.T) {
	reg := New()
	var got []Event
	unsubscribe := reg.Subscribe(func(ev Event) { got = append(got, ev) })

	plot := reg.CreatePlot("Huerto", "Tomate", "", "")
	if err := reg.InstallPlan(plot.ID, plan.Parse("0. a"), date(t, "2025-03-01")); err != nil {
		t.Fatalf("install: %v", err)
	}
	stored, _ := reg.Plot(plot.ID)
	task := stored.Plan[0]
	task.IsCompleted = true
	if err := reg.UpdateTask(plot.ID, task); err != nil {
		t.Fatalf("update: %v", err)
	}
	_ = reg.UpdateTask(plot.ID, model.NewTaskItem("stray", nil))
	unsubscribe()
	reg.DeletePlot(plot.ID)

	want := []EventKind{EventPlotCreated, EventPlanInstalled, EventTaskUpdated}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), got)
	}
	for i, kind := range want {
		if got[i].Kind != kind || got[i].PlotID != plot.ID {
			t.Fatalf("event %d = %+v, want kind %s", i, got[i], kind)
		}
	}
	if got[2].TaskID != task.ID {
		t.Fatalf("task event missing task id: %+v", got[2])
	}
}
