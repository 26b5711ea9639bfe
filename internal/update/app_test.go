package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/agroplan/internal/config"
	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/planner"
	"github.com/sandeepkv93/agroplan/internal/registry"
	"github.com/sandeepkv93/agroplan/internal/scheduler"
)

type stubGenerator struct {
	reply string
	err   error
}

func (s stubGenerator) GeneratePlanText(context.Context, string) (string, error) {
	return s.reply, s.err
}

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, gen stubGenerator) (Model, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	m := NewModel(Deps{
		Registry: reg,
		Planner:  planner.NewService(reg, gen, zerolog.Nop()),
		Logger:   zerolog.Nop(),
		Config:   config.RuntimeConfig{ReminderHour: 7, UpcomingDays: 7, UpcomingLimit: 5},
		Now:      func() time.Time { return fixedNow },
	})
	t.Cleanup(m.Close)
	return m, reg
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runPalette(t *testing.T, m Model, input string) (Model, tea.Cmd) {
	t.Helper()
	if m.CurrentView == ViewAssistant && m.Assistant.Typing {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.Palette.Active {
		t.Fatal("expected palette to open")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(input)})
	return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t, stubGenerator{})
	if m.CurrentView != ViewPlots {
		t.Fatalf("expected default view %q, got %q", ViewPlots, m.CurrentView)
	}
	if m.Keys.Quit != "q" || m.SelectedPlotID != "" {
		t.Fatalf("unexpected defaults: %+v", m.Keys)
	}
	if !m.Calendar.FocusDate.Equal(model.DateOf(fixedNow)) {
		t.Fatalf("calendar should focus today, got %s", m.Calendar.FocusDate)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _ := newTestModel(t, stubGenerator{})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if m.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", m.CurrentView)
	}
	m, _ = send(t, m, SwitchViewMsg{View: View("Unknown")})
	if m.CurrentView != ViewCalendar {
		t.Fatalf("expected view unchanged for unknown view, got %q", m.CurrentView)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}})
	if m.CurrentView != ViewAssistant || !m.Assistant.Typing {
		t.Fatalf("expected assistant view with input focused, got %q typing=%v", m.CurrentView, m.Assistant.Typing)
	}
	// Digits go to the input while typing.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	if m.CurrentView != ViewAssistant {
		t.Fatalf("typing must not switch views, got %q", m.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t, stubGenerator{})
	m, _ = send(t, m, SetStatusMsg{Text: "listo"})
	if m.Status.Text != "listo" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m, _ = send(t, m, AppErrorMsg{Err: errors.New("boom")})
	if m.LastError == nil || !m.Status.IsError || m.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", m.Status)
	}
	m, _ = send(t, m, ClearStatusMsg{})
	if m.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", m.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _ := newTestModel(t, stubGenerator{})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}

func TestPaletteCreatesPlotAndSelectsIt(t *testing.T) {
	m, reg := newTestModel(t, stubGenerator{})
	m, _ = runPalette(t, m, "plot Huerto | Tomate | Franco | 10x5m")
	if m.Palette.Active {
		t.Fatal("palette must close after enter")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected one plot, got %d", reg.Len())
	}
	plot := reg.Plots()[0]
	if m.SelectedPlotID != plot.ID || plot.SoilType != "Franco" {
		t.Fatalf("unexpected selection or plot: %q %+v", m.SelectedPlotID, plot)
	}
	if !strings.Contains(m.Status.Text, "Huerto") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m, _ = runPalette(t, m, "plot Solo nombre")
	if !m.Status.IsError || reg.Len() != 1 {
		t.Fatalf("expected invalid plot command to fail, status=%+v", m.Status)
	}
}

func TestAssistantPlanFlowEndToEnd(t *testing.T) {
	m, reg := newTestModel(t, stubGenerator{reply: "0. Preparar tierra\n7. Primer riego\nObservar plagas"})
	m, _ = runPalette(t, m, "plot Huerto | Tomate")

	m, cmd := runPalette(t, m, "ask genera un plan de actividades")
	if cmd == nil || !m.Assistant.Waiting || m.CurrentView != ViewAssistant {
		t.Fatalf("expected question in flight, waiting=%v view=%s", m.Assistant.Waiting, m.CurrentView)
	}

	req, err := m.planner.Prepare(m.SelectedPlotID, "genera un plan de actividades")
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	m, _ = send(t, m, AssistantReplyMsg{Request: req, Text: "0. Preparar tierra\n7. Primer riego\nObservar plagas"})
	if m.Assistant.Waiting {
		t.Fatal("waiting flag must clear on reply")
	}
	history := m.Assistant.Messages[m.SelectedPlotID]
	if len(history) != 2 || !history[0].FromUser || history[1].FromUser {
		t.Fatalf("unexpected chat history: %+v", history)
	}
	if drafts, ok := m.planner.Draft(m.SelectedPlotID); !ok || len(drafts) != 3 {
		t.Fatalf("expected stored draft, got %v", drafts)
	}

	m, _ = runPalette(t, m, "plan 2025-03-01")
	if m.Status.IsError {
		t.Fatalf("plan command failed: %+v", m.Status)
	}
	plot, _ := reg.Plot(m.SelectedPlotID)
	if !plot.HasPlan || len(plot.Plan) != 3 || plot.Plan[1].DueDate.Format(model.DateLayout) != "2025-03-08" {
		t.Fatalf("plan not installed: %+v", plot)
	}

	m, _ = runPalette(t, m, "done 1")
	next, ok := reg.NextPendingTask()
	if !ok || next.Task.Text != "Primer riego" {
		t.Fatalf("unexpected next task: %+v", next)
	}

	m, _ = runPalette(t, m, "done 9")
	if !m.Status.IsError {
		t.Fatalf("expected out of range error, got %+v", m.Status)
	}
}

func TestAssistantErrorReplyIsShown(t *testing.T) {
	m, _ := newTestModel(t, stubGenerator{})
	m, _ = runPalette(t, m, "plot Huerto | Tomate")
	req, err := m.planner.Prepare(m.SelectedPlotID, "¿cuándo riego?")
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	m.Assistant.Waiting = true
	m, _ = send(t, m, AssistantReplyMsg{Request: req, Err: errors.New("timeout")})
	if m.Assistant.Waiting || !m.Status.IsError {
		t.Fatalf("unexpected state after failed reply: %+v", m.Status)
	}
	history := m.Assistant.Messages[m.SelectedPlotID]
	if len(history) != 1 || !strings.Contains(history[0].Text, "timeout") {
		t.Fatalf("expected error message in chat: %+v", history)
	}
}

func TestPlanViewTogglesTaskWithSpace(t *testing.T) {
	m, reg := newTestModel(t, stubGenerator{})
	plot := reg.CreatePlot("Huerto", "Tomate", "", "")
	drafts := []model.TaskItem{model.NewTaskItem("Sembrar", model.Offset(0)), model.NewTaskItem("Regar", model.Offset(2))}
	if err := reg.InstallPlan(plot.ID, drafts, fixedNow); err != nil {
		t.Fatalf("install: %v", err)
	}
	m, _ = send(t, m, ClearStatusMsg{})
	if m.SelectedPlotID != plot.ID {
		t.Fatalf("expected new plot to be selected, got %q", m.SelectedPlotID)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	stored, _ := reg.Plot(plot.ID)
	if stored.Plan[0].IsCompleted || !stored.Plan[1].IsCompleted {
		t.Fatalf("expected second task toggled: %+v", stored.Plan)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	stored, _ = reg.Plot(plot.ID)
	if stored.Plan[1].IsCompleted {
		t.Fatal("second toggle must reopen the task")
	}
}

func TestDeleteClearsSelectionAndReminders(t *testing.T) {
	reg := registry.New()
	engine := scheduler.NewEngine(4)
	m := NewModel(Deps{
		Registry:  reg,
		Planner:   planner.NewService(reg, stubGenerator{}, zerolog.Nop()),
		Scheduler: engine,
		Logger:    zerolog.Nop(),
		Config:    config.RuntimeConfig{ReminderHour: 7},
		Now:       func() time.Time { return fixedNow },
	})
	defer m.Close()

	m, _ = runPalette(t, m, "plot Huerto | Tomate")
	drafts := []model.TaskItem{model.NewTaskItem("Sembrar", model.Offset(1)), model.NewTaskItem("Regar", model.Offset(3))}
	if err := reg.InstallPlan(m.SelectedPlotID, drafts, fixedNow); err != nil {
		t.Fatalf("install: %v", err)
	}
	m, _ = send(t, m, ClearStatusMsg{})
	if engine.Pending() != 2 {
		t.Fatalf("expected reminders for installed plan, pending=%d", engine.Pending())
	}

	m, _ = runPalette(t, m, "delete")
	if reg.Len() != 0 || m.SelectedPlotID != "" {
		t.Fatalf("expected plot removed and selection cleared, len=%d sel=%q", reg.Len(), m.SelectedPlotID)
	}
	if engine.Pending() != 0 {
		t.Fatalf("expected reminders dropped, pending=%d", engine.Pending())
	}
}

func TestDueMsgNotifiesDesktop(t *testing.T) {
	reg := registry.New()
	notifier := &recordingNotifier{}
	m := NewModel(Deps{
		Registry: reg,
		Notifier: notifier,
		Logger:   zerolog.Nop(),
		Config:   config.RuntimeConfig{DesktopNotifications: true},
		Now:      func() time.Time { return fixedNow },
	})
	defer m.Close()

	m, _ = send(t, m, DueMsg{Event: scheduler.DueEvent{ID: "p/t", Text: "Huerto: Regar", TriggerAt: fixedNow}})
	if len(m.DueLog) != 1 || !strings.Contains(m.Status.Text, "Regar") {
		t.Fatalf("unexpected due handling: %+v", m.Status)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Title != "Recordatorio" {
		t.Fatalf("expected one desktop notification, got %+v", notifier.sent)
	}
}

func TestViewRendersTodayAndCalendar(t *testing.T) {
	m, reg := newTestModel(t, stubGenerator{})
	plot := reg.CreatePlot("Huerto", "Tomate", "", "")
	drafts := []model.TaskItem{model.NewTaskItem("Preparar tierra", model.Offset(0)), model.NewTaskItem("Cosecha", model.Offset(60))}
	if err := reg.InstallPlan(plot.ID, drafts, fixedNow); err != nil {
		t.Fatalf("install: %v", err)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	out := m.View()
	if !strings.Contains(out, "view: Today") || !strings.Contains(out, "Preparar tierra") {
		t.Fatalf("expected today content: %q", out)
	}
	if strings.Contains(out, "Cosecha") {
		t.Fatalf("task outside the window must not be listed: %q", out)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	out = m.View()
	if !strings.Contains(out, "Marzo 2025") || !strings.Contains(out, "Preparar tierra") {
		t.Fatalf("expected calendar content: %q", out)
	}
}

func TestShiftMonthClampsDay(t *testing.T) {
	got := shiftMonth(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 1)
	if got.Format(model.DateLayout) != "2025-02-28" {
		t.Fatalf("unexpected shifted month: %s", got)
	}
	got = shiftMonth(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), -1)
	if got.Format(model.DateLayout) != "2024-12-15" {
		t.Fatalf("unexpected shifted month: %s", got)
	}
}
