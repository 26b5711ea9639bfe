package update

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/planner"
	"github.com/sandeepkv93/agroplan/internal/views"
)

var errNoPlotSelected = errors.New("select a plot first")

func (m Model) handlePlanKey(msg tea.KeyMsg) Model {
	plot, ok := m.selectedPlot()
	if !ok {
		return m
	}
	switch msg.String() {
	case "up", "k":
		if m.Plan.Cursor > 0 {
			m.Plan.Cursor--
		}
	case "down", "j":
		if m.Plan.Cursor < len(plot.Plan)-1 {
			m.Plan.Cursor++
		}
	case " ", "enter":
		if m.Plan.Cursor < len(plot.Plan) {
			task := plot.Plan[m.Plan.Cursor]
			m.setStatusFromErr(m.toggleTask(plot.ID, task), fmt.Sprintf("tarea actualizada: %s", task.Text))
		}
	case "s":
		err := m.saveDraft(m.now())
		m.setStatusFromErr(err, fmt.Sprintf("plan guardado desde %s", model.DateOf(m.now()).Format(model.DateLayout)))
	case "x":
		if m.planner != nil {
			m.planner.DiscardDraft(plot.ID)
			m.Status = StatusBar{Text: "borrador descartado"}
		}
	}
	return m
}

func (m *Model) toggleTask(plotID string, task model.TaskItem) error {
	if m.planner != nil {
		return m.planner.SetTaskCompleted(plotID, task.ID, !task.IsCompleted)
	}
	task.IsCompleted = !task.IsCompleted
	return m.reg.UpdateTask(plotID, task)
}

func (m *Model) saveDraft(start time.Time) error {
	if m.SelectedPlotID == "" {
		return errNoPlotSelected
	}
	if m.planner == nil {
		return planner.ErrNoDraft
	}
	if err := m.planner.SaveDraft(m.SelectedPlotID, start); err != nil {
		return err
	}
	m.Plan.Cursor = 0
	return nil
}

func (m *Model) setStatusFromErr(err error, okText string) {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.logger.Error().Err(err).Msg("action failed")
		return
	}
	m.Status = StatusBar{Text: okText}
}

func (m Model) renderPlanView() string {
	plot, ok := m.selectedPlot()
	if !ok {
		return "plan:\n(sin terreno seleccionado)"
	}
	data := views.PlanPanelData{
		PlotName:  plot.Name,
		Crop:      plot.PrimaryCrop,
		HasPlan:   plot.HasPlan,
		StartDate: model.FormatDate(plot.PlanStartDate),
		Cursor:    m.Plan.Cursor,
	}
	if plot.HasPlan && len(plot.Plan) > 0 {
		data.TableView = m.planTable.View()
	}
	if m.planner != nil {
		if drafts, ok := m.planner.Draft(plot.ID); ok {
			data.Draft = draftRows(drafts)
		}
	}
	return views.RenderPlanPanel(data)
}

func draftRows(drafts []model.TaskItem) []views.PlanTaskData {
	out := make([]views.PlanTaskData, 0, len(drafts))
	for i, task := range drafts {
		days := "-"
		if task.DaysFromStart != nil {
			days = fmt.Sprintf("%d", *task.DaysFromStart)
		}
		out = append(out, views.PlanTaskData{Number: i + 1, Text: task.Text, Days: days})
	}
	return out
}
