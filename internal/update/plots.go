package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/agroplan/internal/views"
)

func (m Model) handlePlotsKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		m.moveSelection(-1)
	case "down", "j":
		m.moveSelection(1)
	case "enter":
		if m.SelectedPlotID != "" {
			m.switchView(ViewPlan)
		}
	case "a":
		if m.SelectedPlotID != "" {
			m.switchView(ViewAssistant)
		}
	}
	return m
}

func (m *Model) moveSelection(delta int) {
	plots := m.reg.Plots()
	if len(plots) == 0 {
		m.SelectedPlotID = ""
		return
	}
	idx := 0
	for i, p := range plots {
		if p.ID == m.SelectedPlotID {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(plots) {
		idx = len(plots) - 1
	}
	if plots[idx].ID != m.SelectedPlotID {
		m.SelectedPlotID = plots[idx].ID
		m.Plan.Cursor = 0
	}
}

// ensureSelection keeps SelectedPlotID pointing at an existing plot.
func (m *Model) ensureSelection() {
	if m.SelectedPlotID != "" {
		if _, ok := m.reg.Plot(m.SelectedPlotID); ok {
			return
		}
	}
	m.SelectedPlotID = ""
	if plots := m.reg.Plots(); len(plots) > 0 {
		m.SelectedPlotID = plots[0].ID
	}
	m.Plan.Cursor = 0
}

func (m Model) renderPlotsView() string {
	plots := m.reg.Plots()
	rows := make([]views.PlotRowData, 0, len(plots))
	for _, p := range plots {
		completed, total := p.PlanSummary()
		hasDraft := false
		if m.planner != nil {
			_, hasDraft = m.planner.Draft(p.ID)
		}
		rows = append(rows, views.PlotRowData{
			ID:        p.ID,
			Name:      p.Name,
			Crop:      p.PrimaryCrop,
			SoilType:  p.SoilType,
			Dimension: p.Dimension,
			HasPlan:   p.HasPlan,
			Completed: completed,
			Total:     total,
			HasDraft:  hasDraft,
		})
	}
	return views.RenderPlotsPanel(views.PlotsPanelData{Plots: rows, SelectedID: m.SelectedPlotID})
}
