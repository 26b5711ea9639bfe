package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/agroplan/internal/commands"
	"github.com/sandeepkv93/agroplan/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	if msg.Type == tea.KeyRunes {
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var followUp tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Plot: func(a commands.PlotArgs) (commands.Result, error) {
			plot := m.reg.CreatePlot(a.Name, a.Crop, a.SoilType, a.Dimension)
			m.SelectedPlotID = plot.ID
			m.Plan.Cursor = 0
			return commands.Result{Message: fmt.Sprintf("terreno creado: %s", plot.Name)}, nil
		},
		Plan: func(a commands.PlanArgs) (commands.Result, error) {
			if err := m.saveDraft(a.Start); err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewPlan
			return commands.Result{Message: fmt.Sprintf("plan guardado desde %s", a.Start.Format(model.DateLayout))}, nil
		},
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			plot, ok := m.selectedPlot()
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: errNoPlotSelected.Error()}
			}
			if a.Number > len(plot.Plan) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("plan has %d tasks", len(plot.Plan))}
			}
			task := plot.Plan[a.Number-1]
			if task.IsCompleted {
				return commands.Result{Message: fmt.Sprintf("la tarea ya estaba completa: %s", task.Text)}, nil
			}
			if err := m.toggleTask(plot.ID, task); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("tarea completada: %s", task.Text)}, nil
		},
		Ask: func(a commands.AskArgs) (commands.Result, error) {
			m.switchView(ViewAssistant)
			followUp = m.sendQuestion(a.Question)
			if followUp == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: m.Status.Text}
			}
			return commands.Result{Message: "pregunta enviada"}, nil
		},
		Delete: func() (commands.Result, error) {
			plot, ok := m.selectedPlot()
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: errNoPlotSelected.Error()}
			}
			m.reg.DeletePlot(plot.ID)
			return commands.Result{Message: fmt.Sprintf("terreno eliminado: %s", plot.Name)}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m, followUp
}
