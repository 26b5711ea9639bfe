package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/agroplan/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.engine != nil {
		return waitForDueCmd(m.engine.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.applyRegistryEvents()
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.Assistant.Waiting {
			var cmd tea.Cmd
			m.thinking, cmd = m.thinking.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case AssistantReplyMsg:
		m.onAssistantReply(typed)
		return m, nil
	case DueMsg:
		m.onDue(typed.Event)
		if m.engine != nil {
			return m, waitForDueCmd(m.engine.C())
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}
	if m.CurrentView == ViewAssistant && m.Assistant.Typing {
		return m.handleAssistantKey(msg)
	}

	switch msg.String() {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Plots:
		m.switchView(ViewPlots)
		return m, nil
	case m.Keys.Plan:
		m.switchView(ViewPlan)
		return m, nil
	case m.Keys.Calendar:
		m.switchView(ViewCalendar)
		return m, nil
	case m.Keys.Today:
		m.switchView(ViewToday)
		return m, nil
	case m.Keys.Assistant:
		m.switchView(ViewAssistant)
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewPlots:
		return m.handlePlotsKey(msg), nil
	case ViewPlan:
		return m.handlePlanKey(msg), nil
	case ViewCalendar:
		return m.handleCalendarKey(msg), nil
	case ViewAssistant:
		return m.handleAssistantKey(msg)
	}
	return m, nil
}

func (m *Model) switchView(v View) {
	m.CurrentView = v
	if v == ViewAssistant {
		m.Assistant.Typing = true
		m.assistantInput.Focus()
		return
	}
	m.Assistant.Typing = false
	m.assistantInput.Blur()
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	switch m.CurrentView {
	case ViewPlots:
		leftPane = m.renderPlotsView()
	case ViewPlan:
		leftPane = m.renderPlanView()
	case ViewCalendar:
		leftPane = m.renderCalendarView()
	case ViewToday:
		leftPane = m.renderTodayView()
	case ViewAssistant:
		leftPane = m.renderAssistantView()
	}
	rightPane := strings.TrimSpace(strings.Join([]string{
		views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		m.renderHelpIfVisible(),
	}, "\n"))

	notification := ""
	if len(m.DueLog) > 0 {
		last := m.DueLog[len(m.DueLog)-1]
		notification = fmt.Sprintf("último recordatorio: %s @ %s", last.Text, last.TriggerAt.Format("2006-01-02 15:04"))
	}
	if len(m.Notifications) > 0 {
		n := m.Notifications[len(m.Notifications)-1]
		notification = strings.TrimSpace(notification + "\n" + views.RenderNotification(n.Level, n.Body))
	}

	selected := "-"
	if plot, ok := m.selectedPlot(); ok {
		selected = plot.Name
	}
	active := 0
	for i, v := range allViews {
		if v == m.CurrentView {
			active = i
		}
	}
	tabs := make([]string, 0, len(allViews))
	for i, v := range allViews {
		tabs = append(tabs, fmt.Sprintf("%d %s", i+1, v))
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("agroplan | view: %s | terreno: %s", m.CurrentView, selected),
		Tabs:         tabs,
		ActiveTab:    active,
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notification,
		Footer:       fmt.Sprintf("keys: 1-5 views | / cmd | %s help | %s quit", m.Keys.Help, m.Keys.Quit),
	})
}
