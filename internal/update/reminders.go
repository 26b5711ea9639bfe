package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/registry"
	"github.com/sandeepkv93/agroplan/internal/scheduler"
)

func waitForDueCmd(ch <-chan scheduler.DueEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DueMsg{Event: ev}
	}
}

func (m *Model) onDue(ev scheduler.DueEvent) {
	m.DueLog = append(m.DueLog, ev)
	if len(m.DueLog) > 20 {
		m.DueLog = m.DueLog[len(m.DueLog)-20:]
	}
	m.Status = StatusBar{Text: fmt.Sprintf("recordatorio: %s", ev.Text)}
	n := m.notify("Recordatorio", ev.Text, "reminder")
	if m.DesktopEnabled && m.notifier != nil {
		if err := m.notifier.Send(n); err != nil {
			m.logger.Warn().Err(err).Msg("desktop notification failed")
		}
	}
}

func (m *Model) notify(title, body, level string) Notification {
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.now().UTC(),
	}
	if strings.TrimSpace(body) == "" {
		return n
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	return n
}

// applyRegistryEvents reacts to registry mutations made since the last
// update: reminders are requeued and stale selections are dropped.
func (m *Model) applyRegistryEvents() {
	if m.inbox == nil || len(m.inbox.events) == 0 {
		return
	}
	events := m.inbox.events
	m.inbox.events = nil
	for _, ev := range events {
		m.logger.Debug().
			Str("event", string(ev.Kind)).
			Str("plot_id", ev.PlotID).
			Msg("registry event")
		switch ev.Kind {
		case registry.EventPlotDeleted:
			if m.engine != nil {
				m.engine.UnschedulePlot(ev.PlotID)
			}
			if m.planner != nil {
				m.planner.DiscardDraft(ev.PlotID)
			}
			delete(m.Assistant.Messages, ev.PlotID)
		case registry.EventPlanInstalled, registry.EventTaskUpdated:
			m.reschedulePlot(ev.PlotID)
		}
	}
	m.ensureSelection()
}

func (m *Model) scheduleAllReminders() {
	if m.engine == nil {
		return
	}
	for _, plot := range m.reg.Plots() {
		m.queueReminders(plot)
	}
}

func (m *Model) reschedulePlot(plotID string) {
	if m.engine == nil {
		return
	}
	m.engine.UnschedulePlot(plotID)
	if plot, ok := m.reg.Plot(plotID); ok {
		m.queueReminders(plot)
	}
}

func (m *Model) queueReminders(plot model.Plot) {
	if _, err := scheduler.ScheduleDue(m.engine, plotTasks(plot), m.reminderHour, m.now()); err != nil {
		m.logger.Error().Err(err).Str("plot_id", plot.ID).Msg("failed to queue reminders")
	}
}

func plotTasks(plot model.Plot) []registry.PlotTask {
	out := make([]registry.PlotTask, 0, len(plot.Plan))
	for _, task := range plot.Plan {
		out = append(out, registry.PlotTask{Task: task, PlotID: plot.ID, PlotName: plot.Name})
	}
	return out
}
