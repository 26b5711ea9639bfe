package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/views"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "h", "left":
		m.Calendar.FocusDate = model.AddDays(m.Calendar.FocusDate, -1)
	case "l", "right":
		m.Calendar.FocusDate = model.AddDays(m.Calendar.FocusDate, 1)
	case "k", "up":
		m.Calendar.FocusDate = model.AddDays(m.Calendar.FocusDate, -7)
	case "j", "down":
		m.Calendar.FocusDate = model.AddDays(m.Calendar.FocusDate, 7)
	case "[":
		m.Calendar.FocusDate = shiftMonth(m.Calendar.FocusDate, -1)
	case "]":
		m.Calendar.FocusDate = shiftMonth(m.Calendar.FocusDate, 1)
	case "t":
		m.Calendar.FocusDate = model.DateOf(m.now())
	}
	return m
}

// shiftMonth moves by whole months, clamping the day to the target month's
// length so Jan 31 goes to Feb 28 rather than into March.
func shiftMonth(date time.Time, delta int) time.Time {
	y, mo, d := date.Date()
	first := time.Date(y, mo+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	_, last := model.MonthBounds(first)
	if d > last.Day() {
		d = last.Day()
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func (m Model) renderCalendarView() string {
	focus := m.Calendar.FocusDate
	data := views.CalendarPanelData{
		PlotName:  "todos los terrenos",
		Month:     focus,
		FocusDate: focus,
		Marked:    make(map[int]bool),
		DayTasks:  make([]views.CalendarTaskData, 0),
	}

	plot, ok := m.selectedPlot()
	if ok {
		data.PlotName = plot.Name
		for _, task := range m.reg.TasksInMonth(focus, plot.ID) {
			data.Marked[task.DueDate.Day()] = true
		}
		for _, task := range m.reg.TasksOn(focus, plot.ID) {
			data.DayTasks = append(data.DayTasks, views.CalendarTaskData{Text: task.Text, PlotName: plot.Name, Completed: task.IsCompleted})
		}
		return views.RenderCalendarPanel(data)
	}

	for _, pt := range m.reg.AllTasksInMonth(focus) {
		data.Marked[pt.Task.DueDate.Day()] = true
		if model.SameDay(*pt.Task.DueDate, focus) {
			data.DayTasks = append(data.DayTasks, views.CalendarTaskData{
				Text:      pt.PlotName + ": " + pt.Task.Text,
				PlotName:  pt.PlotName,
				Completed: pt.Task.IsCompleted,
			})
		}
	}
	return views.RenderCalendarPanel(data)
}
