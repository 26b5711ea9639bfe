package update

import (
	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/registry"
	"github.com/sandeepkv93/agroplan/internal/views"
)

func (m Model) renderTodayView() string {
	now := m.now()
	data := views.TodayPanelData{
		Date: model.DateOf(now).Format(model.DateLayout),
		Days: m.upcomingDays,
	}
	if next, ok := m.reg.NextPendingTask(); ok {
		row := upcomingRow(next)
		data.Next = &row
	}
	upcoming := m.reg.PendingTasksWithinDays(m.upcomingDays, now)
	if len(upcoming) > m.upcomingMax {
		upcoming = upcoming[:m.upcomingMax]
	}
	for _, pt := range upcoming {
		data.Upcoming = append(data.Upcoming, upcomingRow(pt))
	}
	return views.RenderTodayPanel(data)
}

func upcomingRow(pt registry.PlotTask) views.UpcomingTaskData {
	return views.UpcomingTaskData{
		Due:      model.FormatDate(pt.Task.DueDate),
		Text:     pt.Task.Text,
		PlotName: pt.PlotName,
	}
}
