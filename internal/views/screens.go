package views

import (
	"fmt"
	"strings"
	"time"
)

type PlotRowData struct {
	ID        string
	Name      string
	Crop      string
	SoilType  string
	Dimension string
	HasPlan   bool
	Completed int
	Total     int
	HasDraft  bool
}

type PlotsPanelData struct {
	Plots      []PlotRowData
	SelectedID string
}

type PlanTaskData struct {
	Number    int
	Text      string
	Due       string
	Days      string
	Completed bool
}

type PlanPanelData struct {
	PlotName  string
	Crop      string
	HasPlan   bool
	StartDate string
	TableView string
	Tasks     []PlanTaskData
	Cursor    int
	Draft     []PlanTaskData
}

type CalendarTaskData struct {
	Text      string
	PlotName  string
	Completed bool
}

type CalendarPanelData struct {
	PlotName  string
	Month     time.Time
	FocusDate time.Time
	Marked    map[int]bool
	DayTasks  []CalendarTaskData
}

type UpcomingTaskData struct {
	Due      string
	Text     string
	PlotName string
}

type TodayPanelData struct {
	Date     string
	Next     *UpcomingTaskData
	Days     int
	Upcoming []UpcomingTaskData
}

type ChatMessageData struct {
	FromUser bool
	Text     string
}

type AssistantPanelData struct {
	PlotName    string
	Crop        string
	Messages    []ChatMessageData
	InputView   string
	Waiting     bool
	SpinnerView string
	Suggestions []string
	DraftSize   int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderPlotsPanel(data PlotsPanelData) string {
	var b strings.Builder
	b.WriteString("terrenos:\n")
	b.WriteString("actions: [j/k]move [enter]plan [a]assistant [/plot]new [/delete]remove\n\n")
	if len(data.Plots) == 0 {
		b.WriteString(mutedStyle.Render("(sin terrenos, crea uno con /plot nombre | cultivo | suelo | medida)"))
		return b.String()
	}
	for _, p := range data.Plots {
		cursor := " "
		if p.ID == data.SelectedID {
			cursor = ">"
		}
		progress := "sin plan"
		if p.HasPlan {
			progress = fmt.Sprintf("%d/%d", p.Completed, p.Total)
		}
		if p.HasDraft {
			progress += " +borrador"
		}
		b.WriteString(fmt.Sprintf("%s %s [%s] %s\n", cursor, p.Name, p.Crop, progress))
		details := strings.TrimSpace(strings.Join(nonEmpty(p.SoilType, p.Dimension), " · "))
		if details != "" {
			b.WriteString("    " + mutedStyle.Render(details) + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderPlanPanel(data PlanPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("plan: %s (%s)\n", data.PlotName, data.Crop))
	b.WriteString("actions: [j/k]move [space]done [s]save draft today [x]discard draft\n")
	if !data.HasPlan {
		b.WriteString(mutedStyle.Render("(sin plan, pide uno en el asistente)") + "\n")
	} else {
		b.WriteString(fmt.Sprintf("inicio: %s\n", data.StartDate))
		if data.TableView != "" {
			b.WriteString(data.TableView + "\n")
		} else {
			for i, task := range data.Tasks {
				b.WriteString(renderPlanLine(task, i == data.Cursor) + "\n")
			}
		}
	}
	if len(data.Draft) > 0 {
		b.WriteString(fmt.Sprintf("\nborrador (%d tareas):\n", len(data.Draft)))
		for _, task := range data.Draft {
			b.WriteString(fmt.Sprintf("  día %s  %s\n", task.Days, task.Text))
		}
		b.WriteString(mutedStyle.Render("guarda con /plan AAAA-MM-DD o [s]"))
	}
	return strings.TrimSpace(b.String())
}

func renderPlanLine(task PlanTaskData, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	check := "[ ]"
	text := task.Text
	if task.Completed {
		check = "[x]"
		text = doneStyle.Render(text)
	}
	return fmt.Sprintf("%s %2d %s %s %s", cursor, task.Number, check, task.Due, text)
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("calendario: %s\n", data.PlotName))
	b.WriteString("actions: [h/l]day [j/k]week [[/]]month [t]today\n")
	b.WriteString(RenderMonthGrid(data.Month, data.FocusDate, data.Marked) + "\n")
	b.WriteString(fmt.Sprintf("\n%s:\n", data.FocusDate.Format("2006-01-02")))
	if len(data.DayTasks) == 0 {
		b.WriteString(mutedStyle.Render("  (sin tareas)"))
		return b.String()
	}
	for _, task := range data.DayTasks {
		check := "[ ]"
		if task.Completed {
			check = "[x]"
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", check, task.Text))
	}
	return strings.TrimSpace(b.String())
}

// RenderMonthGrid draws a Monday-first month. Marked days carry tasks; the
// focused day is highlighted.
func RenderMonthGrid(month time.Time, focus time.Time, marked map[int]bool) string {
	y, m, _ := month.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	daysIn := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %d\n", monthNames[m-1], y))
	b.WriteString(" Lu  Ma  Mi  Ju  Vi  Sá  Do\n")
	col := 0
	for i := 0; i < offset; i++ {
		b.WriteString("    ")
		col++
	}
	fy, fm, fd := focus.Date()
	for d := 1; d <= daysIn; d++ {
		cell := fmt.Sprintf("%3d", d)
		if marked[d] {
			cell = markStyle.Render(fmt.Sprintf("%2d*", d))
		}
		if fy == y && fm == m && fd == d {
			cell = focusStyle.Render(fmt.Sprintf("%3d", d))
			if marked[d] {
				cell = focusStyle.Render(fmt.Sprintf("%2d*", d))
			}
		}
		b.WriteString(cell + " ")
		col++
		if col == 7 && d < daysIn {
			b.WriteString("\n")
			col = 0
		}
	}
	return b.String()
}

var monthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("hoy: %s\n", data.Date))
	b.WriteString("\nsiguiente tarea:\n")
	if data.Next == nil {
		b.WriteString(mutedStyle.Render("  (nada pendiente)") + "\n")
	} else {
		b.WriteString(fmt.Sprintf("  %s  %s · %s\n", data.Next.Due, data.Next.Text, data.Next.PlotName))
	}
	b.WriteString(fmt.Sprintf("\npróximos %d días:\n", data.Days))
	if len(data.Upcoming) == 0 {
		b.WriteString(mutedStyle.Render("  (sin tareas)"))
		return b.String()
	}
	for _, task := range data.Upcoming {
		b.WriteString(fmt.Sprintf("  %s  %s · %s\n", task.Due, task.Text, task.PlotName))
	}
	return strings.TrimSpace(b.String())
}

func RenderAssistantPanel(data AssistantPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("asistente: %s (%s)\n", data.PlotName, data.Crop))
	b.WriteString("actions: [enter]send [tab]suggestion [esc]leave input\n\n")
	if len(data.Messages) == 0 && len(data.Suggestions) > 0 {
		b.WriteString("sugerencias:\n")
		for _, s := range data.Suggestions {
			b.WriteString("  - " + s + "\n")
		}
		b.WriteString("\n")
	}
	for _, msg := range data.Messages {
		if msg.FromUser {
			b.WriteString("tú: " + msg.Text + "\n\n")
			continue
		}
		b.WriteString(msg.Text + "\n\n")
	}
	if data.Waiting {
		b.WriteString(data.SpinnerView + " pensando...\n")
	}
	if data.DraftSize > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("borrador listo: %d tareas, revisa la vista Plan", data.DraftSize)) + "\n")
	}
	b.WriteString(data.InputView)
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
