package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/agroplan/internal/config"
	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/planner"
	"github.com/sandeepkv93/agroplan/internal/registry"
	"github.com/sandeepkv93/agroplan/internal/scheduler"
)

type View string

const (
	ViewPlots     View = "Plots"
	ViewPlan      View = "Plan"
	ViewCalendar  View = "Calendar"
	ViewToday     View = "Today"
	ViewAssistant View = "Assistant"
)

var allViews = []View{ViewPlots, ViewPlan, ViewCalendar, ViewToday, ViewAssistant}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Plots     string
	Plan      string
	Calendar  string
	Today     string
	Assistant string
	Help      string
	Quit      string
}

type ChatMessage struct {
	FromUser bool
	Text     string
	Rendered string
}

type CalendarState struct {
	FocusDate time.Time
}

type PlanState struct {
	Cursor int
}

type AssistantState struct {
	Waiting    bool
	Typing     bool
	Suggestion int
	// Messages is keyed by plot id.
	Messages map[string][]ChatMessage
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Deps are the collaborators the model drives. Registry and Planner are
// required; the rest may be left zero.
type Deps struct {
	Registry  *registry.Registry
	Planner   *planner.Service
	Scheduler *scheduler.Engine
	Notifier  DesktopNotifier
	Logger    zerolog.Logger
	Config    config.RuntimeConfig
	Now       func() time.Time
}

// eventInbox collects registry events between Update calls. It is shared by
// every copy of the model.
type eventInbox struct {
	events []registry.Event
}

type Model struct {
	CurrentView    View
	SelectedPlotID string
	Plan           PlanState
	Calendar       CalendarState
	Assistant      AssistantState
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DueLog         []scheduler.DueEvent
	DesktopEnabled bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	reg          *registry.Registry
	planner      *planner.Service
	engine       *scheduler.Engine
	notifier     DesktopNotifier
	logger       zerolog.Logger
	now          func() time.Time
	reminderHour int
	upcomingDays int
	upcomingMax  int
	inbox        *eventInbox
	unsubscribe  func()

	planTable      table.Model
	commandInput   textinput.Model
	assistantInput textinput.Model
	thinking       spinner.Model
	helpModel      help.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type DueMsg struct {
	Event scheduler.DueEvent
}

// AssistantReplyMsg carries the generator's answer back to the update loop.
type AssistantReplyMsg struct {
	Request planner.Request
	Text    string
	Err     error
}

func NewModel(deps Deps) Model {
	if deps.Registry == nil {
		deps.Registry = registry.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = NoopDesktopNotifier{}
	}
	cfg := deps.Config
	if cfg.UpcomingDays <= 0 {
		cfg.UpcomingDays = 7
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = 5
	}

	m := Model{
		CurrentView: ViewPlots,
		Calendar: CalendarState{
			FocusDate: model.DateOf(deps.Now()),
		},
		Assistant: AssistantState{
			Messages: make(map[string][]ChatMessage),
		},
		DesktopEnabled: cfg.DesktopNotifications,
		Keys: GlobalKeyMap{
			Plots:     "1",
			Plan:      "2",
			Calendar:  "3",
			Today:     "4",
			Assistant: "5",
			Help:      "?",
			Quit:      "q",
		},
		reg:          deps.Registry,
		planner:      deps.Planner,
		engine:       deps.Scheduler,
		notifier:     deps.Notifier,
		logger:       deps.Logger,
		now:          deps.Now,
		reminderHour: cfg.ReminderHour,
		upcomingDays: cfg.UpcomingDays,
		upcomingMax:  cfg.UpcomingLimit,
		inbox:        &eventInbox{},
	}
	inbox := m.inbox
	m.unsubscribe = m.reg.Subscribe(func(ev registry.Event) {
		inbox.events = append(inbox.events, ev)
	})
	if plots := m.reg.Plots(); len(plots) > 0 {
		m.SelectedPlotID = plots[0].ID
	}
	m.initBubbleComponents()
	m.scheduleAllReminders()
	m.syncBubbleData()
	return m
}

// Close detaches the model from the registry.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "✓", Width: 3},
		{Title: "Fecha", Width: 10},
		{Title: "Tarea", Width: 34},
	}
	m.planTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.assistantInput = textinput.New()
	m.assistantInput.Prompt = "pregunta> "
	m.assistantInput.Placeholder = "escribe tu pregunta"
	m.assistantInput.CharLimit = 500
	m.assistantInput.Width = 44

	m.thinking = spinner.New()
	m.thinking.Spinner = spinner.Dot

	m.helpModel = help.New()
}

// syncBubbleData copies registry state into the bubble components.
func (m *Model) syncBubbleData() {
	plot, ok := m.selectedPlot()
	rows := make([]table.Row, 0)
	if ok {
		for i, task := range plot.Plan {
			check := ""
			if task.IsCompleted {
				check = "x"
			}
			rows = append(rows, table.Row{fmt.Sprintf("%d", i+1), check, model.FormatDate(task.DueDate), task.Text})
		}
	}
	m.planTable.SetRows(rows)
	if m.Plan.Cursor >= len(rows) {
		m.Plan.Cursor = len(rows) - 1
	}
	if m.Plan.Cursor < 0 {
		m.Plan.Cursor = 0
	}
	m.planTable.SetCursor(m.Plan.Cursor)
}

func (m Model) selectedPlot() (model.Plot, bool) {
	if m.SelectedPlotID == "" {
		return model.Plot{}, false
	}
	return m.reg.Plot(m.SelectedPlotID)
}

func isKnownView(v View) bool {
	for _, known := range allViews {
		if v == known {
			return true
		}
	}
	return false
}
