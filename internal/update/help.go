package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/agroplan/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Plots, Action: "plots"},
		{Key: m.Keys.Plan, Action: "plan"},
		{Key: m.Keys.Calendar, Action: "calendar"},
		{Key: m.Keys.Today, Action: "today"},
		{Key: m.Keys.Assistant, Action: "assistant"},
		{Key: "/", Action: "command palette"},
		{Key: m.Keys.Help, Action: "help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewPlots:
		return []KeyBinding{
			{Key: "j/k", Action: "select plot"},
			{Key: "enter", Action: "open plan"},
			{Key: "a", Action: "ask the assistant"},
		}
	case ViewPlan:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "space", Action: "toggle task done"},
			{Key: "s", Action: "save draft starting today"},
			{Key: "x", Action: "discard draft"},
		}
	case ViewCalendar:
		return []KeyBinding{
			{Key: "h/l", Action: "previous/next day"},
			{Key: "j/k", Action: "next/previous week"},
			{Key: "[/]", Action: "previous/next month"},
			{Key: "t", Action: "jump to today"},
		}
	case ViewAssistant:
		return []KeyBinding{
			{Key: "enter", Action: "send question"},
			{Key: "tab", Action: "cycle suggested questions"},
			{Key: "esc", Action: "leave input"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, 8)
	for _, kb := range append(m.globalBindings(), m.viewBindings()...) {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
