package update

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/agroplan/internal/plan"
	"github.com/sandeepkv93/agroplan/internal/planner"
	"github.com/sandeepkv93/agroplan/internal/views"
)

const chatRenderWidth = 52

func (m Model) handleAssistantKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.Assistant.Typing {
		switch msg.String() {
		case "i", "enter":
			m.Assistant.Typing = true
			m.assistantInput.Focus()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.Assistant.Typing = false
		m.assistantInput.Blur()
		return m, nil
	case "ctrl+c":
		m.Quitting = true
		return m, tea.Quit
	case "tab":
		plot, ok := m.selectedPlot()
		if !ok {
			return m, nil
		}
		suggestions := plan.SuggestedQuestions(plot.PrimaryCrop)
		m.assistantInput.SetValue(suggestions[m.Assistant.Suggestion%len(suggestions)])
		m.assistantInput.CursorEnd()
		m.Assistant.Suggestion++
		return m, nil
	case "enter":
		question := strings.TrimSpace(m.assistantInput.Value())
		if question == "" {
			return m, nil
		}
		cmd := m.sendQuestion(question)
		if cmd != nil {
			m.assistantInput.SetValue("")
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.assistantInput, cmd = m.assistantInput.Update(msg)
	return m, cmd
}

// sendQuestion prepares the request on the update goroutine and returns the
// command that calls the generator. It returns nil when nothing was sent.
func (m *Model) sendQuestion(question string) tea.Cmd {
	if m.Assistant.Waiting {
		m.Status = StatusBar{Text: "el asistente sigue respondiendo", IsError: true}
		return nil
	}
	if m.planner == nil {
		m.Status = StatusBar{Text: "asistente no configurado", IsError: true}
		return nil
	}
	if m.SelectedPlotID == "" {
		m.Status = StatusBar{Text: errNoPlotSelected.Error(), IsError: true}
		return nil
	}
	req, err := m.planner.Prepare(m.SelectedPlotID, question)
	if err != nil {
		m.setStatusFromErr(err, "")
		return nil
	}
	m.appendChat(req.PlotID, ChatMessage{FromUser: true, Text: question})
	m.Assistant.Waiting = true
	m.Status = StatusBar{Text: "pregunta enviada"}
	return tea.Batch(m.thinking.Tick, askCmd(m.planner, req))
}

func askCmd(svc *planner.Service, req planner.Request) tea.Cmd {
	return func() tea.Msg {
		text, err := svc.Generate(context.Background(), req)
		return AssistantReplyMsg{Request: req, Text: text, Err: err}
	}
}

func (m *Model) onAssistantReply(msg AssistantReplyMsg) {
	m.Assistant.Waiting = false
	if msg.Err != nil {
		m.LastError = msg.Err
		m.appendChat(msg.Request.PlotID, ChatMessage{Text: "Lo siento, ha ocurrido un error. " + msg.Err.Error()})
		m.Status = StatusBar{Text: msg.Err.Error(), IsError: true}
		m.notify("Asistente", msg.Err.Error(), "error")
		return
	}
	reply := m.planner.Accept(msg.Request, msg.Text)
	m.appendChat(msg.Request.PlotID, ChatMessage{
		Text:     reply.Text,
		Rendered: views.RenderMarkdown(reply.Text, chatRenderWidth),
	})
	if reply.IsPlan && len(reply.Drafts) > 0 {
		m.Status = StatusBar{Text: "borrador de plan listo"}
		return
	}
	m.Status = StatusBar{Text: "respuesta recibida"}
}

func (m *Model) appendChat(plotID string, msg ChatMessage) {
	history := append(m.Assistant.Messages[plotID], msg)
	if len(history) > 30 {
		history = history[len(history)-30:]
	}
	m.Assistant.Messages[plotID] = history
}

func (m Model) renderAssistantView() string {
	plot, ok := m.selectedPlot()
	if !ok {
		return "asistente:\n(sin terreno seleccionado)"
	}
	history := m.Assistant.Messages[plot.ID]
	msgs := make([]views.ChatMessageData, 0, len(history))
	for _, msg := range history {
		text := msg.Text
		if msg.Rendered != "" {
			text = msg.Rendered
		}
		msgs = append(msgs, views.ChatMessageData{FromUser: msg.FromUser, Text: text})
	}
	draftSize := 0
	if m.planner != nil {
		if drafts, ok := m.planner.Draft(plot.ID); ok {
			draftSize = len(drafts)
		}
	}
	return views.RenderAssistantPanel(views.AssistantPanelData{
		PlotName:    plot.Name,
		Crop:        plot.PrimaryCrop,
		Messages:    msgs,
		InputView:   m.assistantInput.View(),
		Waiting:     m.Assistant.Waiting,
		SpinnerView: m.thinking.View(),
		Suggestions: plan.SuggestedQuestions(plot.PrimaryCrop),
		DraftSize:   draftSize,
	})
}
