// Package planner connects the assistant to the registry: it turns plan
// requests into drafts and installs confirmed drafts as plot plans.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/agroplan/internal/genai"
	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/plan"
	"github.com/sandeepkv93/agroplan/internal/registry"
)

var (
	ErrEmptyQuestion = errors.New("planner: question is empty")
	ErrNoDraft       = errors.New("planner: no draft for plot")
	ErrTaskNotFound  = errors.New("planner: task not found")
)

// Request is a prepared question. It carries everything the generator call
// needs so it can run away from the goroutine that owns the registry.
type Request struct {
	PlotID   string
	Crop     string
	Question string
	Prompt   string
	IsPlan   bool
}

// Reply is what the assistant answers. Drafts is set only for plan requests.
type Reply struct {
	Text   string
	IsPlan bool
	Drafts []model.TaskItem
}

type Service struct {
	reg    *registry.Registry
	gen    genai.Generator
	logger zerolog.Logger

	mu     sync.Mutex
	drafts map[string][]model.TaskItem
}

func NewService(reg *registry.Registry, gen genai.Generator, logger zerolog.Logger) *Service {
	return &Service{
		reg:    reg,
		gen:    gen,
		logger: logger,
		drafts: make(map[string][]model.TaskItem),
	}
}

// Ask runs Prepare, Generate and Accept in sequence.
func (s *Service) Ask(ctx context.Context, plotID, question string) (Reply, error) {
	req, err := s.Prepare(plotID, question)
	if err != nil {
		return Reply{}, err
	}
	text, err := s.Generate(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	return s.Accept(req, text), nil
}

// Prepare reads the plot from the registry and builds the prompt. Plan
// requests use the fixed plan prompt; anything else is sent verbatim.
func (s *Service) Prepare(plotID, question string) (Request, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Request{}, ErrEmptyQuestion
	}
	plot, ok := s.reg.Plot(plotID)
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", registry.ErrNotFound, plotID)
	}
	req := Request{
		PlotID:   plotID,
		Crop:     plot.PrimaryCrop,
		Question: question,
		Prompt:   question,
		IsPlan:   plan.IsPlanRequest(question),
	}
	if req.IsPlan {
		req.Prompt = plan.PromptFor(plot.PrimaryCrop)
	}
	return req, nil
}

// Generate only touches the generator and is safe to call from any goroutine.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	s.logger.Debug().
		Str("plot_id", req.PlotID).
		Bool("plan_request", req.IsPlan).
		Msg("sending question to assistant")
	text, err := s.gen.GeneratePlanText(ctx, req.Prompt)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("plot_id", req.PlotID).
			Msg("assistant request failed")
		return "", err
	}
	return text, nil
}

// Accept turns the generator's text into a reply. For plan requests the
// parsed tasks replace the plot's pending draft; a reply without tasks keeps
// the previous draft.
func (s *Service) Accept(req Request, text string) Reply {
	if !req.IsPlan {
		return Reply{Text: text}
	}
	drafts := plan.Parse(text)
	if len(drafts) == 0 {
		s.logger.Info().
			Str("plot_id", req.PlotID).
			Msg("assistant reply contained no tasks")
		return Reply{
			Text:   "No pude generar una lista de tareas específica esta vez. Intenta reformular tu solicitud de plan.",
			IsPlan: true,
		}
	}
	s.mu.Lock()
	s.drafts[req.PlotID] = drafts
	s.mu.Unlock()
	s.logger.Info().
		Str("plot_id", req.PlotID).
		Int("tasks", len(drafts)).
		Msg("stored plan draft")
	return Reply{
		Text:   fmt.Sprintf("He generado un borrador de plan para %s con %d tareas. Usa /plan AAAA-MM-DD para agendarlo.", req.Crop, len(drafts)),
		IsPlan: true,
		Drafts: cloneTasks(drafts),
	}
}

func (s *Service) Draft(plotID string) ([]model.TaskItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drafts, ok := s.drafts[plotID]
	if !ok {
		return nil, false
	}
	return cloneTasks(drafts), true
}

func (s *Service) DiscardDraft(plotID string) {
	s.mu.Lock()
	delete(s.drafts, plotID)
	s.mu.Unlock()
}

// SaveDraft installs the plot's draft as its plan starting on start and
// clears the draft.
func (s *Service) SaveDraft(plotID string, start time.Time) error {
	drafts, ok := s.Draft(plotID)
	if !ok {
		return ErrNoDraft
	}
	if err := s.reg.InstallPlan(plotID, drafts, start); err != nil {
		s.logger.Error().
			Err(err).
			Str("plot_id", plotID).
			Msg("failed to install plan")
		return err
	}
	s.DiscardDraft(plotID)
	s.logger.Info().
		Str("plot_id", plotID).
		Str("start", model.DateOf(start).Format(model.DateLayout)).
		Int("tasks", len(drafts)).
		Msg("installed plan")
	return nil
}

func (s *Service) CompleteTask(plotID, taskID string) error {
	return s.SetTaskCompleted(plotID, taskID, true)
}

func (s *Service) SetTaskCompleted(plotID, taskID string, done bool) error {
	plot, ok := s.reg.Plot(plotID)
	if !ok {
		return fmt.Errorf("%w: %s", registry.ErrNotFound, plotID)
	}
	idx := plot.TaskIndex(taskID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	task := plot.Plan[idx]
	task.IsCompleted = done
	if err := s.reg.UpdateTask(plotID, task); err != nil {
		return err
	}
	s.logger.Debug().
		Str("plot_id", plotID).
		Str("task_id", taskID).
		Bool("completed", done).
		Msg("updated task")
	return nil
}

func cloneTasks(in []model.TaskItem) []model.TaskItem {
	out := make([]model.TaskItem, len(in))
	for i, task := range in {
		out[i] = task.Clone()
	}
	return out
}
