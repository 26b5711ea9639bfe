package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/agroplan/internal/registry"
)

// Syncer mirrors registry mutations into a Store. Failures never reach the
// registry; they are logged and handed to the optional error callback.
type Syncer struct {
	store   *Store
	reg     *registry.Registry
	logger  zerolog.Logger
	onError func(error)
}

func NewSyncer(store *Store, reg *registry.Registry, logger zerolog.Logger, onError func(error)) *Syncer {
	return &Syncer{
		store:   store,
		reg:     reg,
		logger:  logger,
		onError: onError,
	}
}

// Attach subscribes the syncer and returns the unsubscribe function.
func (s *Syncer) Attach() func() {
	return s.reg.Subscribe(s.handle)
}

func (s *Syncer) handle(ev registry.Event) {
	ctx := context.Background()
	var err error
	switch ev.Kind {
	case registry.EventPlotCreated, registry.EventPlanInstalled:
		err = s.savePlot(ctx, ev.PlotID)
	case registry.EventTaskUpdated:
		err = s.saveTask(ctx, ev.PlotID, ev.TaskID)
	case registry.EventPlotDeleted:
		err = s.store.DeletePlot(ctx, ev.PlotID)
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("event", string(ev.Kind)).
			Str("plot_id", ev.PlotID).
			Msg("failed to persist registry change")
		if s.onError != nil {
			s.onError(err)
		}
		return
	}
	s.logger.Debug().
		Str("event", string(ev.Kind)).
		Str("plot_id", ev.PlotID).
		Msg("persisted registry change")
}

func (s *Syncer) savePlot(ctx context.Context, plotID string) error {
	plot, ok := s.reg.Plot(plotID)
	if !ok {
		return nil
	}
	return s.store.SavePlot(ctx, plot)
}

func (s *Syncer) saveTask(ctx context.Context, plotID, taskID string) error {
	plot, ok := s.reg.Plot(plotID)
	if !ok {
		return nil
	}
	idx := plot.TaskIndex(taskID)
	if idx < 0 {
		return nil
	}
	err := s.store.SaveTask(ctx, plotID, idx, plot.Plan[idx])
	if errors.Is(err, ErrNotFound) {
		return s.store.SavePlot(ctx, plot)
	}
	return err
}
