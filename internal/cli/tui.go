package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/agroplan/internal/genai"
	"github.com/sandeepkv93/agroplan/internal/logging"
	"github.com/sandeepkv93/agroplan/internal/planner"
	"github.com/sandeepkv93/agroplan/internal/registry"
	"github.com/sandeepkv93/agroplan/internal/scheduler"
	"github.com/sandeepkv93/agroplan/internal/storage"
	"github.com/sandeepkv93/agroplan/internal/update"
)

// runTUI opens the database, hydrates the registry and runs the bubbletea
// program until the user quits. Logs go to the configured file.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, logFile, err := logging.OpenFile(cfg, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Error().Err(err).Str("db", cfg.DBPath).Msg("failed to open database")
		return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	defer repo.Close()

	store := storage.NewStore(repo)
	reg := registry.New()
	loaded, err := store.LoadInto(cmd.Context(), reg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load plots")
		return err
	}
	logger.Info().Int("plots", loaded).Str("db", cfg.DBPath).Msg("agroplan starting")

	var program *tea.Program
	syncer := storage.NewSyncer(store, reg, logger, func(err error) {
		// Sync runs inside Update, so the message is sent asynchronously.
		if program != nil {
			go program.Send(update.AppErrorMsg{Err: err})
		}
	})
	detach := syncer.Attach()
	defer detach()

	if cfg.Gemini.APIKey == "" {
		logger.Warn().Msg("AGROPLAN_GEMINI_API_KEY not set; assistant requests will fail")
	}
	client := genai.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL, cfg.Gemini.Timeout)
	svc := planner.NewService(reg, client, logger)

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}

	model := update.NewModel(update.Deps{
		Registry:  reg,
		Planner:   svc,
		Scheduler: engine,
		Notifier:  notifier,
		Logger:    logger,
		Config:    cfg,
	})
	defer model.Close()

	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		logger.Error().Err(err).Msg("tui exited with error")
		return fmt.Errorf("agroplan failed: %w", err)
	}
	logger.Info().Int("dropped_reminders", int(engine.Dropped())).Msg("agroplan stopped")
	return nil
}
