// Package cli wires the agroplan commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/agroplan/internal/config"
	"github.com/sandeepkv93/agroplan/internal/logging"
	"github.com/sandeepkv93/agroplan/internal/registry"
	"github.com/sandeepkv93/agroplan/internal/storage"
)

type rootOptions struct {
	dbPath  string
	verbose bool
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "agroplan",
		Short: "Crop plans, task calendar and reminders for your plots",
		Long: `agroplan keeps a registry of plots, asks the assistant for activity
plans and schedules the resulting tasks on a calendar.

Without a subcommand it opens the terminal UI.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides AGROPLAN_DB)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newPlotsCmd(opts))
	root.AddCommand(newNextCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newVersionCmd(version))
	return root
}

func (o *rootOptions) loadConfig() (config.RuntimeConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.RuntimeConfig{}, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.verbose {
		cfg.LogLevel = zerolog.DebugLevel.String()
	}
	return cfg, nil
}

// session is the state shared by the one-shot commands.
type session struct {
	cfg    config.RuntimeConfig
	logger zerolog.Logger
	repo   *storage.SQLiteRepository
	store  *storage.Store
}

func openSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	logger.Debug().Str("db", cfg.DBPath).Msg("database opened")
	return &session{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		store:  storage.NewStore(repo),
	}, nil
}

func (s *session) Close() error {
	return s.repo.Close()
}

func (s *session) loadRegistry(ctx context.Context) (*registry.Registry, error) {
	reg := registry.New()
	n, err := s.store.LoadInto(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Int("plots", n).Msg("registry loaded")
	return reg, nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the agroplan version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agroplan %s\n", version)
		},
	}
}
