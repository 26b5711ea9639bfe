package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/storage"
)

const exportVersion = 1

// exportFile is the YAML document written by export and read by import.
type exportFile struct {
	Version    int          `yaml:"version"`
	ExportedAt time.Time    `yaml:"exported_at"`
	Plots      []model.Plot `yaml:"plots"`
}

var errUnsupportedExport = errors.New("unsupported export version")

func newExportCmd(opts *rootOptions) *cobra.Command {
	var outPath, plotID string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write plots and their plans as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			plots, err := loadExportPlots(cmd.Context(), s.store, plotID)
			if err != nil {
				return err
			}
			data, err := encodeExport(plots, time.Now())
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			s.logger.Info().Str("path", outPath).Msg("plots exported")
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVar(&plotID, "plot", "", "Export only the plot with this id")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load plots from a YAML export, keeping their ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := importPlots(cmd.Context(), s.store, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d plots.\n", n)
			return nil
		},
	}
}

// loadExportPlots returns every stored plot, or only plotID when set.
func loadExportPlots(ctx context.Context, store *storage.Store, plotID string) ([]model.Plot, error) {
	if plotID == "" {
		return store.LoadPlots(ctx, storage.PlotListFilter{})
	}
	p, err := store.LoadPlot(ctx, plotID)
	if err != nil {
		return nil, err
	}
	return []model.Plot{p}, nil
}

func encodeExport(plots []model.Plot, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(exportFile{Version: exportVersion, ExportedAt: now.UTC(), Plots: plots}); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// importPlots validates the whole document and then writes every plot in one
// transaction. Plots whose id already exists are overwritten.
func importPlots(ctx context.Context, store *storage.Store, r io.Reader) (int, error) {
	var doc exportFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("decode export: %w", err)
	}
	if doc.Version != exportVersion {
		return 0, fmt.Errorf("%w: %d", errUnsupportedExport, doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Plots))
	for i := range doc.Plots {
		p := &doc.Plots[i]
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("plot %d: %w", i+1, err)
		}
		if _, dup := seen[p.ID]; dup {
			return 0, fmt.Errorf("plot %d: duplicate id %s", i+1, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.HasPlan && p.Plan == nil {
			p.Plan = []model.TaskItem{}
		}
	}
	if err := store.SavePlots(ctx, doc.Plots); err != nil {
		return 0, err
	}
	return len(doc.Plots), nil
}
