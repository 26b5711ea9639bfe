package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/agroplan/internal/model"
	"github.com/sandeepkv93/agroplan/internal/registry"
	"github.com/sandeepkv93/agroplan/internal/storage"
)

func newPlotsCmd(opts *rootOptions) *cobra.Command {
	var filter storage.PlotListFilter
	cmd := &cobra.Command{
		Use:   "plots",
		Short: "List plots with plan progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if filter.Limit < 0 || filter.Offset < 0 {
				return fmt.Errorf("invalid page: --limit %d --offset %d", filter.Limit, filter.Offset)
			}
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			plots, err := s.store.LoadPlots(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(plots) == 0 {
				fmt.Fprintln(out, "No plots yet.")
				return nil
			}
			for _, p := range plots {
				fmt.Fprintln(out, plotLine(p))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&filter.WithPlanOnly, "with-plan", false, "Only list plots with an installed plan")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum plots to list (0 lists all)")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Plots to skip")
	return cmd
}

func plotLine(p model.Plot) string {
	progress := "sin plan"
	if p.HasPlan {
		done, total := p.PlanSummary()
		progress = fmt.Sprintf("%d/%d tareas", done, total)
		if p.PlanStartDate != nil {
			progress += " desde " + model.FormatDate(p.PlanStartDate)
		}
	}
	line := fmt.Sprintf("%s  %s (%s)  %s", p.ID, p.Name, p.PrimaryCrop, progress)
	if p.SoilType != "" || p.Dimension != "" {
		line += fmt.Sprintf("  [%s %s]", p.SoilType, p.Dimension)
	}
	return line
}

func newNextCmd(opts *rootOptions) *cobra.Command {
	var days, limit int
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next pending task and what is due soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 0 || limit <= 0 {
				return fmt.Errorf("invalid window: --days %d --limit %d", days, limit)
			}
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			reg, err := s.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}
			printNext(cmd.OutOrStdout(), reg, time.Now(), days, limit)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Days ahead to look for pending tasks")
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum upcoming tasks to print")
	return cmd
}

func printNext(out io.Writer, reg *registry.Registry, now time.Time, days, limit int) {
	next, ok := reg.NextPendingTask()
	if !ok {
		fmt.Fprintln(out, "Nothing pending.")
		return
	}
	fmt.Fprintf(out, "Next: %s\n", taskLine(next))

	upcoming := reg.PendingTasksWithinDays(days, now)
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	fmt.Fprintf(out, "\nNext %d days:\n", days)
	if len(upcoming) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, pt := range upcoming {
		fmt.Fprintf(out, "  %s\n", taskLine(pt))
	}
}

func taskLine(pt registry.PlotTask) string {
	return fmt.Sprintf("%s  %s · %s", model.FormatDate(pt.Task.DueDate), pt.Task.Text, pt.PlotName)
}
