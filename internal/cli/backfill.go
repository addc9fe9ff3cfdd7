package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/rasff/internal/config"
	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/internal/engine/datefilter"
	"github.com/law-makers/rasff/internal/ui"
	"github.com/law-makers/rasff/internal/utils/output"
	"github.com/law-makers/rasff/pkg/models"
)

func newBackfillCmd() *cobra.Command {
	var from, to string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "backfill --from DATE --to DATE",
		Short: "Extract every day of a date range into the archive",
		Long: `Runs one extraction per calendar day between --from and --to, both
included. Each day gets its own browser session; runs that write the same
archive file are serialized.`,
		Example: `  # Catch up on the first week of March
  rasff backfill --from 01/03/2025 --to 07/03/2025

  # Two browsers at a time, one file per day
  rasff backfill --from 01/03/2025 --to 31/03/2025 --concurrency 2 --policy dated`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd, from, to, concurrency)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date (DD/MM/YYYY or YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last date (DD/MM/YYYY or YYYY-MM-DD)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Browser sessions to run in parallel (0 picks from CPU count)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	config.RegisterExtractFlags(cmd)
	return cmd
}

func runBackfill(cmd *cobra.Command, rawFrom, rawTo string, concurrency int) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}

	start, err := datefilter.ParseDate(rawFrom)
	if err != nil {
		return err
	}
	end, err := datefilter.ParseDate(rawTo)
	if err != nil {
		return err
	}
	dates, err := engine.DateRange(start, end)
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	barOut := errOut
	if a.Config.JSONLog || a.Config.LogLevel == "error" {
		barOut = io.Discard
	}
	bar := progressbar.NewOptions(len(dates),
		progressbar.OptionSetWriter(barOut),
		progressbar.OptionSetDescription("Backfilling"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var results []engine.DateResult
	for r := range engine.NewBatchRunner(a.Pipeline, concurrency).Run(cmd.Context(), dates) {
		results = append(results, r)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	sort.Slice(results, func(i, j int) bool { return results[i].Date.Before(results[j].Date) })

	failed := 0
	var summaries []*models.RunSummary
	for _, r := range results {
		label := r.Date.Format("02/01/2006")
		switch {
		case r.Err != nil:
			failed++
			if !a.Config.JSONLog {
				fmt.Fprintf(errOut, "%s %s: %v\n", ui.Error("✗"), label, r.Err)
			}
		case r.Summary.Outcome == models.OutcomeNoAlerts:
			summaries = append(summaries, r.Summary)
			if !a.Config.JSONLog {
				fmt.Fprintf(out, "%s %s: no alerts\n", ui.Dim("-"), label)
			}
		default:
			summaries = append(summaries, r.Summary)
			if !a.Config.JSONLog {
				fmt.Fprintf(out, "%s %s: %d alerts, %d new\n", ui.Success("✓"), label, r.Summary.Matched, r.Summary.Added)
			}
		}
	}

	if a.Config.JSONLog {
		for _, s := range summaries {
			if err := output.WriteJSON(out, s); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d of %d dates failed", failed, len(dates))}
	}
	return nil
}
