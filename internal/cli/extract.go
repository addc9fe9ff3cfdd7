package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/rasff/internal/config"
	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/internal/engine/datefilter"
	"github.com/law-makers/rasff/internal/reqctx"
	"github.com/law-makers/rasff/internal/ui"
	"github.com/law-makers/rasff/internal/utils/output"
	"github.com/law-makers/rasff/pkg/models"
)

func newExtractCmd() *cobra.Command {
	var date, markdown string

	cmd := &cobra.Command{
		Use:   "extract --date DD/MM/YYYY",
		Short: "Extract the alerts of one day into the archive",
		Long: `Loads the RASFF Window results table, keeps the alerts notified on the
given date and merges them into the archive file. Rows already archived are
not duplicated. Nothing is written when no alert matches.`,
		Example: `  # Alerts of 19 March 2025 into "Historico RASFF.csv"
  rasff extract --date 19/03/2025

  # One file per day, filtered by the site's own date picker
  rasff extract --date 2025-03-19 --policy dated --strategy range -o alerts.csv

  # Also write a Markdown digest
  rasff extract --date 19/03/2025 --markdown digest.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, date, markdown)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Notification date (DD/MM/YYYY or YYYY-MM-DD)")
	cmd.Flags().StringVar(&markdown, "markdown", "", "Write a Markdown digest of the matched alerts")
	_ = cmd.MarkFlagRequired("date")
	config.RegisterExtractFlags(cmd)
	return cmd
}

func runExtract(cmd *cobra.Command, rawDate, markdown string) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}

	date, err := datefilter.ParseDate(rawDate)
	if err != nil {
		return err
	}
	target := a.Pipeline.Target(date)

	ctx := reqctx.WithRun(cmd.Context())
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	spinnerOut := errOut
	if a.Config.JSONLog || a.Config.LogLevel == "error" {
		spinnerOut = io.Discard
	}

	summary, err := runWithSpinner(ctx, spinnerOut, a.Pipeline, date, "Extracting alerts for "+target)
	if err != nil {
		err = reqctx.NewRunError(ctx, err)
		if !a.Config.JSONLog {
			fmt.Fprintf(errOut, "%s %v\n", ui.Error("✗ Extraction failed:"), err)
			if hint := failureHint(err); hint != "" {
				fmt.Fprintf(errOut, "  %s\n", ui.Dim(hint))
			}
		}
		return &exitError{code: 1, err: err}
	}

	if markdown != "" && summary.Outcome == models.OutcomeSaved {
		if err := output.SaveMarkdown(markdown, "RASFF alerts for "+target, a.Config.Endpoint, summary.Alerts); err != nil {
			return fmt.Errorf("write markdown digest: %w", err)
		}
		log.Debug().Str("path", markdown).Msg("Markdown digest saved")
	}

	if a.Config.JSONLog {
		return output.WriteJSON(out, summary)
	}
	printSummary(out, target, summary)
	return nil
}

func printSummary(w io.Writer, target string, s *models.RunSummary) {
	switch s.Outcome {
	case models.OutcomeNoAlerts:
		fmt.Fprintf(w, "%s %s\n", ui.Info("No alerts found for"), target)
	default:
		fmt.Fprintf(w, "%s %d alerts for %s saved to %s\n", ui.Success("✓"), s.Matched, target, s.Path)
		fmt.Fprintf(w, "  %s\n", ui.Dim(fmt.Sprintf("%d new, %d already archived, %d rows in archive", s.Added, s.Duplicates, s.Total)))
		if len(s.Backfilled) > 0 {
			fmt.Fprintf(w, "  %s %v\n", ui.Warn("backfilled columns:"), s.Backfilled)
		}
	}
	if s.Skipped > 0 {
		fmt.Fprintf(w, "  %s\n", ui.Warn(fmt.Sprintf("%d malformed rows skipped", s.Skipped)))
	}
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, engine.ErrBrowserLaunch):
		return "Is Chrome installed? Point --chrome or RASFF_CHROME_PATH at the executable."
	case errors.Is(err, engine.ErrNavigationTimeout):
		return "The results page did not render in time. Retry later or raise --timeout."
	case errors.Is(err, engine.ErrSchemaMismatch):
		return "The table columns changed. Use a new --output or --schema-policy union."
	case errors.Is(err, engine.ErrPersist):
		return "The archive could not be written; the previous file is unchanged."
	}
	return ""
}
