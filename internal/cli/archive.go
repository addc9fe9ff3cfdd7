package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/internal/ui"
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect or maintain an archive file",
	}

	inspect := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Show the columns and row count of an archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveInspect,
	}

	dedup := &cobra.Command{
		Use:   "dedup <path>",
		Short: "Remove duplicate rows from an archive in place",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveDedup,
	}

	cmd.AddCommand(inspect, dedup)
	return cmd
}

func runArchiveInspect(cmd *cobra.Command, args []string) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	t, exists, err := a.Store.Load(path)
	if err != nil {
		return err
	}
	if !exists {
		return engine.NewEngineError(engine.ErrCodePersistError, "archive does not exist", nil).
			WithDetail("path", path)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n", ui.Bold(path))
	fmt.Fprintf(w, "  rows:    %d\n", t.Len())
	fmt.Fprintf(w, "  columns: %s\n", strings.Join(t.Columns, ", "))
	return nil
}

func runArchiveDedup(cmd *cobra.Command, args []string) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}

	report, err := a.Store.Dedup(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s removed %d duplicate rows, %d rows remain\n",
		ui.Success("✓"), report.Duplicates, report.Total)
	return nil
}
