package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/rasff/internal/app"
	"github.com/law-makers/rasff/internal/config"
	"github.com/law-makers/rasff/internal/ui"
)

// Version is set at build time
var Version = "0.1.0"

// appOptions are passed to app.New for every command; tests inject fakes here
var appOptions []app.Option

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rasff",
		Short: "Archive daily RASFF food and feed safety alerts",
		Long: `rasff opens the public RASFF Window search screen in headless Chrome,
reads the results table, keeps the alerts notified on a given date and
merges them into a local archive file.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Initialize the application before running commands (skipped for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := GetApp(cmd); err == nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, appOptions...)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a, err := GetApp(cmd)
		if err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Close(ctx)
	}

	config.RegisterFlags(rootCmd)
	rootCmd.Flags().BoolP("help", "h", false, "Help for rasff")
	rootCmd.Flags().Bool("version", false, "Version for rasff")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(customHelpFunc)

	rootCmd.AddCommand(newExtractCmd(), newBackfillCmd(), newArchiveCmd())
	return rootCmd
}

// Execute runs the CLI with args and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %v\n", ui.Error("Error:"), err)
		return 1
	}
	return 0
}

// exitError ends the command with a code after its output was already printed
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
