package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/rasff/internal/ui"
)

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\n%s\n", ui.Heading(strings.ToUpper(cmd.Name())))
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", cmd.Long)
	}

	fmt.Fprintf(w, "\n%s\n", ui.Bold("Usage"))
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", ui.Command(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s %s\n", ui.Command(cmd.CommandPath()), ui.Info("<command> [flags]"))
	}

	if cmd.HasExample() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Examples"))
		lastWasCommand := false
		for _, line := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "":
				continue
			case strings.HasPrefix(trimmed, "#"):
				if lastWasCommand {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "  %s\n", ui.Dim(trimmed))
				lastWasCommand = false
			default:
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+trimmed))
				lastWasCommand = true
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Commands"))
		var available []*cobra.Command
		maxLen := 0
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && c.Name() != "help" {
				available = append(available, c)
				if len(c.Name()) > maxLen {
					maxLen = len(c.Name())
				}
			}
		}
		for _, c := range available {
			padding := strings.Repeat(" ", maxLen-len(c.Name())+2)
			fmt.Fprintf(w, "  %s%s%s\n", ui.Command(c.Name()), padding, ui.Dim(c.Short))
		}
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Flags"))
		printFlags(w, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Global Flags"))
		printFlags(w, cmd.InheritedFlags().FlagUsages())
	}
	fmt.Fprintln(w)
}

// printFlags re-aligns pflag usages and colors the flag names
func printFlags(w io.Writer, usages string) {
	type flagLine struct{ flag, desc string }
	var lines []flagLine
	width := 28

	for _, line := range strings.Split(usages, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		parts := strings.SplitN(trimmed, "  ", 2)
		fl := flagLine{flag: strings.TrimSpace(parts[0])}
		if len(parts) == 2 {
			fl.desc = strings.TrimSpace(parts[1])
		}
		if len(fl.flag) > width {
			width = len(fl.flag)
		}
		lines = append(lines, fl)
	}

	for _, fl := range lines {
		padding := strings.Repeat(" ", width-len(fl.flag)+2)
		fmt.Fprintf(w, "  %s%s%s\n", ui.Success(fl.flag), padding, ui.Dim(fl.desc))
	}
}
