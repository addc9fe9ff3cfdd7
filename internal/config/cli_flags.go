package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format only")
	cmd.PersistentFlags().String("proxy", "", "Set HTTP/SOCKS5 proxy for the browser (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", "", "Timeout for each page element to appear (default 10s)")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("chrome", "", "Path to the Chrome executable")
	cmd.PersistentFlags().Bool("headful", false, "Show the browser window")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
}

// RegisterExtractFlags registers the flags of commands that run an extraction
func RegisterExtractFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.Flags().StringP("output", "o", "", "Archive file (.csv, .tsv or .json)")
	cmd.Flags().String("strategy", "", "Date filter strategy: match or range")
	cmd.Flags().String("policy", "", "Persistence policy: merge or dated")
	cmd.Flags().String("schema-policy", "", "On column changes: reject or union")
	cmd.Flags().Int("page-size", 0, "Rows per page to request (0 disables the page-size step)")
}
