package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dkorolev/flatgrep/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for flatgrep
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatgrep",
		Short: "Parallel search over flat data files",
		Long: `Flatgrep searches large flat-file dumps (.txt, .csv) in parallel,
classifies matched lines into named fields (identifiers, phones, emails,
names), and caches results with a TTL so repeated queries are instant.

Files above a size threshold are scanned through a memory mapping;
smaller files go through a buffered reader with multi-encoding support
(UTF-8, Windows-1251, Latin-1, CP866).`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", config.DefaultFileName, "path to the YAML configuration file")
	cmd.PersistentFlags().Bool("verbose", false, "log to stderr in addition to the log file")

	// Add subcommands
	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewIndexCommand())
	cmd.AddCommand(NewCacheCommand())
	cmd.AddCommand(NewStatsCommand())
	cmd.AddCommand(NewClassifyCommand())
	cmd.AddCommand(NewPatternsCommand())

	return cmd
}
