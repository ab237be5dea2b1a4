package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCacheCommand creates and returns the cache subcommand
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cache",
		Short:        "Inspect and manage the result cache",
		SilenceUsage: true,
	}

	cmd.AddCommand(newCacheStatsCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "stats",
		Short:        "Print cache entry count and hit/miss counters",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats := a.engine.Cache().Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "enabled:  %v\n", stats.Enabled)
			fmt.Fprintf(out, "entries:  %d\n", stats.Entries)
			fmt.Fprintf(out, "hits:     %d\n", stats.Hits)
			fmt.Fprintf(out, "misses:   %d\n", stats.Misses)
			fmt.Fprintf(out, "hit rate: %.1f%%\n", stats.HitRate*100)
			return nil
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "clear",
		Short:        "Drop every cached result and reset the counters",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.engine.Cache().Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
}
