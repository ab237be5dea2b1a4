package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates and returns the stats subcommand
func NewStatsCommand() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:          "stats",
		Short:        "Print lifetime search statistics",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.engine.Statistics(cmd.Context(), recent)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "searches:     %d\n", summary.Totals.TotalSearches)
			fmt.Fprintf(out, "results:      %d\n", summary.Totals.TotalResults)
			fmt.Fprintf(out, "search time:  %v\n", summary.Totals.TotalDuration.Round(time.Millisecond))
			fmt.Fprintf(out, "cache:        %d entries, %d hits, %d misses\n",
				summary.Cache.Entries, summary.Cache.Hits, summary.Cache.Misses)

			if len(summary.Recent) > 0 {
				fmt.Fprintln(out, "\nrecent searches:")
				for _, r := range summary.Recent {
					fmt.Fprintf(out, "  %s  %-20q %s mode, %d results, %v\n",
						r.CreatedAt.Format("2006-01-02 15:04:05"),
						r.Query, r.Mode, r.Results,
						r.Duration.Round(time.Millisecond))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&recent, "recent", "r", 10, "how many recent searches to list")

	return cmd
}
