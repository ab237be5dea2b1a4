package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dkorolev/flatgrep/internal/classify"
)

// NewClassifyCommand creates and returns the classify subcommand
func NewClassifyCommand() *cobra.Command {
	var (
		extension    string
		showPatterns bool
	)

	cmd := &cobra.Command{
		Use:   "classify <line>",
		Short: "Classify one line into named fields",
		Long: `Split the line on its detected delimiter and classify each token as an
identifier, phone, email, username, or name component. With --patterns,
also run the named pattern library (hashes, documents, URLs) over the
raw line.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			line := args[0]
			out := cmd.OutOrStdout()

			fields := classify.Classify(line, extension)
			if len(fields) == 0 {
				fmt.Fprintln(out, "no fields recognized")
			}
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%-12s %s\n", name, fields[name])
			}

			if !showPatterns {
				return nil
			}

			matches := classify.Extract(line)
			if len(matches) == 0 {
				fmt.Fprintln(out, "no patterns matched")
				return nil
			}
			patternNames := make([]string, 0, len(matches))
			for name := range matches {
				patternNames = append(patternNames, name)
			}
			sort.Strings(patternNames)
			fmt.Fprintln(out, "\npatterns:")
			for _, name := range patternNames {
				for _, match := range matches[name] {
					fmt.Fprintf(out, "  %-12s %s\n", name, match)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&extension, "extension", "e", ".txt", "file extension hint for delimiter detection")
	cmd.Flags().BoolVarP(&showPatterns, "patterns", "p", false, "also run the named pattern library")

	return cmd
}
