package cmd

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkorolev/flatgrep/internal/classify"
)

// NewPatternsCommand creates and returns the patterns subcommand
func NewPatternsCommand() *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:   "patterns [text]",
		Short: "Run the named pattern library over text",
		Long: `Extract named patterns (phones, emails, hashes, document numbers, URLs)
from the given text, or from stdin when no argument is given. Use
--name to restrict extraction to specific patterns; run with --list to
see the available names.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _ := cmd.Flags().GetBool("list")
			out := cmd.OutOrStdout()

			if list {
				for _, name := range classify.PatternNames() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			text, err := readPatternInput(cmd, args)
			if err != nil {
				return err
			}

			var matches map[string][]string
			if len(names) > 0 {
				matches = make(map[string][]string)
				for _, name := range names {
					found, known := classify.ExtractNamed(name, text)
					if !known {
						return fmt.Errorf("unknown pattern %q (see --list)", name)
					}
					if len(found) > 0 {
						matches[name] = found
					}
				}
			} else {
				matches = classify.Extract(text)
			}

			if len(matches) == 0 {
				fmt.Fprintln(out, "no patterns matched")
				return nil
			}

			sorted := make([]string, 0, len(matches))
			for name := range matches {
				sorted = append(sorted, name)
			}
			sort.Strings(sorted)
			for _, name := range sorted {
				for _, match := range matches[name] {
					fmt.Fprintf(out, "%-12s %s\n", name, match)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&names, "name", nil, "restrict extraction to these pattern names")
	cmd.Flags().Bool("list", false, "list available pattern names and exit")

	return cmd
}

// readPatternInput returns the positional argument, or stdin when absent.
func readPatternInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	var sb strings.Builder
	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		sb.WriteString(sc.Text())
		sb.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return sb.String(), nil
}
