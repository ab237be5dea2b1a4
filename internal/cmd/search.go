package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dkorolev/flatgrep/internal/engine"
	"github.com/dkorolev/flatgrep/pkg/types"
)

// NewSearchCommand creates and returns the search subcommand
func NewSearchCommand() *cobra.Command {
	var (
		mode          string
		caseSensitive bool
		field         string
		limit         int
		noColor       bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the data files for a query",
		Long: `Search every data file for lines matching the query and print the
matches with their classified fields. Repeated queries are answered
from the result cache until the entry expires.

Match modes:
  substring  case-insensitive containment (default)
  exact      whole line equals the query after trimming
  regex      Go regular expression; invalid patterns fall back to substring`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			matchMode, err := types.ParseMatchMode(mode)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			query := types.Query{
				Text:          args[0],
				Mode:          matchMode,
				CaseSensitive: caseSensitive,
			}

			var result *engine.Result
			if field != "" {
				result, err = a.engine.SearchByField(cmd.Context(), field, args[0])
			} else {
				result, err = a.engine.Search(cmd.Context(), query)
			}
			if err != nil {
				return err
			}

			printSearchResult(cmd.OutOrStdout(), result, query, limit, noColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "substring", "match mode: substring, exact, or regex")
	cmd.Flags().BoolVarP(&caseSensitive, "case-sensitive", "c", false, "match case exactly")
	cmd.Flags().StringVarP(&field, "field", "f", "", "only keep records whose classified field equals the query")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum records to print (0 = all)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable match highlighting")

	return cmd
}

// printSearchResult renders records with the matched text highlighted and
// a one-line summary at the end.
func printSearchResult(out io.Writer, result *engine.Result, query types.Query, limit int, noColor bool) {
	highlight := color.New(color.FgYellow, color.Bold)
	fileColor := color.New(color.FgCyan)
	fieldColor := color.New(color.FgGreen)
	if noColor {
		highlight.DisableColor()
		fileColor.DisableColor()
		fieldColor.DisableColor()
	}

	records := result.Records
	truncated := 0
	if limit > 0 && len(records) > limit {
		truncated = len(records) - limit
		records = records[:limit]
	}

	for _, record := range records {
		fmt.Fprintf(out, "%s:%d: %s\n",
			fileColor.Sprint(record.File),
			record.LineNumber,
			highlightMatch(record.RawLine, query, highlight))

		if len(record.Fields) > 0 {
			names := make([]string, 0, len(record.Fields))
			for name := range record.Fields {
				names = append(names, name)
			}
			sort.Strings(names)
			parts := make([]string, 0, len(names))
			for _, name := range names {
				parts = append(parts, fmt.Sprintf("%s=%s", fieldColor.Sprint(name), record.Fields[name]))
			}
			fmt.Fprintf(out, "    %s\n", strings.Join(parts, " "))
		}
	}

	if truncated > 0 {
		fmt.Fprintf(out, "... and %d more\n", truncated)
	}

	source := "scanned"
	if result.Stats.CacheHit {
		source = "cached"
	}
	fmt.Fprintf(out, "%d results (%s) in %v", result.Stats.TotalResults, source, result.Stats.SearchTime.Round(time.Millisecond))
	if !result.Stats.CacheHit {
		fmt.Fprintf(out, ", %d files, %d lines", result.Stats.FilesSearched, result.Stats.LinesSearched)
	}
	fmt.Fprintln(out)
}

// highlightMatch wraps occurrences of the query text in the highlight
// color. Only substring mode gets per-occurrence highlighting; other
// modes return the line unchanged.
func highlightMatch(line string, query types.Query, highlight *color.Color) string {
	if query.Mode != "" && query.Mode != types.MatchSubstring {
		return line
	}
	needle := strings.TrimSpace(query.Text)
	if needle == "" {
		return line
	}

	var sb strings.Builder
	rest := line
	lowerNeedle := strings.ToLower(needle)
	for {
		idx := strings.Index(strings.ToLower(rest), lowerNeedle)
		if idx < 0 {
			sb.WriteString(rest)
			return sb.String()
		}
		sb.WriteString(rest[:idx])
		sb.WriteString(highlight.Sprint(rest[idx : idx+len(needle)]))
		rest = rest[idx+len(needle):]
	}
}
