package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/treewalk/internal/report"
	"github.com/idelchi/treewalk/internal/treewalk"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintText outputs the sorted entry lines and the totals trailer.
func PrintText(rep *report.Report, locale string, writer io.Writer) error {
	return rep.WriteText(writer, locale)
}

// PrintJSON outputs the report in JSON format.
func PrintJSON(rep *report.Report, writer io.Writer) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// largest returns up to n of the largest files, smallest first.
func largest(entries []treewalk.Entry, n int) []treewalk.Entry {
	files := make([]treewalk.Entry, 0, len(entries))

	for _, e := range entries {
		if !e.IsDir {
			files = append(files, e)
		}
	}

	// Stable on the path-sorted input, so ties keep path order
	slices.SortStableFunc(files, func(a, b treewalk.Entry) int {
		switch {
		case a.Size > b.Size:
			return -1
		case a.Size < b.Size:
			return 1
		default:
			return 0
		}
	})

	if len(files) > n {
		files = files[:n]
	}

	slices.Reverse(files)

	return files
}

// PrintTable outputs the report in human-readable table format.
func PrintTable(rep *report.Report, topN int, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	top := largest(rep.Entries, topN)

	fmt.Fprintln(w, "\nTop files:\t\t")

	for i, f := range top {
		pct := 0.0
		if rep.Stats.TotalBytes > 0 {
			pct = 100.0 * float64(f.Size) / float64(rep.Stats.TotalBytes)
		}

		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n",
			len(top)-i, f.Path, humanize.IBytes(uint64(f.Size)), pct) //nolint:gosec // Sizes are never negative
	}

	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Total files:\t%d\n", rep.Stats.FileCount)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(rep.Stats.TotalBytes)), rep.Stats.TotalBytes) //nolint:gosec // Sizes are never negative
	fmt.Fprintf(w, "Skipped:\t%d\n", rep.ErrorCount)

	fmt.Fprintf(w, "\nElapsed:\t%v\n", rep.Elapsed)

	return w.Flush()
}
