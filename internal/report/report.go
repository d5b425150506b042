// Package report renders walk results in a stable order.
//
// Walk order depends on the filesystem, so every line is buffered and the
// buffer is sorted by byte value before anything is written.
package report

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/idelchi/treewalk/internal/treewalk"
)

// DefaultLocale is used for number grouping when no locale is given.
const DefaultLocale = "en"

// Report is the sorted result of a walk.
type Report struct {
	// Lines holds one "<path> => <size>\n" line per entry, sorted.
	Lines []string `json:"-"`
	// Entries holds the entries sorted by path.
	Entries []treewalk.Entry `json:"entries"`
	// Stats holds the file count and byte total.
	Stats treewalk.Stats `json:"stats"`
	// ErrorCount is the number of children skipped during the walk.
	ErrorCount int `json:"error_count"`
	// Elapsed is the time taken by the walk.
	Elapsed time.Duration `json:"elapsed"`
}

// Reporter collects entries and aggregates their totals in one pass. Add may
// be called concurrently; the buffer is only sorted by Report.
type Reporter struct {
	agg     treewalk.Aggregator
	mu      sync.Mutex
	lines   []string
	entries []treewalk.Entry
}

// NewReporter returns an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Aggregator exposes the running totals, e.g. for progress reporting.
func (r *Reporter) Aggregator() *treewalk.Aggregator {
	return &r.agg
}

// Add buffers one entry.
func (r *Reporter) Add(e treewalk.Entry) {
	r.agg.Add(e)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = append(r.lines, FormatEntry(e))
	r.entries = append(r.entries, e)
}

// Consume drains seq into the reporter and returns the first upstream error.
func (r *Reporter) Consume(seq iter.Seq2[treewalk.Entry, error]) error {
	for e, err := range seq {
		if err != nil {
			return err
		}

		r.Add(e)
	}

	return nil
}

// Report sorts the buffered entries and returns the result.
func (r *Reporter) Report() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := slices.Clone(r.lines)
	slices.Sort(lines)

	entries := slices.Clone(r.entries)
	slices.SortFunc(entries, func(a, b treewalk.Entry) int {
		return strings.Compare(a.Path, b.Path)
	})

	return &Report{
		Lines:   lines,
		Entries: entries,
		Stats:   r.agg.Stats(),
	}
}

// Render drains seq and returns the sorted report. On an upstream error no
// report is returned.
func Render(seq iter.Seq2[treewalk.Entry, error]) (*Report, error) {
	r := NewReporter()
	if err := r.Consume(seq); err != nil {
		return nil, err
	}

	return r.Report(), nil
}

// FormatEntry returns the canonical line for one entry.
func FormatEntry(e treewalk.Entry) string {
	return fmt.Sprintf("%s => %d\n", e.Path, e.Size)
}

// Trailer returns the summary line. The byte total is grouped according to
// locale, which falls back to DefaultLocale when empty or unknown.
func (r *Report) Trailer(locale string) string {
	p := message.NewPrinter(parseLocale(locale))

	return fmt.Sprintf("Total: %d files, %s bytes\n", r.Stats.FileCount, p.Sprintf("%d", r.Stats.TotalBytes))
}

// WriteText writes the sorted lines followed by the trailer.
func (r *Report) WriteText(w io.Writer, locale string) error {
	for _, line := range r.Lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, r.Trailer(locale))

	return err
}

func parseLocale(locale string) language.Tag {
	if locale == "" {
		locale = DefaultLocale
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}

	return tag
}
