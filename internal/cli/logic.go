package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/treewalk/internal/report"
	"github.com/idelchi/treewalk/internal/treewalk"
)

func newLogger(w io.Writer, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	return log
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

func logic(ctx context.Context, options Options, stdout, stderr io.Writer) error {
	log := newLogger(stderr, options.Debug)

	excludes, err := treewalk.CompileExcludes(options.Excludes)
	if err != nil {
		return err
	}

	for _, re := range excludes {
		log.WithField("pattern", re.String()).Debug("exclude")
	}

	walkOpts := treewalk.Options{
		Logger:    log,
		DotFilter: options.DotFilter,
		MaxDepth:  options.Depth,
		Excludes:  excludes,
		MinSize:   options.MinSize,
		Workers:   options.Workers,
	}

	enableProgress := options.Progress &&
		options.Output != "json" &&
		!options.Debug &&
		isTerminal(stderr)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reporter := report.NewReporter()

	var progressDone <-chan struct{}

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressDone = treewalk.StartProgressReporter(ctx, reporter.Aggregator(), func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}, treewalk.DefaultProgressInterval)
	}

	start := time.Now()

	skipped, err := walk(ctx, options, walkOpts, reporter)

	// Stop the progress reporter before clearing its line
	cancel()

	if enableProgress {
		<-progressDone
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	rep := reporter.Report()
	rep.Elapsed = time.Since(start)
	rep.ErrorCount = len(skipped)

	log.WithFields(logrus.Fields{
		"files":   rep.Stats.FileCount,
		"bytes":   rep.Stats.TotalBytes,
		"skipped": rep.ErrorCount,
	}).Debug("walk complete")

	switch options.Output {
	case "json":
		return PrintJSON(rep, stdout)
	case "table":
		return PrintTable(rep, options.TopN, stdout)
	case "text":
		return PrintText(rep, options.Locale, stdout)
	default:
		return fmt.Errorf("unknown output format: %s", options.Output)
	}
}

// walk feeds every entry under options.Path into reporter and returns the
// skipped children.
func walk(
	ctx context.Context,
	options Options,
	walkOpts treewalk.Options,
	reporter *report.Reporter,
) ([]*treewalk.ChildError, error) {
	if options.Parallel {
		return treewalk.WalkParallel(ctx, options.Path, walkOpts, reporter.Add)
	}

	w, err := treewalk.Open(ctx, options.Path, walkOpts)
	if err != nil {
		return nil, err
	}

	if err := reporter.Consume(w.All()); err != nil {
		return w.Errors(), err
	}

	return w.Errors(), nil
}
