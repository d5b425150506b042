package treewalk

import (
	"context"
	"iter"
	"sync"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Stats holds aggregate statistics for a walk.
type Stats struct {
	// FileCount is the number of non-directory entries.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the cumulative size of those entries.
	TotalBytes int64 `json:"total_bytes"`
}

// Aggregator sums entry sizes. Directories are ignored. The zero value is
// ready to use and safe for concurrent Add calls, which is how parallel walks
// merge their results.
type Aggregator struct {
	mu         sync.Mutex
	fileCount  int64
	totalBytes int64
}

// Add records one entry.
func (a *Aggregator) Add(e Entry) {
	if e.IsDir {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.fileCount++
	a.totalBytes += e.Size
}

// Stats returns a snapshot of the totals.
func (a *Aggregator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Stats{FileCount: a.fileCount, TotalBytes: a.totalBytes}
}

// Accumulate drains seq and returns the totals. The first upstream error
// stops the accumulation and is returned with the totals gathered so far.
func Accumulate(seq iter.Seq2[Entry, error]) (Stats, error) {
	var agg Aggregator

	for e, err := range seq {
		if err != nil {
			return agg.Stats(), err
		}

		agg.Add(e)
	}

	return agg.Stats(), nil
}

// StartProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
// The returned channel is closed once the reporter goroutine has exited, so no
// hook call happens after a receive from it.
func StartProgressReporter(
	ctx context.Context,
	agg *Aggregator,
	hook func(files, bytes int64),
	interval time.Duration,
) <-chan struct{} {
	done := make(chan struct{})

	if hook == nil {
		close(done)

		return done
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s := agg.Stats()
				hook(s.FileCount, s.TotalBytes)
			case <-ctx.Done():
				return
			}
		}
	}()

	return done
}
