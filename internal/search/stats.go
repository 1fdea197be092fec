package search

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// progressInterval bounds how often -D rates logs progress.
const progressInterval = 500 * time.Millisecond

// Stats holds traversal statistics that are updated atomically during the walk.
type Stats struct {
	DirsListed     int64         // Directories successfully listed
	EntriesVisited int64         // Directory entries examined
	Matches        int64         // Stdout lines emitted
	Errors         int64         // Stderr lines emitted
	JobsDispatched int64         // Subtrees handed to the worker pool
	ElapsedTime    time.Duration // Total time elapsed
	EntriesPerSec  float64       // Entries examined per second
}

// snapshot returns a consistent copy with the derived fields filled in.
func (s *Stats) snapshot(start time.Time) Stats {
	out := Stats{
		DirsListed:     atomic.LoadInt64(&s.DirsListed),
		EntriesVisited: atomic.LoadInt64(&s.EntriesVisited),
		Matches:        atomic.LoadInt64(&s.Matches),
		Errors:         atomic.LoadInt64(&s.Errors),
		JobsDispatched: atomic.LoadInt64(&s.JobsDispatched),
		ElapsedTime:    time.Since(start),
	}
	if sec := out.ElapsedTime.Seconds(); sec > 0 {
		out.EntriesPerSec = float64(out.EntriesVisited) / sec
	}
	return out
}

// fields renders the stats as zap fields.
func (s Stats) fields() []zap.Field {
	return []zap.Field{
		zap.Int64("dirs_listed", s.DirsListed),
		zap.Int64("entries_visited", s.EntriesVisited),
		zap.Int64("matches", s.Matches),
		zap.Int64("errors", s.Errors),
		zap.Int64("jobs_dispatched", s.JobsDispatched),
		zap.Duration("elapsed", s.ElapsedTime),
		zap.Float64("entries_per_sec", s.EntriesPerSec),
	}
}

// progressReporter logs a snapshot at most once per progressInterval.
type progressReporter struct {
	stats    *Stats
	start    time.Time
	logger   *zap.Logger
	sometime rate.Sometimes
}

func newProgressReporter(stats *Stats, start time.Time, logger *zap.Logger) *progressReporter {
	return &progressReporter{
		stats:    stats,
		start:    start,
		logger:   logger,
		sometime: rate.Sometimes{Interval: progressInterval},
	}
}

// tick is called once per listed directory; it may log.
func (r *progressReporter) tick() {
	if r == nil {
		return
	}
	r.sometime.Do(func() {
		r.logger.Info("search progress", r.stats.snapshot(r.start).fields()...)
	})
}
