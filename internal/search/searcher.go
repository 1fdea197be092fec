package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Searcher runs expressions against a directory tree.
type Searcher struct {
	cfg    Config
	sink   Sink
	logger *zap.Logger

	last Stats
}

// NewSearcher validates cfg and returns a Searcher that reports to sink.
// A nil sink discards every line; a nil logger disables logging.
func NewSearcher(cfg Config, sink Sink, logger *zap.Logger) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = SinkFunc(func(ResultLine) {})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{cfg: cfg, sink: sink, logger: logger}, nil
}

// Config returns the configuration of the searcher.
func (s *Searcher) Config() Config { return s.cfg }

// Stats returns the statistics of the last completed run.
func (s *Searcher) Stats() Stats { return s.last }

// Run parses tokens and evaluates the expression, walking the starting path
// once per leaf test reached. It returns the truth value of the expression.
// Errors are either configuration errors, reported before any directory is
// read, or fatal errors that aborted the walk.
func (s *Searcher) Run(ctx context.Context, tokens []string) (bool, error) {
	expr, err := Parse(tokens)
	if err != nil {
		return false, err
	}

	logger := s.logger.With(zap.String("run_id", uuid.NewString()))
	if s.cfg.Debug.Has(DebugOpt) {
		logger.Info("parsed expression",
			zap.Stringer("expr", expr),
			zap.Int("leaves", len(expr.Leaves())),
			zap.Uint8("opt_level", s.cfg.OptLevel),
			zap.Int("workers", s.cfg.Workers),
			zap.Stringer("symlinks", s.cfg.Symlinks),
		)
	}

	var pool *Pool
	if s.cfg.pooled() {
		pool, err = NewPool(s.cfg.Workers, logger)
		if err != nil {
			return false, fmt.Errorf("starting worker pool: %w", err)
		}
	}

	start := time.Now()
	walker := NewWalker(s.cfg, s.sink, pool, logger)
	if s.cfg.Debug.Has(DebugRates) {
		walker.progress = newProgressReporter(walker.stats, start, logger)
	}

	result, evalErr := expr.Eval(ctx, func(ctx context.Context, pred Predicate) (bool, error) {
		matches, err := walker.Search(ctx, pred)
		if s.cfg.Debug.Has(DebugExec) {
			logger.Info("evaluated test",
				zap.Stringer("test", pred),
				zap.Bool("result", matches > 0),
				zap.Int64("matches", matches),
			)
		}
		return matches > 0, err
	})

	var poolErr error
	if pool != nil {
		poolErr = pool.Shutdown()
	}

	s.last = walker.stats.snapshot(start)
	if s.cfg.Debug.Has(DebugStat) {
		logger.Info("search statistics", s.last.fields()...)
	}

	if err := errors.Join(evalErr, poolErr); err != nil {
		return false, err
	}
	return result, nil
}
