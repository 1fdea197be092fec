package find

import (
	"context"

	internal "github.com/TFMV/rfind/internal/search"
	"go.uber.org/zap"
)

// Re-export the types of the internal package.
type (
	// Config holds the settings of one search run.
	Config = internal.Config

	// SymlinkPolicy defines how symbolic links are processed.
	SymlinkPolicy = internal.SymlinkPolicy

	// DebugOpts is a set of -D diagnostics.
	DebugOpts = internal.DebugOpts

	// Predicate is a leaf test evaluated against a single directory entry.
	Predicate = internal.Predicate

	// Expr is a parsed expression.
	Expr = internal.Expr

	// Searcher runs expressions against a directory tree.
	Searcher = internal.Searcher

	// Stats holds traversal statistics.
	Stats = internal.Stats

	// Sink receives result lines.
	Sink = internal.Sink

	// SinkFunc adapts a function to the Sink interface.
	SinkFunc = internal.SinkFunc

	// ResultLine is a single match or error.
	ResultLine = internal.ResultLine

	// Stream is the logical destination of a result line.
	Stream = internal.Stream

	// Collector is an append-only in-memory sink.
	Collector = internal.Collector

	// LogLevel defines the verbosity of logging.
	LogLevel = internal.LogLevel
)

// Re-export all the constants
const (
	// Symlink policies
	SymlinkNever               = internal.SymlinkNever
	SymlinkFollow              = internal.SymlinkFollow
	SymlinkOnlyCommandLineArgs = internal.SymlinkOnlyCommandLineArgs

	// Streams
	Stdout = internal.Stdout
	Stderr = internal.Stderr

	// Debug options
	DebugExec   = internal.DebugExec
	DebugOpt    = internal.DebugOpt
	DebugRates  = internal.DebugRates
	DebugSearch = internal.DebugSearch
	DebugStat   = internal.DebugStat
	DebugTree   = internal.DebugTree
	DebugAll    = internal.DebugAll

	// Log levels
	LogLevelError = internal.LogLevelError
	LogLevelWarn  = internal.LogLevelWarn
	LogLevelInfo  = internal.LogLevelInfo
	LogLevelDebug = internal.LogLevelDebug
)

// Re-export the sentinel errors.
var (
	ErrEmptyExpression      = internal.ErrEmptyExpression
	ErrMissingOperand       = internal.ErrMissingOperand
	ErrUnmatchedParen       = internal.ErrUnmatchedParen
	ErrStrayParen           = internal.ErrStrayParen
	ErrEmptyGroup           = internal.ErrEmptyGroup
	ErrUnknownToken         = internal.ErrUnknownToken
	ErrInvalidRegex         = internal.ErrInvalidRegex
	ErrInvalidTypeMask      = internal.ErrInvalidTypeMask
	ErrInvalidDebugOpt      = internal.ErrInvalidDebugOpt
	ErrInvalidOptLevel      = internal.ErrInvalidOptLevel
	ErrInvalidWorkerCount   = internal.ErrInvalidWorkerCount
	ErrInvalidSymlinkPolicy = internal.ErrInvalidSymlinkPolicy
	ErrInvariant            = internal.ErrInvariant
)

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() Config {
	return internal.DefaultConfig()
}

// Depth is a helper for building optional depth bounds.
func Depth(n uint) *uint {
	return internal.Depth(n)
}

// NewSearcher validates cfg and returns a Searcher reporting to sink.
func NewSearcher(cfg Config, sink Sink, logger *zap.Logger) (*Searcher, error) {
	return internal.NewSearcher(cfg, sink, logger)
}

// Parse validates an expression without running it.
func Parse(tokens ...string) (*Expr, error) {
	return internal.Parse(tokens)
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return internal.NewCollector()
}

// NewLogger creates a zap logger with the specified log level.
func NewLogger(level LogLevel) *zap.Logger {
	return internal.NewLogger(level)
}

// Find searches root synchronously with the expression in tokens and
// returns every match line. With no tokens every entry is returned.
// Per-entry errors are dropped; use a Searcher with a Sink to see them.
func Find(ctx context.Context, root string, tokens ...string) ([]string, error) {
	if len(tokens) == 0 {
		tokens = []string{"--all"}
	}
	cfg := internal.DefaultConfig()
	cfg.StartingPath = root

	sink := internal.NewCollector()
	s, err := internal.NewSearcher(cfg, sink, nil)
	if err != nil {
		return nil, err
	}
	if _, err := s.Run(ctx, tokens); err != nil {
		return nil, err
	}
	return sink.Texts(internal.Stdout), nil
}

// LoggingSink wraps next so that every line is also logged at debug level.
func LoggingSink(logger *zap.Logger, next Sink) Sink {
	return SinkFunc(func(line ResultLine) {
		if line.Stream == Stderr {
			logger.Debug("search error", zap.String("text", line.Text))
		} else {
			logger.Debug("search match", zap.String("path", line.Text))
		}
		next.Emit(line)
	})
}
