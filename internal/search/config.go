// Package search implements a find-style recursive directory search: a
// boolean expression over name, type and regex tests is evaluated by walking
// a starting directory, optionally fanning subtrees out to a worker pool, and
// every match or per-entry error is handed to a Sink.
package search

import (
	"fmt"
	"strings"
)

// SymlinkPolicy defines how symbolic links are processed.
type SymlinkPolicy int

const (
	SymlinkNever               SymlinkPolicy = iota // Test the link itself, never follow
	SymlinkFollow                                   // Report the resolved target
	SymlinkOnlyCommandLineArgs                      // Follow only the starting path
)

// String returns the flag spelling of the policy.
func (p SymlinkPolicy) String() string {
	switch p {
	case SymlinkNever:
		return "never"
	case SymlinkFollow:
		return "follow"
	case SymlinkOnlyCommandLineArgs:
		return "only-command-line-args"
	default:
		return fmt.Sprintf("SymlinkPolicy(%d)", int(p))
	}
}

// ParseSymlinkPolicy parses the flag spelling of a policy.
func ParseSymlinkPolicy(s string) (SymlinkPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "never", "p":
		return SymlinkNever, nil
	case "follow", "l":
		return SymlinkFollow, nil
	case "only-command-line-args", "h":
		return SymlinkOnlyCommandLineArgs, nil
	default:
		return SymlinkNever, fmt.Errorf("%w: %q", ErrInvalidSymlinkPolicy, s)
	}
}

// MarshalText encodes the policy by its flag spelling.
func (p SymlinkPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts anything ParseSymlinkPolicy does.
func (p *SymlinkPolicy) UnmarshalText(text []byte) error {
	v, err := ParseSymlinkPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Config holds the settings of one search run. It is never mutated once the
// run starts and is shared by reference across all workers.
type Config struct {
	Symlinks     SymlinkPolicy
	MinDepth     *uint // nil means unset
	MaxDepth     *uint // nil means unset
	StartingPath string

	// DescendMatches keeps walking into a directory that already matched.
	// The default stops at the first match on a branch.
	DescendMatches bool

	Workers  int // 0 walks synchronously
	Debug    DebugOpts
	OptLevel uint8
}

// DefaultConfig returns the configuration used when no flag is given.
func DefaultConfig() Config {
	return Config{
		Symlinks:     SymlinkNever,
		StartingPath: ".",
		OptLevel:     1,
	}
}

// Validate rejects values that would make the run meaningless.
func (c Config) Validate() error {
	switch c.Symlinks {
	case SymlinkNever, SymlinkFollow, SymlinkOnlyCommandLineArgs:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSymlinkPolicy, int(c.Symlinks))
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, c.Workers)
	}
	if c.OptLevel > MaxOptLevel {
		return fmt.Errorf("%w: %d", ErrInvalidOptLevel, c.OptLevel)
	}
	return nil
}

// pooled reports whether subtrees are dispatched to a worker pool.
func (c Config) pooled() bool {
	return c.Workers > 0
}

// Depth is a helper for building optional depth bounds.
func Depth(n uint) *uint {
	return &n
}
