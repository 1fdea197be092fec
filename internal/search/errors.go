package search

import "errors"

// Expression errors. All of them are reported before any directory is read.
var (
	ErrEmptyExpression = errors.New("rfind: empty expression")
	ErrMissingOperand  = errors.New("rfind: missing operand")
	ErrUnmatchedParen  = errors.New("rfind: could not find enclosing )")
	ErrStrayParen      = errors.New("rfind: ) should not be here")
	ErrEmptyGroup      = errors.New("rfind: empty parentheses")
	ErrUnknownToken    = errors.New("rfind: unknown expression token")
)

// Configuration errors.
var (
	ErrInvalidRegex         = errors.New("rfind: invalid regex pattern")
	ErrInvalidTypeMask      = errors.New("rfind: invalid type mask")
	ErrInvalidDebugOpt      = errors.New("rfind: invalid debug option")
	ErrInvalidOptLevel      = errors.New("rfind: invalid optimisation level")
	ErrInvalidWorkerCount   = errors.New("rfind: worker count must be greater than zero")
	ErrInvalidSymlinkPolicy = errors.New("rfind: invalid symlink policy")
)

var (
	// ErrPoolClosed is returned by Submit once Shutdown has begun.
	ErrPoolClosed = errors.New("rfind: worker pool is shut down")

	// ErrInvariant marks states the walker cannot reason about. A run that
	// hits one aborts instead of continuing.
	ErrInvariant = errors.New("rfind: invariant violation")
)
