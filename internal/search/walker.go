package search

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/karrick/godirwalk"
	"go.uber.org/zap"
)

// Tree connectors used by -D tree.
const (
	treeBranch = "├── "
	treeLast   = "└── "
	treePipe   = "│   "
	treeBlank  = "    "
)

// Walker lists directories recursively, applies the symlink policy, depth
// bounds and a predicate, and forwards matches and errors to a Sink.
type Walker struct {
	cfg      Config
	sink     Sink
	pool     *Pool // nil walks synchronously
	logger   *zap.Logger
	stats    *Stats
	progress *progressReporter
}

// NewWalker creates a Walker. A nil pool makes every descent synchronous.
func NewWalker(cfg Config, sink Sink, pool *Pool, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		cfg:    cfg,
		sink:   sink,
		pool:   pool,
		logger: logger,
		stats:  &Stats{},
	}
}

// leafRun tracks a single search started from the starting path: the
// subtrees still in flight, the matches found, and the first fatal error.
type leafRun struct {
	ctx     context.Context
	pred    Predicate
	pending sync.WaitGroup
	matches atomic.Int64

	mu  sync.Mutex
	err error
}

func (r *leafRun) fail(err error) {
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
}

func (r *leafRun) failed() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Search walks the starting path with pred and returns the number of match
// lines emitted. It returns only once every dispatched subtree is done.
// Per-entry I/O failures become Stderr lines; the returned error is either
// an invariant violation or the context error.
func (w *Walker) Search(ctx context.Context, pred Predicate) (int64, error) {
	run := &leafRun{ctx: ctx, pred: pred}
	root := resolveStartingPath(w.cfg.StartingPath, w.cfg.Symlinks)

	if err := w.walk(run, root, "", 0); err != nil {
		run.fail(err)
	}
	run.pending.Wait()

	if err := run.failed(); err != nil {
		return run.matches.Load(), err
	}
	if err := ctx.Err(); err != nil {
		return run.matches.Load(), err
	}
	return run.matches.Load(), nil
}

// Stats returns a pointer to the live counters.
func (w *Walker) Stats() *Stats { return w.stats }

// walk lists dir and handles each entry in directory order.
func (w *Walker) walk(run *leafRun, dir, prefix string, depth uint) error {
	if run.ctx.Err() != nil || run.failed() != nil {
		return nil
	}

	dirents, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			w.emitError(prefix + "rfind: Permission denied for directory name " + dir)
		} else {
			w.emitError(prefix + "rfind: An error occurred when attempting to read the " + dir + " directory")
		}
		w.logger.Debug("listing failed", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	atomic.AddInt64(&w.stats.DirsListed, 1)
	if w.cfg.Debug.Has(DebugSearch) {
		w.logger.Info("listing directory",
			zap.String("dir", dir),
			zap.Uint("depth", depth),
			zap.Int("entries", len(dirents)),
		)
	}
	w.progress.tick()

	for i, de := range dirents {
		atomic.AddInt64(&w.stats.EntriesVisited, 1)

		linePrefix, childPrefix := w.treePrefixes(prefix, i == len(dirents)-1)
		name := de.Name()
		path := joinPath(dir, name)
		mode := de.ModeType()

		if mode&fs.ModeSymlink != 0 && w.cfg.Symlinks == SymlinkFollow {
			if err := w.followSymlink(run, path, linePrefix, depth); err != nil {
				return err
			}
			continue
		}

		if run.pred.Evaluate(name, mode, w.cfg.Symlinks) && w.matchAllowed(depth) {
			w.emitMatch(run, linePrefix+path)
			if !w.cfg.DescendMatches && run.pred.Kind() != PredicateAll {
				continue
			}
		}

		if mode.IsDir() && w.descentAllowed(depth) {
			if err := w.descend(run, path, childPrefix, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// followSymlink reports the target of the link at path. The link itself is
// never tested against the predicate.
func (w *Walker) followSymlink(run *leafRun, path, linePrefix string, depth uint) error {
	target, err := resolveSymlink(path)
	switch {
	case err == nil:
		if w.matchAllowed(depth) {
			w.emitMatch(run, linePrefix+target)
		}
	case errors.Is(err, errBrokenSymlink):
		w.emitError(linePrefix + "Broken symlink: " + path)
	case errors.Is(err, errSymlinkLoop):
		w.emitError(linePrefix + "Symlink loop: " + path)
	case errors.Is(err, errSymlinkPermission):
		w.emitError(linePrefix + "rfind: Permission denied for symlink " + path)
	default:
		return err
	}
	return nil
}

// descend walks child either in place or as a pool job.
func (w *Walker) descend(run *leafRun, child, prefix string, depth uint) error {
	if w.pool == nil {
		return w.walk(run, child, prefix, depth)
	}

	run.pending.Add(1)
	err := w.pool.Submit(func() error {
		defer run.pending.Done()
		if err := w.walk(run, child, prefix, depth); err != nil {
			// The leaf owns the error; the pool only hears about panics.
			run.fail(err)
		}
		return nil
	})
	if err != nil {
		run.pending.Done()
		return err
	}
	atomic.AddInt64(&w.stats.JobsDispatched, 1)
	return nil
}

func (w *Walker) matchAllowed(depth uint) bool {
	return w.cfg.MinDepth == nil || depth >= *w.cfg.MinDepth
}

func (w *Walker) descentAllowed(depth uint) bool {
	return w.cfg.MaxDepth == nil || depth < *w.cfg.MaxDepth
}

// treePrefixes returns the prefix of the current entry's line and the
// prefix handed to its children.
func (w *Walker) treePrefixes(prefix string, last bool) (string, string) {
	if !w.cfg.Debug.Has(DebugTree) {
		return "", ""
	}
	if last {
		return prefix + treeLast, prefix + treeBlank
	}
	return prefix + treeBranch, prefix + treePipe
}

func (w *Walker) emitMatch(run *leafRun, text string) {
	run.matches.Add(1)
	atomic.AddInt64(&w.stats.Matches, 1)
	w.sink.Emit(ResultLine{Stream: Stdout, Text: text})
}

func (w *Walker) emitError(text string) {
	atomic.AddInt64(&w.stats.Errors, 1)
	w.sink.Emit(ResultLine{Stream: Stderr, Text: text})
}

// joinPath joins dir and name without cleaning, so "." yields "./name".
func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, string(os.PathSeparator)) {
		return dir + name
	}
	return dir + string(os.PathSeparator) + name
}
