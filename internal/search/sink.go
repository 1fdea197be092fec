package search

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Stream is the logical destination of a result line.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// String returns the lower-case stream name.
func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// MarshalText encodes the stream by name.
func (s Stream) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ResultLine is a single match or error produced by the walker.
type ResultLine struct {
	Stream Stream `json:"stream"`
	Text   string `json:"text"`
}

// Sink receives result lines. Implementations are called from several
// workers at once and must serialize internally.
type Sink interface {
	Emit(line ResultLine)
}

// SinkFunc adapts a function to the Sink interface. The function must be
// safe for concurrent use.
type SinkFunc func(line ResultLine)

// Emit calls f(line).
func (f SinkFunc) Emit(line ResultLine) { f(line) }

// --------------------------------------------------------------------------
// Console
// --------------------------------------------------------------------------

// ConsoleSink writes matches to out and errors to errOut, one per line.
type ConsoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	matchColor *color.Color
	errColor   *color.Color
}

// NewConsoleSink creates a ConsoleSink. Colors are enabled only when the
// writers are terminals and NO_COLOR is unset.
func NewConsoleSink(out, errOut io.Writer) *ConsoleSink {
	s := &ConsoleSink{out: out, errOut: errOut}
	if isTerminal(out) {
		s.matchColor = color.New(color.FgGreen)
		s.matchColor.EnableColor()
	}
	if isTerminal(errOut) {
		s.errColor = color.New(color.FgRed)
		s.errColor.EnableColor()
	}
	return s
}

// isTerminal reports whether w is a terminal that should get colors. Each
// writer is checked on its own; color.NoColor only looks at stdout.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || colorDisabled() {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func colorDisabled() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb"
}

// Emit writes line to the writer of its stream.
func (s *ConsoleSink) Emit(line ResultLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, c := s.out, s.matchColor
	if line.Stream == Stderr {
		w, c = s.errOut, s.errColor
	}
	if c != nil {
		c.Fprintln(w, line.Text)
		return
	}
	fmt.Fprintln(w, line.Text)
}

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

// JSONSink writes every line as a JSON object on its stream's writer.
type JSONSink struct {
	mu     sync.Mutex
	out    *json.Encoder
	errOut *json.Encoder
}

// NewJSONSink creates a JSONSink.
func NewJSONSink(out, errOut io.Writer) *JSONSink {
	return &JSONSink{out: json.NewEncoder(out), errOut: json.NewEncoder(errOut)}
}

// Emit encodes line.
func (s *JSONSink) Emit(line ResultLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := s.out
	if line.Stream == Stderr {
		enc = s.errOut
	}
	// A ResultLine always encodes; a failing writer has nowhere to report to.
	_ = enc.Encode(line)
}

// --------------------------------------------------------------------------
// Collector
// --------------------------------------------------------------------------

// Collector is an append-only in-memory sink.
type Collector struct {
	mu    sync.Mutex
	lines []ResultLine
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Emit appends line.
func (c *Collector) Emit(line ResultLine) {
	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
}

// Lines returns a copy of every line collected so far.
func (c *Collector) Lines() []ResultLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ResultLine(nil), c.lines...)
}

// Texts returns the text of the lines emitted on stream.
func (c *Collector) Texts(stream Stream) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var texts []string
	for _, l := range c.lines {
		if l.Stream == stream {
			texts = append(texts, l.Text)
		}
	}
	return texts
}

// Reset drops every collected line.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}
