package search

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSinkRoutesStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	sink := NewConsoleSink(&out, &errOut)

	sink.Emit(ResultLine{Stream: Stdout, Text: "./a"})
	sink.Emit(ResultLine{Stream: Stderr, Text: "Broken symlink: ./b"})
	sink.Emit(ResultLine{Stream: Stdout, Text: "./c"})

	// Buffers are not terminals, so no escape codes.
	assert.Equal(t, "./a\n./c\n", out.String())
	assert.Equal(t, "Broken symlink: ./b\n", errOut.String())
}

func TestColorDisabled(t *testing.T) {
	// Piping stdout must not turn off colors on stderr.
	saved := color.NoColor
	t.Cleanup(func() { color.NoColor = saved })
	color.NoColor = true

	tests := []struct {
		noColor string
		term    string
		want    bool
	}{
		{"", "xterm-256color", false},
		{"1", "xterm-256color", true},
		{"", "dumb", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("NO_COLOR=%q TERM=%s", tt.noColor, tt.term), func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("TERM", tt.term)
			assert.Equal(t, tt.want, colorDisabled())
		})
	}
}

func TestConsoleSinkConcurrentEmit(t *testing.T) {
	var out bytes.Buffer
	sink := NewConsoleSink(&out, &out)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sink.Emit(ResultLine{Text: fmt.Sprintf("w%d-%d", i, j)})
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(t, lines, 400)
	for _, l := range lines {
		assert.Regexp(t, `^w\d-\d+$`, l)
	}
}

func TestJSONSink(t *testing.T) {
	var out, errOut bytes.Buffer
	sink := NewJSONSink(&out, &errOut)

	sink.Emit(ResultLine{Stream: Stdout, Text: "./a"})
	sink.Emit(ResultLine{Stream: Stderr, Text: "oops"})

	assert.JSONEq(t, `{"stream":"stdout","text":"./a"}`, out.String())
	assert.JSONEq(t, `{"stream":"stderr","text":"oops"}`, errOut.String())
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Emit(ResultLine{Stream: Stdout, Text: "a"})
	c.Emit(ResultLine{Stream: Stderr, Text: "e"})
	c.Emit(ResultLine{Stream: Stdout, Text: "b"})

	assert.Equal(t, []string{"a", "b"}, c.Texts(Stdout))
	assert.Equal(t, []string{"e"}, c.Texts(Stderr))
	require.Len(t, c.Lines(), 3)

	c.Reset()
	assert.Empty(t, c.Lines())
}

func TestSinkFunc(t *testing.T) {
	var got []ResultLine
	var sink Sink = SinkFunc(func(l ResultLine) { got = append(got, l) })

	sink.Emit(ResultLine{Stream: Stderr, Text: "x"})
	assert.Equal(t, []ResultLine{{Stream: Stderr, Text: "x"}}, got)
	assert.Equal(t, "stderr", Stderr.String())
	assert.Equal(t, "stdout", Stdout.String())
}
