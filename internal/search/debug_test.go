package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDebugOpts(t *testing.T) {
	tests := []struct {
		in   string
		want DebugOpts
	}{
		{"", 0},
		{"exec", DebugExec},
		{"tree,stat", DebugTree | DebugStat},
		{" Search , rates ", DebugSearch | DebugRates},
		{"all", DebugAll},
		{"help", DebugHelp},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDebugOpts(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDebugOpts("exec,verbose")
	require.ErrorIs(t, err, ErrInvalidDebugOpt)
}

func TestDebugOptsString(t *testing.T) {
	assert.Equal(t, "exec,opt,rates,search,stat,tree", DebugAll.String())
	assert.Equal(t, "stat,tree", (DebugTree | DebugStat).String())
	assert.False(t, DebugAll.Has(DebugHelp))
	assert.False(t, DebugOpts(0).Has(0))
}

func TestDebugHelpText(t *testing.T) {
	text := DebugHelpText()
	for _, name := range []string{"exec", "opt", "rates", "search", "stat", "tree", "all", "help"} {
		assert.Contains(t, text, name)
	}
}

func TestParseOptLevel(t *testing.T) {
	for in, want := range map[string]uint8{"0": 0, "1": 1, "2": 2, "3": 3} {
		got, err := ParseOptLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"4", "-1", "x", ""} {
		_, err := ParseOptLevel(in)
		require.ErrorIs(t, err, ErrInvalidOptLevel, in)
	}
}
