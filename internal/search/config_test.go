package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymlinkPolicy(t *testing.T) {
	tests := map[string]SymlinkPolicy{
		"":                       SymlinkNever,
		"never":                  SymlinkNever,
		"P":                      SymlinkNever,
		"follow":                 SymlinkFollow,
		"L":                      SymlinkFollow,
		"only-command-line-args": SymlinkOnlyCommandLineArgs,
		"H":                      SymlinkOnlyCommandLineArgs,
	}
	for in, want := range tests {
		got, err := ParseSymlinkPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		if len(in) > 1 {
			assert.Equal(t, in, got.String())
		}
	}

	_, err := ParseSymlinkPolicy("sometimes")
	require.ErrorIs(t, err, ErrInvalidSymlinkPolicy)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad policy", func(c *Config) { c.Symlinks = SymlinkPolicy(9) }, ErrInvalidSymlinkPolicy},
		{"negative workers", func(c *Config) { c.Workers = -2 }, ErrInvalidWorkerCount},
		{"opt level", func(c *Config) { c.OptLevel = 4 }, ErrInvalidOptLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".", cfg.StartingPath)
	assert.Equal(t, SymlinkNever, cfg.Symlinks)
	assert.Nil(t, cfg.MinDepth)
	assert.Nil(t, cfg.MaxDepth)
	assert.False(t, cfg.pooled())
}
