package cmd

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/TFMV/rfind/internal/search"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Settings is everything that can come from flags, the config file or the
// environment.
type Settings struct {
	StartingPath   string               `mapstructure:"starting-path" yaml:"starting-path"`
	Symlinks       search.SymlinkPolicy `mapstructure:"symlinks" yaml:"symlinks"`
	MaxDepth       string               `mapstructure:"maxdepth" yaml:"maxdepth,omitempty"`
	MinDepth       string               `mapstructure:"mindepth" yaml:"mindepth,omitempty"`
	Name           string               `mapstructure:"name" yaml:"name,omitempty"`
	Type           string               `mapstructure:"type" yaml:"type,omitempty"`
	Regex          string               `mapstructure:"regex" yaml:"regex,omitempty"`
	Debug          string               `mapstructure:"debug" yaml:"debug,omitempty"`
	Opt            string               `mapstructure:"opt" yaml:"opt"`
	Workers        int                  `mapstructure:"workers" yaml:"workers"`
	DescendMatches bool                 `mapstructure:"descend-matches" yaml:"descend-matches"`
	Format         string               `mapstructure:"format" yaml:"format"`
	Verbose        bool                 `mapstructure:"verbose" yaml:"verbose"`
}

// loadSettings decodes v into Settings.
func loadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	err := v.Unmarshal(&s, viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc()))
	if err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return s, nil
}

// Config converts the settings into a validated search configuration.
func (s Settings) Config() (search.Config, error) {
	cfg := search.DefaultConfig()
	cfg.Symlinks = s.Symlinks
	cfg.DescendMatches = s.DescendMatches
	cfg.Workers = s.Workers
	if s.StartingPath != "" {
		cfg.StartingPath = s.StartingPath
	}

	var err error
	if cfg.MaxDepth, err = parseDepth("maxdepth", s.MaxDepth); err != nil {
		return search.Config{}, err
	}
	if cfg.MinDepth, err = parseDepth("mindepth", s.MinDepth); err != nil {
		return search.Config{}, err
	}
	if cfg.Debug, err = search.ParseDebugOpts(s.Debug); err != nil {
		return search.Config{}, err
	}
	if s.Opt != "" {
		if cfg.OptLevel, err = search.ParseOptLevel(s.Opt); err != nil {
			return search.Config{}, err
		}
	}

	// -O0 forces a synchronous walk; -O2 and up bring in a pool sized to
	// the machine unless --workers picked a size.
	switch {
	case cfg.OptLevel == 0:
		cfg.Workers = 0
	case cfg.OptLevel >= 2 && cfg.Workers == 0:
		cfg.Workers = runtime.NumCPU()
	}

	if err := cfg.Validate(); err != nil {
		return search.Config{}, err
	}
	return cfg, nil
}

// Expression returns the tokens to evaluate: every test given as a flag,
// joined with --and in front of the trailing expression. With neither,
// every entry is listed.
func (s Settings) Expression(trailing []string) []string {
	var tokens []string
	for _, leaf := range []struct{ flag, value string }{
		{"--name", s.Name},
		{"--type", s.Type},
		{"--regex", s.Regex},
	} {
		if leaf.value != "" {
			tokens = append(tokens, leaf.flag, leaf.value, "--and")
		}
	}
	if len(trailing) == 0 {
		if len(tokens) == 0 {
			return []string{"--all"}
		}
		trailing = []string{"--true"}
	}
	return append(tokens, trailing...)
}

func parseDepth(flag, value string) (*uint, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(value, 10, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: must be a non-negative integer", flag, value)
	}
	return search.Depth(uint(n)), nil
}
