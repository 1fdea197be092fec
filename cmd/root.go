package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/TFMV/rfind/internal/search"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var version = "0.1.0"

// Execute runs the root command. An interrupt cancels the search in
// progress.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the rfind command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "rfind [flags] [starting-path] [-- expression...]",
		Short: "Search a directory tree with a boolean expression",
		Long: `rfind walks a directory tree and prints every entry matching an expression
built from --name, --type and --regex tests joined with --and, --or, --not
and parentheses. Operators bind left to right with no precedence. With no
expression and no test flag every entry is listed (--all).

Examples:
  rfind . -- --name main.go
  rfind -L --maxdepth 2 src -- --type f --and --not --regex '_test\.go$'
  rfind --type d -D tree,stat`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, cfgFile, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return applySymlinkShorthands(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, trailing := splitArgs(cmd, args)
			if len(positional) > 1 {
				return fmt.Errorf("expected at most one starting path, got %d: %s",
					len(positional), strings.Join(positional, " "))
			}
			if len(positional) == 1 {
				v.Set("starting-path", positional[0])
			}
			return runSearch(cmd, v, trailing)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rfind.yaml)")

	flags.BoolP("never-follow", "P", false, "Never follow symbolic links (default)")
	flags.BoolP("follow", "L", false, "Follow symbolic links and report their targets")
	flags.BoolP("command-line-follow", "H", false, "Follow symbolic links only for the starting path")
	flags.String("symlinks", "never", "Symlink policy (never|follow|only-command-line-args)")

	flags.String("maxdepth", "", "Descend at most this many levels below the starting path")
	flags.String("mindepth", "", "Report nothing above this depth")
	flags.String("name", "", "Match entries with exactly this base name")
	flags.String("type", "", "Match entries having every type in this mask (bcdfpls)")
	flags.String("regex", "", "Match entries whose base name matches this regular expression")

	flags.StringP("debug", "D", "", "Comma separated debug options (-D help lists them)")
	flags.StringP("opt", "O", "1", "Optimisation level 0-3")
	flags.IntP("workers", "w", 0, "Worker pool size (0 walks synchronously)")
	flags.Bool("descend-matches", false, "Keep descending into directories that matched")
	flags.String("format", "text", "Output format (text|json)")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")

	for _, name := range []string{
		"symlinks", "maxdepth", "mindepth", "name", "type", "regex",
		"debug", "opt", "workers", "descend-matches", "format", "verbose",
	} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetDefault("starting-path", ".")

	rootCmd.AddCommand(newConfigCmd(v))
	return rootCmd
}

// initConfig reads in config file and ENV variables if set.
func initConfig(v *viper.Viper, cfgFile string, stderr io.Writer) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".rfind" (without extension).
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".rfind")
	}

	v.SetEnvPrefix("rfind")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

// applySymlinkShorthands folds -P, -L and -H into the symlinks setting.
// -L wins over -H, which wins over -P.
func applySymlinkShorthands(cmd *cobra.Command, v *viper.Viper) error {
	for _, s := range []struct{ flag, policy string }{
		{"follow", "follow"},
		{"command-line-follow", "only-command-line-args"},
		{"never-follow", "never"},
	} {
		on, err := cmd.Flags().GetBool(s.flag)
		if err != nil {
			return err
		}
		if on {
			v.Set("symlinks", s.policy)
			return nil
		}
	}
	return nil
}

// splitArgs separates positional arguments from the expression after "--".
func splitArgs(cmd *cobra.Command, args []string) ([]string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}

func runSearch(cmd *cobra.Command, v *viper.Viper, trailing []string) error {
	settings, err := loadSettings(v)
	if err != nil {
		return err
	}

	debug, err := search.ParseDebugOpts(settings.Debug)
	if err != nil {
		return err
	}
	if debug.Has(search.DebugHelp) {
		fmt.Fprint(cmd.OutOrStdout(), search.DebugHelpText())
		return nil
	}

	cfg, err := settings.Config()
	if err != nil {
		return err
	}

	sink, err := newSink(settings.Format, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	logger := search.NewLogger(logLevel(settings))
	defer logger.Sync() //nolint:errcheck

	searcher, err := search.NewSearcher(cfg, sink, logger)
	if err != nil {
		return err
	}

	tokens := settings.Expression(trailing)
	result, err := searcher.Run(cmd.Context(), tokens)
	if err != nil {
		return err
	}
	logger.Debug("search finished",
		zap.Strings("expression", tokens),
		zap.Bool("result", result),
	)
	return nil
}

func newSink(format string, stdout, stderr io.Writer) (search.Sink, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return search.NewConsoleSink(stdout, stderr), nil
	case "json":
		return search.NewJSONSink(stdout, stderr), nil
	default:
		return nil, fmt.Errorf("invalid format %q (expected text or json)", format)
	}
}

func logLevel(s Settings) search.LogLevel {
	if s.Verbose {
		return search.LogLevelDebug
	}
	return search.LogLevelInfo
}
