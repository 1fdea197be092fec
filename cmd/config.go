package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as YAML",
		Long: `Print the settings rfind would search with after merging flags, the config
file and RFIND_* environment variables. The output is a valid config file.

Since "config" is a subcommand, search a directory of that name as
"rfind ./config".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(v)
			if err != nil {
				return err
			}
			if _, err := settings.Config(); err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(settings); err != nil {
				return fmt.Errorf("encoding settings: %w", err)
			}
			return enc.Close()
		},
	}
}
