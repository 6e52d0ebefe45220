package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "Output in JSON format")

	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

// shownConfig is the display shape of the effective profile.
type shownConfig struct {
	Profile             string            `yaml:"profile" json:"profile"`
	SourceFile          string            `yaml:"source-file,omitempty" json:"source_file,omitempty"`
	TemplatePaths       []string          `yaml:"template-paths" json:"template_paths"`
	PluginPaths         []string          `yaml:"plugin-paths" json:"plugin_paths"`
	PluginVersions      map[string]string `yaml:"plugin-versions,omitempty" json:"plugin_versions,omitempty"`
	UsePublishedPlugins bool              `yaml:"use-published-plugins" json:"use_published_plugins"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective profile after merging all config layers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		shown := shownConfig{
			Profile:             cfg.Name,
			SourceFile:          cfg.SourceFile,
			TemplatePaths:       cfg.TemplatePaths,
			PluginPaths:         cfg.PluginPaths,
			PluginVersions:      cfg.PluginVersions,
			UsePublishedPlugins: cfg.UsePublishedPlugins,
		}

		if configShowJSON {
			data, err := json.MarshalIndent(shown, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		data, err := yaml.Marshal(shown)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}
