package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tasker-systems/tasker-cli/internal/branding"
	"github.com/tasker-systems/tasker-cli/internal/config"
	"github.com/tasker-systems/tasker-cli/internal/discovery"
	"github.com/tasker-systems/tasker-cli/internal/registry"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// Persistent flags shared by every command.
var (
	flagConfig      string
	flagProfile     string
	flagPluginPaths []string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` discovers declarative plugins on prioritized search paths and
renders their templates into workflow-handler source files for your target
language and framework.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a config file (overrides project and user files)")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "Profile to use from the config file")
	rootCmd.PersistentFlags().StringArrayVar(&flagPluginPaths, "plugin-path", nil, "Additional plugin search root (highest priority, repeatable)")

	// Environment overrides: TASKER_CONFIG, TASKER_PROFILE, TASKER_PLUGIN_PATH.
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// loadConfig resolves the effective profile from flags, environment, and
// config files.
func loadConfig() (*config.EffectiveConfig, error) {
	return config.Resolve(viper.GetString("config"), config.Overrides{
		Profile: viper.GetString("profile"),
	})
}

// loadRegistry runs discovery and builds the per-invocation registry.
func loadRegistry(cfg *config.EffectiveConfig) (*registry.Registry, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	roots := discovery.Roots(cfg, pluginPathArgs(), wd)
	return registry.Build(discovery.Discover(roots), cfg.PluginVersions), nil
}

// pluginPathArgs returns the --plugin-path values, falling back to the
// TASKER_PLUGIN_PATH environment variable (path-list separated).
func pluginPathArgs() []string {
	if len(flagPluginPaths) > 0 {
		return flagPluginPaths
	}
	if env := os.Getenv(branding.EnvVar("PLUGIN_PATH")); env != "" {
		return filepath.SplitList(env)
	}
	return nil
}
