package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultProfileName is used when neither the config file nor the CLI
// selects a profile.
const DefaultProfileName = "default"

// Profile is a named configuration bundle. Immutable once resolved.
type Profile struct {
	Name                string
	TemplatePaths       []string
	PluginPaths         []string
	PluginVersions      map[string]string
	UsePublishedPlugins bool
}

// EffectiveConfig is the single profile selected for one CLI invocation.
type EffectiveConfig struct {
	Profile
	// SourceFile is the config file the profile was loaded from; empty when
	// built-in defaults were used.
	SourceFile string
}

// Overrides carries CLI-flag values. They form the highest-priority layer:
// a non-nil field replaces the resolved profile's field entirely.
type Overrides struct {
	Profile       string
	TemplatePaths []string
	PluginPaths   []string
}

// Error reports a fatal configuration problem: a missing or malformed
// config file, or a profile name that does not exist in the loaded file.
type Error struct {
	Path string // config file involved, empty if none
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// configFile mirrors the on-disk TOML layout. Profile fields are pointers
// so that a field defined as an empty list is distinguishable from an
// absent field: whole-field override depends on that distinction.
type configFile struct {
	CLI      cliSection                `toml:"cli"`
	Profiles map[string]profileSection `toml:"profiles"`
}

type cliSection struct {
	DefaultProfile string `toml:"default-profile"`
}

type profileSection struct {
	TemplatePaths       *[]string          `toml:"template-paths"`
	PluginPaths         *[]string          `toml:"plugin-paths"`
	PluginVersions      *map[string]string `toml:"plugin-versions"`
	UsePublishedPlugins *bool              `toml:"use-published-plugins"`
}

// Resolve selects a config file, picks a profile, and merges the layers
// into one EffectiveConfig. It is a pure function of its inputs plus
// read-only filesystem access; the working directory anchors the
// project-level file search.
func Resolve(explicitPath string, ov Overrides) (*EffectiveConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("resolving working directory: %w", err)}
	}
	return ResolveIn(wd, explicitPath, ov)
}

// ResolveIn is Resolve with an explicit working directory, for tests.
func ResolveIn(workDir, explicitPath string, ov Overrides) (*EffectiveConfig, error) {
	path, err := selectFile(workDir, explicitPath)
	if err != nil {
		return nil, err
	}

	var file *configFile
	if path != "" {
		file, err = loadFile(path)
		if err != nil {
			return nil, err
		}
	}

	// Profile selection: --profile beats the file's [cli] default-profile.
	name := ov.Profile
	if name == "" && file != nil {
		name = file.CLI.DefaultProfile
	}
	if name == "" {
		name = DefaultProfileName
	}

	eff := &EffectiveConfig{
		Profile:    Profile{Name: name},
		SourceFile: path,
	}

	if file != nil {
		section, ok := file.Profiles[name]
		if !ok {
			return nil, &Error{Path: path, Err: fmt.Errorf("profile %q not defined", name)}
		}
		applyProfile(&eff.Profile, section)
	} else if name != DefaultProfileName {
		return nil, &Error{Err: fmt.Errorf("profile %q requested but no config file found", name)}
	}

	// CLI flags are the top layer, still whole-field override.
	if ov.TemplatePaths != nil {
		eff.TemplatePaths = ov.TemplatePaths
	}
	if ov.PluginPaths != nil {
		eff.PluginPaths = ov.PluginPaths
	}

	return eff, nil
}

// selectFile picks the single config file for this invocation:
// explicit --config path, project-level file, then user-level file.
// First found wins; none found returns "".
func selectFile(workDir, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", &Error{Path: explicitPath, Err: fmt.Errorf("reading config file: %w", err)}
		}
		return explicitPath, nil
	}

	project := ProjectConfigPath(workDir)
	if _, err := os.Stat(project); err == nil {
		return project, nil
	}

	user, err := UserConfigPath()
	if err == nil {
		if _, statErr := os.Stat(user); statErr == nil {
			return user, nil
		}
	}

	return "", nil
}

func loadFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("reading config file: %w", err)}
	}

	var file configFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("parsing config file: %w", err)}
	}
	return &file, nil
}

// applyProfile overlays defined fields from a file section onto the
// built-in defaults. Nil pointers mean "not defined" and inherit.
func applyProfile(p *Profile, s profileSection) {
	if s.TemplatePaths != nil {
		p.TemplatePaths = *s.TemplatePaths
	}
	if s.PluginPaths != nil {
		p.PluginPaths = *s.PluginPaths
	}
	if s.PluginVersions != nil {
		p.PluginVersions = *s.PluginVersions
	}
	if s.UsePublishedPlugins != nil {
		p.UsePublishedPlugins = *s.UsePublishedPlugins
	}
}
