package config

import (
	"os"
	"path/filepath"

	"github.com/tasker-systems/tasker-cli/internal/branding"
)

// File and directory name constants for the configuration convention.
const (
	ProjectConfigName = ".tasker.toml"
	UserConfigName    = "config.toml"
	PluginsDir        = "plugins"
)

// systemPluginsDir is overridable in tests.
var systemPluginsDir = filepath.Join("/usr", "local", "share", "tasker", PluginsDir)

// HomeDir returns the user-level dot directory (~/.tasker).
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// UserConfigPath returns the user-level config file path (~/.tasker/config.toml).
func UserConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UserConfigName), nil
}

// UserPluginsDir returns the user-level plugins directory (~/.tasker/plugins).
func UserPluginsDir() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PluginsDir), nil
}

// ProjectConfigPath returns the project-level config file path within dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ProjectConfigName)
}

// ProjectPluginsDir returns the project-local plugins directory within dir
// (<dir>/.tasker/plugins).
func ProjectPluginsDir(dir string) string {
	return filepath.Join(dir, branding.HomeDir(), PluginsDir)
}

// SystemPluginsDir returns the system-level plugins directory.
func SystemPluginsDir() string {
	return systemPluginsDir
}
