// Package discovery walks prioritized filesystem search roots and collects
// candidate plugin directories. This stage is pure traversal: no manifest
// parsing happens here, so malformed manifest content can never fail it.
package discovery

import (
	"os"
	"path/filepath"

	"github.com/tasker-systems/tasker-cli/internal/config"
)

// ManifestName is the file that marks a directory as a plugin candidate.
const ManifestName = "tasker-plugin.toml"

// Root is one prioritized search root. Roots earlier in a slice are
// higher priority.
type Root struct {
	Name string // e.g., "flag", "project", "profile", "user", "system"
	Path string
}

// Candidate is a plugin directory found during the search-path walk,
// carrying its raw manifest bytes for later validation.
type Candidate struct {
	Dir          string // absolute or root-relative plugin directory
	ManifestPath string
	Raw          []byte
	Source       string // name of the root it was found in
}

// Roots assembles the search roots for an invocation in fixed priority
// order: --plugin-path flags, the project-local plugins directory, the
// profile's plugin-paths, the user-level directory, then the system-level
// directory.
func Roots(cfg *config.EffectiveConfig, flagPaths []string, workDir string) []Root {
	var roots []Root

	for _, p := range flagPaths {
		roots = append(roots, Root{Name: "flag", Path: p})
	}

	roots = append(roots, Root{Name: "project", Path: config.ProjectPluginsDir(workDir)})

	for _, p := range cfg.PluginPaths {
		roots = append(roots, Root{Name: "profile", Path: expandHome(p)})
	}

	if user, err := config.UserPluginsDir(); err == nil {
		roots = append(roots, Root{Name: "user", Path: user})
	}

	roots = append(roots, Root{Name: "system", Path: config.SystemPluginsDir()})

	return roots
}

// Discover enumerates candidates across roots, preserving root-priority
// order. Only immediate subdirectories containing a manifest file count;
// there is no recursive search below one level, keeping discovery bounded.
// Roots that do not exist are silently skipped: optional search paths are
// expected to be absent in CI profiles.
func Discover(roots []Root) []Candidate {
	var result []Candidate

	for _, root := range roots {
		entries, err := os.ReadDir(root.Path)
		if err != nil {
			continue // missing or unreadable root
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			dir := filepath.Join(root.Path, entry.Name())
			manifestPath := filepath.Join(dir, ManifestName)
			raw, err := os.ReadFile(manifestPath)
			if err != nil {
				continue // not a plugin directory
			}

			result = append(result, Candidate{
				Dir:          dir,
				ManifestPath: manifestPath,
				Raw:          raw,
				Source:       root.Name,
			})
		}
	}

	return result
}

// expandHome resolves a leading "~/" against the user's home directory.
// Profile plugin paths commonly point at checkouts under $HOME.
func expandHome(path string) string {
	if path == "~" || (len(path) >= 2 && path[0] == '~' && path[1] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
