package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tasker-systems/tasker-cli/internal/discovery"
	"github.com/tasker-systems/tasker-cli/internal/manifest"
)

var pluginListJSON bool

func init() {
	pluginListCmd.Flags().BoolVar(&pluginListJSON, "json", false, "Output in JSON format")

	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginValidateCmd)
	rootCmd.AddCommand(pluginCmd)
}

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Inspect and validate discovered plugins",
}

// pluginEntry represents one discovered plugin for display.
type pluginEntry struct {
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	Languages  []string `json:"languages,omitempty"`
	Frameworks []string `json:"frameworks,omitempty"`
	Templates  []string `json:"templates,omitempty"`
	Source     string   `json:"source"`
	Path       string   `json:"path"`
	Status     string   `json:"status"` // "active", "shadowed", "excluded"
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered plugins, including shadowed ones and load failures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		var entries []pluginEntry
		for _, p := range reg.Active() {
			entries = append(entries, pluginToEntry(p, "active"))
		}
		for _, p := range reg.Shadowed() {
			entries = append(entries, pluginToEntry(p, "shadowed"))
		}
		for _, p := range reg.Excluded() {
			entries = append(entries, pluginToEntry(p, "excluded"))
		}

		if pluginListJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No plugins discovered.")
		} else {
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tSTATUS\tLANGUAGES\tTEMPLATES\tSOURCE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Name, e.Version, e.Status, joinOrDash(e.Languages), joinOrDash(e.Templates), e.Source)
			}
			w.Flush()
		}

		// Non-fatal manifest problems are aggregated here, on demand,
		// instead of cluttering every generate run.
		if diags := reg.Diagnostics(); len(diags) > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "\nDiagnostics:")
			for _, d := range diags {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", d.Path, d.Err)
			}
		}
		return nil
	},
}

var pluginValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a plugin directory and all of its templates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		manifestPath := filepath.Join(dir, discovery.ManifestName)

		raw, err := os.ReadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", manifestPath, err)
		}

		out := cmd.OutOrStdout()
		plugin, err := manifest.ValidatePlugin(dir, "local", raw)
		if err != nil {
			printManifestFailure(out, err)
			return err
		}

		fmt.Fprintf(out, "plugin %s %s: OK\n", plugin.Name, plugin.Version)

		// Validate every declared template, continuing past failures so
		// the report covers the whole plugin.
		names := make([]string, 0, len(plugin.Templates))
		for name := range plugin.Templates {
			names = append(names, name)
		}
		sort.Strings(names)

		var firstErr error
		for _, name := range names {
			def, err := manifest.LoadTemplate(plugin, name)
			if err != nil {
				printManifestFailure(out, err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			fmt.Fprintf(out, "template %s: OK (%d parameters, %d outputs)\n",
				def.Name, len(def.Parameters), len(def.Outputs))
		}
		return firstErr
	},
}

func pluginToEntry(p *manifest.Plugin, status string) pluginEntry {
	names := make([]string, 0, len(p.Templates))
	for name := range p.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	return pluginEntry{
		Name:       p.Name,
		Version:    p.Version.String(),
		Languages:  p.Languages,
		Frameworks: p.Frameworks,
		Templates:  names,
		Source:     p.Source,
		Path:       p.SourcePath,
		Status:     status,
	}
}

// printManifestFailure renders a validation failure with its schema issues
// when present.
func printManifestFailure(out io.Writer, err error) {
	switch e := err.(type) {
	case *manifest.Error:
		fmt.Fprintf(out, "plugin manifest %s: INVALID\n", e.Path)
		for _, issue := range e.Issues {
			fmt.Fprintf(out, "  %s\n", issue)
		}
		if e.Err != nil {
			fmt.Fprintf(out, "  %v\n", e.Err)
		}
	case *manifest.TemplateError:
		fmt.Fprintf(out, "template %s: INVALID (%s)\n", e.Template, e.Path)
		for _, issue := range e.Issues {
			fmt.Fprintf(out, "  %s\n", issue)
		}
		if e.Err != nil {
			fmt.Fprintf(out, "  %v\n", e.Err)
		}
	default:
		fmt.Fprintf(out, "  %v\n", err)
	}
}
