package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tasker-systems/tasker-cli/internal/manifest"
	"github.com/tasker-systems/tasker-cli/internal/render"
	"github.com/tasker-systems/tasker-cli/internal/writer"
)

var (
	templateLanguage  string
	templateFramework string
	templatePlugin    string
	templateListJSON  bool

	generateParams []string
	generateOutput string
	generateDryRun bool
)

func init() {
	templateCmd.PersistentFlags().StringVar(&templateLanguage, "language", "", "Filter by target language")
	templateCmd.PersistentFlags().StringVar(&templateFramework, "framework", "", "Filter by target framework")
	templateCmd.PersistentFlags().StringVar(&templatePlugin, "plugin", "", "Restrict to a single plugin by name")

	templateListCmd.Flags().BoolVar(&templateListJSON, "json", false, "Output in JSON format")

	templateGenerateCmd.Flags().StringArrayVar(&generateParams, "param", nil, "Template parameter as key=value (repeatable)")
	templateGenerateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output root directory (required)")
	templateGenerateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Render without writing, printing the file list")
	_ = templateGenerateCmd.MarkFlagRequired("output")

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateInfoCmd)
	templateCmd.AddCommand(templateGenerateCmd)
	rootCmd.AddCommand(templateCmd)
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "List, inspect, and generate from plugin templates",
}

// templateEntry represents one listable template for display.
type templateEntry struct {
	Name        string   `json:"name"`
	Plugin      string   `json:"plugin"`
	Version     string   `json:"version,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Frameworks  []string `json:"frameworks,omitempty"`
	Description string   `json:"description,omitempty"`
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates offered by discovered plugins",
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

		listings := reg.List(templateLanguage, templateFramework)

		var entries []templateEntry
		for _, l := range listings {
			if templatePlugin != "" && l.Plugin.Name != templatePlugin {
				continue
			}
			entry := templateEntry{
				Name:        l.Template.Name,
				Plugin:      l.Plugin.Name,
				Languages:   l.Plugin.Languages,
				Frameworks:  l.Plugin.Frameworks,
				Description: l.Template.Description,
			}
			if l.Template.Version != nil {
				entry.Version = l.Template.Version.String()
			}
			entries = append(entries, entry)
		}

		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
			return nil
		}

		if templateListJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TEMPLATE\tPLUGIN\tVERSION\tLANGUAGES\tDESCRIPTION")
		for _, e := range entries {
			version := e.Version
			if version == "" {
				version = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Name, e.Plugin, version, joinOrDash(e.Languages), e.Description)
		}
		return w.Flush()
	},
}

var templateInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show a template's parameters and outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		plugin, def, err := reg.Resolve(args[0], templatePlugin, templateLanguage, templateFramework)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Template:    %s\n", def.Name)
		if def.Version != nil {
			fmt.Fprintf(out, "Version:     %s\n", def.Version)
		}
		if def.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", def.Description)
		}
		fmt.Fprintf(out, "Plugin:      %s %s (%s)\n", plugin.Name, plugin.Version, plugin.SourcePath)

		if len(def.Parameters) > 0 {
			fmt.Fprintln(out, "\nParameters:")
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "  NAME\tTYPE\tREQUIRED\tDEFAULT\tVALUES")
			for _, p := range def.Parameters {
				fallback := "-"
				if p.Default != nil {
					fallback = fmt.Sprintf("%v", p.Default)
				}
				fmt.Fprintf(w, "  %s\t%s\t%v\t%s\t%s\n",
					p.Name, p.Type, p.Required, fallback, joinOrDash(p.Values))
			}
			w.Flush()
		}

		if len(def.Outputs) > 0 {
			fmt.Fprintln(out, "\nOutputs:")
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "  NAME\tPATH\tOPTIONAL")
			for _, o := range def.Outputs {
				fmt.Fprintf(w, "  %s\t%s\t%v\n", o.LogicalName, o.PathTemplate, o.Optional)
			}
			w.Flush()
		}
		return nil
	},
}

var templateGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Render a template into the output directory",
	Long: `Resolve a template by name, bind --param values against its declared
parameters, and render its outputs under --output. Files are written
all-or-nothing: a failing render writes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		_, def, err := reg.Resolve(args[0], templatePlugin, templateLanguage, templateFramework)
		if err != nil {
			return err
		}

		supplied, err := coerceParams(def, generateParams)
		if err != nil {
			return err
		}

		files, err := render.Render(def, supplied, generateOutput)
		if err != nil {
			return err
		}

		if generateDryRun {
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "would write %s (%d bytes)\n", f.Path, len(f.Content))
			}
			return nil
		}

		written, err := writer.WriteAll(generateOutput, files)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		}
		return nil
	},
}

// coerceParams converts --param key=value strings into typed values using
// the template's declared parameter types. The conversion is strict syntax
// only (e.g., bools accept exactly "true" or "false"); the engine's binder
// still performs the authoritative type check.
func coerceParams(def *manifest.TemplateDefinition, raw []string) (map[string]any, error) {
	types := make(map[string]manifest.ParamType, len(def.Parameters))
	for _, p := range def.Parameters {
		types[p.Name] = p.Type
	}

	supplied := make(map[string]any, len(raw))
	for _, pair := range raw {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: want key=value", pair)
		}

		switch types[key] {
		case manifest.TypeBool:
			switch value {
			case "true":
				supplied[key] = true
			case "false":
				supplied[key] = false
			default:
				return nil, &render.ParameterError{
					Name:   key,
					Reason: render.ReasonTypeMismatch,
					Detail: fmt.Sprintf("bool parameters accept true or false, got %q", value),
				}
			}
		case manifest.TypeInt:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, &render.ParameterError{
					Name:   key,
					Reason: render.ReasonTypeMismatch,
					Detail: fmt.Sprintf("int parameters want a decimal integer, got %q", value),
				}
			}
			supplied[key] = n
		default:
			// string, enum, and undeclared parameters pass through as
			// strings; the binder reports undeclared names.
			supplied[key] = value
		}
	}
	return supplied, nil
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}
