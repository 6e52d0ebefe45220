package manifest

import (
	"github.com/Masterminds/semver/v3"
)

// PluginFile mirrors the on-disk layout of tasker-plugin.toml.
type PluginFile struct {
	Plugin    PluginSection          `toml:"plugin"`
	Templates map[string]TemplateRef `toml:"templates"`
}

// PluginSection is the [plugin] table of a plugin manifest.
type PluginSection struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Description string   `toml:"description,omitempty"`
	Languages   []string `toml:"languages,omitempty"`
	Frameworks  []string `toml:"frameworks,omitempty"`
}

// TemplateRef points from a plugin manifest entry to a template directory,
// plus optional language/framework filters narrowing when it is offered.
type TemplateRef struct {
	Path       string   `toml:"path"`
	Languages  []string `toml:"languages,omitempty"`
	Frameworks []string `toml:"frameworks,omitempty"`
}

// TemplateFile mirrors the on-disk layout of template.toml.
type TemplateFile struct {
	Template   TemplateSection      `toml:"template"`
	Parameters map[string]ParamSpec `toml:"parameters"`
	Outputs    map[string]OutputRef `toml:"outputs"`
}

// TemplateSection is the [template] table of a template manifest.
type TemplateSection struct {
	Name        string `toml:"name"`
	Version     string `toml:"version,omitempty"`
	Description string `toml:"description,omitempty"`
}

// ParamSpec is one entry of the [parameters] table.
type ParamSpec struct {
	Type        string   `toml:"type"`
	Required    bool     `toml:"required,omitempty"`
	Default     any      `toml:"default,omitempty"`
	Values      []string `toml:"values,omitempty"`
	Description string   `toml:"description,omitempty"`
}

// OutputRef is one entry of the [outputs] table.
type OutputRef struct {
	Path     string `toml:"path"`
	Template string `toml:"template"`
	Optional bool   `toml:"optional,omitempty"`
}

// Plugin is a validated plugin record. Created during discovery+validation
// and immutable thereafter.
type Plugin struct {
	Name        string
	Version     *semver.Version
	Description string
	Languages   []string
	Frameworks  []string
	Templates   map[string]TemplateRef
	SourcePath  string // plugin directory
	Source      string // discovery root the plugin came from
}

// ParamType is the closed set of parameter types a template may declare.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeBool   ParamType = "bool"
	TypeInt    ParamType = "int"
	TypeEnum   ParamType = "enum"
)

// Parameter is a typed, optionally required input to a template render.
// Invariant: a required parameter never carries a default.
type Parameter struct {
	Name     string
	Type     ParamType
	Required bool
	Default  any // nil when not declared
	Values   []string
}

// Output pairs a template source file with a parameterized destination
// path. The expanded path must stay inside the caller's output root.
type Output struct {
	LogicalName  string
	PathTemplate string
	SourceFile   string
	Optional     bool
}

// TemplateDefinition is a validated template.toml, ready for rendering.
// Parameters and Outputs are sorted by name so rendering order, and
// therefore the rendered file set, is deterministic.
type TemplateDefinition struct {
	Name        string
	Description string
	Version     *semver.Version // nil when the manifest omits a version
	Dir         string          // template directory
	Parameters  []Parameter
	Outputs     []Output
}
