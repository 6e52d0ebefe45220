package manifest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Error reports a fatal problem with a plugin manifest. The candidate is
// dropped; sibling candidates continue to load.
type Error struct {
	Path   string // manifest path
	Issues []ValidationIssue
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid plugin manifest %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid plugin manifest %s: %s", e.Path, summarizeIssues(e.Issues))
}

func (e *Error) Unwrap() error { return e.Err }

// TemplateError reports a broken template within an otherwise valid plugin.
// Raised when the template is looked up, never at plugin-load time.
type TemplateError struct {
	Plugin   string
	Template string
	Path     string // template directory or manifest path
	Issues   []ValidationIssue
	Err      error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template %q in plugin %q: %v", e.Template, e.Plugin, e.Err)
	}
	return fmt.Sprintf("template %q in plugin %q: %s", e.Template, e.Plugin, summarizeIssues(e.Issues))
}

func (e *TemplateError) Unwrap() error { return e.Err }

func summarizeIssues(issues []ValidationIssue) string {
	if len(issues) == 0 {
		return "schema validation failed"
	}
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// ValidatePlugin checks a candidate's raw manifest bytes structurally and
// semantically, returning an immutable Plugin record. dir is the plugin
// directory, source names the discovery root it came from.
func ValidatePlugin(dir, source string, raw []byte) (*Plugin, error) {
	manifestPath := filepath.Join(dir, "tasker-plugin.toml")

	result, err := ValidatePluginSchema(raw)
	if err != nil {
		return nil, &Error{Path: manifestPath, Err: err}
	}
	if !result.Valid {
		return nil, &Error{Path: manifestPath, Issues: result.Issues}
	}

	file, err := ParsePlugin(raw)
	if err != nil {
		return nil, &Error{Path: manifestPath, Err: err}
	}

	version, err := semver.NewVersion(file.Plugin.Version)
	if err != nil {
		return nil, &Error{Path: manifestPath, Err: fmt.Errorf("version %q: %w", file.Plugin.Version, err)}
	}

	// Template refs must stay inside the plugin directory. A ref that
	// escapes is a manifest-level error: the plugin's identity includes
	// where its templates live.
	for name, ref := range file.Templates {
		if !insideDir(ref.Path) {
			return nil, &Error{
				Path: manifestPath,
				Err:  fmt.Errorf("template %q: path %q escapes the plugin directory", name, ref.Path),
			}
		}
	}

	templates := make(map[string]TemplateRef, len(file.Templates))
	for name, ref := range file.Templates {
		templates[name] = ref
	}

	return &Plugin{
		Name:        file.Plugin.Name,
		Version:     version,
		Description: file.Plugin.Description,
		Languages:   sortedSet(file.Plugin.Languages),
		Frameworks:  sortedSet(file.Plugin.Frameworks),
		Templates:   templates,
		SourcePath:  dir,
		Source:      source,
	}, nil
}

// LoadTemplate resolves one of a plugin's template refs into a validated
// TemplateDefinition. name is the key under the plugin's [templates] table.
func LoadTemplate(p *Plugin, name string) (*TemplateDefinition, error) {
	ref, ok := p.Templates[name]
	if !ok {
		return nil, &TemplateError{
			Plugin:   p.Name,
			Template: name,
			Path:     p.SourcePath,
			Err:      fmt.Errorf("not declared in plugin manifest"),
		}
	}

	dir := filepath.Join(p.SourcePath, ref.Path)
	manifestPath := filepath.Join(dir, TemplateManifestName)

	raw, err := readFile(manifestPath)
	if err != nil {
		return nil, &TemplateError{Plugin: p.Name, Template: name, Path: manifestPath, Err: err}
	}

	result, err := ValidateTemplateSchema(raw)
	if err != nil {
		return nil, &TemplateError{Plugin: p.Name, Template: name, Path: manifestPath, Err: err}
	}
	if !result.Valid {
		return nil, &TemplateError{Plugin: p.Name, Template: name, Path: manifestPath, Issues: result.Issues}
	}

	file, err := ParseTemplate(raw)
	if err != nil {
		return nil, &TemplateError{Plugin: p.Name, Template: name, Path: manifestPath, Err: err}
	}

	if file.Template.Name != name {
		return nil, &TemplateError{
			Plugin:   p.Name,
			Template: name,
			Path:     manifestPath,
			Err:      fmt.Errorf("manifest declares name %q but plugin registers it as %q", file.Template.Name, name),
		}
	}

	var version *semver.Version
	if file.Template.Version != "" {
		version, err = semver.NewVersion(file.Template.Version)
		if err != nil {
			return nil, &TemplateError{
				Plugin:   p.Name,
				Template: name,
				Path:     manifestPath,
				Err:      fmt.Errorf("version %q: %w", file.Template.Version, err),
			}
		}
	}

	params, err := buildParameters(file.Parameters)
	if err != nil {
		return nil, &TemplateError{Plugin: p.Name, Template: name, Path: manifestPath, Err: err}
	}

	outputs, err := buildOutputs(file.Outputs)
	if err != nil {
		return nil, &TemplateError{Plugin: p.Name, Template: name, Path: manifestPath, Err: err}
	}

	return &TemplateDefinition{
		Name:        name,
		Description: file.Template.Description,
		Version:     version,
		Dir:         dir,
		Parameters:  params,
		Outputs:     outputs,
	}, nil
}

// buildParameters converts and checks the [parameters] table, sorted by
// name for deterministic binding and error order.
func buildParameters(specs map[string]ParamSpec) ([]Parameter, error) {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]Parameter, 0, len(names))
	for _, name := range names {
		spec := specs[name]
		typ := ParamType(spec.Type)

		if spec.Required && spec.Default != nil {
			return nil, fmt.Errorf("parameter %q: required parameters must not declare a default", name)
		}
		if typ == TypeEnum && len(spec.Values) == 0 {
			return nil, fmt.Errorf("parameter %q: enum parameters must declare values", name)
		}
		if typ != TypeEnum && len(spec.Values) > 0 {
			return nil, fmt.Errorf("parameter %q: values are only valid for enum parameters", name)
		}
		if spec.Default != nil {
			if err := checkDefault(typ, spec.Default, spec.Values); err != nil {
				return nil, fmt.Errorf("parameter %q: %w", name, err)
			}
		}

		params = append(params, Parameter{
			Name:     name,
			Type:     typ,
			Required: spec.Required,
			Default:  spec.Default,
			Values:   sortedSet(spec.Values),
		})
	}
	return params, nil
}

// checkDefault verifies a declared default carries the declared type.
// TOML decodes integers as int64 and leaves strings and bools as-is.
func checkDefault(typ ParamType, value any, values []string) error {
	switch typ {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("default %v is not a string", value)
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("default %v is not a bool", value)
		}
	case TypeInt:
		if _, ok := value.(int64); !ok {
			return fmt.Errorf("default %v is not an int", value)
		}
	case TypeEnum:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("default %v is not a string", value)
		}
		for _, v := range values {
			if v == s {
				return nil
			}
		}
		return fmt.Errorf("default %q is not a declared enum value", s)
	default:
		return fmt.Errorf("unknown parameter type %q", typ)
	}
	return nil
}

// buildOutputs converts and checks the [outputs] table, sorted by logical
// name so the rendered file set is deterministic.
func buildOutputs(refs map[string]OutputRef) ([]Output, error) {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	outputs := make([]Output, 0, len(names))
	for _, name := range names {
		ref := refs[name]
		if !insideDir(ref.Template) {
			return nil, fmt.Errorf("output %q: source file %q escapes the template directory", name, ref.Template)
		}
		outputs = append(outputs, Output{
			LogicalName:  name,
			PathTemplate: ref.Path,
			SourceFile:   ref.Template,
			Optional:     ref.Optional,
		})
	}
	return outputs, nil
}

// insideDir reports whether a relative path stays within its base
// directory after cleaning.
func insideDir(path string) bool {
	if path == "" || filepath.IsAbs(path) {
		return false
	}
	clean := filepath.Clean(path)
	return clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

// sortedSet deduplicates and sorts a string set.
func sortedSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	var result []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	sort.Strings(result)
	return result
}
