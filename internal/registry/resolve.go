package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tasker-systems/tasker-cli/internal/manifest"
)

// ResolutionError reports a failed template lookup: either no template
// matched, or more than one did and the caller must disambiguate.
type ResolutionError struct {
	Name       string
	Ambiguous  bool
	Candidates []string // plugin names offering the template, resolution order
}

func (e *ResolutionError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("template %q is ambiguous; matched by plugins: %s (use --plugin to disambiguate)",
			e.Name, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("no template named %q matches the given filters", e.Name)
}

// Listing pairs a plugin with one of its loadable template definitions.
type Listing struct {
	Plugin   *manifest.Plugin
	Template *manifest.TemplateDefinition
}

// List returns every loadable (plugin, template) pair matching the
// optional language/framework filters, in resolution-priority order.
// Templates whose definitions fail to load are unlistable; their errors
// surface through Resolve or `plugin validate`, not here.
func (r *Registry) List(language, framework string) []Listing {
	var result []Listing
	for _, p := range r.active {
		for _, name := range sortedTemplateNames(p) {
			if !offered(p, p.Templates[name], language, framework) {
				continue
			}
			def, err := r.Template(p, name)
			if err != nil {
				continue
			}
			result = append(result, Listing{Plugin: p, Template: def})
		}
	}
	return result
}

// Resolve finds the single (plugin, template) pair for a generate or info
// request. Zero matches is NotFound; more than one is Ambiguous with the
// candidate plugin names listed. The CLI never silently picks one.
func (r *Registry) Resolve(name, plugin, language, framework string) (*manifest.Plugin, *manifest.TemplateDefinition, error) {
	var matches []*manifest.Plugin
	for _, p := range r.active {
		ref, ok := p.Templates[name]
		if !ok {
			continue
		}
		if plugin != "" && p.Name != plugin {
			continue
		}
		if !offered(p, ref, language, framework) {
			continue
		}
		matches = append(matches, p)
	}

	switch len(matches) {
	case 0:
		return nil, nil, &ResolutionError{Name: name}
	case 1:
		def, err := r.Template(matches[0], name)
		if err != nil {
			return nil, nil, err
		}
		return matches[0], def, nil
	default:
		candidates := make([]string, len(matches))
		for i, p := range matches {
			candidates[i] = p.Name
		}
		return nil, nil, &ResolutionError{Name: name, Ambiguous: true, Candidates: candidates}
	}
}

// offered applies the language/framework filters to one template entry.
// The ref's filters narrow the plugin's sets when present; an empty
// effective set leaves the template unconstrained on that axis.
func offered(p *manifest.Plugin, ref manifest.TemplateRef, language, framework string) bool {
	if language != "" && !memberOrUnconstrained(effectiveSet(ref.Languages, p.Languages), language) {
		return false
	}
	if framework != "" && !memberOrUnconstrained(effectiveSet(ref.Frameworks, p.Frameworks), framework) {
		return false
	}
	return true
}

func effectiveSet(refSet, pluginSet []string) []string {
	if len(refSet) > 0 {
		return refSet
	}
	return pluginSet
}

func memberOrUnconstrained(set []string, value string) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}

func sortedTemplateNames(p *manifest.Plugin) []string {
	names := make([]string, 0, len(p.Templates))
	for name := range p.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
