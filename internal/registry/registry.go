// Package registry holds the in-memory index over validated plugins built
// for one CLI invocation. It is a value constructed once per run and passed
// explicitly to the resolution and rendering stages; there is no
// process-wide registry state.
package registry

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/tasker-systems/tasker-cli/internal/discovery"
	"github.com/tasker-systems/tasker-cli/internal/manifest"
)

// Diagnostic records a non-fatal problem found while building the
// registry: an invalid manifest, a shadowed plugin, or a version-pin
// exclusion. One malformed plugin never blocks its siblings.
type Diagnostic struct {
	Path string // candidate directory
	Err  error
}

// Registry indexes validated plugins in discovery-priority order.
type Registry struct {
	active   []*manifest.Plugin // resolution order = discovery order
	byName   map[string]*manifest.Plugin
	shadowed []*manifest.Plugin
	excluded []*manifest.Plugin // version-pin violations
	diags    []Diagnostic

	// templates memoizes lazy template loads, including failures, keyed
	// by "<plugin>/<template>".
	templates map[string]templateResult
}

type templateResult struct {
	def *manifest.TemplateDefinition
	err error
}

// Build validates candidates in priority order and assembles the registry.
// pins maps plugin names to semver constraints from the effective profile;
// a plugin whose version violates its pin is excluded from resolution but
// kept for diagnostics, like a shadowed plugin.
func Build(candidates []discovery.Candidate, pins map[string]string) *Registry {
	r := &Registry{
		byName:    make(map[string]*manifest.Plugin),
		templates: make(map[string]templateResult),
	}

	for _, c := range candidates {
		p, err := manifest.ValidatePlugin(c.Dir, c.Source, c.Raw)
		if err != nil {
			r.diags = append(r.diags, Diagnostic{Path: c.Dir, Err: err})
			continue
		}

		if pin, ok := pins[p.Name]; ok {
			constraint, err := semver.NewConstraint(pin)
			if err != nil {
				r.diags = append(r.diags, Diagnostic{
					Path: c.Dir,
					Err:  fmt.Errorf("invalid version pin %q for plugin %q: %v (pin ignored)", pin, p.Name, err),
				})
			} else if !constraint.Check(p.Version) {
				r.excluded = append(r.excluded, p)
				r.diags = append(r.diags, Diagnostic{
					Path: c.Dir,
					Err:  fmt.Errorf("plugin %q version %s violates pin %q", p.Name, p.Version, pin),
				})
				continue
			}
		}

		// Name collision: the plugin from the higher-priority root wins.
		// The shadowed plugin is kept for `plugin list` diagnostics but
		// never participates in template resolution.
		if winner, ok := r.byName[p.Name]; ok {
			r.shadowed = append(r.shadowed, p)
			r.diags = append(r.diags, Diagnostic{
				Path: c.Dir,
				Err:  fmt.Errorf("plugin %q shadowed by %s", p.Name, winner.SourcePath),
			})
			continue
		}

		r.byName[p.Name] = p
		r.active = append(r.active, p)
	}

	return r
}

// Active returns the non-shadowed plugins in resolution-priority order.
func (r *Registry) Active() []*manifest.Plugin { return r.active }

// Shadowed returns plugins suppressed by a higher-priority plugin of the
// same name.
func (r *Registry) Shadowed() []*manifest.Plugin { return r.shadowed }

// Excluded returns plugins removed by a profile version pin.
func (r *Registry) Excluded() []*manifest.Plugin { return r.excluded }

// Diagnostics returns the aggregated non-fatal problems from Build.
func (r *Registry) Diagnostics() []Diagnostic { return r.diags }

// Template lazily loads and memoizes a plugin's template definition.
// A broken template.toml reports its TemplateError here, at lookup time,
// leaving the plugin's other templates usable.
func (r *Registry) Template(p *manifest.Plugin, name string) (*manifest.TemplateDefinition, error) {
	key := p.Name + "/" + name
	if cached, ok := r.templates[key]; ok {
		return cached.def, cached.err
	}

	def, err := manifest.LoadTemplate(p, name)
	r.templates[key] = templateResult{def: def, err: err}
	return def, err
}
