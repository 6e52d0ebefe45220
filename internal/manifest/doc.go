// Package manifest parses and validates plugin and template manifests.
//
// Validation runs at two levels. A plugin candidate's tasker-plugin.toml is
// checked structurally against an embedded JSON Schema and semantically
// (semver version, template refs), producing an immutable Plugin record.
// Each template's template.toml is only loaded and validated when the
// template is looked up, so a plugin with one broken template still serves
// its other templates.
package manifest
