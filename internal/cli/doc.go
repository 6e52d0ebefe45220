// Package cli wires the command surface: template list/info/generate,
// plugin list/validate, config show, and version. Commands resolve
// configuration, run discovery, and build a fresh registry per invocation;
// nothing persists across runs.
package cli
