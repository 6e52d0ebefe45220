// Package config locates and layers configuration sources into the single
// effective profile used by one CLI invocation.
//
// Exactly one config file is consulted per invocation, selected in this
// order: an explicit --config path, the project-level .tasker.toml in the
// working directory, then the user-level ~/.tasker/config.toml. Fields from
// the selected profile layer over built-in defaults with whole-field
// override semantics: a field defined in a higher layer replaces the lower
// layer's value entirely, even when defined as an empty list. CLI flag
// values form the highest layer.
package config
