// Package render binds typed parameters, expands output-path expressions,
// and renders template file bodies into an in-memory file set.
//
// Rendering is pure: for identical inputs the returned bytes are identical
// across runs and platforms. The engine introduces no timestamps, random
// identifiers, or locale-dependent formatting; writing the result to disk
// is the caller's side effect, taken only after the whole render succeeds.
//
// Template files use text/template syntax. Bound parameters are installed
// as zero-argument functions, so a destination path or body can write
// {{ name | snake_case }} and gate sections with {{ if namespace }} or
// {{ if eq handler_type "api" }}.
package render
