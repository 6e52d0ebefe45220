package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/tasker-systems/tasker-cli/internal/manifest"
)

// RenderedFile is one fully rendered output. Path is relative to the
// output root; Content is the exact byte sequence to write.
type RenderedFile struct {
	Path    string
	Content []byte
}

// PathSafetyError reports an expanded destination that is absolute or
// escapes the output root. It aborts the whole render with zero files.
type PathSafetyError struct {
	Output string // logical output name
	Path   string // offending expanded path
}

func (e *PathSafetyError) Error() string {
	return fmt.Sprintf("output %q: expanded path %q escapes the output root", e.Output, e.Path)
}

// CollisionError reports two outputs expanding to the same destination
// within one render. Raised before any file is written; never
// last-write-wins.
type CollisionError struct {
	Path    string
	Outputs [2]string // logical names of the colliding outputs
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("outputs %q and %q both expand to %q", e.Outputs[0], e.Outputs[1], e.Path)
}

// RenderError reports a template parse or execution failure for one output.
type RenderError struct {
	Output string
	Stage  string // "path" or "body"
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("output %q: rendering %s: %v", e.Output, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// plannedOutput is an output that survived path expansion.
type plannedOutput struct {
	output manifest.Output
	dest   string // cleaned path relative to the output root
}

// Render executes a template definition against supplied parameter values.
// Each step is a hard gate: parameter binding, destination expansion and
// safety checks, collision detection, then body rendering. Any failure
// returns zero files. Outputs render in logical-name order, so the result
// is deterministic for identical inputs.
func Render(def *manifest.TemplateDefinition, supplied map[string]any, outputRoot string) ([]RenderedFile, error) {
	values, err := Bind(def, supplied)
	if err != nil {
		return nil, err
	}

	funcs := helperFuncs()
	unbound := make(map[string]bool)
	for _, param := range def.Parameters {
		if v, ok := values[param.Name]; ok {
			raw := v.raw()
			funcs[param.Name] = func() any { return raw }
		} else {
			// Unbound optionals render as "" so conditional blocks keyed
			// on their truthiness work.
			unbound[param.Name] = true
			funcs[param.Name] = func() any { return "" }
		}
	}

	// Destination expansion and safety, all outputs, before any body renders.
	var planned []plannedOutput
	seen := make(map[string]string) // dest path -> logical name
	for _, output := range def.Outputs {
		tmpl, err := template.New(output.LogicalName).Funcs(funcs).Parse(output.PathTemplate)
		if err != nil {
			return nil, &RenderError{Output: output.LogicalName, Stage: "path", Err: err}
		}

		if name := referencesUnbound(tmpl, unbound); name != "" {
			if output.Optional {
				continue // skipped entirely, not rendered empty
			}
			return nil, &ParameterError{
				Name:   name,
				Reason: ReasonMissing,
				Detail: fmt.Sprintf("referenced by destination of output %q", output.LogicalName),
			}
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, nil); err != nil {
			return nil, &RenderError{Output: output.LogicalName, Stage: "path", Err: err}
		}

		dest, err := safeDestination(output, buf.String(), outputRoot)
		if err != nil {
			return nil, err
		}

		if prev, ok := seen[dest]; ok {
			return nil, &CollisionError{Path: dest, Outputs: [2]string{prev, output.LogicalName}}
		}
		seen[dest] = output.LogicalName

		planned = append(planned, plannedOutput{output: output, dest: dest})
	}

	// Body rendering.
	var files []RenderedFile
	for _, p := range planned {
		source := filepath.Join(def.Dir, p.output.SourceFile)
		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, &RenderError{Output: p.output.LogicalName, Stage: "body", Err: err}
		}

		tmpl, err := template.New(p.output.SourceFile).Funcs(funcs).Parse(string(raw))
		if err != nil {
			return nil, &RenderError{Output: p.output.LogicalName, Stage: "body", Err: err}
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, nil); err != nil {
			return nil, &RenderError{Output: p.output.LogicalName, Stage: "body", Err: err}
		}

		if p.output.Optional && len(bytes.TrimSpace(buf.Bytes())) == 0 {
			continue
		}

		files = append(files, RenderedFile{Path: p.dest, Content: buf.Bytes()})
	}

	return files, nil
}

// safeDestination normalizes an expanded destination and verifies it is a
// strict descendant of the output root. Absolute paths and any remaining
// ".." segments after cleaning are violations.
func safeDestination(output manifest.Output, expanded, outputRoot string) (string, error) {
	if strings.TrimSpace(expanded) == "" {
		return "", &RenderError{Output: output.LogicalName, Stage: "path", Err: fmt.Errorf("expanded to an empty path")}
	}
	if filepath.IsAbs(expanded) || strings.HasPrefix(expanded, "/") {
		return "", &PathSafetyError{Output: output.LogicalName, Path: expanded}
	}

	clean := filepath.Clean(filepath.FromSlash(expanded))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", &PathSafetyError{Output: output.LogicalName, Path: expanded}
	}

	// Belt and suspenders: the joined path must stay under the root.
	rel, err := filepath.Rel(outputRoot, filepath.Join(outputRoot, clean))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathSafetyError{Output: output.LogicalName, Path: expanded}
	}

	return clean, nil
}

// referencesUnbound walks a parsed template and returns the first unbound
// parameter it references, or "".
func referencesUnbound(tmpl *template.Template, unbound map[string]bool) string {
	if len(unbound) == 0 || tmpl.Tree == nil {
		return ""
	}
	idents := make(map[string]bool)
	collectIdents(tmpl.Tree.Root, idents)
	for _, param := range sortedKeys(unbound) {
		if idents[param] {
			return param
		}
	}
	return ""
}

// collectIdents gathers function identifiers from a template parse tree.
func collectIdents(node parse.Node, found map[string]bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			collectIdents(c, found)
		}
	case *parse.ActionNode:
		collectIdents(n.Pipe, found)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			collectIdents(cmd, found)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			collectIdents(arg, found)
		}
	case *parse.IdentifierNode:
		found[n.Ident] = true
	case *parse.IfNode:
		collectIdents(n.Pipe, found)
		collectIdents(n.List, found)
		collectIdents(n.ElseList, found)
	case *parse.RangeNode:
		collectIdents(n.Pipe, found)
		collectIdents(n.List, found)
		collectIdents(n.ElseList, found)
	case *parse.WithNode:
		collectIdents(n.Pipe, found)
		collectIdents(n.List, found)
		collectIdents(n.ElseList, found)
	case *parse.TemplateNode:
		collectIdents(n.Pipe, found)
	}
}

// sortedKeys keeps unbound-parameter reporting order deterministic.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
