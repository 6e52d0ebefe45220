package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tasker-systems/tasker-cli/internal/manifest"
)

// writeTemplateDir lays out template source files under a temp dir.
func writeTemplateDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRenderStepHandlerScenario(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{
		"handler.rb.tmpl": "class {{ name | pascal_case }}Handler\n  def call(step)\n  end\nend\n",
	})
	def := &manifest.TemplateDefinition{
		Name: "step-handler",
		Dir:  dir,
		Parameters: []manifest.Parameter{
			{Name: "name", Type: manifest.TypeString, Required: true},
		},
		Outputs: []manifest.Output{
			{
				LogicalName:  "handler",
				PathTemplate: "app/handlers/{{ name | snake_case }}_handler.rb",
				SourceFile:   "handler.rb.tmpl",
			},
		},
	}

	files, err := Render(def, map[string]any{"name": "ProcessPayment"}, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if files[0].Path != filepath.Join("app", "handlers", "process_payment_handler.rb") {
		t.Errorf("path = %q", files[0].Path)
	}
	if !strings.Contains(string(files[0].Content), "class ProcessPaymentHandler") {
		t.Errorf("content missing class name:\n%s", files[0].Content)
	}
}

func TestRenderDeterminism(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{
		"a.tmpl": "A: {{ name | upper_case }}\n",
		"b.tmpl": "B: {{ name | camel_case }}\n",
	})
	def := &manifest.TemplateDefinition{
		Name: "multi",
		Dir:  dir,
		Parameters: []manifest.Parameter{
			{Name: "name", Type: manifest.TypeString, Required: true},
		},
		Outputs: []manifest.Output{
			{LogicalName: "a", PathTemplate: "out/{{ name | snake_case }}_a.txt", SourceFile: "a.tmpl"},
			{LogicalName: "b", PathTemplate: "out/{{ name | snake_case }}_b.txt", SourceFile: "b.tmpl"},
		},
	}
	params := map[string]any{"name": "OrderShipment"}

	first, err := Render(def, params, t.TempDir())
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := Render(def, params, t.TempDir())
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("file counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Path != second[i].Path {
			t.Errorf("paths differ at %d: %q vs %q", i, first[i].Path, second[i].Path)
		}
		if !bytes.Equal(first[i].Content, second[i].Content) {
			t.Errorf("content differs for %s", first[i].Path)
		}
	}
}

func TestRenderPathTraversalFails(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{
		"safe.tmpl": "ok\n",
		"evil.tmpl": "pwned\n",
	})
	def := &manifest.TemplateDefinition{
		Name: "escape",
		Dir:  dir,
		Outputs: []manifest.Output{
			{LogicalName: "evil", PathTemplate: "../../etc/cron.d/x", SourceFile: "evil.tmpl"},
			{LogicalName: "safe", PathTemplate: "ok.txt", SourceFile: "safe.tmpl"},
		},
	}

	files, err := Render(def, nil, t.TempDir())
	var perr *PathSafetyError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PathSafetyError, got %v", err)
	}
	if perr.Output != "evil" {
		t.Errorf("offending output = %q, want evil", perr.Output)
	}
	if files != nil {
		t.Errorf("expected zero files on safety violation, got %d", len(files))
	}
}

func TestRenderAbsolutePathFails(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{"f.tmpl": "x\n"})
	def := &manifest.TemplateDefinition{
		Name: "abs",
		Dir:  dir,
		Outputs: []manifest.Output{
			{LogicalName: "f", PathTemplate: "/etc/passwd", SourceFile: "f.tmpl"},
		},
	}

	_, err := Render(def, nil, t.TempDir())
	var perr *PathSafetyError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PathSafetyError, got %v", err)
	}
}

func TestRenderCollisionFails(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{"f.tmpl": "x\n"})
	def := &manifest.TemplateDefinition{
		Name: "collide",
		Dir:  dir,
		Outputs: []manifest.Output{
			{LogicalName: "first", PathTemplate: "app/handlers/x.rb", SourceFile: "f.tmpl"},
			{LogicalName: "second", PathTemplate: "app/./handlers/x.rb", SourceFile: "f.tmpl"},
		},
	}

	files, err := Render(def, nil, t.TempDir())
	var cerr *CollisionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CollisionError, got %v", err)
	}
	if cerr.Outputs[0] != "first" || cerr.Outputs[1] != "second" {
		t.Errorf("colliding outputs = %v", cerr.Outputs)
	}
	if files != nil {
		t.Errorf("expected zero files on collision, got %d", len(files))
	}
}

func TestRenderConditionalBody(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{
		"handler.tmpl": "{{ if namespace }}module {{ namespace | pascal_case }}\n{{ end }}class {{ name | pascal_case }}\nend\n",
	})
	def := &manifest.TemplateDefinition{
		Name: "cond",
		Dir:  dir,
		Parameters: []manifest.Parameter{
			{Name: "name", Type: manifest.TypeString, Required: true},
			{Name: "namespace", Type: manifest.TypeString},
		},
		Outputs: []manifest.Output{
			{LogicalName: "handler", PathTemplate: "h.rb", SourceFile: "handler.tmpl"},
		},
	}

	t.Run("namespace supplied", func(t *testing.T) {
		files, err := Render(def, map[string]any{"name": "pay", "namespace": "billing"}, t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(files[0].Content), "module Billing") {
			t.Errorf("missing module wrapper:\n%s", files[0].Content)
		}
	})

	t.Run("namespace absent", func(t *testing.T) {
		files, err := Render(def, map[string]any{"name": "pay"}, t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(string(files[0].Content), "module") {
			t.Errorf("unexpected module wrapper:\n%s", files[0].Content)
		}
	})
}

func TestRenderEnumSelectsMixin(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{
		"handler.tmpl": "{{ if eq handler_type \"api\" }}include ApiHandler\n{{ else }}include BaseHandler\n{{ end }}",
	})
	def := &manifest.TemplateDefinition{
		Name: "mixin",
		Dir:  dir,
		Parameters: []manifest.Parameter{
			{Name: "handler_type", Type: manifest.TypeEnum, Values: []string{"api", "base"}, Default: "base"},
		},
		Outputs: []manifest.Output{
			{LogicalName: "handler", PathTemplate: "h.rb", SourceFile: "handler.tmpl"},
		},
	}

	files, err := Render(def, map[string]any{"handler_type": "api"}, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(files[0].Content), "include ApiHandler") {
		t.Errorf("wrong mixin:\n%s", files[0].Content)
	}
}

func TestRenderOptionalOutputSkipped(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{
		"handler.tmpl": "class X\nend\n",
		"spec.tmpl":    "describe {{ spec_name | pascal_case }}\n",
	})
	def := &manifest.TemplateDefinition{
		Name: "opt",
		Dir:  dir,
		Parameters: []manifest.Parameter{
			{Name: "spec_name", Type: manifest.TypeString},
		},
		Outputs: []manifest.Output{
			{LogicalName: "handler", PathTemplate: "h.rb", SourceFile: "handler.tmpl"},
			{LogicalName: "spec", PathTemplate: "spec/{{ spec_name | snake_case }}_spec.rb", SourceFile: "spec.tmpl", Optional: true},
		},
	}

	t.Run("skipped when parameter absent", func(t *testing.T) {
		files, err := Render(def, nil, t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 || files[0].Path != "h.rb" {
			t.Fatalf("expected only h.rb, got %v", files)
		}
	})

	t.Run("rendered when parameter supplied", func(t *testing.T) {
		files, err := Render(def, map[string]any{"spec_name": "PayStep"}, t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("expected 2 files, got %d", len(files))
		}
	})
}

func TestRenderRequiredOutputNeedsBoundParams(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{"f.tmpl": "x\n"})
	def := &manifest.TemplateDefinition{
		Name: "strict",
		Dir:  dir,
		Parameters: []manifest.Parameter{
			{Name: "suffix", Type: manifest.TypeString},
		},
		Outputs: []manifest.Output{
			{LogicalName: "f", PathTemplate: "out_{{ suffix }}.txt", SourceFile: "f.tmpl"},
		},
	}

	_, err := Render(def, nil, t.TempDir())
	var perr *ParameterError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParameterError, got %v", err)
	}
	if perr.Name != "suffix" {
		t.Errorf("offending parameter = %q, want suffix", perr.Name)
	}
}

func TestRenderOptionalEmptyBodySkipped(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{
		"spec.tmpl": "{{ if with_spec }}describe X\n{{ end }}",
	})
	def := &manifest.TemplateDefinition{
		Name: "empty",
		Dir:  dir,
		Parameters: []manifest.Parameter{
			{Name: "with_spec", Type: manifest.TypeBool, Default: false},
		},
		Outputs: []manifest.Output{
			{LogicalName: "spec", PathTemplate: "x_spec.rb", SourceFile: "spec.tmpl", Optional: true},
		},
	}

	files, err := Render(def, nil, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected empty optional output to be skipped, got %v", files)
	}
}
