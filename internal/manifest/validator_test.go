package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validPluginTOML = `
[plugin]
name = "contrib-rails"
version = "0.1.0"
languages = ["ruby"]
frameworks = ["rails"]

[templates]
step-handler = { path = "templates/step_handler", languages = ["ruby"] }
`

func TestValidatePlugin(t *testing.T) {
	p, err := ValidatePlugin("/plugins/contrib-rails", "user", []byte(validPluginTOML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "contrib-rails" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Version.String() != "0.1.0" {
		t.Errorf("Version = %s", p.Version)
	}
	if len(p.Languages) != 1 || p.Languages[0] != "ruby" {
		t.Errorf("Languages = %v", p.Languages)
	}
	ref, ok := p.Templates["step-handler"]
	if !ok {
		t.Fatal("missing step-handler template ref")
	}
	if ref.Path != "templates/step_handler" {
		t.Errorf("ref path = %q", ref.Path)
	}
}

func TestValidatePluginMissingFields(t *testing.T) {
	cases := map[string]string{
		"missing name":    "[plugin]\nversion = \"1.0.0\"\n",
		"missing version": "[plugin]\nname = \"x\"\n",
		"empty file":      "",
	}
	for label, content := range cases {
		t.Run(label, func(t *testing.T) {
			_, err := ValidatePlugin("/p", "user", []byte(content))
			var merr *Error
			if !errors.As(err, &merr) {
				t.Fatalf("expected manifest.Error, got %v", err)
			}
			if len(merr.Issues) == 0 {
				t.Error("expected schema issues")
			}
		})
	}
}

func TestValidatePluginBadTOML(t *testing.T) {
	_, err := ValidatePlugin("/p", "user", []byte("[plugin\nname ="))
	var merr *Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected manifest.Error, got %v", err)
	}
}

func TestValidatePluginBadSemver(t *testing.T) {
	_, err := ValidatePlugin("/p", "user", []byte("[plugin]\nname = \"x\"\nversion = \"not-a-version\"\n"))
	var merr *Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected manifest.Error, got %v", err)
	}
	if !strings.Contains(merr.Error(), "not-a-version") {
		t.Errorf("error should name the bad version: %v", merr)
	}
}

func TestValidatePluginEscapingTemplateRef(t *testing.T) {
	content := "[plugin]\nname = \"x\"\nversion = \"1.0.0\"\n[templates]\nevil = { path = \"../outside\" }\n"
	_, err := ValidatePlugin("/p", "user", []byte(content))
	var merr *Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected manifest.Error, got %v", err)
	}
}

// writePluginFixture lays out a plugin directory with one template.
func writePluginFixture(t *testing.T, templateTOML string) *Plugin {
	t.Helper()
	dir := t.TempDir()
	tmplDir := filepath.Join(dir, "templates", "step_handler")
	if err := os.MkdirAll(tmplDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmplDir, "template.toml"), []byte(templateTOML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmplDir, "handler.rb.tmpl"), []byte("class X\nend\n"), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := ValidatePlugin(dir, "user", []byte(validPluginTOML))
	if err != nil {
		t.Fatalf("plugin fixture invalid: %v", err)
	}
	return p
}

func TestLoadTemplate(t *testing.T) {
	p := writePluginFixture(t, `
[template]
name = "step-handler"
version = "1.0.0"

[parameters]
name = { type = "string", required = true }
namespace = { type = "string", required = false }

[outputs]
handler = { path = "app/handlers/{{ name | snake_case }}_handler.rb", template = "handler.rb.tmpl" }
`)

	def, err := LoadTemplate(p, "step-handler")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "step-handler" {
		t.Errorf("Name = %q", def.Name)
	}
	if len(def.Parameters) != 2 {
		t.Fatalf("got %d parameters, want 2", len(def.Parameters))
	}
	// Sorted by name: name before namespace.
	if def.Parameters[0].Name != "name" || !def.Parameters[0].Required {
		t.Errorf("first parameter = %+v", def.Parameters[0])
	}
	if len(def.Outputs) != 1 || def.Outputs[0].LogicalName != "handler" {
		t.Errorf("outputs = %+v", def.Outputs)
	}
}

func TestLoadTemplateRequiredWithDefault(t *testing.T) {
	p := writePluginFixture(t, `
[template]
name = "step-handler"

[parameters]
name = { type = "string", required = true, default = "oops" }

[outputs]
handler = { path = "h.rb", template = "handler.rb.tmpl" }
`)

	_, err := LoadTemplate(p, "step-handler")
	var terr *TemplateError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
	if !strings.Contains(terr.Error(), "default") {
		t.Errorf("error should mention the default invariant: %v", terr)
	}
}

func TestLoadTemplateEnumNeedsValues(t *testing.T) {
	p := writePluginFixture(t, `
[template]
name = "step-handler"

[parameters]
kind = { type = "enum" }

[outputs]
handler = { path = "h.rb", template = "handler.rb.tmpl" }
`)

	_, err := LoadTemplate(p, "step-handler")
	var terr *TemplateError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
}

func TestLoadTemplateDefaultTypeChecked(t *testing.T) {
	p := writePluginFixture(t, `
[template]
name = "step-handler"

[parameters]
count = { type = "int", default = "three" }

[outputs]
handler = { path = "h.rb", template = "handler.rb.tmpl" }
`)

	_, err := LoadTemplate(p, "step-handler")
	var terr *TemplateError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
}

func TestLoadTemplateNameMismatch(t *testing.T) {
	p := writePluginFixture(t, `
[template]
name = "other-name"

[outputs]
handler = { path = "h.rb", template = "handler.rb.tmpl" }
`)

	_, err := LoadTemplate(p, "step-handler")
	var terr *TemplateError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
}

func TestLoadTemplateMissingManifest(t *testing.T) {
	dir := t.TempDir()
	p, err := ValidatePlugin(dir, "user", []byte(validPluginTOML))
	if err != nil {
		t.Fatalf("plugin fixture invalid: %v", err)
	}

	_, err = LoadTemplate(p, "step-handler")
	var terr *TemplateError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TemplateError for missing template.toml, got %v", err)
	}
}

func TestLoadTemplateUndeclared(t *testing.T) {
	p := writePluginFixture(t, "[template]\nname = \"step-handler\"\n")

	_, err := LoadTemplate(p, "nope")
	var terr *TemplateError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
}
