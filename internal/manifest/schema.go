package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/plugin.schema.json
var pluginSchemaBytes []byte

//go:embed schema/template.schema.json
var templateSchemaBytes []byte

var printer = message.NewPrinter(language.English)

// compiledSchema compiles an embedded JSON Schema once on first use.
type compiledSchema struct {
	name string
	raw  []byte

	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

var (
	pluginSchema   = &compiledSchema{name: "plugin.schema.json", raw: pluginSchemaBytes}
	templateSchema = &compiledSchema{name: "template.schema.json", raw: templateSchemaBytes}
)

func (c *compiledSchema) get() (*jsonschema.Schema, error) {
	c.once.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(c.raw))
		if err != nil {
			c.err = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(c.name, doc); err != nil {
			c.err = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		c.schema, c.err = compiler.Compile(c.name)
		if c.err != nil {
			c.err = fmt.Errorf("compiling schema: %w", c.err)
		}
	})
	return c.schema, c.err
}

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error from the schema.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/plugin/name", "/outputs/handler/path")
	Message string // Human-readable error message
	Keyword string // Schema keyword location that failed
}

func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidatePluginSchema validates raw tasker-plugin.toml bytes against the
// embedded plugin schema. The error return is for TOML syntax or schema
// compilation failures; validation issues come back in the result.
func ValidatePluginSchema(data []byte) (*ValidationResult, error) {
	return validateTOML(pluginSchema, data)
}

// ValidateTemplateSchema validates raw template.toml bytes against the
// embedded template schema.
func ValidateTemplateSchema(data []byte) (*ValidationResult, error) {
	return validateTOML(templateSchema, data)
}

func validateTOML(cs *compiledSchema, data []byte) (*ValidationResult, error) {
	schema, err := cs.get()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	// Unmarshal TOML to a generic structure. go-toml produces
	// JSON-compatible types (string, int64, float64, bool, maps, slices),
	// so a marshal round-trip with json.Number support is all the schema
	// validator needs.
	var raw any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	return &ValidationResult{
		Valid:  false,
		Issues: extractIssues(validationErr),
	}, nil
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)

	if len(issues) == 0 {
		return []ValidationIssue{{
			Message: ve.Error(),
		}}
	}
	return deduplicateIssues(issues)
}

// collectValidationIssues recursively walks the error tree to find leaf
// errors with specific property information.
func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		// Leaf error.
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword := ""
		if ve.ErrorKind != nil {
			kwPath := ve.ErrorKind.KeywordPath()
			if len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
		}

		msg := ""
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Skip generic container errors that aren't informative.
		if keyword == "oneOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, ValidationIssue{
			Path:    path,
			Message: msg,
			Keyword: keyword,
		})
		return
	}

	for _, cause := range ve.Causes {
		collectValidationIssues(cause, issues)
	}
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}
