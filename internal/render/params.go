package render

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tasker-systems/tasker-cli/internal/manifest"
)

// Value is a concrete typed parameter value produced by the binder. The
// binder either succeeds with one of the variants or fails; it never
// coerces across types.
type Value interface {
	raw() any
}

// String is a bound string parameter.
type String string

// Bool is a bound bool parameter.
type Bool bool

// Int is a bound int parameter.
type Int int64

// Enum is a bound enum parameter, always a member of the declared values.
type Enum string

func (v String) raw() any { return string(v) }
func (v Bool) raw() any   { return bool(v) }
func (v Int) raw() any    { return int64(v) }
func (v Enum) raw() any   { return string(v) }

// ParameterReason classifies a binding failure.
type ParameterReason string

const (
	ReasonMissing      ParameterReason = "missing required parameter"
	ReasonTypeMismatch ParameterReason = "type mismatch"
	ReasonInvalidEnum  ParameterReason = "not a declared enum value"
	ReasonUnknown      ParameterReason = "not declared by the template"
)

// ParameterError reports a binding failure for one parameter. A render
// that fails binding writes no files.
type ParameterError struct {
	Name   string
	Reason ParameterReason
	Detail string
}

func (e *ParameterError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("parameter %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("parameter %q: %s (%s)", e.Name, e.Reason, e.Detail)
}

// Bind resolves every declared parameter against the supplied values:
// caller value, else declared default, else a Missing failure when
// required. All offending parameters are reported, joined.
// Absent optional parameters are simply unbound.
func Bind(def *manifest.TemplateDefinition, supplied map[string]any) (map[string]Value, error) {
	declared := make(map[string]bool, len(def.Parameters))
	values := make(map[string]Value, len(def.Parameters))
	var errs []error

	for _, param := range def.Parameters {
		declared[param.Name] = true

		v, ok := supplied[param.Name]
		if !ok {
			if param.Default != nil {
				v = param.Default
			} else if param.Required {
				errs = append(errs, &ParameterError{Name: param.Name, Reason: ReasonMissing})
				continue
			} else {
				continue // unbound optional
			}
		}

		typed, err := bindValue(param, v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values[param.Name] = typed
	}

	// Reject values for parameters the template never declared: silently
	// ignoring them would hide typos in --param names.
	var unknown []string
	for name := range supplied {
		if !declared[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs = append(errs, &ParameterError{Name: name, Reason: ReasonUnknown})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return values, nil
}

// bindValue type-checks one supplied value against its declaration.
// No coercion: a string "true" is not accepted for a bool parameter.
func bindValue(param manifest.Parameter, v any) (Value, error) {
	switch param.Type {
	case manifest.TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(param, "string", v)
		}
		return String(s), nil
	case manifest.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(param, "bool", v)
		}
		return Bool(b), nil
	case manifest.TypeInt:
		switch n := v.(type) {
		case int64:
			return Int(n), nil
		case int:
			return Int(n), nil
		}
		return nil, mismatch(param, "int", v)
	case manifest.TypeEnum:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(param, "enum", v)
		}
		for _, allowed := range param.Values {
			if allowed == s {
				return Enum(s), nil
			}
		}
		return nil, &ParameterError{
			Name:   param.Name,
			Reason: ReasonInvalidEnum,
			Detail: fmt.Sprintf("got %q, want one of %v", s, param.Values),
		}
	default:
		return nil, &ParameterError{
			Name:   param.Name,
			Reason: ReasonTypeMismatch,
			Detail: fmt.Sprintf("unknown declared type %q", param.Type),
		}
	}
}

func mismatch(param manifest.Parameter, want string, got any) *ParameterError {
	return &ParameterError{
		Name:   param.Name,
		Reason: ReasonTypeMismatch,
		Detail: fmt.Sprintf("want %s, got %T", want, got),
	}
}
