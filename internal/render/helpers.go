package render

import (
	"strings"
	"text/template"
)

// Case helpers available to path and body templates. All are pure ASCII
// transforms: word boundaries come from case changes and separator
// characters, never from locale rules, so rendered output is identical
// across platforms.

// SnakeCase converts a name to snake_case: "ProcessPayment" → "process_payment".
func SnakeCase(s string) string {
	return strings.Join(splitWords(s), "_")
}

// PascalCase converts a name to PascalCase: "process_payment" → "ProcessPayment".
func PascalCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, "")
}

// CamelCase converts a name to camelCase: "process_payment" → "processPayment".
func CamelCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		if i > 0 {
			words[i] = capitalize(w)
		}
	}
	return strings.Join(words, "")
}

// KebabCase converts a name to kebab-case: "ProcessPayment" → "process-payment".
func KebabCase(s string) string {
	return strings.Join(splitWords(s), "-")
}

// UpperCase converts a name to constant case: "ProcessPayment" → "PROCESS_PAYMENT".
func UpperCase(s string) string {
	return strings.ToUpper(strings.Join(splitWords(s), "_"))
}

// helperFuncs returns the FuncMap shared by path and body templates.
func helperFuncs() template.FuncMap {
	return template.FuncMap{
		"snake_case":  SnakeCase,
		"pascal_case": PascalCase,
		"camel_case":  CamelCase,
		"kebab_case":  KebabCase,
		"upper_case":  UpperCase,
	}
}

// splitWords breaks a name into lowercase words. Boundaries: separator
// characters, a lower/digit followed by an upper, and the last upper of an
// acronym run followed by a lower ("HTTPServer" → http, server).
func splitWords(s string) []string {
	var words []string
	var cur []byte

	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	b := []byte(s)
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == '_' || c == '-' || c == ' ' || c == '.' || c == '/':
			flush()
		case isUpper(c):
			prevLowerish := i > 0 && (isLower(b[i-1]) || isDigit(b[i-1]))
			acronymEnd := i > 0 && isUpper(b[i-1]) && i+1 < len(b) && isLower(b[i+1])
			if prevLowerish || acronymEnd {
				flush()
			}
			cur = append(cur, c)
		default:
			cur = append(cur, c)
		}
	}
	flush()
	return words
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
