package render

import "testing"

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ProcessPayment":  "process_payment",
		"processPayment":  "process_payment",
		"process_payment": "process_payment",
		"process-payment": "process_payment",
		"HTTPServer":      "http_server",
		"OrderV2":         "order_v2",
		"name":            "name",
	}
	for in, want := range cases {
		if got := SnakeCase(in); got != want {
			t.Errorf("SnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPascalCase(t *testing.T) {
	cases := map[string]string{
		"process_payment": "ProcessPayment",
		"process-payment": "ProcessPayment",
		"ProcessPayment":  "ProcessPayment",
		"http_server":     "HttpServer",
	}
	for in, want := range cases {
		if got := PascalCase(in); got != want {
			t.Errorf("PascalCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCamelCase(t *testing.T) {
	cases := map[string]string{
		"process_payment": "processPayment",
		"ProcessPayment":  "processPayment",
	}
	for in, want := range cases {
		if got := CamelCase(in); got != want {
			t.Errorf("CamelCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKebabCase(t *testing.T) {
	if got := KebabCase("ProcessPayment"); got != "process-payment" {
		t.Errorf("KebabCase = %q, want %q", got, "process-payment")
	}
}

func TestUpperCase(t *testing.T) {
	cases := map[string]string{
		"ProcessPayment":  "PROCESS_PAYMENT",
		"process_payment": "PROCESS_PAYMENT",
	}
	for in, want := range cases {
		if got := UpperCase(in); got != want {
			t.Errorf("UpperCase(%q) = %q, want %q", in, got, want)
		}
	}
}
