package calculate

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	tenk "github.com/nevindra/tenk"
)

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2+3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"-5", -5},
		{"-5 + 3", -2},
		{"--5", 5},
		{"-(2 + 3)", -5},
		{"2 * -3", -6},
		{"3.5 * 2", 7},
		{".5 + .5", 1},
		{"((1))", 1},
		{"(5262 - 4578) / 4578 * 100", (5262.0 - 4578.0) / 4578.0 * 100},
		{"1 - 2 - 3", -4},
		{"100 / 10 / 2", 5},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Eval(tt.expr)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.expr, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"division by zero", "1 / 0"},
		{"division by zero expr", "5 / (3 - 3)"},
		{"unclosed paren", "(1 + 2"},
		{"trailing garbage", "1 + 2 extra"},
		{"letters", "revenue / 2"},
		{"dangling operator", "1 +"},
		{"bad number", "1..2 + 3"},
		{"stray paren", "1 + 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Eval(tt.expr); err == nil {
				t.Errorf("Eval(%q) succeeded, want error", tt.expr)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	tool := New()

	result, err := tool.Execute(context.Background(), "calculate", json.RawMessage(`{"expression":"(5262-4578)/4578*100"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Error != "" {
		t.Fatalf("result error = %q", result.Error)
	}
	if !strings.HasPrefix(result.Content, "14.9") {
		t.Errorf("Content = %q, want growth rate near 14.94", result.Content)
	}
}

func TestExecuteIntegerFormatting(t *testing.T) {
	tool := New()

	result, err := tool.Execute(context.Background(), "calculate", json.RawMessage(`{"expression":"2 + 3"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Content != "5" {
		t.Errorf("Content = %q, want 5 without decimal point", result.Content)
	}
}

func TestExecuteErrors(t *testing.T) {
	tool := New()

	result, err := tool.Execute(context.Background(), "calculate", json.RawMessage(`{"expression":"1/0"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Error == "" {
		t.Error("expected tool-level error for division by zero")
	}

	result, err = tool.Execute(context.Background(), "calculate", json.RawMessage(`not json`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Error == "" {
		t.Error("expected tool-level error for malformed args")
	}
}

func TestDefinitions(t *testing.T) {
	defs := New().Definitions()
	if len(defs) != 1 {
		t.Fatalf("definitions = %d, want 1", len(defs))
	}
	if defs[0].Name != "calculate" || defs[0].Kind != tenk.ToolCalculate {
		t.Errorf("definition = %+v", defs[0])
	}
	var schema map[string]any
	if err := json.Unmarshal(defs[0].Parameters, &schema); err != nil {
		t.Errorf("parameters not valid JSON: %v", err)
	}
}
