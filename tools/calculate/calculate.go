// Package calculate provides a model-callable arithmetic evaluator, so
// financial deltas and ratios are computed exactly instead of by the model.
package calculate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	tenk "github.com/nevindra/tenk"
)

// CalculateTool evaluates arithmetic expressions with +, -, *, /, parentheses,
// and unary minus.
type CalculateTool struct{}

var _ tenk.Tool = (*CalculateTool)(nil)

// New creates a CalculateTool.
func New() *CalculateTool { return &CalculateTool{} }

func (c *CalculateTool) Definitions() []tenk.ToolDefinition {
	return []tenk.ToolDefinition{{
		Name:        "calculate",
		Kind:        tenk.ToolCalculate,
		Description: "Evaluate an arithmetic expression exactly. Supports +, -, *, /, parentheses, and negative numbers. Use for growth rates, ratios, and differences.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"expression":{"type":"string","description":"Arithmetic expression, e.g. (5262-4578)/4578*100"}},"required":["expression"]}`),
	}}
}

func (c *CalculateTool) Execute(_ context.Context, _ string, args json.RawMessage) (tenk.ToolResult, error) {
	var params struct {
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return tenk.ToolResult{Error: "invalid args: " + err.Error()}, nil
	}

	value, err := Eval(params.Expression)
	if err != nil {
		return tenk.ToolResult{Error: err.Error()}, nil
	}
	return tenk.ToolResult{Content: formatNumber(value)}, nil
}

// formatNumber trims trailing zeros but keeps integers clean.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Eval evaluates an arithmetic expression using recursive descent.
// Grammar:
//
//	expr   = term  { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = number | "-" factor | "(" expr ")"
func Eval(expression string) (float64, error) {
	p := &parser{input: strings.TrimSpace(expression)}
	if p.input == "" {
		return 0, fmt.Errorf("empty expression")
	}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("result is not a finite number")
	}
	return v, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) term() (float64, error) {
	v, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.factor()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.factor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) factor() (float64, error) {
	switch ch := p.peek(); {
	case ch == '-':
		p.pos++
		v, err := p.factor()
		if err != nil {
			return 0, err
		}
		return -v, nil
	case ch == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case ch >= '0' && ch <= '9' || ch == '.':
		return p.number()
	case ch == 0:
		return 0, fmt.Errorf("unexpected end of expression")
	default:
		return 0, fmt.Errorf("unexpected %q at position %d", ch, p.pos)
	}
}

func (p *parser) number() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if (ch >= '0' && ch <= '9') || ch == '.' {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return v, nil
}
