package tenk

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolKind identifies one of the fixed analysis capabilities.
type ToolKind string

const (
	ToolSearch    ToolKind = "search"
	ToolCalculate ToolKind = "calculate"
	ToolChart     ToolKind = "chart"
)

// ValidToolKind reports whether k is one of the known tool kinds.
func ValidToolKind(k ToolKind) bool {
	switch k {
	case ToolSearch, ToolCalculate, ToolChart:
		return true
	}
	return false
}

// ToolDefinition describes a callable tool function.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Kind        ToolKind        `json:"kind"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// ToolResult is the outcome of a tool execution.
type ToolResult struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Tool defines an analysis capability with one or more tool functions.
type Tool interface {
	Definitions() []ToolDefinition
	Execute(ctx context.Context, name string, args json.RawMessage) (ToolResult, error)
}

// ToolRegistry holds all registered tools and dispatches execution.
type ToolRegistry struct {
	tools []Tool
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{}
}

// Add registers a tool. Every definition must carry a known kind.
func (r *ToolRegistry) Add(t Tool) error {
	for _, d := range t.Definitions() {
		if !ValidToolKind(d.Kind) {
			return fmt.Errorf("tool %q: unknown kind %q", d.Name, d.Kind)
		}
	}
	r.tools = append(r.tools, t)
	return nil
}

// AllDefinitions returns tool definitions from all registered tools.
func (r *ToolRegistry) AllDefinitions() []ToolDefinition {
	var defs []ToolDefinition
	for _, t := range r.tools {
		defs = append(defs, t.Definitions()...)
	}
	return defs
}

// Execute dispatches a tool call by name. An unknown name is reported in the
// result, not as an error, so a model loop can recover.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args json.RawMessage) (ToolResult, error) {
	for _, t := range r.tools {
		for _, d := range t.Definitions() {
			if d.Name == name {
				return t.Execute(ctx, name, args)
			}
		}
	}
	return ToolResult{Error: "unknown tool: " + name}, nil
}
