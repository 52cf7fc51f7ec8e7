// Package chart validates and normalizes chart specs requested by a model,
// returning JSON a frontend can render directly.
package chart

import (
	"context"
	"encoding/json"
	"fmt"

	tenk "github.com/nevindra/tenk"
)

// Known chart types. Anything else falls back to a bar chart.
const (
	TypeBar  = "bar"
	TypeLine = "line"
	TypeArea = "area"
	TypePie  = "pie"
)

// Spec is the normalized chart description returned to the caller.
type Spec struct {
	Type   string   `json:"type"`
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Series is one named sequence of values aligned with the labels.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ChartTool builds validated chart specs from model-supplied data.
type ChartTool struct{}

var _ tenk.Tool = (*ChartTool)(nil)

// New creates a ChartTool.
func New() *ChartTool { return &ChartTool{} }

func (c *ChartTool) Definitions() []tenk.ToolDefinition {
	return []tenk.ToolDefinition{{
		Name:        "create_dynamic_chart",
		Kind:        tenk.ToolChart,
		Description: "Create a chart from labeled numeric series. Type is one of bar, line, area, pie; unknown types become bar.",
		Parameters: json.RawMessage(`{"type":"object","properties":{
			"type":{"type":"string","description":"Chart type: bar, line, area, or pie"},
			"title":{"type":"string","description":"Chart title"},
			"labels":{"type":"array","items":{"type":"string"},"description":"Category labels"},
			"series":{"type":"array","items":{"type":"object","properties":{
				"name":{"type":"string"},
				"values":{"type":"array","items":{"type":["number","null"]}}
			},"required":["name","values"]}}
		},"required":["labels","series"]}`),
	}}
}

func (c *ChartTool) Execute(_ context.Context, _ string, args json.RawMessage) (tenk.ToolResult, error) {
	var params struct {
		Type   string   `json:"type"`
		Title  string   `json:"title"`
		Labels []string `json:"labels"`
		Series []struct {
			Name   string     `json:"name"`
			Values []*float64 `json:"values"`
		} `json:"series"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return tenk.ToolResult{Error: "invalid args: " + err.Error()}, nil
	}
	if len(params.Labels) == 0 {
		return tenk.ToolResult{Error: "labels must not be empty"}, nil
	}
	if len(params.Series) == 0 {
		return tenk.ToolResult{Error: "series must not be empty"}, nil
	}

	spec := Spec{
		Type:   normalizeType(params.Type),
		Title:  params.Title,
		Labels: params.Labels,
	}

	for _, s := range params.Series {
		if len(s.Values) != len(params.Labels) {
			return tenk.ToolResult{Error: fmt.Sprintf("series %q has %d values for %d labels", s.Name, len(s.Values), len(params.Labels))}, nil
		}
		// Models sometimes emit null for figures they could not find; scrub
		// to zero so the chart still renders.
		values := make([]float64, len(s.Values))
		for i, v := range s.Values {
			if v != nil {
				values[i] = *v
			}
		}
		spec.Series = append(spec.Series, Series{Name: s.Name, Values: values})
	}

	data, err := json.Marshal(spec)
	if err != nil {
		return tenk.ToolResult{Error: "marshal spec: " + err.Error()}, nil
	}
	return tenk.ToolResult{Content: string(data)}, nil
}

func normalizeType(t string) string {
	switch t {
	case TypeLine, TypeArea, TypePie, TypeBar:
		return t
	}
	return TypeBar
}
