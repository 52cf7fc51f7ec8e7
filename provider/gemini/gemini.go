// Package gemini implements the Gemini embedding, query expansion, and
// reranking providers.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	tenk "github.com/nevindra/tenk"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client is a thin Gemini text generation client used by the expander and
// reranker.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	httpClient  *http.Client
	temperature float64
}

var _ tenk.Generator = (*Client)(nil)

// New creates a Gemini client with functional options.
func New(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		model:       model,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{},
		temperature: 0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends a single-turn generateContent request and returns the
// concatenated text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature": c.temperature,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	respBody, err := doJSON(ctx, c.httpClient, url, body)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", wrapErr("failed to parse response JSON: " + err.Error())
	}

	var sb strings.Builder
	if len(parsed.Candidates) > 0 {
		for _, part := range parsed.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// doJSON posts a JSON body and returns the raw response bytes, mapping
// transport and status failures onto the shared error types.
func doJSON(ctx context.Context, client *http.Client, url string, body map[string]any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, wrapErr("marshal body: " + err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return nil, wrapErr("create request: " + err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, wrapErr("request failed: " + err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapErr("failed to read response body: " + err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &tenk.ErrHTTP{Status: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

func wrapErr(msg string) error {
	return &tenk.ErrService{Service: "gemini", Message: msg}
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
