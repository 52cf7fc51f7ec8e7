// Package llamacloud converts source PDFs to markdown through the LlamaCloud
// parsing API, preserving table structure and page provenance.
package llamacloud

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	tenk "github.com/nevindra/tenk"
)

const defaultBaseURL = "https://api.cloud.llamaindex.ai/api/parsing"

// DefaultInstruction steers the parser toward faithful table markup, which
// the downstream density filter depends on.
const DefaultInstruction = "This is an annual financial filing. Reproduce every financial table as a markdown table with all numeric columns intact. Do not summarize or omit rows."

// Converter implements tenk.Converter against the LlamaCloud job API:
// upload, poll until the job settles, then fetch the per-page result.
type Converter struct {
	apiKey       string
	baseURL      string
	instruction  string
	httpClient   *http.Client
	pollInterval time.Duration
}

var _ tenk.Converter = (*Converter)(nil)

// Option configures a Converter.
type Option func(*Converter)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Converter) { c.baseURL = url }
}

// WithInstruction replaces the default parsing instruction.
func WithInstruction(s string) Option {
	return func(c *Converter) { c.instruction = s }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Converter) { c.httpClient = hc }
}

// WithPollInterval sets how often job status is checked. Default is 2s.
func WithPollInterval(d time.Duration) Option {
	return func(c *Converter) { c.pollInterval = d }
}

// New creates a LlamaCloud converter.
func New(apiKey string, opts ...Option) *Converter {
	c := &Converter{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		instruction:  DefaultInstruction,
		httpClient:   &http.Client{},
		pollInterval: 2 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Convert uploads the raw document, waits for parsing to finish, and returns
// markdown with one PageSpan per source page. The caller bounds the wait via
// ctx; an expired context surfaces as the context error.
func (c *Converter) Convert(ctx context.Context, raw []byte) (tenk.Markdown, error) {
	jobID, err := c.upload(ctx, raw)
	if err != nil {
		return tenk.Markdown{}, err
	}
	if err := c.waitForJob(ctx, jobID); err != nil {
		return tenk.Markdown{}, err
	}
	return c.fetchResult(ctx, jobID)
}

// upload posts the document as a multipart form and returns the job ID.
func (c *Converter) upload(ctx context.Context, raw []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", "document.pdf")
	if err != nil {
		return "", wrapErr("create form file: " + err.Error())
	}
	if _, err := fw.Write(raw); err != nil {
		return "", wrapErr("write form file: " + err.Error())
	}
	if c.instruction != "" {
		if err := mw.WriteField("parsing_instruction", c.instruction); err != nil {
			return "", wrapErr("write instruction field: " + err.Error())
		}
	}
	if err := mw.Close(); err != nil {
		return "", wrapErr("close multipart body: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", wrapErr("create upload request: " + err.Error())
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", wrapErr("parse upload response: " + err.Error())
	}
	if parsed.ID == "" {
		return "", wrapErr("upload response missing job id")
	}
	return parsed.ID, nil
}

// waitForJob polls job status until SUCCESS, a terminal failure, or ctx
// expiry.
func (c *Converter) waitForJob(ctx context.Context, jobID string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.jobStatus(ctx, jobID)
		if err != nil {
			return err
		}
		switch strings.ToUpper(status) {
		case "SUCCESS":
			return nil
		case "ERROR", "CANCELLED":
			return wrapErr("parsing job " + jobID + " ended with status " + status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Converter) jobStatus(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/job/"+jobID, nil)
	if err != nil {
		return "", wrapErr("create status request: " + err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", wrapErr("parse status response: " + err.Error())
	}
	return parsed.Status, nil
}

// fetchResult retrieves the per-page JSON result and assembles the markdown
// document with page offsets.
func (c *Converter) fetchResult(ctx context.Context, jobID string) (tenk.Markdown, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/job/"+jobID+"/result/json", nil)
	if err != nil {
		return tenk.Markdown{}, wrapErr("create result request: " + err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return tenk.Markdown{}, err
	}

	var parsed struct {
		Pages []struct {
			Page int    `json:"page"`
			MD   string `json:"md"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return tenk.Markdown{}, wrapErr("parse result response: " + err.Error())
	}

	var sb strings.Builder
	var spans []tenk.PageSpan
	for _, p := range parsed.Pages {
		md := strings.TrimSpace(p.MD)
		if md == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		start := sb.Len()
		sb.WriteString(md)
		spans = append(spans, tenk.PageSpan{
			Label: strconv.Itoa(p.Page),
			Start: start,
			End:   sb.Len(),
		})
	}

	return tenk.Markdown{Text: sb.String(), Pages: spans}, nil
}

func (c *Converter) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapErr("request failed: " + err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapErr("read response body: " + err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &tenk.ErrHTTP{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func wrapErr(msg string) error {
	return &tenk.ErrService{Service: "llamacloud", Message: msg}
}
