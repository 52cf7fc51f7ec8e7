package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tenk "github.com/nevindra/tenk"
)

// generateServer returns an httptest server that replies to every
// generateContent call with the given text.
func generateServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]any{{"text": reply}},
				}},
			},
		})
	}))
}

func TestGenerate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]any{{"text": "part one "}, {"text": "part two"}},
				}},
			},
		})
	}))
	defer srv.Close()

	c := New("key", "gemini-2.5-flash-lite", WithBaseURL(srv.URL))
	out, err := c.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "part one part two" {
		t.Errorf("Generate() = %q, want concatenated parts", out)
	}
	if gotBody["contents"] == nil {
		t.Error("request body missing contents")
	}
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := New("key", "model", WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "hello")
	var httpErr *tenk.ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *ErrHTTP", err)
	}
	if httpErr.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", httpErr.Status)
	}
	if !strings.Contains(httpErr.Body, "rate limited") {
		t.Errorf("Body = %q, want response body", httpErr.Body)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := New("key", "model", WithBaseURL(srv.URL))
	out, err := c.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "" {
		t.Errorf("Generate() = %q, want empty", out)
	}
}

func TestEmbed(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["outputDimensionality"] != float64(3) {
			t.Errorf("outputDimensionality = %v, want 3", body["outputDimensionality"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float64{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	e := NewEmbedding("key", "text-embedding-004", 3, WithEmbeddingBaseURL(srv.URL))
	if e.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d, want 3", e.Dimensions())
	}
	if e.Name() != "gemini" {
		t.Errorf("Name() = %q, want gemini", e.Name())
	}

	vecs, err := e.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("vectors = %d, want 2", len(vecs))
	}
	if calls != 2 {
		t.Errorf("requests = %d, want one per text", calls)
	}
	if len(vecs[0]) != 3 || math.Abs(float64(vecs[0][1])-0.2) > 1e-6 {
		t.Errorf("vector = %v", vecs[0])
	}
}

func TestEmbedMissingValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	e := NewEmbedding("key", "model", 3, WithEmbeddingBaseURL(srv.URL))
	_, err := e.Embed(context.Background(), []string{"alpha"})
	var svcErr *tenk.ErrService
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want *ErrService", err)
	}
}

func TestExpand(t *testing.T) {
	srv := generateServer(t, "1. What was total revenue?\n2) How much did the company earn?\n- Net sales figure\n\n")
	defer srv.Close()

	ex := NewExpander(New("key", "model", WithBaseURL(srv.URL)))
	rewrites, err := ex.Expand(context.Background(), "revenue?", 3)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	want := []string{"What was total revenue?", "How much did the company earn?", "Net sales figure"}
	if len(rewrites) != len(want) {
		t.Fatalf("rewrites = %v, want %v", rewrites, want)
	}
	for i := range want {
		if rewrites[i] != want[i] {
			t.Errorf("rewrites[%d] = %q, want %q", i, rewrites[i], want[i])
		}
	}
}

func TestExpandCapsAtN(t *testing.T) {
	srv := generateServer(t, "one\ntwo\nthree\nfour")
	defer srv.Close()

	ex := NewExpander(New("key", "model", WithBaseURL(srv.URL)))
	rewrites, err := ex.Expand(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(rewrites) != 2 {
		t.Errorf("rewrites = %d, want 2", len(rewrites))
	}
}

func TestExpandSkipsOriginalQuery(t *testing.T) {
	srv := generateServer(t, "the original question\na new phrasing")
	defer srv.Close()

	ex := NewExpander(New("key", "model", WithBaseURL(srv.URL)))
	rewrites, err := ex.Expand(context.Background(), "the original question", 3)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(rewrites) != 1 || rewrites[0] != "a new phrasing" {
		t.Errorf("rewrites = %v, want only the new phrasing", rewrites)
	}
}

func TestExpandZeroN(t *testing.T) {
	ex := NewExpander(New("key", "model"))
	rewrites, err := ex.Expand(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if rewrites != nil {
		t.Errorf("rewrites = %v, want nil without a request", rewrites)
	}
}

func TestStripListMarker(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1. first", "first"},
		{"12) twelfth", "twelfth"},
		{"- bullet", "bullet"},
		{"* star", "star"},
		{"plain line", "plain line"},
		{"2023 revenue grew", "2023 revenue grew"},
	}
	for _, tt := range tests {
		if got := stripListMarker(tt.in); got != tt.want {
			t.Errorf("stripListMarker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  float32
	}{
		{"plain number", "7", 0.7},
		{"decimal", "8.5", 0.85},
		{"trailing text", "9 out of 10", 0.9},
		{"clamped high", "15", 1},
		{"clamped low", "-3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := generateServer(t, tt.reply)
			defer srv.Close()

			r := NewReranker(New("key", "model", WithBaseURL(srv.URL)))
			got, err := r.Score(context.Background(), "query", "passage")
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreUnparseable(t *testing.T) {
	for _, reply := range []string{"not a number", ""} {
		srv := generateServer(t, reply)
		r := NewReranker(New("key", "model", WithBaseURL(srv.URL)))
		_, err := r.Score(context.Background(), "query", "passage")
		srv.Close()

		var svcErr *tenk.ErrService
		if !errors.As(err, &svcErr) {
			t.Errorf("reply %q: error = %v, want *ErrService", reply, err)
		}
	}
}

func TestScoreTruncatesLongPassage(t *testing.T) {
	var gotPromptLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotPromptLen = len(body.Contents[0].Parts[0].Text)
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "5"}}}},
			},
		})
	}))
	defer srv.Close()

	r := NewReranker(New("key", "model", WithBaseURL(srv.URL)))
	passage := strings.Repeat("x", 50000)
	if _, err := r.Score(context.Background(), "q", passage); err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if gotPromptLen >= len(passage) {
		t.Errorf("prompt length %d, want passage truncated below %d", gotPromptLen, len(passage))
	}
}

func TestTruncateOnRune(t *testing.T) {
	s := strings.Repeat("é", 10)
	got := truncateOnRune(s, 5)
	if len(got) > 5 {
		t.Errorf("len = %d, want <= 5", len(got))
	}
	if !strings.HasPrefix(s, got) {
		t.Errorf("%q is not a prefix of input", got)
	}
	for _, r := range got {
		if r == '�' {
			t.Error("truncation split a codepoint")
		}
	}
	if truncateOnRune("short", 100) != "short" {
		t.Error("short strings should pass through")
	}
}
