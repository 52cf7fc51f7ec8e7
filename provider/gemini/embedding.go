package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	tenk "github.com/nevindra/tenk"
)

// Embedding implements tenk.EmbeddingProvider for Gemini embedding models.
type Embedding struct {
	apiKey     string
	model      string
	dims       int
	baseURL    string
	httpClient *http.Client
}

var _ tenk.EmbeddingProvider = (*Embedding)(nil)

// NewEmbedding creates a Gemini embedding provider.
func NewEmbedding(apiKey, model string, dims int, opts ...EmbeddingOption) *Embedding {
	e := &Embedding{
		apiKey:     apiKey,
		model:      model,
		dims:       dims,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns "gemini".
func (e *Embedding) Name() string { return "gemini" }

// Dimensions returns the configured embedding dimensionality.
func (e *Embedding) Dimensions() int { return e.dims }

// Embed embeds each text sequentially and returns the vectors in input order.
func (e *Embedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", e.baseURL, e.model, e.apiKey)

	embeddings := make([][]float32, 0, len(texts))

	for _, text := range texts {
		body := map[string]any{
			"content": map[string]any{
				"parts": []map[string]any{
					{"text": text},
				},
			},
			"outputDimensionality": e.dims,
		}

		respBody, err := doJSON(ctx, e.httpClient, url, body)
		if err != nil {
			return nil, err
		}

		var parsed embedResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, wrapErr("failed to parse embed response: " + err.Error())
		}
		if parsed.Embedding == nil {
			return nil, wrapErr("missing embedding.values in response")
		}

		vec := make([]float32, len(parsed.Embedding.Values))
		for i, v := range parsed.Embedding.Values {
			vec[i] = float32(v)
		}
		embeddings = append(embeddings, vec)
	}

	return embeddings, nil
}

type embedResponse struct {
	Embedding *struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}
