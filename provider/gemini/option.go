package gemini

import "net/http"

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTemperature sets the sampling temperature. Default is 0.1.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// EmbeddingOption configures an Embedding provider.
type EmbeddingOption func(*Embedding)

// WithEmbeddingHTTPClient replaces the default http.Client.
func WithEmbeddingHTTPClient(hc *http.Client) EmbeddingOption {
	return func(e *Embedding) { e.httpClient = hc }
}

// WithEmbeddingBaseURL overrides the API endpoint, mainly for tests.
func WithEmbeddingBaseURL(url string) EmbeddingOption {
	return func(e *Embedding) { e.baseURL = url }
}
