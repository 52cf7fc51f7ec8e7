package tenk

import "context"

// nopStore is an embeddable Store stub; tests override only what they need.
type nopStore struct{}

func (nopStore) Init(context.Context) error              { return nil }
func (nopStore) WriteChunk(context.Context, Chunk) error { return nil }
func (nopStore) SearchChunks(context.Context, []float32, int, ...ChunkFilter) ([]ScoredChunk, error) {
	return nil, nil
}
func (nopStore) GetChunksByIDs(context.Context, []string) ([]Chunk, error) { return nil, nil }
func (nopStore) Reset(context.Context) (int, error)                        { return 0, nil }
func (nopStore) Close() error                                              { return nil }

var _ Store = nopStore{}
