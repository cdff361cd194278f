package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// Embed is batch-first: one call per chunk batch keeps sync runs within
// the provider's request quota.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
