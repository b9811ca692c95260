// Package embedding maps text to fixed-dimension vectors for the
// vector store adapter.
package embedding

import "context"

// Provider generates embeddings for text.
type Provider interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Name identifies the provider.
	Name() string

	// Dimension returns the embedding dimension this provider produces.
	Dimension() int
}
