package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// Simple is an offline, deterministic embedding fallback: it hashes
// each whitespace-separated word into a fixed-dimension vector. It carries
// no semantic relationship between texts beyond literal token overlap
// — it exists so the rest of the system (vector store, retrieval,
// consolidation) is exercisable without network access
// (EMBED_MODEL_TYPE=simple), not to approximate real embeddings.
type Simple struct {
	dimension int
}

var _ Provider = (*Simple)(nil)

// NewSimple builds the offline fallback at the given dimension.
func NewSimple(dimension int) *Simple {
	if dimension <= 0 {
		dimension = 256
	}
	return &Simple{dimension: dimension}
}

func (s *Simple) Name() string    { return "simple" }
func (s *Simple) Dimension() int { return s.dimension }

func (s *Simple) Embed(_ context.Context, text string) ([]float32, error) {
	return s.embed(text), nil
}

func (s *Simple) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.embed(t)
	}
	return out, nil
}

// embed buckets each word's FNV-1a hash into the vector by index,
// accumulating a count so repeated words reinforce their bucket, then
// L2-normalizes so cosine similarity is well-behaved.
func (s *Simple) embed(text string) []float32 {
	vec := make([]float32, s.dimension)
	word := make([]byte, 0, 16)
	flush := func() {
		if len(word) == 0 {
			return
		}
		h := fnv.New32a()
		h.Write(word)
		idx := int(h.Sum32()) % s.dimension
		if idx < 0 {
			idx += s.dimension
		}
		vec[idx]++
		word = word[:0]
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' {
			flush()
			continue
		}
		word = append(word, c)
	}
	flush()

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	inv := float32(1.0 / math.Sqrt(float64(norm)))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}
