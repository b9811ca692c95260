package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an embedding provider against an
// OpenAI-compatible embeddings endpoint. BaseURL lets the same
// implementation serve DashScope's OpenAI-wire-compatible embeddings
// endpoint under a different Name/dimension (see NewDashScope).
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
	Name      string
}

// OpenAIProvider implements Provider via CreateEmbeddings against an
// OpenAI-compatible endpoint.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	dimension int
	name      string
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAI builds a provider for OpenAI's embeddings endpoint.
func NewOpenAI(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = dimensionForModel(cfg.Model)
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		name:      cfg.Name,
	}, nil
}

// NewDashScope builds a provider against DashScope's OpenAI-compatible
// embeddings endpoint, reusing the OpenAI wire client since DashScope's
// text-embedding-v* models speak the same request/response shape.
func NewDashScope(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-v2"
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = 1536
	}
	cfg.Name = "dashscope"
	return NewOpenAI(cfg)
}

func dimensionForModel(model string) int {
	switch model {
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "text-embedding-3-large":
		return 3072
	default:
		return 1536
	}
}

func (p *OpenAIProvider) Name() string    { return p.name }
func (p *OpenAIProvider) Dimension() int { return p.dimension }

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding: no embedding returned")
	}
	return vecs[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: create embeddings failed: %w", err)
	}
	results := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		results[d.Index] = d.Embedding
	}
	return results, nil
}
