package llm

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wayde1122/w-agent/internal/tools"
	"github.com/wayde1122/w-agent/pkg/models"
)

// OpenAIConfig configures an OpenAI-compatible chat-completion client.
// BaseURL lets the same client target DeepSeek, DashScope, or any other
// endpoint that mirrors OpenAI's wire format.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Name    string // provider label for logging; defaults to "openai"
}

// OpenAIProvider implements Provider against an OpenAI-compatible
// chat-completions endpoint.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider builds a client from cfg. APIKey is required.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		name:   cfg.Name,
	}, nil
}

func (p *OpenAIProvider) Name() string { return p.name }

// Complete sends req to the endpoint. When req.Tools is non-empty it
// is sent as native function-calling tools with the given ToolChoice;
// otherwise it is a plain chat completion.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(req.Messages),
	}

	if len(req.Tools) > 0 {
		chatReq.Tools = toOpenAITools(req.Tools)
		switch req.ToolChoice {
		case ToolChoiceNone:
			chatReq.ToolChoice = "none"
		default:
			chatReq.ToolChoice = "auto"
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("llm: empty completion response")
	}

	choice := resp.Choices[0]
	out := CompletionResponse{Content: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			args = map[string]any{}
		}
		out.ToolCalls = append(out.ToolCalls, NativeToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}

func toOpenAIMessages(msgs []models.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		oaiMsg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			oaiMsg.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				args, err := json.Marshal(tc.Arguments)
				if err != nil {
					args = []byte("{}")
				}
				oaiMsg.ToolCalls[i] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(args),
					},
				}
			}
		}
		result = append(result, oaiMsg)
	}
	return result
}

// toOpenAITools converts the registry's provider-neutral function
// schemas into go-openai's Tool type, generalized from a Tool slice to
// a FunctionSchema slice since this package has no agent.Tool type.
func toOpenAITools(schemas []tools.FunctionSchema) []openai.Tool {
	result := make([]openai.Tool, len(schemas))
	for i, s := range schemas {
		properties := make(map[string]any, len(s.Function.Parameters.Properties))
		for name, prop := range s.Function.Parameters.Properties {
			entry := map[string]any{
				"type":        prop.Type,
				"description": prop.Description,
			}
			if prop.Items != nil {
				entry["items"] = map[string]any{"type": prop.Items.Type}
			}
			properties[name] = entry
		}
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        s.Function.Name,
				Description: s.Function.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": properties,
					"required":   s.Function.Parameters.Required,
				},
			},
		}
	}
	return result
}
