package agent

import (
	"context"
	"testing"

	"github.com/wayde1122/w-agent/internal/llm"
	"github.com/wayde1122/w-agent/internal/tools"
	"github.com/wayde1122/w-agent/pkg/models"
)

func TestAgentRunReturnsReplyAndRecordsTurn(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.CompletionResponse{{Content: "hello there"}}}
	a := New(provider, tools.NewRegistry(nil), 0, "you are helpful")

	reply, err := a.Run(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reply != "hello there" {
		t.Errorf("got %q, want %q", reply, "hello there")
	}

	msgs := a.History.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d history messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "hi" {
		t.Errorf("got %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleAssistant || msgs[1].Content != "hello there" {
		t.Errorf("got %+v", msgs[1])
	}
}

func TestAgentRunPropagatesLoopError(t *testing.T) {
	provider := &scriptedProvider{responses: nil}
	a := New(provider, tools.NewRegistry(nil), 0, "")

	_, err := a.Run(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected an error when the provider has nothing queued")
	}
	if len(a.History.Messages()) != 0 {
		t.Error("expected no turn to be recorded on failure")
	}
}

func TestAgentWithLoopConfigOverridesDefault(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.CompletionResponse{{Content: "ok"}}}
	a := New(provider, tools.NewRegistry(nil), 0, "").WithLoopConfig(LoopConfig{MaxSteps: 1, UseNativeToolCalling: false})

	if a.config.MaxSteps != 1 || a.config.UseNativeToolCalling {
		t.Errorf("got config %+v", a.config)
	}

	reply, err := a.Run(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reply != "ok" {
		t.Errorf("got %q", reply)
	}
}

func TestAgentBuildMessagesIncludesPriorTurns(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.CompletionResponse{
		{Content: "first reply"},
		{Content: "second reply"},
	}}
	a := New(provider, tools.NewRegistry(nil), 0, "system prompt")

	if _, err := a.Run(context.Background(), "first question"); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if _, err := a.Run(context.Background(), "second question"); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	msgs := a.History.Messages()
	if len(msgs) != 4 {
		t.Fatalf("got %d history messages, want 4", len(msgs))
	}
}
