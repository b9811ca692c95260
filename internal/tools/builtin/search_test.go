package builtin

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSearchRunMissingQuery(t *testing.T) {
	_, err := Search{}.Run(context.Background(), map[string]any{})
	if err == nil {
		t.Fatal("expected an error for a missing query")
	}
}

func TestSearchRunFallsBackToMockWhenFnNil(t *testing.T) {
	out, err := Search{}.Run(context.Background(), map[string]any{"input": "weather"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "weather") {
		t.Errorf("got %q, want mock result mentioning weather", out)
	}
}

func TestSearchRunQueryParamFallback(t *testing.T) {
	out, err := Search{}.Run(context.Background(), map[string]any{"query": "news"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "news") {
		t.Errorf("got %q", out)
	}
}

func TestSearchRunUsesInjectedFn(t *testing.T) {
	s := Search{Fn: func(ctx context.Context, query string) ([]string, error) {
		return []string{"result one", "result two"}, nil
	}}
	out, err := s.Run(context.Background(), map[string]any{"input": "golang"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "result one\nresult two" {
		t.Errorf("got %q", out)
	}
}

func TestSearchRunPropagatesFnError(t *testing.T) {
	wantErr := errors.New("backend unavailable")
	s := Search{Fn: func(ctx context.Context, query string) ([]string, error) {
		return nil, wantErr
	}}
	_, err := s.Run(context.Background(), map[string]any{"input": "golang"})
	if !errors.Is(err, wantErr) {
		t.Errorf("got error %v, want %v", err, wantErr)
	}
}

func TestSearchNameAndDescription(t *testing.T) {
	s := Search{}
	if s.Name() != "search" {
		t.Errorf("got name %q", s.Name())
	}
	if s.Description() == "" {
		t.Error("expected a non-empty description")
	}
}
