package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/wayde1122/w-agent/pkg/models"
)

// SearchFunc looks up text for a query. Production deployments inject
// their own implementation; Search's zero value is an explicit mock.
type SearchFunc func(ctx context.Context, query string) ([]string, error)

// Search is an async, mockable web-search tool. It accepts either
// "input" or "query" as the parameter name.
type Search struct {
	// Fn is the injected lookup function. If nil, Search falls back to
	// canned placeholder strings keyed on keyword detection.
	Fn SearchFunc
}

func (Search) Name() string { return "search" }

func (Search) Description() string {
	return "Searches for information relevant to a query and returns matching text."
}

func (Search) Parameters() []models.ToolParameter {
	return []models.ToolParameter{
		{Name: "input", Type: models.ParamString, Description: "the search query", Required: true},
	}
}

func (s Search) Run(ctx context.Context, args map[string]any) (string, error) {
	query, ok := args["input"].(string)
	if !ok || query == "" {
		query, _ = args["query"].(string)
	}
	if query == "" {
		return "", fmt.Errorf("search: missing query")
	}

	if s.Fn != nil {
		results, err := s.Fn(ctx, query)
		if err != nil {
			return "", err
		}
		return strings.Join(results, "\n"), nil
	}
	return strings.Join(mockResults(query), "\n"), nil
}

// mockResults returns canned placeholder text keyed on a few keywords,
// since Search is explicitly a mock absent an injected Fn.
func mockResults(query string) []string {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "weather"):
		return []string{"Mock result: weather data is not available without a configured search backend."}
	case strings.Contains(lower, "news"):
		return []string{"Mock result: no live news feed is configured."}
	default:
		return []string{fmt.Sprintf("Mock result: no search backend configured for %q.", query)}
	}
}
