// Package builtin implements two representative built-in tools:
// Calculator and Search. Their contracts (parameter aliasing,
// non-throwing failure text) shape the executor's legacy text-protocol
// fallback, so they live alongside it rather than in a separate demo
// package.
package builtin

import (
	"context"
	"fmt"

	"github.com/Knetic/govaluate"
	"github.com/wayde1122/w-agent/pkg/models"
)

// Calculator evaluates arithmetic expressions. It accepts either
// "input" or "expression" as the parameter name, matching the legacy
// text protocol's free-form binding.
type Calculator struct{}

func (Calculator) Name() string { return "calculator" }

func (Calculator) Description() string {
	return "Evaluates a mathematical expression and returns the numeric result."
}

func (Calculator) Parameters() []models.ToolParameter {
	return []models.ToolParameter{
		{Name: "input", Type: models.ParamString, Description: "the expression to evaluate, e.g. (15+25)*3", Required: true},
	}
}

// Run is purely synchronous: it never performs I/O, so it can never
// block the loop.
func (Calculator) Run(_ context.Context, args map[string]any) (string, error) {
	expr, ok := args["input"].(string)
	if !ok || expr == "" {
		expr, _ = args["expression"].(string)
	}
	if expr == "" {
		return "calculation failed: missing expression", nil
	}

	evaluable, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return fmt.Sprintf("calculation failed: %v", err), nil
	}
	result, err := evaluable.Evaluate(nil)
	if err != nil {
		return fmt.Sprintf("calculation failed: %v", err), nil
	}
	return fmt.Sprintf("%v", result), nil
}
