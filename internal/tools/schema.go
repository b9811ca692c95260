package tools

import (
	"fmt"

	"github.com/wayde1122/w-agent/pkg/models"
)

// FunctionSchema is the function-calling schema emitted for one tool,
// in the shape OpenAI-compatible chat-completion APIs expect:
//
//	{"type":"function","function":{"name":...,"description":...,"parameters":{...}}}
type FunctionSchema struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec is the nested "function" object of a FunctionSchema.
type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ParametersSpec `json:"parameters"`
}

// ParametersSpec is a JSON-Schema "object" type with named properties.
type ParametersSpec struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema describes one parameter's JSON-Schema shape.
type PropertySchema struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Items       *ItemsSchema    `json:"items,omitempty"`
}

// ItemsSchema describes the element type of an "array" property.
// Array parameters default to string elements unless the tool says
// otherwise.
type ItemsSchema struct {
	Type string `json:"type"`
}

// BuildSchema converts a Tool's parameter list into a FunctionSchema.
// Parameters carrying a Default surface that default inline in the
// description, since the "parameters" JSON-Schema object itself has
// no standard default-value slot that every provider round-trips.
func BuildSchema(tool Tool) FunctionSchema {
	params := tool.Parameters()

	properties := make(map[string]PropertySchema, len(params))
	required := make([]string, 0, len(params))
	for _, p := range params {
		desc := p.Description
		if p.Default != nil {
			desc = appendDefault(desc, p.Default)
		}
		prop := PropertySchema{
			Type:        string(p.Type),
			Description: desc,
		}
		if p.Type == models.ParamArray {
			prop.Items = &ItemsSchema{Type: "string"}
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return FunctionSchema{
		Type: "function",
		Function: FunctionSpec{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters: ParametersSpec{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		},
	}
}

func appendDefault(description string, def any) string {
	text := fmt.Sprintf("%v", def)
	if description == "" {
		return "default: " + text
	}
	return description + " (default: " + text + ")"
}
