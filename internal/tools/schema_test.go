package tools

import (
	"testing"

	"github.com/wayde1122/w-agent/pkg/models"
)

func TestBuildSchemaBasic(t *testing.T) {
	tool := &stubTool{
		name: "calculator",
		desc: "evaluates expressions",
		params: []models.ToolParameter{
			{Name: "input", Type: models.ParamString, Description: "the expression", Required: true},
		},
	}

	schema := BuildSchema(tool)
	if schema.Type != "function" {
		t.Errorf("got type %q, want %q", schema.Type, "function")
	}
	if schema.Function.Name != "calculator" {
		t.Errorf("got name %q, want %q", schema.Function.Name, "calculator")
	}
	prop, ok := schema.Function.Parameters.Properties["input"]
	if !ok {
		t.Fatal("expected an 'input' property")
	}
	if prop.Type != "string" {
		t.Errorf("got type %q, want %q", prop.Type, "string")
	}
	if len(schema.Function.Parameters.Required) != 1 || schema.Function.Parameters.Required[0] != "input" {
		t.Errorf("got required %v, want [input]", schema.Function.Parameters.Required)
	}
}

func TestBuildSchemaOptionalParameterNotRequired(t *testing.T) {
	tool := &stubTool{
		name: "t",
		params: []models.ToolParameter{
			{Name: "opt", Type: models.ParamString, Required: false},
		},
	}
	schema := BuildSchema(tool)
	if len(schema.Function.Parameters.Required) != 0 {
		t.Errorf("got required %v, want none", schema.Function.Parameters.Required)
	}
}

func TestBuildSchemaArrayDefaultsToStringItems(t *testing.T) {
	tool := &stubTool{
		name: "t",
		params: []models.ToolParameter{
			{Name: "tags", Type: models.ParamArray},
		},
	}
	schema := BuildSchema(tool)
	prop := schema.Function.Parameters.Properties["tags"]
	if prop.Items == nil {
		t.Fatal("expected an Items schema for an array property")
	}
	if prop.Items.Type != "string" {
		t.Errorf("got items type %q, want %q", prop.Items.Type, "string")
	}
}

func TestBuildSchemaDefaultAppendedToDescription(t *testing.T) {
	tool := &stubTool{
		name: "t",
		params: []models.ToolParameter{
			{Name: "limit", Type: models.ParamInteger, Description: "max results", Default: 10},
		},
	}
	schema := BuildSchema(tool)
	prop := schema.Function.Parameters.Properties["limit"]
	want := "max results (default: 10)"
	if prop.Description != want {
		t.Errorf("got description %q, want %q", prop.Description, want)
	}
}

func TestBuildSchemaDefaultWithoutDescription(t *testing.T) {
	tool := &stubTool{
		name: "t",
		params: []models.ToolParameter{
			{Name: "limit", Type: models.ParamInteger, Default: 5},
		},
	}
	schema := BuildSchema(tool)
	prop := schema.Function.Parameters.Properties["limit"]
	if prop.Description != "default: 5" {
		t.Errorf("got description %q, want %q", prop.Description, "default: 5")
	}
}
