package config

import (
	"os"
	"testing"
)

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL_ID", "gpt-4o-mini")
	t.Setenv("EMBED_MODEL_TYPE", "simple")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("expected API key from OPENAI_API_KEY, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.ModelID != "gpt-4o-mini" {
		t.Errorf("expected model id, got %q", cfg.LLM.ModelID)
	}
	if cfg.Embedding.Type != "simple" {
		t.Errorf("expected embedding type simple, got %q", cfg.Embedding.Type)
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("expected default log level INFO, got %q", cfg.LogLevel)
	}
}

func TestLoadMissingAPIKeyFailsLoud(t *testing.T) {
	for _, envVar := range []string{"OPENAI_API_KEY", "DEEPSEEK_API_KEY", "DASHSCOPE_API_KEY", "LLM_API_KEY"} {
		t.Setenv(envVar, "")
		_ = os.Unsetenv(envVar)
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected missing API key to fail construction")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	if err := os.WriteFile(path, []byte("llm:\n  model_id: from-file\nlog_level: DEBUG\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL_ID", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.ModelID != "from-env" {
		t.Errorf("expected env var to win over file value, got %q", cfg.LLM.ModelID)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("expected file value to seed unset env fields, got %q", cfg.LogLevel)
	}
}

func TestLogLevelOrDefault(t *testing.T) {
	cases := map[string]bool{"DEBUG": true, "WARN": true, "ERROR": true, "SILENT": true, "bogus": true, "": true}
	for level := range cases {
		_ = LogLevelOrDefault(level) // just exercising every branch without panicking
	}
}
