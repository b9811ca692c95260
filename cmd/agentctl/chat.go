package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wayde1122/w-agent/internal/config"
	"github.com/wayde1122/w-agent/internal/llm"
	"github.com/wayde1122/w-agent/internal/memagent"
	"github.com/wayde1122/w-agent/internal/memory"
	"github.com/wayde1122/w-agent/internal/memory/embedding"
	"github.com/wayde1122/w-agent/internal/memory/graphstore"
	"github.com/wayde1122/w-agent/internal/memory/vectorstore"
	"github.com/wayde1122/w-agent/internal/tools"
	"github.com/wayde1122/w-agent/internal/tools/builtin"
)

func buildChatCmd() *cobra.Command {
	var (
		configPath   string
		systemPrompt string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session against the memory-augmented agent",
		Example: `  # Chat with defaults, reading config from the environment
  agentctl chat

  # Chat with a config file overlay
  agentctl chat --config ./agent.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), configPath, systemPrompt)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to an optional YAML configuration overlay")
	cmd.Flags().StringVar(&systemPrompt, "system", "You are a helpful assistant.", "System prompt")

	return cmd
}

func runChat(ctx context.Context, configPath, systemPrompt string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("agentctl: load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.LogLevelOrDefault(cfg.LogLevel),
	}))

	provider, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("agentctl: build LLM provider: %w", err)
	}

	manager, err := buildMemoryManager(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("agentctl: build memory manager: %w", err)
	}
	defer manager.Close(ctx)

	registry := tools.NewRegistry(logger)
	registry.Register(&builtin.Calculator{})
	registry.Register(&builtin.Search{})

	agentCfg := memagent.DefaultConfig()
	a := memagent.New(manager, provider, registry, 50, systemPrompt, agentCfg, logger)

	fmt.Println("agentctl chat — type 'exit' to quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "exit" || line == "quit" {
			return nil
		}
		if line == "" {
			continue
		}
		reply, err := a.Run(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
}

func buildProvider(cfg *config.Config) (llm.Provider, error) {
	explicit := llm.DetectedProvider(cfg.ProviderOverride)
	env := llm.Env{
		"OPENAI_API_KEY":    os.Getenv("OPENAI_API_KEY"),
		"DEEPSEEK_API_KEY":  os.Getenv("DEEPSEEK_API_KEY"),
		"DASHSCOPE_API_KEY": os.Getenv("DASHSCOPE_API_KEY"),
		"LLM_BASE_URL":      cfg.LLM.BaseURL,
		"LLM_API_KEY":       cfg.LLM.APIKey,
	}
	_, apiKey, baseURL := llm.DetectProvider(explicit, env)
	if apiKey == "" {
		apiKey = cfg.LLM.APIKey
	}
	if baseURL == "" {
		baseURL = cfg.LLM.BaseURL
	}
	return llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   cfg.LLM.ModelID,
	})
}

func buildMemoryManager(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*memory.Manager, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	var vstore vectorstore.Store
	if cfg.Qdrant.URL != "" {
		vstore, err = vectorstore.NewQdrant(vectorstore.QdrantConfig{Host: cfg.Qdrant.URL, APIKey: cfg.Qdrant.APIKey})
		if err != nil {
			return nil, err
		}
	} else {
		vstore = vectorstore.NewMem()
	}

	dim := cfg.Embedding.Dimensions
	if dim == 0 {
		dim = embedder.Dimension()
	}
	if err := vstore.EnsureCollection(ctx, "episodic", dim, vectorstore.DistanceCosine); err != nil {
		logger.Warn("agentctl: ensure episodic collection failed", "error", err)
	}
	if err := vstore.EnsureCollection(ctx, "semantic", dim, vectorstore.DistanceCosine); err != nil {
		logger.Warn("agentctl: ensure semantic collection failed", "error", err)
	}

	var gstore graphstore.Store
	if cfg.Neo4j.URI != "" {
		gstore, err = graphstore.NewNeo4j(ctx, graphstore.Neo4jConfig{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
		})
		if err != nil {
			return nil, err
		}
	} else {
		gstore = graphstore.NewMem()
	}

	working := memory.NewWorking(200, 0)
	episodic := memory.NewEpisodic(10000, vstore, embedder, "episodic", logger)
	semantic := memory.NewSemantic(10000, vstore, embedder, "semantic", gstore, logger)

	return memory.NewManager(working, episodic, semantic, gstore, logger), nil
}

func buildEmbedder(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Embedding.Type {
	case "dashscope":
		return embedding.NewDashScope(embedding.OpenAIConfig{
			APIKey:    cfg.Embedding.APIKey,
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.ModelName,
			Dimension: cfg.Embedding.Dimensions,
		})
	case "simple", "":
		return embedding.NewSimple(cfg.Embedding.Dimensions), nil
	default:
		return embedding.NewOpenAI(embedding.OpenAIConfig{
			APIKey:    cfg.Embedding.APIKey,
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.ModelName,
			Dimension: cfg.Embedding.Dimensions,
		})
	}
}
