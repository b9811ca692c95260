package llm

import "strings"

// DetectedProvider names a recognized LLM endpoint family.
type DetectedProvider string

const (
	ProviderOpenAI   DetectedProvider = "openai"
	ProviderDeepSeek DetectedProvider = "deepseek"
	ProviderDashScope DetectedProvider = "dashscope"
	ProviderUnknown  DetectedProvider = "unknown"
)

// knownBaseURLs maps a recognizable substring of LLM_BASE_URL to its
// provider, used by the URL-pattern step of the detection chain.
var knownBaseURLs = map[string]DetectedProvider{
	"deepseek.com":          ProviderDeepSeek,
	"dashscope.aliyuncs.com": ProviderDashScope,
	"api.openai.com":        ProviderOpenAI,
}

// Env is the subset of the process environment provider detection
// reads from. Kept as a plain map rather than os.Getenv so detection
// stays a pure function over a snapshot, testable by enumeration.
type Env map[string]string

// DetectProvider resolves which LLM provider to use via a priority
// chain: explicit argument, then a provider-specific API-key env var,
// then the LLM_BASE_URL pattern, then a key-prefix heuristic, then a
// default.
func DetectProvider(explicit DetectedProvider, env Env) (DetectedProvider, string, string) {
	if explicit != "" && explicit != ProviderUnknown {
		return explicit, apiKeyFor(explicit, env), baseURLFor(explicit, env)
	}

	if key := env["DEEPSEEK_API_KEY"]; key != "" {
		return ProviderDeepSeek, key, baseURLFor(ProviderDeepSeek, env)
	}
	if key := env["DASHSCOPE_API_KEY"]; key != "" {
		return ProviderDashScope, key, baseURLFor(ProviderDashScope, env)
	}
	if key := env["OPENAI_API_KEY"]; key != "" {
		return ProviderOpenAI, key, baseURLFor(ProviderOpenAI, env)
	}

	if base := env["LLM_BASE_URL"]; base != "" {
		for substr, provider := range knownBaseURLs {
			if strings.Contains(base, substr) {
				return provider, env["LLM_API_KEY"], base
			}
		}
	}

	if key := env["LLM_API_KEY"]; key != "" {
		switch {
		case strings.HasPrefix(key, "sk-proj-"), strings.HasPrefix(key, "sk-"):
			return ProviderOpenAI, key, baseURLFor(ProviderOpenAI, env)
		}
		return ProviderUnknown, key, env["LLM_BASE_URL"]
	}

	return ProviderOpenAI, "", baseURLFor(ProviderOpenAI, env)
}

func apiKeyFor(provider DetectedProvider, env Env) string {
	switch provider {
	case ProviderDeepSeek:
		if key := env["DEEPSEEK_API_KEY"]; key != "" {
			return key
		}
	case ProviderDashScope:
		if key := env["DASHSCOPE_API_KEY"]; key != "" {
			return key
		}
	case ProviderOpenAI:
		if key := env["OPENAI_API_KEY"]; key != "" {
			return key
		}
	}
	return env["LLM_API_KEY"]
}

func baseURLFor(provider DetectedProvider, env Env) string {
	if base := env["LLM_BASE_URL"]; base != "" {
		return base
	}
	switch provider {
	case ProviderDeepSeek:
		return "https://api.deepseek.com/v1"
	case ProviderDashScope:
		return "https://dashscope.aliyuncs.com/compatible-mode/v1"
	default:
		return ""
	}
}
