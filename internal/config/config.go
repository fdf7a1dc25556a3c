// Package config reads provider settings from the environment. Load is
// called on every analysis so runtime credential changes take effect
// immediately; nothing here is cached.
package config

import "github.com/spf13/viper"

// Settings is the configuration surface consumed by the LLM adapter.
type Settings struct {
	// Provider is the explicit provider-name override (AI_PROVIDER). It wins
	// over the priority order only when its credential is present.
	Provider string

	DeepSeekKey   string
	DeepSeekURL   string
	DeepSeekModel string

	QwenKey   string
	QwenURL   string
	QwenModel string

	OpenAIKey   string
	OpenAIURL   string
	OpenAIModel string

	AnthropicKey   string
	AnthropicModel string

	GoogleKey   string
	GoogleModel string

	MaxTokens   int
	Temperature float64
	// TruncateLimit caps the contract text sent to a provider, in runes.
	TruncateLimit int
}

// Load reads the current environment into a Settings value.
func Load() Settings {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DEEPSEEK_API_URL", "https://api.deepseek.com/v1")
	v.SetDefault("DEEPSEEK_MODEL", "deepseek-chat")
	v.SetDefault("QWEN_API_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("QWEN_MODEL", "qwen-plus")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514")
	v.SetDefault("GOOGLE_MODEL", "gemini-2.0-flash")
	v.SetDefault("AI_MAX_TOKENS", 4000)
	v.SetDefault("AI_TEMPERATURE", 0.3)
	v.SetDefault("AI_TRUNCATE_LIMIT", 6000)

	return Settings{
		Provider:       v.GetString("AI_PROVIDER"),
		DeepSeekKey:    v.GetString("DEEPSEEK_API_KEY"),
		DeepSeekURL:    v.GetString("DEEPSEEK_API_URL"),
		DeepSeekModel:  v.GetString("DEEPSEEK_MODEL"),
		QwenKey:        v.GetString("QWEN_API_KEY"),
		QwenURL:        v.GetString("QWEN_API_URL"),
		QwenModel:      v.GetString("QWEN_MODEL"),
		OpenAIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIURL:      v.GetString("OPENAI_BASE_URL"),
		OpenAIModel:    v.GetString("OPENAI_MODEL"),
		AnthropicKey:   v.GetString("ANTHROPIC_API_KEY"),
		AnthropicModel: v.GetString("ANTHROPIC_MODEL"),
		GoogleKey:      v.GetString("GOOGLE_API_KEY"),
		GoogleModel:    v.GetString("GOOGLE_MODEL"),
		MaxTokens:      v.GetInt("AI_MAX_TOKENS"),
		Temperature:    v.GetFloat64("AI_TEMPERATURE"),
		TruncateLimit:  v.GetInt("AI_TRUNCATE_LIMIT"),
	}
}
