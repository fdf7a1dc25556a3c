package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/mingshu-dev/clausecheck/internal/config"
)

// chatProvider implements Provider over any OpenAI-compatible chat-completions
// endpoint. DeepSeek, Qwen, and OpenAI itself differ only in base URL,
// credential, and model, so they share this one implementation.
type chatProvider struct {
	client openai.Client
	model  string
}

func newChatProvider(apiKey, baseURL, model string) Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &chatProvider{client: openai.NewClient(opts...), model: model}
}

func newDeepSeekProvider(cfg config.Settings) (Provider, error) {
	if cfg.DeepSeekKey == "" {
		return nil, fmt.Errorf("llm: DEEPSEEK_API_KEY environment variable not set")
	}
	return newChatProvider(cfg.DeepSeekKey, cfg.DeepSeekURL, cfg.DeepSeekModel), nil
}

func newQwenProvider(cfg config.Settings) (Provider, error) {
	if cfg.QwenKey == "" {
		return nil, fmt.Errorf("llm: QWEN_API_KEY environment variable not set")
	}
	return newChatProvider(cfg.QwenKey, cfg.QwenURL, cfg.QwenModel), nil
}

func newOpenAIProvider(cfg config.Settings) (Provider, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("llm: OPENAI_API_KEY environment variable not set")
	}
	return newChatProvider(cfg.OpenAIKey, cfg.OpenAIURL, cfg.OpenAIModel), nil
}

func (p *chatProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat: completions.new: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat: response contained no choices")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("chat: response contained no content")
	}
	return content, nil
}
