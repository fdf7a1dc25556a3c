// Package llm wraps remote language-model backends behind a uniform
// analyze-text contract: per-call provider selection, prompt construction,
// defensive response parsing, and silent degradation to the offline fallback
// reviewer. Analyze never fails; a provider error only changes which path
// produced the review.
package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mingshu-dev/clausecheck/internal/config"
	"github.com/mingshu-dev/clausecheck/internal/profile"
	"github.com/mingshu-dev/clausecheck/internal/schema"
	"github.com/mingshu-dev/clausecheck/internal/textutil"
)

// Provider is the interface for LLM backends.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// NewProvider is the factory for creating LLM providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call site.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(name string, cfg config.Settings) (Provider, error) = defaultNewProvider

// providerOrder is the fixed credential-scan priority used when no explicit
// provider is configured.
var providerOrder = []string{"qwen", "deepseek", "openai", "anthropic", "google"}

// ProviderFallback is the diagnostic name of the offline reviewer path.
const ProviderFallback = "fallback"

// Review is the structured contract review produced by a provider or by the
// fallback reviewer. It is the canonical internal schema: provider responses
// in the nested overallAssessment variant are normalized into this flat form
// before leaving the adapter boundary.
type Review struct {
	OverallRisk    schema.RiskLevel `json:"overallRisk"`
	RiskScore      int              `json:"riskScore"`
	KeyRisks       []schema.Finding `json:"keyRisks"`
	MissingClauses []string         `json:"missingClauses"`
	Thinking       string           `json:"thinking"`
	// Provider names the path that actually produced this review.
	Provider string `json:"provider,omitempty"`
}

// Adapter analyzes contract text through a remote provider.
type Adapter struct {
	prof profile.Profile
	log  *zap.Logger
}

// NewAdapter constructs an adapter using the given review profile. A nil
// logger silences the adapter.
func NewAdapter(prof profile.Profile, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{prof: prof, log: log}
}

// Analyze sends text to the selected provider and returns the parsed review.
// Selection is recomputed from the environment on every call so runtime
// credential changes take effect immediately. Missing credentials, transport
// errors, and unparseable responses all degrade to the fallback reviewer;
// the reason is logged but never surfaced to the caller.
func (a *Adapter) Analyze(ctx context.Context, text string) *Review {
	cfg := config.Load()

	name := selectProviderName(cfg)
	if name == "" {
		a.log.Debug("no provider credential configured, using fallback reviewer")
		return Fallback(text)
	}

	p, err := NewProvider(name, cfg)
	if err != nil {
		a.log.Warn("provider construction failed, using fallback reviewer",
			zap.String("provider", name), zap.Error(err))
		return Fallback(text)
	}

	raw, err := p.Complete(ctx,
		buildSystemPrompt(a.prof),
		buildUserPrompt(text, cfg.TruncateLimit),
		cfg.MaxTokens, cfg.Temperature)
	if err != nil {
		a.log.Warn("provider call failed, using fallback reviewer",
			zap.String("provider", name), zap.Error(err))
		return Fallback(text)
	}

	rev, err := ParseReview(raw)
	if err != nil {
		a.log.Warn("provider response unparseable, using fallback reviewer",
			zap.String("provider", name), zap.Error(err))
		return Fallback(text)
	}
	rev.Provider = name
	a.log.Debug("provider review accepted",
		zap.String("provider", name), zap.Int("findings", len(rev.KeyRisks)))
	return rev
}

// selectProviderName applies the static precedence rule: an explicitly
// configured provider wins when its credential is present; otherwise the
// first provider in priority order with a credential; otherwise empty,
// meaning the fallback reviewer.
func selectProviderName(cfg config.Settings) string {
	if cfg.Provider != "" {
		name := strings.ToLower(cfg.Provider)
		if name == ProviderFallback || name == "mock" {
			return ""
		}
		if hasCredential(name, cfg) {
			return name
		}
	}
	for _, name := range providerOrder {
		if hasCredential(name, cfg) {
			return name
		}
	}
	return ""
}

func hasCredential(name string, cfg config.Settings) bool {
	switch name {
	case "deepseek":
		return cfg.DeepSeekKey != ""
	case "qwen":
		return cfg.QwenKey != ""
	case "openai":
		return cfg.OpenAIKey != ""
	case "anthropic":
		return cfg.AnthropicKey != ""
	case "google":
		return cfg.GoogleKey != ""
	default:
		return false
	}
}

// ── Prompt construction ───────────────────────────────────────────────────────

const systemPrompt = "You are a legal contract review assistant. Always respond in valid JSON format."

// reviewPrompt is the fixed task template prepended to the contract text.
const reviewPrompt = `你是一名资深企业法务顾问，拥有10年合同审查经验。请对以下合同进行专业审查：

【审查重点】
1. 权利义务对等性（是否存在明显不对等条款）
2. 风险分配合理性（不可抗力、情势变更条款）
3. 退出机制完整性（解除条件、违约责任）
4. 知识产权归属（尤其涉及技术/创意类合同）
5. 保密与竞业限制（范围、期限、补偿）
6. 付款与交付条款（账期、验收标准）
7. 争议解决条款（管辖、适用法律）

【输出格式】
返回严格JSON格式，不要包含任何markdown代码块标记：
{
  "overallRisk": "high/medium/low",
  "riskScore": 78,
  "keyRisks": [
    {
      "clause": "条款原文摘要",
      "location": "第X条",
      "riskType": "legal/commercial/operational/ip",
      "severity": "high/medium/low",
      "explanation": "风险说明",
      "suggestion": "修改建议",
      "precedent": "类似案例后果（如有）"
    }
  ],
  "missingClauses": ["建议补充的条款"],
  "thinking": "思考过程（展示给法务参考）"
}

合同文本：
`

// truncationMarker is appended when the contract text exceeds the cap.
const truncationMarker = "\n…（内容已截断）"

func buildSystemPrompt(prof profile.Profile) string {
	if prof.SystemPromptAddendum == "" {
		return systemPrompt
	}
	return systemPrompt + "\n\n" + prof.SystemPromptAddendum
}

func buildUserPrompt(text string, limit int) string {
	if limit > 0 && textutil.RuneLen(text) > limit {
		text = textutil.Truncate(text, limit) + truncationMarker
	}
	return reviewPrompt + text
}

// ── Provider dispatch ─────────────────────────────────────────────────────────

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(name string, cfg config.Settings) (Provider, error) {
	switch strings.ToLower(name) {
	case "deepseek":
		return newDeepSeekProvider(cfg)
	case "qwen":
		return newQwenProvider(cfg)
	case "openai":
		return newOpenAIProvider(cfg)
	case "anthropic":
		return newAnthropicProvider(cfg)
	case "google":
		return newGoogleProvider(cfg)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", name)
	}
}
