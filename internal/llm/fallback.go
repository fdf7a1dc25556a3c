package llm

import (
	"fmt"

	"github.com/mingshu-dev/clausecheck/internal/clauses"
	"github.com/mingshu-dev/clausecheck/internal/schema"
	"github.com/mingshu-dev/clausecheck/internal/textutil"
)

// ShortTextLimit is the rune count below which a contract text is considered
// too short to analyze.
const ShortTextLimit = 10

// Fallback is the deterministic offline reviewer. It applies the shared
// clause-presence heuristics directly and makes no network call, so it is
// both the degradation target for provider failures and the default path
// when the caller opts out of AI analysis.
func Fallback(text string) *Review {
	if textutil.RuneLen(text) < ShortTextLimit {
		return shortTextReview()
	}

	findings := clauses.Heuristics(text)
	for i := range findings {
		findings[i].ID = fmt.Sprintf("ai-risk-%d", i+1)
	}
	st := schema.CountSeverities(findings)

	return &Review{
		OverallRisk:    classify(st),
		RiskScore:      heuristicScore(st),
		KeyRisks:       findings,
		MissingClauses: clauses.MissingClauses(text),
		Thinking:       fallbackThinking(st),
		Provider:       ProviderFallback,
	}
}

// shortTextReview is the minimal low-risk review for degenerate input.
func shortTextReview() *Review {
	return &Review{
		OverallRisk: schema.RiskLevelLow,
		RiskScore:   85,
		KeyRisks: []schema.Finding{{
			ID:          "ai-risk-0",
			Clause:      "合同文本过短或为空",
			Location:    "整体",
			RiskType:    schema.RiskOperational,
			Severity:    schema.SeverityLow,
			Explanation: "合同内容较少，无法进行全面风险分析。",
			Suggestion:  "请确保上传完整的合同文本以获得准确的风险评估。",
			Category:    "操作建议",
		}},
		MissingClauses: []string{"请上传完整合同文本"},
		Thinking:       "由于合同文本内容较少，只能进行基础分析。建议上传完整合同以获得全面的风险评估。",
		Provider:       ProviderFallback,
	}
}

// classify derives a review-level risk from severity counts: two high
// findings make the review high risk, one high or two medium make it medium.
func classify(st schema.Stats) schema.RiskLevel {
	switch {
	case st.High >= 2:
		return schema.RiskLevelHigh
	case st.High >= 1 || st.Medium >= 2:
		return schema.RiskLevelMedium
	default:
		return schema.RiskLevelLow
	}
}

// heuristicScore computes the fallback risk score: 100 minus 25 per high and
// 15 per medium finding, clamped to zero.
func heuristicScore(st schema.Stats) int {
	score := 100 - st.High*25 - st.Medium*15
	if score < 0 {
		return 0
	}
	return score
}

// fallbackThinking renders the deterministic review rationale.
func fallbackThinking(st schema.Stats) string {
	s := fmt.Sprintf("经过对合同的全面审查，发现%d个主要风险点。", st.Total)
	if st.High > 0 {
		s += fmt.Sprintf("其中存在%d个高风险项需要重点关注。", st.High)
	}
	if st.Medium > 0 {
		s += fmt.Sprintf("同时发现%d个中风险项建议改进。", st.Medium)
	}
	return s + "建议优先处理管辖条款和违约责任条款的修改。"
}
