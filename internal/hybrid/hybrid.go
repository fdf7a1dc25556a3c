// Package hybrid orchestrates the pattern rule engine, the clause-presence
// analyzer, and the LLM adapter into one deduplicated risk report.
package hybrid

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mingshu-dev/clausecheck/internal/clauses"
	"github.com/mingshu-dev/clausecheck/internal/llm"
	"github.com/mingshu-dev/clausecheck/internal/profile"
	"github.com/mingshu-dev/clausecheck/internal/rules"
	"github.com/mingshu-dev/clausecheck/internal/schema"
	"github.com/mingshu-dev/clausecheck/internal/textutil"
)

// Analyzer is the sole entry point consumed by the surrounding application.
// Construction is explicit: the caller owns the engine and adapter instances,
// and the rule catalog never mutates after the engine is built, so a single
// Analyzer is safe for concurrent use.
type Analyzer struct {
	engine  *rules.Engine
	adapter *llm.Adapter
	log     *zap.Logger
}

// New constructs an analyzer from its collaborators. A nil logger silences it.
func New(engine *rules.Engine, adapter *llm.Adapter, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{engine: engine, adapter: adapter, log: log}
}

// NewDefault builds an analyzer over the built-in catalog and the general
// review profile.
func NewDefault(log *zap.Logger) (*Analyzer, error) {
	engine, err := rules.NewEngine(rules.Catalog())
	if err != nil {
		return nil, err
	}
	prof, err := profile.Load("general")
	if err != nil {
		return nil, err
	}
	return New(engine, llm.NewAdapter(prof, log), log), nil
}

// Analyze runs the full hybrid pipeline over text. The rule engine and the
// clause-presence analyzer run synchronously; the provider call is the only
// suspension point. The returned report is always complete and well-formed:
// provider failures degrade to the fallback reviewer inside the adapter and
// are visible only through the report's diagnostic provider field.
func (a *Analyzer) Analyze(ctx context.Context, text string, useAI bool) *schema.Report {
	if textutil.RuneLen(text) < llm.ShortTextLimit {
		a.log.Info("contract text too short, returning minimal report")
		return shortTextReport(text)
	}

	ruleFindings, ruleScore := a.engine.Evaluate(text)
	clauseResult := clauses.Scan(text)

	var review *llm.Review
	if useAI {
		review = a.adapter.Analyze(ctx, text)
	} else {
		review = llm.Fallback(text)
	}

	// Source order decides which duplicate's wording survives: rule engine
	// first, then clause presence, then AI/fallback.
	all := make([]schema.Finding, 0, len(ruleFindings)+len(clauseResult.Findings)+len(review.KeyRisks))
	all = append(all, ruleFindings...)
	all = append(all, clauseResult.Findings...)
	all = append(all, review.KeyRisks...)
	unique := Dedupe(all)

	st := schema.CountSeverities(unique)
	overall, grade := Classify(st.High, st.Medium)

	base := ruleScore
	if useAI {
		base = review.RiskScore
	}
	score := clampScore(base - 2*len(unique))

	missing := review.MissingClauses
	if len(missing) == 0 {
		missing = clauseResult.MissingClauses
	}
	rationale := review.Thinking
	if rationale == "" {
		rationale = fmt.Sprintf("基于规则引擎分析，发现 %d 个风险点", len(unique))
	}

	a.log.Info("hybrid analysis complete",
		zap.String("provider", review.Provider),
		zap.Int("findings", st.Total),
		zap.Int("score", score),
		zap.String("overallRisk", string(overall)),
		zap.String("riskLevel", string(grade)))

	return &schema.Report{
		OverallRisk:    overall,
		RiskScore:      score,
		RiskLevel:      grade,
		Findings:       unique,
		MissingClauses: missing,
		Rationale:      rationale,
		Provider:       review.Provider,
		Stats:          st,
	}
}

// shortTextReport builds the minimal report for degenerate input. The rule
// engine and the provider adapter are deliberately not invoked.
func shortTextReport(text string) *schema.Report {
	review := llm.Fallback(text)
	return &schema.Report{
		OverallRisk:    review.OverallRisk,
		RiskScore:      review.RiskScore,
		RiskLevel:      schema.GradeD,
		Findings:       review.KeyRisks,
		MissingClauses: review.MissingClauses,
		Rationale:      review.Thinking,
		Provider:       review.Provider,
		Stats:          schema.CountSeverities(review.KeyRisks),
	}
}

// Dedupe keeps the first occurrence of each finding. A later finding is
// dropped when its explanation exactly matches any earlier finding's, or when
// its (clause excerpt, category) pair does. Earlier means earlier in the
// input, kept or not: a duplicate of a dropped finding is itself dropped.
func Dedupe(findings []schema.Finding) []schema.Finding {
	type pair struct {
		clause   string
		category string
	}
	seenExplanation := make(map[string]struct{}, len(findings))
	seenPair := make(map[pair]struct{}, len(findings))

	out := make([]schema.Finding, 0, len(findings))
	for _, f := range findings {
		p := pair{clause: f.Clause, category: f.Category}
		_, dupExplanation := seenExplanation[f.Explanation]
		_, dupPair := seenPair[p]
		seenExplanation[f.Explanation] = struct{}{}
		seenPair[p] = struct{}{}
		if dupExplanation || dupPair {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Classify applies the deterministic risk thresholds, first match wins:
// two high findings mean high risk grade A; one high or three medium mean
// medium risk, graded A when any high finding is present and B otherwise;
// one medium means low risk grade C; anything else is the lowest tier.
func Classify(high, medium int) (schema.RiskLevel, schema.Grade) {
	switch {
	case high >= 2:
		return schema.RiskLevelHigh, schema.GradeA
	case high >= 1:
		return schema.RiskLevelMedium, schema.GradeA
	case medium >= 3:
		return schema.RiskLevelMedium, schema.GradeB
	case medium >= 1:
		return schema.RiskLevelLow, schema.GradeC
	default:
		return schema.RiskLevelLow, schema.GradeD
	}
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
