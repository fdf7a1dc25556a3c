package hybrid

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mingshu-dev/clausecheck/internal/config"
	"github.com/mingshu-dev/clausecheck/internal/llm"
	"github.com/mingshu-dev/clausecheck/internal/schema"
)

type mockProvider struct {
	response string
	err      error
	calls    int
}

func (m *mockProvider) Complete(context.Context, string, string, int, float64) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// installMock routes provider construction to m and points the selection at
// deepseek so the adapter takes the remote path.
func installMock(t *testing.T, m *mockProvider) {
	t.Helper()
	for _, k := range []string{"QWEN_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("AI_PROVIDER", "deepseek")
	t.Setenv("DEEPSEEK_API_KEY", "test-key")

	orig := llm.NewProvider
	llm.NewProvider = func(name string, cfg config.Settings) (llm.Provider, error) {
		return m, nil
	}
	t.Cleanup(func() { llm.NewProvider = orig })
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewDefault(zap.NewNop())
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	return a
}

const (
	// Jurisdiction at defendant's domicile; every other expected clause
	// is present so only the jurisdiction heuristic fires.
	jurisdictionContract = "双方因本合同发生争议的，可向被告所在地人民法院提起诉讼。" +
		"本合同包含保密条款和不可抗力条款，双方可协商解除合同，通知送达以书面为准。"

	// Procurement contract with a 45-day payment term and several absent
	// protective clauses.
	procurementContract = "本采购合同：甲方向乙方采购设备一批。付款期限为货到后45天内支付全款。"
)

func TestAnalyze_ShortTextSkipsPipeline(t *testing.T) {
	m := &mockProvider{response: "{}"}
	installMock(t, m)
	a := newTestAnalyzer(t)

	report := a.Analyze(context.Background(), "合同文本内容非常短", true)

	if m.calls != 0 {
		t.Errorf("provider calls = %d, want 0 for short text", m.calls)
	}
	if report.RiskLevel != schema.GradeD {
		t.Errorf("riskLevel = %q, want D", report.RiskLevel)
	}
	if report.RiskScore != 85 {
		t.Errorf("riskScore = %d, want 85", report.RiskScore)
	}
	if report.Provider != llm.ProviderFallback {
		t.Errorf("provider = %q, want %q", report.Provider, llm.ProviderFallback)
	}
	if len(report.Findings) != 1 || report.Findings[0].ID != "ai-risk-0" {
		t.Errorf("findings = %+v, want single ai-risk-0 finding", report.Findings)
	}
}

func TestAnalyze_JurisdictionScenario(t *testing.T) {
	a := newTestAnalyzer(t)

	report := a.Analyze(context.Background(), jurisdictionContract, false)

	var hits []schema.Finding
	for _, f := range report.Findings {
		if strings.Contains(f.Explanation, "被告所在地") {
			hits = append(hits, f)
		}
	}
	if len(hits) != 1 {
		t.Fatalf("expected exactly one defendant-domicile finding, got %d: %+v", len(hits), report.Findings)
	}
	f := hits[0]
	if f.Severity != schema.SeverityHigh {
		t.Errorf("severity = %q, want high", f.Severity)
	}
	if f.Law != "《民事诉讼法》第34条" {
		t.Errorf("law = %q, want 《民事诉讼法》第34条", f.Law)
	}
	if report.OverallRisk != schema.RiskLevelMedium {
		t.Errorf("overallRisk = %q, want medium (one high finding)", report.OverallRisk)
	}
	if report.RiskLevel != schema.GradeA {
		t.Errorf("riskLevel = %q, want A", report.RiskLevel)
	}
	// Rule score 100 for an otherwise complete contract, minus 2 per unique finding.
	if report.RiskScore != 98 {
		t.Errorf("riskScore = %d, want 98", report.RiskScore)
	}
	if report.Provider != llm.ProviderFallback {
		t.Errorf("provider = %q, want %q", report.Provider, llm.ProviderFallback)
	}
}

func TestAnalyze_ProcurementScenarioDedupes(t *testing.T) {
	a := newTestAnalyzer(t)

	report := a.Analyze(context.Background(), procurementContract, false)

	var paymentHits int
	for _, f := range report.Findings {
		if strings.Contains(f.Explanation, "45") {
			paymentHits++
		}
	}
	if paymentHits != 1 {
		t.Errorf("expected exactly one 45-day payment finding after dedupe, got %d", paymentHits)
	}

	seen := make(map[string]bool)
	for _, f := range report.Findings {
		if seen[f.Explanation] {
			t.Errorf("duplicate explanation survived dedupe: %q", f.Explanation)
		}
		seen[f.Explanation] = true
	}

	if report.OverallRisk != schema.RiskLevelMedium {
		t.Errorf("overallRisk = %q, want medium", report.OverallRisk)
	}
	if report.RiskLevel != schema.GradeB {
		t.Errorf("riskLevel = %q, want B (no high findings)", report.RiskLevel)
	}
	if len(report.MissingClauses) == 0 || report.MissingClauses[0] != "保密条款" {
		t.Errorf("missingClauses = %v, want 保密条款 first", report.MissingClauses)
	}
	var gotForceMajeure bool
	for _, c := range report.MissingClauses {
		if c == "不可抗力条款" {
			gotForceMajeure = true
		}
	}
	if !gotForceMajeure {
		t.Errorf("missingClauses = %v, should contain 不可抗力条款", report.MissingClauses)
	}
}

func severityRank(level schema.RiskLevel) int {
	switch level {
	case schema.RiskLevelHigh:
		return 2
	case schema.RiskLevelMedium:
		return 1
	default:
		return 0
	}
}

func TestAnalyze_MoreRiskNeverRaisesScore(t *testing.T) {
	a := newTestAnalyzer(t)

	base := a.Analyze(context.Background(), jurisdictionContract, false)
	worse := a.Analyze(context.Background(),
		jurisdictionContract+"另外，违约金为50%合同金额。", false)

	if worse.RiskScore > base.RiskScore {
		t.Errorf("adding a high-risk clause raised the score: %d > %d",
			worse.RiskScore, base.RiskScore)
	}
	if severityRank(worse.OverallRisk) < severityRank(base.OverallRisk) {
		t.Errorf("adding a high-risk clause lowered overall risk: %q < %q",
			worse.OverallRisk, base.OverallRisk)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := newTestAnalyzer(t)

	first := a.Analyze(context.Background(), procurementContract, false)
	second := a.Analyze(context.Background(), procurementContract, false)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", first, second)
	}
}

func TestAnalyze_ScoreBounds(t *testing.T) {
	a := newTestAnalyzer(t)
	texts := []string{
		jurisdictionContract,
		procurementContract,
		strings.Repeat("管辖由被告所在地法院。违约金为50%合同金额。赔偿一切损失。", 5),
		"第一条 保密。双方承担保密义务。第二条 不可抗力条款适用。通知送达以书面为准。",
	}
	for _, text := range texts {
		report := a.Analyze(context.Background(), text, false)
		if report.RiskScore < 0 || report.RiskScore > 100 {
			t.Errorf("riskScore = %d out of [0,100] for %q", report.RiskScore, text)
		}
	}
}

func TestAnalyze_ProviderReviewDrivesScore(t *testing.T) {
	response := `{
		"overallRisk": "high",
		"riskScore": 40,
		"keyRisks": [
			{
				"clause": "争议解决条款",
				"location": "第九条",
				"riskType": "legal",
				"severity": "high",
				"explanation": "管辖约定不利",
				"suggestion": "改为原告所在地法院管辖",
				"category": "法律风险"
			}
		],
		"missingClauses": ["保密条款"],
		"thinking": "测试思考过程"
	}`
	m := &mockProvider{response: response}
	installMock(t, m)
	a := newTestAnalyzer(t)

	report := a.Analyze(context.Background(), jurisdictionContract, true)

	if m.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", m.calls)
	}
	if report.Provider != "deepseek" {
		t.Errorf("provider = %q, want deepseek", report.Provider)
	}
	// The AI finding shares (clause, category) with the heuristic one, so
	// only the earlier heuristic survives: score = 40 - 2*1.
	if len(report.Findings) != 1 {
		t.Fatalf("findings = %+v, want 1 after dedupe", report.Findings)
	}
	if report.RiskScore != 38 {
		t.Errorf("riskScore = %d, want 38", report.RiskScore)
	}
	if report.Rationale != "测试思考过程" {
		t.Errorf("rationale = %q, want the provider's thinking", report.Rationale)
	}
	if len(report.MissingClauses) != 1 || report.MissingClauses[0] != "保密条款" {
		t.Errorf("missingClauses = %v, want the provider's list", report.MissingClauses)
	}
}

func TestAnalyze_ProviderFailureDegradesToFallback(t *testing.T) {
	m := &mockProvider{err: errors.New("upstream timeout")}
	installMock(t, m)
	a := newTestAnalyzer(t)

	report := a.Analyze(context.Background(), jurisdictionContract, true)

	if m.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", m.calls)
	}
	if report.Provider != llm.ProviderFallback {
		t.Errorf("provider = %q, want %q", report.Provider, llm.ProviderFallback)
	}
	if len(report.Findings) == 0 {
		t.Error("degraded report should still carry findings")
	}
	if report.Rationale == "" {
		t.Error("degraded report should still carry a rationale")
	}
}

func TestDedupe(t *testing.T) {
	findings := []schema.Finding{
		{ID: "a", Clause: "c1", Category: "法律风险", Explanation: "原因一"},
		{ID: "b", Clause: "c2", Category: "法律风险", Explanation: "原因一"},
		{ID: "c", Clause: "c1", Category: "法律风险", Explanation: "原因二"},
		{ID: "d", Clause: "c3", Category: "商业风险", Explanation: "原因三"},
	}

	got := Dedupe(findings)
	if len(got) != 2 {
		t.Fatalf("Dedupe kept %d findings, want 2: %+v", len(got), got)
	}
	if got[0].ID != "a" || got[1].ID != "d" {
		t.Errorf("Dedupe should keep the first occurrence, got %q then %q", got[0].ID, got[1].ID)
	}

	again := Dedupe(got)
	if !reflect.DeepEqual(got, again) {
		t.Errorf("Dedupe is not idempotent: %+v vs %+v", got, again)
	}
}

func TestDedupe_DuplicateOfDroppedFinding(t *testing.T) {
	// b is dropped for sharing a's (clause, category) pair; c repeats b's
	// explanation under a fresh pair and must still be dropped.
	findings := []schema.Finding{
		{ID: "a", Clause: "c1", Category: "法律风险", Explanation: "原因一"},
		{ID: "b", Clause: "c1", Category: "法律风险", Explanation: "原因二"},
		{ID: "c", Clause: "c3", Category: "商业风险", Explanation: "原因二"},
	}

	got := Dedupe(findings)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("Dedupe kept %+v, want only a", got)
	}
}

func TestDedupe_Empty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("Dedupe(nil) = %v, want empty", got)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		high, medium int
		wantRisk     schema.RiskLevel
		wantGrade    schema.Grade
	}{
		{2, 0, schema.RiskLevelHigh, schema.GradeA},
		{5, 3, schema.RiskLevelHigh, schema.GradeA},
		{1, 0, schema.RiskLevelMedium, schema.GradeA},
		{1, 4, schema.RiskLevelMedium, schema.GradeA},
		{0, 3, schema.RiskLevelMedium, schema.GradeB},
		{0, 1, schema.RiskLevelLow, schema.GradeC},
		{0, 0, schema.RiskLevelLow, schema.GradeD},
	}
	for _, c := range cases {
		risk, grade := Classify(c.high, c.medium)
		if risk != c.wantRisk || grade != c.wantGrade {
			t.Errorf("Classify(%d, %d) = %q/%q, want %q/%q",
				c.high, c.medium, risk, grade, c.wantRisk, c.wantGrade)
		}
	}
}
