package llm

import (
	"strings"
	"testing"

	"github.com/mingshu-dev/clausecheck/internal/schema"
)

func TestFallback_ShortText(t *testing.T) {
	rev := Fallback("短文本")

	if rev.Provider != ProviderFallback {
		t.Errorf("provider = %q, want %q", rev.Provider, ProviderFallback)
	}
	if rev.RiskScore != 85 {
		t.Errorf("riskScore = %d, want 85", rev.RiskScore)
	}
	if rev.OverallRisk != schema.RiskLevelLow {
		t.Errorf("overallRisk = %q, want low", rev.OverallRisk)
	}
	if len(rev.KeyRisks) != 1 || rev.KeyRisks[0].ID != "ai-risk-0" {
		t.Fatalf("keyRisks = %+v, want single ai-risk-0 finding", rev.KeyRisks)
	}
	if len(rev.MissingClauses) != 1 || rev.MissingClauses[0] != "请上传完整合同文本" {
		t.Errorf("missingClauses = %v", rev.MissingClauses)
	}
}

func TestFallback_HeuristicReview(t *testing.T) {
	// Jurisdiction at defendant's domicile (high) plus a missing
	// confidentiality clause (medium).
	text := "双方因本合同发生争议的，可向被告所在地人民法院提起诉讼。"
	rev := Fallback(text)

	if rev.Provider != ProviderFallback {
		t.Errorf("provider = %q, want %q", rev.Provider, ProviderFallback)
	}
	if len(rev.KeyRisks) != 2 {
		t.Fatalf("keyRisks len = %d, want 2: %+v", len(rev.KeyRisks), rev.KeyRisks)
	}
	for i, f := range rev.KeyRisks {
		want := "ai-risk-" + string(rune('1'+i))
		if f.ID != want {
			t.Errorf("keyRisks[%d].ID = %q, want %q", i, f.ID, want)
		}
	}
	if rev.RiskScore != 60 {
		t.Errorf("riskScore = %d, want 60 (100 - 25 - 15)", rev.RiskScore)
	}
	if rev.OverallRisk != schema.RiskLevelMedium {
		t.Errorf("overallRisk = %q, want medium", rev.OverallRisk)
	}
	if !strings.Contains(rev.Thinking, "2个主要风险点") {
		t.Errorf("thinking = %q, should state the finding count", rev.Thinking)
	}
	if !strings.Contains(rev.Thinking, "1个高风险项") {
		t.Errorf("thinking = %q, should state the high-risk count", rev.Thinking)
	}
	if len(rev.MissingClauses) == 0 || rev.MissingClauses[0] != "保密条款" {
		t.Errorf("missingClauses = %v, want 保密条款 first", rev.MissingClauses)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		high, medium int
		want         schema.RiskLevel
	}{
		{2, 0, schema.RiskLevelHigh},
		{3, 5, schema.RiskLevelHigh},
		{1, 0, schema.RiskLevelMedium},
		{0, 2, schema.RiskLevelMedium},
		{0, 1, schema.RiskLevelLow},
		{0, 0, schema.RiskLevelLow},
	}
	for _, c := range cases {
		st := schema.Stats{High: c.high, Medium: c.medium}
		if got := classify(st); got != c.want {
			t.Errorf("classify(high=%d, medium=%d) = %q, want %q", c.high, c.medium, got, c.want)
		}
	}
}

func TestHeuristicScore(t *testing.T) {
	cases := []struct {
		high, medium int
		want         int
	}{
		{0, 0, 100},
		{1, 0, 75},
		{0, 1, 85},
		{2, 2, 20},
		{4, 4, 0},
	}
	for _, c := range cases {
		st := schema.Stats{High: c.high, Medium: c.medium}
		if got := heuristicScore(st); got != c.want {
			t.Errorf("heuristicScore(high=%d, medium=%d) = %d, want %d", c.high, c.medium, got, c.want)
		}
	}
}
