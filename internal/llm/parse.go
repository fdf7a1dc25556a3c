package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/mingshu-dev/clausecheck/internal/schema"
	"github.com/mingshu-dev/clausecheck/internal/textutil"
)

// ErrNoJSON is returned when the response contains no JSON object at all.
var ErrNoJSON = errors.New("llm: response contains no JSON object")

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences.
// Both backtick and tilde fence styles are supported. The content group uses
// `.*?` (not `.+?`) to allow empty bodies inside fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches only an opening fence line (no closing fence required).
// Used to strip orphaned opening fences from truncated responses.
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

// stripMarkdownFences removes leading/trailing markdown code fences that LLMs
// sometimes wrap around JSON output (e.g., "```json\n...\n```").
// If only an opening fence is present (e.g., the response was truncated before
// the closing fence), the opening line is stripped so that the JSON content can
// still be parsed.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// invalidJSONEscapeRe matches a backslash followed by any character that is not
// a valid JSON string escape character ("\/bfnrtu). LLMs sometimes emit regex
// patterns (e.g. \d+) unescaped inside JSON strings; this sanitizer converts
// them to properly double-escaped sequences so the parser accepts the response.
var invalidJSONEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

func fixInvalidJSONEscapes(s string) string {
	return invalidJSONEscapeRe.ReplaceAllString(s, `\\$1`)
}

// wireReview is the untyped shape of a provider response. keyRisks is kept
// raw so a missing or non-array field degrades to empty findings rather than
// failing the whole parse. The nested overallAssessment variant used by some
// prompt revisions is accepted and folded into the flat fields.
type wireReview struct {
	OverallRisk       string          `json:"overallRisk"`
	RiskScore         *float64        `json:"riskScore"`
	KeyRisks          json.RawMessage `json:"keyRisks"`
	MissingClauses    []string        `json:"missingClauses"`
	Thinking          string          `json:"thinking"`
	OverallAssessment *struct {
		OverallRisk string   `json:"overallRisk"`
		RiskScore   *float64 `json:"riskScore"`
	} `json:"overallAssessment"`
}

type wireRisk struct {
	Clause      string `json:"clause"`
	Location    string `json:"location"`
	RiskType    string `json:"riskType"`
	Severity    string `json:"severity"`
	Explanation string `json:"explanation"`
	Suggestion  string `json:"suggestion"`
	Category    string `json:"category"`
	Law         string `json:"law"`
	Precedent   string `json:"precedent"`
}

// ParseReview extracts and validates a structured review from a raw model
// reply. The reply is untrusted and semi-structured: markdown fences are
// stripped, the slice between the first '{' and the last '}' is parsed, and
// every finding is normalized into the canonical shape. A missing keyRisks
// field yields empty findings; only an unlocatable or unparseable JSON body
// is an error (which the adapter converts into a fallback).
func ParseReview(raw string) (*Review, error) {
	s := stripMarkdownFences(raw)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}
	s = s[start : end+1]

	var w wireReview
	if err := json.Unmarshal([]byte(s), &w); err != nil {
		fixed := fixInvalidJSONEscapes(s)
		if err2 := json.Unmarshal([]byte(fixed), &w); err2 != nil {
			return nil, fmt.Errorf("llm: parse response: %w", err)
		}
	}

	if w.OverallAssessment != nil {
		if w.OverallRisk == "" {
			w.OverallRisk = w.OverallAssessment.OverallRisk
		}
		if w.RiskScore == nil {
			w.RiskScore = w.OverallAssessment.RiskScore
		}
	}

	findings := normalizeRisks(w.KeyRisks)
	st := schema.CountSeverities(findings)

	rev := &Review{
		KeyRisks:       findings,
		MissingClauses: w.MissingClauses,
		Thinking:       w.Thinking,
	}

	switch schema.RiskLevel(strings.ToLower(w.OverallRisk)) {
	case schema.RiskLevelHigh, schema.RiskLevelMedium, schema.RiskLevelLow:
		rev.OverallRisk = schema.RiskLevel(strings.ToLower(w.OverallRisk))
	default:
		rev.OverallRisk = classify(st)
	}

	if w.RiskScore != nil {
		rev.RiskScore = clampScore(int(math.Round(*w.RiskScore)))
	} else {
		rev.RiskScore = heuristicScore(st)
	}

	return rev, nil
}

// normalizeRisks coerces the raw keyRisks array into canonical findings with
// fresh index-based ids. Absent severities default to medium, absent
// categories to a generic label, and invalid risk types are re-derived from
// the category.
func normalizeRisks(raw json.RawMessage) []schema.Finding {
	if len(raw) == 0 {
		return nil
	}
	var wrs []wireRisk
	if err := json.Unmarshal(raw, &wrs); err != nil {
		return nil
	}
	out := make([]schema.Finding, 0, len(wrs))
	for i, wr := range wrs {
		sev := schema.Severity(strings.ToLower(wr.Severity))
		switch sev {
		case schema.SeverityHigh, schema.SeverityMedium, schema.SeverityLow:
		default:
			sev = schema.SeverityMedium
		}

		category := wr.Category
		if category == "" {
			category = "其他风险"
		}

		rt := schema.RiskType(strings.ToLower(wr.RiskType))
		switch rt {
		case schema.RiskLegal, schema.RiskCommercial, schema.RiskOperational, schema.RiskIP:
		default:
			rt = schema.RiskTypeFor(category)
		}

		location := wr.Location
		if location == "" {
			location = "未知位置"
		}

		out = append(out, schema.Finding{
			ID:          fmt.Sprintf("ai-risk-%d", i+1),
			Clause:      textutil.Truncate(wr.Clause, 100),
			Location:    location,
			RiskType:    rt,
			Severity:    sev,
			Explanation: wr.Explanation,
			Suggestion:  wr.Suggestion,
			Category:    category,
			Law:         wr.Law,
		})
	}
	return out
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
