// Package rules implements the pattern rule engine: a fixed catalog of
// detection rules evaluated against contract text, producing findings and a
// self-contained risk score.
package rules

import (
	"fmt"
	"regexp"

	"github.com/mingshu-dev/clausecheck/internal/schema"
	"github.com/mingshu-dev/clausecheck/internal/textutil"
)

// excerptLimit bounds the clause excerpt carried on a finding so that report
// payloads stay small regardless of contract size.
const excerptLimit = 100

// articleRe matches clause-number markers ("第X条") used to derive a finding's
// location from the text preceding a match.
var articleRe = regexp.MustCompile(`第[一二三四五六七八九十百千零\d]+条`)

// Global-absence markers used by the scoring penalties.
var (
	confidentialityRe = regexp.MustCompile(`保密`)
	forceMajeureRe    = regexp.MustCompile(`不可抗力`)
	ipRe              = regexp.MustCompile(`知识产权`)
	techVocabRe       = regexp.MustCompile(`技术|开发|设计`)
)

// locationUnknown is reported when no clause-number marker precedes a match.
const locationUnknown = "未知位置"

// Engine evaluates a rule catalog against contract text. The catalog is
// compiled once at construction and read-only afterwards, so a single Engine
// is safe for concurrent use.
type Engine struct {
	rules []compiledRule
}

type compiledRule struct {
	rule schema.Rule
	re   *regexp.Regexp
}

// NewEngine compiles the catalog into an engine. A malformed pattern is a
// configuration error: it fails construction rather than individual calls.
func NewEngine(catalog []schema.Rule) (*Engine, error) {
	e := &Engine{rules: make([]compiledRule, 0, len(catalog))}
	for _, r := range catalog {
		re, err := regexp.Compile(`(?i)` + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rules: compile rule %q: %w", r.ID, err)
		}
		e.rules = append(e.rules, compiledRule{rule: r, re: re})
	}
	return e, nil
}

// Rules returns a copy of the catalog backing the engine.
func (e *Engine) Rules() []schema.Rule {
	out := make([]schema.Rule, len(e.rules))
	for i, cr := range e.rules {
		out[i] = cr.rule
	}
	return out
}

// Evaluate scans text against every rule and returns the findings plus the
// engine's own risk score. Overlapping findings from different rules are
// allowed here; deduplication is centralized in the hybrid analyzer.
func (e *Engine) Evaluate(text string) ([]schema.Finding, int) {
	var findings []schema.Finding
	for _, cr := range e.rules {
		findings = append(findings, cr.findings(text)...)
	}
	return findings, e.score(text, findings)
}

// findings returns one finding per non-overlapping match, or a single
// whole-text finding for an absence rule whose marker is missing.
func (cr compiledRule) findings(text string) []schema.Finding {
	r := cr.rule
	if r.Absent {
		if cr.re.MatchString(text) {
			return nil
		}
		return []schema.Finding{makeFinding(r, textutil.Truncate(text, excerptLimit), locationUnknown)}
	}

	locs := cr.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]schema.Finding, 0, len(locs))
	for _, loc := range locs {
		excerpt := textutil.Truncate(text[loc[0]:loc[1]], excerptLimit)
		out = append(out, makeFinding(r, excerpt, locate(text, loc[0])))
	}
	return out
}

func makeFinding(r schema.Rule, excerpt, location string) schema.Finding {
	return schema.Finding{
		ID:          "rule-" + r.ID,
		Clause:      excerpt,
		Location:    location,
		RiskType:    schema.RiskTypeFor(r.Category),
		Severity:    r.Severity,
		Explanation: r.Message,
		Suggestion:  r.Suggestion,
		Category:    r.Category,
		Law:         r.Law,
	}
}

// locate returns the nearest clause-number marker preceding offset, or
// locationUnknown when the match sits before any numbered clause.
func locate(text string, offset int) string {
	markers := articleRe.FindAllString(text[:offset], -1)
	if len(markers) == 0 {
		return locationUnknown
	}
	return markers[len(markers)-1]
}

// score computes the engine's risk score: 100 minus 10x the severity weight
// of every finding, minus fixed penalties for globally missing critical
// clauses, clamped to zero.
func (e *Engine) score(text string, findings []schema.Finding) int {
	score := 100
	for _, f := range findings {
		score -= f.Severity.Weight() * 10
	}
	if !confidentialityRe.MatchString(text) {
		score -= 5
	}
	if !forceMajeureRe.MatchString(text) {
		score -= 3
	}
	if !ipRe.MatchString(text) && techVocabRe.MatchString(text) {
		score -= 8
	}
	if score < 0 {
		return 0
	}
	return score
}
