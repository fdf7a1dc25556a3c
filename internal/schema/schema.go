// Package schema defines the canonical data types for the ClauseCheck output format.
package schema

// Severity represents the severity level of a single finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Weight returns the scoring weight of a severity. Unknown severities weigh
// the same as low so a lenient provider response can never inflate the
// deduction beyond what the catalog defines.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// RiskType classifies the nature of a finding.
type RiskType string

const (
	RiskLegal       RiskType = "legal"
	RiskCommercial  RiskType = "commercial"
	RiskOperational RiskType = "operational"
	RiskIP          RiskType = "ip"
)

// RiskTypeFor maps a category label to a risk type. Unknown categories
// default to legal, the catalog's dominant category.
func RiskTypeFor(category string) RiskType {
	switch category {
	case "财务风险", "商业风险":
		return RiskCommercial
	case "操作风险", "操作建议":
		return RiskOperational
	case "知识产权":
		return RiskIP
	default:
		return RiskLegal
	}
}

// RiskLevel is the overall risk classification of a report.
type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "high"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelLow    RiskLevel = "low"
)

// Grade is the coarse four-tier letter classification stored alongside a
// contract record. A is the riskiest tier, D the safest.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Label returns the display label for a grade.
func (g Grade) Label() string {
	switch g {
	case GradeA:
		return "高风险"
	case GradeB:
		return "中风险"
	case GradeC:
		return "低风险"
	default:
		return "极低风险"
	}
}

// Rule is a named pattern-based detector. Rules are defined once per catalog
// and are read-only after the engine is constructed; identity is ID.
type Rule struct {
	ID      string
	Name    string
	Pattern string
	// Absent inverts the rule: it fires exactly once when Pattern does NOT
	// appear anywhere in the text. Used for clause-absence rules that the
	// original catalog expressed with negative lookahead, which RE2 does not
	// support.
	Absent     bool
	Severity   Severity
	Message    string
	Suggestion string
	Category   string
	Law        string
}

// Finding is one detected risk instance tied to a location in the contract
// text. Findings are created fresh per analysis call and never persisted by
// this module.
type Finding struct {
	ID          string   `json:"id"`
	Clause      string   `json:"clause"`
	Location    string   `json:"location"`
	RiskType    RiskType `json:"riskType"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
	Suggestion  string   `json:"suggestion"`
	Category    string   `json:"category"`
	Law         string   `json:"law,omitempty"`
}

// Report is the unit of output of a hybrid analysis. Invariants: RiskScore is
// in [0,100]; Findings contains no two entries with an identical Explanation
// or an identical (Clause, Category) pair; OverallRisk and RiskLevel are
// deterministic functions of the high/medium finding counts.
type Report struct {
	OverallRisk    RiskLevel `json:"overallRisk"`
	RiskScore      int       `json:"riskScore"`
	RiskLevel      Grade     `json:"riskLevel"`
	Findings       []Finding `json:"keyRisks"`
	MissingClauses []string  `json:"missingClauses"`
	Rationale      string    `json:"thinking"`
	// Provider records which provider path actually produced the AI portion
	// of the report ("deepseek", "qwen", ..., or "fallback"). Diagnostic
	// only; degradation is otherwise invisible to the caller.
	Provider string `json:"provider,omitempty"`
	Stats    Stats  `json:"stats"`
}

// Stats aggregates finding counts by severity for display purposes.
type Stats struct {
	Total  int `json:"totalRisks"`
	High   int `json:"highRisks"`
	Medium int `json:"mediumRisks"`
	Low    int `json:"lowRisks"`
}

// CountSeverities tallies findings by severity.
func CountSeverities(findings []Finding) Stats {
	st := Stats{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case SeverityHigh:
			st.High++
		case SeverityMedium:
			st.Medium++
		case SeverityLow:
			st.Low++
		}
	}
	return st
}
