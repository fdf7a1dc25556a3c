// Package render produces output from a fully assembled schema.Report.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mingshu-dev/clausecheck/internal/schema"
)

// JSON produces a pretty-printed JSON representation of the report.
// The output round-trips through json.Unmarshal back to an equal Report.
func JSON(report *schema.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("render: nil report")
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

// Markdown produces a Markdown summary of the report, suitable for review
// comments or terminal output. Every finding ID present in the report will
// appear in the output.
func Markdown(report *schema.Report) string {
	if report == nil {
		return ""
	}
	var sb strings.Builder

	sb.WriteString("## 合同风险分析报告\n\n")
	fmt.Fprintf(&sb, "**风险等级:** %s（%s）  \n", report.RiskLevel, report.RiskLevel.Label())
	fmt.Fprintf(&sb, "**综合评分:** %d/100  \n", report.RiskScore)
	fmt.Fprintf(&sb, "**整体风险:** %s  \n", report.OverallRisk)
	fmt.Fprintf(&sb, "**高风险:** %d | **中风险:** %d | **低风险:** %d\n\n",
		report.Stats.High, report.Stats.Medium, report.Stats.Low)

	if len(report.Findings) > 0 {
		sb.WriteString("## 风险点\n\n")
		for _, f := range report.Findings {
			fmt.Fprintf(&sb, "<details>\n<summary><strong>%s</strong> [%s] — %s</summary>\n\n",
				f.ID, f.Severity, mdEscape(f.Explanation))
			if f.Clause != "" {
				fmt.Fprintf(&sb, "**条款:** %s（%s）\n\n", mdEscape(f.Clause), mdEscape(f.Location))
			}
			if f.Suggestion != "" {
				fmt.Fprintf(&sb, "**建议:** %s\n\n", mdEscape(f.Suggestion))
			}
			if f.Law != "" {
				fmt.Fprintf(&sb, "**相关法规:** %s\n\n", mdEscape(f.Law))
			}
			sb.WriteString("</details>\n\n")
		}
	}

	if len(report.MissingClauses) > 0 {
		sb.WriteString("## 建议补充条款\n\n")
		for _, c := range report.MissingClauses {
			fmt.Fprintf(&sb, "- %s\n", mdEscape(c))
		}
		sb.WriteString("\n")
	}

	if report.Rationale != "" {
		sb.WriteString("## 审查说明\n\n")
		sb.WriteString(mdEscape(report.Rationale))
		sb.WriteString("\n")
	}

	return sb.String()
}

// mdEscape replaces characters that would break Markdown structure.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
