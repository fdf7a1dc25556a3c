// Package clauses implements the heuristic clause-presence analyzer: boolean
// presence tests over contract text plus conditional findings for clause
// types whose absence or wording carries risk. It intentionally overlaps with
// the pattern rule engine; deduplication is centralized in the hybrid
// analyzer, and the fallback reviewer reuses the same heuristic findings so
// that cross-source duplicates collapse there.
package clauses

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mingshu-dev/clausecheck/internal/schema"
	"github.com/mingshu-dev/clausecheck/internal/textutil"
)

const excerptLimit = 100

var (
	paymentRe         = regexp.MustCompile(`付款|支付|账期|预付款|尾款`)
	jurisdictionRe    = regexp.MustCompile(`管辖|仲裁|争议解决|法院|诉讼`)
	terminationRe     = regexp.MustCompile(`解除|终止|违约|不可抗力`)
	confidentialityRe = regexp.MustCompile(`保密|保密义务|商业秘密`)
	ipRe              = regexp.MustCompile(`知识产权|专利|商标|著作权|技术成果`)
	warrantyRe        = regexp.MustCompile(`质保|保修|质量保证|售后服务`)
	liabilityRe       = regexp.MustCompile(`责任限制|赔偿限额|免责`)
	noticeRe          = regexp.MustCompile(`通知|送达`)
	attachmentsRe     = regexp.MustCompile(`附件`)

	paymentDaysRe = regexp.MustCompile(`付款.*?(\d+).*?(天|日|工作日)`)
	prepayRe      = regexp.MustCompile(`预付款.*?(\d+)%|首付.*?(\d+)%`)
	defendantRe   = regexp.MustCompile(`被告所在地|甲方所在地|对方所在地`)
	penaltyRe     = regexp.MustCompile(`违约金.*?([\d.]+%|百分之[一二三四五六七八九十]+)`)

	techVocabRe        = regexp.MustCompile(`技术|开发|设计|创作|软件|系统`)
	procurementVocabRe = regexp.MustCompile(`采购|供货|设备|产品`)
	serviceVocabRe     = regexp.MustCompile(`服务|承包|委托`)

	// Stricter variants used only by the full scan; these mirror the
	// original keyword pass, not the presence vector above.
	terminationClauseRe = regexp.MustCompile(`解除|终止|提前.*结束`)
	forceMajeureRe      = regexp.MustCompile(`不可抗力|不能预见|不能避免`)
	noticeClauseRe      = regexp.MustCompile(`通知|送达|书面通知`)
)

// Presence is the boolean clause-presence vector for a contract text.
type Presence struct {
	Payment         bool
	Jurisdiction    bool
	Termination     bool
	Confidentiality bool
	IP              bool
	Warranty        bool
	Liability       bool
	Notice          bool
	Attachments     bool
}

// Detect evaluates every presence predicate over text.
func Detect(text string) Presence {
	return Presence{
		Payment:         paymentRe.MatchString(text),
		Jurisdiction:    jurisdictionRe.MatchString(text),
		Termination:     terminationRe.MatchString(text),
		Confidentiality: confidentialityRe.MatchString(text),
		IP:              ipRe.MatchString(text),
		Warranty:        warrantyRe.MatchString(text),
		Liability:       liabilityRe.MatchString(text),
		Notice:          noticeRe.MatchString(text),
		Attachments:     attachmentsRe.MatchString(text),
	}
}

// Result is the output of a clause-presence scan.
type Result struct {
	Findings       []schema.Finding
	MissingClauses []string
}

// Heuristics produces the conditional findings shared between this analyzer
// and the fallback reviewer. Explanations are stable strings: the hybrid
// dedupe relies on exact equality to collapse the two sources.
func Heuristics(text string) []schema.Finding {
	p := Detect(text)
	var findings []schema.Finding

	if p.Payment {
		if m := paymentDaysRe.FindStringSubmatch(text); m != nil {
			if days, err := strconv.Atoi(m[1]); err == nil && days > 30 {
				findings = append(findings, schema.Finding{
					ID:          "heur-payment-term",
					Clause:      textutil.Truncate(m[0], excerptLimit),
					Location:    "付款条款",
					RiskType:    schema.RiskCommercial,
					Severity:    schema.SeverityMedium,
					Explanation: fmt.Sprintf("付款账期为%d天，较长，可能占用公司资金。", days),
					Suggestion:  "建议争取预付款或缩短账期至15-30天，或约定分期付款。",
					Category:    "财务风险",
				})
			}
		}
		if !prepayRe.MatchString(text) {
			findings = append(findings, schema.Finding{
				ID:          "heur-prepayment",
				Clause:      "付款条款",
				Location:    "付款方式",
				RiskType:    schema.RiskCommercial,
				Severity:    schema.SeverityLow,
				Explanation: "未约定预付款比例，可能增加资金风险。",
				Suggestion:  "建议约定30%预付款，验收合格后支付尾款。",
				Category:    "财务风险",
			})
		}
	}

	if p.Jurisdiction && defendantRe.MatchString(text) {
		findings = append(findings, schema.Finding{
			ID:          "heur-jurisdiction",
			Clause:      "争议解决条款",
			Location:    "争议解决",
			RiskType:    schema.RiskLegal,
			Severity:    schema.SeverityHigh,
			Explanation: "约定在被告所在地法院管辖，对我方可能不利，增加诉讼成本。",
			Suggestion:  "建议改为\"原告所在地或合同签订地法院管辖\"，或约定仲裁。",
			Category:    "法律风险",
			Law:         "《民事诉讼法》第34条",
		})
	}

	if m := penaltyRe.FindStringSubmatch(text); m != nil && penaltyPercent(m[1]) > 20 {
		findings = append(findings, schema.Finding{
			ID:          "heur-penalty",
			Clause:      textutil.Truncate(m[0], excerptLimit),
			Location:    "违约责任",
			RiskType:    schema.RiskLegal,
			Severity:    schema.SeverityHigh,
			Explanation: fmt.Sprintf("违约金约定为%s，可能被法院认定为过高而调减。", m[1]),
			Suggestion:  "建议约定\"不超过实际损失的130%\"或设置具体金额上限。",
			Category:    "法律风险",
			Law:         "《民法典》第585条",
		})
	}

	if !p.Confidentiality {
		findings = append(findings, schema.Finding{
			ID:          "heur-confidentiality",
			Clause:      "合同全文",
			Location:    "整体",
			RiskType:    schema.RiskLegal,
			Severity:    schema.SeverityMedium,
			Explanation: "未检测到保密条款，涉及商业信息保护不足。",
			Suggestion:  "建议增加保密条款，明确保密信息范围、期限和违约责任。",
			Category:    "法律风险",
		})
	}

	if !p.IP && techVocabRe.MatchString(text) {
		findings = append(findings, schema.Finding{
			ID:          "heur-ip",
			Clause:      "合同全文",
			Location:    "整体",
			RiskType:    schema.RiskIP,
			Severity:    schema.SeverityMedium,
			Explanation: "合同涉及技术服务/创作，但未明确知识产权归属。",
			Suggestion:  "建议明确约定知识产权的归属、使用范围及后续改进权益。",
			Category:    "知识产权",
		})
	}

	if !p.Warranty && procurementVocabRe.MatchString(text) {
		findings = append(findings, schema.Finding{
			ID:          "heur-warranty",
			Clause:      "合同全文",
			Location:    "整体",
			RiskType:    schema.RiskCommercial,
			Severity:    schema.SeverityLow,
			Explanation: "未明确质量保证条款和质保期限。",
			Suggestion:  "建议约定质保期（通常12个月）及质保范围内的维修/更换责任。",
			Category:    "商业风险",
		})
	}

	if !p.Liability && serviceVocabRe.MatchString(text) {
		findings = append(findings, schema.Finding{
			ID:          "heur-liability",
			Clause:      "合同全文",
			Location:    "整体",
			RiskType:    schema.RiskLegal,
			Severity:    schema.SeverityMedium,
			Explanation: "未约定责任限制条款，可能导致无限赔偿责任。",
			Suggestion:  "建议约定\"赔偿不超过合同金额\"或设置具体赔偿上限。",
			Category:    "法律风险",
		})
	}

	return findings
}

// penaltyPercent extracts the numeric percentage from a penalty match.
// Chinese-numeral percentages are not parsed: any 百分之N match is treated
// as a flat 30 and therefore always exceeds the 20% threshold, 百分之五
// included.
func penaltyPercent(s string) float64 {
	if strings.Contains(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0
		}
		return v
	}
	return 30
}

// Scan runs the full clause-presence analysis: the shared heuristic findings
// plus termination, force-majeure, and notice checks, and the list of clause
// names absent from the text.
func Scan(text string) Result {
	res := Result{Findings: Heuristics(text)}

	if !terminationClauseRe.MatchString(text) {
		res.Findings = append(res.Findings, schema.Finding{
			ID:          "keyword-termination",
			Clause:      "合同全文",
			Location:    "整体",
			RiskType:    schema.RiskLegal,
			Severity:    schema.SeverityMedium,
			Explanation: "未明确约定合同解除或终止条件",
			Suggestion:  "建议增加合同解除条款，明确双方解除权和解除程序",
			Category:    "法律风险",
		})
		res.MissingClauses = append(res.MissingClauses, "合同解除条款")
	}
	if !forceMajeureRe.MatchString(text) {
		res.Findings = append(res.Findings, schema.Finding{
			ID:          "keyword-force-majeure",
			Clause:      "合同全文",
			Location:    "整体",
			RiskType:    schema.RiskLegal,
			Severity:    schema.SeverityLow,
			Explanation: "缺少不可抗力条款",
			Suggestion:  "建议补充不可抗力条款，明确不可抗力情形及后果",
			Category:    "法律风险",
		})
		res.MissingClauses = append(res.MissingClauses, "不可抗力条款")
	}
	if !noticeClauseRe.MatchString(text) {
		res.Findings = append(res.Findings, schema.Finding{
			ID:          "keyword-notice",
			Clause:      "合同全文",
			Location:    "整体",
			RiskType:    schema.RiskOperational,
			Severity:    schema.SeverityLow,
			Explanation: "未约定通知送达方式",
			Suggestion:  "建议增加通知条款，明确送达地址和方式",
			Category:    "操作风险",
		})
		res.MissingClauses = append(res.MissingClauses, "通知送达条款")
	}

	p := Detect(text)
	if !p.Confidentiality {
		res.MissingClauses = append([]string{"保密条款"}, res.MissingClauses...)
	}
	if !p.Liability {
		res.MissingClauses = append(res.MissingClauses, "责任限制条款")
	}

	return res
}

// MissingClauses is the mock-reviewer variant of the missing-clause list.
// The fallback reviewer uses these labels; Scan uses its own. Both always
// include 保密条款 and 不可抗力条款 for texts lacking that language.
func MissingClauses(text string) []string {
	p := Detect(text)
	var missing []string
	if !p.Confidentiality {
		missing = append(missing, "保密条款")
	}
	if !p.Termination {
		missing = append(missing, "不可抗力条款")
	}
	if !p.Notice {
		missing = append(missing, "通知送达条款")
	}
	if !p.Attachments {
		missing = append(missing, "合同附件清单")
	}
	if !p.Liability {
		missing = append(missing, "责任限制条款")
	}
	return missing
}
