package rules

import "github.com/mingshu-dev/clausecheck/internal/schema"

// Catalog returns the built-in detection rules. The returned slice is freshly
// allocated so callers may append custom rules before constructing an Engine
// without affecting other callers.
func Catalog() []schema.Rule {
	return []schema.Rule{
		{
			ID:         "payment-term-30-60-90",
			Name:       "长付款账期检查",
			Pattern:    `付款.*(30|60|90).*(天|日|工作日)`,
			Severity:   schema.SeverityMedium,
			Message:    "付款账期较长，建议评估资金占用风险",
			Suggestion: "建议争取预付款或缩短账期至15天内",
			Category:   "财务风险",
		},
		{
			ID:         "jurisdiction-defendant",
			Name:       "不利管辖条款",
			Pattern:    `管辖.*(被告|甲方|对方).*所在地`,
			Severity:   schema.SeverityHigh,
			Message:    "争议解决条款对我方不利",
			Suggestion: "建议改为\"原告所在地或合同签订地法院管辖\"",
			Category:   "法律风险",
			Law:        "《民事诉讼法》第34条",
		},
		{
			ID:         "high-penalty",
			Name:       "过高违约金",
			Pattern:    `违约金.*(20%|30%|50%|百分之二十|百分之三十|百分之五十).*合同金额`,
			Severity:   schema.SeverityHigh,
			Message:    "违约金比例可能过高，存在被法院调减风险",
			Suggestion: "建议约定\"不超过实际损失的130%\"或具体金额",
			Category:   "法律风险",
			Law:        "《民法典》第585条",
		},
		{
			ID:         "no-termination-clause",
			Name:       "解除权缺失",
			Pattern:    `解除.*(无法|不能|不得)|无.*(单方|任意).*解除`,
			Severity:   schema.SeverityMedium,
			Message:    "合同解除机制不完善",
			Suggestion: "建议明确约定单方解除权的情形和程序",
			Category:   "法律风险",
		},
		{
			ID:         "ip-ownership-unclear",
			Name:       "知识产权归属不明",
			Pattern:    `知识产权.*(共有|共享|未约定)|归属.*不明`,
			Severity:   schema.SeverityMedium,
			Message:    "知识产权归属约定不清晰",
			Suggestion: "建议明确约定知识产权的归属和使用范围",
			Category:   "知识产权",
		},
		{
			ID:         "unlimited-liability",
			Name:       "无限责任条款",
			Pattern:    `(承担|赔偿).*(全部|所有|一切|无限).*损失`,
			Severity:   schema.SeverityHigh,
			Message:    "承担无限赔偿责任风险过高",
			Suggestion: "建议约定\"直接损失\"或设置责任上限",
			Category:   "法律风险",
		},
		{
			ID:         "auto-renewal",
			Name:       "自动续约条款",
			Pattern:    `(自动|默示|期满|到期).*续约|自动.*延期`,
			Severity:   schema.SeverityMedium,
			Message:    "存在自动续约条款，可能导致合同期限失控",
			Suggestion: "建议删除自动续约条款或提前设置提醒机制",
			Category:   "商业风险",
		},
		{
			ID:         "unilateral-amendment",
			Name:       "单方变更权",
			Pattern:    `甲方.*(有权|可以|可).*修改.*(无需|不须).*通知`,
			Severity:   schema.SeverityMedium,
			Message:    "对方保留单方修改合同的权利",
			Suggestion: "建议约定重大条款变更需双方书面确认",
			Category:   "法律风险",
		},
		{
			ID:         "exclusivity-without-limit",
			Name:       "无限制排他条款",
			Pattern:    `排他|独家|独占.*(合作|代理|经销)`,
			Severity:   schema.SeverityLow,
			Message:    "存在排他性条款，可能限制业务拓展",
			Suggestion: "建议明确排他期限和地域范围",
			Category:   "商业风险",
		},
		{
			// The original catalog wrote this as a negative lookahead over the
			// whole text; RE2 has no lookahead, so absence is a rule mode.
			ID:         "no-confidentiality",
			Name:       "保密条款缺失",
			Pattern:    `保密`,
			Absent:     true,
			Severity:   schema.SeverityMedium,
			Message:    "未检测到保密条款",
			Suggestion: "建议增加保密条款，明确保密范围和期限",
			Category:   "法律风险",
		},
		{
			ID:         "no-force-majeure",
			Name:       "不可抗力缺失",
			Pattern:    `不可抗力`,
			Absent:     true,
			Severity:   schema.SeverityLow,
			Message:    "未检测到不可抗力条款",
			Suggestion: "建议补充不可抗力条款",
			Category:   "法律风险",
		},
		{
			ID:         "warranty-period-short",
			Name:       "质保期过短",
			Pattern:    `质保.*(3|三).*(月|个月)|质保期.*(少于|不足).*半年`,
			Severity:   schema.SeverityLow,
			Message:    "质保期限较短",
			Suggestion: "建议争取至少12个月质保期",
			Category:   "商业风险",
		},
		{
			ID:         "arbitration-unclear",
			Name:       "仲裁约定不明",
			Pattern:    `仲裁.*(由|由双方|协商)|仲裁机构.*未指定`,
			Severity:   schema.SeverityMedium,
			Message:    "仲裁条款约定不明确",
			Suggestion: "建议明确约定具体仲裁委员会",
			Category:   "法律风险",
		},
		{
			ID:         "oral-modification",
			Name:       "口头变更有效",
			Pattern:    `(口头|电话|邮件).*变更.*有效|可以.*(口头|非书面).*修改`,
			Severity:   schema.SeverityMedium,
			Message:    "允许非书面形式变更合同",
			Suggestion: "建议约定\"任何变更须书面确认\"",
			Category:   "法律风险",
		},
	}
}
