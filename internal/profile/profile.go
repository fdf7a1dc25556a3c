// Package profile defines contract-type review profiles that modulate LLM
// prompt construction. Each profile provides a SystemPromptAddendum that is
// appended to the system prompt sent to the provider.
package profile

import "fmt"

// Profile describes a contract-type review strategy.
type Profile struct {
	Name                 string
	Description          string
	SystemPromptAddendum string
}

// builtins is the registry of built-in profiles keyed by name.
var builtins = map[string]Profile{
	"general": {
		Name:                 "general",
		Description:          "Default profile; reviews all clause categories with equal weight.",
		SystemPromptAddendum: "对合同的各类条款进行均衡审查，重点关注权利义务对等性和退出机制完整性。",
	},
	"sales": {
		Name:                 "sales",
		Description:          "Sales contracts; emphasizes payment terms, delivery, and acceptance.",
		SystemPromptAddendum: "本合同为销售合同。重点审查付款账期、交付与验收标准、所有权转移时点以及违约金比例是否合理。",
	},
	"procurement": {
		Name:                 "procurement",
		Description:          "Procurement contracts; emphasizes warranty and supplier obligations.",
		SystemPromptAddendum: "本合同为采购合同。重点审查质保期限与范围、供应商交付义务、验收程序以及瑕疵担保责任的约定。",
	},
	"service": {
		Name:                 "service",
		Description:          "Service contracts; emphasizes liability caps and IP ownership.",
		SystemPromptAddendum: "本合同为服务合同。重点审查责任限制条款、服务成果的知识产权归属以及委托事项的变更程序。",
	},
	"nda": {
		Name:                 "nda",
		Description:          "Non-disclosure agreements; emphasizes scope, term, and remedies.",
		SystemPromptAddendum: "本合同为保密协议。重点审查保密信息的定义范围、保密期限、竞业限制补偿以及违反保密义务的救济措施。",
	},
}

// Load returns the named built-in profile or an error if the name is unknown.
func Load(name string) (Profile, error) {
	p, ok := builtins[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile: unknown profile %q (available: general, sales, procurement, service, nda)", name)
	}
	return p, nil
}
