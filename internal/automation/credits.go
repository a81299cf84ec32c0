package automation

import (
	"socialbot-gateway/pkg/models"
)

// CreditContext is what the cost of an AI action depends on besides the
// action itself.
type CreditContext struct {
	Pricing      models.Pricing
	Mode         models.LLMMode
	HasKnowledge bool
}

// ActionCost returns the advisory credit cost of a single action. Manual
// actions are free; AI replies cost the infra fee, plus the inference tier
// unless the user brings their own model.
func ActionCost(a models.Action, ctx CreditContext) int {
	if !models.UsesAI(a.Payload) {
		return 0
	}
	if ctx.Mode == models.LLMModeBYOM {
		return ctx.Pricing.BYOMInfra
	}
	if ctx.HasKnowledge {
		return ctx.Pricing.BYOMInfra + ctx.Pricing.AIKnowledge
	}
	return ctx.Pricing.BYOMInfra + ctx.Pricing.AIStandard
}

// CalculateCredits sums ActionCost over the list.
func CalculateCredits(actions []models.Action, ctx CreditContext) int {
	total := 0
	for _, a := range actions {
		total += ActionCost(a, ctx)
	}
	return total
}

// Estimate prices each action and the total.
func Estimate(actions []models.Action, ctx CreditContext) models.CreditEstimate {
	est := models.CreditEstimate{
		PerAction:    make([]int, len(actions)),
		LLMMode:      ctx.Mode,
		HasKnowledge: ctx.HasKnowledge,
	}
	for i, a := range actions {
		c := ActionCost(a, ctx)
		est.PerAction[i] = c
		est.Total += c
	}
	return est
}
