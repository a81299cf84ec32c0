package automation

import (
	"fmt"

	"socialbot-gateway/pkg/models"
)

// Builder backs the canvas/inspector view: a condition block and an action
// list for one trigger, with a live credit estimate.
type Builder struct {
	Trigger    models.TriggerType
	Conditions ConditionBlock
	Actions    ActionList
	Credits    CreditContext
	CreditCost int
}

func NewBuilder(trigger models.TriggerType, credits CreditContext) *Builder {
	return &Builder{
		Trigger:    trigger,
		Conditions: ConditionBlock{Source: trigger.ConditionSource()},
		Credits:    credits,
	}
}

// NewBuilderFromAutomation loads a stored automation into the builder.
func NewBuilderFromAutomation(a models.Automation, credits CreditContext) *Builder {
	b := NewBuilder(a.Trigger.TriggerType, credits)
	for _, c := range a.Conditions {
		b.Conditions.Conditions = append(b.Conditions.Conditions, cloneCondition(c))
	}
	b.Conditions.Enabled = len(b.Conditions.Conditions) > 0
	b.Actions = ActionList(cloneActions(sortedActions(a.Actions)))
	b.Actions.Renumber()
	b.Recalculate()
	return b
}

func (b *Builder) AddAction(t models.ActionType) (models.Action, error) {
	if !b.Trigger.Allows(t) {
		return models.Action{}, fmt.Errorf("%w: %s on %s", ErrActionNotAllowed, t, b.Trigger)
	}
	a := b.Actions.Add(t)
	b.Recalculate()
	return a, nil
}

func (b *Builder) RemoveAction(id string) bool {
	ok := b.Actions.Remove(id)
	b.Recalculate()
	return ok
}

func (b *Builder) MoveUp(id string) bool   { return b.Actions.MoveUp(id) }
func (b *Builder) MoveDown(id string) bool { return b.Actions.MoveDown(id) }

func (b *Builder) SetDelay(id string, seconds int) error {
	return b.Actions.SetDelay(id, seconds, BuilderMaxDelaySeconds)
}

// SetAIReply toggles AI generation and refreshes CreditCost.
func (b *Builder) SetAIReply(id string, on bool) error {
	if err := b.Actions.SetAIReply(id, on); err != nil {
		return err
	}
	b.Recalculate()
	return nil
}

// SetCreditContext swaps pricing inputs, e.g. after the LLM config loads.
func (b *Builder) SetCreditContext(ctx CreditContext) {
	b.Credits = ctx
	b.Recalculate()
}

func (b *Builder) Recalculate() int {
	b.CreditCost = CalculateCredits(b.Actions, b.Credits)
	return b.CreditCost
}

// IsConfigured reports whether every section is ready to save.
func (b *Builder) IsConfigured() bool {
	if !b.Conditions.IsConfigured() || len(b.Actions) == 0 {
		return false
	}
	for _, a := range b.Actions {
		if !IsConfigured(a) {
			return false
		}
	}
	return true
}

// Parts returns the conditions and actions in wire form.
func (b *Builder) Parts() ([]models.Condition, []models.Action) {
	actions := ActionList(cloneActions(b.Actions))
	actions.Renumber()
	return b.Conditions.Active(), actions
}
