package automation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/models"
)

// Step is a wizard page, numbered from 1.
type Step int

const (
	StepPlatform Step = iota + 1
	StepAccount
	StepTrigger
	StepCondition
	StepActions
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepPlatform:
		return "platform"
	case StepAccount:
		return "account"
	case StepTrigger:
		return "trigger"
	case StepCondition:
		return "condition"
	case StepActions:
		return "actions"
	case StepReview:
		return "review"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// WizardMaxDelaySeconds caps action delays chosen in the wizard's action step.
const WizardMaxDelaySeconds = 30

var (
	ErrStepIncomplete = errors.New("current step is incomplete")
	ErrLastStep       = errors.New("already on the last step")
	ErrNotOnStep      = errors.New("action not available on this step")
	ErrNoTrigger      = errors.New("no trigger selected")
)

// Wizard walks a user through platform → account → trigger → condition →
// actions → review, holding a single FormData.
type Wizard struct {
	step Step
	form FormData
}

func NewWizard() *Wizard {
	return &Wizard{step: StepPlatform}
}

// NewEditWizard opens an existing automation on the review step.
func NewEditWizard(a models.Automation) *Wizard {
	return &Wizard{step: StepReview, form: APIToFormData(a)}
}

func (w *Wizard) CurrentStep() Step {
	return w.step
}

// FormData returns a copy of the current form.
func (w *Wizard) FormData() FormData {
	return w.form.clone()
}

// UpdateFormData merges the patch into the form and applies cascading resets:
// a platform change starts over with only the new platform, and a trigger type
// change discards scope, content and actions that belonged to the old type.
func (w *Wizard) UpdateFormData(p FormPatch) {
	if p.Platform != nil && *p.Platform != w.form.Platform {
		w.form = FormData{Platform: *p.Platform}
	}
	if p.SocialAccountID != nil {
		w.form.SocialAccountID = *p.SocialAccountID
	}
	if p.Name != nil {
		w.form.Name = *p.Name
	}
	if p.Description != nil {
		w.form.Description = *p.Description
	}
	if p.BotID != nil {
		w.form.BotID = *p.BotID
	}

	if p.TriggerType != nil && (w.form.Trigger == nil || w.form.Trigger.Type != *p.TriggerType) {
		w.form.Trigger = NewTriggerForm(*p.TriggerType)
		w.form.Actions = nil
		if w.form.Condition != nil {
			w.form.Condition.ConditionSource = p.TriggerType.ConditionSource()
		}
	}

	if scope := w.scope(); scope != nil {
		if p.TriggerScope != nil {
			scope.Scope = *p.TriggerScope
			if scope.Scope != models.ScopeSpecific {
				scope.ContentIDs = nil
				scope.SelectedMedia = nil
			}
		}
		if p.SelectedMedia != nil {
			scope.SelectedMedia = append([]MediaItem(nil), (*p.SelectedMedia)...)
			scope.ContentIDs = mediaIDs(scope.SelectedMedia)
		}
		if p.ContentIDs != nil {
			scope.ContentIDs = dedupe(*p.ContentIDs)
		}
	}

	switch {
	case p.ClearCondition:
		w.form.Condition = nil
	case p.Condition != nil:
		c := cloneCondition(*p.Condition)
		if c.ConditionSource == "" && w.form.Trigger != nil {
			c.ConditionSource = w.form.Trigger.Type.ConditionSource()
		}
		w.form.Condition = &c
	}

	if p.Actions != nil {
		actions := ActionList(cloneActions(*p.Actions))
		actions.Renumber()
		w.form.Actions = actions
	}
}

func (w *Wizard) scope() *ScopeForm {
	if w.form.Trigger == nil {
		return nil
	}
	return w.form.Trigger.Scope
}

// CanContinue reports whether the current step holds enough input to advance.
func (w *Wizard) CanContinue() bool {
	f := w.form
	switch w.step {
	case StepPlatform:
		return f.Platform.Valid()
	case StepAccount:
		return strings.TrimSpace(f.SocialAccountID) != ""
	case StepTrigger:
		return triggerComplete(f.Trigger)
	case StepCondition:
		return f.Condition == nil || hasKeywords(*f.Condition)
	case StepActions:
		return actionsComplete(f.Trigger, f.Actions)
	case StepReview:
		return f.Platform != "" && f.SocialAccountID != "" && f.Trigger != nil
	}
	return false
}

func triggerComplete(t *TriggerForm) bool {
	if t == nil || !t.Type.Valid() {
		return false
	}
	if t.Scope == nil {
		return true
	}
	switch t.Scope.Scope {
	case models.ScopeAll:
		return true
	case models.ScopeSpecific:
		return len(t.Scope.ContentIDs) > 0
	}
	return false
}

func actionsComplete(t *TriggerForm, actions []models.Action) bool {
	if t == nil || len(actions) == 0 {
		return false
	}
	for _, a := range actions {
		if !t.Type.Allows(a.ActionType) || !IsConfigured(a) {
			return false
		}
	}
	return true
}

func (w *Wizard) NextStep() error {
	if w.step >= StepReview {
		return ErrLastStep
	}
	if !w.CanContinue() {
		return fmt.Errorf("%w: %s", ErrStepIncomplete, w.step)
	}
	w.step++
	return nil
}

func (w *Wizard) PrevStep() {
	if w.step > StepPlatform {
		w.step--
	}
}

// SkipCondition drops the condition and moves on to the actions step.
func (w *Wizard) SkipCondition() error {
	if w.step != StepCondition {
		return ErrNotOnStep
	}
	w.form.Condition = nil
	w.step = StepActions
	return nil
}

// AddAction appends an action allowed by the selected trigger.
func (w *Wizard) AddAction(t models.ActionType) (models.Action, error) {
	if w.form.Trigger == nil {
		return models.Action{}, ErrNoTrigger
	}
	if !w.form.Trigger.Type.Allows(t) {
		return models.Action{}, fmt.Errorf("%w: %s on %s", ErrActionNotAllowed, t, w.form.Trigger.Type)
	}
	list := ActionList(w.form.Actions)
	a := list.Add(t)
	w.form.Actions = list
	return a, nil
}

func (w *Wizard) RemoveAction(id string) bool {
	list := ActionList(w.form.Actions)
	ok := list.Remove(id)
	w.form.Actions = list
	return ok
}

// UpdateAction replaces the payload of an action, keeping its position.
func (w *Wizard) UpdateAction(id string, payload models.ActionPayload) error {
	list := ActionList(w.form.Actions)
	i := list.Index(id)
	if i < 0 {
		return ErrActionNotFound
	}
	if payload == nil || payload.Type() != list[i].ActionType {
		return fmt.Errorf("payload does not match action type %s", list[i].ActionType)
	}
	list[i].Payload = payload
	return nil
}

// SetActionDelay sets an action delay within the wizard's cap.
func (w *Wizard) SetActionDelay(id string, seconds int) error {
	return ActionList(w.form.Actions).SetDelay(id, seconds, WizardMaxDelaySeconds)
}

// HandleComplete builds the request for the final "Save as Draft" or
// "Create & Activate" choice. It returns false without a request when the
// platform, account or trigger type is missing.
func (w *Wizard) HandleComplete(isDraft bool) (models.CreateAutomationRequest, bool) {
	f := w.form
	if f.Platform == "" || f.SocialAccountID == "" || f.Trigger == nil || f.Trigger.Type == "" {
		logrus.Debugf("wizard: completion ignored, form incomplete at step %s", w.step)
		return models.CreateAutomationRequest{}, false
	}
	status := models.StatusActive
	if isDraft {
		status = models.StatusDraft
	}
	return f.ToRequest(status), true
}
