package automation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"socialbot-gateway/pkg/models"
)

// ValidateCreateRequest checks a normalized create request. Drafts may be
// saved without actions; anything else needs at least one.
func ValidateCreateRequest(ctx context.Context, req models.CreateAutomationRequest) error {
	t := req.Trigger.TriggerType
	return validation.ValidateStructWithContext(ctx, &req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Platform, validation.Required, validation.In(platformValues()...)),
		validation.Field(&req.SocialAccountID, validation.Required),
		validation.Field(&req.Status, validation.Required, validation.In(models.StatusDraft, models.StatusActive)),
		validation.Field(&req.Trigger, validation.By(validateTrigger)),
		validation.Field(&req.Conditions, validation.By(conditionsRule())),
		validation.Field(&req.Actions,
			validation.When(req.Status != models.StatusDraft, validation.Required.Error("at least one action is required")),
			validation.By(actionsRule(t)),
		),
	)
}

// ValidateAutomation checks a fully merged automation, as produced by PATCH.
func ValidateAutomation(ctx context.Context, a models.Automation) error {
	req := models.CreateAutomationRequest{
		Name:            a.Name,
		Platform:        a.Platform,
		SocialAccountID: a.SocialAccountID,
		Status:          models.StatusActive,
		Trigger:         a.Trigger,
		Conditions:      a.Conditions,
		Actions:         a.Actions,
	}
	if a.Status == models.StatusDraft {
		req.Status = models.StatusDraft
	}
	if err := ValidateCreateRequest(ctx, req); err != nil {
		return err
	}
	return validation.Validate(a.Status, validation.Required, validation.In(
		models.StatusDraft, models.StatusActive, models.StatusInactive, models.StatusPaused,
		models.StatusArchived, models.StatusError,
	))
}

func platformValues() []interface{} {
	out := make([]interface{}, len(models.Platforms))
	for i, p := range models.Platforms {
		out[i] = p
	}
	return out
}

func validateTrigger(value interface{}) error {
	tr, ok := value.(models.Trigger)
	if !ok {
		return errors.New("must be a trigger")
	}
	errs := validation.Errors{}
	if !tr.TriggerType.Valid() {
		errs["trigger_type"] = fmt.Errorf("unknown trigger type %q", tr.TriggerType)
		return errs
	}
	if tr.TriggerSource != "" && tr.TriggerSource != tr.TriggerType.DefaultSource() {
		errs["trigger_source"] = fmt.Errorf("must be %q for %s", tr.TriggerType.DefaultSource(), tr.TriggerType)
	}
	switch {
	case !tr.TriggerScope.Valid():
		errs["trigger_scope"] = errors.New("must be all or specific")
	case tr.TriggerScope == models.ScopeSpecific && !tr.TriggerType.HasScope():
		errs["trigger_scope"] = fmt.Errorf("%s cannot target specific content", tr.TriggerType)
	case tr.TriggerScope == models.ScopeSpecific && len(tr.ContentIDs) == 0:
		errs["content_ids"] = errors.New("at least one post is required for a specific scope")
	}
	for _, id := range tr.ContentIDs {
		if strings.TrimSpace(id) == "" {
			errs["content_ids"] = errors.New("must not contain blank ids")
			break
		}
	}
	return errs.Filter()
}

func conditionsRule() validation.RuleFunc {
	return func(value interface{}) error {
		conds, _ := value.([]models.Condition)
		errs := validation.Errors{}
		for i, c := range conds {
			if err := validateCondition(c); err != nil {
				errs[strconv.Itoa(i)] = err
			}
		}
		return errs.Filter()
	}
}

func validateCondition(c models.Condition) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ConditionType, validation.Required, validation.In(models.ConditionKeyword)),
		validation.Field(&c.ConditionOperator, validation.Required, validation.By(func(v interface{}) error {
			op, _ := v.(models.ConditionOperator)
			if op.IsReserved() {
				return fmt.Errorf("operator %s is not supported for keyword conditions", op)
			}
			for _, k := range models.KeywordOperators {
				if k == op {
					return nil
				}
			}
			return fmt.Errorf("unknown operator %q", op)
		})),
		validation.Field(&c.KeywordMode, validation.In(models.KeywordModeAny, models.KeywordModeAll)),
		validation.Field(&c.ConditionValue, validation.By(func(v interface{}) error {
			if !hasKeywords(c) {
				return errors.New("at least one keyword is required")
			}
			return nil
		})),
		validation.Field(&c.Status, validation.In(models.ItemActive, models.ItemInactive)),
	)
}

func actionsRule(t models.TriggerType) validation.RuleFunc {
	return func(value interface{}) error {
		actions, _ := value.([]models.Action)
		errs := validation.Errors{}
		for i, a := range actions {
			if err := validateAction(a, i, t); err != nil {
				errs[strconv.Itoa(i)] = err
			}
		}
		return errs.Filter()
	}
}

func validateAction(a models.Action, index int, t models.TriggerType) error {
	errs := validation.Errors{}
	switch {
	case !a.ActionType.Valid():
		errs["action_type"] = fmt.Errorf("unknown action type %q", a.ActionType)
	case t.Valid() && !t.Allows(a.ActionType):
		errs["action_type"] = fmt.Errorf("%s is not allowed for %s triggers", a.ActionType, t)
	}
	if a.Payload == nil || a.Payload.Type() != a.ActionType {
		errs["action_payload"] = errors.New("does not match action type")
	}
	if a.ExecutionOrder != index+1 {
		errs["execution_order"] = fmt.Errorf("must be %d", index+1)
	}
	if a.DelaySeconds < 0 || a.DelaySeconds > MaxDelaySeconds {
		errs["delay_seconds"] = fmt.Errorf("must be between 0 and %d", MaxDelaySeconds)
	}
	if a.Status != models.ItemActive && a.Status != models.ItemInactive {
		errs["status"] = errors.New("must be active or inactive")
	}
	return errs.Filter()
}
