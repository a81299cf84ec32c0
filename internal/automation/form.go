package automation

import (
	"socialbot-gateway/pkg/models"
)

// FormData is the wizard's working copy of an automation. Any field may be
// unset until the user reaches the step that fills it.
type FormData struct {
	Platform        models.Platform
	SocialAccountID string
	Name            string
	Description     string
	BotID           string
	Trigger         *TriggerForm
	// Condition is nil when the user skipped the condition step.
	Condition *models.Condition
	Actions   []models.Action
}

// TriggerForm is rebuilt from scratch whenever the trigger type changes, so
// fields that only make sense for the previous type never survive.
type TriggerForm struct {
	Type   models.TriggerType
	Source models.TriggerSource
	// Scope is nil for triggers that cannot be narrowed to content.
	Scope *ScopeForm
}

type ScopeForm struct {
	Scope         models.TriggerScope
	ContentIDs    []string
	SelectedMedia []MediaItem
}

// MediaItem is a post or story picked in the content selector.
type MediaItem struct {
	ID           string `json:"id" yaml:"id"`
	MediaType    string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	Caption      string `json:"caption,omitempty" yaml:"caption,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
	Permalink    string `json:"permalink,omitempty" yaml:"permalink,omitempty"`
}

// NewTriggerForm returns the empty variant for a trigger type.
func NewTriggerForm(t models.TriggerType) *TriggerForm {
	tf := &TriggerForm{Type: t}
	if t.HasScope() {
		tf.Scope = &ScopeForm{}
	}
	return tf
}

// FormPatch is a partial update; nil fields are left untouched.
type FormPatch struct {
	Platform        *models.Platform
	SocialAccountID *string
	Name            *string
	Description     *string
	BotID           *string
	TriggerType     *models.TriggerType
	TriggerScope    *models.TriggerScope
	SelectedMedia   *[]MediaItem
	ContentIDs      *[]string
	Condition       *models.Condition
	ClearCondition  bool
	Actions         *[]models.Action
}

func (f FormData) clone() FormData {
	c := f
	if f.Trigger != nil {
		t := *f.Trigger
		if f.Trigger.Scope != nil {
			s := *f.Trigger.Scope
			s.ContentIDs = append([]string(nil), f.Trigger.Scope.ContentIDs...)
			s.SelectedMedia = append([]MediaItem(nil), f.Trigger.Scope.SelectedMedia...)
			t.Scope = &s
		}
		c.Trigger = &t
	}
	if f.Condition != nil {
		cond := cloneCondition(*f.Condition)
		c.Condition = &cond
	}
	c.Actions = cloneActions(f.Actions)
	return c
}

func cloneCondition(c models.Condition) models.Condition {
	c.ConditionValue = append([]string(nil), c.ConditionValue...)
	return c
}

func cloneActions(actions []models.Action) []models.Action {
	if actions == nil {
		return nil
	}
	out := make([]models.Action, len(actions))
	for i, a := range actions {
		out[i] = a
		out[i].Payload = models.ClonePayload(a.Payload)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
