package automation

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"socialbot-gateway/pkg/models"
)

// Draft is the YAML form of an automation, replayed through the wizard so a
// file can only produce what the wizard itself would accept.
type Draft struct {
	Name            string          `yaml:"name"`
	Description     string          `yaml:"description"`
	Platform        models.Platform `yaml:"platform"`
	SocialAccountID string          `yaml:"social_account_id"`
	BotID           string          `yaml:"bot_id"`
	Trigger         DraftTrigger    `yaml:"trigger"`
	Condition       *DraftCondition `yaml:"condition"`
	Actions         []DraftAction   `yaml:"actions"`
}

type DraftTrigger struct {
	Type       models.TriggerType  `yaml:"type"`
	Scope      models.TriggerScope `yaml:"scope"`
	ContentIDs []string            `yaml:"content_ids"`
	Media      []MediaItem         `yaml:"media"`
}

type DraftCondition struct {
	Operator models.ConditionOperator `yaml:"operator"`
	Mode     models.KeywordMode       `yaml:"mode"`
	Keywords []string                 `yaml:"keywords"`
}

type DraftAction struct {
	Type           models.ActionType `yaml:"type"`
	DelaySeconds   int               `yaml:"delay_seconds"`
	UseAIReply     bool              `yaml:"use_ai_reply"`
	AIInstructions string            `yaml:"ai_instructions"`
	ReplyTemplates []string          `yaml:"reply_templates"`
	Message        string            `yaml:"message"`
	DMTemplateIDs  []string          `yaml:"dm_template_ids"`
	Tags           []string          `yaml:"tags"`
	BrandVoiceID   string            `yaml:"brand_voice_id"`
}

// ParseDraft decodes a YAML draft.
func ParseDraft(r io.Reader) (Draft, error) {
	var d Draft
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

// LoadDraft parses a draft and replays it through a new wizard, returning
// the wizard on the review step.
func LoadDraft(r io.Reader) (*Wizard, error) {
	d, err := ParseDraft(r)
	if err != nil {
		return nil, err
	}
	return d.Replay()
}

func (d Draft) Replay() (*Wizard, error) {
	w := NewWizard()

	w.UpdateFormData(FormPatch{Platform: ptr(d.Platform)})
	if err := w.NextStep(); err != nil {
		return w, err
	}

	w.UpdateFormData(FormPatch{
		SocialAccountID: ptr(d.SocialAccountID),
		Name:            ptr(d.Name),
		Description:     ptr(d.Description),
		BotID:           ptr(d.BotID),
	})
	if err := w.NextStep(); err != nil {
		return w, err
	}

	patch := FormPatch{TriggerType: ptr(d.Trigger.Type)}
	if d.Trigger.Scope != "" {
		patch.TriggerScope = ptr(d.Trigger.Scope)
	}
	w.UpdateFormData(patch)
	switch {
	case len(d.Trigger.Media) > 0:
		w.UpdateFormData(FormPatch{SelectedMedia: &d.Trigger.Media})
	case len(d.Trigger.ContentIDs) > 0:
		w.UpdateFormData(FormPatch{ContentIDs: &d.Trigger.ContentIDs})
	}
	if err := w.NextStep(); err != nil {
		return w, err
	}

	if d.Condition == nil {
		if err := w.SkipCondition(); err != nil {
			return w, err
		}
	} else {
		c := NewKeywordCondition("")
		if d.Condition.Operator != "" {
			c.ConditionOperator = d.Condition.Operator
		}
		if d.Condition.Mode != "" {
			c.KeywordMode = d.Condition.Mode
		}
		for _, kw := range d.Condition.Keywords {
			AddKeyword(&c, kw)
		}
		w.UpdateFormData(FormPatch{Condition: &c})
		if err := w.NextStep(); err != nil {
			return w, err
		}
	}

	for i, da := range d.Actions {
		a, err := w.AddAction(da.Type)
		if err != nil {
			return w, fmt.Errorf("action %d: %w", i+1, err)
		}
		if err := w.UpdateAction(a.ID, da.payload()); err != nil {
			return w, fmt.Errorf("action %d: %w", i+1, err)
		}
		if err := w.SetActionDelay(a.ID, da.DelaySeconds); err != nil {
			return w, fmt.Errorf("action %d: %w", i+1, err)
		}
	}
	if err := w.NextStep(); err != nil {
		return w, err
	}
	return w, nil
}

func (da DraftAction) payload() models.ActionPayload {
	switch da.Type {
	case models.ActionReplyComment:
		return &models.ReplyCommentPayload{
			UseAIReply:     da.UseAIReply,
			ReplyTemplates: da.ReplyTemplates,
			AIInstructions: da.AIInstructions,
			BrandVoiceID:   da.BrandVoiceID,
		}
	case models.ActionPrivateReply:
		return &models.PrivateReplyPayload{
			UseAIReply:     da.UseAIReply,
			Message:        da.Message,
			AIInstructions: da.AIInstructions,
		}
	case models.ActionSendDM:
		return &models.SendDMPayload{
			UseAIReply:     da.UseAIReply,
			DMTemplateIDs:  da.DMTemplateIDs,
			AIInstructions: da.AIInstructions,
		}
	case models.ActionAddTag:
		return &models.AddTagPayload{Tags: da.Tags}
	}
	return models.NewPayload(da.Type)
}
