package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Trigger describes the event class an automation listens to.
type Trigger struct {
	TriggerType   TriggerType   `json:"trigger_type"`
	TriggerSource TriggerSource `json:"trigger_source"`
	TriggerScope  TriggerScope  `json:"trigger_scope"`
	ContentIDs    []string      `json:"content_ids,omitempty"`
}

// Condition is a keyword filter gating whether actions execute.
type Condition struct {
	ConditionType     ConditionType     `json:"condition_type"`
	ConditionOperator ConditionOperator `json:"condition_operator"`
	KeywordMode       KeywordMode       `json:"condition_keyword_mode"`
	ConditionSource   ConditionSource   `json:"condition_source"`
	ConditionValue    []string          `json:"condition_value"`
	Status            ItemStatus        `json:"status"`
}

// Action is a single effect performed when an automation fires.
type Action struct {
	ID             string        `json:"id,omitempty"`
	ActionType     ActionType    `json:"action_type"`
	ExecutionOrder int           `json:"execution_order"`
	DelaySeconds   int           `json:"delay_seconds"`
	Status         ItemStatus    `json:"status"`
	Payload        ActionPayload `json:"action_payload"`
}

type actionWire struct {
	ID             string          `json:"id,omitempty"`
	ActionType     ActionType      `json:"action_type"`
	ExecutionOrder int             `json:"execution_order"`
	DelaySeconds   int             `json:"delay_seconds"`
	Status         ItemStatus      `json:"status"`
	Payload        json.RawMessage `json:"action_payload,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	w := actionWire{
		ID:             a.ID,
		ActionType:     a.ActionType,
		ExecutionOrder: a.ExecutionOrder,
		DelaySeconds:   a.DelaySeconds,
		Status:         a.Status,
	}
	payload := a.Payload
	if payload == nil {
		payload = NewPayload(a.ActionType)
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		w.Payload = raw
	}
	return json.Marshal(w)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var w actionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	payload := NewPayload(w.ActionType)
	if payload == nil {
		return fmt.Errorf("unknown action_type %q", w.ActionType)
	}
	if len(w.Payload) > 0 && string(w.Payload) != "null" {
		if err := json.Unmarshal(w.Payload, payload); err != nil {
			return fmt.Errorf("invalid action_payload for %s: %w", w.ActionType, err)
		}
	}
	*a = Action{
		ID:             w.ID,
		ActionType:     w.ActionType,
		ExecutionOrder: w.ExecutionOrder,
		DelaySeconds:   w.DelaySeconds,
		Status:         w.Status,
		Payload:        payload,
	}
	return nil
}

// ActionPayload is the type-specific configuration of an action. The set of
// implementations is closed; every payload is a pointer type.
type ActionPayload interface {
	Type() ActionType
}

type ReplyCommentPayload struct {
	UseAIReply     bool     `json:"use_ai_reply"`
	ReplyTemplates []string `json:"reply_templates,omitempty"`
	AIInstructions string   `json:"ai_instructions,omitempty"`
	BrandVoiceID   string   `json:"brand_voice_id,omitempty"`
}

type PrivateReplyPayload struct {
	UseAIReply     bool   `json:"use_ai_reply"`
	Message        string `json:"message,omitempty"`
	AIInstructions string `json:"ai_instructions,omitempty"`
}

type SendDMPayload struct {
	UseAIReply     bool     `json:"use_ai_reply"`
	DMTemplateIDs  []string `json:"dm_template_ids,omitempty"`
	AIInstructions string   `json:"ai_instructions,omitempty"`
}

type AddTagPayload struct {
	Tags []string `json:"tags,omitempty"`
}

type HideCommentPayload struct{}

type LikeCommentPayload struct{}

func (*ReplyCommentPayload) Type() ActionType { return ActionReplyComment }
func (*PrivateReplyPayload) Type() ActionType { return ActionPrivateReply }
func (*SendDMPayload) Type() ActionType       { return ActionSendDM }
func (*AddTagPayload) Type() ActionType       { return ActionAddTag }
func (*HideCommentPayload) Type() ActionType  { return ActionHideComment }
func (*LikeCommentPayload) Type() ActionType  { return ActionLikeComment }

// NewPayload returns an empty payload for the action type, or nil if the
// type is unknown.
func NewPayload(t ActionType) ActionPayload {
	switch t {
	case ActionReplyComment:
		return &ReplyCommentPayload{}
	case ActionPrivateReply:
		return &PrivateReplyPayload{}
	case ActionSendDM:
		return &SendDMPayload{}
	case ActionAddTag:
		return &AddTagPayload{}
	case ActionHideComment:
		return &HideCommentPayload{}
	case ActionLikeComment:
		return &LikeCommentPayload{}
	}
	return nil
}

// UsesAI reports whether the payload asks for an AI generated reply.
func UsesAI(p ActionPayload) bool {
	switch v := p.(type) {
	case *ReplyCommentPayload:
		return v.UseAIReply
	case *PrivateReplyPayload:
		return v.UseAIReply
	case *SendDMPayload:
		return v.UseAIReply
	case *AddTagPayload, *HideCommentPayload, *LikeCommentPayload, nil:
		return false
	}
	return false
}

// ClonePayload returns a deep copy so builders can mutate without aliasing.
func ClonePayload(p ActionPayload) ActionPayload {
	switch v := p.(type) {
	case *ReplyCommentPayload:
		c := *v
		c.ReplyTemplates = append([]string(nil), v.ReplyTemplates...)
		return &c
	case *PrivateReplyPayload:
		c := *v
		return &c
	case *SendDMPayload:
		c := *v
		c.DMTemplateIDs = append([]string(nil), v.DMTemplateIDs...)
		return &c
	case *AddTagPayload:
		c := *v
		c.Tags = append([]string(nil), v.Tags...)
		return &c
	case *HideCommentPayload:
		return &HideCommentPayload{}
	case *LikeCommentPayload:
		return &LikeCommentPayload{}
	}
	return nil
}

// Automation is the persisted trigger → conditions → actions rule.
type Automation struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Platform         Platform         `json:"platform"`
	SocialAccountID  string           `json:"social_account_id"`
	BotID            string           `json:"bot_id,omitempty"`
	Status           AutomationStatus `json:"status"`
	Trigger          Trigger          `json:"trigger"`
	Conditions       []Condition      `json:"conditions"`
	Actions          []Action         `json:"actions"`
	EstimatedCredits int              `json:"estimated_credits"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CreateAutomationRequest is the strict wire shape sent on POST /automations.
type CreateAutomationRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Platform        Platform         `json:"platform"`
	SocialAccountID string           `json:"social_account_id"`
	BotID           string           `json:"bot_id,omitempty"`
	Status          AutomationStatus `json:"status"`
	Trigger         Trigger          `json:"trigger"`
	Conditions      []Condition      `json:"conditions"`
	Actions         []Action         `json:"actions"`
}

// UpdateAutomationRequest is the PATCH body; nil fields are left unchanged.
type UpdateAutomationRequest struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	BotID       *string           `json:"bot_id,omitempty"`
	Status      *AutomationStatus `json:"status,omitempty"`
	Trigger     *Trigger          `json:"trigger,omitempty"`
	Conditions  *[]Condition      `json:"conditions,omitempty"`
	Actions     *[]Action         `json:"actions,omitempty"`
}

type AutomationListParams struct {
	Status  AutomationStatus
	Search  string
	Page    int
	PerPage int
}

// CreditEstimateRequest asks the backend to price a set of actions.
type CreditEstimateRequest struct {
	BotID   string   `json:"bot_id,omitempty"`
	Actions []Action `json:"actions"`
}

type CreditEstimate struct {
	Total        int     `json:"total"`
	PerAction    []int   `json:"per_action"`
	LLMMode      LLMMode `json:"llm_mode"`
	HasKnowledge bool    `json:"has_knowledge"`
}
