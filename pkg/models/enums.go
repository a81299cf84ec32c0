package models

// Platform is the social network an automation runs on.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
)

var Platforms = []Platform{PlatformInstagram}

func (p Platform) Valid() bool {
	for _, v := range Platforms {
		if v == p {
			return true
		}
	}
	return false
}

// TriggerType is the inbound event class that starts automation evaluation.
type TriggerType string

const (
	TriggerNewComment  TriggerType = "new_comment"
	TriggerStoryReply  TriggerType = "story_reply"
	TriggerDMReceived  TriggerType = "dm_received"
	TriggerMention     TriggerType = "mention"
	TriggerNewFollower TriggerType = "new_follower"
)

var TriggerTypes = []TriggerType{
	TriggerNewComment,
	TriggerStoryReply,
	TriggerDMReceived,
	TriggerMention,
	TriggerNewFollower,
}

func (t TriggerType) Valid() bool {
	for _, v := range TriggerTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsDM reports whether the trigger arrives in the inbox instead of on a post.
func (t TriggerType) IsDM() bool {
	return t == TriggerDMReceived || t == TriggerNewFollower
}

// HasScope reports whether the trigger can be narrowed to specific content.
func (t TriggerType) HasScope() bool {
	return t.Valid() && !t.IsDM()
}

// IsComment reports whether replies are posted on the content itself.
func (t TriggerType) IsComment() bool {
	return t == TriggerNewComment || t == TriggerMention
}

// DefaultSource infers the trigger_source for a trigger type.
func (t TriggerType) DefaultSource() TriggerSource {
	switch t {
	case TriggerNewComment:
		return TriggerSourceComment
	case TriggerStoryReply:
		return TriggerSourceStory
	case TriggerDMReceived:
		return TriggerSourceDirectMessage
	case TriggerMention:
		return TriggerSourceMention
	case TriggerNewFollower:
		return TriggerSourceFollower
	}
	return ""
}

// ConditionSource is the text a keyword condition inspects for this trigger.
func (t TriggerType) ConditionSource() ConditionSource {
	switch t {
	case TriggerNewComment:
		return ConditionSourceCommentText
	case TriggerStoryReply:
		return ConditionSourceStoryReplyText
	case TriggerDMReceived:
		return ConditionSourceMessageText
	case TriggerMention:
		return ConditionSourceMentionText
	case TriggerNewFollower:
		return ConditionSourceUsername
	}
	return ""
}

// AllowedActions lists the action types valid for the trigger.
func (t TriggerType) AllowedActions() []ActionType {
	switch {
	case t.IsComment():
		return []ActionType{ActionReplyComment, ActionPrivateReply, ActionLikeComment, ActionHideComment, ActionAddTag}
	case t.Valid():
		return []ActionType{ActionSendDM}
	}
	return nil
}

func (t TriggerType) Allows(a ActionType) bool {
	for _, v := range t.AllowedActions() {
		if v == a {
			return true
		}
	}
	return false
}

type TriggerSource string

const (
	TriggerSourceComment       TriggerSource = "comment"
	TriggerSourceStory         TriggerSource = "story"
	TriggerSourceDirectMessage TriggerSource = "direct_message"
	TriggerSourceMention       TriggerSource = "mention"
	TriggerSourceFollower      TriggerSource = "follower"
)

type TriggerScope string

const (
	ScopeAll      TriggerScope = "all"
	ScopeSpecific TriggerScope = "specific"
)

func (s TriggerScope) Valid() bool {
	return s == ScopeAll || s == ScopeSpecific
}

type ConditionType string

const (
	ConditionKeyword ConditionType = "keyword"
)

type ConditionOperator string

const (
	OperatorContains    ConditionOperator = "contains"
	OperatorEquals      ConditionOperator = "equals"
	OperatorStartsWith  ConditionOperator = "starts_with"
	OperatorEndsWith    ConditionOperator = "ends_with"
	OperatorNotContains ConditionOperator = "not_contains"
	// AND and OR are reserved for non-keyword condition types.
	OperatorAnd ConditionOperator = "AND"
	OperatorOr  ConditionOperator = "OR"
)

var KeywordOperators = []ConditionOperator{
	OperatorContains,
	OperatorEquals,
	OperatorStartsWith,
	OperatorEndsWith,
	OperatorNotContains,
}

func (o ConditionOperator) IsReserved() bool {
	return o == OperatorAnd || o == OperatorOr
}

type KeywordMode string

const (
	KeywordModeAny KeywordMode = "any"
	KeywordModeAll KeywordMode = "all"
)

type ConditionSource string

const (
	ConditionSourceCommentText    ConditionSource = "comment_text"
	ConditionSourceStoryReplyText ConditionSource = "story_reply_text"
	ConditionSourceMessageText    ConditionSource = "message_text"
	ConditionSourceMentionText    ConditionSource = "mention_text"
	ConditionSourceUsername       ConditionSource = "username"
)

type ActionType string

const (
	ActionReplyComment ActionType = "reply_comment"
	ActionPrivateReply ActionType = "private_reply"
	ActionSendDM       ActionType = "send_dm"
	ActionAddTag       ActionType = "add_tag"
	ActionHideComment  ActionType = "hide_comment"
	ActionLikeComment  ActionType = "like_comment"
)

var ActionTypes = []ActionType{
	ActionReplyComment,
	ActionPrivateReply,
	ActionSendDM,
	ActionAddTag,
	ActionHideComment,
	ActionLikeComment,
}

func (a ActionType) Valid() bool {
	for _, v := range ActionTypes {
		if v == a {
			return true
		}
	}
	return false
}

// AutomationStatus is the lifecycle state of an automation.
type AutomationStatus string

const (
	StatusDraft    AutomationStatus = "draft"
	StatusActive   AutomationStatus = "active"
	StatusInactive AutomationStatus = "inactive"
	StatusPaused   AutomationStatus = "paused"
	StatusArchived AutomationStatus = "archived"
	StatusError    AutomationStatus = "error"
)

// Toggled returns the status the dashboard switch moves to. Only
// active, inactive and paused automations can be toggled.
func (s AutomationStatus) Toggled() (AutomationStatus, bool) {
	switch s {
	case StatusActive:
		return StatusInactive, true
	case StatusInactive, StatusPaused:
		return StatusActive, true
	}
	return s, false
}

// ItemStatus is the status of a single condition or action.
type ItemStatus string

const (
	ItemActive   ItemStatus = "active"
	ItemInactive ItemStatus = "inactive"
)

// LLMMode selects who pays for inference.
type LLMMode string

const (
	LLMModePlatform LLMMode = "platform"
	LLMModeBYOM     LLMMode = "byom"
)

func (m LLMMode) Valid() bool {
	return m == LLMModePlatform || m == LLMModeBYOM
}

// VoiceDNAStatus is the state of an asynchronous voice analysis job.
type VoiceDNAStatus string

const (
	VoiceDNAQueued    VoiceDNAStatus = "queued"
	VoiceDNAAnalyzing VoiceDNAStatus = "analyzing"
	VoiceDNAReady     VoiceDNAStatus = "ready"
	VoiceDNAFailed    VoiceDNAStatus = "failed"
)

func (s VoiceDNAStatus) IsTerminal() bool {
	return s == VoiceDNAReady || s == VoiceDNAFailed
}

type RelationshipStage string

const (
	StageNew      RelationshipStage = "new"
	StageCasual   RelationshipStage = "casual"
	StageEngaged  RelationshipStage = "engaged"
	StageLoyal    RelationshipStage = "loyal"
	StageAdvocate RelationshipStage = "advocate"
)

var RelationshipStages = []RelationshipStage{StageNew, StageCasual, StageEngaged, StageLoyal, StageAdvocate}

type FlaggedReplyStatus string

const (
	FlaggedPending  FlaggedReplyStatus = "pending"
	FlaggedApproved FlaggedReplyStatus = "approved"
	FlaggedRejected FlaggedReplyStatus = "rejected"
)

type CreditTransactionType string

const (
	TxUsage      CreditTransactionType = "usage"
	TxRefund     CreditTransactionType = "refund"
	TxTopUp      CreditTransactionType = "topup"
	TxAdjustment CreditTransactionType = "adjustment"
)

type NotificationType string

const (
	NotificationAutomationError NotificationType = "automation_error"
	NotificationCreditsLow      NotificationType = "credits_low"
	NotificationVoiceDNAReady   NotificationType = "voice_dna_ready"
	NotificationFlaggedReply    NotificationType = "flagged_reply"
	NotificationSystem          NotificationType = "system"
)

type KnowledgeSourceKind string

const (
	KnowledgeText KnowledgeSourceKind = "text"
	KnowledgeURL  KnowledgeSourceKind = "url"
	KnowledgeFAQ  KnowledgeSourceKind = "faq"
)
