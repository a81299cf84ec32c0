package models

import (
	"encoding/json"
	"fmt"
	"time"

	dto "socialbot-gateway/pkg/models"
)

// Automation is a stored rule. Trigger, conditions and actions are kept as
// JSON text so the action payload variants need no tables of their own.
type Automation struct {
	ID               string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Platform         string    `gorm:"type:varchar(50);not null" json:"platform"`
	SocialAccountID  string    `gorm:"type:varchar(64);index" json:"social_account_id"`
	BotID            string    `gorm:"type:varchar(64)" json:"bot_id"`
	Status           string    `gorm:"type:varchar(20);index" json:"status"`
	TriggerType      string    `gorm:"type:varchar(50);index" json:"trigger_type"`
	Trigger          string    `gorm:"type:text" json:"trigger"`
	Conditions       string    `gorm:"type:text" json:"conditions"`
	Actions          string    `gorm:"type:text" json:"actions"`
	EstimatedCredits int       `gorm:"default:0" json:"estimated_credits"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Automation) TableName() string {
	return "automations"
}

// NewAutomation encodes a domain automation into its row.
func NewAutomation(a dto.Automation) (Automation, error) {
	trigger, err := json.Marshal(a.Trigger)
	if err != nil {
		return Automation{}, fmt.Errorf("encode trigger: %w", err)
	}
	conds := a.Conditions
	if conds == nil {
		conds = []dto.Condition{}
	}
	conditions, err := json.Marshal(conds)
	if err != nil {
		return Automation{}, fmt.Errorf("encode conditions: %w", err)
	}
	acts := a.Actions
	if acts == nil {
		acts = []dto.Action{}
	}
	actions, err := json.Marshal(acts)
	if err != nil {
		return Automation{}, fmt.Errorf("encode actions: %w", err)
	}
	return Automation{
		ID:               a.ID,
		Name:             a.Name,
		Description:      a.Description,
		Platform:         string(a.Platform),
		SocialAccountID:  a.SocialAccountID,
		BotID:            a.BotID,
		Status:           string(a.Status),
		TriggerType:      string(a.Trigger.TriggerType),
		Trigger:          string(trigger),
		Conditions:       string(conditions),
		Actions:          string(actions),
		EstimatedCredits: a.EstimatedCredits,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}, nil
}

func (r Automation) ToDomain() (dto.Automation, error) {
	a := dto.Automation{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		Platform:         dto.Platform(r.Platform),
		SocialAccountID:  r.SocialAccountID,
		BotID:            r.BotID,
		Status:           dto.AutomationStatus(r.Status),
		Conditions:       []dto.Condition{},
		Actions:          []dto.Action{},
		EstimatedCredits: r.EstimatedCredits,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if err := decodeText(r.Trigger, &a.Trigger); err != nil {
		return a, fmt.Errorf("automation %s trigger: %w", r.ID, err)
	}
	if err := decodeText(r.Conditions, &a.Conditions); err != nil {
		return a, fmt.Errorf("automation %s conditions: %w", r.ID, err)
	}
	if err := decodeText(r.Actions, &a.Actions); err != nil {
		return a, fmt.Errorf("automation %s actions: %w", r.ID, err)
	}
	return a, nil
}

// SocialAccount is a connected Instagram (or future platform) account.
type SocialAccount struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Platform      string    `gorm:"type:varchar(50);not null" json:"platform"`
	Username      string    `gorm:"type:varchar(255)" json:"username"`
	ExternalID    string    `gorm:"type:varchar(255);uniqueIndex" json:"external_id"`
	ProfilePicURL string    `gorm:"type:text" json:"profile_pic_url"`
	Connected     bool      `gorm:"default:true" json:"connected"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SocialAccount) TableName() string {
	return "social_accounts"
}

func (r SocialAccount) ToDomain() dto.SocialAccount {
	return dto.SocialAccount{
		ID:            r.ID,
		Platform:      dto.Platform(r.Platform),
		Username:      r.Username,
		ExternalID:    r.ExternalID,
		ProfilePicURL: r.ProfilePicURL,
		Connected:     r.Connected,
		CreatedAt:     r.CreatedAt,
	}
}

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(50)" json:"type"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Link      string    `gorm:"type:text" json:"link"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (r Notification) ToDomain() dto.Notification {
	return dto.Notification{
		ID:        r.ID,
		Type:      dto.NotificationType(r.Type),
		Title:     r.Title,
		Body:      r.Body,
		Link:      r.Link,
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
	}
}

// CreditAccount holds the single balance row of the workspace.
type CreditAccount struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Balance       int       `gorm:"not null;default:0" json:"balance"`
	LifetimeAdded int       `gorm:"not null;default:0" json:"lifetime_added"`
	LifetimeSpent int       `gorm:"not null;default:0" json:"lifetime_spent"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CreditAccount) TableName() string {
	return "credit_accounts"
}

func (r CreditAccount) ToDomain() dto.CreditBalance {
	return dto.CreditBalance{
		Balance:       r.Balance,
		LifetimeAdded: r.LifetimeAdded,
		LifetimeSpent: r.LifetimeSpent,
		UpdatedAt:     r.UpdatedAt,
	}
}

type CreditTransaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Type         string    `gorm:"type:varchar(20);index" json:"type"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	AutomationID string    `gorm:"type:varchar(64);index" json:"automation_id"`
	ActionType   string    `gorm:"type:varchar(50)" json:"action_type"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

func (r CreditTransaction) ToDomain() dto.CreditTransaction {
	return dto.CreditTransaction{
		ID:           r.ID,
		Type:         dto.CreditTransactionType(r.Type),
		Amount:       r.Amount,
		BalanceAfter: r.BalanceAfter,
		AutomationID: r.AutomationID,
		ActionType:   dto.ActionType(r.ActionType),
		Description:  r.Description,
		CreatedAt:    r.CreatedAt,
	}
}

type Bot struct {
	ID              string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	SocialAccountID string    `gorm:"type:varchar(64);index" json:"social_account_id"`
	BrandVoiceID    string    `gorm:"type:varchar(64)" json:"brand_voice_id"`
	Enabled         bool      `gorm:"default:true" json:"enabled"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Bot) TableName() string {
	return "bots"
}

func (r Bot) ToDomain(knowledgeSources int) dto.Bot {
	return dto.Bot{
		ID:                   r.ID,
		Name:                 r.Name,
		SocialAccountID:      r.SocialAccountID,
		BrandVoiceID:         r.BrandVoiceID,
		Enabled:              r.Enabled,
		KnowledgeSourceCount: knowledgeSources,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

type BrandVoice struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ToneTags    string    `gorm:"type:text" json:"tone_tags"` // JSON array
	SampleCount int       `json:"sample_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BrandVoice) TableName() string {
	return "brand_voices"
}

func (r BrandVoice) ToDomain() dto.BrandVoice {
	v := dto.BrandVoice{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ToneTags:    []string{},
		SampleCount: r.SampleCount,
		CreatedAt:   r.CreatedAt,
	}
	_ = decodeText(r.ToneTags, &v.ToneTags)
	return v
}

type KnowledgeSource struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BotID     string    `gorm:"type:varchar(64);index;not null" json:"bot_id"`
	Kind      string    `gorm:"type:varchar(20)" json:"kind"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	URL       string    `gorm:"type:text" json:"url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (KnowledgeSource) TableName() string {
	return "knowledge_sources"
}

func (r KnowledgeSource) ToDomain() dto.KnowledgeSource {
	return dto.KnowledgeSource{
		ID:        r.ID,
		BotID:     r.BotID,
		Kind:      dto.KnowledgeSourceKind(r.Kind),
		Title:     r.Title,
		Content:   r.Content,
		URL:       r.URL,
		CreatedAt: r.CreatedAt,
	}
}

// LLMConfig is a single row; APIKey never leaves the server.
type LLMConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Mode      string    `gorm:"type:varchar(20);default:'platform'" json:"mode"`
	Provider  string    `gorm:"type:varchar(50)" json:"provider"`
	Model     string    `gorm:"type:varchar(100)" json:"model"`
	APIKey    string    `gorm:"type:text" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LLMConfig) TableName() string {
	return "llm_configs"
}

func (r LLMConfig) ToDomain() dto.LLMConfig {
	mode := dto.LLMMode(r.Mode)
	if !mode.Valid() {
		mode = dto.LLMModePlatform
	}
	return dto.LLMConfig{
		Mode:      mode,
		Provider:  r.Provider,
		Model:     r.Model,
		HasAPIKey: r.APIKey != "",
		UpdatedAt: r.UpdatedAt,
	}
}

type FlaggedReply struct {
	ID            string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BotID         string     `gorm:"type:varchar(64);index" json:"bot_id"`
	AutomationID  string     `gorm:"type:varchar(64)" json:"automation_id"`
	IncomingText  string     `gorm:"type:text" json:"incoming_text"`
	ProposedReply string     `gorm:"type:text" json:"proposed_reply"`
	Reason        string     `gorm:"type:text" json:"reason"`
	Status        string     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ResolvedAt    *time.Time `json:"resolved_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (FlaggedReply) TableName() string {
	return "flagged_replies"
}

func (r FlaggedReply) ToDomain() dto.FlaggedReply {
	return dto.FlaggedReply{
		ID:            r.ID,
		BotID:         r.BotID,
		AutomationID:  r.AutomationID,
		IncomingText:  r.IncomingText,
		ProposedReply: r.ProposedReply,
		Reason:        r.Reason,
		Status:        dto.FlaggedReplyStatus(r.Status),
		ResolvedAt:    r.ResolvedAt,
		CreatedAt:     r.CreatedAt,
	}
}

// VoiceDNAProfile stores the samples alongside the computed fingerprint so an
// analysis can be re-run.
type VoiceDNAProfile struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BotID       string    `gorm:"type:varchar(64);index" json:"bot_id"`
	Status      string    `gorm:"type:varchar(20);index" json:"status"`
	Samples     string    `gorm:"type:text" json:"samples"`     // JSON array
	Fingerprint string    `gorm:"type:text" json:"fingerprint"` // JSON object
	Error       string    `gorm:"type:text" json:"error"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VoiceDNAProfile) TableName() string {
	return "voice_dna_profiles"
}

func (r VoiceDNAProfile) SampleList() []string {
	var samples []string
	_ = decodeText(r.Samples, &samples)
	return samples
}

func (r VoiceDNAProfile) ToDomain() dto.VoiceDNAProfile {
	p := dto.VoiceDNAProfile{
		ID:          r.ID,
		BotID:       r.BotID,
		Status:      dto.VoiceDNAStatus(r.Status),
		SampleCount: len(r.SampleList()),
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Fingerprint != "" {
		var fp dto.VoiceFingerprint
		if err := decodeText(r.Fingerprint, &fp); err == nil {
			p.Fingerprint = &fp
		}
	}
	return p
}

type VoiceDNAFeedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID string    `gorm:"type:varchar(64);index" json:"profile_id"`
	Rating    int       `json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (VoiceDNAFeedback) TableName() string {
	return "voice_dna_feedback"
}

func (r VoiceDNAFeedback) ToDomain() dto.VoiceDNAFeedback {
	return dto.VoiceDNAFeedback{
		ID:        r.ID,
		ProfileID: r.ProfileID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// MemoryUser is a bot's memory of one external user.
type MemoryUser struct {
	ID                string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BotID             string    `gorm:"type:varchar(64);index" json:"bot_id"`
	ExternalUserID    string    `gorm:"type:varchar(255);index" json:"external_user_id"`
	Username          string    `gorm:"type:varchar(255);index" json:"username"`
	Stage             string    `gorm:"type:varchar(20);index" json:"stage"`
	InteractionCount  int       `json:"interaction_count"`
	Summary           string    `gorm:"type:text" json:"summary"`
	Facts             string    `gorm:"type:text" json:"facts"` // JSON array
	LastInteractionAt time.Time `gorm:"index" json:"last_interaction_at"`
}

func (MemoryUser) TableName() string {
	return "memory_users"
}

func (r MemoryUser) ToDomain() dto.MemoryUser {
	u := dto.MemoryUser{
		ID:                r.ID,
		BotID:             r.BotID,
		ExternalUserID:    r.ExternalUserID,
		Username:          r.Username,
		Stage:             dto.RelationshipStage(r.Stage),
		InteractionCount:  r.InteractionCount,
		Summary:           r.Summary,
		LastInteractionAt: r.LastInteractionAt,
	}
	_ = decodeText(r.Facts, &u.Facts)
	return u
}

// SystemSetting is a key/value override for configuration values.
type SystemSetting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

// All lists every table for migrations and data copies.
func All() []interface{} {
	return []interface{}{
		&Automation{},
		&SocialAccount{},
		&Notification{},
		&CreditAccount{},
		&CreditTransaction{},
		&Bot{},
		&BrandVoice{},
		&KnowledgeSource{},
		&LLMConfig{},
		&FlaggedReply{},
		&VoiceDNAProfile{},
		&VoiceDNAFeedback{},
		&MemoryUser{},
		&SystemSetting{},
	}
}

// EncodeText marshals v for a JSON text column.
func EncodeText(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeText(s string, v interface{}) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
