package models

import "time"

type Bot struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	SocialAccountID      string    `json:"social_account_id,omitempty"`
	BrandVoiceID         string    `json:"brand_voice_id,omitempty"`
	Enabled              bool      `json:"enabled"`
	KnowledgeSourceCount int       `json:"knowledge_source_count"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type BotRequest struct {
	Name            string `json:"name"`
	SocialAccountID string `json:"social_account_id,omitempty"`
	BrandVoiceID    string `json:"brand_voice_id,omitempty"`
	Enabled         *bool  `json:"enabled,omitempty"`
}

type BrandVoice struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ToneTags    []string  `json:"tone_tags"`
	SampleCount int       `json:"sample_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type BrandVoiceRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ToneTags    []string `json:"tone_tags,omitempty"`
}

type KnowledgeSource struct {
	ID        string              `json:"id"`
	BotID     string              `json:"bot_id"`
	Kind      KnowledgeSourceKind `json:"kind"`
	Title     string              `json:"title"`
	Content   string              `json:"content,omitempty"`
	URL       string              `json:"url,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type KnowledgeSourceRequest struct {
	BotID   string              `json:"bot_id"`
	Kind    KnowledgeSourceKind `json:"kind"`
	Title   string              `json:"title"`
	Content string              `json:"content,omitempty"`
	URL     string              `json:"url,omitempty"`
}

// LLMConfig is the account-wide inference configuration. The API key is
// write-only and never returned.
type LLMConfig struct {
	Mode      LLMMode   `json:"mode"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	HasAPIKey bool      `json:"has_api_key"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LLMConfigRequest struct {
	Mode     LLMMode `json:"mode"`
	Provider string  `json:"provider,omitempty"`
	Model    string  `json:"model,omitempty"`
	APIKey   string  `json:"api_key,omitempty"`
}

type FlaggedReply struct {
	ID            string             `json:"id"`
	BotID         string             `json:"bot_id"`
	AutomationID  string             `json:"automation_id,omitempty"`
	IncomingText  string             `json:"incoming_text"`
	ProposedReply string             `json:"proposed_reply"`
	Reason        string             `json:"reason"`
	Status        FlaggedReplyStatus `json:"status"`
	ResolvedAt    *time.Time         `json:"resolved_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type ModerateReplyRequest struct {
	Status      FlaggedReplyStatus `json:"status"`
	EditedReply string             `json:"edited_reply,omitempty"`
}

// VoiceFingerprint is the stylistic profile computed from writing samples.
type VoiceFingerprint struct {
	AvgSentenceLength float64            `json:"avg_sentence_length"`
	EmojiRate         float64            `json:"emoji_rate"`
	ExclamationRate   float64            `json:"exclamation_rate"`
	QuestionRate      float64            `json:"question_rate"`
	UppercaseRatio    float64            `json:"uppercase_ratio"`
	Formality         float64            `json:"formality"`
	TopWords          []string           `json:"top_words"`
	Signoffs          []string           `json:"signoffs,omitempty"`
	ToneTags          []string           `json:"tone_tags"`
	Adjustments       map[string]float64 `json:"adjustments,omitempty"`
}

type VoiceDNAProfile struct {
	ID          string            `json:"id"`
	BotID       string            `json:"bot_id"`
	Status      VoiceDNAStatus    `json:"status"`
	SampleCount int               `json:"sample_count"`
	Fingerprint *VoiceFingerprint `json:"fingerprint,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type AutoInferRequest struct {
	BotID   string   `json:"bot_id"`
	Samples []string `json:"samples"`
}

// VoiceDNAReview pairs the fingerprint with sample replies for approval.
type VoiceDNAReview struct {
	Profile        VoiceDNAProfile `json:"profile"`
	ExampleReplies []string        `json:"example_replies"`
	FeedbackCount  int             `json:"feedback_count"`
	AverageRating  float64         `json:"average_rating"`
}

type VoiceDNAFeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type VoiceDNAFeedback struct {
	ID        uint      `json:"id"`
	ProfileID string    `json:"profile_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VoiceDNAAdjustRequest nudges fingerprint traits; values are deltas in [-1, 1].
type VoiceDNAAdjustRequest struct {
	Traits      map[string]float64 `json:"traits"`
	AddTones    []string           `json:"add_tones,omitempty"`
	RemoveTones []string           `json:"remove_tones,omitempty"`
}
