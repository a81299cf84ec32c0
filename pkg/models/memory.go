package models

import "time"

// MemoryUser is what a bot remembers about one person it talks to.
type MemoryUser struct {
	ID                string            `json:"id"`
	BotID             string            `json:"bot_id"`
	ExternalUserID    string            `json:"external_user_id"`
	Username          string            `json:"username"`
	Stage             RelationshipStage `json:"stage"`
	InteractionCount  int               `json:"interaction_count"`
	Summary           string            `json:"summary,omitempty"`
	Facts             []string          `json:"facts,omitempty"`
	LastInteractionAt time.Time         `json:"last_interaction_at"`
}

type MemoryStats struct {
	TotalUsers        int64                       `json:"total_users"`
	TotalInteractions int64                       `json:"total_interactions"`
	ByStage           map[RelationshipStage]int64 `json:"by_stage"`
	ActiveLast7Days   int64                       `json:"active_last_7_days"`
}

type MemoryListParams struct {
	BotID   string
	Stage   RelationshipStage
	Page    int
	PerPage int
}

type MemorySearchResult struct {
	User    MemoryUser `json:"user"`
	Matched []string   `json:"matched"`
}
