package models

import "time"

// Pricing holds the per-action credit tiers published by the backend.
type Pricing struct {
	AIStandard    int `json:"ai_standard"`
	AIKnowledge   int `json:"ai_knowledge"`
	AIFullContext int `json:"ai_full_context"`
	BYOMInfra     int `json:"byom_infra"`
}

type CreditBalance struct {
	Balance       int       `json:"balance"`
	LifetimeAdded int       `json:"lifetime_added"`
	LifetimeSpent int       `json:"lifetime_spent"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreditTransaction struct {
	ID           uint                  `json:"id"`
	Type         CreditTransactionType `json:"type"`
	Amount       int                   `json:"amount"`
	BalanceAfter int                   `json:"balance_after"`
	AutomationID string                `json:"automation_id,omitempty"`
	ActionType   ActionType            `json:"action_type,omitempty"`
	Description  string                `json:"description"`
	CreatedAt    time.Time             `json:"created_at"`
}

type CreditUsageBucket struct {
	ActionType ActionType `json:"action_type"`
	Count      int64      `json:"count"`
	Credits    int64      `json:"credits"`
}

type CreditUsage struct {
	Days         int                 `json:"days"`
	TotalCredits int64               `json:"total_credits"`
	ByActionType []CreditUsageBucket `json:"by_action_type"`
}

type TransactionListParams struct {
	Type    CreditTransactionType
	Page    int
	PerPage int
}

type Notification struct {
	ID        uint             `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

type MarkReadRequest struct {
	IDs []uint `json:"ids"`
}

type NotificationListParams struct {
	UnreadOnly bool
	Page       int
	PerPage    int
}
