package automation

import (
	"strings"

	"socialbot-gateway/pkg/models"
)

// NewKeywordCondition returns a keyword condition with default operator and
// no keywords.
func NewKeywordCondition(source models.ConditionSource) models.Condition {
	return models.Condition{
		ConditionType:     models.ConditionKeyword,
		ConditionOperator: models.OperatorContains,
		KeywordMode:       models.KeywordModeAny,
		ConditionSource:   source,
		ConditionValue:    []string{},
		Status:            models.ItemActive,
	}
}

// AddKeyword lowercases and adds a keyword, ignoring blanks and duplicates.
func AddKeyword(c *models.Condition, keyword string) bool {
	kw := normalizeKeyword(keyword)
	if kw == "" {
		return false
	}
	for _, v := range c.ConditionValue {
		if v == kw {
			return false
		}
	}
	c.ConditionValue = append(c.ConditionValue, kw)
	return true
}

func RemoveKeyword(c *models.Condition, keyword string) bool {
	kw := normalizeKeyword(keyword)
	for i, v := range c.ConditionValue {
		if v == kw {
			c.ConditionValue = append(c.ConditionValue[:i], c.ConditionValue[i+1:]...)
			return true
		}
	}
	return false
}

func normalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeKeywords(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		kw := normalizeKeyword(v)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

func hasKeywords(c models.Condition) bool {
	for _, v := range c.ConditionValue {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// ConditionBlock is the builder's condition section. Enabled is false
// whenever the list is empty.
type ConditionBlock struct {
	Enabled    bool
	Conditions []models.Condition
	Source     models.ConditionSource
}

// AddCondition appends an empty keyword condition and enables the block.
func (b *ConditionBlock) AddCondition() int {
	b.Conditions = append(b.Conditions, NewKeywordCondition(b.Source))
	b.Enabled = true
	return len(b.Conditions) - 1
}

func (b *ConditionBlock) RemoveCondition(i int) bool {
	if i < 0 || i >= len(b.Conditions) {
		return false
	}
	b.Conditions = append(b.Conditions[:i], b.Conditions[i+1:]...)
	if len(b.Conditions) == 0 {
		b.Enabled = false
	}
	return true
}

// SetEnabled toggles the block. Enabling an empty block seeds one condition.
func (b *ConditionBlock) SetEnabled(on bool) {
	if on && len(b.Conditions) == 0 {
		b.AddCondition()
		return
	}
	b.Enabled = on
}

// IsConfigured is the "Configured" vs "Missing values" badge.
func (b *ConditionBlock) IsConfigured() bool {
	if !b.Enabled {
		return true
	}
	if len(b.Conditions) == 0 {
		return false
	}
	for _, c := range b.Conditions {
		if !hasKeywords(c) {
			return false
		}
	}
	return true
}

// Active returns the conditions to submit; none when the block is disabled.
func (b *ConditionBlock) Active() []models.Condition {
	if !b.Enabled {
		return []models.Condition{}
	}
	out := make([]models.Condition, len(b.Conditions))
	for i, c := range b.Conditions {
		out[i] = cloneCondition(c)
	}
	return out
}
