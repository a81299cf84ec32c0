package automation

import (
	"strings"

	"socialbot-gateway/pkg/models"
)

// MatchKeywords previews whether text would pass a keyword condition.
// With fewer than two keywords the keyword mode is ignored.
func MatchKeywords(text string, c models.Condition) bool {
	message := strings.ToLower(strings.TrimSpace(text))
	keywords := normalizeKeywords(c.ConditionValue)
	if len(keywords) == 0 {
		return false
	}

	if len(keywords) < 2 || c.KeywordMode != models.KeywordModeAll {
		for _, kw := range keywords {
			if matchKeyword(message, c.ConditionOperator, kw) {
				return true
			}
		}
		return false
	}
	for _, kw := range keywords {
		if !matchKeyword(message, c.ConditionOperator, kw) {
			return false
		}
	}
	return true
}

// MatchConditions requires every active condition to pass.
func MatchConditions(text string, conds []models.Condition) bool {
	for _, c := range conds {
		if c.Status == models.ItemInactive {
			continue
		}
		if !MatchKeywords(text, c) {
			return false
		}
	}
	return true
}

func matchKeyword(message string, operator models.ConditionOperator, value string) bool {
	switch operator {
	case models.OperatorEquals:
		return message == value
	case models.OperatorContains, "":
		return strings.Contains(message, value)
	case models.OperatorStartsWith:
		return strings.HasPrefix(message, value)
	case models.OperatorEndsWith:
		return strings.HasSuffix(message, value)
	case models.OperatorNotContains:
		return !strings.Contains(message, value)
	default:
		return false
	}
}
