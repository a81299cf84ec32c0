package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"socialbot-gateway/pkg/models"
)

func TestMatchKeywords(t *testing.T) {
	cond := func(op models.ConditionOperator, mode models.KeywordMode, kws ...string) models.Condition {
		return models.Condition{ConditionOperator: op, KeywordMode: mode, ConditionValue: kws}
	}
	tests := []struct {
		name string
		text string
		cond models.Condition
		want bool
	}{
		{"contains any", "What's the PRICE?", cond(models.OperatorContains, models.KeywordModeAny, "price", "cost"), true},
		{"contains all misses one", "what's the price", cond(models.OperatorContains, models.KeywordModeAll, "price", "shipping"), false},
		{"contains all", "price incl. shipping?", cond(models.OperatorContains, models.KeywordModeAll, "price", "shipping"), true},
		{"all with one keyword", "price", cond(models.OperatorContains, models.KeywordModeAll, "price"), true},
		{"equals", "  Link ", cond(models.OperatorEquals, models.KeywordModeAny, "link"), true},
		{"equals partial", "link please", cond(models.OperatorEquals, models.KeywordModeAny, "link"), false},
		{"starts with", "info: sizes", cond(models.OperatorStartsWith, models.KeywordModeAny, "info"), true},
		{"ends with", "send the link", cond(models.OperatorEndsWith, models.KeywordModeAny, "link"), true},
		{"not contains", "love it", cond(models.OperatorNotContains, models.KeywordModeAny, "spam"), true},
		{"reserved operator never matches", "and", cond(models.OperatorAnd, models.KeywordModeAny, "and"), false},
		{"no keywords", "anything", cond(models.OperatorContains, models.KeywordModeAny), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchKeywords(tt.text, tt.cond))
		})
	}
}

func TestMatchConditions_SkipsInactive(t *testing.T) {
	conds := []models.Condition{
		{ConditionOperator: models.OperatorContains, ConditionValue: []string{"price"}, Status: models.ItemActive},
		{ConditionOperator: models.OperatorContains, ConditionValue: []string{"never"}, Status: models.ItemInactive},
	}
	assert.True(t, MatchConditions("price?", conds))
	assert.False(t, MatchConditions("hello", conds))
	assert.True(t, MatchConditions("hello", nil))
}
