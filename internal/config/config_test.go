package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"socialbot-gateway/pkg/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CREDITS_AI_STANDARD", "4")
	t.Setenv("CREDITS_BYOM_INFRA", "not-a-number")
	t.Setenv("DEBUG", "true")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, models.Pricing{AIStandard: 4, AIKnowledge: 3, AIFullContext: 5, BYOMInfra: 1}, cfg.Pricing)
	assert.Equal(t, 1500*time.Millisecond, cfg.VoiceDNAAnalysisDelay)
}
