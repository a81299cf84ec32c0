package automation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbot-gateway/pkg/models"
)

const commentDraft = `
name: Launch giveaway
platform: instagram
social_account_id: acc_1
trigger:
  type: new_comment
  scope: specific
  media:
    - id: post_1
      caption: launch day
condition:
  mode: all
  keywords: [Giveaway, WIN]
actions:
  - type: reply_comment
    use_ai_reply: true
    delay_seconds: 10
  - type: private_reply
    message: Check your inbox
`

func TestLoadDraft(t *testing.T) {
	w, err := LoadDraft(strings.NewReader(commentDraft))
	require.NoError(t, err)
	assert.Equal(t, StepReview, w.CurrentStep())

	req, ok := w.HandleComplete(true)
	require.True(t, ok)
	assert.Equal(t, "Launch giveaway", req.Name)
	assert.Equal(t, models.StatusDraft, req.Status)
	assert.Equal(t, []string{"post_1"}, req.Trigger.ContentIDs)
	require.Len(t, req.Conditions, 1)
	assert.Equal(t, []string{"giveaway", "win"}, req.Conditions[0].ConditionValue)
	assert.Equal(t, models.KeywordModeAll, req.Conditions[0].KeywordMode)
	require.Len(t, req.Actions, 2)
	assert.Equal(t, 10, req.Actions[0].DelaySeconds)
	assert.Equal(t, "Check your inbox", req.Actions[1].Payload.(*models.PrivateReplyPayload).Message)
}

func TestLoadDraft_WithoutConditionSkipsStep(t *testing.T) {
	w, err := LoadDraft(strings.NewReader(`
platform: instagram
social_account_id: acc_1
trigger: {type: dm_received}
actions:
  - type: send_dm
    dm_template_ids: [tpl_1]
`))
	require.NoError(t, err)
	req, ok := w.HandleComplete(false)
	require.True(t, ok)
	assert.Empty(t, req.Conditions)
	assert.Equal(t, DefaultName(models.TriggerDMReceived), req.Name)
}

func TestLoadDraft_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "platform: instagram\nsurprise: 1\n"},
		{"missing account", "platform: instagram\ntrigger: {type: new_comment}\n"},
		{"specific without posts", "platform: instagram\nsocial_account_id: a\ntrigger: {type: new_comment, scope: specific}\n"},
		{"disallowed action", "platform: instagram\nsocial_account_id: a\ntrigger: {type: dm_received}\nactions: [{type: like_comment}]\n"},
		{"delay over wizard cap", "platform: instagram\nsocial_account_id: a\ntrigger: {type: dm_received}\nactions: [{type: send_dm, dm_template_ids: [t], delay_seconds: 31}]\n"},
		{"unconfigured action", "platform: instagram\nsocial_account_id: a\ntrigger: {type: dm_received}\nactions: [{type: send_dm}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDraft(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}
