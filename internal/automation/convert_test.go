package automation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbot-gateway/pkg/models"
)

func storedCommentAutomation() models.Automation {
	return models.Automation{
		ID:              "auto_1",
		Name:            "Giveaway replies",
		Description:     "answer giveaway comments",
		Platform:        models.PlatformInstagram,
		SocialAccountID: "acc_1",
		BotID:           "bot_1",
		Status:          models.StatusActive,
		Trigger: models.Trigger{
			TriggerType:   models.TriggerNewComment,
			TriggerSource: models.TriggerSourceComment,
			TriggerScope:  models.ScopeSpecific,
			ContentIDs:    []string{"post_1", "post_2"},
		},
		Conditions: []models.Condition{{
			ConditionType:     models.ConditionKeyword,
			ConditionOperator: models.OperatorContains,
			KeywordMode:       models.KeywordModeAll,
			ConditionSource:   models.ConditionSourceCommentText,
			ConditionValue:    []string{"giveaway", "win"},
			Status:            models.ItemActive,
		}},
		Actions: []models.Action{
			{
				ID:             "act_2",
				ActionType:     models.ActionPrivateReply,
				ExecutionOrder: 2,
				Status:         models.ItemActive,
				Payload:        &models.PrivateReplyPayload{Message: "check your DMs"},
			},
			{
				ID:             "act_1",
				ActionType:     models.ActionReplyComment,
				ExecutionOrder: 1,
				DelaySeconds:   5,
				Status:         models.ItemActive,
				Payload:        &models.ReplyCommentPayload{UseAIReply: true, AIInstructions: "be upbeat"},
			},
		},
	}
}

func TestAPIToFormData_RoundTrip(t *testing.T) {
	stored := storedCommentAutomation()

	req, ok := NewEditWizard(stored).HandleComplete(false)
	require.True(t, ok)

	want := models.CreateAutomationRequest{
		Name:            stored.Name,
		Description:     stored.Description,
		Platform:        stored.Platform,
		SocialAccountID: stored.SocialAccountID,
		BotID:           stored.BotID,
		Status:          models.StatusActive,
		Trigger:         stored.Trigger,
		Conditions:      stored.Conditions,
		Actions:         []models.Action{stored.Actions[1], stored.Actions[0]},
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAPIToFormData_DMRoundTrip(t *testing.T) {
	stored := models.Automation{
		ID:              "auto_2",
		Name:            "Welcome",
		Platform:        models.PlatformInstagram,
		SocialAccountID: "acc_1",
		Status:          models.StatusActive,
		Trigger: models.Trigger{
			TriggerType:   models.TriggerNewFollower,
			TriggerSource: models.TriggerSourceFollower,
			TriggerScope:  models.ScopeAll,
		},
		Conditions: []models.Condition{},
		Actions: []models.Action{{
			ID:             "act_1",
			ActionType:     models.ActionSendDM,
			ExecutionOrder: 1,
			Status:         models.ItemActive,
			Payload:        &models.SendDMPayload{DMTemplateIDs: []string{"tpl_welcome"}},
		}},
	}

	f := APIToFormData(stored)
	require.NotNil(t, f.Trigger)
	assert.Nil(t, f.Trigger.Scope)
	assert.Nil(t, f.Condition)

	req := f.ToRequest(models.StatusActive)
	if diff := cmp.Diff(stored.Trigger, req.Trigger); diff != "" {
		t.Errorf("trigger mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(stored.Actions, req.Actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestAPIToFormData_KeepsFirstCondition(t *testing.T) {
	stored := storedCommentAutomation()
	second := stored.Conditions[0]
	second.ConditionValue = []string{"free"}
	stored.Conditions = append(stored.Conditions, second)

	f := APIToFormData(stored)
	require.NotNil(t, f.Condition)
	assert.Equal(t, []string{"giveaway", "win"}, f.Condition.ConditionValue)
	assert.Equal(t, []string{"post_1", "post_2"}, f.Trigger.Scope.ContentIDs)
	assert.Len(t, f.Trigger.Scope.SelectedMedia, 2)
}

func TestNormalizeCreateRequest_Defaults(t *testing.T) {
	req := models.CreateAutomationRequest{
		Name:            "x",
		Platform:        models.PlatformInstagram,
		SocialAccountID: "acc_1",
		Trigger: models.Trigger{
			TriggerType: models.TriggerStoryReply,
			ContentIDs:  []string{"story_1"},
		},
		Conditions: []models.Condition{{ConditionValue: []string{" Hello ", "hello", ""}}},
		Actions: []models.Action{
			{ActionType: models.ActionSendDM, ExecutionOrder: 7},
		},
	}

	NormalizeCreateRequest(&req)

	assert.Equal(t, models.TriggerSourceStory, req.Trigger.TriggerSource)
	assert.Equal(t, models.ScopeAll, req.Trigger.TriggerScope)
	assert.Nil(t, req.Trigger.ContentIDs)

	c := req.Conditions[0]
	assert.Equal(t, models.ConditionKeyword, c.ConditionType)
	assert.Equal(t, models.OperatorContains, c.ConditionOperator)
	assert.Equal(t, models.KeywordModeAny, c.KeywordMode)
	assert.Equal(t, models.ConditionSourceStoryReplyText, c.ConditionSource)
	assert.Equal(t, []string{"hello"}, c.ConditionValue)

	a := req.Actions[0]
	assert.Equal(t, 1, a.ExecutionOrder)
	assert.Equal(t, models.ItemActive, a.Status)
	assert.IsType(t, &models.SendDMPayload{}, a.Payload)
}

func TestToRequest_ScopeDefaultsToAll(t *testing.T) {
	f := FormData{
		Platform:        models.PlatformInstagram,
		SocialAccountID: "acc_1",
		Trigger:         NewTriggerForm(models.TriggerNewComment),
	}
	req := f.ToRequest(models.StatusDraft)
	assert.Equal(t, models.ScopeAll, req.Trigger.TriggerScope)
	assert.Equal(t, models.TriggerSourceComment, req.Trigger.TriggerSource)
	assert.Equal(t, []models.Condition{}, req.Conditions)
	assert.Equal(t, []models.Action{}, req.Actions)
}
