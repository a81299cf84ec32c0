package automation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbot-gateway/pkg/models"
)

func wizardAtTrigger(t *testing.T) *Wizard {
	t.Helper()
	w := NewWizard()
	w.UpdateFormData(FormPatch{Platform: ptr(models.PlatformInstagram)})
	require.NoError(t, w.NextStep())
	w.UpdateFormData(FormPatch{SocialAccountID: ptr("acc_1")})
	require.NoError(t, w.NextStep())
	require.Equal(t, StepTrigger, w.CurrentStep())
	return w
}

func TestWizard_TriggerChangeResetsDependents(t *testing.T) {
	for _, from := range models.TriggerTypes {
		for _, to := range models.TriggerTypes {
			if from == to {
				continue
			}
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				w := NewWizard()
				w.UpdateFormData(FormPatch{
					Platform:        ptr(models.PlatformInstagram),
					SocialAccountID: ptr("acc_1"),
					TriggerType:     ptr(from),
				})
				if from.HasScope() {
					w.UpdateFormData(FormPatch{
						TriggerScope:  ptr(models.ScopeSpecific),
						SelectedMedia: &[]MediaItem{{ID: "post_1"}, {ID: "post_2"}},
					})
				}
				_, err := w.AddAction(from.AllowedActions()[0])
				require.NoError(t, err)
				cond := NewKeywordCondition("")
				AddKeyword(&cond, "price")
				w.UpdateFormData(FormPatch{Condition: &cond})

				w.UpdateFormData(FormPatch{TriggerType: ptr(to)})

				f := w.FormData()
				require.NotNil(t, f.Trigger)
				assert.Equal(t, to, f.Trigger.Type)
				assert.Empty(t, f.Actions)
				if to == models.TriggerDMReceived {
					assert.Nil(t, f.Trigger.Scope)
				}
				if f.Trigger.Scope != nil {
					assert.Empty(t, f.Trigger.Scope.Scope)
					assert.Empty(t, f.Trigger.Scope.ContentIDs)
					assert.Empty(t, f.Trigger.Scope.SelectedMedia)
				}
				require.NotNil(t, f.Condition)
				assert.Equal(t, to.ConditionSource(), f.Condition.ConditionSource)
				assert.Equal(t, []string{"price"}, f.Condition.ConditionValue)
			})
		}
	}
}

func TestWizard_SameTriggerTypeKeepsState(t *testing.T) {
	w := wizardAtTrigger(t)
	w.UpdateFormData(FormPatch{TriggerType: ptr(models.TriggerNewComment), TriggerScope: ptr(models.ScopeSpecific)})
	w.UpdateFormData(FormPatch{ContentIDs: &[]string{"post_1"}})
	_, err := w.AddAction(models.ActionLikeComment)
	require.NoError(t, err)

	w.UpdateFormData(FormPatch{TriggerType: ptr(models.TriggerNewComment)})

	f := w.FormData()
	assert.Equal(t, []string{"post_1"}, f.Trigger.Scope.ContentIDs)
	assert.Len(t, f.Actions, 1)
}

func TestWizard_PlatformChangeResetsEverything(t *testing.T) {
	w := wizardAtTrigger(t)
	w.UpdateFormData(FormPatch{TriggerType: ptr(models.TriggerDMReceived), Name: ptr("hello")})
	_, err := w.AddAction(models.ActionSendDM)
	require.NoError(t, err)

	w.UpdateFormData(FormPatch{Platform: ptr(models.Platform("tiktok"))})

	assert.Equal(t, FormData{Platform: "tiktok"}, w.FormData())
}

func TestWizard_SpecificScopeNeedsPost(t *testing.T) {
	w := wizardAtTrigger(t)
	w.UpdateFormData(FormPatch{
		TriggerType:  ptr(models.TriggerNewComment),
		TriggerScope: ptr(models.ScopeSpecific),
	})

	assert.False(t, w.CanContinue())
	err := w.NextStep()
	assert.True(t, errors.Is(err, ErrStepIncomplete))
	assert.Equal(t, StepTrigger, w.CurrentStep())

	w.UpdateFormData(FormPatch{SelectedMedia: &[]MediaItem{{ID: "post_9", Caption: "launch"}}})
	assert.True(t, w.CanContinue())
	require.NoError(t, w.NextStep())
	assert.Equal(t, StepCondition, w.CurrentStep())
}

func TestWizard_ScopeAllClearsSelection(t *testing.T) {
	w := wizardAtTrigger(t)
	w.UpdateFormData(FormPatch{TriggerType: ptr(models.TriggerNewComment), TriggerScope: ptr(models.ScopeSpecific)})
	w.UpdateFormData(FormPatch{SelectedMedia: &[]MediaItem{{ID: "post_1"}}})
	w.UpdateFormData(FormPatch{TriggerScope: ptr(models.ScopeAll)})

	f := w.FormData()
	assert.Empty(t, f.Trigger.Scope.ContentIDs)
	assert.True(t, w.CanContinue())
}

func TestWizard_SkippedConditionSubmitsEmptyList(t *testing.T) {
	w := wizardAtTrigger(t)
	w.UpdateFormData(FormPatch{TriggerType: ptr(models.TriggerDMReceived)})
	require.NoError(t, w.NextStep())
	require.NoError(t, w.SkipCondition())
	assert.Equal(t, StepActions, w.CurrentStep())

	a, err := w.AddAction(models.ActionSendDM)
	require.NoError(t, err)
	require.NoError(t, w.UpdateAction(a.ID, &models.SendDMPayload{DMTemplateIDs: []string{"tpl_1"}}))
	require.NoError(t, w.NextStep())

	req, ok := w.HandleComplete(false)
	require.True(t, ok)
	require.NotNil(t, req.Conditions)
	assert.Len(t, req.Conditions, 0)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"conditions":[]`)
}

func TestWizard_HandleCompleteRequiresBasics(t *testing.T) {
	w := NewWizard()
	_, ok := w.HandleComplete(true)
	assert.False(t, ok)

	w.UpdateFormData(FormPatch{Platform: ptr(models.PlatformInstagram), SocialAccountID: ptr("acc_1")})
	_, ok = w.HandleComplete(true)
	assert.False(t, ok)

	w.UpdateFormData(FormPatch{TriggerType: ptr(models.TriggerMention)})
	req, ok := w.HandleComplete(true)
	require.True(t, ok)
	assert.Equal(t, models.StatusDraft, req.Status)
	assert.Equal(t, models.TriggerSourceMention, req.Trigger.TriggerSource)
	assert.Equal(t, models.ScopeAll, req.Trigger.TriggerScope)
	assert.Equal(t, DefaultName(models.TriggerMention), req.Name)
	assert.NotNil(t, req.Actions)
}

func TestWizard_DraftWithoutActionsEncodesEmptyLists(t *testing.T) {
	w := NewWizard()
	w.UpdateFormData(FormPatch{
		Platform:        ptr(models.PlatformInstagram),
		SocialAccountID: ptr("acc_1"),
		TriggerType:     ptr(models.TriggerNewComment),
	})
	req, ok := w.HandleComplete(true)
	require.True(t, ok)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"actions":[]`)
	assert.Contains(t, string(raw), `"conditions":[]`)
}

func TestWizard_ConditionStepNeedsKeywordsUnlessSkipped(t *testing.T) {
	w := wizardAtTrigger(t)
	w.UpdateFormData(FormPatch{TriggerType: ptr(models.TriggerDMReceived)})
	require.NoError(t, w.NextStep())

	assert.True(t, w.CanContinue())
	empty := NewKeywordCondition("")
	w.UpdateFormData(FormPatch{Condition: &empty})
	assert.False(t, w.CanContinue())

	w.UpdateFormData(FormPatch{ClearCondition: true})
	assert.True(t, w.CanContinue())
}

func TestWizard_ActionsStep(t *testing.T) {
	w := wizardAtTrigger(t)
	w.UpdateFormData(FormPatch{TriggerType: ptr(models.TriggerNewComment), TriggerScope: ptr(models.ScopeAll)})
	require.NoError(t, w.NextStep())
	require.NoError(t, w.SkipCondition())

	assert.False(t, w.CanContinue())
	_, err := w.AddAction(models.ActionSendDM)
	assert.True(t, errors.Is(err, ErrActionNotAllowed))

	reply, err := w.AddAction(models.ActionReplyComment)
	require.NoError(t, err)
	assert.False(t, w.CanContinue(), "reply without templates or AI is unconfigured")

	require.NoError(t, w.UpdateAction(reply.ID, &models.ReplyCommentPayload{UseAIReply: true}))
	assert.True(t, w.CanContinue())

	assert.True(t, errors.Is(w.SetActionDelay(reply.ID, 45), ErrDelayOutOfRange))
	require.NoError(t, w.SetActionDelay(reply.ID, 30))

	require.NoError(t, w.NextStep())
	assert.Equal(t, StepReview, w.CurrentStep())
	assert.ErrorIs(t, w.NextStep(), ErrLastStep)
}

func TestWizard_PrevStepStopsAtFirst(t *testing.T) {
	w := wizardAtTrigger(t)
	w.PrevStep()
	w.PrevStep()
	w.PrevStep()
	assert.Equal(t, StepPlatform, w.CurrentStep())
	assert.ErrorIs(t, w.SkipCondition(), ErrNotOnStep)
}
