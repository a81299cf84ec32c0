package automation

import (
	"context"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbot-gateway/pkg/models"
)

func validRequest() models.CreateAutomationRequest {
	req := models.CreateAutomationRequest{
		Name:            "Comment replies",
		Platform:        models.PlatformInstagram,
		SocialAccountID: "acc_1",
		Status:          models.StatusActive,
		Trigger: models.Trigger{
			TriggerType:  models.TriggerNewComment,
			TriggerScope: models.ScopeSpecific,
			ContentIDs:   []string{"post_1"},
		},
		Conditions: []models.Condition{{ConditionValue: []string{"price"}}},
		Actions: []models.Action{{
			ActionType: models.ActionReplyComment,
			Payload:    &models.ReplyCommentPayload{ReplyTemplates: []string{"DM sent!"}},
		}},
	}
	NormalizeCreateRequest(&req)
	return req
}

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(validation.Errors)
	require.True(t, ok, "expected validation.Errors, got %T", err)
	return errs
}

func TestValidateCreateRequest_Valid(t *testing.T) {
	assert.NoError(t, ValidateCreateRequest(context.Background(), validRequest()))
}

func TestValidateCreateRequest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CreateAutomationRequest)
		field  string
	}{
		{"missing name", func(r *models.CreateAutomationRequest) { r.Name = "" }, "name"},
		{"unknown platform", func(r *models.CreateAutomationRequest) { r.Platform = "myspace" }, "platform"},
		{"missing account", func(r *models.CreateAutomationRequest) { r.SocialAccountID = "" }, "social_account_id"},
		{"bad status", func(r *models.CreateAutomationRequest) { r.Status = models.StatusArchived }, "status"},
		{"specific without ids", func(r *models.CreateAutomationRequest) { r.Trigger.ContentIDs = nil }, "trigger"},
		{"dm trigger with scope", func(r *models.CreateAutomationRequest) {
			r.Trigger = models.Trigger{TriggerType: models.TriggerDMReceived, TriggerScope: models.ScopeSpecific, ContentIDs: []string{"x"}}
			r.Actions = nil
			r.Status = models.StatusDraft
		}, "trigger"},
		{"reserved operator", func(r *models.CreateAutomationRequest) { r.Conditions[0].ConditionOperator = models.OperatorAnd }, "conditions"},
		{"empty keywords", func(r *models.CreateAutomationRequest) { r.Conditions[0].ConditionValue = []string{} }, "conditions"},
		{"active without actions", func(r *models.CreateAutomationRequest) { r.Actions = []models.Action{} }, "actions"},
		{"action not allowed", func(r *models.CreateAutomationRequest) {
			r.Actions[0] = models.Action{ActionType: models.ActionSendDM, ExecutionOrder: 1, Status: models.ItemActive, Payload: &models.SendDMPayload{}}
		}, "actions"},
		{"gap in execution order", func(r *models.CreateAutomationRequest) { r.Actions[0].ExecutionOrder = 2 }, "actions"},
		{"delay too long", func(r *models.CreateAutomationRequest) { r.Actions[0].DelaySeconds = MaxDelaySeconds + 1 }, "actions"},
		{"mismatched payload", func(r *models.CreateAutomationRequest) { r.Actions[0].Payload = &models.LikeCommentPayload{} }, "actions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			errs := fieldErrors(t, ValidateCreateRequest(context.Background(), req))
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestValidateCreateRequest_DraftMayLackActions(t *testing.T) {
	req := validRequest()
	req.Status = models.StatusDraft
	req.Actions = []models.Action{}
	assert.NoError(t, ValidateCreateRequest(context.Background(), req))
}

func TestValidateAutomation_AllowsStoredStatuses(t *testing.T) {
	req := validRequest()
	a := models.Automation{
		Name:            req.Name,
		Platform:        req.Platform,
		SocialAccountID: req.SocialAccountID,
		Status:          models.StatusPaused,
		Trigger:         req.Trigger,
		Conditions:      req.Conditions,
		Actions:         req.Actions,
	}
	assert.NoError(t, ValidateAutomation(context.Background(), a))

	a.Status = "deleted"
	assert.Error(t, ValidateAutomation(context.Background(), a))
}
