package automation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbot-gateway/pkg/models"
)

func listOf(n int) ActionList {
	var l ActionList
	for i := 0; i < n; i++ {
		l.Add(models.ActionLikeComment)
	}
	return l
}

func assertDenseOrder(t *testing.T, l ActionList) {
	t.Helper()
	for i, a := range l {
		assert.Equal(t, i+1, a.ExecutionOrder, "action %d", i)
	}
}

func TestActionList_ReorderKeepsDenseOrder(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for i := 0; i < n; i++ {
			t.Run(fmt.Sprintf("n=%d/i=%d", n, i), func(t *testing.T) {
				up := listOf(n)
				id := up[i].ID
				moved := up.MoveUp(id)
				assert.Equal(t, i > 0, moved)
				assertDenseOrder(t, up)
				if moved {
					assert.Equal(t, id, up[i-1].ID)
				}

				down := listOf(n)
				id = down[i].ID
				moved = down.MoveDown(id)
				assert.Equal(t, i < n-1, moved)
				assertDenseOrder(t, down)
				if moved {
					assert.Equal(t, id, down[i+1].ID)
				}
			})
		}
	}
}

func TestActionList_RemoveRenumbers(t *testing.T) {
	l := listOf(4)
	removed := l[1].ID
	require.True(t, l.Remove(removed))
	assert.Len(t, l, 3)
	assert.Equal(t, -1, l.Index(removed))
	assertDenseOrder(t, l)
	assert.False(t, l.Remove("missing"))
}

func TestActionList_CanMove(t *testing.T) {
	l := listOf(3)
	assert.False(t, l.CanMoveUp(0))
	assert.True(t, l.CanMoveUp(2))
	assert.True(t, l.CanMoveDown(0))
	assert.False(t, l.CanMoveDown(2))
	assert.False(t, l.CanMoveDown(-1))
}

func TestActionList_SetDelay(t *testing.T) {
	l := listOf(1)
	id := l[0].ID

	require.NoError(t, l.SetDelay(id, 120, BuilderMaxDelaySeconds))
	assert.Equal(t, 120, l[0].DelaySeconds)

	err := l.SetDelay(id, 121, BuilderMaxDelaySeconds)
	assert.True(t, errors.Is(err, ErrDelayOutOfRange))
	assert.True(t, errors.Is(l.SetDelay(id, -1, BuilderMaxDelaySeconds), ErrDelayOutOfRange))
	assert.ErrorIs(t, l.SetDelay("nope", 1, BuilderMaxDelaySeconds), ErrActionNotFound)
}

func TestActionList_SetAIReply(t *testing.T) {
	var l ActionList
	reply := l.Add(models.ActionReplyComment)
	like := l.Add(models.ActionLikeComment)

	require.NoError(t, l.SetAIReply(reply.ID, true))
	assert.True(t, l[0].Payload.(*models.ReplyCommentPayload).UseAIReply)
	assert.Error(t, l.SetAIReply(like.ID, true))
}

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		action models.Action
		want   bool
	}{
		{"reply without templates", models.Action{ActionType: models.ActionReplyComment, Payload: &models.ReplyCommentPayload{}}, false},
		{"reply with blank template", models.Action{ActionType: models.ActionReplyComment, Payload: &models.ReplyCommentPayload{ReplyTemplates: []string{"  "}}}, false},
		{"reply with template", models.Action{ActionType: models.ActionReplyComment, Payload: &models.ReplyCommentPayload{ReplyTemplates: []string{"thanks!"}}}, true},
		{"reply with ai", models.Action{ActionType: models.ActionReplyComment, Payload: &models.ReplyCommentPayload{UseAIReply: true}}, true},
		{"dm without templates", models.Action{ActionType: models.ActionSendDM, Payload: &models.SendDMPayload{UseAIReply: true}}, false},
		{"dm with template", models.Action{ActionType: models.ActionSendDM, Payload: &models.SendDMPayload{DMTemplateIDs: []string{"tpl_1"}}}, true},
		{"dm nil payload", models.Action{ActionType: models.ActionSendDM}, false},
		{"like", models.Action{ActionType: models.ActionLikeComment, Payload: &models.LikeCommentPayload{}}, true},
		{"hide nil payload", models.Action{ActionType: models.ActionHideComment}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConfigured(tt.action))
		})
	}
}
