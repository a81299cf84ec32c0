package automation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"socialbot-gateway/pkg/models"
)

const (
	// MaxDelaySeconds bounds delay_seconds on the wire.
	MaxDelaySeconds = 3600
	// BuilderMaxDelaySeconds caps delays chosen in the builder inspector.
	BuilderMaxDelaySeconds = 120
)

var (
	ErrActionNotFound   = errors.New("action not found")
	ErrActionNotAllowed = errors.New("action type not allowed for trigger")
	ErrDelayOutOfRange  = errors.New("delay out of range")
)

// ActionList is an ordered list of actions whose execution_order always
// equals position + 1.
type ActionList []models.Action

// NewAction returns an unconfigured action with a fresh client-side id.
func NewAction(t models.ActionType) models.Action {
	return models.Action{
		ID:         uuid.NewString(),
		ActionType: t,
		Status:     models.ItemActive,
		Payload:    models.NewPayload(t),
	}
}

func (l *ActionList) Add(t models.ActionType) models.Action {
	a := NewAction(t)
	a.ExecutionOrder = len(*l) + 1
	*l = append(*l, a)
	return a
}

func (l *ActionList) Remove(id string) bool {
	i := l.Index(id)
	if i < 0 {
		return false
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	l.Renumber()
	return true
}

func (l ActionList) Index(id string) int {
	for i, a := range l {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (l ActionList) Renumber() {
	for i := range l {
		l[i].ExecutionOrder = i + 1
	}
}

func (l ActionList) CanMoveUp(i int) bool {
	return i > 0 && i < len(l)
}

func (l ActionList) CanMoveDown(i int) bool {
	return i >= 0 && i < len(l)-1
}

// MoveUp swaps the action with its predecessor.
func (l ActionList) MoveUp(id string) bool {
	i := l.Index(id)
	if !l.CanMoveUp(i) {
		return false
	}
	l.swap(i, i-1)
	return true
}

// MoveDown swaps the action with its successor.
func (l ActionList) MoveDown(id string) bool {
	i := l.Index(id)
	if !l.CanMoveDown(i) {
		return false
	}
	l.swap(i, i+1)
	return true
}

func (l ActionList) swap(i, j int) {
	l[i], l[j] = l[j], l[i]
	l.Renumber()
}

// SetDelay sets delay_seconds, rejecting values outside [0, max].
func (l ActionList) SetDelay(id string, seconds, max int) error {
	i := l.Index(id)
	if i < 0 {
		return ErrActionNotFound
	}
	if seconds < 0 || seconds > max {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrDelayOutOfRange, seconds, max)
	}
	l[i].DelaySeconds = seconds
	return nil
}

// SetAIReply flips use_ai_reply on payloads that support it.
func (l ActionList) SetAIReply(id string, on bool) error {
	i := l.Index(id)
	if i < 0 {
		return ErrActionNotFound
	}
	switch p := l[i].Payload.(type) {
	case *models.ReplyCommentPayload:
		p.UseAIReply = on
	case *models.PrivateReplyPayload:
		p.UseAIReply = on
	case *models.SendDMPayload:
		p.UseAIReply = on
	default:
		return fmt.Errorf("%s does not support AI replies", l[i].ActionType)
	}
	return nil
}

// IsConfigured reports whether an action has the input it needs to run.
func IsConfigured(a models.Action) bool {
	switch p := a.Payload.(type) {
	case *models.ReplyCommentPayload:
		if p.UseAIReply {
			return true
		}
		for _, t := range p.ReplyTemplates {
			if strings.TrimSpace(t) != "" {
				return true
			}
		}
		return false
	case *models.SendDMPayload:
		return len(p.DMTemplateIDs) > 0
	case nil:
		return a.ActionType != models.ActionReplyComment && a.ActionType != models.ActionSendDM
	}
	return true
}
