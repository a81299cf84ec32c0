package automation

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/models"
)

// ToRequest coerces the form into the strict request shape, filling every
// optional field the user left unset.
func (f FormData) ToRequest(status models.AutomationStatus) models.CreateAutomationRequest {
	req := models.CreateAutomationRequest{
		Name:            strings.TrimSpace(f.Name),
		Description:     f.Description,
		Platform:        f.Platform,
		SocialAccountID: f.SocialAccountID,
		BotID:           f.BotID,
		Status:          status,
		Conditions:      []models.Condition{},
		Actions:         []models.Action{},
	}
	if f.Trigger != nil {
		req.Trigger = models.Trigger{
			TriggerType:   f.Trigger.Type,
			TriggerSource: f.Trigger.Source,
			TriggerScope:  models.ScopeAll,
		}
		if s := f.Trigger.Scope; s != nil && s.Scope != "" {
			req.Trigger.TriggerScope = s.Scope
			if s.Scope == models.ScopeSpecific {
				req.Trigger.ContentIDs = append([]string(nil), s.ContentIDs...)
			}
		}
	}
	if f.Condition != nil {
		req.Conditions = append(req.Conditions, cloneCondition(*f.Condition))
	}
	if len(f.Actions) > 0 {
		req.Actions = cloneActions(f.Actions)
	}
	if req.Name == "" {
		req.Name = DefaultName(req.Trigger.TriggerType)
	}
	NormalizeCreateRequest(&req)
	return req
}

// DefaultName is used when the user never typed a name.
func DefaultName(t models.TriggerType) string {
	switch t {
	case models.TriggerNewComment:
		return "Comment auto-reply"
	case models.TriggerStoryReply:
		return "Story reply auto-DM"
	case models.TriggerDMReceived:
		return "DM auto-reply"
	case models.TriggerMention:
		return "Mention auto-reply"
	case models.TriggerNewFollower:
		return "New follower welcome"
	}
	return "Untitled automation"
}

// NormalizeCreateRequest substitutes defaults in place: inferred trigger
// source, keyword condition defaults, lowercase unique keywords, action
// status and dense execution order.
func NormalizeCreateRequest(req *models.CreateAutomationRequest) {
	t := req.Trigger.TriggerType
	if req.Trigger.TriggerSource == "" {
		req.Trigger.TriggerSource = t.DefaultSource()
	}
	if req.Trigger.TriggerScope == "" {
		req.Trigger.TriggerScope = models.ScopeAll
	}
	if req.Trigger.TriggerScope == models.ScopeAll {
		req.Trigger.ContentIDs = nil
	} else {
		req.Trigger.ContentIDs = dedupe(req.Trigger.ContentIDs)
	}
	if req.Conditions == nil {
		req.Conditions = []models.Condition{}
	}
	for i := range req.Conditions {
		normalizeCondition(&req.Conditions[i], t)
	}
	if req.Actions == nil {
		req.Actions = []models.Action{}
	}
	req.Actions = sortedActions(req.Actions)
	for i := range req.Actions {
		a := &req.Actions[i]
		if a.Status == "" {
			a.Status = models.ItemActive
		}
		if a.Payload == nil {
			a.Payload = models.NewPayload(a.ActionType)
		}
	}
	ActionList(req.Actions).Renumber()
}

func normalizeCondition(c *models.Condition, t models.TriggerType) {
	if c.ConditionType == "" {
		c.ConditionType = models.ConditionKeyword
	}
	if c.ConditionOperator == "" {
		c.ConditionOperator = models.OperatorContains
	}
	if c.KeywordMode == "" {
		c.KeywordMode = models.KeywordModeAny
	}
	if c.ConditionSource == "" {
		c.ConditionSource = t.ConditionSource()
	}
	if c.Status == "" {
		c.Status = models.ItemActive
	}
	c.ConditionValue = normalizeKeywords(c.ConditionValue)
}

// APIToFormData loads a stored automation into wizard form state.
func APIToFormData(a models.Automation) FormData {
	f := FormData{
		Platform:        a.Platform,
		SocialAccountID: a.SocialAccountID,
		Name:            a.Name,
		Description:     a.Description,
		BotID:           a.BotID,
	}
	tf := NewTriggerForm(a.Trigger.TriggerType)
	tf.Source = a.Trigger.TriggerSource
	if tf.Scope != nil {
		tf.Scope.Scope = a.Trigger.TriggerScope
		tf.Scope.ContentIDs = append([]string(nil), a.Trigger.ContentIDs...)
		for _, id := range a.Trigger.ContentIDs {
			tf.Scope.SelectedMedia = append(tf.Scope.SelectedMedia, MediaItem{ID: id})
		}
	}
	f.Trigger = tf

	if len(a.Conditions) > 0 {
		if len(a.Conditions) > 1 {
			logrus.Warnf("automation %s has %d conditions, the wizard edits only the first", a.ID, len(a.Conditions))
		}
		c := cloneCondition(a.Conditions[0])
		f.Condition = &c
	}
	f.Actions = cloneActions(sortedActions(a.Actions))
	return f
}

func sortedActions(actions []models.Action) []models.Action {
	out := make([]models.Action, len(actions))
	copy(out, actions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExecutionOrder < out[j].ExecutionOrder
	})
	return out
}

func mediaIDs(media []MediaItem) []string {
	ids := make([]string, 0, len(media))
	for _, m := range media {
		ids = append(ids, m.ID)
	}
	return dedupe(ids)
}

func dedupe(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
