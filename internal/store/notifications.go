package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"socialbot-gateway/pkg/models"
)

type NotificationAPI interface {
	ListNotifications(ctx context.Context, p models.NotificationListParams) ([]models.Notification, *models.Pagination, error)
	MarkNotificationsRead(ctx context.Context, ids []uint) (int64, error)
	MarkAllNotificationsRead(ctx context.Context) (int64, error)
}

type NotificationStore struct {
	api     NotificationAPI
	toaster Toaster

	mu    sync.Mutex
	items []models.Notification
}

func NewNotificationStore(api NotificationAPI, toaster Toaster) *NotificationStore {
	return &NotificationStore{api: api, toaster: toaster}
}

func (s *NotificationStore) Items() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.items...)
}

func (s *NotificationStore) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.items {
		if !item.Read {
			n++
		}
	}
	return n
}

func (s *NotificationStore) Load(ctx context.Context) error {
	items, _, err := s.api.ListNotifications(ctx, models.NotificationListParams{})
	if err != nil {
		s.toaster.Toast(Toast{Title: "Could not load notifications", Description: err.Error(), Variant: ToastDestructive})
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// MarkRead flags the ids read locally and restores their previous state
// when the request fails.
func (s *NotificationStore) MarkRead(ctx context.Context, ids []uint) error {
	prev := s.setRead(func(n models.Notification) bool { return containsID(ids, n.ID) })
	if _, err := s.api.MarkNotificationsRead(ctx, ids); err != nil {
		s.restore(prev)
		s.toaster.Toast(Toast{Title: "Could not mark notifications read", Description: err.Error(), Variant: ToastDestructive})
		return err
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	prev := s.setRead(func(models.Notification) bool { return true })
	if _, err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		s.restore(prev)
		s.toaster.Toast(Toast{Title: "Could not mark notifications read", Description: err.Error(), Variant: ToastDestructive})
		return err
	}
	return nil
}

// Apply merges a pushed notification by id, newest first.
func (s *NotificationStore) Apply(ev models.RealtimeEvent) bool {
	if ev.Channel != models.ChannelNotifications {
		return false
	}
	var n models.Notification
	if err := json.Unmarshal(ev.Data, &n); err != nil || n.ID == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == n.ID {
			s.items[i] = n
			return true
		}
	}
	s.items = append(s.items, n)
	sort.SliceStable(s.items, func(i, j int) bool {
		if s.items[i].CreatedAt.Equal(s.items[j].CreatedAt) {
			return s.items[i].ID > s.items[j].ID
		}
		return s.items[i].CreatedAt.After(s.items[j].CreatedAt)
	})
	return true
}

// setRead marks matching unread items and returns what it changed.
func (s *NotificationStore) setRead(match func(models.Notification) bool) map[uint]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := map[uint]bool{}
	for i := range s.items {
		if !s.items[i].Read && match(s.items[i]) {
			s.items[i].Read = true
			changed[s.items[i].ID] = true
		}
	}
	return changed
}

func (s *NotificationStore) restore(changed map[uint]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if changed[s.items[i].ID] {
			s.items[i].Read = false
		}
	}
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
