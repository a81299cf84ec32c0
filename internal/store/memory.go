package store

import (
	"context"
	"sync"
	"time"

	"socialbot-gateway/pkg/models"
)

const MemorySearchDelay = 500 * time.Millisecond

type MemoryAPI interface {
	MemoryStats(ctx context.Context, botID string) (models.MemoryStats, error)
	MemoryUsers(ctx context.Context, p models.MemoryListParams) ([]models.MemoryUser, *models.Pagination, error)
	SearchMemory(ctx context.Context, botID, query string, limit int) ([]models.MemorySearchResult, error)
}

// MemoryStore backs the relationship memory browser of one bot.
type MemoryStore struct {
	api     MemoryAPI
	toaster Toaster
	search  *Debouncer

	mu      sync.Mutex
	botID   string
	stats   models.MemoryStats
	users   []models.MemoryUser
	results []models.MemorySearchResult
}

func NewMemoryStore(api MemoryAPI, toaster Toaster) *MemoryStore {
	return &MemoryStore{api: api, toaster: toaster, search: NewDebouncer(MemorySearchDelay)}
}

// Load selects a bot and fetches its stats and first page of users.
func (s *MemoryStore) Load(ctx context.Context, botID string) error {
	stats, err := s.api.MemoryStats(ctx, botID)
	if err != nil {
		s.toaster.Toast(Toast{Title: "Could not load memory", Description: err.Error(), Variant: ToastDestructive})
		return err
	}
	users, _, err := s.api.MemoryUsers(ctx, models.MemoryListParams{BotID: botID})
	if err != nil {
		s.toaster.Toast(Toast{Title: "Could not load memory", Description: err.Error(), Variant: ToastDestructive})
		return err
	}
	s.mu.Lock()
	s.botID, s.stats, s.users, s.results = botID, stats, users, nil
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Stats() models.MemoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *MemoryStore) Users() []models.MemoryUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MemoryUser(nil), s.users...)
}

func (s *MemoryStore) Results() []models.MemorySearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MemorySearchResult(nil), s.results...)
}

// Search queries after typing pauses. An empty query clears the results
// right away.
func (s *MemoryStore) Search(ctx context.Context, query string) {
	if query == "" {
		s.search.Stop()
		s.mu.Lock()
		s.results = nil
		s.mu.Unlock()
		return
	}
	s.search.Trigger(func() {
		s.mu.Lock()
		botID := s.botID
		s.mu.Unlock()
		results, err := s.api.SearchMemory(ctx, botID, query, 0)
		if err != nil {
			s.toaster.Toast(Toast{Title: "Memory search failed", Description: err.Error(), Variant: ToastDestructive})
			return
		}
		s.mu.Lock()
		s.results = results
		s.mu.Unlock()
	})
}
