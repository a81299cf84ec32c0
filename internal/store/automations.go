package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"socialbot-gateway/pkg/models"
)

const AutomationSearchDelay = 400 * time.Millisecond

type AutomationAPI interface {
	ListAutomations(ctx context.Context, p models.AutomationListParams) ([]models.Automation, *models.Pagination, error)
	SetAutomationStatus(ctx context.Context, id string, status models.AutomationStatus) (models.Automation, error)
}

// AutomationStore holds the automation list shown on the dashboard.
type AutomationStore struct {
	api     AutomationAPI
	toaster Toaster
	search  *Debouncer

	mu         sync.Mutex
	items      []models.Automation
	pagination *models.Pagination
	query      string
	status     models.AutomationStatus
	err        error
}

func NewAutomationStore(api AutomationAPI, toaster Toaster) *AutomationStore {
	return &AutomationStore{api: api, toaster: toaster, search: NewDebouncer(AutomationSearchDelay)}
}

func (s *AutomationStore) Items() []models.Automation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Automation(nil), s.items...)
}

func (s *AutomationStore) Pagination() *models.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

func (s *AutomationStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Load fetches the list with the current search and status filter.
func (s *AutomationStore) Load(ctx context.Context) error {
	s.mu.Lock()
	params := models.AutomationListParams{Search: s.query, Status: s.status}
	s.mu.Unlock()

	items, page, err := s.api.ListAutomations(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	if err != nil {
		s.toaster.Toast(Toast{Title: "Could not load automations", Description: err.Error(), Variant: ToastDestructive})
		return err
	}
	s.items, s.pagination = items, page
	return nil
}

// SetFilters sets both filters and reloads immediately.
func (s *AutomationStore) SetFilters(ctx context.Context, status models.AutomationStatus, query string) error {
	s.mu.Lock()
	s.status, s.query = status, query
	s.mu.Unlock()
	return s.Load(ctx)
}

// SetSearch records the query and reloads after typing pauses. Responses
// are applied in arrival order.
func (s *AutomationStore) SetSearch(ctx context.Context, query string) {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
	s.search.Trigger(func() { _ = s.Load(ctx) })
}

// Toggle flips active and inactive immediately and reverts if the server
// rejects the change.
func (s *AutomationStore) Toggle(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("automation %s is not loaded", id)
	}
	prev := s.items[idx].Status
	next, ok := prev.Toggled()
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("automation %s is %s and cannot be toggled", id, prev)
	}
	s.items[idx].Status = next
	s.mu.Unlock()

	updated, err := s.api.SetAutomationStatus(ctx, id, next)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = s.index(id)
	if err != nil {
		if idx >= 0 {
			s.items[idx].Status = prev
		}
		s.toaster.Toast(Toast{Title: "Could not update automation", Description: err.Error(), Variant: ToastDestructive})
		return err
	}
	if idx >= 0 {
		s.items[idx] = updated
	}
	return nil
}

func (s *AutomationStore) index(id string) int {
	for i, a := range s.items {
		if a.ID == id {
			return i
		}
	}
	return -1
}
