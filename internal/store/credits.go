package store

import (
	"context"
	"sync"

	"socialbot-gateway/internal/automation"
	"socialbot-gateway/pkg/models"
)

type CreditAPI interface {
	CreditBalance(ctx context.Context) (models.CreditBalance, error)
	CreditUsage(ctx context.Context, days int) (models.CreditUsage, error)
	Pricing(ctx context.Context) (models.Pricing, error)
	LLMConfig(ctx context.Context) (models.LLMConfig, error)
}

// CreditStore caches the balance, recent usage and the pricing tiers the
// builders price actions with.
type CreditStore struct {
	api     CreditAPI
	toaster Toaster

	mu      sync.Mutex
	balance models.CreditBalance
	usage   models.CreditUsage
	pricing models.Pricing
	mode    models.LLMMode
}

func NewCreditStore(api CreditAPI, toaster Toaster) *CreditStore {
	return &CreditStore{api: api, toaster: toaster, mode: models.LLMModePlatform}
}

// Load refreshes everything; the first failure is toasted and returned.
func (s *CreditStore) Load(ctx context.Context, usageDays int) error {
	balance, err := s.api.CreditBalance(ctx)
	if err == nil {
		var usage models.CreditUsage
		if usage, err = s.api.CreditUsage(ctx, usageDays); err == nil {
			var pricing models.Pricing
			if pricing, err = s.api.Pricing(ctx); err == nil {
				var cfg models.LLMConfig
				if cfg, err = s.api.LLMConfig(ctx); err == nil {
					s.mu.Lock()
					s.balance, s.usage, s.pricing, s.mode = balance, usage, pricing, cfg.Mode
					s.mu.Unlock()
					return nil
				}
			}
		}
	}
	s.toaster.Toast(Toast{Title: "Could not load credits", Description: err.Error(), Variant: ToastDestructive})
	return err
}

func (s *CreditStore) Balance() models.CreditBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

func (s *CreditStore) Usage() models.CreditUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// CreditContext is what the builders need to price actions locally.
func (s *CreditStore) CreditContext(hasKnowledge bool) automation.CreditContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return automation.CreditContext{Pricing: s.pricing, Mode: s.mode, HasKnowledge: hasKnowledge}
}
