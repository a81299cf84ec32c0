package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialbot-gateway/internal/automation"
	"socialbot-gateway/internal/database"
	"socialbot-gateway/pkg/apperror"
	"socialbot-gateway/pkg/models"
)

type AutomationHandler struct {
	automations *database.AutomationRepository
	accounts    *database.AccountRepository
	intel       *database.IntelligenceRepository
	pricing     models.Pricing
}

func NewAutomationHandler(automations *database.AutomationRepository, accounts *database.AccountRepository, intel *database.IntelligenceRepository, pricing models.Pricing) *AutomationHandler {
	return &AutomationHandler{automations: automations, accounts: accounts, intel: intel, pricing: pricing}
}

// List returns automations, newest first, filtered by ?status= and ?search=.
func (h *AutomationHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)
	items, total, err := h.automations.List(c.Request.Context(), models.AutomationListParams{
		Status:  models.AutomationStatus(c.Query("status")),
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, items, page, perPage, total)
}

func (h *AutomationHandler) Get(c *gin.Context) {
	a, err := h.automations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, a)
}

func (h *AutomationHandler) Create(c *gin.Context) {
	var req models.CreateAutomationRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	automation.NormalizeCreateRequest(&req)
	if err := automation.ValidateCreateRequest(ctx, req); err != nil {
		respondError(c, err)
		return
	}
	if err := h.checkAccount(ctx, req.SocialAccountID, req.Platform); err != nil {
		respondError(c, err)
		return
	}

	credits, err := h.creditContext(ctx, req.BotID)
	if err != nil {
		respondError(c, err)
		return
	}
	a, err := h.automations.Create(ctx, models.Automation{
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		Platform:         req.Platform,
		SocialAccountID:  req.SocialAccountID,
		BotID:            req.BotID,
		Status:           req.Status,
		Trigger:          req.Trigger,
		Conditions:       req.Conditions,
		Actions:          req.Actions,
		EstimatedCredits: automation.CalculateCredits(req.Actions, credits),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	logrus.WithField("automation_id", a.ID).Infof("automation %q created as %s", a.Name, a.Status)
	respond(c, http.StatusCreated, a)
}

// Update applies a partial update. The merged automation is normalized and
// validated as a whole, so a trigger change must come with matching actions.
func (h *AutomationHandler) Update(c *gin.Context) {
	var req models.UpdateAutomationRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	a, err := h.automations.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Name != nil {
		a.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.BotID != nil {
		a.BotID = *req.BotID
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	if req.Trigger != nil {
		a.Trigger = *req.Trigger
	}
	if req.Conditions != nil {
		a.Conditions = *req.Conditions
	}
	if req.Actions != nil {
		a.Actions = *req.Actions
	}

	normalized := models.CreateAutomationRequest{Trigger: a.Trigger, Conditions: a.Conditions, Actions: a.Actions}
	automation.NormalizeCreateRequest(&normalized)
	a.Trigger, a.Conditions, a.Actions = normalized.Trigger, normalized.Conditions, normalized.Actions

	if err := automation.ValidateAutomation(ctx, a); err != nil {
		respondError(c, err)
		return
	}
	credits, err := h.creditContext(ctx, a.BotID)
	if err != nil {
		respondError(c, err)
		return
	}
	a.EstimatedCredits = automation.CalculateCredits(a.Actions, credits)

	saved, err := h.automations.Save(ctx, a)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, saved)
}

func (h *AutomationHandler) Delete(c *gin.Context) {
	if err := h.automations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id"), "deleted": true})
}

// Estimate prices a set of actions with the account's LLM mode and the
// bot's knowledge sources.
func (h *AutomationHandler) Estimate(c *gin.Context) {
	var req models.CreditEstimateRequest
	if !bindJSON(c, &req) {
		return
	}
	credits, err := h.creditContext(c.Request.Context(), req.BotID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, automation.Estimate(req.Actions, credits))
}

func (h *AutomationHandler) creditContext(ctx context.Context, botID string) (automation.CreditContext, error) {
	cfg, err := h.intel.LLMConfig(ctx)
	if err != nil {
		return automation.CreditContext{}, err
	}
	credits := automation.CreditContext{Pricing: h.pricing, Mode: cfg.Mode}
	if botID != "" {
		if credits.HasKnowledge, err = h.intel.HasKnowledge(ctx, botID); err != nil {
			return automation.CreditContext{}, err
		}
	}
	return credits, nil
}

func (h *AutomationHandler) checkAccount(ctx context.Context, id string, platform models.Platform) error {
	acc, err := h.accounts.Get(ctx, id)
	var nf apperror.NotFoundError
	if errors.As(err, &nf) {
		return validation.Errors{"social_account_id": errors.New("social account not found")}
	}
	if err != nil {
		return err
	}
	if acc.Platform != platform {
		return validation.Errors{"social_account_id": errors.New("social account belongs to another platform")}
	}
	return nil
}
