package api

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialbot-gateway/internal/database"
	"socialbot-gateway/pkg/models"
)

type CreditHandler struct {
	credits       *database.CreditRepository
	notifications *database.NotificationRepository
	notifier      Notifier
	pricing       models.Pricing
	lowThreshold  int
}

func NewCreditHandler(credits *database.CreditRepository, notifications *database.NotificationRepository, notifier Notifier, pricing models.Pricing, lowThreshold int) *CreditHandler {
	return &CreditHandler{
		credits:       credits,
		notifications: notifications,
		notifier:      notifier,
		pricing:       pricing,
		lowThreshold:  lowThreshold,
	}
}

type chargeRequest struct {
	AutomationID string            `json:"automation_id"`
	ActionType   models.ActionType `json:"action_type"`
	Amount       int               `json:"amount"`
	Description  string            `json:"description,omitempty"`
}

type creditRequest struct {
	Type        models.CreditTransactionType `json:"type"`
	Amount      int                          `json:"amount"`
	Description string                       `json:"description,omitempty"`
}

func (h *CreditHandler) Balance(c *gin.Context) {
	b, err := h.credits.Balance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, b)
}

func (h *CreditHandler) Transactions(c *gin.Context) {
	page, perPage := pageParams(c)
	items, total, err := h.credits.Transactions(c.Request.Context(), models.TransactionListParams{
		Type:    models.CreditTransactionType(c.Query("type")),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, items, page, perPage, total)
}

// Usage aggregates spend over ?days= (default 30, at most 365).
func (h *CreditHandler) Usage(c *gin.Context) {
	days := intQuery(c, "days", 30)
	if err := validation.Validate(days, validation.Required, validation.Min(1), validation.Max(365)); err != nil {
		respondError(c, validation.Errors{"days": err})
		return
	}
	usage, err := h.credits.Usage(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, usage)
}

func (h *CreditHandler) Pricing(c *gin.Context) {
	respond(c, http.StatusOK, h.pricing)
}

// Charge records usage reported by the execution service. Falling below the
// low-balance threshold raises a credits_low notification once per crossing.
func (h *CreditHandler) Charge(c *gin.Context) {
	var req chargeRequest
	if !bindJSON(c, &req) {
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.ActionType, validation.Required, validation.By(func(v interface{}) error {
			if !req.ActionType.Valid() {
				return fmt.Errorf("unknown action type %q", req.ActionType)
			}
			return nil
		})),
		validation.Field(&req.Amount, validation.Required, validation.Min(1)),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	tx, err := h.credits.Charge(ctx, req.Amount, req.AutomationID, req.ActionType, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	before := tx.BalanceAfter + req.Amount
	if before >= h.lowThreshold && tx.BalanceAfter < h.lowThreshold {
		h.raiseLowCredits(ctx, tx.BalanceAfter)
	}
	respond(c, http.StatusCreated, tx)
}

// Credit adds a top-up, refund or adjustment.
func (h *CreditHandler) Credit(c *gin.Context) {
	var req creditRequest
	if !bindJSON(c, &req) {
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Type, validation.Required, validation.In(models.TxTopUp, models.TxRefund, models.TxAdjustment)),
		validation.Field(&req.Amount, validation.Required, validation.Min(1)),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	tx, err := h.credits.Credit(c.Request.Context(), req.Type, req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, tx)
}

func (h *CreditHandler) raiseLowCredits(ctx context.Context, balance int) {
	n, err := h.notifications.Create(ctx, models.Notification{
		Type:  models.NotificationCreditsLow,
		Title: "Credits running low",
		Body:  fmt.Sprintf("Only %d credits left. AI replies stop when the balance reaches zero.", balance),
		Link:  "/billing",
	})
	if err != nil {
		logrus.Errorf("create low credits notification: %v", err)
		return
	}
	h.notifier.NotifyNotification(n)
}
