package api

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"socialbot-gateway/internal/database"
	"socialbot-gateway/pkg/models"
)

// AccountHandler manages the connected social accounts automations run on.
type AccountHandler struct {
	accounts *database.AccountRepository
}

func NewAccountHandler(accounts *database.AccountRepository) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) List(c *gin.Context) {
	items, err := h.accounts.List(c.Request.Context(), models.Platform(c.Query("platform")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, items)
}

func (h *AccountHandler) Get(c *gin.Context) {
	acc, err := h.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, acc)
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req models.SocialAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Platform, validation.Required, validation.In(platformValues()...)),
		validation.Field(&req.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&req.ExternalID, validation.Required),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	acc, err := h.accounts.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, acc)
}

func (h *AccountHandler) Update(c *gin.Context) {
	var req models.SocialAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	acc, err := h.accounts.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, acc)
}

// Delete disconnects the account; its active automations are paused.
func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id"), "deleted": true})
}

func platformValues() []interface{} {
	out := make([]interface{}, len(models.Platforms))
	for i, p := range models.Platforms {
		out[i] = p
	}
	return out
}
