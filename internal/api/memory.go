package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"socialbot-gateway/internal/database"
	"socialbot-gateway/pkg/models"
)

// MemoryHandler exposes what a bot remembers about the people it talks to.
type MemoryHandler struct {
	memory *database.MemoryRepository
	intel  *database.IntelligenceRepository
}

func NewMemoryHandler(memory *database.MemoryRepository, intel *database.IntelligenceRepository) *MemoryHandler {
	return &MemoryHandler{memory: memory, intel: intel}
}

// bot resolves :id and writes the error response when the bot is unknown.
func (h *MemoryHandler) bot(c *gin.Context) (string, bool) {
	bot, err := h.intel.GetBot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return bot.ID, true
}

type interactionRequest struct {
	ExternalUserID string   `json:"external_user_id"`
	Username       string   `json:"username"`
	Summary        string   `json:"summary"`
	Facts          []string `json:"facts"`
}

// RecordInteraction counts one conversation with a user and refreshes what
// the bot remembers about them.
func (h *MemoryHandler) RecordInteraction(c *gin.Context) {
	botID, ok := h.bot(c)
	if !ok {
		return
	}
	var req interactionRequest
	if !bindJSON(c, &req) {
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.ExternalUserID, validation.Required),
		validation.Field(&req.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&req.Facts, validation.Length(0, 50)),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.memory.Record(c.Request.Context(), models.MemoryUser{
		BotID:          botID,
		ExternalUserID: req.ExternalUserID,
		Username:       req.Username,
		Summary:        req.Summary,
		Facts:          req.Facts,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *MemoryHandler) Stats(c *gin.Context) {
	botID, ok := h.bot(c)
	if !ok {
		return
	}
	stats, err := h.memory.Stats(c.Request.Context(), botID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

func (h *MemoryHandler) Users(c *gin.Context) {
	botID, ok := h.bot(c)
	if !ok {
		return
	}
	page, perPage := pageParams(c)
	users, total, err := h.memory.List(c.Request.Context(), models.MemoryListParams{
		BotID:   botID,
		Stage:   models.RelationshipStage(c.Query("stage")),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, users, page, perPage, total)
}

func (h *MemoryHandler) User(c *gin.Context) {
	botID, ok := h.bot(c)
	if !ok {
		return
	}
	u, err := h.memory.Get(c.Request.Context(), botID, c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *MemoryHandler) Search(c *gin.Context) {
	botID, ok := h.bot(c)
	if !ok {
		return
	}
	results, err := h.memory.Search(c.Request.Context(), botID, c.Query("q"), intQuery(c, "limit", database.DefaultPerPage))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, results)
}

// Export writes every remembered user of the bot as CSV.
func (h *MemoryHandler) Export(c *gin.Context) {
	botID, ok := h.bot(c)
	if !ok {
		return
	}
	var all []models.MemoryUser
	for page := 1; ; page++ {
		users, total, err := h.memory.List(c.Request.Context(), models.MemoryListParams{BotID: botID, Page: page, PerPage: database.MaxPerPage})
		if err != nil {
			respondError(c, err)
			return
		}
		all = append(all, users...)
		if int64(len(all)) >= total || len(users) == 0 {
			break
		}
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=memory-%s.csv", botID))
	c.Status(http.StatusOK)
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Username", "External ID", "Stage", "Interactions", "Summary", "Facts", "Last Interaction"})
	for _, u := range all {
		_ = w.Write([]string{
			u.Username,
			u.ExternalUserID,
			string(u.Stage),
			strconv.Itoa(u.InteractionCount),
			u.Summary,
			strings.Join(u.Facts, "; "),
			u.LastInteractionAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}
