package api

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gin-gonic/gin"

	"socialbot-gateway/internal/database"
	"socialbot-gateway/pkg/models"
)

// IntelligenceHandler serves bots, brand voices, knowledge sources, the LLM
// configuration and flagged-reply moderation.
type IntelligenceHandler struct {
	intel         *database.IntelligenceRepository
	notifications *database.NotificationRepository
	notifier      Notifier
}

func NewIntelligenceHandler(intel *database.IntelligenceRepository, notifications *database.NotificationRepository, notifier Notifier) *IntelligenceHandler {
	return &IntelligenceHandler{intel: intel, notifications: notifications, notifier: notifier}
}

func (h *IntelligenceHandler) ListBots(c *gin.Context) {
	bots, err := h.intel.ListBots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, bots)
}

func (h *IntelligenceHandler) GetBot(c *gin.Context) {
	bot, err := h.intel.GetBot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, bot)
}

func (h *IntelligenceHandler) CreateBot(c *gin.Context) {
	var req models.BotRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.ValidateStruct(&req, validation.Field(&req.Name, validation.Required, validation.Length(1, 100))); err != nil {
		respondError(c, err)
		return
	}
	bot, err := h.intel.CreateBot(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, bot)
}

func (h *IntelligenceHandler) UpdateBot(c *gin.Context) {
	var req models.BotRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.ValidateStruct(&req, validation.Field(&req.Name, validation.Length(0, 100))); err != nil {
		respondError(c, err)
		return
	}
	bot, err := h.intel.UpdateBot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, bot)
}

func (h *IntelligenceHandler) DeleteBot(c *gin.Context) {
	if err := h.intel.DeleteBot(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id"), "deleted": true})
}

func (h *IntelligenceHandler) ListBrandVoices(c *gin.Context) {
	voices, err := h.intel.ListBrandVoices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, voices)
}

func (h *IntelligenceHandler) CreateBrandVoice(c *gin.Context) {
	var req models.BrandVoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.ValidateStruct(&req, validation.Field(&req.Name, validation.Required, validation.Length(1, 100))); err != nil {
		respondError(c, err)
		return
	}
	voice, err := h.intel.CreateBrandVoice(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, voice)
}

func (h *IntelligenceHandler) DeleteBrandVoice(c *gin.Context) {
	if err := h.intel.DeleteBrandVoice(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id"), "deleted": true})
}

func (h *IntelligenceHandler) ListKnowledge(c *gin.Context) {
	items, err := h.intel.ListKnowledgeSources(c.Request.Context(), c.Query("bot_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, items)
}

func (h *IntelligenceHandler) CreateKnowledge(c *gin.Context) {
	var req models.KnowledgeSourceRequest
	if !bindJSON(c, &req) {
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.BotID, validation.Required),
		validation.Field(&req.Kind, validation.Required, validation.In(models.KnowledgeText, models.KnowledgeURL, models.KnowledgeFAQ)),
		validation.Field(&req.Title, validation.Required),
		validation.Field(&req.URL, validation.When(req.Kind == models.KnowledgeURL, validation.Required, is.URL)),
		validation.Field(&req.Content, validation.When(req.Kind != models.KnowledgeURL, validation.Required)),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	ks, err := h.intel.CreateKnowledgeSource(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, ks)
}

func (h *IntelligenceHandler) DeleteKnowledge(c *gin.Context) {
	if err := h.intel.DeleteKnowledgeSource(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id"), "deleted": true})
}

func (h *IntelligenceHandler) GetLLMConfig(c *gin.Context) {
	cfg, err := h.intel.LLMConfig(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, cfg)
}

// SaveLLMConfig switches between platform inference and a bring-your-own
// model. BYOM needs a provider and model; the key is never echoed back.
func (h *IntelligenceHandler) SaveLLMConfig(c *gin.Context) {
	var req models.LLMConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	byom := req.Mode == models.LLMModeBYOM
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Mode, validation.Required, validation.In(models.LLMModePlatform, models.LLMModeBYOM)),
		validation.Field(&req.Provider, validation.When(byom, validation.Required)),
		validation.Field(&req.Model, validation.When(byom, validation.Required)),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	if byom && req.APIKey == "" {
		current, err := h.intel.LLMConfig(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		if !current.HasAPIKey {
			respondError(c, validation.Errors{"api_key": validation.ErrRequired})
			return
		}
	}
	cfg, err := h.intel.SaveLLMConfig(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, cfg)
}

func (h *IntelligenceHandler) ListFlaggedReplies(c *gin.Context) {
	items, err := h.intel.ListFlaggedReplies(c.Request.Context(), models.FlaggedReplyStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, items)
}

// FlagReply queues a proposed reply for human review and notifies the owner.
func (h *IntelligenceHandler) FlagReply(c *gin.Context) {
	var req models.FlaggedReply
	if !bindJSON(c, &req) {
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.BotID, validation.Required),
		validation.Field(&req.IncomingText, validation.Required),
		validation.Field(&req.ProposedReply, validation.Required),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	flagged, err := h.intel.CreateFlaggedReply(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := h.notifications.Create(ctx, models.Notification{
		Type:  models.NotificationFlaggedReply,
		Title: "Reply needs review",
		Body:  fmt.Sprintf("A reply was held for review: %s", flagged.Reason),
		Link:  "/intelligence/flagged/" + flagged.ID,
	})
	if err == nil {
		h.notifier.NotifyNotification(n)
	}
	respond(c, http.StatusCreated, flagged)
}

func (h *IntelligenceHandler) ModerateReply(c *gin.Context) {
	var req models.ModerateReplyRequest
	if !bindJSON(c, &req) {
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Status, validation.Required, validation.In(models.FlaggedApproved, models.FlaggedRejected)),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	reply, err := h.intel.ModerateReply(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, reply)
}
