package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialbot-gateway/internal/database"
	"socialbot-gateway/internal/voicedna"
	"socialbot-gateway/pkg/apperror"
	"socialbot-gateway/pkg/models"
)

// AnalysisQueue accepts profiles for background analysis.
type AnalysisQueue interface {
	Enqueue(id string) error
}

// VoiceDNAStatusNotifier pushes profile status changes.
type VoiceDNAStatusNotifier interface {
	NotifyVoiceDNA(p models.VoiceDNAProfile)
}

type VoiceDNAHandler struct {
	profiles   *database.VoiceDNARepository
	intel      *database.IntelligenceRepository
	queue      AnalysisQueue
	notifier   VoiceDNAStatusNotifier
	minSamples int
}

func NewVoiceDNAHandler(profiles *database.VoiceDNARepository, intel *database.IntelligenceRepository, queue AnalysisQueue, notifier VoiceDNAStatusNotifier, minSamples int) *VoiceDNAHandler {
	return &VoiceDNAHandler{profiles: profiles, intel: intel, queue: queue, notifier: notifier, minSamples: minSamples}
}

// AutoInfer stores the samples and queues the analysis. The response is the
// queued profile; clients follow it by polling or on the voice_dna_status
// channel.
func (h *VoiceDNAHandler) AutoInfer(c *gin.Context) {
	var req models.AutoInferRequest
	if !bindJSON(c, &req) {
		return
	}
	samples := make([]string, 0, len(req.Samples))
	for _, s := range req.Samples {
		if s = strings.TrimSpace(s); s != "" {
			samples = append(samples, s)
		}
	}
	req.Samples = samples
	err := validation.ValidateStruct(&req,
		validation.Field(&req.BotID, validation.Required),
		validation.Field(&req.Samples, validation.Required, validation.Length(h.minSamples, 50).
			Error(fmt.Sprintf("between %d and 50 non-empty samples are required", h.minSamples))),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.intel.GetBot(ctx, req.BotID); err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.profiles.Create(ctx, req.BotID, req.Samples)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.queue.Enqueue(profile.ID); err != nil {
		logrus.WithField("profile_id", profile.ID).Warnf("enqueue voice dna: %v", err)
		profile, err = h.profiles.SetStatus(context.Background(), profile.ID, models.VoiceDNAFailed, nil, "analysis queue is full, try again later")
		if err != nil {
			respondError(c, err)
			return
		}
	}
	h.notifier.NotifyVoiceDNA(profile)
	respond(c, http.StatusAccepted, profile)
}

func (h *VoiceDNAHandler) Status(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

// Review returns the fingerprint with example replies and feedback so far.
func (h *VoiceDNAHandler) Review(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.readyProfile(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	count, avg, err := h.profiles.FeedbackStats(ctx, p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, models.VoiceDNAReview{
		Profile:        p,
		ExampleReplies: voicedna.ExampleReplies(*p.Fingerprint),
		FeedbackCount:  count,
		AverageRating:  avg,
	})
}

func (h *VoiceDNAHandler) Feedback(c *gin.Context) {
	var req models.VoiceDNAFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.ValidateStruct(&req, validation.Field(&req.Rating, validation.Required, validation.Min(1), validation.Max(5))); err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	p, err := h.readyProfile(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	fb, err := h.profiles.AddFeedback(ctx, p.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, fb)
}

// Adjust nudges traits and tone tags of a ready fingerprint.
func (h *VoiceDNAHandler) Adjust(c *gin.Context) {
	var req models.VoiceDNAAdjustRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	p, err := h.readyProfile(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	fp, err := voicedna.Adjust(*p.Fingerprint, req)
	if err != nil {
		respondError(c, apperror.ValidationError(err.Error()))
		return
	}
	updated, err := h.profiles.SetStatus(ctx, p.ID, models.VoiceDNAReady, &fp, "")
	if err != nil {
		respondError(c, err)
		return
	}
	h.notifier.NotifyVoiceDNA(updated)
	respond(c, http.StatusOK, updated)
}

func (h *VoiceDNAHandler) readyProfile(ctx context.Context, id string) (models.VoiceDNAProfile, error) {
	p, err := h.profiles.Get(ctx, id)
	if err != nil {
		return p, err
	}
	if p.Status != models.VoiceDNAReady || p.Fingerprint == nil {
		return p, apperror.ConflictError("voice dna profile " + id + " is " + string(p.Status) + ", not ready")
	}
	return p, nil
}
