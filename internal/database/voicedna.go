package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"socialbot-gateway/internal/models"
	dto "socialbot-gateway/pkg/models"
)

type VoiceDNARepository struct {
	db *gorm.DB
}

func NewVoiceDNARepository(db *gorm.DB) *VoiceDNARepository {
	return &VoiceDNARepository{db: db}
}

// Create queues a new analysis over the given samples.
func (r *VoiceDNARepository) Create(ctx context.Context, botID string, samples []string) (dto.VoiceDNAProfile, error) {
	row := models.VoiceDNAProfile{
		ID:      newID("vdna"),
		BotID:   botID,
		Status:  string(dto.VoiceDNAQueued),
		Samples: models.EncodeText(samples),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dto.VoiceDNAProfile{}, fmt.Errorf("create voice dna profile: %w", err)
	}
	return row.ToDomain(), nil
}

func (r *VoiceDNARepository) Get(ctx context.Context, id string) (dto.VoiceDNAProfile, error) {
	row, err := r.row(ctx, id)
	if err != nil {
		return dto.VoiceDNAProfile{}, err
	}
	return row.ToDomain(), nil
}

func (r *VoiceDNARepository) row(ctx context.Context, id string) (models.VoiceDNAProfile, error) {
	var row models.VoiceDNAProfile
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return row, notFound(err, "voice dna profile", id)
	}
	return row, nil
}

// Samples returns the writing samples a profile was queued with.
func (r *VoiceDNARepository) Samples(ctx context.Context, id string) ([]string, error) {
	row, err := r.row(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.SampleList(), nil
}

// SetStatus moves a profile through its lifecycle. The fingerprint is only
// written when non-nil.
func (r *VoiceDNARepository) SetStatus(ctx context.Context, id string, status dto.VoiceDNAStatus, fp *dto.VoiceFingerprint, errMsg string) (dto.VoiceDNAProfile, error) {
	updates := map[string]interface{}{
		"status": string(status),
		"error":  errMsg,
	}
	if fp != nil {
		updates["fingerprint"] = models.EncodeText(fp)
	}
	res := r.db.WithContext(ctx).Model(&models.VoiceDNAProfile{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return dto.VoiceDNAProfile{}, res.Error
	}
	return r.Get(ctx, id)
}

func (r *VoiceDNARepository) AddFeedback(ctx context.Context, profileID string, req dto.VoiceDNAFeedbackRequest) (dto.VoiceDNAFeedback, error) {
	if _, err := r.row(ctx, profileID); err != nil {
		return dto.VoiceDNAFeedback{}, err
	}
	row := models.VoiceDNAFeedback{ProfileID: profileID, Rating: req.Rating, Comment: req.Comment}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dto.VoiceDNAFeedback{}, fmt.Errorf("create feedback: %w", err)
	}
	return row.ToDomain(), nil
}

// FeedbackStats returns the number of ratings and their average.
func (r *VoiceDNARepository) FeedbackStats(ctx context.Context, profileID string) (int, float64, error) {
	var stats struct {
		N   int
		Avg float64
	}
	err := r.db.WithContext(ctx).Model(&models.VoiceDNAFeedback{}).
		Select("COUNT(*) AS n, COALESCE(AVG(rating), 0) AS avg").
		Where("profile_id = ?", profileID).
		Scan(&stats).Error
	return stats.N, stats.Avg, err
}
