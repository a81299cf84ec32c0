package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"socialbot-gateway/internal/models"
	"socialbot-gateway/pkg/apperror"
	dto "socialbot-gateway/pkg/models"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) List(ctx context.Context, platform dto.Platform) ([]dto.SocialAccount, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if platform != "" {
		q = q.Where("platform = ?", string(platform))
	}
	var rows []models.SocialAccount
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]dto.SocialAccount, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

func (r *AccountRepository) Get(ctx context.Context, id string) (dto.SocialAccount, error) {
	var row models.SocialAccount
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return dto.SocialAccount{}, notFound(err, "social account", id)
	}
	return row.ToDomain(), nil
}

func (r *AccountRepository) Create(ctx context.Context, req dto.SocialAccountRequest) (dto.SocialAccount, error) {
	var existing int64
	r.db.WithContext(ctx).Model(&models.SocialAccount{}).Where("external_id = ?", req.ExternalID).Count(&existing)
	if existing > 0 {
		return dto.SocialAccount{}, apperror.ConflictError(fmt.Sprintf("account %s is already connected", req.ExternalID))
	}
	row := models.SocialAccount{
		ID:            newID("acc"),
		Platform:      string(req.Platform),
		Username:      strings.TrimPrefix(strings.TrimSpace(req.Username), "@"),
		ExternalID:    req.ExternalID,
		ProfilePicURL: req.ProfilePicURL,
		Connected:     true,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dto.SocialAccount{}, fmt.Errorf("create social account: %w", err)
	}
	return row.ToDomain(), nil
}

func (r *AccountRepository) Update(ctx context.Context, id string, req dto.SocialAccountRequest) (dto.SocialAccount, error) {
	updates := map[string]interface{}{}
	if req.Username != "" {
		updates["username"] = strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	}
	if req.ProfilePicURL != "" {
		updates["profile_pic_url"] = req.ProfilePicURL
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.SocialAccount{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return dto.SocialAccount{}, res.Error
		}
	}
	return r.Get(ctx, id)
}

// Delete disconnects an account and pauses the automations that used it.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.SocialAccount{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFoundError(fmt.Sprintf("social account %s not found", id))
		}
		return tx.Model(&models.Automation{}).
			Where("social_account_id = ? AND status = ?", id, string(dto.StatusActive)).
			Update("status", string(dto.StatusPaused)).Error
	})
}
