package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"socialbot-gateway/internal/models"
	"socialbot-gateway/pkg/apperror"
	dto "socialbot-gateway/pkg/models"
)

type AutomationRepository struct {
	db *gorm.DB
}

func NewAutomationRepository(db *gorm.DB) *AutomationRepository {
	return &AutomationRepository{db: db}
}

// List filters by status and a case-insensitive search over name and
// description, newest first.
func (r *AutomationRepository) List(ctx context.Context, p dto.AutomationListParams) ([]dto.Automation, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Automation{})
	if p.Status != "" {
		q = q.Where("status = ?", string(p.Status))
	}
	if p.Search != "" {
		pattern := likePattern(p.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Automation
	if err := q.Order("updated_at DESC").Scopes(paginate(p.Page, p.PerPage)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]dto.Automation, 0, len(rows))
	for _, row := range rows {
		a, err := row.ToDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, nil
}

func (r *AutomationRepository) Get(ctx context.Context, id string) (dto.Automation, error) {
	var row models.Automation
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return dto.Automation{}, notFound(err, "automation", id)
	}
	return row.ToDomain()
}

func (r *AutomationRepository) Create(ctx context.Context, a dto.Automation) (dto.Automation, error) {
	if a.ID == "" {
		a.ID = newID("auto")
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	row, err := models.NewAutomation(a)
	if err != nil {
		return dto.Automation{}, err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dto.Automation{}, fmt.Errorf("create automation: %w", err)
	}
	return row.ToDomain()
}

// Save overwrites every column of an existing automation.
func (r *AutomationRepository) Save(ctx context.Context, a dto.Automation) (dto.Automation, error) {
	var existing models.Automation
	if err := r.db.WithContext(ctx).Select("id", "created_at").First(&existing, "id = ?", a.ID).Error; err != nil {
		return dto.Automation{}, notFound(err, "automation", a.ID)
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	row, err := models.NewAutomation(a)
	if err != nil {
		return dto.Automation{}, err
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return dto.Automation{}, fmt.Errorf("update automation: %w", err)
	}
	return row.ToDomain()
}

func (r *AutomationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Automation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundError(fmt.Sprintf("automation %s not found", id))
	}
	return nil
}
