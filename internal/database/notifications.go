package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"socialbot-gateway/internal/models"
	dto "socialbot-gateway/pkg/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// List returns a page of notifications, the total matching the filter and
// the overall unread count.
func (r *NotificationRepository) List(ctx context.Context, p dto.NotificationListParams) ([]dto.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{})
	if p.UnreadOnly {
		q = q.Where("read = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Notification
	if err := q.Order("created_at DESC, id DESC").Scopes(paginate(p.Page, p.PerPage)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]dto.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, total, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("read = ?", false).Count(&n).Error
	return n, err
}

func (r *NotificationRepository) Create(ctx context.Context, n dto.Notification) (dto.Notification, error) {
	row := models.Notification{
		Type:  string(n.Type),
		Title: n.Title,
		Body:  n.Body,
		Link:  n.Link,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dto.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return row.ToDomain(), nil
}

// MarkRead flags the given ids as read and reports how many changed.
func (r *NotificationRepository) MarkRead(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id IN ? AND read = ?", ids, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("read = ?", false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
