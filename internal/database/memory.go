package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"socialbot-gateway/internal/models"
	dto "socialbot-gateway/pkg/models"
)

type MemoryRepository struct {
	db *gorm.DB
}

func NewMemoryRepository(db *gorm.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

func (r *MemoryRepository) Stats(ctx context.Context, botID string) (dto.MemoryStats, error) {
	stats := dto.MemoryStats{ByStage: make(map[dto.RelationshipStage]int64, len(dto.RelationshipStages))}
	for _, s := range dto.RelationshipStages {
		stats.ByStage[s] = 0
	}

	var rows []struct {
		Stage        string
		Users        int64
		Interactions int64
	}
	err := r.db.WithContext(ctx).Model(&models.MemoryUser{}).
		Where("bot_id = ?", botID).
		Select("stage, COUNT(*) AS users, COALESCE(SUM(interaction_count), 0) AS interactions").
		Group("stage").Scan(&rows).Error
	if err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.ByStage[dto.RelationshipStage(row.Stage)] = row.Users
		stats.TotalUsers += row.Users
		stats.TotalInteractions += row.Interactions
	}

	since := time.Now().UTC().AddDate(0, 0, -7)
	err = r.db.WithContext(ctx).Model(&models.MemoryUser{}).
		Where("bot_id = ? AND last_interaction_at >= ?", botID, since).
		Count(&stats.ActiveLast7Days).Error
	return stats, err
}

func (r *MemoryRepository) List(ctx context.Context, p dto.MemoryListParams) ([]dto.MemoryUser, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.MemoryUser{}).Where("bot_id = ?", p.BotID)
	if p.Stage != "" {
		q = q.Where("stage = ?", string(p.Stage))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.MemoryUser
	if err := q.Order("last_interaction_at DESC").Scopes(paginate(p.Page, p.PerPage)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]dto.MemoryUser, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, total, nil
}

func (r *MemoryRepository) Get(ctx context.Context, botID, id string) (dto.MemoryUser, error) {
	var row models.MemoryUser
	if err := r.db.WithContext(ctx).First(&row, "bot_id = ? AND id = ?", botID, id).Error; err != nil {
		return dto.MemoryUser{}, notFound(err, "memory user", id)
	}
	return row.ToDomain(), nil
}

// Search matches usernames, summaries and remembered facts. Matched lists
// the fields that contained the query.
func (r *MemoryRepository) Search(ctx context.Context, botID, query string, limit int) ([]dto.MemorySearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.MemorySearchResult{}, nil
	}
	if limit < 1 || limit > MaxPerPage {
		limit = DefaultPerPage
	}
	pattern := likePattern(query)
	var rows []models.MemoryUser
	err := r.db.WithContext(ctx).
		Where("bot_id = ?", botID).
		Where("LOWER(username) LIKE ? OR LOWER(summary) LIKE ? OR LOWER(facts) LIKE ?", pattern, pattern, pattern).
		Order("last_interaction_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	out := make([]dto.MemorySearchResult, 0, len(rows))
	for _, row := range rows {
		u := row.ToDomain()
		res := dto.MemorySearchResult{User: u, Matched: []string{}}
		if strings.Contains(strings.ToLower(u.Username), needle) {
			res.Matched = append(res.Matched, "username")
		}
		if strings.Contains(strings.ToLower(u.Summary), needle) {
			res.Matched = append(res.Matched, "summary")
		}
		for _, f := range u.Facts {
			if strings.Contains(strings.ToLower(f), needle) {
				res.Matched = append(res.Matched, "facts")
				break
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// Record upserts a memory entry after an interaction and advances its
// relationship stage by interaction count.
func (r *MemoryRepository) Record(ctx context.Context, u dto.MemoryUser) (dto.MemoryUser, error) {
	var row models.MemoryUser
	err := r.db.WithContext(ctx).
		Where("bot_id = ? AND external_user_id = ?", u.BotID, u.ExternalUserID).
		First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.MemoryUser{}, err
	}
	if row.ID == "" {
		row = models.MemoryUser{ID: newID("mem"), BotID: u.BotID, ExternalUserID: u.ExternalUserID}
	}
	row.Username = u.Username
	row.InteractionCount++
	if u.InteractionCount > row.InteractionCount {
		row.InteractionCount = u.InteractionCount
	}
	if u.Summary != "" {
		row.Summary = u.Summary
	}
	if u.Facts != nil {
		row.Facts = models.EncodeText(u.Facts)
	}
	row.Stage = string(StageFor(row.InteractionCount))
	row.LastInteractionAt = time.Now().UTC()
	if !u.LastInteractionAt.IsZero() {
		row.LastInteractionAt = u.LastInteractionAt
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return dto.MemoryUser{}, fmt.Errorf("save memory user: %w", err)
	}
	return row.ToDomain(), nil
}

// StageFor maps an interaction count onto a relationship stage.
func StageFor(interactions int) dto.RelationshipStage {
	switch {
	case interactions >= 50:
		return dto.StageAdvocate
	case interactions >= 20:
		return dto.StageLoyal
	case interactions >= 8:
		return dto.StageEngaged
	case interactions >= 3:
		return dto.StageCasual
	}
	return dto.StageNew
}
