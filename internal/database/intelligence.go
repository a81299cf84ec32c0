package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"socialbot-gateway/internal/models"
	"socialbot-gateway/pkg/apperror"
	dto "socialbot-gateway/pkg/models"
)

// IntelligenceRepository stores bots and what they know: brand voices,
// knowledge sources, the LLM configuration and flagged replies.
type IntelligenceRepository struct {
	db *gorm.DB
}

func NewIntelligenceRepository(db *gorm.DB) *IntelligenceRepository {
	return &IntelligenceRepository{db: db}
}

func (r *IntelligenceRepository) ListBots(ctx context.Context) ([]dto.Bot, error) {
	var rows []models.Bot
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	counts, err := r.knowledgeCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Bot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain(counts[row.ID]))
	}
	return out, nil
}

func (r *IntelligenceRepository) knowledgeCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		BotID string
		N     int
	}
	err := r.db.WithContext(ctx).Model(&models.KnowledgeSource{}).
		Select("bot_id, COUNT(*) AS n").Group("bot_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.BotID] = row.N
	}
	return counts, nil
}

func (r *IntelligenceRepository) GetBot(ctx context.Context, id string) (dto.Bot, error) {
	var row models.Bot
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return dto.Bot{}, notFound(err, "bot", id)
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.KnowledgeSource{}).Where("bot_id = ?", id).Count(&n).Error; err != nil {
		return dto.Bot{}, fmt.Errorf("count knowledge sources: %w", err)
	}
	return row.ToDomain(int(n)), nil
}

func (r *IntelligenceRepository) CreateBot(ctx context.Context, req dto.BotRequest) (dto.Bot, error) {
	row := models.Bot{
		ID:              newID("bot"),
		Name:            req.Name,
		SocialAccountID: req.SocialAccountID,
		BrandVoiceID:    req.BrandVoiceID,
		Enabled:         true,
	}
	enabled := req.Enabled == nil || *req.Enabled
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dto.Bot{}, fmt.Errorf("create bot: %w", err)
	}
	// enabled has a column default, so a false value is written separately.
	if !enabled {
		if err := r.db.WithContext(ctx).Model(&row).Update("enabled", false).Error; err != nil {
			return dto.Bot{}, fmt.Errorf("disable bot: %w", err)
		}
		row.Enabled = false
	}
	return row.ToDomain(0), nil
}

func (r *IntelligenceRepository) UpdateBot(ctx context.Context, id string, req dto.BotRequest) (dto.Bot, error) {
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.SocialAccountID != "" {
		updates["social_account_id"] = req.SocialAccountID
	}
	if req.BrandVoiceID != "" {
		updates["brand_voice_id"] = req.BrandVoiceID
	}
	if req.Enabled != nil {
		updates["enabled"] = *req.Enabled
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Bot{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return dto.Bot{}, res.Error
		}
	}
	return r.GetBot(ctx, id)
}

func (r *IntelligenceRepository) DeleteBot(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Bot{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFoundError(fmt.Sprintf("bot %s not found", id))
		}
		return tx.Delete(&models.KnowledgeSource{}, "bot_id = ?", id).Error
	})
}

// HasKnowledge reports whether a bot has any knowledge source attached.
func (r *IntelligenceRepository) HasKnowledge(ctx context.Context, botID string) (bool, error) {
	if botID == "" {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&models.KnowledgeSource{}).Where("bot_id = ?", botID).Count(&n).Error
	return n > 0, err
}

func (r *IntelligenceRepository) ListBrandVoices(ctx context.Context) ([]dto.BrandVoice, error) {
	var rows []models.BrandVoice
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]dto.BrandVoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

func (r *IntelligenceRepository) CreateBrandVoice(ctx context.Context, req dto.BrandVoiceRequest) (dto.BrandVoice, error) {
	tags := req.ToneTags
	if tags == nil {
		tags = []string{}
	}
	row := models.BrandVoice{
		ID:          newID("bv"),
		Name:        req.Name,
		Description: req.Description,
		ToneTags:    models.EncodeText(tags),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dto.BrandVoice{}, fmt.Errorf("create brand voice: %w", err)
	}
	return row.ToDomain(), nil
}

func (r *IntelligenceRepository) DeleteBrandVoice(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.BrandVoice{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundError(fmt.Sprintf("brand voice %s not found", id))
	}
	return nil
}

func (r *IntelligenceRepository) ListKnowledgeSources(ctx context.Context, botID string) ([]dto.KnowledgeSource, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if botID != "" {
		q = q.Where("bot_id = ?", botID)
	}
	var rows []models.KnowledgeSource
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]dto.KnowledgeSource, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

func (r *IntelligenceRepository) CreateKnowledgeSource(ctx context.Context, req dto.KnowledgeSourceRequest) (dto.KnowledgeSource, error) {
	if _, err := r.GetBot(ctx, req.BotID); err != nil {
		return dto.KnowledgeSource{}, err
	}
	row := models.KnowledgeSource{
		ID:      newID("ks"),
		BotID:   req.BotID,
		Kind:    string(req.Kind),
		Title:   req.Title,
		Content: req.Content,
		URL:     req.URL,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dto.KnowledgeSource{}, fmt.Errorf("create knowledge source: %w", err)
	}
	return row.ToDomain(), nil
}

func (r *IntelligenceRepository) DeleteKnowledgeSource(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.KnowledgeSource{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundError(fmt.Sprintf("knowledge source %s not found", id))
	}
	return nil
}

const llmConfigID = 1

// LLMConfig returns the stored configuration, or platform mode when none
// has been saved.
func (r *IntelligenceRepository) LLMConfig(ctx context.Context) (dto.LLMConfig, error) {
	var row models.LLMConfig
	err := r.db.WithContext(ctx).First(&row, llmConfigID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.LLMConfig{Mode: dto.LLMModePlatform}, nil
	}
	if err != nil {
		return dto.LLMConfig{}, err
	}
	return row.ToDomain(), nil
}

// SaveLLMConfig upserts the configuration. An empty APIKey keeps the stored
// key; switching to platform mode clears it.
func (r *IntelligenceRepository) SaveLLMConfig(ctx context.Context, req dto.LLMConfigRequest) (dto.LLMConfig, error) {
	var row models.LLMConfig
	err := r.db.WithContext(ctx).First(&row, llmConfigID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.LLMConfig{}, err
	}
	row.ID = llmConfigID
	row.Mode = string(req.Mode)
	row.Provider = req.Provider
	row.Model = req.Model
	if req.APIKey != "" {
		row.APIKey = req.APIKey
	}
	if req.Mode == dto.LLMModePlatform {
		row.APIKey = ""
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return dto.LLMConfig{}, fmt.Errorf("save llm config: %w", err)
	}
	return row.ToDomain(), nil
}

func (r *IntelligenceRepository) ListFlaggedReplies(ctx context.Context, status dto.FlaggedReplyStatus) ([]dto.FlaggedReply, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var rows []models.FlaggedReply
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]dto.FlaggedReply, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

func (r *IntelligenceRepository) CreateFlaggedReply(ctx context.Context, f dto.FlaggedReply) (dto.FlaggedReply, error) {
	row := models.FlaggedReply{
		ID:            newID("fr"),
		BotID:         f.BotID,
		AutomationID:  f.AutomationID,
		IncomingText:  f.IncomingText,
		ProposedReply: f.ProposedReply,
		Reason:        f.Reason,
		Status:        string(dto.FlaggedPending),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dto.FlaggedReply{}, fmt.Errorf("create flagged reply: %w", err)
	}
	return row.ToDomain(), nil
}

// ModerateReply resolves a pending flagged reply. Resolved replies cannot be
// moderated again.
func (r *IntelligenceRepository) ModerateReply(ctx context.Context, id string, req dto.ModerateReplyRequest) (dto.FlaggedReply, error) {
	var row models.FlaggedReply
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return dto.FlaggedReply{}, notFound(err, "flagged reply", id)
	}
	if row.Status != string(dto.FlaggedPending) {
		return dto.FlaggedReply{}, apperror.ConflictError(fmt.Sprintf("flagged reply %s is already %s", id, row.Status))
	}
	now := time.Now().UTC()
	row.Status = string(req.Status)
	row.ResolvedAt = &now
	if req.EditedReply != "" {
		row.ProposedReply = req.EditedReply
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return dto.FlaggedReply{}, err
	}
	return row.ToDomain(), nil
}
