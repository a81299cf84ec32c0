package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"socialbot-gateway/internal/config"
	"socialbot-gateway/pkg/apperror"
	dto "socialbot-gateway/pkg/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(&config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	return db
}

func sampleAutomation(name string, status dto.AutomationStatus) dto.Automation {
	return dto.Automation{
		Name:            name,
		Platform:        dto.PlatformInstagram,
		SocialAccountID: "acc_1",
		Status:          status,
		Trigger: dto.Trigger{
			TriggerType:   dto.TriggerNewComment,
			TriggerSource: dto.TriggerSourceComment,
			TriggerScope:  dto.ScopeAll,
		},
		Conditions: []dto.Condition{},
		Actions: []dto.Action{{
			ID:             "act_1",
			ActionType:     dto.ActionReplyComment,
			ExecutionOrder: 1,
			Status:         dto.ItemActive,
			Payload:        &dto.ReplyCommentPayload{UseAIReply: true},
		}},
	}
}

func TestAutomationRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewAutomationRepository(newTestDB(t))

	created, err := repo.Create(ctx, sampleAutomation("Giveaway", dto.StatusActive))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Giveaway", got.Name)
	require.Len(t, got.Actions, 1)
	assert.Equal(t, &dto.ReplyCommentPayload{UseAIReply: true}, got.Actions[0].Payload)

	got.Name = "Giveaway v2"
	got.Status = dto.StatusInactive
	saved, err := repo.Save(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Giveaway v2", saved.Name)
	assert.Equal(t, dto.StatusInactive, saved.Status)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.IsType(t, apperror.NotFoundError(""), err)
	assert.IsType(t, apperror.NotFoundError(""), repo.Delete(ctx, created.ID))
}

func TestAutomationRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewAutomationRepository(newTestDB(t))
	for _, a := range []dto.Automation{
		sampleAutomation("Price replies", dto.StatusActive),
		sampleAutomation("Welcome DM", dto.StatusDraft),
		sampleAutomation("Giveaway PRICE", dto.StatusInactive),
	} {
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)
	}

	items, total, err := repo.List(ctx, dto.AutomationListParams{Search: "price"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	items, total, err = repo.List(ctx, dto.AutomationListParams{Status: dto.StatusDraft})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Welcome DM", items[0].Name)

	items, total, err = repo.List(ctx, dto.AutomationListParams{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 1)
}

func TestCreditRepository_OpeningBalanceIsLedgered(t *testing.T) {
	ctx := context.Background()
	repo := NewCreditRepository(newTestDB(t), 25)

	bal, err := repo.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, bal.Balance)

	txs, total, err := repo.Transactions(ctx, dto.TransactionListParams{Type: dto.TxTopUp})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, txs, 1)
	assert.Equal(t, 25, txs[0].Amount)
	assert.Equal(t, 25, txs[0].BalanceAfter)
}

func TestCreditRepository_ChargeAndUsage(t *testing.T) {
	ctx := context.Background()
	repo := NewCreditRepository(newTestDB(t), 10)

	bal, err := repo.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, bal.Balance)

	tx, err := repo.Charge(ctx, 3, "auto_1", dto.ActionReplyComment, "AI reply")
	require.NoError(t, err)
	assert.Equal(t, -3, tx.Amount)
	assert.Equal(t, 7, tx.BalanceAfter)

	_, err = repo.Charge(ctx, 2, "auto_1", dto.ActionSendDM, "AI DM")
	require.NoError(t, err)

	_, err = repo.Charge(ctx, 50, "auto_1", dto.ActionSendDM, "too much")
	assert.IsType(t, apperror.InsufficientCreditsError(""), err)

	bal, err = repo.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, bal.Balance)
	assert.Equal(t, 5, bal.LifetimeSpent)

	usage, err := repo.Usage(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 5, usage.TotalCredits)
	assert.Len(t, usage.ByActionType, 2)

	_, err = repo.Credit(ctx, dto.TxTopUp, 20, "top up")
	require.NoError(t, err)
	txs, total, err := repo.Transactions(ctx, dto.TransactionListParams{Type: dto.TxTopUp})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "starting balance and top up")
	assert.Len(t, txs, 2)
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(newTestDB(t))
	var ids []uint
	for _, title := range []string{"one", "two", "three"} {
		n, err := repo.Create(ctx, dto.Notification{Type: dto.NotificationSystem, Title: title})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	changed, err := repo.MarkRead(ctx, ids[:1])
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)

	unread, err := repo.UnreadCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	items, total, err := repo.List(ctx, dto.NotificationListParams{UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	changed, err = repo.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)
}

func TestIntelligenceRepository_ModerateOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewIntelligenceRepository(newTestDB(t))

	f, err := repo.CreateFlaggedReply(ctx, dto.FlaggedReply{BotID: "bot_1", IncomingText: "refund?", ProposedReply: "sure", Reason: "refund policy"})
	require.NoError(t, err)

	resolved, err := repo.ModerateReply(ctx, f.ID, dto.ModerateReplyRequest{Status: dto.FlaggedApproved, EditedReply: "Please DM us"})
	require.NoError(t, err)
	assert.Equal(t, dto.FlaggedApproved, resolved.Status)
	assert.Equal(t, "Please DM us", resolved.ProposedReply)
	assert.NotNil(t, resolved.ResolvedAt)

	_, err = repo.ModerateReply(ctx, f.ID, dto.ModerateReplyRequest{Status: dto.FlaggedRejected})
	assert.IsType(t, apperror.ConflictError(""), err)
}

func TestIntelligenceRepository_BotsAndKnowledge(t *testing.T) {
	ctx := context.Background()
	repo := NewIntelligenceRepository(newTestDB(t))

	disabled := false
	bot, err := repo.CreateBot(ctx, dto.BotRequest{Name: "Support", Enabled: &disabled})
	require.NoError(t, err)
	assert.False(t, bot.Enabled)

	enabled, err := repo.CreateBot(ctx, dto.BotRequest{Name: "Sales"})
	require.NoError(t, err)
	assert.True(t, enabled.Enabled)

	has, err := repo.HasKnowledge(ctx, bot.ID)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = repo.CreateKnowledgeSource(ctx, dto.KnowledgeSourceRequest{BotID: bot.ID, Kind: dto.KnowledgeFAQ, Title: "Shipping"})
	require.NoError(t, err)

	got, err := repo.GetBot(ctx, bot.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Equal(t, 1, got.KnowledgeSourceCount)

	_, err = repo.CreateKnowledgeSource(ctx, dto.KnowledgeSourceRequest{BotID: "bot_missing", Kind: dto.KnowledgeText})
	assert.IsType(t, apperror.NotFoundError(""), err)
}

func TestIntelligenceRepository_LLMConfigKeepsKey(t *testing.T) {
	ctx := context.Background()
	repo := NewIntelligenceRepository(newTestDB(t))

	cfg, err := repo.LLMConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.LLMModePlatform, cfg.Mode)

	cfg, err = repo.SaveLLMConfig(ctx, dto.LLMConfigRequest{Mode: dto.LLMModeBYOM, Provider: "openai", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.True(t, cfg.HasAPIKey)

	cfg, err = repo.SaveLLMConfig(ctx, dto.LLMConfigRequest{Mode: dto.LLMModeBYOM, Provider: "openai", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.True(t, cfg.HasAPIKey)

	cfg, err = repo.SaveLLMConfig(ctx, dto.LLMConfigRequest{Mode: dto.LLMModePlatform})
	require.NoError(t, err)
	assert.False(t, cfg.HasAPIKey)
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(newTestDB(t))

	_, err := repo.Record(ctx, dto.MemoryUser{BotID: "bot_1", ExternalUserID: "ig_1", Username: "ana", InteractionCount: 9, Facts: []string{"likes matcha"}})
	require.NoError(t, err)
	_, err = repo.Record(ctx, dto.MemoryUser{BotID: "bot_1", ExternalUserID: "ig_2", Username: "bo", LastInteractionAt: time.Now().AddDate(0, 0, -30)})
	require.NoError(t, err)

	_, err = repo.Record(ctx, dto.MemoryUser{BotID: "bot_2", ExternalUserID: "ig_1", Username: "matcha_fan"})
	require.NoError(t, err)

	stats, err := repo.Stats(ctx, "bot_1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 10, stats.TotalInteractions)
	assert.EqualValues(t, 1, stats.ByStage[dto.StageEngaged])
	assert.EqualValues(t, 1, stats.ByStage[dto.StageNew])
	assert.EqualValues(t, 1, stats.ActiveLast7Days)

	results, err := repo.Search(ctx, "bot_1", "MATCHA", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ana", results[0].User.Username)
	assert.Equal(t, []string{"facts"}, results[0].Matched)

	users, total, err := repo.List(ctx, dto.MemoryListParams{BotID: "bot_1", Stage: dto.StageNew})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "bo", users[0].Username)

	got, err := repo.Get(ctx, "bot_1", users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "ig_2", got.ExternalUserID)
	_, err = repo.Get(ctx, "bot_2", users[0].ID)
	var nf apperror.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestStageFor(t *testing.T) {
	assert.Equal(t, dto.StageNew, StageFor(1))
	assert.Equal(t, dto.StageCasual, StageFor(3))
	assert.Equal(t, dto.StageEngaged, StageFor(8))
	assert.Equal(t, dto.StageLoyal, StageFor(20))
	assert.Equal(t, dto.StageAdvocate, StageFor(50))
}
