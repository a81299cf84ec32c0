package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"socialbot-gateway/internal/config"
	"socialbot-gateway/internal/database"
	"socialbot-gateway/internal/ws"
	"socialbot-gateway/pkg/models"
)

const wsPath = "/api/v1/ws"

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Hub    *ws.Hub
	Queue  AnalysisQueue
}

func NewRouter(d Dependencies) *gin.Engine {
	cfg := d.Config
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), Recovery(), RequestID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Content-Length", "Accept", "Accept-Encoding",
		"Authorization", "X-Request-ID", "Cache-Control", "X-Requested-With",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{wsPath})))

	automations := database.NewAutomationRepository(d.DB)
	accounts := database.NewAccountRepository(d.DB)
	notifications := database.NewNotificationRepository(d.DB)
	credits := database.NewCreditRepository(d.DB, cfg.StartingBalance)
	intel := database.NewIntelligenceRepository(d.DB)
	profiles := database.NewVoiceDNARepository(d.DB)
	memory := database.NewMemoryRepository(d.DB)

	authHandler := NewAuthHandler(models.User{ID: cfg.UserID, Email: cfg.UserEmail, Name: cfg.UserName})
	automationHandler := NewAutomationHandler(automations, accounts, intel, cfg.Pricing)
	accountHandler := NewAccountHandler(accounts)
	notificationHandler := NewNotificationHandler(notifications, d.Hub)
	creditHandler := NewCreditHandler(credits, notifications, d.Hub, cfg.Pricing, cfg.LowCreditsThreshold)
	intelligenceHandler := NewIntelligenceHandler(intel, notifications, d.Hub)
	voiceHandler := NewVoiceDNAHandler(profiles, intel, d.Queue, d.Hub, cfg.VoiceDNAMinSamples)
	memoryHandler := NewMemoryHandler(memory, intel)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "realtime_clients": d.Hub.ClientCount()})
	})

	v1 := r.Group("/api/v1", BearerAuth(cfg.APIToken))
	{
		v1.GET("/ws", d.Hub.ServeWs)
		v1.GET("/auth/me", authHandler.Me)

		v1.GET("/automations", automationHandler.List)
		v1.POST("/automations", automationHandler.Create)
		v1.POST("/automations/estimate", automationHandler.Estimate)
		v1.GET("/automations/:id", automationHandler.Get)
		v1.PATCH("/automations/:id", automationHandler.Update)
		v1.DELETE("/automations/:id", automationHandler.Delete)

		v1.GET("/social-accounts", accountHandler.List)
		v1.POST("/social-accounts", accountHandler.Create)
		v1.GET("/social-accounts/:id", accountHandler.Get)
		v1.PATCH("/social-accounts/:id", accountHandler.Update)
		v1.DELETE("/social-accounts/:id", accountHandler.Delete)

		v1.GET("/notifications", notificationHandler.List)
		v1.POST("/notifications", notificationHandler.Create)
		v1.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		v1.PATCH("/notifications/mark-read", notificationHandler.MarkRead)
		v1.PATCH("/notifications/mark-all-read", notificationHandler.MarkAllRead)

		v1.GET("/credits/balance", creditHandler.Balance)
		v1.GET("/credits/transactions", creditHandler.Transactions)
		v1.GET("/credits/usage", creditHandler.Usage)
		v1.GET("/credits/pricing", creditHandler.Pricing)
		v1.POST("/credits/charges", creditHandler.Charge)
		v1.POST("/credits/grants", creditHandler.Credit)

		intelligence := v1.Group("/intelligence")
		{
			intelligence.GET("/bots", intelligenceHandler.ListBots)
			intelligence.POST("/bots", intelligenceHandler.CreateBot)
			intelligence.GET("/bots/:id", intelligenceHandler.GetBot)
			intelligence.PATCH("/bots/:id", intelligenceHandler.UpdateBot)
			intelligence.DELETE("/bots/:id", intelligenceHandler.DeleteBot)

			intelligence.GET("/bots/:id/memory/stats", memoryHandler.Stats)
			intelligence.GET("/bots/:id/memory/users", memoryHandler.Users)
			intelligence.GET("/bots/:id/memory/users/:userId", memoryHandler.User)
			intelligence.GET("/bots/:id/memory/search", memoryHandler.Search)
			intelligence.POST("/bots/:id/memory/interactions", memoryHandler.RecordInteraction)
			intelligence.GET("/bots/:id/memory/export", memoryHandler.Export)

			intelligence.GET("/brand-voices", intelligenceHandler.ListBrandVoices)
			intelligence.POST("/brand-voices", intelligenceHandler.CreateBrandVoice)
			intelligence.DELETE("/brand-voices/:id", intelligenceHandler.DeleteBrandVoice)

			intelligence.GET("/knowledge", intelligenceHandler.ListKnowledge)
			intelligence.POST("/knowledge", intelligenceHandler.CreateKnowledge)
			intelligence.DELETE("/knowledge/:id", intelligenceHandler.DeleteKnowledge)

			intelligence.GET("/llm-config", intelligenceHandler.GetLLMConfig)
			intelligence.PUT("/llm-config", intelligenceHandler.SaveLLMConfig)

			intelligence.GET("/flagged-replies", intelligenceHandler.ListFlaggedReplies)
			intelligence.POST("/flagged-replies", intelligenceHandler.FlagReply)
			intelligence.POST("/flagged-replies/:id/moderate", intelligenceHandler.ModerateReply)

			intelligence.POST("/voice-dna/auto-infer", voiceHandler.AutoInfer)
			intelligence.GET("/voice-dna/:id", voiceHandler.Status)
			intelligence.GET("/voice-dna/:id/review", voiceHandler.Review)
			intelligence.POST("/voice-dna/:id/feedback", voiceHandler.Feedback)
			intelligence.POST("/voice-dna/:id/adjust", voiceHandler.Adjust)
		}
	}
	return r
}
