package main

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"socialbot-gateway/internal/config"
	"socialbot-gateway/internal/database"
	"socialbot-gateway/internal/models"
)

const batchSize = 200

// copyTable reads every row of T from src and inserts it into dst in one
// transaction, keeping primary keys.
func copyTable[T any](src, dst *gorm.DB, table string) {
	var rows []T
	if err := src.Find(&rows).Error; err != nil {
		logrus.Errorf("read %s from sqlite: %v", table, err)
		return
	}
	if len(rows) == 0 {
		logrus.Infof("%s: nothing to copy", table)
		return
	}
	err := dst.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, batchSize).Error
	})
	if err != nil {
		logrus.Errorf("write %s to postgres: %v", table, err)
		return
	}
	logrus.Infof("%s: copied %d rows", table, len(rows))
}

func main() {
	cfg := config.LoadConfig()
	cfg.ConfigureLogging()

	src, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("connect to sqlite: %v", err)
	}
	logrus.Infof("reading from sqlite at %s", cfg.DBPath)

	cfg.DBDriver = "postgres"
	dst, err := database.Open(cfg)
	if err != nil {
		logrus.Fatalf("connect to postgres: %v", err)
	}

	// Parents before children so foreign keys resolve.
	copyTable[models.SystemSetting](src, dst, "system_settings")
	copyTable[models.SocialAccount](src, dst, "social_accounts")
	copyTable[models.Bot](src, dst, "bots")
	copyTable[models.Automation](src, dst, "automations")
	copyTable[models.Notification](src, dst, "notifications")
	copyTable[models.CreditAccount](src, dst, "credit_accounts")
	copyTable[models.CreditTransaction](src, dst, "credit_transactions")
	copyTable[models.BrandVoice](src, dst, "brand_voices")
	copyTable[models.KnowledgeSource](src, dst, "knowledge_sources")
	copyTable[models.LLMConfig](src, dst, "llm_configs")
	copyTable[models.FlaggedReply](src, dst, "flagged_replies")
	copyTable[models.VoiceDNAProfile](src, dst, "voice_dna_profiles")
	copyTable[models.VoiceDNAFeedback](src, dst, "voice_dna_feedback")
	copyTable[models.MemoryUser](src, dst, "memory_users")

	logrus.Info("migration completed, run sync_sequences next")
}
