package database

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"socialbot-gateway/internal/config"
	"socialbot-gateway/internal/models"
)

// Open connects to the configured driver and runs migrations.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	logrus.Infof("connected to %s database", cfg.DBDriver)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Dialector picks the gorm driver for DB_DRIVER.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "sqlite", "":
		return sqlite.Open(cfg.DBPath), nil
	case "postgres":
		return postgres.Open(PostgresDSN(cfg)), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func PostgresDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	logrus.Debug("database migration completed")
	return nil
}

// SyncConfig lets values stored in system_settings override the pricing
// tiers from the environment. Tiers missing from the table are seeded from
// the current config.
func SyncConfig(db *gorm.DB, cfg *config.Config) {
	settings := []struct {
		Key   string
		Value *int
	}{
		{"CREDITS_AI_STANDARD", &cfg.Pricing.AIStandard},
		{"CREDITS_AI_KNOWLEDGE", &cfg.Pricing.AIKnowledge},
		{"CREDITS_AI_FULL_CONTEXT", &cfg.Pricing.AIFullContext},
		{"CREDITS_BYOM_INFRA", &cfg.Pricing.BYOMInfra},
	}

	for _, s := range settings {
		var setting models.SystemSetting
		err := db.Where("key = ?", s.Key).First(&setting).Error
		switch {
		case err == nil:
			n, convErr := strconv.Atoi(setting.Value)
			if convErr != nil {
				logrus.Warnf("system setting %s=%q is not a number, keeping %d", s.Key, setting.Value, *s.Value)
				continue
			}
			*s.Value = n
		case errors.Is(err, gorm.ErrRecordNotFound):
			db.Create(&models.SystemSetting{Key: s.Key, Value: strconv.Itoa(*s.Value)})
		default:
			logrus.Errorf("read system setting %s: %v", s.Key, err)
		}
	}
	logrus.Debug("system settings synchronized from database")
}
