package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"socialbot-gateway/internal/config"
	"socialbot-gateway/internal/database"
)

// Tables keyed by an auto-increment id. The rest use prefixed string ids.
var serialTables = []string{
	"notifications",
	"credit_accounts",
	"credit_transactions",
	"llm_configs",
	"voice_dna_feedback",
}

func main() {
	cfg := config.LoadConfig()
	cfg.ConfigureLogging()
	if cfg.DBDriver != "postgres" {
		logrus.Fatalf("sequences only exist on postgres, DB_DRIVER is %q", cfg.DBDriver)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logrus.Fatalf("connect to postgres: %v", err)
	}

	logrus.Info("syncing postgres sequences")
	failed := 0
	for _, table := range serialTables {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), coalesce(max(id), 0) + 1, false) FROM %s", table, table)
		if err := db.Exec(query).Error; err != nil {
			logrus.Errorf("sync sequence for %s: %v", table, err)
			failed++
			continue
		}
		logrus.Infof("synced sequence for %s", table)
	}
	if failed > 0 {
		logrus.Fatalf("%d sequences failed to sync", failed)
	}
	logrus.Info("done")
}
