package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/models"
)

type Config struct {
	Port  string
	Debug bool

	LogLevel string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// APIToken is the bearer token every /api/v1 request must present.
	APIToken  string
	UserID    string
	UserEmail string
	UserName  string

	Pricing               models.Pricing
	StartingBalance       int
	LowCreditsThreshold   int
	VoiceDNAMinSamples    int
	VoiceDNAAnalysisDelay time.Duration

	// ValkeyAddr enables cross-instance realtime fan-out when set.
	ValkeyAddr     string
	ValkeyPassword string
	InstanceID     string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using process environment")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Debug:    getEnvBool("DEBUG", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", "./socialbot.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "socialbot"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		APIToken:  getEnv("API_TOKEN", ""),
		UserID:    getEnv("API_USER_ID", "usr_local"),
		UserEmail: getEnv("API_USER_EMAIL", "owner@localhost"),
		UserName:  getEnv("API_USER_NAME", "Owner"),

		Pricing: models.Pricing{
			AIStandard:    getEnvInt("CREDITS_AI_STANDARD", 2),
			AIKnowledge:   getEnvInt("CREDITS_AI_KNOWLEDGE", 3),
			AIFullContext: getEnvInt("CREDITS_AI_FULL_CONTEXT", 5),
			BYOMInfra:     getEnvInt("CREDITS_BYOM_INFRA", 1),
		},
		StartingBalance:       getEnvInt("CREDITS_STARTING_BALANCE", 500),
		LowCreditsThreshold:   getEnvInt("CREDITS_LOW_THRESHOLD", 50),
		VoiceDNAMinSamples:    getEnvInt("VOICE_DNA_MIN_SAMPLES", 3),
		VoiceDNAAnalysisDelay: time.Duration(getEnvInt("VOICE_DNA_ANALYSIS_DELAY_MS", 1500)) * time.Millisecond,

		ValkeyAddr:     getEnv("VALKEY_ADDR", ""),
		ValkeyPassword: getEnv("VALKEY_PASSWORD", ""),
		InstanceID:     getEnv("INSTANCE_ID", hostname()),
	}
}

// ConfigureLogging applies LOG_LEVEL and DEBUG to the global logger.
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("invalid LOG_LEVEL %q, falling back to info", c.LogLevel)
		level = logrus.InfoLevel
	}
	if c.Debug {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "socialbot"
	}
	return h
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logrus.Warnf("invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return b
}
