package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
)

// DefaultJWTSecret is only good for local development; Load refuses it in
// production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Referral ReferralConfig
}

type ServerConfig struct {
	Port          string
	Environment   string
	JWTSecret     string
	WebhookSecret string
	AllowOrigins  string
}

type DatabaseConfig struct {
	Driver      string
	URL         string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	SQLitePath  string
	AutoMigrate bool
}

// RedisConfig is optional; an empty Addr disables the partner code cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TelegramConfig is optional; without a token no notifications are sent.
type TelegramConfig struct {
	BotToken    string
	AdminChatID int64
}

type ReferralConfig struct {
	Currency           string
	CommissionMode     string
	CommissionValue    decimal.Decimal
	RegistrationReward decimal.Decimal
	VisitReward        decimal.Decimal
	TiersFile          string
	Tiers              []model.LevelTier
}

const (
	CommissionModePercent = "percent"
	CommissionModeFlat    = "flat"
)

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return "file:" + d.SQLitePath + "?_time_format=sqlite&_pragma=busy_timeout(5000)"
	}
	if d.URL != "" {
		return d.URL
	}
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	adminChatID, _ := strconv.ParseInt(getEnv("TELEGRAM_ADMIN_CHAT_ID", "0"), 10, 64)
	autoMigrate, _ := strconv.ParseBool(getEnv("AUTO_MIGRATE", "true"))

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "8080"),
			Environment:   getEnv("ENVIRONMENT", "development"),
			JWTSecret:     getEnv("JWT_SECRET", DefaultJWTSecret),
			WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
			AllowOrigins:  getEnv("ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DATABASE_DRIVER", "postgres"),
			URL:         getEnv("DATABASE_URL", ""),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "referrals"),
			Password:    getEnv("DB_PASSWORD", "referrals"),
			Name:        getEnv("DB_NAME", "referrals"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SQLitePath:  getEnv("SQLITE_PATH", "referrals.db"),
			AutoMigrate: autoMigrate,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminChatID: adminChatID,
		},
	}

	referral, err := loadReferral()
	if err != nil {
		return nil, err
	}
	cfg.Referral = referral

	if cfg.Telegram.BotToken != "" && cfg.Telegram.AdminChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	if cfg.Server.Environment == "production" {
		if cfg.Server.JWTSecret == "" || cfg.Server.JWTSecret == DefaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set to a non-default value in production")
		}
		if cfg.Server.WebhookSecret == "" {
			return nil, fmt.Errorf("WEBHOOK_SECRET is required in production")
		}
	}

	return cfg, nil
}

func loadReferral() (ReferralConfig, error) {
	rc := ReferralConfig{
		Currency:       strings.ToUpper(getEnv("REFERRAL_CURRENCY", "EUR")),
		CommissionMode: getEnv("REFERRAL_COMMISSION_MODE", CommissionModePercent),
		TiersFile:      getEnv("REFERRAL_TIERS_FILE", ""),
		Tiers:          model.DefaultLevelTiers,
	}

	var err error
	if rc.CommissionValue, err = getEnvDecimal("REFERRAL_COMMISSION_VALUE", "10"); err != nil {
		return rc, err
	}
	if rc.RegistrationReward, err = getEnvDecimal("REFERRAL_REGISTRATION_REWARD", "0"); err != nil {
		return rc, err
	}
	if rc.VisitReward, err = getEnvDecimal("REFERRAL_VISIT_REWARD", "0"); err != nil {
		return rc, err
	}

	switch rc.CommissionMode {
	case CommissionModePercent, CommissionModeFlat:
	default:
		return rc, fmt.Errorf("REFERRAL_COMMISSION_MODE must be %q or %q, got %q", CommissionModePercent, CommissionModeFlat, rc.CommissionMode)
	}

	if rc.TiersFile != "" {
		tiers, err := LoadTiers(rc.TiersFile)
		if err != nil {
			return rc, err
		}
		rc.Tiers = tiers
	}
	return rc, nil
}

type tierFile struct {
	Tiers []struct {
		Level        string `yaml:"level"`
		MinReferrals int    `yaml:"min_referrals"`
		MinEarnings  string `yaml:"min_earnings"`
	} `yaml:"tiers"`
}

// LoadTiers reads the level threshold table from a YAML file.
func LoadTiers(path string) ([]model.LevelTier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tiers file: %w", err)
	}
	return ParseTiers(raw)
}

func ParseTiers(raw []byte) ([]model.LevelTier, error) {
	var f tierFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse tiers file: %w", err)
	}
	if len(f.Tiers) == 0 {
		return nil, fmt.Errorf("tiers file defines no tiers")
	}

	tiers := make([]model.LevelTier, 0, len(f.Tiers))
	for _, t := range f.Tiers {
		level := model.Level(t.Level)
		if !level.Valid() {
			return nil, fmt.Errorf("unknown level %q", t.Level)
		}
		if t.MinReferrals < 0 {
			return nil, fmt.Errorf("level %q: min_referrals must not be negative", t.Level)
		}
		minEarnings := decimal.Zero
		if t.MinEarnings != "" {
			d, err := decimal.NewFromString(t.MinEarnings)
			if err != nil {
				return nil, fmt.Errorf("level %q: min_earnings: %w", t.Level, err)
			}
			minEarnings = d
		}
		tiers = append(tiers, model.LevelTier{
			Level:        level,
			MinReferrals: t.MinReferrals,
			MinEarnings:  minEarnings,
		})
	}
	return tiers, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
