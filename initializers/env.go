package initializers

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	Port        int
	Host        string
	DBURL       string
	AutoMigrate bool
	CORSOrigin  string

	SessionCookieName string
	SessionTTL        time.Duration
	CookieSecure      bool

	LogLevel string
	GinMode  string

	ResendAPIKey    string
	ResendFromEmail string

	FirebaseCredentialsPath string
	PushEnabled             bool
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoadEnv loads a .env file into the process environment if one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("No .env file loaded", zap.Error(err))
	}
}

// LoadConfig reads the configuration from the environment, applying defaults
// and rejecting values the server cannot start with.
func LoadConfig() (Config, error) {
	v := viper.New()

	v.BindEnv("port", "PORT")
	v.BindEnv("host", "HOST")
	v.BindEnv("db.url", "DB_URL")
	v.BindEnv("db.auto_migrate", "DB_AUTO_MIGRATE")
	v.BindEnv("cors.origin", "CORS_ORIGIN")

	v.BindEnv("session.cookie_name", "SESSION_COOKIE_NAME")
	v.BindEnv("session.ttl", "SESSION_TTL")
	v.BindEnv("session.cookie_secure", "COOKIE_SECURE")

	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("gin.mode", "GIN_MODE")

	v.BindEnv("resend.api_key", "RESEND_API_KEY")
	v.BindEnv("resend.from_email", "RESEND_FROM_EMAIL")

	v.BindEnv("firebase.credentials_path", "FIREBASE_SERVICE_ACCOUNT_PATH")
	v.BindEnv("push.enabled", "PUSH_ENABLED")

	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("cors.origin", "*")
	v.SetDefault("session.cookie_name", "devetionmobile_session")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("gin.mode", "release")
	v.SetDefault("push.enabled", false)

	cfg := Config{
		Port:                    v.GetInt("port"),
		Host:                    v.GetString("host"),
		DBURL:                   v.GetString("db.url"),
		AutoMigrate:             v.GetBool("db.auto_migrate"),
		CORSOrigin:              v.GetString("cors.origin"),
		SessionCookieName:       v.GetString("session.cookie_name"),
		SessionTTL:              v.GetDuration("session.ttl"),
		CookieSecure:            v.GetBool("session.cookie_secure"),
		LogLevel:                v.GetString("log.level"),
		GinMode:                 v.GetString("gin.mode"),
		ResendAPIKey:            v.GetString("resend.api_key"),
		ResendFromEmail:         v.GetString("resend.from_email"),
		FirebaseCredentialsPath: v.GetString("firebase.credentials_path"),
		PushEnabled:             v.GetBool("push.enabled"),
	}

	if cfg.DBURL == "" {
		return Config{}, errors.New("DB_URL is required")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}

	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		return Config{}, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be a positive duration")
	}

	if cfg.PushEnabled && cfg.FirebaseCredentialsPath == "" {
		return Config{}, errors.New("FIREBASE_SERVICE_ACCOUNT_PATH is required when PUSH_ENABLED is set")
	}

	return cfg, nil
}
