// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ChatForge.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CHATFORGE_MONGO_URI, CHATFORGE_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "chatforge", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HMAC secret for bearer tokens (must be strong in production)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Bearer token lifetime (e.g., 24h, 30m)"},

	{Name: "widget_session_key", Default: "dev-only-widget-key-0123456789ABCDEF", Desc: "Signing key for the widget visitor cookie"},

	{Name: "training_tick", Default: "2s", Desc: "Delay between simulated training progress steps"},
	{Name: "reply_delay", Default: "1s", Desc: "Delay before the mocked chat responder answers"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, CHATFORGE_* for app), and
// command-line flags, merged with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CHATFORGE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 24*time.Hour),

		WidgetSessionKey: appValues.String("widget_session_key"),

		TrainingTick: appValues.Duration("training_tick", 2*time.Second),
		ReplyDelay:   appValues.Duration("reply_delay", time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// ChatForge validates the MongoDB URI format and the signing material so
// misconfiguration fails startup instead of surfacing per request.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must not be empty")
	}
	if len(appCfg.WidgetSessionKey) < 32 {
		return fmt.Errorf("widget_session_key must be at least 32 characters")
	}
	if appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive")
	}
	return nil
}
