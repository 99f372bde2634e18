// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging, CORS); AppConfig is
// everything specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Signing key for the public widget's visitor cookie
	WidgetSessionKey string

	// Simulation pacing: delay between training progress steps, and how
	// long the mocked responder "thinks" before a chat reply lands.
	TrainingTick time.Duration
	ReplyDelay   time.Duration
}
