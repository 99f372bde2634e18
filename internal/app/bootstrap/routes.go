// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	aimodelsfeature "github.com/tessergate/chatforge/internal/app/features/aimodels"
	chatsfeature "github.com/tessergate/chatforge/internal/app/features/chats"
	companiesfeature "github.com/tessergate/chatforge/internal/app/features/companies"
	documentsfeature "github.com/tessergate/chatforge/internal/app/features/documents"
	healthfeature "github.com/tessergate/chatforge/internal/app/features/health"
	loginfeature "github.com/tessergate/chatforge/internal/app/features/login"
	profilefeature "github.com/tessergate/chatforge/internal/app/features/profile"
	subscriptionsfeature "github.com/tessergate/chatforge/internal/app/features/subscriptions"
	teamsfeature "github.com/tessergate/chatforge/internal/app/features/teams"
	usagefeature "github.com/tessergate/chatforge/internal/app/features/usage"
	widgetfeature "github.com/tessergate/chatforge/internal/app/features/widget"
	modelstore "github.com/tessergate/chatforge/internal/app/store/aimodels"
	chatstore "github.com/tessergate/chatforge/internal/app/store/chats"
	companystore "github.com/tessergate/chatforge/internal/app/store/companies"
	docstore "github.com/tessergate/chatforge/internal/app/store/documents"
	substore "github.com/tessergate/chatforge/internal/app/store/subscriptions"
	teamstore "github.com/tessergate/chatforge/internal/app/store/teams"
	usagestore "github.com/tessergate/chatforge/internal/app/store/usage"
	userstore "github.com/tessergate/chatforge/internal/app/store/users"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/mockai"
	"github.com/tessergate/chatforge/internal/app/system/widgetauth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE
// app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. ChatForge builds the per-collection
// stores, the bearer/API-key authenticator, and the mocked responder, then
// mounts one subrouter per feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	teams := teamstore.New(db)
	docs := docstore.New(db)
	aimodels := modelstore.New(db)
	chats := chatstore.New(db)
	usage := usagestore.New(db)
	subs := substore.New(db)
	companies := companystore.New(db, logger)

	tokens := auth.NewTokenIssuer(appCfg.JWTSecret, appCfg.JWTTTL)
	authenticator := auth.NewAuthenticator(users, tokens, logger)

	responder := mockai.New(appCfg.ReplyDelay)

	// Secure cookies are enabled in production mode.
	widgetSessions := widgetauth.New(appCfg.WidgetSessionKey, coreCfg.Env == "prod")

	r := chi.NewRouter()

	// Global auth middleware: resolves bearer JWTs and API keys into the
	// request context. Routes opt into enforcement with auth.RequireUser.
	r.Use(authenticator.LoadRequestUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, tokens, logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler))

	// Account
	profileHandler := profilefeature.NewHandler(users, logger)
	r.Mount("/users", profilefeature.Routes(profileHandler))

	// Teams
	teamsHandler := teamsfeature.NewHandler(teams, users, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler))

	// Documents
	documentsHandler := documentsfeature.NewHandler(docs, usage, logger)
	r.Mount("/documents", documentsfeature.Routes(documentsHandler))

	// AI models with simulated training
	aimodelsHandler := aimodelsfeature.NewHandler(aimodels, docs, usage, taskRunner, appCfg.TrainingTick, logger)
	r.Mount("/models", aimodelsfeature.Routes(aimodelsHandler))

	// Chat sessions with the mocked responder
	chatsHandler := chatsfeature.NewHandler(chats, aimodels, docs, usage, taskRunner, responder, logger)
	r.Mount("/chats", chatsfeature.Routes(chatsHandler))

	// Usage ledger
	usageHandler := usagefeature.NewHandler(usage, logger)
	r.Mount("/usage", usagefeature.Routes(usageHandler))

	// Subscriptions
	subscriptionsHandler := subscriptionsfeature.NewHandler(subs, users, logger)
	r.Mount("/subscription", subscriptionsfeature.Routes(subscriptionsHandler))

	// Versioned company context store
	companiesHandler := companiesfeature.NewHandler(companies, logger)
	r.Mount("/companies", companiesfeature.Routes(companiesHandler))

	// Public chatbot widget
	widgetHandler := widgetfeature.NewHandler(companies, widgetSessions, responder, logger)
	r.Mount("/widget", widgetfeature.Routes(widgetHandler))

	return r, nil
}
