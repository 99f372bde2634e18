// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/tessergate/chatforge/internal/app/system/tasks"
	"go.uber.org/zap"
)

// taskRunner executes the simulated-training and delayed-reply tasks. It is
// created here and drained in Shutdown, spanning the handler's lifetime.
var taskRunner *tasks.Runner

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	taskRunner = tasks.NewRunner(logger)
	return nil
}
