package app

import (
	"github.com/ghuser/inventory/pkg/cache"
	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/events"
	"github.com/ghuser/inventory/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to ItemRoutes during server initialization and to services.New in the worker.
//
// Logging: app.Logger is backed by a trace-aware handler; use the context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "updating item", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db     *database.Database
	Logger logger.Logger
	// Publisher is nil in the worker process, which only consumes events.
	Publisher *events.Publisher
	Redis     *cache.RedisClient
	// IsProduction hides internal error messages from 5xx responses.
	IsProduction bool
}
