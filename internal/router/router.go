package router

import (
	"github.com/anonto42/beawarely-feed/internal/feed"
	"github.com/anonto42/beawarely-feed/internal/handlers"
	"github.com/anonto42/beawarely-feed/internal/middleware"
	"github.com/anonto42/beawarely-feed/internal/realtime"
	"github.com/anonto42/beawarely-feed/internal/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LiveFeedPath is the websocket route pages subscribe to for live updates
const LiveFeedPath = "/api/v1/feed/live"

// Deps are the components the routes are built from. Hub is nil when live
// updates are disabled.
type Deps struct {
	Pipeline *feed.Pipeline
	Gate     *session.Gate
	Hub      *realtime.Hub
	Logger   *zap.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(deps.Pipeline, deps.Logger)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	sessionMW := middleware.SessionMiddleware(deps.Gate)

	pageHandler := handlers.NewPageHandler(deps.Pipeline)
	e.GET("/", pageHandler.GetPage, sessionMW)

	api := e.Group("/api/v1", sessionMW)

	feedHandler := handlers.NewFeedHandler(deps.Pipeline)
	feedHandler.RegisterFeedRoutes(api)

	postHandler := handlers.NewPostHandler(deps.Pipeline)
	postHandler.RegisterPostRoutes(api)

	if deps.Hub != nil {
		liveHandler := handlers.NewLiveHandler(deps.Pipeline, deps.Hub, deps.Logger)
		liveHandler.RegisterLiveRoutes(api)
		deps.Logger.Info("live feed route configured")
	}

	deps.Logger.Info("all routes configured")
}
