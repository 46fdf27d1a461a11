package handlers

import (
	"github.com/anonto42/beawarely-feed/internal/feed"
	"github.com/anonto42/beawarely-feed/internal/middleware"
	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/anonto42/beawarely-feed/internal/realtime"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LiveHandler upgrades viewers to a websocket that receives re-rendered feeds
type LiveHandler struct {
	pipeline *feed.Pipeline
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewLiveHandler creates a new LiveHandler
func NewLiveHandler(pipeline *feed.Pipeline, hub *realtime.Hub, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		pipeline: pipeline,
		hub:      hub,
		// The session rides on a cookie, so the default same-origin check
		// must stay in place.
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// RegisterLiveRoutes registers the websocket route
func (h *LiveHandler) RegisterLiveRoutes(g *echo.Group) {
	g.GET("/feed/live", h.Serve)
}

// Serve blocks for the lifetime of the connection
func (h *LiveHandler) Serve(c echo.Context) error {
	tab := models.ParseVisibility(c.QueryParam("tab"))
	controller := h.pipeline.NewController(middleware.IdentityFrom(c), tab)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}

	realtime.NewClient(conn, h.hub, controller, h.logger).Serve(c.Request().Context())
	return nil
}
