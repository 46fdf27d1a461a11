package handlers

import (
	"net/http"

	"github.com/anonto42/beawarely-feed/internal/feed"
	"github.com/anonto42/beawarely-feed/internal/middleware"
	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the merged feed
type FeedHandler struct {
	pipeline *feed.Pipeline
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(pipeline *feed.Pipeline) *FeedHandler {
	return &FeedHandler{pipeline: pipeline}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/feed/entries", h.GetEntries)
}

// GetFeed returns the feed markup for the viewer and ?tab=
func (h *FeedHandler) GetFeed(c echo.Context) error {
	tab := models.ParseVisibility(c.QueryParam("tab"))
	controller := h.pipeline.NewController(middleware.IdentityFrom(c), tab)

	return c.HTML(http.StatusOK, controller.Reload(c.Request().Context()))
}

// GetEntries returns the aggregated entries and resolved profiles as JSON
func (h *FeedHandler) GetEntries(c echo.Context) error {
	tab := models.ParseVisibility(c.QueryParam("tab"))

	snap, err := h.pipeline.Load(c.Request().Context(), middleware.IdentityFrom(c), tab)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Feed load failed.").SetInternal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    snap,
		"meta": echo.Map{
			"tab":        tab,
			"totalItems": len(snap.Entries),
		},
	})
}
