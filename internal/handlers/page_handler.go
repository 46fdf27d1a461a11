package handlers

import (
	"html/template"
	"net/http"

	"github.com/anonto42/beawarely-feed/internal/feed"
	"github.com/anonto42/beawarely-feed/internal/middleware"
	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/anonto42/beawarely-feed/internal/render"
	"github.com/labstack/echo/v4"
)

// PageHandler serves the full feed page
type PageHandler struct {
	pipeline *feed.Pipeline
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(pipeline *feed.Pipeline) *PageHandler {
	return &PageHandler{pipeline: pipeline}
}

// GetPage renders the session regions, tabs and initial feed
func (h *PageHandler) GetPage(c echo.Context) error {
	tab := models.ParseVisibility(c.QueryParam("tab"))
	page, err := renderPage(c, h.pipeline, tab, "")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Feed load failed.").
			SetInternal(feed.NewError(feed.RenderError, "page", err))
	}
	return c.HTML(http.StatusOK, page)
}

// renderPage reloads the viewer's feed and wraps it in the full page.
func renderPage(c echo.Context, pipeline *feed.Pipeline, tab models.Visibility, notice string) (string, error) {
	identity := middleware.IdentityFrom(c)
	controller := pipeline.NewController(identity, tab)
	return pipeline.Renderer().Page(render.PageView{
		Identity: identity,
		Tab:      tab,
		Feed:     template.HTML(controller.Reload(c.Request().Context())),
		Notice:   notice,
	})
}
