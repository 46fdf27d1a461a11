package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/anonto42/beawarely-feed/internal/feed"
	"github.com/anonto42/beawarely-feed/internal/middleware"
	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/labstack/echo/v4"
)

// PostHandler handles personal post submission
type PostHandler struct {
	pipeline *feed.Pipeline
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(pipeline *feed.Pipeline) *PostHandler {
	return &PostHandler{pipeline: pipeline}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost, middleware.RequireIdentity())
}

// CreatePost inserts a post into the selected tab and answers with the reloaded feed
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = c.QueryParam("tab")
	}
	tab := models.ParseVisibility(visibility)
	controller := h.pipeline.NewController(middleware.IdentityFrom(c), tab)

	markup, err := controller.Submit(c.Request().Context(), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, feed.ErrNotSignedIn):
			return echo.NewHTTPError(http.StatusUnauthorized, "Log in first.")
		case errors.Is(err, feed.ErrEmptyPost):
			return echo.NewHTTPError(http.StatusBadRequest, "Write something first.")
		case feed.IsKind(err, feed.WriteError):
			return echo.NewHTTPError(http.StatusBadGateway, feed.Message(err)).SetInternal(err)
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if isFormSubmission(c.Request()) {
		return c.Redirect(http.StatusSeeOther, "/?"+url.Values{"tab": {string(tab)}}.Encode())
	}
	return c.HTML(http.StatusCreated, markup)
}

// isFormSubmission reports whether r is a plain HTML form post, which expects a
// page rather than a fragment in return.
func isFormSubmission(r *http.Request) bool {
	return r.Method == http.MethodPost &&
		strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm)
}
