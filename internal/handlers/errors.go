package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/beawarely-feed/internal/feed"
	"github.com/anonto42/beawarely-feed/internal/middleware"
	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/anonto42/beawarely-feed/internal/render"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPErrorHandler answers JSON clients with {"message"} and everyone else
// with the feed error state. The page route gets a full page so the session
// failure is the only thing shown. A rejected form submission gets the page
// back with the message above the feed.
func HTTPErrorHandler(pipeline *feed.Pipeline, logger *zap.Logger) echo.HTTPErrorHandler {
	renderer := pipeline.Renderer()
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
			if he.Internal != nil {
				err = he.Internal
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error("request failed", zap.Int("status", code), zap.Error(err))
		}

		var werr error
		switch {
		case c.Request().Method == http.MethodHead:
			werr = c.NoContent(code)
		case strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON):
			werr = c.JSON(code, echo.Map{"message": message})
		case isFormSubmission(c.Request()) && middleware.SessionResolved(c):
			tab := c.FormValue("visibility")
			if tab == "" {
				tab = c.QueryParam("tab")
			}
			werr = writePage(c, code, renderer, func() (string, error) {
				return renderPage(c, pipeline, models.ParseVisibility(tab), message)
			}, message)
		case c.Path() == "/" || isFormSubmission(c.Request()):
			werr = writePage(c, code, renderer, func() (string, error) {
				return renderer.Page(render.PageView{SessionError: message})
			}, message)
		default:
			werr = c.HTML(code, renderer.Failure(message))
		}
		if werr != nil {
			logger.Warn("writing error response", zap.Error(werr))
		}
	}
}

func writePage(c echo.Context, code int, renderer *render.Renderer, page func() (string, error), message string) error {
	markup, err := page()
	if err != nil {
		return c.HTML(code, renderer.Failure(message))
	}
	return c.HTML(code, markup)
}
