// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/ptera-captcha/internal/render"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	fonts *render.FontBook
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(fonts *render.FontBook) *HealthHandler {
	if fonts == nil {
		fonts = render.DefaultFontBook()
	}
	return &HealthHandler{fonts: fonts}
}

// Check returns the health status of the server and whether ideograph
// captchas have a real font to draw with.
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"fonts":          h.fonts.Families(),
		"ideograph_font": h.fonts.Has(render.FamilyIdeograph),
	})
}
