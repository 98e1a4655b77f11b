// Package response provides helpers for consistent API responses.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error codes returned by the API.
const (
	CodeUnknownPreset = "UNKNOWN_PRESET"
	CodeInvalidParam  = "INVALID_PARAM"
	CodeRenderFailed  = "RENDER_FAILED"
	CodeUploadFailed  = "UPLOAD_FAILED"
	CodeRateLimited   = "RATE_LIMITED"
	CodeFontMissing   = "FONT_UNAVAILABLE"
)

// Success sends a successful JSON response with the given data.
// The response will always include "error": false.
func Success(c echo.Context, data map[string]interface{}) error {
	resp := make(map[string]interface{})
	resp["error"] = false

	// Merge additional data
	for k, v := range data {
		resp[k] = v
	}

	return c.JSON(http.StatusOK, resp)
}

// Error sends an error JSON response with the given status code and message.
func Error(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}

// Image sends raw image bytes that must not be cached. Extra headers are
// set before the body is written.
func Image(c echo.Context, contentType string, data []byte, headers map[string]string) error {
	h := c.Response().Header()
	h.Set("Cache-Control", "no-store")
	for k, v := range headers {
		h.Set(k, v)
	}
	return c.Blob(http.StatusOK, contentType, data)
}

// ErrorWithCode sends an error response with a specific error code.
// This is useful for clients that need to handle specific error types.
func ErrorWithCode(c echo.Context, statusCode int, code string, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"code":    code,
		"message": message,
	})
}
