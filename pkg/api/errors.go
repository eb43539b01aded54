package api

import (
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/skyops/irops/pkg/models"
	"github.com/skyops/irops/pkg/services"
)

// writeServiceError maps service-layer errors to JSON error responses.
func (s *Server) writeServiceError(c *echo.Context, err error) error {
	if services.IsValidationError(err) {
		var validErr *services.ValidationError
		errors.As(err, &validErr)
		return s.writeError(c, http.StatusBadRequest, models.ErrorCodeInvalidRequest, validErr.Error(),
			map[string]string{"field": validErr.Field})
	}
	if errors.Is(err, services.ErrNotFound) {
		return s.writeError(c, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	}

	// Unexpected error
	s.logger.Error("unexpected service error", "error", err)
	return s.writeError(c, http.StatusInternalServerError, models.ErrorCodeInternalError, "internal server error", nil)
}

// writeError renders the uniform error body. The request id is taken from
// the route when the failing route carries one.
func (s *Server) writeError(c *echo.Context, status int, code, message string, details map[string]string) error {
	return c.JSON(status, &ErrorResponse{
		ErrorCode:    code,
		ErrorMessage: message,
		RequestID:    c.Param("request_id"),
		StatusCode:   status,
		Details:      details,
	})
}
