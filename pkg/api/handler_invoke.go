package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/skyops/irops/pkg/models"
	"github.com/skyops/irops/pkg/services"
)

// invokeHandler handles POST /invoke.
// Accepts the prompt, persists a processing request row, and dispatches the
// background job. The caller polls /status/:request_id for the outcome.
func (s *Server) invokeHandler(c *echo.Context) error {
	var req InvokeRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, http.StatusBadRequest, models.ErrorCodeInvalidRequest, "request body must be valid JSON", nil)
	}

	rec, err := s.requests.Submit(c.Request().Context(), services.SubmitInput{
		Prompt:    req.Prompt,
		SessionID: req.SessionID,
	})
	if err != nil {
		return s.writeServiceError(c, err)
	}

	s.dispatcher.Enqueue(rec)
	s.logger.Info("request accepted", "request_id", rec.RequestID, "session_id", rec.SessionID)

	return c.JSON(http.StatusAccepted, &InvokeResponse{
		Status:    "accepted",
		RequestID: rec.RequestID,
		PollURL:   "/status/" + rec.RequestID,
	})
}
