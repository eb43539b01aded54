package api

import (
	"encoding/json"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/skyops/irops/pkg/models"
)

// statusHandler handles GET /status/:request_id.
func (s *Server) statusHandler(c *echo.Context) error {
	requestID := c.Param("request_id")

	rec, err := s.requests.Status(c.Request().Context(), requestID)
	if err != nil {
		return s.writeServiceError(c, err)
	}

	resp := &StatusResponse{
		RequestID: rec.RequestID,
		Status:    rec.Status,
		SessionID: rec.SessionID,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339Nano),
	}
	switch rec.Status {
	case models.RequestComplete:
		resp.Assessment = json.RawMessage(rec.Assessment)
		resp.ExecutionTimeMS = rec.ExecutionTimeMS
	case models.RequestError:
		resp.Error = rec.Error
		resp.ErrorCode = rec.ErrorCode
	}
	return c.JSON(http.StatusOK, resp)
}
