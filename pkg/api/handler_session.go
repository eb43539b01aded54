package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// sessionHistoryHandler handles GET /sessions/:session_id/history.
// Interactions are returned newest first.
func (s *Server) sessionHistoryHandler(c *echo.Context) error {
	sessionID := c.Param("session_id")

	interactions, err := s.sessions.History(c.Request().Context(), sessionID)
	if err != nil {
		return s.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, &SessionHistoryResponse{
		SessionID:    sessionID,
		Interactions: interactions,
	})
}
