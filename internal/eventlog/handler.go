package eventlog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/seehear/assist-backend/internal/shared"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/sessions/:id/history", h.History)
}

type historyResponse struct {
	SessionID string  `json:"session_id"`
	History   []Event `json:"history"`
}

func (h *Handler) History(c echo.Context) error {
	sessionID := c.Param("id")
	if sessionID == "" {
		return shared.BadRequest("missing_session_id", "session id is required")
	}

	events, err := h.store.History(c.Request().Context(), sessionID)
	if err != nil {
		return shared.InternalError("history_failed", err.Error())
	}

	return c.JSON(http.StatusOK, historyResponse{
		SessionID: sessionID,
		History:   events,
	})
}
