package vision

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/seehear/assist-backend/internal/shared"
)

// Handler serves the latest persisted frame of a session for diagnostics,
// the visual counterpart of the session history route.
type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  store,
		logger: logger.With("handler", "vision"),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/sessions/:id/frame", h.LatestFrame)
}

func (h *Handler) LatestFrame(c echo.Context) error {
	sessionID := c.Param("id")
	if sessionID == "" {
		return shared.BadRequest("missing_session_id", "session id is required")
	}

	frame, err := h.store.Latest(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("not_found", "No frame available for session")
		}
		h.logger.Error("frame lookup failed", "session_id", sessionID, "error", err)
		return shared.InternalError("frame_lookup_failed", "Failed to load frame")
	}

	return c.Blob(http.StatusOK, "image/jpeg", frame.Data)
}
