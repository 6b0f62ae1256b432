package audio

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/seehear/assist-backend/internal/shared"
)

// Presigner hands out time-limited GET URLs for stored blobs.
type Presigner interface {
	PresignedURL(ctx context.Context, key string) (string, error)
}

// Handler redirects audio fetches to presigned storage URLs so clients never
// need storage credentials and the service never proxies the bytes.
type Handler struct {
	blobs  Presigner
	logger *slog.Logger
}

func NewHandler(blobs Presigner, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		blobs:  blobs,
		logger: logger.With("handler", "audio"),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/audio/:session/:file", h.HandleFetch)
}

func (h *Handler) HandleFetch(c echo.Context) error {
	session := c.Param("session")
	file := c.Param("file")
	if session == "" || file == "" {
		return shared.BadRequest("missing_path", "Session and file are required")
	}
	if strings.ContainsAny(session, "/\\") || strings.ContainsAny(file, "/\\") {
		return shared.BadRequest("invalid_path", "Invalid session or file name")
	}

	key := fmt.Sprintf("audio-files/%s/%s", session, file)
	url, err := h.blobs.PresignedURL(c.Request().Context(), key)
	if err != nil {
		h.logger.Error("presign failed", "key", key, "error", err)
		return shared.NewAPIError("not_found", "Audio file not found").
			WithDetails(map[string]string{"session": session, "file": file}).
			ToHTTP(http.StatusNotFound)
	}

	return c.Redirect(http.StatusFound, url)
}
