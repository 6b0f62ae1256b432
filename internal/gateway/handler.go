package gateway

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/seehear/assist-backend/internal/conversation"
	"github.com/seehear/assist-backend/internal/eventlog"
	"github.com/seehear/assist-backend/internal/pipeline"
	"github.com/seehear/assist-backend/internal/vision"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Manager tracks live connections for observability. It is lookup-only:
// session state stays owned by each connection's own goroutines.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewManager() *Manager {
	return &Manager{conns: make(map[string]*Conn)}
}

func (m *Manager) add(c *Conn) {
	m.mu.Lock()
	m.conns[c.id] = c
	m.mu.Unlock()
}

func (m *Manager) remove(c *Conn) {
	m.mu.Lock()
	delete(m.conns, c.id)
	m.mu.Unlock()
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// SessionIDs lists the session ids of connections that have one.
func (m *Manager) SessionIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.conns))
	for _, c := range m.conns {
		if id := c.SessionID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Handler upgrades clients onto the assistant's duplex protocol. Each
// connection gets its own conversation state machine.
type Handler struct {
	frames  *vision.Cache
	pipe    *pipeline.Pipeline
	events  eventlog.Appender
	manager *Manager
	logger  *slog.Logger
}

func NewHandler(frames *vision.Cache, pipe *pipeline.Pipeline, events eventlog.Appender, manager *Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		frames:  frames,
		pipe:    pipe,
		events:  events,
		manager: manager,
		logger:  logger.With("component", "gateway"),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleConnection)
}

func (h *Handler) HandleConnection(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	machine := conversation.NewMachine(h.events, h.logger)
	conn := newConn(ws, machine, h.frames, h.pipe, h.logger)

	h.manager.add(conn)
	h.logger.Info("client connected", "conn_id", conn.id)

	conn.run()

	h.manager.remove(conn)
	h.logger.Info("client disconnected", "conn_id", conn.id)
	return nil
}
