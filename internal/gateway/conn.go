package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/seehear/assist-backend/internal/conversation"
	"github.com/seehear/assist-backend/internal/pipeline"
	"github.com/seehear/assist-backend/internal/shared"
	"github.com/seehear/assist-backend/internal/vision"
)

const (
	writeWait      = 10 * time.Second
	idleTimeout    = 30 * time.Second
	maxMessageSize = 2 * 1024 * 1024
	sendBuffer     = 64
)

// Conn owns one persistent client connection. The read pump decodes frames
// into the inbound channel, the dispatch loop interprets them against the
// connection's own state machine, and the write pump serializes everything
// going out. All three unwind when done closes.
type Conn struct {
	id      string
	ws      *websocket.Conn
	machine *conversation.Machine
	frames  *vision.Cache
	pipe    *pipeline.Pipeline
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	send    chan any
	inbound chan inboundMessage
	done    chan struct{}
	once    sync.Once

	// sessionID is the published copy of the machine's session id. The
	// machine itself is owned by the dispatch goroutine; other goroutines
	// (the manager's health lookups) read only this copy.
	sessionMu sync.RWMutex
	sessionID string
}

func newConn(ws *websocket.Conn, machine *conversation.Machine, frames *vision.Cache, pipe *pipeline.Pipeline, logger *slog.Logger) *Conn {
	id := shared.NewID("conn_")
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		id:      id,
		ws:      ws,
		machine: machine,
		frames:  frames,
		pipe:    pipe,
		logger:  logger.With("conn_id", id),
		ctx:     ctx,
		cancel:  cancel,
		send:    make(chan any, sendBuffer),
		inbound: make(chan inboundMessage, sendBuffer),
		done:    make(chan struct{}),
	}
}

// SessionID returns the connection's session id, or "" before the first
// accepted wake phrase. Safe to call from any goroutine.
func (c *Conn) SessionID() string {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.sessionID
}

func (c *Conn) publishSessionID(id string) {
	c.sessionMu.Lock()
	c.sessionID = id
	c.sessionMu.Unlock()
}

func (c *Conn) close() {
	c.once.Do(func() {
		close(c.done)
		c.cancel()
		_ = c.ws.Close()
	})
}

// enqueue hands a message to the write pump without ever blocking the caller.
func (c *Conn) enqueue(msg any) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Warn("send buffer full, dropping message")
	}
}

func (c *Conn) enqueueError(message string) {
	c.enqueue(errorMessage{Type: typeError, Message: message})
}

func (c *Conn) readPump() {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.enqueueError("Invalid JSON message")
			continue
		}

		select {
		case c.inbound <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) writePump() {
	defer c.close()

	for {
		select {
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			data, err := json.Marshal(msg)
			if err != nil {
				c.logger.Error("failed to marshal message", "error", err)
				continue
			}

			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}
		}
	}
}

// dispatch interprets inbound messages in arrival order. When the client goes
// quiet for idleTimeout it sends a protocol-level ping instead of blocking
// forever; a failed ping write unwinds the connection through the write pump.
func (c *Conn) dispatch() {
	idle := time.NewTimer(idleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-idle.C:
			c.enqueue(pingMessage{Type: typePing})
			idle.Reset(idleTimeout)
		case msg := <-c.inbound:
			c.handleMessage(msg)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(idleTimeout)
		}
	}
}

// handleMessage never lets a single bad message take the connection down: any
// failure, panics included, becomes an outbound error message.
func (c *Conn) handleMessage(msg inboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic while handling message", "type", msg.Type, "panic", r)
			c.enqueueError(fmt.Sprintf("Server error: %v", r))
		}
	}()

	switch msg.Type {
	case typeVideoFrame:
		c.handleVideoFrame(msg.Data)
	case typeSpeechResult:
		c.handleSpeechResult(msg.Text)
	case typePing:
		// Activity only; the idle timer was reset by the dispatch loop.
	default:
		c.logger.Warn("unknown message type", "type", msg.Type)
		c.enqueueError(fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (c *Conn) handleVideoFrame(data string) {
	if data == "" {
		return
	}

	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		c.enqueueError("Invalid video frame encoding")
		return
	}

	c.frames.Update(c.id, &vision.Frame{
		SessionID: c.SessionID(),
		Timestamp: time.Now().UnixMilli(),
		Data:      image,
	})
}

func (c *Conn) handleSpeechResult(text string) {
	if text == "" {
		return
	}

	action := c.machine.ProcessSpeech(c.ctx, text, time.Now())
	c.publishSessionID(c.machine.SessionID())

	switch a := action.(type) {
	case conversation.Ignore:

	case conversation.WakeAcknowledged:
		c.enqueue(hotwordDetectedMessage{
			Type:      typeHotwordDetected,
			Message:   a.Prompt,
			SessionID: c.SessionID(),
		})

	case conversation.Unclear:
		c.enqueue(clarificationMessage{Type: typeClarification, Message: a.Prompt})

	case conversation.Question:
		c.enqueue(processingMessage{Type: typeProcessing, Message: processingMessageText})

		result := c.pipe.Answer(c.ctx, c.SessionID(), a.Text, c.frames.Current(c.id))
		c.enqueue(aiResponseMessage{
			Type:             typeAIResponse,
			Question:         result.Question,
			Answer:           result.Answer,
			SceneDescription: result.SceneDescription,
			AudioURL:         result.AudioURL,
			SessionID:        c.SessionID(),
		})

	default:
		c.logger.Error("unhandled conversation action", "action", fmt.Sprintf("%T", action))
	}
}

// run drives the connection until it closes, then releases its resources.
// In-flight background jobs for this session complete or fail on their own.
func (c *Conn) run() {
	go c.writePump()
	go c.dispatch()
	c.readPump()

	c.frames.Release(c.id)
	sessionID := c.SessionID()
	if sessionID != "" {
		c.frames.Cleanup(sessionID)
	}
	c.logger.Info("connection closed", "session_id", sessionID)
}
