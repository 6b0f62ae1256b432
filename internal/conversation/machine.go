package conversation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seehear/assist-backend/internal/eventlog"
	"github.com/seehear/assist-backend/internal/hotword"
)

const (
	// HotwordCooldown suppresses duplicate wake-phrase detections caused by
	// overlapping transcription windows.
	HotwordCooldown = 2 * time.Second

	// ActivityWindow keeps a conversation open after the last qualifying
	// utterance. It slides forward from each accepted follow-up.
	ActivityWindow = 300 * time.Second

	// MinQuestionTokens is the minimum token count for an utterance to count
	// as a follow-up question rather than noise.
	MinQuestionTokens = 2
)

const (
	wakePrompt    = "Yes, how can I help you?"
	unclearPrompt = "I didn't catch that. Could you repeat?"
)

// Session is one continuous user interaction. It lives only in process memory
// and is owned by its connection's dispatch goroutine; only derived events are
// persisted.
type Session struct {
	ID             string
	CreatedAt      time.Time
	Active         bool
	LastHotwordAt  time.Time
	LastActivityAt time.Time
}

// Machine decides what each inbound speech event means for one connection.
// It is not safe for concurrent use; each connection owns its own Machine.
type Machine struct {
	session *Session
	events  eventlog.Appender
	logger  *slog.Logger
}

func NewMachine(events eventlog.Appender, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		events: events,
		logger: logger.With("component", "conversation"),
	}
}

// Session returns the current session, or nil before the first accepted wake
// phrase.
func (m *Machine) Session() *Session {
	return m.session
}

// SessionID returns the current session id, or "" before the first accepted
// wake phrase.
func (m *Machine) SessionID() string {
	if m.session == nil {
		return ""
	}
	return m.session.ID
}

// ProcessSpeech maps one transcribed utterance to an Action, evaluated against
// the event's arrival time. Expiry is checked lazily here; no timers run in
// the background.
func (m *Machine) ProcessSpeech(ctx context.Context, text string, now time.Time) Action {
	normalized := hotword.Normalize(text)
	m.logger.Debug("processing speech", "text", text, "normalized", normalized)

	if m.session != nil {
		m.events.Append(ctx, m.session.ID, eventlog.EventSpeechInput, map[string]any{
			"text":           text,
			"processed_text": normalized,
		})
	}

	// Wake phrase wins over follow-up detection even mid-conversation.
	if phrase, ok := hotword.Match(text); ok {
		if m.session == nil || now.Sub(m.session.LastHotwordAt) > HotwordCooldown {
			m.acceptHotword(ctx, phrase, now)
			return WakeAcknowledged{Prompt: wakePrompt}
		}
		m.logger.Debug("hotword in cooldown", "phrase", phrase)
		return Ignore{}
	}

	if m.session != nil && m.session.Active {
		sinceActivity := now.Sub(m.session.LastActivityAt)
		if sinceActivity < ActivityWindow {
			if len(strings.Fields(normalized)) >= MinQuestionTokens {
				m.session.LastActivityAt = now
				m.logger.Info("question detected", "session_id", m.session.ID, "text", normalized)
				return Question{Text: normalized}
			}
			// An unclear utterance must not extend the window, or noise
			// would keep a session alive indefinitely.
			return Unclear{Prompt: unclearPrompt}
		}

		m.logger.Info("conversation expired",
			"session_id", m.session.ID,
			"idle", sinceActivity.Round(time.Second))
		m.session.Active = false
	}

	return Ignore{}
}

func (m *Machine) acceptHotword(ctx context.Context, phrase string, now time.Time) {
	if m.session == nil {
		m.session = &Session{
			ID:        uuid.New().String(),
			CreatedAt: now,
		}
		m.logger.Info("session started", "session_id", m.session.ID)
		m.events.Append(ctx, m.session.ID, eventlog.EventSessionStart, map[string]any{
			"timestamp": now.UTC().Format(time.RFC3339),
		})
	}

	m.session.LastHotwordAt = now
	m.session.LastActivityAt = now
	m.session.Active = true
	m.logger.Info("hotword detected", "session_id", m.session.ID, "phrase", phrase)
}
