package eventlog

import "context"

// Event types recorded for a session.
const (
	EventSessionStart   = "session_start"
	EventSpeechInput    = "speech_input"
	EventVisionAnalysis = "vision_analysis"
	EventQAInteraction  = "qa_interaction"
	EventError          = "error"
)

// Appender records session events. Implementations are fire-and-forget: a
// failed append is logged by the implementation and never surfaces to the
// caller.
type Appender interface {
	Append(ctx context.Context, sessionID, eventType string, payload map[string]any)
}
