package gateway

// Inbound message types.
const (
	typeVideoFrame   = "video_frame"
	typeSpeechResult = "speech_result"
	typePing         = "ping"
)

// Outbound message types.
const (
	typeHotwordDetected = "hotword_detected"
	typeClarification   = "clarification"
	typeProcessing      = "processing"
	typeAIResponse      = "ai_response"
	typeError           = "error"
)

const processingMessageText = "Analyzing video and processing your question..."

type inboundMessage struct {
	Type string `json:"type"`
	// Data is the base64-encoded image of a video_frame message.
	Data string `json:"data,omitempty"`
	// Text is the transcript of a speech_result message.
	Text string `json:"text,omitempty"`
}

type pingMessage struct {
	Type string `json:"type"`
}

type hotwordDetectedMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type clarificationMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type processingMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type aiResponseMessage struct {
	Type             string  `json:"type"`
	Question         string  `json:"question"`
	Answer           string  `json:"answer"`
	SceneDescription string  `json:"scene_description"`
	AudioURL         *string `json:"audio_url"`
	SessionID        string  `json:"session_id"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
