package vision

import "time"

type Config struct {
	CaptionURL string
	Model      string
	Timeout    time.Duration
	FrameTTL   time.Duration
}

// Frame is the most recently observed image for a session. Timestamp is the
// capture time in unix milliseconds.
type Frame struct {
	SessionID string
	Timestamp int64
	Data      []byte
}
