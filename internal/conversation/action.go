package conversation

// Action is the state machine's verdict on one speech event. The variants form
// a closed set so the connection handler can switch exhaustively.
type Action interface {
	isAction()
}

// Ignore means the utterance carries no meaning for the current state.
type Ignore struct{}

// WakeAcknowledged means a wake phrase was accepted and a conversation window
// opened.
type WakeAcknowledged struct {
	Prompt string
}

// Question is a qualifying follow-up utterance inside an active window.
type Question struct {
	Text string
}

// Unclear is a too-short utterance inside an active window.
type Unclear struct {
	Prompt string
}

func (Ignore) isAction()           {}
func (WakeAcknowledged) isAction() {}
func (Question) isAction()         {}
func (Unclear) isAction()          {}
