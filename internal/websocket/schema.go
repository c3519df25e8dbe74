package websocket

// Actions (client to server).

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload carries any inbound stream message; unused fields stay
// empty depending on the action.
type RequestPayload struct {
	Action     Action `json:"action"`
	QuestionID string `json:"question_id,omitempty"`
	OptionID   string `json:"option_id,omitempty"`
}

// Events (server to client).

type Event string

const (
	EventError  Event = "error"
	EventSaved  Event = "saved"
	EventGraded Event = "graded"
	EventPong   Event = "pong"
)

// SavedResponse acknowledges a recorded answer and reports the countdown so
// the client can resync its display clock.
type SavedResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// GradedResponse carries the score report after a stream submission.
type GradedResponse struct {
	Event  Event       `json:"event"`
	Status string      `json:"status"`
	Report interface{} `json:"report"`
}

// ErrorResponse reports a stream-level failure.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// PongResponse answers a keepalive ping, carrying the countdown too.
type PongResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}
