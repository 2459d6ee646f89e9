package websocket

// ─── Events (Server → Monitor Client) ───────────────────────────────

type Event string

const (
	EventTestStarted   Event = "test_started"
	EventViolation     Event = "violation"
	EventTestSubmitted Event = "test_submitted"
	EventTestAbandoned Event = "test_abandoned"
	EventError         Event = "error"
	EventPong          Event = "pong"
)

// ProctorEvent is one live monitoring update pushed to admin monitor
// clients. It mirrors the payload published on the test's Redis channel.
type ProctorEvent struct {
	Event       Event   `json:"event"`
	TestID      int     `json:"test_id"`
	UserID      int     `json:"user_id"`
	StudentName string  `json:"student_name,omitempty"`
	Detail      string  `json:"detail,omitempty"`
	Violations  int     `json:"violations,omitempty"`
	Score       float64 `json:"score,omitempty"`
	Timestamp   int64   `json:"timestamp"`
}

// ─── Actions (Monitor Client → Server) ──────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
