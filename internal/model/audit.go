package model

// AuditEventType enumerates the test-lifecycle events recorded for review.
type AuditEventType string

const (
	AuditTestStarted       AuditEventType = "test_started"
	AuditTestSubmitted     AuditEventType = "test_submitted"
	AuditTestAbandoned     AuditEventType = "test_abandoned"
	AuditSecurityViolation AuditEventType = "security_violation"
	AuditHeartbeatWarning  AuditEventType = "heartbeat_warning"
)

// AuditEvent is one lifecycle/telemetry event queued for durable persistence
// by the audit worker. Detail holds a free-form JSON fragment.
type AuditEvent struct {
	UserID    int            `json:"user_id"`
	TestID    int            `json:"test_id"`
	EventType AuditEventType `json:"event_type"`
	Detail    string         `json:"detail,omitempty"`
	Timestamp int64          `json:"timestamp"`
}
