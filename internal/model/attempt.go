package model

import "time"

// ViolationLogCap bounds the attempt's violation log; the most recent
// entries are retained when the cap is exceeded.
const ViolationLogCap = 100

// ViolationEntry is one client-reported security event during a test.
type ViolationEntry struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	TestID    int    `json:"test_id"`
}

// Attempt is the ephemeral, session-scoped record of one in-progress test
// sitting. It lives in the session store (Redis), never in durable storage,
// and is destroyed on submit, abandonment, logout, or fresh login.
type Attempt struct {
	TestID             int              `json:"test_id"`
	StartedAt          time.Time        `json:"started_at"`
	SecurityViolations int              `json:"security_violations"`
	TabSwitches        int              `json:"tab_switches"`
	FullscreenExits    int              `json:"fullscreen_exits"`
	SecurityLog        []ViolationEntry `json:"security_log"`
	LastHeartbeat      string           `json:"last_heartbeat,omitempty"`
}

// AppendViolation adds one entry to the log, dropping the oldest entries
// beyond ViolationLogCap. Order is preserved, most recent last.
func (a *Attempt) AppendViolation(entry ViolationEntry) {
	a.SecurityLog = append(a.SecurityLog, entry)
	if len(a.SecurityLog) > ViolationLogCap {
		a.SecurityLog = a.SecurityLog[len(a.SecurityLog)-ViolationLogCap:]
	}
}

// SecurityInfo snapshots the attempt's telemetry for the result payload,
// keeping only the most recent maxLog entries.
func (a *Attempt) SecurityInfo(maxLog int) SecurityInfo {
	log := a.SecurityLog
	if len(log) > maxLog {
		log = log[len(log)-maxLog:]
	}
	// Copy so later attempt mutation can't alias the persisted slice.
	snapshot := make([]ViolationEntry, len(log))
	copy(snapshot, log)

	return SecurityInfo{
		Violations:      a.SecurityViolations,
		TabSwitches:     a.TabSwitches,
		FullscreenExits: a.FullscreenExits,
		SecurityLog:     snapshot,
	}
}

// HeartbeatRequest is the periodic client report during a test. The client
// is authoritative for its own counters; missing fields default to zero
// because telemetry is best-effort.
type HeartbeatRequest struct {
	TestID             int    `json:"test_id" binding:"required"`
	Timestamp          string `json:"timestamp"`
	SecurityViolations int    `json:"security_violations"`
	TabSwitches        int    `json:"tab_switches"`
	FullscreenExits    int    `json:"fullscreen_exits"`
}

// ViolationRequest reports one security event (tab switch, fullscreen exit,
// devtools, ...) observed by the client.
type ViolationRequest struct {
	TestID          int    `json:"test_id" binding:"required"`
	ViolationType   string `json:"violation_type" binding:"required,max=100"`
	Timestamp       string `json:"timestamp"`
	TotalViolations int    `json:"total_violations"`
}

// AbandonRequest is the fire-and-forget closing signal (sendBeacon). All
// fields are optional — the call must succeed with whatever arrived.
type AbandonRequest struct {
	TestID     int    `json:"test_id"`
	Timestamp  string `json:"timestamp"`
	Violations int    `json:"violations"`
}
