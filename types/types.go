package types

// ------------------------
// Common service state (retained)
// ------------------------

type ServiceState struct {
	Level  string `json:"level"`  // "idle", "ready", "up", "degraded", "error", "stopped"
	Status string `json:"status"` // short machine code
	Error  string `json:"error,omitempty"`
	TS     int64  `json:"ts_ms"`
}

// Generic replies
type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"` // errcode string
}
