package types

// ------------------------
// Status reporter payloads
// ------------------------

// StatusReport is published retained on {"status","uptime"}.
type StatusReport struct {
	UptimeS int64  `json:"uptime_s"`
	Frames  uint32 `json:"frames"`
	FPS     uint16 `json:"fps"`
	Paused  bool   `json:"paused"`
}
