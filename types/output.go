package types

// ------------------------
// Output service state (retained)
// ------------------------

// PortState describes one physical output port in the retained state payload.
type PortState struct {
	ID     int    `json:"id"`
	Type   int    `json:"type"`
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
}

type OutputState struct {
	Running  bool        `json:"running"`
	Paused   bool        `json:"paused"`
	Used     int         `json:"used"`
	Capacity int         `json:"capacity"`
	Frames   uint32      `json:"frames"`
	Ports    []PortState `json:"ports"`
}

// ------------------------
// Control payloads
// ------------------------

// PortRequest selects one port for portconfig queries.
type PortRequest struct {
	Port int `json:"port"`
}

// TypeOption is one entry the configuration surface may offer for a port.
type TypeOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PortOptions struct {
	ID       int          `json:"id"`
	Selected int          `json:"selectedoption"`
	List     []TypeOption `json:"list"`
}

type OutputOptions struct {
	Ports []PortOptions `json:"output"`
}
