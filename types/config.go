package types

// ------------------------
// System configuration sections
//
// The config service publishes each top-level section retained on
// {"config", <section>}; services decode the one they own.
// ------------------------

// OutputSettings is the "output" section.
type OutputSettings struct {
	Board      string `json:"board,omitempty"`       // board profile name
	ProfileDir string `json:"profile_dir,omitempty"` // extra YAML board profiles
	StoreDir   string `json:"store_dir,omitempty"`   // config document directory
	TickMs     int    `json:"tick_ms,omitempty"`     // render period
	Capacity   int    `json:"capacity,omitempty"`    // shared buffer bytes

	// SerialDevs maps a serial engine id (decimal string) to a host device
	// path, e.g. {"1": "/dev/ttyUSB0"}. Unmapped engines get inert fakes.
	SerialDevs map[string]string `json:"serial_devs,omitempty"`
}

// StatusSettings is the "status" section.
type StatusSettings struct {
	IntervalS int `json:"interval_s,omitempty"`
}
