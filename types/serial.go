package types

// ------------------------
// Serial line format
// ------------------------

type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "none"
	}
}

func (p Parity) MarshalJSON() ([]byte, error) { return []byte(`"` + p.String() + `"`), nil }

// SerialFormat is the line discipline a protocol driver asks its serial
// engine for. DMX wants 250000 8N2; Renard and generic serial run 8N1 at a
// configurable rate.
type SerialFormat struct {
	Baud     uint32 `json:"baud"`
	DataBits uint8  `json:"data_bits"`
	StopBits uint8  `json:"stop_bits"`
	Parity   Parity `json:"parity"`
}
