package core

// OutputType selects the wire protocol a port drives. Values are stable:
// they appear as numeric keys in persisted configuration documents.
type OutputType uint8

const (
	TypeWS2811 OutputType = iota
	TypeGECE
	TypeSerial
	TypeRenard
	TypeDMX
	TypeRelay
	TypeAPA102
	TypeWS2801
	TypePCA9685
	TypeDisabled // must stay last; full-matrix walks finish on it
)

// TypeCount bounds the valid configurable range [0, TypeCount).
const TypeCount = int(TypeDisabled) + 1

func (t OutputType) Valid() bool { return int(t) < TypeCount }

func (t OutputType) String() string {
	switch t {
	case TypeWS2811:
		return "WS2811"
	case TypeGECE:
		return "GECE"
	case TypeSerial:
		return "Serial"
	case TypeRenard:
		return "Renard"
	case TypeDMX:
		return "DMX"
	case TypeRelay:
		return "Relay"
	case TypeAPA102:
		return "APA102"
	case TypeWS2801:
		return "WS2801"
	case TypePCA9685:
		return "PCA9685"
	case TypeDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// EngineNone marks an absent engine in a port descriptor.
const EngineNone = -1

// Descriptor is the static hardware capability of one port: its data pin and
// which serial/SPI/I2C engines, if any, are routed to it. Immutable after
// board selection.
type Descriptor struct {
	Pin    int
	Serial int
	SPI    int
	I2C    int
}

func (d Descriptor) HasSerial() bool { return d.Serial != EngineNone }
func (d Descriptor) HasSPI() bool    { return d.SPI != EngineNone }
func (d Descriptor) HasI2C() bool    { return d.I2C != EngineNone }
