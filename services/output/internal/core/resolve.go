package core

// Resolve maps a requested type onto what the port's descriptor can carry.
// The serial family needs a serial engine; Relay is a pure-GPIO technique
// and must NOT sit on a port with a serial engine; SPI and I2C families need
// their respective engines. Anything infeasible, out of range included,
// degrades to Disabled. Pure function, no side effects.
func Resolve(requested OutputType, d Descriptor) OutputType {
	switch requested {
	case TypeWS2811, TypeGECE, TypeSerial, TypeRenard, TypeDMX:
		if !d.HasSerial() {
			return TypeDisabled
		}
	case TypeRelay:
		if d.HasSerial() {
			return TypeDisabled
		}
	case TypeAPA102, TypeWS2801:
		if !d.HasSPI() {
			return TypeDisabled
		}
	case TypePCA9685:
		if !d.HasI2C() {
			return TypeDisabled
		}
	case TypeDisabled:
	default:
		return TypeDisabled
	}
	return requested
}
