// services/output/internal/platform/provider.go
package platform

import (
	"lightcode-go/services/output/internal/core"
	"lightcode-go/services/output/internal/platform/boards"
)

// Provider bundles the per-target engine factories. NewProvider has one
// signature on every target; build tags pick the implementation.
type Provider struct {
	Serial core.SerialFactory
	SPI    core.SPIFactory
	I2C    core.I2CFactory
	Pins   core.PinFactory
}

// Engines wraps the factories in a claim-tracked registry.
func (p *Provider) Engines() *core.EngineRegistry {
	return core.NewEngineRegistry(p.Serial, p.SPI, p.I2C, p.Pins)
}

// engineIDs collects the distinct engine ids a board routes, per kind.
func engineIDs(b boards.Board) (serial, spi, i2c []int) {
	seenSerial := map[int]bool{}
	seenSPI := map[int]bool{}
	seenI2C := map[int]bool{}
	for _, d := range b.Ports {
		if d.HasSerial() && !seenSerial[d.Serial] {
			seenSerial[d.Serial] = true
			serial = append(serial, d.Serial)
		}
		if d.HasSPI() && !seenSPI[d.SPI] {
			seenSPI[d.SPI] = true
			spi = append(spi, d.SPI)
		}
		if d.HasI2C() && !seenI2C[d.I2C] {
			seenI2C[d.I2C] = true
			i2c = append(i2c, d.I2C)
		}
	}
	return serial, spi, i2c
}
