// services/output/internal/platform/boards/classic3.go
package boards

import "lightcode-go/services/output/internal/core"

// classic3 is the canonical three-port controller layout: two serial-capable
// pixel ports and one port carrying both SPI and I2C. Serial ids 1 and 2
// leave engine 0 free for the console.
func init() {
	register(Board{
		Name: "classic3",
		Ports: []core.Descriptor{
			{Pin: 2, Serial: 1, SPI: core.EngineNone, I2C: core.EngineNone},
			{Pin: 13, Serial: 2, SPI: core.EngineNone, I2C: core.EngineNone},
			{Pin: 10, Serial: core.EngineNone, SPI: 0, I2C: 0},
		},
	})
}
