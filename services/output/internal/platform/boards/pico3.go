// services/output/internal/platform/boards/pico3.go
package boards

import "lightcode-go/services/output/internal/core"

// pico3 maps the classic three-port layout onto RP2 silicon: UART0 TX on
// GP0, UART1 TX on GP4, SPI0/I2C0 sharing the third port.
func init() {
	register(Board{
		Name: "pico3",
		Ports: []core.Descriptor{
			{Pin: 0, Serial: 0, SPI: core.EngineNone, I2C: core.EngineNone},
			{Pin: 4, Serial: 1, SPI: core.EngineNone, I2C: core.EngineNone},
			{Pin: 19, Serial: core.EngineNone, SPI: 0, I2C: 0},
		},
	})
}
