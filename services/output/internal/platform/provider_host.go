// services/output/internal/platform/provider_host.go
//go:build !(rp2040 || rp2350)

package platform

import (
	"lightcode-go/services/output/internal/platform/boards"
	"lightcode-go/types"
)

// NewProvider builds the host engine set: real serial where a device path is
// mapped, GPIO through the character device where the OS has one, inert
// fakes everywhere else. Hosts can therefore run the full service loop and
// drive real pixels over a USB serial adapter.
func NewProvider(board boards.Board, cfg types.OutputSettings) *Provider {
	serialIDs, spiIDs, i2cIDs := engineIDs(board)
	return &Provider{
		Serial: newHostSerialFactory(serialIDs, cfg.SerialDevs),
		SPI:    NewFakeSPIFactory(spiIDs...),
		I2C:    NewFakeI2CFactory(i2cIDs...),
		Pins:   newHostPinFactory(),
	}
}
