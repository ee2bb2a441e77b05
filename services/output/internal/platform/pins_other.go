// services/output/internal/platform/pins_other.go
//go:build !linux && !(rp2040 || rp2350)

package platform

import "lightcode-go/services/output/internal/core"

func newHostPinFactory() core.PinFactory { return NewFakePinFactory() }
