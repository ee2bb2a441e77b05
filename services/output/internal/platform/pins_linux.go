// services/output/internal/platform/pins_linux.go
//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"os"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"lightcode-go/services/output/internal/core"
)

const gpioChip = "gpiochip0"

// newHostPinFactory prefers the kernel GPIO character device. Development
// machines without one fall back to fakes so relay configs still validate.
func newHostPinFactory() core.PinFactory {
	if _, err := os.Stat("/dev/" + gpioChip); err != nil {
		return NewFakePinFactory()
	}
	return &cdevPinFactory{pins: map[int]*cdevPin{}}
}

type cdevPinFactory struct {
	mu   sync.Mutex
	pins map[int]*cdevPin
}

func (f *cdevPinFactory) ByNumber(n int) (core.GPIOPin, bool) {
	if n < 0 {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	if !ok {
		p = &cdevPin{n: n}
		f.pins[n] = p
	}
	return p, true
}

// cdevPin requests its line lazily on ConfigureOutput, so merely listing a
// pin in a board profile does not grab kernel resources.
type cdevPin struct {
	n int

	mu    sync.Mutex
	line  *gpiocdev.Line
	level bool
}

func (p *cdevPin) Number() int { return p.n }

func (p *cdevPin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.line != nil {
		p.line.Close()
		p.line = nil
	}
	v := 0
	if initial {
		v = 1
	}
	l, err := gpiocdev.RequestLine(gpioChip, p.n, gpiocdev.AsOutput(v))
	if err != nil {
		return err
	}
	p.line = l
	p.level = initial
	return nil
}

func (p *cdevPin) Set(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.line == nil {
		return
	}
	v := 0
	if level {
		v = 1
	}
	if err := p.line.SetValue(v); err == nil {
		p.level = level
	}
}

func (p *cdevPin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}
