// services/output/internal/platform/boards/profiles_host.go
//go:build !(rp2040 || rp2350)

package boards

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/x/fmtx"
)

// YAML wiring profiles let a deployment describe site-specific boards
// without recompiling. Engine fields are optional; absent means not routed.
//
//	name: barn16
//	ports:
//	  - pin: 2
//	    serial: 1
//	  - pin: 10
//	    spi: 0
type boardYAML struct {
	Name  string     `yaml:"name"`
	Ports []portYAML `yaml:"ports"`
}

type portYAML struct {
	Pin    int  `yaml:"pin"`
	Serial *int `yaml:"serial"`
	SPI    *int `yaml:"spi"`
	I2C    *int `yaml:"i2c"`
}

func engineOf(p *int) int {
	if p == nil {
		return core.EngineNone
	}
	return *p
}

// ParseProfile decodes one YAML profile.
func ParseProfile(raw []byte) (Board, error) {
	var y boardYAML
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return Board{}, err
	}
	if y.Name == "" {
		return Board{}, fmtx.Errorf("board profile missing name")
	}
	if len(y.Ports) == 0 {
		return Board{}, fmtx.Errorf("board profile %q has no ports", y.Name)
	}
	b := Board{Name: y.Name, Ports: make([]core.Descriptor, len(y.Ports))}
	for i, p := range y.Ports {
		b.Ports[i] = core.Descriptor{
			Pin:    p.Pin,
			Serial: engineOf(p.Serial),
			SPI:    engineOf(p.SPI),
			I2C:    engineOf(p.I2C),
		}
	}
	return b, nil
}

// LoadProfiles registers every *.yaml profile under dir. Broken files are
// reported but do not abort the scan.
func LoadProfiles(dir string) (loaded []string, errs []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{err}
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b, err := ParseProfile(raw)
		if err != nil {
			errs = append(errs, fmtx.Errorf("%s: %w", e.Name(), err))
			continue
		}
		if _, exists := builtin[b.Name]; exists {
			errs = append(errs, fmtx.Errorf("%s: profile %q already registered", e.Name(), b.Name))
			continue
		}
		register(b)
		loaded = append(loaded, b.Name)
	}
	return loaded, errs
}
