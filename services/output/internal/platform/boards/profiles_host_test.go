//go:build !(rp2040 || rp2350)

package boards

import (
	"os"
	"path/filepath"
	"testing"

	"lightcode-go/services/output/internal/core"
)

func TestParseProfile(t *testing.T) {
	raw := []byte(`
name: barn16
ports:
  - pin: 2
    serial: 1
  - pin: 10
    spi: 0
    i2c: 0
  - pin: 7
`)
	b, err := ParseProfile(raw)
	if err != nil {
		t.Fatalf("ParseProfile: %v", err)
	}
	if b.Name != "barn16" || len(b.Ports) != 3 {
		t.Fatalf("parsed %q with %d ports", b.Name, len(b.Ports))
	}

	want := []core.Descriptor{
		{Pin: 2, Serial: 1, SPI: core.EngineNone, I2C: core.EngineNone},
		{Pin: 10, Serial: core.EngineNone, SPI: 0, I2C: 0},
		{Pin: 7, Serial: core.EngineNone, SPI: core.EngineNone, I2C: core.EngineNone},
	}
	for i, w := range want {
		if b.Ports[i] != w {
			t.Fatalf("port %d = %+v, want %+v", i, b.Ports[i], w)
		}
	}
}

func TestParseProfileRejections(t *testing.T) {
	cases := map[string]string{
		"missing name": "ports:\n  - pin: 2\n",
		"no ports":     "name: empty\n",
		"broken yaml":  "name: [",
	}
	for label, raw := range cases {
		if _, err := ParseProfile([]byte(raw)); err == nil {
			t.Fatalf("%s: accepted", label)
		}
	}
}

func TestLoadProfilesScansDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("a.yaml", "name: yard-a\nports:\n  - pin: 3\n    serial: 1\n")
	write("b.yaml", "name: [broken\n")
	write("c.yaml", "name: classic3\nports:\n  - pin: 3\n") // collides with a builtin
	write("notes.txt", "not a profile")

	loaded, errs := LoadProfiles(dir)
	if len(loaded) != 1 || loaded[0] != "yard-a" {
		t.Fatalf("loaded = %v, want [yard-a]", loaded)
	}
	if len(errs) != 2 {
		t.Fatalf("errs = %v, want broken yaml + duplicate", errs)
	}

	b, ok := Lookup("yard-a")
	if !ok || b.Ports[0].Serial != 1 {
		t.Fatalf("loaded profile not registered: %+v ok=%v", b, ok)
	}
}

func TestLoadProfilesMissingDir(t *testing.T) {
	loaded, errs := LoadProfiles(filepath.Join(t.TempDir(), "absent"))
	if loaded != nil || len(errs) != 1 {
		t.Fatalf("missing dir: loaded=%v errs=%v", loaded, errs)
	}
}
