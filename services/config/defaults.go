// services/config/defaults.go
package config

// defaultConfig seeds every section. A config file overrides whole
// sections, not individual keys, so an override must restate the section it
// touches. The "link" section is absent on purpose: the link service idles
// until configured.
var defaultConfig = []byte(`{
  "output": {
    "tick_ms": 25
  },
  "status": {
    "interval_s": 10
  }
}`)
