// services/config/config.go
package config

import (
	"encoding/json"
	"os"

	"lightcode-go/bus"
	"lightcode-go/x/logx"
)

const prefix = "config"

// Publish loads the embedded defaults, overlays the optional file section by
// section, and publishes each top-level section retained on
// {"config",<section>}. Services decode the one they own; late subscribers
// see the retained copy.
func Publish(conn *bus.Connection, path string) error {
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(defaultConfig, &doc); err != nil {
		return err
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			logx.Warn("config file unreadable, using defaults", "path", path, "err", err)
		} else {
			var over map[string]json.RawMessage
			if err := json.Unmarshal(raw, &over); err != nil {
				logx.Warn("config file rejected, using defaults", "path", path, "err", err)
			} else {
				for k, v := range over {
					doc[k] = v
				}
			}
		}
	}

	for section, raw := range doc {
		conn.Publish(conn.NewMessage(bus.Topic{prefix, section}, []byte(raw), true))
	}
	logx.Info("config published", "sections", len(doc))
	return nil
}
