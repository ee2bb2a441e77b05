// services/status/status.go
package status

import (
	"context"
	"encoding/json"
	"time"

	"lightcode-go/bus"
	"lightcode-go/types"
)

var (
	topicConfig = bus.Topic{"config", "status"}
	topicOutput = bus.Topic{"output", "status"}
	topicUptime = bus.Topic{"status", "uptime"}
)

const defaultInterval = 10 * time.Second

type Service struct {
	conn  *bus.Connection
	start time.Time

	last       types.OutputState
	lastFrames uint32
	lastAt     time.Time
}

func New(conn *bus.Connection) *Service {
	return &Service{conn: conn}
}

// Run publishes a retained uptime report at the configured interval, folding
// in the latest retained output status.
func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	outSub := s.conn.Subscribe(topicOutput)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(outSub)

	s.start = time.Now()
	s.lastAt = s.start

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-cfgSub.Channel():
			if cfg, ok := decodeSettings(msg.Payload); ok && cfg.IntervalS > 0 {
				tick.Reset(time.Duration(cfg.IntervalS) * time.Second)
			}
		case msg := <-outSub.Channel():
			if st, ok := msg.Payload.(types.OutputState); ok {
				s.last = st
			}
		case <-tick.C:
			s.publish()
		}
	}
}

func (s *Service) publish() {
	now := time.Now()
	var fps uint16
	if dt := now.Sub(s.lastAt).Seconds(); dt > 0 && s.last.Frames >= s.lastFrames {
		fps = uint16(float64(s.last.Frames-s.lastFrames) / dt)
	}
	s.lastFrames = s.last.Frames
	s.lastAt = now

	s.conn.Publish(s.conn.NewMessage(topicUptime, types.StatusReport{
		UptimeS: int64(now.Sub(s.start).Seconds()),
		Frames:  s.last.Frames,
		FPS:     fps,
		Paused:  s.last.Paused,
	}, true))
}

func decodeSettings(p any) (types.StatusSettings, bool) {
	var cfg types.StatusSettings
	switch v := p.(type) {
	case []byte:
		if json.Unmarshal(v, &cfg) != nil {
			return cfg, false
		}
	case string:
		if json.Unmarshal([]byte(v), &cfg) != nil {
			return cfg, false
		}
	case types.StatusSettings:
		cfg = v
	default:
		return cfg, false
	}
	return cfg, true
}
