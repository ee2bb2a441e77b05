// services/status/status_test.go
package status

import (
	"context"
	"testing"
	"time"

	"lightcode-go/bus"
	"lightcode-go/types"
)

func newConn() *bus.Connection {
	return bus.NewBus(16).NewConnection("status-test")
}

func lastReport(t *testing.T, conn *bus.Connection, d time.Duration) types.StatusReport {
	t.Helper()
	sub := conn.Subscribe(bus.Topic{"status", "uptime"})
	defer conn.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		if !m.Retained {
			t.Fatalf("uptime report not retained")
		}
		r, ok := m.Payload.(types.StatusReport)
		if !ok {
			t.Fatalf("report payload type %T", m.Payload)
		}
		return r
	case <-time.After(d):
		t.Fatalf("no uptime report within %s", d)
		return types.StatusReport{}
	}
}

func TestReportDerivesUptimeAndFPS(t *testing.T) {
	conn := newConn()
	s := New(conn)
	now := time.Now()
	s.start = now.Add(-65 * time.Second)
	s.lastAt = now.Add(-2 * time.Second)
	s.lastFrames = 100
	s.last = types.OutputState{Frames: 1100, Paused: true}

	s.publish()

	r := lastReport(t, conn, 100*time.Millisecond)
	if r.UptimeS < 65 || r.UptimeS > 66 {
		t.Fatalf("UptimeS = %d", r.UptimeS)
	}
	if r.Frames != 1100 {
		t.Fatalf("Frames = %d", r.Frames)
	}
	// 1000 frames over ~2s of wall clock.
	if r.FPS < 495 || r.FPS > 500 {
		t.Fatalf("FPS = %d", r.FPS)
	}
	if !r.Paused {
		t.Fatalf("Paused flag lost")
	}
	if s.lastFrames != 1100 {
		t.Fatalf("frame baseline not advanced: %d", s.lastFrames)
	}
}

func TestFrameCounterResetReportsZeroFPS(t *testing.T) {
	conn := newConn()
	s := New(conn)
	now := time.Now()
	s.start = now.Add(-10 * time.Second)
	s.lastAt = now.Add(-time.Second)
	s.lastFrames = 5000
	s.last = types.OutputState{Frames: 40}

	s.publish()

	r := lastReport(t, conn, 100*time.Millisecond)
	if r.FPS != 0 {
		t.Fatalf("FPS after counter reset = %d", r.FPS)
	}
	if s.lastFrames != 40 {
		t.Fatalf("baseline not rebased to %d: %d", 40, s.lastFrames)
	}
}

func TestRunFoldsRetainedOutputStatus(t *testing.T) {
	conn := newConn()

	// Retained feeds exist before the service starts: it must pick both up.
	conn.Publish(conn.NewMessage(bus.Topic{"output", "status"},
		types.OutputState{Running: true, Frames: 7, Paused: true}, true))
	conn.Publish(conn.NewMessage(bus.Topic{"config", "status"},
		[]byte(`{"interval_s":1}`), true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go New(conn).Run(ctx)

	r := lastReport(t, conn, 3*time.Second)
	if r.Frames != 7 {
		t.Fatalf("Frames = %d, want 7", r.Frames)
	}
	if !r.Paused {
		t.Fatalf("Paused flag lost")
	}
	if r.UptimeS > 3 {
		t.Fatalf("UptimeS = %d right after start", r.UptimeS)
	}
}

func TestDecodeSettingsForms(t *testing.T) {
	for _, p := range []any{
		[]byte(`{"interval_s":30}`),
		`{"interval_s":30}`,
		types.StatusSettings{IntervalS: 30},
	} {
		cfg, ok := decodeSettings(p)
		if !ok || cfg.IntervalS != 30 {
			t.Fatalf("decode %T = %+v, %v", p, cfg, ok)
		}
	}

	if _, ok := decodeSettings(42); ok {
		t.Fatalf("numeric payload accepted")
	}
	if _, ok := decodeSettings([]byte(`{`)); ok {
		t.Fatalf("broken JSON accepted")
	}
}
