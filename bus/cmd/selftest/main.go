// bus/cmd/selftest/main.go
//go:build rp2040 || rp2350

// On-device smoke test for the message bus. Flash it when a TinyGo or
// machine-package update is suspected of breaking channel or timer behavior;
// the host test suite covers the same ground under `go test ./bus`.
//
// Solid LED: all checks passed. Blinking LED: at least one failed.
package main

import (
	"context"
	"time"

	"lightcode-go/bus"
	"lightcode-go/x/fmtx"

	"machine"
)

func logf(format string, a ...any) {
	println(fmtx.Sprintf(format, a...))
}

func recvString(sub *bus.Subscription, want string) bool {
	select {
	case m := <-sub.Channel():
		s, ok := m.Payload.(string)
		return ok && s == want
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func recvNothing(sub *bus.Subscription) bool {
	select {
	case <-sub.Channel():
		return false
	case <-time.After(50 * time.Millisecond):
		return true
	}
}

func checkPubSub() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("selftest")
	sub := c.Subscribe(bus.Topic{"output", "status"})
	c.Publish(c.NewMessage(bus.Topic{"output", "status"}, "running", false))
	return recvString(sub, "running")
}

func checkRetained() bool {
	b := bus.NewBus(2)
	c := b.NewConnection("selftest")
	c.Publish(c.NewMessage(bus.Topic{"config", "output"}, "tick=25", true))
	return recvString(c.Subscribe(bus.Topic{"config", "output"}), "tick=25")
}

func checkSingleWild() bool {
	b := bus.NewBus(8)
	c := b.NewConnection("selftest")
	mid := c.Subscribe(bus.Topic{"output", "+", "status"})
	miss := c.Subscribe(bus.Topic{"output", "+", "options"})

	c.Publish(b.NewMessage(bus.Topic{"output", 2, "status"}, "hit", false))
	if !recvString(mid, "hit") || !recvNothing(miss) {
		return false
	}
	// "+" never spans levels.
	c.Publish(b.NewMessage(bus.Topic{"output", "status"}, "short", false))
	return recvNothing(mid)
}

func checkRestWild() bool {
	b := bus.NewBus(8)
	c := b.NewConnection("selftest")
	under := c.Subscribe(bus.Topic{"output", "#"})

	c.Publish(b.NewMessage(bus.Topic{"output"}, "own", false))
	if !recvString(under, "own") {
		return false
	}
	c.Publish(b.NewMessage(bus.Topic{"output", "control", "set"}, "deep", false))
	return recvString(under, "deep")
}

func checkRetainedFanOut() bool {
	b := bus.NewBus(8)
	c := b.NewConnection("selftest")
	c.Publish(b.NewMessage(bus.Topic{"output", "state"}, "a", true))
	c.Publish(b.NewMessage(bus.Topic{"output", "status"}, "b", true))

	sub := c.Subscribe(bus.Topic{"output", "+"})
	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case m := <-sub.Channel():
			if s, ok := m.Payload.(string); ok {
				got[s] = true
			}
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}
	return got["a"] && got["b"]
}

func checkDropOldest() bool {
	b := bus.NewBus(2)
	c := b.NewConnection("selftest")
	sub := c.Subscribe(bus.Topic{"output", "frame"})
	for _, p := range []string{"f1", "f2", "f3"} {
		c.Publish(c.NewMessage(bus.Topic{"output", "frame"}, p, false))
	}
	return recvString(sub, "f2") && recvString(sub, "f3") && recvNothing(sub)
}

func checkRequestReply() bool {
	b := bus.NewBus(4)
	caller := b.NewConnection("caller")
	server := b.NewConnection("server")

	srvSub := server.Subscribe(bus.Topic{"output", "control", "status"})
	go func() {
		if msg, ok := <-srvSub.Channel(); ok {
			server.Reply(msg, "OK", false)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	reply, err := caller.RequestWait(ctx, b.NewMessage(bus.Topic{"output", "control", "status"}, nil, false))
	server.Unsubscribe(srvSub)
	if err != nil {
		return false
	}
	s, ok := reply.Payload.(string)
	return ok && s == "OK"
}

func checkRequestTimeout() bool {
	b := bus.NewBus(4)
	caller := b.NewConnection("caller")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := caller.RequestWait(ctx, b.NewMessage(bus.Topic{"nobody", "home"}, nil, false))
	return err != nil
}

func main() {
	// Let USB CDC enumerate so the report is visible.
	time.Sleep(250 * time.Millisecond)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()

	checks := []struct {
		name string
		fn   func() bool
	}{
		{"pubsub", checkPubSub},
		{"retained", checkRetained},
		{"wild_one", checkSingleWild},
		{"wild_rest", checkRestWild},
		{"retained_fanout", checkRetainedFanOut},
		{"drop_oldest", checkDropOldest},
		{"request_reply", checkRequestReply},
		{"request_timeout", checkRequestTimeout},
	}

	failed := 0
	logf("bus selftest: %d checks", len(checks))
	for _, c := range checks {
		ok := c.fn()
		if ok {
			logf("  ok   %s", c.name)
		} else {
			logf("  FAIL %s", c.name)
			failed++
		}
	}
	logf("bus selftest: %d failed", failed)

	if failed == 0 {
		for {
			time.Sleep(time.Hour)
		}
	}
	for {
		led.High()
		time.Sleep(250 * time.Millisecond)
		led.Low()
		time.Sleep(250 * time.Millisecond)
	}
}
