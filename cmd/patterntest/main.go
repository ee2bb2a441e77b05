// cmd/patterntest/main.go
//
// Host demo: brings up the full output stack against a scratch store,
// installs a small document, prints the window layout, and drives ramping
// levels through the frame topic.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lightcode-go/bus"
	"lightcode-go/services/output"
	"lightcode-go/types"
	"lightcode-go/x/logx"
	"lightcode-go/x/ramp"
)

const demoDoc = `{"output_config":{"channels":{
  "0": {"type":0, "0":{"pixel_count":8,"color_order":"rgb"}},
  "1": {"type":4, "4":{"num_channels":16}},
  "2": {"type":6, "6":{"pixel_count":8,"brightness":16}}
}}}`

func main() {
	var (
		boardName = flag.String("board", "", "board profile (default: platform default)")
		duration  = flag.Duration("duration", 10*time.Second, "how long to run")
		logLevel  = flag.String("log-level", "warn", "debug|info|warn|error")
	)
	flag.Parse()

	logx.Setup(*logLevel, "text")

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	b := bus.NewBus(32)
	ui := b.NewConnection("patterntest")

	// Self-contained config: the document store lives under a scratch dir.
	dir := filepath.Join(os.TempDir(), "lightcode-patterntest")
	ui.Publish(ui.NewMessage(bus.Topic{"config", "output"},
		types.OutputSettings{Board: *boardName, TickMs: 25, StoreDir: dir}, true))

	go output.Run(ctx, b.NewConnection("output"))

	statusSub := ui.Subscribe(bus.Topic{"output", "status"})
	defer ui.Unsubscribe(statusSub)

	st, ok := awaitStatus(ctx, statusSub)
	if !ok {
		fmt.Println("output service did not come up")
		return
	}

	reply, err := ui.RequestWait(ctx, ui.NewMessage(
		bus.Topic{"output", "control", "set"}, []byte(demoDoc), false))
	if err != nil {
		fmt.Println("set failed:", err)
		return
	}
	if r, ok := reply.Payload.(types.ErrorReply); ok && !r.OK {
		fmt.Println("document rejected:", r.Error)
	}
	st = latestStatus(ctx, statusSub, st)

	printLayout(st)
	if st.Used == 0 {
		fmt.Println("no channels partitioned, nothing to drive")
		return
	}

	frame := make([]byte, st.Used)
	tickFn := func(d time.Duration) bool {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		}
	}
	setFn := func(level uint16) {
		for i := range frame {
			frame[i] = byte(level)
		}
		ui.Publish(ui.NewMessage(bus.Topic{"output", "frame"},
			append([]byte(nil), frame...), false))
	}

	fmt.Println("ramping channel levels; ctrl-c or -duration to stop")
	for ctx.Err() == nil {
		ramp.StartLinear(0, 255, 255, 2000, 64, tickFn, setFn)
		ramp.StartLinear(255, 0, 255, 2000, 64, tickFn, setFn)
	}
}

func awaitStatus(ctx context.Context, sub *bus.Subscription) (types.OutputState, bool) {
	for {
		select {
		case <-ctx.Done():
			return types.OutputState{}, false
		case msg, ok := <-sub.Channel():
			if !ok {
				return types.OutputState{}, false
			}
			if st, ok := msg.Payload.(types.OutputState); ok {
				return st, true
			}
		}
	}
}

// latestStatus drains queued status messages and returns the newest one.
func latestStatus(ctx context.Context, sub *bus.Subscription, cur types.OutputState) types.OutputState {
	deadline := time.After(500 * time.Millisecond)
	for {
		select {
		case <-ctx.Done():
			return cur
		case <-deadline:
			return cur
		case msg, ok := <-sub.Channel():
			if !ok {
				return cur
			}
			if st, ok := msg.Payload.(types.OutputState); ok {
				cur = st
			}
		}
	}
}

func printLayout(st types.OutputState) {
	fmt.Printf("layout: %d ports, %d/%d bytes partitioned\n",
		len(st.Ports), st.Used, st.Capacity)
	for _, p := range st.Ports {
		fmt.Printf("  port %d: %-8s window [%d, %d)\n",
			p.ID, p.Name, p.Offset, p.Offset+p.Size)
	}
}
