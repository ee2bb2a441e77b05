// main.go
//
// MCU entry point. TinyGo builds this with the rp2040/rp2350 tag set; the
// host daemon lives in cmd/lightd.
package main

import (
	"context"
	"time"

	"lightcode-go/bus"
	"lightcode-go/services/config"
	"lightcode-go/services/output"
	"lightcode-go/services/status"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.Background()
	b := bus.NewBus(16)

	if err := config.Publish(b.NewConnection("config"), ""); err != nil {
		println("config:", err.Error())
	}

	go status.New(b.NewConnection("status")).Run(ctx)

	output.Run(ctx, b.NewConnection("output"))
}
