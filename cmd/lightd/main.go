// cmd/lightd/main.go
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tarm/serial"

	"lightcode-go/bus"
	"lightcode-go/services/config"
	"lightcode-go/services/link"
	"lightcode-go/services/output"
	"lightcode-go/services/status"
	"lightcode-go/x/logx"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "system config file (JSON)")
		logLevel = flag.String("log-level", "info", "debug|info|warn|error")
		logFmt   = flag.String("log-format", "text", "text|json")
	)
	flag.Parse()

	logx.Setup(*logLevel, *logFmt)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(32)

	if err := config.Publish(b.NewConnection("config"), *cfgPath); err != nil {
		logx.Error("config publish failed", "err", err)
		os.Exit(1)
	}

	link.SerialDial = hostSerialDial
	go link.Start(ctx, b.NewConnection("link"))
	go status.New(b.NewConnection("status")).Run(ctx)

	output.Run(ctx, b.NewConnection("output"))
	logx.Info("lightd stopped")
}

func hostSerialDial(_ context.Context, c link.SerialConfig) (io.ReadWriteCloser, error) {
	baud := c.Baud
	if baud <= 0 {
		baud = 115200
	}
	return serial.OpenPort(&serial.Config{Name: c.Device, Baud: baud})
}
