// services/output/output.go
package output

import (
	"context"
	"time"

	"lightcode-go/bus"
	"lightcode-go/services/output/internal/consts"
	"lightcode-go/services/output/internal/manager"
	"lightcode-go/services/output/internal/platform"
	"lightcode-go/services/output/internal/platform/boards"
	"lightcode-go/services/output/internal/service"
	"lightcode-go/services/output/internal/util"
	"lightcode-go/types"
	"lightcode-go/x/logx"

	// Link every protocol driver so its builder registers.
	_ "lightcode-go/services/output/internal/drivers/apa102"
	_ "lightcode-go/services/output/internal/drivers/disabled"
	_ "lightcode-go/services/output/internal/drivers/gece"
	_ "lightcode-go/services/output/internal/drivers/pca9685"
	_ "lightcode-go/services/output/internal/drivers/relay"
	_ "lightcode-go/services/output/internal/drivers/serialout"
	_ "lightcode-go/services/output/internal/drivers/ws2801"
	_ "lightcode-go/services/output/internal/drivers/ws2811"
)

var topicConfigOutput = bus.Topic{consts.TokConfig, consts.TokOutput}

// settingsWait bounds the startup wait for the retained "output" config
// section; absent config means defaults, not a stall.
const settingsWait = 2 * time.Second

// Run builds the output stack for the configured board and blocks until
// ctx is cancelled.
func Run(ctx context.Context, conn *bus.Connection) {
	cfg := awaitSettings(ctx, conn)

	loadExtraProfiles(cfg.ProfileDir)

	name := cfg.Board
	if name == "" {
		name = boards.DefaultName
	}
	board, ok := boards.Lookup(name)
	if !ok {
		logx.Warn("unknown board profile, using default",
			"board", name, "default", boards.DefaultName, "known", boards.Names())
		board, _ = boards.Lookup(boards.DefaultName)
	}
	logx.Info("output board selected", "board", board.Name, "ports", len(board.Ports))

	pro := platform.NewProvider(board, cfg)

	mgr := manager.New(manager.Options{
		Descs:    board.Descriptors(),
		Engines:  pro.Engines(),
		Capacity: cfg.Capacity,
		Store:    newStore(cfg),
	})

	svc := service.New(conn, mgr, time.Duration(cfg.TickMs)*time.Millisecond)
	svc.Run(ctx)
}

func awaitSettings(ctx context.Context, conn *bus.Connection) types.OutputSettings {
	sub := conn.Subscribe(topicConfigOutput)
	defer conn.Unsubscribe(sub)

	var cfg types.OutputSettings
	select {
	case msg := <-sub.Channel():
		if err := util.DecodeJSON(msg.Payload, &cfg); err != nil {
			logx.Warn("output settings decode failed, using defaults", "err", err)
		}
	case <-time.After(settingsWait):
		logx.Info("no output settings published, using defaults")
	case <-ctx.Done():
	}
	return cfg
}
