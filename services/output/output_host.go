//go:build !(rp2040 || rp2350)

// services/output/output_host.go
package output

import (
	"lightcode-go/services/output/internal/platform/boards"
	"lightcode-go/services/output/internal/store"
	"lightcode-go/types"
	"lightcode-go/x/logx"
)

const defaultStoreDir = "data"

func newStore(cfg types.OutputSettings) store.Store {
	dir := cfg.StoreDir
	if dir == "" {
		dir = defaultStoreDir
	}
	return store.NewFileStore(dir)
}

func loadExtraProfiles(dir string) {
	if dir == "" {
		return
	}
	loaded, errs := boards.LoadProfiles(dir)
	for _, err := range errs {
		logx.Warn("board profile rejected", "err", err)
	}
	if len(loaded) > 0 {
		logx.Info("board profiles loaded", "dir", dir, "boards", loaded)
	}
}
