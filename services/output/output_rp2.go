//go:build rp2040 || rp2350

// services/output/output_rp2.go
package output

import (
	"lightcode-go/services/output/internal/store"
	"lightcode-go/types"
)

// No filesystem on the bare chip: the document lives in RAM and reverts to
// defaults on reset.
func newStore(types.OutputSettings) store.Store { return store.NewMemStore() }

func loadExtraProfiles(string) {}
