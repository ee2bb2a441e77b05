//go:build !(rp2040 || rp2350)

package boards

// DefaultName is the profile used when the config names none.
const DefaultName = "classic3"
