//go:build !(rp2040 || rp2350)

// x/fmtx/fmtx_host.go
package fmtx

import "fmt"

// Host builds hand straight through to fmt. Callers must stick to the verb
// subset the tiny formatter understands, or host and MCU logs drift apart.

func Sprintf(format string, a ...any) string { return fmt.Sprintf(format, a...) }

func Sprint(a ...any) string { return fmt.Sprint(a...) }

func Errorf(format string, a ...any) error { return fmt.Errorf(format, a...) }
