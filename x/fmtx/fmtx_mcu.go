//go:build rp2040 || rp2350

// x/fmtx/fmtx_mcu.go
package fmtx

type formatError struct{ s string }

func (e *formatError) Error() string { return e.s }

func Sprintf(format string, a ...any) string { return tinySprintf(format, a) }

func Sprint(a ...any) string { return tinySprint(a) }

func Errorf(format string, a ...any) error { return &formatError{tinySprintf(format, a)} }
