//go:build rp2040 || rp2350

package logx

import "lightcode-go/x/fmtx"

// MCU logging stays on println-style output (USB CDC console). Setup is a
// no-op so call sites stay identical across builds.
func Setup(level, format string) {}

func Debug(msg string, kv ...any) { emit("Debug:", msg, kv) }
func Info(msg string, kv ...any)  { emit("Info:", msg, kv) }
func Warn(msg string, kv ...any)  { emit("Warn:", msg, kv) }
func Error(msg string, kv ...any) { emit("Error:", msg, kv) }

func emit(sev, msg string, kv []any) {
	out := sev + " " + msg
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		out += " " + k + "=" + fmtx.Sprint(kv[i+1])
	}
	println(out)
}
