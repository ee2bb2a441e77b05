// Package errcode defines the stable error identifiers that cross the bus.
// Replies carry the code string; prose stays in logs. Codes compare equal
// across builds, so handlers switch on them without parsing text.
package errcode

// Code is a comparable error identifier. The zero value is not a valid code.
type Code string

func (c Code) Error() string { return string(c) }

// Wire codes. Renaming one is a protocol change for every bus peer.
const (
	OK             Code = "ok"
	Error          Code = "error" // code-less failure
	Unsupported    Code = "unsupported"
	Timeout        Code = "timeout"
	InvalidPayload Code = "invalid_payload"
	InvalidConfig  Code = "invalid_config"

	UnknownPort   Code = "unknown_port"
	UnknownEngine Code = "unknown_engine"
	EngineInUse   Code = "engine_in_use"

	StoreIO       Code = "store_io"
	StoreTooLarge Code = "store_too_large"
)

// E attaches whatever context the producing layer had to a code. Op names
// the operation ("store.load"), Msg the object, Err the underlying cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Code() Code { return e.C }

func (e *E) Unwrap() error { return e.Err }

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// Of walks err's unwrap chain for the first carried Code. nil maps to OK,
// a chain with no code to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	for err != nil {
		switch v := err.(type) {
		case Code:
			return v
		case interface{ Code() Code }:
			return v.Code()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Error
}
