package mux

import "fmt"

// ErrorKind classifies why a mux-level operation failed, following
// spec.md §7. It's deliberately a small closed set so the top-level amqp
// package can map each kind onto its own public error type without
// re-deriving the classification from an error string.
type ErrorKind int

const (
	// KindNetworkIO is a socket-level failure; terminal for the connection.
	KindNetworkIO ErrorKind = iota
	// KindFraming is a malformed frame; terminal, Close(frame-error) is
	// attempted before teardown.
	KindFraming
	// KindSerde means a known method could not be encoded/decoded;
	// surfaced to the caller of the facade that triggered it.
	KindSerde
	// KindInternalChannel means an inter-task queue send/receive failed,
	// i.e. another task already terminated; terminal.
	KindInternalChannel
	// KindChannelUse means the server's reply disagreed with what the
	// facade expected, or a method was used on a closing channel.
	KindChannelUse
	// KindInterrupted is cooperative cancellation.
	KindInterrupted
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetworkIO:
		return "network-io"
	case KindFraming:
		return "framing"
	case KindSerde:
		return "serde"
	case KindInternalChannel:
		return "internal-channel"
	case KindChannelUse:
		return "channel-use"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Error is the mux-internal error type; the top-level amqp package wraps
// it into the public Error/ChannelUseError types at the facade boundary.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mux: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("mux: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error of the given kind.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
