package amqp

import (
	"errors"
	"fmt"

	"github.com/wirebroker/amqp/internal/mux"
)

// Error is a reply-code/reply-text pair the broker sent in a Connection.Close
// or Channel.Close, optionally naming the class/method that triggered it.
type Error struct {
	Code   uint16
	Reason string
	Class  uint16
	Method uint16
}

func (e *Error) Error() string {
	if e.Class == 0 && e.Method == 0 {
		return fmt.Sprintf("amqp: code %d: %s", e.Code, e.Reason)
	}
	return fmt.Sprintf("amqp: code %d: %s (class %d, method %d)", e.Code, e.Reason, e.Class, e.Method)
}

// ChannelUseError is returned when a request disagreed with the channel's
// state: a method used after Close, a responder registered twice for the
// same in-flight header, or similar misuse the mux layer catches early.
type ChannelUseError struct {
	inner error
}

func (e *ChannelUseError) Error() string { return "amqp: channel use error: " + e.inner.Error() }
func (e *ChannelUseError) Unwrap() error { return e.inner }

var (
	// ErrClosed is returned by Connection.Channel once the connection is
	// closed, and by any call whose pending reply was abandoned because the
	// connection or channel was torn down.
	ErrClosed = errors.New("amqp: connection or channel closed")

	// ErrChannelCapacityExceeded is returned by Connection.Channel when
	// every id in [1, channel-max] is already in use.
	ErrChannelCapacityExceeded = errors.New("amqp: channel-max exhausted")
)

// wrapMuxError maps an internal/mux.Error onto one of the library's public
// error types, per spec.md §7's taxonomy.
func wrapMuxError(err error) error {
	var merr *mux.Error
	if !errors.As(err, &merr) {
		return err
	}
	switch merr.Kind {
	case mux.KindChannelUse:
		if merr.Msg == "channel-max exhausted" {
			return ErrChannelCapacityExceeded
		}
		return &ChannelUseError{inner: merr}
	case mux.KindInterrupted:
		return ErrClosed
	default:
		return merr
	}
}
