package mux

import "github.com/wirebroker/amqp/internal/frames"

// OutboundFrame is one (channel, frame) pair waiting on the writer's queue.
type OutboundFrame struct {
	Channel uint16
	Frame   frames.Frame
}

// Responder is the one-shot reply channel a facade blocks on for a
// synchronous request (spec.md §4.3/§4.5's three-step contract). It is
// closed instead of sent to when the connection tears down mid-wait, which
// the caller observes as a receive of the zero value with ok=false.
type Responder chan frames.Frame

// openChannelCmd asks the reader to allocate (or reserve) a channel id and
// register its resource entry, atomically with respect to every other
// management command (spec.md §4.4: "management commands are serviced
// before socket frames").
type openChannelCmd struct {
	desired   uint16 // 0 means "any"
	hasDesired bool
	result    chan openChannelResult
}

type openChannelResult struct {
	id  uint16
	res *channelResource
	err error
}

// closeChannelCmd releases a channel id and removes its resource entry.
type closeChannelCmd struct {
	id   uint16
	done chan struct{}
}

// registerResponderCmd installs a one-shot responder for the next reply on
// (channelID, header) seen by the reader.
type registerResponderCmd struct {
	channelID uint16
	header    frames.MethodHeader
	responder Responder
	ack       chan error
}

// setClosedHandlerCmd installs the callback fired when the reader sees an
// unsolicited Channel.Close for channelID.
type setClosedHandlerCmd struct {
	channelID uint16
	fn        func(*frames.ChannelClose)
	done      chan struct{}
}

// setFlowHandlerCmd installs the callback fired for a server Channel.Flow.
type setFlowHandlerCmd struct {
	channelID uint16
	fn        func(active bool)
	done      chan struct{}
}

// setReturnHandlerCmd installs the callback fired for each Basic.Return.
type setReturnHandlerCmd struct {
	channelID uint16
	fn        func(Return)
	done      chan struct{}
}

// setConfirmHandlerCmd installs the callback fired for each publisher
// Basic.Ack/Basic.Nack.
type setConfirmHandlerCmd struct {
	channelID uint16
	fn        func(ack bool, tag uint64, multiple bool)
	done      chan struct{}
}

// registerConsumerCmd starts a consumer's delivery drain goroutine.
type registerConsumerCmd struct {
	channelID uint16
	tag       string
	ch        chan *Delivery
	done      chan struct{}
}

// cancelConsumerCmd stops a consumer's delivery drain goroutine.
type cancelConsumerCmd struct {
	channelID uint16
	tag       string
	done      chan struct{}
}
