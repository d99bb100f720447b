package mux

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/wirebroker/amqp/internal/debug"
	"github.com/wirebroker/amqp/internal/frames"
)

// unexpectedFrameReplyCode is the AMQP 0-9-1 "unexpected-frame" reply code
// (405 is in-use; 505 is the actual unexpected-frame code per the spec's
// connection-error table), sent when the peer issues a method request this
// reader has no handling path for.
const unexpectedFrameReplyCode uint16 = 505

// frameErrorReplyCode is the AMQP 0-9-1 "frame-error" reply code, sent when
// the wire codec itself rejects a frame as malformed.
const frameErrorReplyCode uint16 = 501

// ConnectionClosedError wraps a peer-initiated Connection.Close: a clean
// shutdown the caller distinguishes from a network/framing failure.
type ConnectionClosedError struct {
	Code   uint16
	Reason string
}

func (e *ConnectionClosedError) Error() string {
	return "mux: connection closed by peer: " + e.Reason
}

type frameResult struct {
	channel uint16
	frame   frames.Frame
	err     error
}

// reader is the single task that owns the connection's read half and the
// entire channel resource table (spec.md §4.4). Every mutation of that
// table happens on this goroutine; every other task reaches it only
// through the mgmt channel, serviced ahead of socket frames on each loop
// iteration.
type reader struct {
	br       *bufio.Reader
	frameMax atomic.Uint32
	mgmt     chan any
	outbound chan<- OutboundFrame
	mgr      *channelManager
	rec      Recorder

	lastRecv atomic.Int64 // UnixNano of the last frame (incl. heartbeat) seen

	onBlocked   func(reason string)
	onUnblocked func()
	onClose     func(*frames.ConnectionClose)
}

func newReader(br *bufio.Reader, frameMax uint32, mgmt chan any, outbound chan<- OutboundFrame, mgr *channelManager, rec Recorder) *reader {
	rd := &reader{
		br:       br,
		mgmt:     mgmt,
		outbound: outbound,
		mgr:      mgr,
		rec:      rec,
	}
	rd.frameMax.Store(frameMax)
	return rd
}

// run pumps frames off the socket on a background goroutine and services
// them, biased toward management commands, until ctx is canceled or a
// terminal error occurs.
func (rd *reader) run(ctx context.Context) error {
	results := make(chan frameResult, 1)
	pumpDone := make(chan struct{})
	go rd.pump(ctx, results, pumpDone)
	defer func() {
		<-pumpDone
	}()

	for {
		// Bias: drain any ready management command before considering the
		// next socket frame, so channel-table mutations never starve behind
		// a burst of inbound traffic (spec.md §4.4).
		select {
		case cmd := <-rd.mgmt:
			rd.handleCmd(cmd)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-rd.mgmt:
			rd.handleCmd(cmd)
		case res := <-results:
			if res.err != nil {
				if errors.Is(res.err, frames.ErrFraming) {
					debug.Log(ctx, slog.LevelError, "framing error, closing connection", "err", res.err)
					rd.sendClose(frameErrorReplyCode, "frame-error")
					return NewError(KindFraming, "read frame", res.err)
				}
				return NewError(KindNetworkIO, "read frame", res.err)
			}
			rd.lastRecv.Store(time.Now().UnixNano())
			rd.recordRead(res.frame.FrameType())
			if err := rd.dispatch(ctx, res.channel, res.frame); err != nil {
				return err
			}
		}
	}
}

// sendClose enqueues a Connection.Close with the given reply code and text.
// Used on the terminal error paths below, where the reader is about to
// return and tear the engine down; best-effort only, since the peer may
// already be gone.
func (rd *reader) sendClose(code uint16, text string) {
	select {
	case rd.outbound <- OutboundFrame{Channel: frames.ConnectionChannel, Frame: frames.Method{Body: &frames.ConnectionClose{ReplyCode: code, ReplyText: text}}}:
	default:
	}
}

func (rd *reader) pump(ctx context.Context, out chan<- frameResult, done chan<- struct{}) {
	defer close(done)
	for {
		channel, f, err := frames.ReadFrame(rd.br, rd.frameMax.Load())
		select {
		case out <- frameResult{channel: channel, frame: f, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// LastRecv returns the time of the most recently received frame, for the
// heartbeat watchdog to compare against 2x the negotiated interval.
func (rd *reader) LastRecv() time.Time {
	return time.Unix(0, rd.lastRecv.Load())
}

func (rd *reader) dispatch(ctx context.Context, channel uint16, f frames.Frame) error {
	if channel == frames.ConnectionChannel {
		return rd.dispatchConnection(ctx, f)
	}

	res, ok := rd.mgr.get(channel)
	if !ok {
		// Frame for an unknown/already-closed channel: the server is
		// misbehaving or we raced a close; drop it rather than tearing down
		// the whole connection.
		debug.Log(ctx, slog.LevelDebug, "dropping frame for unknown channel", "channel", channel)
		return nil
	}

	switch m := f.(type) {
	case frames.Method:
		h := m.Body.MethodHeader()
		debug.Log(ctx, slog.LevelDebug, "routing method frame", "channel", channel, "class", h.ClassID, "method", h.MethodID)
		switch {
		case frames.IsChannelControl(h):
			rd.handleChannelControl(ctx, res, m)
		case frames.IsContentBearing(h), frames.IsPublisherConfirm(h):
			if h == (frames.BasicGetOk{}).MethodHeader() {
				// GetOk answers the Basic.Get whose GetEmpty responder is
				// still registered; drop it so the next Get can register.
				delete(res.responders, (frames.BasicGetEmpty{}).MethodHeader())
			}
			res.dispatcher.inbox <- f
		case frames.IsServerAsyncRequest(h):
			rd.handleServerAsync(res, m)
		case frames.IsReplyMethod(h):
			// A reply nobody is (or is still) waiting for: the caller may
			// have already timed out, or the server sent a stray duplicate.
			// Drop it; this is not a connection-level fault (spec.md §4.4
			// item 4).
			if !res.fire(h, f) {
				debug.Log(ctx, slog.LevelDebug, "dropping unmatched reply", "channel", channel, "class", h.ClassID, "method", h.MethodID)
			}
		default:
			// Anything else is a method this reader has no handling path
			// for at all: an unsolicited server-initiated request outside
			// the allow-listed set above. That is a protocol violation, not
			// a frame to silently drop (spec.md §4.4 item 5).
			debug.Log(ctx, slog.LevelError, "unexpected method frame, closing connection", "channel", channel, "class", h.ClassID, "method", h.MethodID)
			rd.sendClose(unexpectedFrameReplyCode, "unexpected-frame")
			return NewError(KindFraming, "unexpected method frame", nil)
		}
	case frames.ContentHeader, frames.ContentBody:
		res.dispatcher.inbox <- f
	}
	return nil
}

func (rd *reader) dispatchConnection(ctx context.Context, f frames.Frame) error {
	m, ok := f.(frames.Method)
	if !ok {
		return nil // Heartbeat: liveness already recorded by the caller
	}

	switch b := m.Body.(type) {
	case *frames.ConnectionClose:
		rd.outbound <- OutboundFrame{Channel: frames.ConnectionChannel, Frame: frames.Method{Body: &frames.ConnectionCloseOk{}}}
		if rd.onClose != nil {
			rd.onClose(b)
		}
		return &ConnectionClosedError{Code: b.ReplyCode, Reason: b.ReplyText}
	case *frames.ConnectionBlocked:
		if rd.onBlocked != nil {
			rd.onBlocked(b.Reason)
		}
	case *frames.ConnectionUnblocked:
		if rd.onUnblocked != nil {
			rd.onUnblocked()
		}
	default:
		h := b.MethodHeader()
		res, ok := rd.mgr.get(frames.ConnectionChannel)
		if !ok {
			return nil
		}
		if frames.IsReplyMethod(h) {
			if !res.fire(h, m) {
				debug.Log(ctx, slog.LevelDebug, "dropping unmatched reply", "channel", frames.ConnectionChannel, "class", h.ClassID, "method", h.MethodID)
			}
			return nil
		}
		if res.fire(h, m) {
			return nil
		}
		debug.Log(ctx, slog.LevelError, "unexpected connection method, closing connection", "class", h.ClassID, "method", h.MethodID)
		rd.sendClose(unexpectedFrameReplyCode, "unexpected-frame")
		return NewError(KindFraming, "unexpected connection method", nil)
	}
	return nil
}

func (rd *reader) handleChannelControl(ctx context.Context, res *channelResource, m frames.Method) {
	switch v := m.Body.(type) {
	case *frames.ChannelClose:
		rd.outbound <- OutboundFrame{Channel: res.id, Frame: frames.Method{Body: &frames.ChannelCloseOk{}}}
		if res.onClosed != nil {
			res.onClosed(v)
		}
		rd.mgr.close(res.id)
	case *frames.ChannelCloseOk:
		if !res.fire(v.MethodHeader(), m) {
			debug.Log(ctx, slog.LevelDebug, "dropping unmatched reply", "channel", res.id, "class", v.MethodHeader().ClassID, "method", v.MethodHeader().MethodID)
		}
	}
}

// handleCmd services one management command. It runs exclusively on the
// reader goroutine, so it is the only place the channel resource table is
// ever mutated.
func (rd *reader) handleCmd(cmd any) {
	switch c := cmd.(type) {
	case openChannelCmd:
		res, err := rd.mgr.open(c.desired, c.hasDesired)
		if err != nil {
			c.result <- openChannelResult{err: err}
			return
		}
		c.result <- openChannelResult{id: res.id, res: res}
	case closeChannelCmd:
		rd.mgr.close(c.id)
		close(c.done)
	case registerResponderCmd:
		res, ok := rd.mgr.get(c.channelID)
		if !ok {
			c.ack <- NewError(KindChannelUse, "unknown channel", nil)
			return
		}
		c.ack <- res.registerResponder(c.header, c.responder)
	case setClosedHandlerCmd:
		if res, ok := rd.mgr.get(c.channelID); ok {
			res.onClosed = c.fn
		}
		close(c.done)
	case setFlowHandlerCmd:
		if res, ok := rd.mgr.get(c.channelID); ok {
			res.onFlow = c.fn
		}
		close(c.done)
	case setReturnHandlerCmd:
		if res, ok := rd.mgr.get(c.channelID); ok {
			res.dispatcher.setReturnHandler(c.fn)
		}
		close(c.done)
	case setConfirmHandlerCmd:
		if res, ok := rd.mgr.get(c.channelID); ok {
			res.dispatcher.setConfirmHandler(c.fn)
		}
		close(c.done)
	case registerConsumerCmd:
		if res, ok := rd.mgr.get(c.channelID); ok {
			res.dispatcher.registerConsumer(c.tag, c.ch)
		}
		close(c.done)
	case cancelConsumerCmd:
		if res, ok := rd.mgr.get(c.channelID); ok {
			res.dispatcher.cancelConsumer(c.tag)
		}
		close(c.done)
	}
}

func (rd *reader) handleServerAsync(res *channelResource, m frames.Method) {
	switch v := m.Body.(type) {
	case *frames.ChannelFlow:
		if res.onFlow != nil {
			res.onFlow(v.Active)
		}
		rd.outbound <- OutboundFrame{Channel: res.id, Frame: frames.Method{Body: &frames.ChannelFlowOk{Active: v.Active}}}
	case *frames.BasicRecoverAsync:
		// No reply defined for the async form; redelivery itself arrives as
		// ordinary Basic.Deliver frames through the dispatcher.
		_ = v
	}
}
