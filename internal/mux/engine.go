package mux

import (
	"bufio"
	"context"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wirebroker/amqp/internal/frames"
)

// ChannelHandle is everything a facade needs to drive one channel: its id,
// a way to register synchronous-reply responders, and callback setters for
// the asynchronous events a channel can see (Channel.Close, Channel.Flow,
// Basic.Return, publisher confirms, consumer delivery).
type ChannelHandle struct {
	ID uint16

	eng *Engine
	res *channelResource
}

// AwaitGet returns the channel a Basic.Get caller receives its single
// result on; the caller also races it against a GetEmpty responder.
func (h *ChannelHandle) AwaitGet() <-chan *GetResult {
	return h.res.dispatcher.awaitGet()
}

// Engine is the connection's I/O engine: the reader task, the writer task,
// the heartbeat watchdog, and the channel resource table they share
// (spec.md §4). It is the single type the top-level amqp package drives.
type Engine struct {
	mgmt           chan any
	outbound       chan OutboundFrame
	mgr            *channelManager
	rd             *reader
	wr             *writer
	heartbeatNanos *atomic.Int64

	g      *errgroup.Group
	cancel context.CancelFunc
}

// NewEngine wires a reader/writer pair around rw using the negotiated
// tuning parameters. Call Start to begin pumping frames. frameMax and
// heartbeat may be revised afterward via SetFrameMax/SetHeartbeat once the
// real values are known (Connection.open must run the handshake over an
// already-started engine before Tune/TuneOk settle).
func NewEngine(rw io.ReadWriter, channelMax uint16, frameMax uint32, heartbeat time.Duration) *Engine {
	return NewEngineWithRecorder(rw, channelMax, frameMax, heartbeat, nil)
}

// NewEngineWithRecorder is NewEngine plus an optional Recorder (wired from
// internal/metrics via a DialOption) observing frames read/written,
// heartbeats sent, and channel open/close counts.
func NewEngineWithRecorder(rw io.ReadWriter, channelMax uint16, frameMax uint32, heartbeat time.Duration, rec Recorder) *Engine {
	mgmt := make(chan any, 32)
	outbound := make(chan OutboundFrame, 256)
	mgr := newChannelManager(channelMax)
	mgr.rec = rec

	br := bufio.NewReader(rw)
	bw := bufio.NewWriter(rw)

	heartbeatNanos := &atomic.Int64{}
	heartbeatNanos.Store(int64(heartbeat))

	return &Engine{
		mgmt:           mgmt,
		outbound:       outbound,
		mgr:            mgr,
		rd:             newReader(br, frameMax, mgmt, outbound, mgr, rec),
		wr:             newWriter(bw, outbound, heartbeatNanos, rec),
		heartbeatNanos: heartbeatNanos,
	}
}

// OnBlocked/OnUnblocked/OnClose register connection-level callbacks. Call
// before Start; the reader owns these fields once running.
func (e *Engine) OnBlocked(fn func(reason string))         { e.rd.onBlocked = fn }
func (e *Engine) OnUnblocked(fn func())                    { e.rd.onUnblocked = fn }
func (e *Engine) OnClose(fn func(*frames.ConnectionClose)) { e.rd.onClose = fn }

// SetFrameMax revises the locally enforced inbound payload ceiling once the
// real value is known (after Tune/TuneOk).
func (e *Engine) SetFrameMax(max uint32) { e.rd.frameMax.Store(max) }

// SetHeartbeat revises the heartbeat send/watchdog interval once the real
// value is known (after Tune/TuneOk).
func (e *Engine) SetHeartbeat(d time.Duration) { e.heartbeatNanos.Store(int64(d)) }

// SetChannelMax narrows the channel-id ceiling to a server-negotiated value.
// Safe to call only before concurrent Channel opens begin, i.e. during the
// handshake.
func (e *Engine) SetChannelMax(max uint16) { e.mgr.setMax(max) }

// Start spawns the reader, writer, and heartbeat watchdog under one
// errgroup.Group, mirroring the supervision style spec.md §10 calls for
// (golang.org/x/sync/errgroup). The first task to return a non-nil error
// cancels the rest.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	e.g = g
	e.cancel = cancel

	g.Go(func() error { return e.rd.run(gctx) })
	g.Go(func() error { return e.wr.run(gctx) })
	g.Go(func() error { return watchHeartbeat(gctx, e.rd, e.heartbeatNanos) })
}

// Wait blocks until every supervised task has exited and returns the first
// non-nil error among them (nil on a clean, caller-initiated shutdown).
func (e *Engine) Wait() error {
	err := e.g.Wait()
	e.mgr.closeAll()
	if err == context.Canceled {
		return nil
	}
	return err
}

// Shutdown cancels every supervised task; call Wait afterward to observe
// completion.
func (e *Engine) Shutdown() {
	e.cancel()
}

// ConnectionChannel exposes channel 0's handle, used during the
// Start/Tune/Open handshake before any user channel exists.
func (e *Engine) ConnectionChannel() *ChannelHandle {
	res, _ := e.mgr.get(frames.ConnectionChannel)
	return &ChannelHandle{ID: 0, eng: e, res: res}
}

// OpenChannel allocates (desiredID == 0) or reserves (desiredID != 0) a
// channel id and returns its handle.
func (e *Engine) OpenChannel(ctx context.Context, desiredID uint16) (*ChannelHandle, error) {
	result := make(chan openChannelResult, 1)
	cmd := openChannelCmd{desired: desiredID, hasDesired: desiredID != 0, result: result}
	select {
	case e.mgmt <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-result:
		if r.err != nil {
			return nil, r.err
		}
		return &ChannelHandle{ID: r.id, eng: e, res: r.res}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CloseChannel releases a channel id and its resource entry.
func (e *Engine) CloseChannel(ctx context.Context, id uint16) error {
	done := make(chan struct{})
	select {
	case e.mgmt <- closeChannelCmd{id: id, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterResponder installs a one-shot responder for the next reply to h
// seen on channel id. Callers must send the triggering request only after
// this returns successfully, preserving the register-then-send ordering
// spec.md §4.3 requires.
func (e *Engine) RegisterResponder(ctx context.Context, id uint16, h frames.MethodHeader) (Responder, error) {
	resp := make(Responder, 1)
	ack := make(chan error, 1)
	cmd := registerResponderCmd{channelID: id, header: h, responder: resp, ack: ack}
	select {
	case e.mgmt <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case err := <-ack:
		if err != nil {
			return nil, err
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send enqueues a frame on the writer's outbound queue without waiting for
// a reply; used for content frames, acks, and other one-way sends.
func (e *Engine) Send(ctx context.Context, id uint16, f frames.Frame) error {
	select {
	case e.outbound <- OutboundFrame{Channel: id, Frame: f}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Await blocks for a Responder's single reply, translating a closed channel
// (connection torn down mid-wait) into an Interrupted error.
func Await(ctx context.Context, resp Responder) (frames.Frame, error) {
	select {
	case f, ok := <-resp:
		if !ok {
			return nil, NewError(KindInterrupted, "connection closed while awaiting reply", nil)
		}
		return f, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *ChannelHandle) runCmd(ctx context.Context, mk func(done chan struct{}) any) error {
	done := make(chan struct{})
	select {
	case h.eng.mgmt <- mk(done):
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetClosedHandler registers the callback for an unsolicited Channel.Close.
func (h *ChannelHandle) SetClosedHandler(ctx context.Context, fn func(*frames.ChannelClose)) error {
	return h.runCmd(ctx, func(done chan struct{}) any {
		return setClosedHandlerCmd{channelID: h.ID, fn: fn, done: done}
	})
}

// SetFlowHandler registers the callback for a server Channel.Flow.
func (h *ChannelHandle) SetFlowHandler(ctx context.Context, fn func(active bool)) error {
	return h.runCmd(ctx, func(done chan struct{}) any {
		return setFlowHandlerCmd{channelID: h.ID, fn: fn, done: done}
	})
}

// SetReturnHandler registers the callback for each Basic.Return.
func (h *ChannelHandle) SetReturnHandler(ctx context.Context, fn func(Return)) error {
	return h.runCmd(ctx, func(done chan struct{}) any {
		return setReturnHandlerCmd{channelID: h.ID, fn: fn, done: done}
	})
}

// SetConfirmHandler registers the callback for each publisher confirm.
func (h *ChannelHandle) SetConfirmHandler(ctx context.Context, fn func(ack bool, tag uint64, multiple bool)) error {
	return h.runCmd(ctx, func(done chan struct{}) any {
		return setConfirmHandlerCmd{channelID: h.ID, fn: fn, done: done}
	})
}

// RegisterConsumer starts a drain goroutine delivering into ch for tag.
func (h *ChannelHandle) RegisterConsumer(ctx context.Context, tag string, ch chan *Delivery) error {
	return h.runCmd(ctx, func(done chan struct{}) any {
		return registerConsumerCmd{channelID: h.ID, tag: tag, ch: ch, done: done}
	})
}

// CancelConsumer stops tag's drain goroutine.
func (h *ChannelHandle) CancelConsumer(ctx context.Context, tag string) error {
	return h.runCmd(ctx, func(done chan struct{}) any {
		return cancelConsumerCmd{channelID: h.ID, tag: tag, done: done}
	})
}
