package mux

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/wirebroker/amqp/internal/debug"
	"github.com/wirebroker/amqp/internal/frames"
)

// writer is the single task that owns the connection's write half plus the
// heartbeat timer (spec.md §4.5: one task, so frame ordering on the wire is
// exactly outbound send order, with heartbeats interleaved when idle).
//
// heartbeatNanos is an atomic duration rather than a plain field because
// Connection.open starts the engine before the Tune/TuneOk negotiation that
// determines the real interval; SetHeartbeat updates it in place instead of
// tearing down and recreating the writer task mid-handshake.
type writer struct {
	w              frameWriter
	outbound       <-chan OutboundFrame
	heartbeatNanos *atomic.Int64
	rec            Recorder
}

// frameWriter is the subset of *bufio.Writer the writer task needs; it lets
// tests substitute an in-memory sink without a real net.Conn.
type frameWriter interface {
	Write(p []byte) (int, error)
	Flush() error
}

func newWriter(w frameWriter, outbound <-chan OutboundFrame, heartbeatNanos *atomic.Int64, rec Recorder) *writer {
	return &writer{w: w, outbound: outbound, heartbeatNanos: heartbeatNanos, rec: rec}
}

// heartbeatPoll is how often the writer checks whether it's time to send a
// heartbeat; coarse enough to cost nothing, fine enough that the actual
// send lands within a poll period of half the negotiated interval.
const heartbeatPoll = 250 * time.Millisecond

// run drains outbound until ctx is canceled or the channel is closed,
// injecting a heartbeat frame whenever half the negotiated interval elapses
// with nothing else sent in the meantime. It never reorders: each send is flushed
// before the next frame is considered.
func (wr *writer) run(ctx context.Context) error {
	lastSent := time.Now()
	ticker := time.NewTicker(heartbeatPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case of, ok := <-wr.outbound:
			if !ok {
				return nil
			}
			if err := wr.send(ctx, of.Channel, of.Frame); err != nil {
				return err
			}
			lastSent = time.Now()
		case <-ticker.C:
			interval := time.Duration(wr.heartbeatNanos.Load())
			if interval <= 0 || time.Since(lastSent) < interval/2 {
				continue
			}
			if err := wr.send(ctx, frames.ConnectionChannel, frames.Heartbeat{}); err != nil {
				return err
			}
			if wr.rec != nil {
				wr.rec.HeartbeatSent()
			}
			lastSent = time.Now()
		}
	}
}

func (wr *writer) send(ctx context.Context, channel uint16, f frames.Frame) error {
	if err := frames.WriteFrame(wr.w, channel, f); err != nil {
		debug.Log(ctx, slog.LevelError, "write frame failed", "channel", channel, "frame_type", f.FrameType(), "err", err)
		return NewError(KindNetworkIO, "write frame", err)
	}
	if err := wr.w.Flush(); err != nil {
		debug.Log(ctx, slog.LevelError, "flush failed", "channel", channel, "err", err)
		return NewError(KindNetworkIO, "flush", err)
	}
	wr.recordWrite(f.FrameType())
	return nil
}
