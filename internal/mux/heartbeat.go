package mux

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/wirebroker/amqp/internal/debug"
)

// watchHeartbeat returns an error once no frame (including heartbeats) has
// been received for 2x the current negotiated interval, the standard AMQP
// 0-9-1 dead-peer threshold. It polls heartbeatNanos rather than capturing
// a fixed interval since the real value isn't known until Tune/TuneOk
// completes, after this watchdog is already running; 0 disables the check.
func watchHeartbeat(ctx context.Context, rd *reader, heartbeatNanos *atomic.Int64) error {
	ticker := time.NewTicker(heartbeatPoll)
	defer ticker.Stop()

	rd.lastRecv.Store(time.Now().UnixNano())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			interval := time.Duration(heartbeatNanos.Load())
			if interval <= 0 {
				continue
			}
			if time.Since(rd.LastRecv()) > 2*interval {
				debug.Log(ctx, slog.LevelError, "heartbeat timeout, peer presumed dead", "interval", interval)
				return NewError(KindNetworkIO, "no frame received within 2x heartbeat interval", nil)
			}
		}
	}
}
