// Package metrics exposes connection/channel activity as Prometheus metrics.
// It implements mux.Recorder so an Engine can report into it directly; the
// top-level package builds one from the registry given to Dial via
// WithMetricsRegistry and hands it to the engine, mirroring the optional-collector wiring pattern
// moby-moby and packetd-packetd use for their own I/O loops.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps the counters/gauges one AMQP connection reports. A nil
// *Metrics is not valid; callers that don't want metrics simply don't
// construct one and pass a nil mux.Recorder instead.
type Metrics struct {
	framesRead    *prometheus.CounterVec
	framesWritten *prometheus.CounterVec
	heartbeatsOut prometheus.Counter
	openChannels  prometheus.Gauge
}

// New registers a Metrics' collectors against reg and returns it. reg is
// typically prometheus.DefaultRegisterer or a per-connection registry when
// a process holds several connections and wants them labeled apart upstream.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		framesRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amqp",
			Name:      "frames_read_total",
			Help:      "AMQP frames read from the connection, by frame type.",
		}, []string{"type"}),
		framesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amqp",
			Name:      "frames_written_total",
			Help:      "AMQP frames written to the connection, by frame type.",
		}, []string{"type"}),
		heartbeatsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "amqp",
			Name:      "heartbeats_sent_total",
			Help:      "Heartbeat frames sent to keep the connection alive.",
		}),
		openChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "amqp",
			Name:      "open_channels",
			Help:      "Channels currently open on the connection.",
		}),
	}
	reg.MustRegister(m.framesRead, m.framesWritten, m.heartbeatsOut, m.openChannels)
	return m
}

// FrameRead implements mux.Recorder.
func (m *Metrics) FrameRead(frameType uint8) {
	m.framesRead.WithLabelValues(frameTypeLabel(frameType)).Inc()
}

// FrameWritten implements mux.Recorder.
func (m *Metrics) FrameWritten(frameType uint8) {
	m.framesWritten.WithLabelValues(frameTypeLabel(frameType)).Inc()
}

// HeartbeatSent implements mux.Recorder.
func (m *Metrics) HeartbeatSent() { m.heartbeatsOut.Inc() }

// ChannelOpened implements mux.Recorder.
func (m *Metrics) ChannelOpened() { m.openChannels.Inc() }

// ChannelClosed implements mux.Recorder.
func (m *Metrics) ChannelClosed() { m.openChannels.Dec() }

// frame type tags, duplicated from internal/frames rather than imported to
// keep this package dependency-free of the wire codec (it only needs the
// four small integer tags, not the codec itself).
const (
	frameTypeMethod    uint8 = 1
	frameTypeHeader    uint8 = 2
	frameTypeBody      uint8 = 3
	frameTypeHeartbeat uint8 = 8
)

func frameTypeLabel(t uint8) string {
	switch t {
	case frameTypeMethod:
		return "method"
	case frameTypeHeader:
		return "content_header"
	case frameTypeBody:
		return "content_body"
	case frameTypeHeartbeat:
		return "heartbeat"
	default:
		return "unknown_" + strconv.Itoa(int(t))
	}
}
