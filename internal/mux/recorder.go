package mux

// Recorder observes engine activity for an optional metrics backend
// (spec.md §11's domain-stack table wires github.com/prometheus/client_golang
// in through internal/metrics.Metrics, which implements this interface). A
// nil Recorder is valid everywhere below: every call site nil-checks before
// invoking it rather than requiring a no-op stand-in.
type Recorder interface {
	FrameRead(frameType uint8)
	FrameWritten(frameType uint8)
	HeartbeatSent()
	ChannelOpened()
	ChannelClosed()
}

func (rd *reader) recordRead(frameType uint8) {
	if rd.rec != nil {
		rd.rec.FrameRead(frameType)
	}
}

func (wr *writer) recordWrite(frameType uint8) {
	if wr.rec != nil {
		wr.rec.FrameWritten(frameType)
	}
}
