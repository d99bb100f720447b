package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordsActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FrameRead(frameTypeMethod)
	m.FrameRead(frameTypeMethod)
	m.FrameWritten(frameTypeHeader)
	m.HeartbeatSent()
	m.ChannelOpened()
	m.ChannelOpened()
	m.ChannelClosed()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	var openChannels float64
	for _, mf := range mfs {
		switch mf.GetName() {
		case "amqp_frames_read_total":
			for _, metric := range mf.Metric {
				for _, l := range metric.Label {
					if l.GetName() == "type" {
						counts[l.GetValue()] = metric.GetCounter().GetValue()
					}
				}
			}
		case "amqp_open_channels":
			openChannels = mf.Metric[0].GetGauge().GetValue()
		}
	}

	require.Equal(t, float64(2), counts["method"])
	require.Equal(t, float64(1), openChannels)
}
