package frames

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wirebroker/amqp/internal/encoding"
)

func TestWriteReadFrameMethod(t *testing.T) {
	var buf bytes.Buffer
	qd := &QueueDeclare{Queue: "orders", Durable: true, Arguments: encoding.Table{"x-max-length": int32(10)}}
	require.NoError(t, WriteFrame(&buf, 7, Method{Body: qd}))

	ch, f, err := ReadFrame(bufio.NewReader(&buf), 0)
	require.NoError(t, err)
	require.EqualValues(t, 7, ch)

	m, ok := f.(Method)
	require.True(t, ok)
	got, ok := m.Body.(*QueueDeclare)
	require.True(t, ok)
	require.Equal(t, qd.Queue, got.Queue)
	require.Equal(t, qd.Durable, got.Durable)
	require.Equal(t, int32(10), got.Arguments["x-max-length"])
}

func TestWriteReadFrameContentHeader(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Unix(1700000000, 0).UTC()
	h := ContentHeader{
		ClassID:  ClassBasic,
		BodySize: 42,
		Properties: Properties{
			ContentType:  "application/json",
			DeliveryMode: 2,
			Timestamp:    ts,
		},
	}
	require.NoError(t, WriteFrame(&buf, 1, h))

	_, f, err := ReadFrame(bufio.NewReader(&buf), 0)
	require.NoError(t, err)
	got, ok := f.(ContentHeader)
	require.True(t, ok)
	require.EqualValues(t, 42, got.BodySize)
	require.Equal(t, "application/json", got.Properties.ContentType)
	require.True(t, ts.Equal(got.Properties.Timestamp))
}

func TestWriteReadFrameBodyAndHeartbeat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, 1, ContentBody{Bytes: []byte("payload")}))
	require.NoError(t, WriteFrame(&buf, 0, Heartbeat{}))

	r := bufio.NewReader(&buf)
	_, f1, err := ReadFrame(r, 0)
	require.NoError(t, err)
	body, ok := f1.(ContentBody)
	require.True(t, ok)
	require.Equal(t, "payload", string(body.Bytes))

	_, f2, err := ReadFrame(r, 0)
	require.NoError(t, err)
	_, ok = f2.(Heartbeat)
	require.True(t, ok)
}

func TestReadFrameBadTerminator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, 0, Heartbeat{}))
	raw := buf.Bytes()
	raw[len(raw)-1] = 0x00

	_, _, err := ReadFrame(bufio.NewReader(bytes.NewReader(raw)), 0)
	require.ErrorIs(t, err, ErrFraming)
}

func TestReadFrameOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, 1, ContentBody{Bytes: make([]byte, 100)}))

	_, _, err := ReadFrame(bufio.NewReader(&buf), 10)
	require.ErrorIs(t, err, ErrFraming)
}

func TestSplitBody(t *testing.T) {
	payload := make([]byte, 25)
	for i := range payload {
		payload[i] = byte(i)
	}

	frames := SplitBody(payload, 18) // chunk size = 18-8 = 10
	require.Len(t, frames, 3)
	require.Len(t, frames[0].Bytes, 10)
	require.Len(t, frames[1].Bytes, 10)
	require.Len(t, frames[2].Bytes, 5)

	var reassembled []byte
	for _, f := range frames {
		reassembled = append(reassembled, f.Bytes...)
	}
	require.Equal(t, payload, reassembled)
}

func TestSplitBodyUnderLimit(t *testing.T) {
	frames := SplitBody([]byte("small"), 4096)
	require.Len(t, frames, 1)
	require.Equal(t, "small", string(frames[0].Bytes))
}

func TestSplitBodyEmpty(t *testing.T) {
	require.Nil(t, SplitBody(nil, 4096))
}
