package amqp

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/wirebroker/amqp/internal/encoding"
	"github.com/wirebroker/amqp/internal/frames"
	"github.com/wirebroker/amqp/internal/mocks"
)

// connBuf is a minimal io.Writer collecting bytes for constructing the
// server's unsolicited Connection.Start frame before Dial speaks first.
type connBuf struct{ b []byte }

func (c *connBuf) Write(p []byte) (int, error) {
	c.b = append(c.b, p...)
	return len(p), nil
}

// brokerStub wires a mocks.MockConnection's Responder to the minimal
// Connection.Start/Tune/Open sequence a real broker would run, so open()
// can be exercised without a live server (spec.md §8, scenario S1).
func brokerStub(t *testing.T) *mocks.MockConnection {
	t.Helper()
	conn := mocks.NewConnection(func(channel uint16, f frames.Frame) ([]frames.Frame, error) {
		m, ok := f.(frames.Method)
		if !ok {
			return nil, nil
		}
		switch m.Body.(type) {
		case *frames.ConnectionStartOk:
			return []frames.Frame{frames.Method{Body: &frames.ConnectionTune{
				ChannelMax: 16,
				FrameMax:   8192,
				Heartbeat:  30,
			}}}, nil
		case *frames.ConnectionTuneOk:
			return nil, nil
		case *frames.ConnectionOpen:
			return []frames.Frame{frames.Method{Body: &frames.ConnectionOpenOk{}}}, nil
		case *frames.ChannelOpen:
			return []frames.Frame{frames.Method{Body: &frames.ChannelOpenOk{}}}, nil
		case *frames.ChannelClose:
			return []frames.Frame{frames.Method{Body: &frames.ChannelCloseOk{}}}, nil
		case *frames.ConnectionClose:
			return []frames.Frame{frames.Method{Body: &frames.ConnectionCloseOk{}}}, nil
		}
		return nil, nil
	})

	// The server speaks first: push Connection.Start onto the read side
	// before open() ever reads, mirroring a real broker's greeting.
	buf := &connBuf{}
	require.NoError(t, frames.WriteFrame(buf, 0, frames.Method{Body: &frames.ConnectionStart{
		VersionMajor:     0,
		VersionMinor:     9,
		ServerProperties: encoding.Table{"product": "stub"},
		Mechanisms:       []byte("PLAIN"),
		Locales:          []byte("en_US"),
	}}))
	conn.PushRead(buf.b)

	return conn
}

// brokerStubWithHeartbeat behaves like brokerStub but offers the given
// heartbeat interval in Tune instead of a fixed 30s, so tests can drive the
// watchdog threshold down to something they can actually wait out.
func brokerStubWithHeartbeat(t *testing.T, heartbeatSeconds uint16) *mocks.MockConnection {
	t.Helper()
	conn := mocks.NewConnection(func(channel uint16, f frames.Frame) ([]frames.Frame, error) {
		m, ok := f.(frames.Method)
		if !ok {
			return nil, nil
		}
		switch m.Body.(type) {
		case *frames.ConnectionStartOk:
			return []frames.Frame{frames.Method{Body: &frames.ConnectionTune{
				ChannelMax: 16,
				FrameMax:   8192,
				Heartbeat:  heartbeatSeconds,
			}}}, nil
		case *frames.ConnectionTuneOk:
			return nil, nil
		case *frames.ConnectionOpen:
			return []frames.Frame{frames.Method{Body: &frames.ConnectionOpenOk{}}}, nil
		case *frames.ConnectionClose:
			return []frames.Frame{frames.Method{Body: &frames.ConnectionCloseOk{}}}, nil
		}
		return nil, nil
	})

	buf := &connBuf{}
	require.NoError(t, frames.WriteFrame(buf, 0, frames.Method{Body: &frames.ConnectionStart{
		VersionMajor:     0,
		VersionMinor:     9,
		ServerProperties: encoding.Table{"product": "stub"},
		Mechanisms:       []byte("PLAIN"),
		Locales:          []byte("en_US"),
	}}))
	conn.PushRead(buf.b)

	return conn
}

// TestConnectionHeartbeatTimeoutTeardown exercises S6: once the negotiated
// heartbeat interval elapses twice over with nothing received from the
// peer — no heartbeat, no frame of any kind — watchHeartbeat must treat the
// peer as dead and tear the connection down, populating closeErr/NotifyClose
// rather than leaving callers blocked forever.
func TestConnectionHeartbeatTimeoutTeardown(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStubWithHeartbeat(t, 1)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")
	cfg.heartbeat = 1 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	notify := c.NotifyClose(make(chan *Error, 1))

	// The mock's Responder never pushes anything else onto the read side
	// after Open/OpenOk, so the watchdog has nothing to reset lastRecv with.
	select {
	case cerr, ok := <-notify:
		require.True(t, ok)
		require.NotNil(t, cerr)
	case <-time.After(4 * time.Second):
		t.Fatal("connection never tore down after a heartbeat timeout")
	}
}

func TestConnectionOpenNegotiatesDownward(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStub(t)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, c.open(ctx, cfg))
	// The broker offered frame_max=8192 below the client's default ceiling,
	// so the negotiated value must be the broker's smaller one.
	require.EqualValues(t, 8192, c.negotiatedFrameMax())

	require.NoError(t, c.Close(ctx))
}

func TestConnectionChannelOpenAndClose(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStub(t)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	ch, err := c.Channel(ctx)
	require.NoError(t, err)
	require.NotNil(t, ch)

	require.NoError(t, ch.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

// TestConnectionChannelCapacityExceeded exercises S4: once every id in
// [1, channel-max] is in use, Connection.Channel must fail at the facade
// level with ErrChannelCapacityExceeded rather than blocking or panicking.
func TestConnectionChannelCapacityExceeded(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStub(t)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")
	cfg.channelMax = 1

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// brokerStub negotiates channel_max=16 from the broker side, but the
	// client requested 1, and negotiate() always takes the smaller value.
	require.NoError(t, c.open(ctx, cfg))

	ch1, err := c.Channel(ctx)
	require.NoError(t, err)
	require.NotNil(t, ch1)

	_, err = c.Channel(ctx)
	require.ErrorIs(t, err, ErrChannelCapacityExceeded)

	require.NoError(t, ch1.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

// TestConnectionServerInitiatedCloseResolvesNotify exercises S3: a
// server-initiated Connection.Close must resolve NotifyClose with the
// broker's reply code/text, not leave the caller hanging.
func TestConnectionServerInitiatedCloseResolvesNotify(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStub(t)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	notify := c.NotifyClose(make(chan *Error, 1))

	buf := &connBuf{}
	require.NoError(t, frames.WriteFrame(buf, 0, frames.Method{Body: &frames.ConnectionClose{
		ReplyCode: 320, ReplyText: "CONNECTION_FORCED", ClassID: 0, MethodID: 0,
	}}))
	conn.PushRead(buf.b)

	select {
	case cerr, ok := <-notify:
		require.True(t, ok)
		require.EqualValues(t, 320, cerr.Code)
		require.Equal(t, "CONNECTION_FORCED", cerr.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyClose never fired for server-initiated Close")
	}

	// The engine already tore itself down responding to the peer Close;
	// Close must still be safe to call and return promptly.
	require.NoError(t, c.Close(ctx))
}

// TestConnectionFramingErrorTeardown exercises S5: a malformed frame from
// the peer must be treated as terminal, answered with a Close(frame-error),
// and populate closeErr/NotifyClose rather than hanging the connection.
func TestConnectionFramingErrorTeardown(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStub(t)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	notify := c.NotifyClose(make(chan *Error, 1))

	// A frame whose type tag isn't one of the four defined types is
	// unconditionally a framing error (frames.ErrFraming).
	conn.PushRead([]byte{0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, frames.FrameEnd})

	select {
	case _, ok := <-notify:
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("connection never tore down after a framing violation")
	}
}
