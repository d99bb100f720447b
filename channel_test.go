package amqp

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/wirebroker/amqp/internal/encoding"
	"github.com/wirebroker/amqp/internal/frames"
	"github.com/wirebroker/amqp/internal/mocks"
)

// brokerStubWithQueue extends brokerStub's Connection/Channel control-frame
// replies with Queue.Declare and content-bearing Basic.Publish handling, for
// tests exercising channel-level operations (spec.md §8 scenarios S3/S4).
func brokerStubWithQueue(t *testing.T) *mocks.MockConnection {
	t.Helper()
	conn := mocks.NewConnection(func(channel uint16, f frames.Frame) ([]frames.Frame, error) {
		switch body := f.(type) {
		case frames.Method:
			switch m := body.Body.(type) {
			case *frames.ConnectionStartOk:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionTune{ChannelMax: 16, FrameMax: 8192, Heartbeat: 30}}}, nil
			case *frames.ConnectionTuneOk:
				return nil, nil
			case *frames.ConnectionOpen:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionOpenOk{}}}, nil
			case *frames.ConnectionClose:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionCloseOk{}}}, nil
			case *frames.ChannelOpen:
				return []frames.Frame{frames.Method{Body: &frames.ChannelOpenOk{}}}, nil
			case *frames.ChannelClose:
				return []frames.Frame{frames.Method{Body: &frames.ChannelCloseOk{}}}, nil
			case *frames.QueueDeclare:
				return []frames.Frame{frames.Method{Body: &frames.QueueDeclareOk{
					Queue: m.Queue, MessageCount: 3, ConsumerCount: 0,
				}}}, nil
			case *frames.BasicPublish:
				return nil, nil
			}
		case frames.ContentHeader, frames.ContentBody:
			return nil, nil
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

func TestChannelQueueDeclare(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStubWithQueue(t)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	ch, err := c.Channel(ctx)
	require.NoError(t, err)

	res, err := ch.QueueDeclare(ctx, QueueDeclareArgs{Queue: "orders", Durable: true})
	require.NoError(t, err)
	require.Equal(t, "orders", res.Queue)
	require.EqualValues(t, 3, res.MessageCount)

	require.NoError(t, ch.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

func TestChannelPublishSplitsLargeBody(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStubWithQueue(t)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	ch, err := c.Channel(ctx)
	require.NoError(t, err)

	body := make([]byte, 20000) // larger than the negotiated 8192 frame_max
	err = ch.Publish(ctx, PublishArgs{Exchange: "", RoutingKey: "orders"}, Properties{ContentType: "application/octet-stream"}, body)
	require.NoError(t, err)

	require.NoError(t, ch.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

// brokerStubWithGet extends brokerStubWithQueue with a Basic.Get responder
// that answers the first len(counts) Get calls with a GetOk/ContentHeader/
// ContentBody group carrying MessageCount counts[i], then Basic.GetEmpty for
// every call after, for scenarios S1 (decreasing message_count) and S2
// (Get-empty) and property 2 (content reassembly through the dispatcher).
func brokerStubWithGet(t *testing.T, counts []uint32, body []byte) *mocks.MockConnection {
	t.Helper()
	var calls atomic.Int32
	conn := mocks.NewConnection(func(channel uint16, f frames.Frame) ([]frames.Frame, error) {
		switch v := f.(type) {
		case frames.Method:
			switch m := v.Body.(type) {
			case *frames.ConnectionStartOk:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionTune{ChannelMax: 16, FrameMax: 8192, Heartbeat: 30}}}, nil
			case *frames.ConnectionTuneOk:
				return nil, nil
			case *frames.ConnectionOpen:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionOpenOk{}}}, nil
			case *frames.ConnectionClose:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionCloseOk{}}}, nil
			case *frames.ChannelOpen:
				return []frames.Frame{frames.Method{Body: &frames.ChannelOpenOk{}}}, nil
			case *frames.ChannelClose:
				return []frames.Frame{frames.Method{Body: &frames.ChannelCloseOk{}}}, nil
			case *frames.BasicGet:
				n := calls.Add(1) - 1
				if int(n) >= len(counts) {
					return []frames.Frame{frames.Method{Body: &frames.BasicGetEmpty{}}}, nil
				}
				return []frames.Frame{
					frames.Method{Body: &frames.BasicGetOk{DeliveryTag: uint64(n) + 1, Exchange: "", RoutingKey: "orders", MessageCount: counts[n]}},
					frames.ContentHeader{ClassID: frames.ClassBasic, BodySize: uint64(len(body))},
					frames.ContentBody{Bytes: body},
				}, nil
			default:
				_ = m
			}
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

// TestChannelGetDecreasingMessageCount exercises S1: repeated Basic.Get
// calls against a queue draining one message at a time must surface
// monotonically decreasing MessageCount values, and the reassembled body
// must match what the content group carried (property 2).
func TestChannelGetDecreasingMessageCount(t *testing.T) {
	defer leaktest.Check(t)()

	body := []byte("order-42-payload")
	conn := brokerStubWithGet(t, []uint32{2, 1, 0}, body)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	ch, err := c.Channel(ctx)
	require.NoError(t, err)

	wantCounts := []uint32{2, 1, 0}
	for _, want := range wantCounts {
		d, ok, err := ch.Get(ctx, "orders", false)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, body, d.Body)
		require.Equal(t, want, d.MessageCount)
	}

	require.NoError(t, ch.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

// TestChannelGetEmpty exercises S2: Basic.Get against an empty queue
// resolves with ok=false rather than blocking.
func TestChannelGetEmpty(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStubWithGet(t, nil, nil)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	ch, err := c.Channel(ctx)
	require.NoError(t, err)

	d, ok, err := ch.Get(ctx, "orders", false)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, d)

	require.NoError(t, ch.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

// TestChannelCloseDrainsNotify exercises property 4: once a channel is
// closed (here, by the peer), any NotifyClose registration fires exactly
// once and is then closed, rather than leaking or blocking forever.
func TestChannelCloseDrainsNotify(t *testing.T) {
	defer leaktest.Check(t)()

	conn := brokerStubWithQueue(t)
	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	ch, err := c.Channel(ctx)
	require.NoError(t, err)

	notify := ch.NotifyClose(make(chan *Error, 1))

	buf := &connBuf{}
	require.NoError(t, frames.WriteFrame(buf, ch.handle.ID, frames.Method{Body: &frames.ChannelClose{
		ReplyCode: 406, ReplyText: "PRECONDITION_FAILED", ClassID: frames.ClassQueue, MethodID: 10,
	}}))
	conn.PushRead(buf.b)

	select {
	case cerr, ok := <-notify:
		require.True(t, ok)
		require.EqualValues(t, 406, cerr.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("channel NotifyClose never fired for server-initiated Close")
	}

	// The channel registry entry is gone; a second close attempt must be a
	// harmless no-op rather than a double-close panic.
	require.NoError(t, ch.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

// TestChannelPublishNoInterleaving exercises property 6: concurrent
// Publish calls on the same channel must never interleave their Method/
// ContentHeader/ContentBody frame groups on the wire.
func TestChannelPublishNoInterleaving(t *testing.T) {
	defer leaktest.Check(t)()

	var mu sync.Mutex
	var violated bool
	var inGroup bool

	conn := mocks.NewConnection(func(channel uint16, f frames.Frame) ([]frames.Frame, error) {
		switch v := f.(type) {
		case frames.Method:
			switch m := v.Body.(type) {
			case *frames.ConnectionStartOk:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionTune{ChannelMax: 16, FrameMax: 8192, Heartbeat: 30}}}, nil
			case *frames.ConnectionTuneOk:
				return nil, nil
			case *frames.ConnectionOpen:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionOpenOk{}}}, nil
			case *frames.ConnectionClose:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionCloseOk{}}}, nil
			case *frames.ChannelOpen:
				return []frames.Frame{frames.Method{Body: &frames.ChannelOpenOk{}}}, nil
			case *frames.ChannelClose:
				return []frames.Frame{frames.Method{Body: &frames.ChannelCloseOk{}}}, nil
			case *frames.BasicPublish:
				mu.Lock()
				if inGroup {
					violated = true
				}
				inGroup = true
				mu.Unlock()
				_ = m
			}
		case frames.ContentHeader:
			mu.Lock()
			if !inGroup {
				violated = true
			}
			mu.Unlock()
		case frames.ContentBody:
			mu.Lock()
			if !inGroup {
				violated = true
			}
			inGroup = false
			mu.Unlock()
		}
		return nil, nil
	})

	buf := &connBuf{}
	require.NoError(t, frames.WriteFrame(buf, 0, frames.Method{Body: &frames.ConnectionStart{
		VersionMajor: 0, VersionMinor: 9,
		ServerProperties: encoding.Table{"product": "stub"},
		Mechanisms:       []byte("PLAIN"),
		Locales:          []byte("en_US"),
	}}))
	conn.PushRead(buf.b)

	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	ch, err := c.Channel(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := make([]byte, 4096)
			_ = ch.Publish(ctx, PublishArgs{RoutingKey: "orders"}, Properties{}, body)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	require.False(t, violated, "a ContentHeader/ContentBody frame landed outside its Publish's group")
	mu.Unlock()

	require.NoError(t, ch.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

// TestConnectionHeartbeatLiveness exercises property 7: once the handshake
// negotiates a heartbeat interval, the writer emits heartbeat frames on an
// otherwise idle connection roughly every half interval.
func TestConnectionHeartbeatLiveness(t *testing.T) {
	defer leaktest.Check(t)()

	var heartbeats atomic.Int32
	conn := mocks.NewConnection(func(channel uint16, f frames.Frame) ([]frames.Frame, error) {
		switch v := f.(type) {
		case frames.Method:
			switch v.Body.(type) {
			case *frames.ConnectionStartOk:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionTune{ChannelMax: 16, FrameMax: 8192, Heartbeat: 1}}}, nil
			case *frames.ConnectionTuneOk:
				return nil, nil
			case *frames.ConnectionOpen:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionOpenOk{}}}, nil
			case *frames.ConnectionClose:
				return []frames.Frame{frames.Method{Body: &frames.ConnectionCloseOk{}}}, nil
			}
		case frames.Heartbeat:
			heartbeats.Add(1)
		}
		return nil, nil
	})

	buf := &connBuf{}
	require.NoError(t, frames.WriteFrame(buf, 0, frames.Method{Body: &frames.ConnectionStart{
		VersionMajor: 0, VersionMinor: 9,
		ServerProperties: encoding.Table{"product": "stub"},
		Mechanisms:       []byte("PLAIN"),
		Locales:          []byte("en_US"),
	}}))
	conn.PushRead(buf.b)

	c := &Connection{conn: conn, channels: make(map[uint16]*Channel)}
	cfg := defaultDialConfig()
	cfg.auth = PlainAuth("", "guest", "guest")
	cfg.heartbeat = 1 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.open(ctx, cfg))

	require.Eventually(t, func() bool {
		return heartbeats.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond, "writer never emitted a heartbeat on an idle connection")

	require.NoError(t, c.Close(ctx))
}
