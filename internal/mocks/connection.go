// Package mocks provides a net.Conn-shaped broker stand-in, adapted from
// the teacher's internal/mocks.MockConnection so connection/channel tests
// can drive the AMQP 0-9-1 handshake and method exchanges without a live
// broker.
package mocks

import (
	"bufio"
	"errors"
	"net"
	"time"

	"github.com/wirebroker/amqp/internal/frames"
)

// Responder is invoked for every frame the code under test writes (after
// the initial protocol header). Return frames to queue onto the read side,
// or a non-nil error to simulate a write failure.
type Responder func(channel uint16, f frames.Frame) ([]frames.Frame, error)

// NewConnection creates a MockConnection whose Responder reacts to each
// outgoing frame the way a real broker's reply would.
func NewConnection(resp Responder) *MockConnection {
	return &MockConnection{
		resp:      resp,
		readData:  make(chan []byte, 16),
		readClose: make(chan struct{}),
	}
}

// MockConnection satisfies net.Conn; Dial's protocol-header write and every
// subsequent frame pass through Write, which calls resp and pushes any
// reply frames onto the Read side as raw encoded bytes.
type MockConnection struct {
	resp      Responder
	readDL    *time.Timer
	readData  chan []byte
	readClose chan struct{}
	closed    bool
	sawHeader bool

	writeBuf []byte // accumulates bytes until a full frame (or header) is seen
}

// Read is invoked by the reader task's bufio.Reader underneath. It blocks
// until Write enqueues a reply, Close is called, or the read deadline
// expires.
func (m *MockConnection) Read(b []byte) (n int, err error) {
	select {
	case <-m.readClose:
		return 0, errors.New("mock connection was closed")
	default:
	}

	var dlC <-chan time.Time
	if m.readDL != nil {
		dlC = m.readDL.C
	}
	select {
	case <-m.readClose:
		return 0, errors.New("mock connection was closed")
	case <-dlC:
		return 0, errors.New("mock connection read deadline exceeded")
	case rd := <-m.readData:
		return copy(b, rd), nil
	}
}

// Write accepts the protocol header once, then frame bytes in whatever
// pieces the writer's *bufio.Writer hands over (a frame larger than its
// buffer arrives split across several calls); bytes accumulate until a
// complete frame decodes, and each complete frame is answered in turn.
func (m *MockConnection) Write(b []byte) (n int, err error) {
	select {
	case <-m.readClose:
		return 0, errors.New("mock connection was closed")
	default:
	}

	m.writeBuf = append(m.writeBuf, b...)
	if !m.sawHeader {
		if len(m.writeBuf) < 8 {
			return len(b), nil
		}
		m.sawHeader = true
		m.writeBuf = m.writeBuf[8:]
	}

	for {
		channel, f, consumed, ok := tryDecodeFrame(m.writeBuf)
		if !ok {
			break
		}
		m.writeBuf = m.writeBuf[consumed:]

		replies, err := m.resp(channel, f)
		if err != nil {
			return 0, err
		}
		for _, r := range replies {
			buf := &byteSink{}
			bw := bufio.NewWriter(buf)
			if err := frames.WriteFrame(bw, channel, r); err != nil {
				return 0, err
			}
			_ = bw.Flush()
			m.readData <- buf.b
		}
	}
	return len(b), nil
}

// PushRead queues raw bytes (typically one encoded frame) to be returned by
// a future Read, for tests that need the mock broker to speak first (e.g.
// Connection.Start, sent unsolicited before the client ever writes).
func (m *MockConnection) PushRead(b []byte) {
	m.readData <- b
}

// Close tears down the mock, unblocking any pending Read.
func (m *MockConnection) Close() error {
	if m.closed {
		return errors.New("double close")
	}
	m.closed = true
	close(m.readClose)
	return nil
}

func (m *MockConnection) LocalAddr() net.Addr  { return &net.IPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (m *MockConnection) RemoteAddr() net.Addr { return &net.IPAddr{IP: net.IPv4(127, 0, 0, 2)} }

func (m *MockConnection) SetDeadline(t time.Time) error { return errors.New("not used") }

func (m *MockConnection) SetReadDeadline(t time.Time) error {
	if m.readDL != nil {
		m.readDL.Stop()
	}
	if d := time.Until(t); d > 0 {
		m.readDL = time.NewTimer(d)
	} else {
		m.readDL = nil
	}
	return nil
}

func (m *MockConnection) SetWriteDeadline(t time.Time) error { return nil }

// byteSink is an io.Writer collecting bytes, for assembling one encoded
// frame to push onto the read channel as a single chunk.
type byteSink struct{ b []byte }

func (s *byteSink) Write(p []byte) (int, error) {
	s.b = append(s.b, p...)
	return len(p), nil
}

// tryDecodeFrame attempts to parse exactly one frame out of buf's front,
// returning ok=false if buf doesn't yet hold a complete frame.
func tryDecodeFrame(buf []byte) (channel uint16, f frames.Frame, consumed int, ok bool) {
	if len(buf) < 7 {
		return 0, nil, 0, false
	}
	size := int(buf[3])<<24 | int(buf[4])<<16 | int(buf[5])<<8 | int(buf[6])
	total := 7 + size + 1
	if len(buf) < total {
		return 0, nil, 0, false
	}
	br := bufio.NewReader(&byteSource{b: buf[:total]})
	ch, parsed, err := frames.ReadFrame(br, 0)
	if err != nil {
		return 0, nil, 0, false
	}
	return ch, parsed, total, true
}

type byteSource struct {
	b []byte
	i int
}

func (s *byteSource) Read(p []byte) (int, error) {
	if s.i >= len(s.b) {
		return 0, errors.New("mocks: short frame buffer")
	}
	n := copy(p, s.b[s.i:])
	s.i += n
	return n, nil
}
