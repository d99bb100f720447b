// Package frames implements the AMQP 0-9-1 frame codec: the frame header,
// the four frame types (Method, ContentHeader, ContentBody, Heartbeat), and
// the helpers that split an oversized publish body into multiple
// ContentBody frames. This plays the role of the teacher's internal/frames
// package (referenced throughout Azure-go-amqp's sender.go/types.go) but
// targets the 0-9-1 wire format instead of AMQP 1.0's.
package frames

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/wirebroker/amqp/internal/buffer"
)

// Frame type tags, fixed by the AMQP 0-9-1 wire format.
const (
	TypeMethod    uint8 = 1
	TypeHeader    uint8 = 2
	TypeBody      uint8 = 3
	TypeHeartbeat uint8 = 8
)

// FrameEnd is the fixed frame terminator octet.
const FrameEnd uint8 = 0xCE

// ConnectionChannel is the reserved channel id for connection-level frames.
const ConnectionChannel uint16 = 0

// ErrFraming reports a malformed frame: bad type tag, bad terminator, or an
// oversized payload. The caller must treat this as terminal per spec: send
// Close(frame-error) and tear the connection down.
var ErrFraming = errors.New("frames: framing error")

// Frame is implemented by the four AMQP 0-9-1 frame payload kinds.
type Frame interface {
	// FrameType returns one of the Type* constants.
	FrameType() uint8
	// marshalPayload writes the frame's payload (not the outer header/terminator).
	marshalPayload(w *buffer.Buffer) error
}

// MethodHeader identifies a method body by its class and method id. It is
// the key used by the channel responder registry (spec.md §3) to correlate
// a synchronous request with its reply.
type MethodHeader struct {
	ClassID  uint16
	MethodID uint16
}

func (h MethodHeader) String() string {
	return fmt.Sprintf("(%d,%d)", h.ClassID, h.MethodID)
}

// MethodPayload is implemented by every typed method body (Connection.Start,
// Queue.Declare, Basic.Publish, ...).
type MethodPayload interface {
	MethodHeader() MethodHeader
	Marshal(w *buffer.Buffer) error
	Unmarshal(r *buffer.Buffer) error
}

// Method carries a classified, numbered RPC-style method frame.
type Method struct {
	Body MethodPayload
}

func (Method) FrameType() uint8 { return TypeMethod }

func (m Method) marshalPayload(w *buffer.Buffer) error {
	h := m.Body.MethodHeader()
	w.AppendUint16(h.ClassID)
	w.AppendUint16(h.MethodID)
	return m.Body.Marshal(w)
}

// ContentHeader carries the size and properties of the content that follows
// as one or more ContentBody frames.
type ContentHeader struct {
	ClassID    uint16
	Weight     uint16
	BodySize   uint64
	Properties Properties
}

func (ContentHeader) FrameType() uint8 { return TypeHeader }

func (h ContentHeader) marshalPayload(w *buffer.Buffer) error {
	w.AppendUint16(h.ClassID)
	w.AppendUint16(h.Weight)
	w.AppendUint64(h.BodySize)
	return h.Properties.Marshal(w)
}

// ContentBody carries a slice of the message payload.
type ContentBody struct {
	Bytes []byte
}

func (ContentBody) FrameType() uint8 { return TypeBody }

func (b ContentBody) marshalPayload(w *buffer.Buffer) error {
	_, err := w.Write(b.Bytes)
	return err
}

// Heartbeat is an empty frame on channel 0 used as a liveness signal.
type Heartbeat struct{}

func (Heartbeat) FrameType() uint8 { return TypeHeartbeat }

func (Heartbeat) marshalPayload(*buffer.Buffer) error { return nil }

// WriteFrame serializes and writes one frame to w.
func WriteFrame(w io.Writer, channel uint16, f Frame) error {
	payload := buffer.New(nil)
	if err := f.marshalPayload(payload); err != nil {
		return err
	}

	var header [7]byte
	header[0] = f.FrameType()
	binary.BigEndian.PutUint16(header[1:3], channel)
	binary.BigEndian.PutUint32(header[3:7], uint32(payload.Len()))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return err
	}
	_, err := w.Write([]byte{FrameEnd})
	return err
}

// ReadFrame reads one complete frame, decoding the method body via NewMethodBody
// when the frame type is TypeMethod. frameMax, when non-zero, bounds the
// accepted payload length (oversized payloads are a framing error).
func ReadFrame(r *bufio.Reader, frameMax uint32) (uint16, Frame, error) {
	var header [7]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}

	typ := header[0]
	channel := binary.BigEndian.Uint16(header[1:3])
	size := binary.BigEndian.Uint32(header[3:7])

	if frameMax != 0 && size > frameMax {
		return 0, nil, fmt.Errorf("%w: payload %d exceeds frame_max %d", ErrFraming, size, frameMax)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}

	var end [1]byte
	if _, err := io.ReadFull(r, end[:]); err != nil {
		return 0, nil, err
	}
	if end[0] != FrameEnd {
		return 0, nil, fmt.Errorf("%w: bad frame terminator 0x%02x", ErrFraming, end[0])
	}

	body := buffer.New(payload)
	switch typ {
	case TypeMethod:
		classID, err := body.ReadUint16()
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrFraming, err)
		}
		methodID, err := body.ReadUint16()
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrFraming, err)
		}
		mb, err := NewMethodBody(MethodHeader{ClassID: classID, MethodID: methodID})
		if err != nil {
			return 0, nil, err
		}
		if err := mb.Unmarshal(body); err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrFraming, err)
		}
		return channel, Method{Body: mb}, nil
	case TypeHeader:
		classID, err := body.ReadUint16()
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrFraming, err)
		}
		weight, err := body.ReadUint16()
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrFraming, err)
		}
		bodySize, err := body.ReadUint64()
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrFraming, err)
		}
		var props Properties
		if err := props.Unmarshal(body); err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrFraming, err)
		}
		return channel, ContentHeader{ClassID: classID, Weight: weight, BodySize: bodySize, Properties: props}, nil
	case TypeBody:
		return channel, ContentBody{Bytes: payload}, nil
	case TypeHeartbeat:
		return channel, Heartbeat{}, nil
	default:
		return 0, nil, fmt.Errorf("%w: unknown frame type %d", ErrFraming, typ)
	}
}

// SplitBody breaks payload into ContentBody frames no larger than
// frameMax-8 bytes each (8 bytes of AMQP frame overhead: type+channel+length
// +terminator). A frameMax of zero means "no limit" and yields one frame.
func SplitBody(payload []byte, frameMax uint32) []ContentBody {
	if frameMax == 0 || uint32(len(payload)) <= frameMax-8 {
		if len(payload) == 0 {
			return nil
		}
		return []ContentBody{{Bytes: payload}}
	}

	chunk := int(frameMax - 8)
	var out []ContentBody
	for len(payload) > 0 {
		n := chunk
		if n > len(payload) {
			n = len(payload)
		}
		out = append(out, ContentBody{Bytes: payload[:n]})
		payload = payload[n:]
	}
	return out
}
