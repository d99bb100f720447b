package frames

import (
	"github.com/wirebroker/amqp/internal/buffer"
	"github.com/wirebroker/amqp/internal/encoding"
)

// ChannelOpen allocates a channel for use.
type ChannelOpen struct{}

func (ChannelOpen) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassChannel, MethodID: methodChannelOpen}
}
func (ChannelOpen) Marshal(w *buffer.Buffer) error {
	return encoding.WriteShortString(w, "") // reserved: out-of-band
}
func (m *ChannelOpen) Unmarshal(r *buffer.Buffer) error {
	_, err := encoding.ReadShortString(r)
	return err
}

// ChannelOpenOk confirms the channel is ready for use.
type ChannelOpenOk struct{}

func (ChannelOpenOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassChannel, MethodID: methodChannelOpenOk}
}
func (ChannelOpenOk) Marshal(w *buffer.Buffer) error {
	return encoding.WriteLongString(w, nil) // reserved: channel-id
}
func (m *ChannelOpenOk) Unmarshal(r *buffer.Buffer) error {
	_, err := encoding.ReadLongString(r)
	return err
}

// ChannelFlow asks the peer to pause or resume sending content frames.
// Server-initiated mid-connection, it is routed to a first-class callback
// rather than treated as a protocol violation (spec.md §9 open question).
type ChannelFlow struct {
	Active bool
}

func (ChannelFlow) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassChannel, MethodID: methodChannelFlow}
}
func (m ChannelFlow) Marshal(w *buffer.Buffer) error {
	if m.Active {
		w.AppendUint8(1)
	} else {
		w.AppendUint8(0)
	}
	return nil
}
func (m *ChannelFlow) Unmarshal(r *buffer.Buffer) error {
	b, err := r.ReadByte()
	m.Active = b != 0
	return err
}

// ChannelFlowOk confirms a flow state change.
type ChannelFlowOk struct {
	Active bool
}

func (ChannelFlowOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassChannel, MethodID: methodChannelFlowOk}
}
func (m ChannelFlowOk) Marshal(w *buffer.Buffer) error {
	if m.Active {
		w.AppendUint8(1)
	} else {
		w.AppendUint8(0)
	}
	return nil
}
func (m *ChannelFlowOk) Unmarshal(r *buffer.Buffer) error {
	b, err := r.ReadByte()
	m.Active = b != 0
	return err
}

// ChannelClose requests the channel be closed, carrying the reason.
type ChannelClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func (ChannelClose) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassChannel, MethodID: methodChannelClose}
}
func (m ChannelClose) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(m.ReplyCode)
	if err := encoding.WriteShortString(w, m.ReplyText); err != nil {
		return err
	}
	w.AppendUint16(m.ClassID)
	w.AppendUint16(m.MethodID)
	return nil
}
func (m *ChannelClose) Unmarshal(r *buffer.Buffer) (err error) {
	if m.ReplyCode, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.ReplyText, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.ClassID, err = r.ReadUint16(); err != nil {
		return err
	}
	m.MethodID, err = r.ReadUint16()
	return err
}

// ChannelCloseOk acknowledges a ChannelClose.
type ChannelCloseOk struct{}

func (ChannelCloseOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassChannel, MethodID: methodChannelCloseOk}
}
func (ChannelCloseOk) Marshal(*buffer.Buffer) error    { return nil }
func (*ChannelCloseOk) Unmarshal(*buffer.Buffer) error { return nil }
