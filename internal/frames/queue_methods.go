package frames

import (
	"github.com/wirebroker/amqp/internal/buffer"
	"github.com/wirebroker/amqp/internal/encoding"
)

// QueueDeclare declares (or passively checks) a queue.
type QueueDeclare struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  encoding.Table
}

func (QueueDeclare) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueueDeclare}
}
func (m QueueDeclare) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0) // reserved: ticket
	if err := encoding.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.Passive)
	bits.Set(1, m.Durable)
	bits.Set(2, m.Exclusive)
	bits.Set(3, m.AutoDelete)
	bits.Set(4, m.NoWait)
	w.AppendUint8(uint8(bits))
	return encoding.WriteTable(w, m.Arguments)
}
func (m *QueueDeclare) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Queue, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	bits := encoding.BitSet(b)
	m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait = bits.Get(0), bits.Get(1), bits.Get(2), bits.Get(3), bits.Get(4)
	m.Arguments, err = encoding.ReadTable(r)
	return err
}

// QueueDeclareOk reports the (possibly server-assigned) queue name along
// with message and consumer counts.
type QueueDeclareOk struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (QueueDeclareOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueueDeclareOk}
}
func (m QueueDeclareOk) Marshal(w *buffer.Buffer) error {
	if err := encoding.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	w.AppendUint32(m.MessageCount)
	w.AppendUint32(m.ConsumerCount)
	return nil
}
func (m *QueueDeclareOk) Unmarshal(r *buffer.Buffer) (err error) {
	if m.Queue, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.MessageCount, err = r.ReadUint32(); err != nil {
		return err
	}
	m.ConsumerCount, err = r.ReadUint32()
	return err
}

// QueueBind binds a queue to an exchange under a routing key.
type QueueBind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  encoding.Table
}

func (QueueBind) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueueBind}
}
func (m QueueBind) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0)
	if err := encoding.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.NoWait)
	w.AppendUint8(uint8(bits))
	return encoding.WriteTable(w, m.Arguments)
}
func (m *QueueBind) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Queue, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.Exchange, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.RoutingKey, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	m.NoWait = encoding.BitSet(b).Get(0)
	m.Arguments, err = encoding.ReadTable(r)
	return err
}

// QueueBindOk confirms QueueBind.
type QueueBindOk struct{}

func (QueueBindOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueueBindOk}
}
func (QueueBindOk) Marshal(*buffer.Buffer) error    { return nil }
func (*QueueBindOk) Unmarshal(*buffer.Buffer) error { return nil }

// QueuePurge removes all messages from a queue.
type QueuePurge struct {
	Queue  string
	NoWait bool
}

func (QueuePurge) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueuePurge}
}
func (m QueuePurge) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0)
	if err := encoding.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.NoWait)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *QueuePurge) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Queue, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	m.NoWait = encoding.BitSet(b).Get(0)
	return nil
}

// QueuePurgeOk reports the number of messages purged.
type QueuePurgeOk struct {
	MessageCount uint32
}

func (QueuePurgeOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueuePurgeOk}
}
func (m QueuePurgeOk) Marshal(w *buffer.Buffer) error {
	w.AppendUint32(m.MessageCount)
	return nil
}
func (m *QueuePurgeOk) Unmarshal(r *buffer.Buffer) (err error) {
	m.MessageCount, err = r.ReadUint32()
	return err
}

// QueueDelete deletes a queue.
type QueueDelete struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func (QueueDelete) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueueDelete}
}
func (m QueueDelete) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0)
	if err := encoding.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.IfUnused)
	bits.Set(1, m.IfEmpty)
	bits.Set(2, m.NoWait)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *QueueDelete) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Queue, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	bits := encoding.BitSet(b)
	m.IfUnused, m.IfEmpty, m.NoWait = bits.Get(0), bits.Get(1), bits.Get(2)
	return nil
}

// QueueDeleteOk reports the number of messages deleted along with the queue.
type QueueDeleteOk struct {
	MessageCount uint32
}

func (QueueDeleteOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueueDeleteOk}
}
func (m QueueDeleteOk) Marshal(w *buffer.Buffer) error {
	w.AppendUint32(m.MessageCount)
	return nil
}
func (m *QueueDeleteOk) Unmarshal(r *buffer.Buffer) (err error) {
	m.MessageCount, err = r.ReadUint32()
	return err
}

// QueueUnbind removes a binding created by QueueBind.
type QueueUnbind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  encoding.Table
}

func (QueueUnbind) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueueUnbind}
}
func (m QueueUnbind) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0)
	if err := encoding.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	return encoding.WriteTable(w, m.Arguments)
}
func (m *QueueUnbind) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Queue, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.Exchange, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.RoutingKey, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	m.Arguments, err = encoding.ReadTable(r)
	return err
}

// QueueUnbindOk confirms QueueUnbind.
type QueueUnbindOk struct{}

func (QueueUnbindOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassQueue, MethodID: methodQueueUnbindOk}
}
func (QueueUnbindOk) Marshal(*buffer.Buffer) error    { return nil }
func (*QueueUnbindOk) Unmarshal(*buffer.Buffer) error { return nil }
