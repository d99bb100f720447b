package frames

import (
	"github.com/wirebroker/amqp/internal/buffer"
	"github.com/wirebroker/amqp/internal/encoding"
)

// BasicQos sets the prefetch window for the channel (or connection, if
// Global is set).
type BasicQos struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (BasicQos) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicQos}
}
func (m BasicQos) Marshal(w *buffer.Buffer) error {
	w.AppendUint32(m.PrefetchSize)
	w.AppendUint16(m.PrefetchCount)
	var bits encoding.BitSet
	bits.Set(0, m.Global)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *BasicQos) Unmarshal(r *buffer.Buffer) (err error) {
	if m.PrefetchSize, err = r.ReadUint32(); err != nil {
		return err
	}
	if m.PrefetchCount, err = r.ReadUint16(); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	m.Global = encoding.BitSet(b).Get(0)
	return nil
}

// BasicQosOk confirms BasicQos.
type BasicQosOk struct{}

func (BasicQosOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicQosOk}
}
func (BasicQosOk) Marshal(*buffer.Buffer) error    { return nil }
func (*BasicQosOk) Unmarshal(*buffer.Buffer) error { return nil }

// BasicConsume registers a consumer against a queue.
type BasicConsume struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   encoding.Table
}

func (BasicConsume) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicConsume}
}
func (m BasicConsume) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0) // reserved: ticket
	if err := encoding.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.NoLocal)
	bits.Set(1, m.NoAck)
	bits.Set(2, m.Exclusive)
	bits.Set(3, m.NoWait)
	w.AppendUint8(uint8(bits))
	return encoding.WriteTable(w, m.Arguments)
}
func (m *BasicConsume) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Queue, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.ConsumerTag, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	bits := encoding.BitSet(b)
	m.NoLocal, m.NoAck, m.Exclusive, m.NoWait = bits.Get(0), bits.Get(1), bits.Get(2), bits.Get(3)
	m.Arguments, err = encoding.ReadTable(r)
	return err
}

// BasicConsumeOk reports the (possibly server-assigned) consumer tag.
type BasicConsumeOk struct {
	ConsumerTag string
}

func (BasicConsumeOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicConsumeOk}
}
func (m BasicConsumeOk) Marshal(w *buffer.Buffer) error {
	return encoding.WriteShortString(w, m.ConsumerTag)
}
func (m *BasicConsumeOk) Unmarshal(r *buffer.Buffer) (err error) {
	m.ConsumerTag, err = encoding.ReadShortString(r)
	return err
}

// BasicCancel ends a consumer subscription.
type BasicCancel struct {
	ConsumerTag string
	NoWait      bool
}

func (BasicCancel) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicCancel}
}
func (m BasicCancel) Marshal(w *buffer.Buffer) error {
	if err := encoding.WriteShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.NoWait)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *BasicCancel) Unmarshal(r *buffer.Buffer) (err error) {
	if m.ConsumerTag, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	m.NoWait = encoding.BitSet(b).Get(0)
	return nil
}

// BasicCancelOk confirms BasicCancel.
type BasicCancelOk struct {
	ConsumerTag string
}

func (BasicCancelOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicCancelOk}
}
func (m BasicCancelOk) Marshal(w *buffer.Buffer) error {
	return encoding.WriteShortString(w, m.ConsumerTag)
}
func (m *BasicCancelOk) Unmarshal(r *buffer.Buffer) (err error) {
	m.ConsumerTag, err = encoding.ReadShortString(r)
	return err
}

// BasicPublish begins a (Publish, ContentHeader, ContentBody...) content
// group; it carries no reply and is never awaited synchronously.
type BasicPublish struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func (BasicPublish) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicPublish}
}
func (m BasicPublish) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0) // reserved: ticket
	if err := encoding.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.Mandatory)
	bits.Set(1, m.Immediate)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *BasicPublish) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
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
	bits := encoding.BitSet(b)
	m.Mandatory, m.Immediate = bits.Get(0), bits.Get(1)
	return nil
}

// BasicReturn is sent back by the broker for a mandatory/immediate publish
// that could not be routed/delivered; it heads a content group like Deliver.
type BasicReturn struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (BasicReturn) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicReturn}
}
func (m BasicReturn) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(m.ReplyCode)
	if err := encoding.WriteShortString(w, m.ReplyText); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	return encoding.WriteShortString(w, m.RoutingKey)
}
func (m *BasicReturn) Unmarshal(r *buffer.Buffer) (err error) {
	if m.ReplyCode, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.ReplyText, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.Exchange, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	m.RoutingKey, err = encoding.ReadShortString(r)
	return err
}

// BasicDeliver heads a content group pushed to a registered consumer.
type BasicDeliver struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func (BasicDeliver) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicDeliver}
}
func (m BasicDeliver) Marshal(w *buffer.Buffer) error {
	if err := encoding.WriteShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	w.AppendUint64(m.DeliveryTag)
	var bits encoding.BitSet
	bits.Set(0, m.Redelivered)
	w.AppendUint8(uint8(bits))
	if err := encoding.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	return encoding.WriteShortString(w, m.RoutingKey)
}
func (m *BasicDeliver) Unmarshal(r *buffer.Buffer) (err error) {
	if m.ConsumerTag, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	m.Redelivered = encoding.BitSet(b).Get(0)
	if m.Exchange, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	m.RoutingKey, err = encoding.ReadShortString(r)
	return err
}

// BasicGet requests a single message from a queue, outside of a consumer.
type BasicGet struct {
	Queue string
	NoAck bool
}

func (BasicGet) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicGet}
}
func (m BasicGet) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0) // reserved: ticket
	if err := encoding.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.NoAck)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *BasicGet) Unmarshal(r *buffer.Buffer) (err error) {
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
	m.NoAck = encoding.BitSet(b).Get(0)
	return nil
}

// BasicGetOk heads a content group delivered in response to BasicGet.
type BasicGetOk struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func (BasicGetOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicGetOk}
}
func (m BasicGetOk) Marshal(w *buffer.Buffer) error {
	w.AppendUint64(m.DeliveryTag)
	var bits encoding.BitSet
	bits.Set(0, m.Redelivered)
	w.AppendUint8(uint8(bits))
	if err := encoding.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	w.AppendUint32(m.MessageCount)
	return nil
}
func (m *BasicGetOk) Unmarshal(r *buffer.Buffer) (err error) {
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	m.Redelivered = encoding.BitSet(b).Get(0)
	if m.Exchange, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.RoutingKey, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	m.MessageCount, err = r.ReadUint32()
	return err
}

// BasicGetEmpty is returned in place of BasicGetOk when the queue is empty.
type BasicGetEmpty struct{}

func (BasicGetEmpty) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicGetEmpty}
}
func (BasicGetEmpty) Marshal(w *buffer.Buffer) error {
	return encoding.WriteShortString(w, "") // reserved: cluster-id
}
func (m *BasicGetEmpty) Unmarshal(r *buffer.Buffer) error {
	_, err := encoding.ReadShortString(r)
	return err
}

// BasicAck acknowledges one or more (if Multiple) delivered messages.
type BasicAck struct {
	DeliveryTag uint64
	Multiple    bool
}

func (BasicAck) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicAck}
}
func (m BasicAck) Marshal(w *buffer.Buffer) error {
	w.AppendUint64(m.DeliveryTag)
	var bits encoding.BitSet
	bits.Set(0, m.Multiple)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *BasicAck) Unmarshal(r *buffer.Buffer) (err error) {
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	m.Multiple = encoding.BitSet(b).Get(0)
	return nil
}

// BasicReject rejects a single delivered message, optionally requeueing it.
type BasicReject struct {
	DeliveryTag uint64
	Requeue     bool
}

func (BasicReject) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicReject}
}
func (m BasicReject) Marshal(w *buffer.Buffer) error {
	w.AppendUint64(m.DeliveryTag)
	var bits encoding.BitSet
	bits.Set(0, m.Requeue)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *BasicReject) Unmarshal(r *buffer.Buffer) (err error) {
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	m.Requeue = encoding.BitSet(b).Get(0)
	return nil
}

// BasicRecoverAsync asks the broker to redeliver unacknowledged messages,
// without expecting a reply (deprecated in favor of BasicRecover).
type BasicRecoverAsync struct {
	Requeue bool
}

func (BasicRecoverAsync) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicRecoverAsync}
}
func (m BasicRecoverAsync) Marshal(w *buffer.Buffer) error {
	var bits encoding.BitSet
	bits.Set(0, m.Requeue)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *BasicRecoverAsync) Unmarshal(r *buffer.Buffer) error {
	b, err := r.ReadByte()
	m.Requeue = encoding.BitSet(b).Get(0)
	return err
}

// BasicRecover asks the broker to redeliver unacknowledged messages.
type BasicRecover struct {
	Requeue bool
}

func (BasicRecover) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicRecover}
}
func (m BasicRecover) Marshal(w *buffer.Buffer) error {
	var bits encoding.BitSet
	bits.Set(0, m.Requeue)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *BasicRecover) Unmarshal(r *buffer.Buffer) error {
	b, err := r.ReadByte()
	m.Requeue = encoding.BitSet(b).Get(0)
	return err
}

// BasicRecoverOk confirms BasicRecover.
type BasicRecoverOk struct{}

func (BasicRecoverOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicRecoverOk}
}
func (BasicRecoverOk) Marshal(*buffer.Buffer) error    { return nil }
func (*BasicRecoverOk) Unmarshal(*buffer.Buffer) error { return nil }

// BasicNack is the RabbitMQ extension form of BasicReject supporting
// multiple and requeue together.
type BasicNack struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (BasicNack) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassBasic, MethodID: methodBasicNack}
}
func (m BasicNack) Marshal(w *buffer.Buffer) error {
	w.AppendUint64(m.DeliveryTag)
	var bits encoding.BitSet
	bits.Set(0, m.Multiple)
	bits.Set(1, m.Requeue)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *BasicNack) Unmarshal(r *buffer.Buffer) (err error) {
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	bits := encoding.BitSet(b)
	m.Multiple, m.Requeue = bits.Get(0), bits.Get(1)
	return nil
}
