package frames

import (
	"github.com/wirebroker/amqp/internal/buffer"
	"github.com/wirebroker/amqp/internal/encoding"
)

// ExchangeDeclare declares an exchange.
type ExchangeDeclare struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  encoding.Table
}

func (ExchangeDeclare) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassExchange, MethodID: methodExchangeDeclare}
}
func (m ExchangeDeclare) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0) // reserved: ticket
	if err := encoding.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.Type); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.Passive)
	bits.Set(1, m.Durable)
	bits.Set(2, m.AutoDelete)
	bits.Set(3, m.Internal)
	bits.Set(4, m.NoWait)
	w.AppendUint8(uint8(bits))
	return encoding.WriteTable(w, m.Arguments)
}
func (m *ExchangeDeclare) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Exchange, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.Type, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	bits := encoding.BitSet(b)
	m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait = bits.Get(0), bits.Get(1), bits.Get(2), bits.Get(3), bits.Get(4)
	m.Arguments, err = encoding.ReadTable(r)
	return err
}

// ExchangeDeclareOk confirms ExchangeDeclare.
type ExchangeDeclareOk struct{}

func (ExchangeDeclareOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassExchange, MethodID: methodExchangeDeclareOk}
}
func (ExchangeDeclareOk) Marshal(*buffer.Buffer) error    { return nil }
func (*ExchangeDeclareOk) Unmarshal(*buffer.Buffer) error { return nil }

// ExchangeDelete deletes an exchange.
type ExchangeDelete struct {
	Exchange string
	IfUnused bool
	NoWait   bool
}

func (ExchangeDelete) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassExchange, MethodID: methodExchangeDelete}
}
func (m ExchangeDelete) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0) // reserved: ticket
	if err := encoding.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	var bits encoding.BitSet
	bits.Set(0, m.IfUnused)
	bits.Set(1, m.NoWait)
	w.AppendUint8(uint8(bits))
	return nil
}
func (m *ExchangeDelete) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Exchange, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	bits := encoding.BitSet(b)
	m.IfUnused, m.NoWait = bits.Get(0), bits.Get(1)
	return nil
}

// ExchangeDeleteOk confirms ExchangeDelete.
type ExchangeDeleteOk struct{}

func (ExchangeDeleteOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassExchange, MethodID: methodExchangeDeleteOk}
}
func (ExchangeDeleteOk) Marshal(*buffer.Buffer) error    { return nil }
func (*ExchangeDeleteOk) Unmarshal(*buffer.Buffer) error { return nil }

// ExchangeBind binds one exchange to another (RabbitMQ extension, part of
// the method table's "RabbitMQ-compatible set").
type ExchangeBind struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   encoding.Table
}

func (ExchangeBind) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassExchange, MethodID: methodExchangeBind}
}
func (m ExchangeBind) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0)
	if err := encoding.WriteShortString(w, m.Destination); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.Source); err != nil {
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
func (m *ExchangeBind) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Destination, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.Source, err = encoding.ReadShortString(r); err != nil {
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

// ExchangeBindOk confirms ExchangeBind.
type ExchangeBindOk struct{}

func (ExchangeBindOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassExchange, MethodID: methodExchangeBindOk}
}
func (ExchangeBindOk) Marshal(*buffer.Buffer) error    { return nil }
func (*ExchangeBindOk) Unmarshal(*buffer.Buffer) error { return nil }

// ExchangeUnbind removes a binding created by ExchangeBind.
type ExchangeUnbind struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   encoding.Table
}

func (ExchangeUnbind) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassExchange, MethodID: methodExchangeUnbind}
}
func (m ExchangeUnbind) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(0)
	if err := encoding.WriteShortString(w, m.Destination); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.Source); err != nil {
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
func (m *ExchangeUnbind) Unmarshal(r *buffer.Buffer) (err error) {
	if _, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.Destination, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.Source, err = encoding.ReadShortString(r); err != nil {
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

// ExchangeUnbindOk confirms ExchangeUnbind.
type ExchangeUnbindOk struct{}

func (ExchangeUnbindOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassExchange, MethodID: methodExchangeUnbindOk}
}
func (ExchangeUnbindOk) Marshal(*buffer.Buffer) error    { return nil }
func (*ExchangeUnbindOk) Unmarshal(*buffer.Buffer) error { return nil }
