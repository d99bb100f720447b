package amqp

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wirebroker/amqp/internal/encoding"
	"github.com/wirebroker/amqp/internal/frames"
	"github.com/wirebroker/amqp/internal/mux"
)

// Channel is a single AMQP 0-9-1 channel multiplexed over its Connection's
// socket. All Channel methods are safe for concurrent use; Publish frame
// groups are additionally serialized by publishMu so a (Publish, Header,
// Body...) group from one goroutine never interleaves with another's.
type Channel struct {
	conn   *Connection
	handle *mux.ChannelHandle

	publishMu sync.Mutex

	mu       sync.Mutex
	closed   bool
	closeErr error
	notify   []chan *Error
}

func newChannel(c *Connection, handle *mux.ChannelHandle) *Channel {
	return &Channel{conn: c, handle: handle}
}

func (ch *Channel) handleServerClose(cc *frames.ChannelClose) {
	ch.mu.Lock()
	ch.closed = true
	ch.closeErr = &Error{Code: cc.ReplyCode, Reason: cc.ReplyText, Class: cc.ClassID, Method: cc.MethodID}
	notify := append([]chan *Error(nil), ch.notify...)
	ch.mu.Unlock()
	ch.conn.forgetChannel(ch.handle.ID)
	for _, c := range notify {
		c <- ch.closeErr.(*Error)
		close(c)
	}
}

// NotifyClose registers c to receive this channel's close error exactly
// once, then c is closed.
func (ch *Channel) NotifyClose(c chan *Error) chan *Error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		c <- ch.closeErr.(*Error)
		close(c)
		return c
	}
	ch.notify = append(ch.notify, c)
	return c
}

// call runs the three-step synchronous-request contract every RPC method on
// this channel follows: register a responder for replyHeader, send req, then
// await the reply. The responder is registered before the send so no reply
// racing the registration is ever missed (spec.md §4.3 ordering).
func (ch *Channel) call(ctx context.Context, replyHeader frames.MethodHeader, req frames.MethodPayload) (frames.Frame, error) {
	resp, err := ch.conn.eng.RegisterResponder(ctx, ch.handle.ID, replyHeader)
	if err != nil {
		return nil, wrapMuxError(err)
	}
	if err := ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}); err != nil {
		return nil, wrapMuxError(err)
	}
	f, err := mux.Await(ctx, resp)
	if err != nil {
		return nil, wrapMuxError(err)
	}
	return f, nil
}

// QueueDeclareArgs configures Queue.Declare.
type QueueDeclareArgs struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  map[string]interface{}
}

// QueueDeclareResult reports the declared queue's name and current counts.
type QueueDeclareResult struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

// QueueDeclare declares (or, if Passive, merely checks) a queue.
func (ch *Channel) QueueDeclare(ctx context.Context, args QueueDeclareArgs) (QueueDeclareResult, error) {
	if args.NoWait {
		err := ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: &frames.QueueDeclare{
			Queue: args.Queue, Passive: args.Passive, Durable: args.Durable,
			Exclusive: args.Exclusive, AutoDelete: args.AutoDelete, NoWait: true,
			Arguments: encoding.Table(args.Arguments),
		}})
		return QueueDeclareResult{Queue: args.Queue}, wrapMuxError(err)
	}

	f, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassQueue, MethodID: 11}, &frames.QueueDeclare{
		Queue: args.Queue, Passive: args.Passive, Durable: args.Durable,
		Exclusive: args.Exclusive, AutoDelete: args.AutoDelete,
		Arguments: encoding.Table(args.Arguments),
	})
	if err != nil {
		return QueueDeclareResult{}, err
	}
	ok, ok2 := f.(frames.Method).Body.(*frames.QueueDeclareOk)
	if !ok2 {
		return QueueDeclareResult{}, errors.Errorf("amqp: unexpected reply %T to Queue.Declare", f)
	}
	return QueueDeclareResult{Queue: ok.Queue, MessageCount: ok.MessageCount, ConsumerCount: ok.ConsumerCount}, nil
}

// QueueBindArgs configures Queue.Bind.
type QueueBindArgs struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  map[string]interface{}
}

// QueueBind binds a queue to an exchange under a routing key.
func (ch *Channel) QueueBind(ctx context.Context, args QueueBindArgs) error {
	req := &frames.QueueBind{
		Queue: args.Queue, Exchange: args.Exchange, RoutingKey: args.RoutingKey,
		NoWait: args.NoWait, Arguments: encoding.Table(args.Arguments),
	}
	if args.NoWait {
		return wrapMuxError(ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}))
	}
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassQueue, MethodID: 21}, req)
	return err
}

// QueuePurge removes all ready messages from queue, returning the count
// purged. NoWait suppresses the reply and the returned count is 0.
func (ch *Channel) QueuePurge(ctx context.Context, queue string, noWait bool) (int, error) {
	req := &frames.QueuePurge{Queue: queue, NoWait: noWait}
	if noWait {
		return 0, wrapMuxError(ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}))
	}
	f, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassQueue, MethodID: 31}, req)
	if err != nil {
		return 0, err
	}
	ok, ok2 := f.(frames.Method).Body.(*frames.QueuePurgeOk)
	if !ok2 {
		return 0, errors.Errorf("amqp: unexpected reply %T to Queue.Purge", f)
	}
	return int(ok.MessageCount), nil
}

// QueueDeleteArgs configures Queue.Delete.
type QueueDeleteArgs struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

// QueueDelete deletes a queue, returning the number of messages it held.
func (ch *Channel) QueueDelete(ctx context.Context, args QueueDeleteArgs) (int, error) {
	req := &frames.QueueDelete{Queue: args.Queue, IfUnused: args.IfUnused, IfEmpty: args.IfEmpty, NoWait: args.NoWait}
	if args.NoWait {
		return 0, wrapMuxError(ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}))
	}
	f, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassQueue, MethodID: 41}, req)
	if err != nil {
		return 0, err
	}
	ok, ok2 := f.(frames.Method).Body.(*frames.QueueDeleteOk)
	if !ok2 {
		return 0, errors.Errorf("amqp: unexpected reply %T to Queue.Delete", f)
	}
	return int(ok.MessageCount), nil
}

// QueueUnbindArgs configures Queue.Unbind.
type QueueUnbindArgs struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  map[string]interface{}
}

// QueueUnbind removes a binding created by QueueBind. Queue.Unbind has no
// NoWait bit in the protocol; it always awaits UnbindOk.
func (ch *Channel) QueueUnbind(ctx context.Context, args QueueUnbindArgs) error {
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassQueue, MethodID: 51}, &frames.QueueUnbind{
		Queue: args.Queue, Exchange: args.Exchange, RoutingKey: args.RoutingKey,
		Arguments: encoding.Table(args.Arguments),
	})
	return err
}

// ExchangeDeclareArgs configures Exchange.Declare.
type ExchangeDeclareArgs struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  map[string]interface{}
}

// ExchangeDeclare declares (or, if Passive, merely checks) an exchange.
func (ch *Channel) ExchangeDeclare(ctx context.Context, args ExchangeDeclareArgs) error {
	req := &frames.ExchangeDeclare{
		Exchange: args.Exchange, Type: args.Type, Passive: args.Passive, Durable: args.Durable,
		AutoDelete: args.AutoDelete, Internal: args.Internal, NoWait: args.NoWait,
		Arguments: encoding.Table(args.Arguments),
	}
	if args.NoWait {
		return wrapMuxError(ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}))
	}
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassExchange, MethodID: 11}, req)
	return err
}

// ExchangeDeleteArgs configures Exchange.Delete.
type ExchangeDeleteArgs struct {
	Exchange string
	IfUnused bool
	NoWait   bool
}

// ExchangeDelete deletes an exchange.
func (ch *Channel) ExchangeDelete(ctx context.Context, args ExchangeDeleteArgs) error {
	req := &frames.ExchangeDelete{Exchange: args.Exchange, IfUnused: args.IfUnused, NoWait: args.NoWait}
	if args.NoWait {
		return wrapMuxError(ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}))
	}
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassExchange, MethodID: 21}, req)
	return err
}

// ExchangeBindArgs configures Exchange.Bind (RabbitMQ extension).
type ExchangeBindArgs struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   map[string]interface{}
}

// ExchangeBind binds one exchange to another.
func (ch *Channel) ExchangeBind(ctx context.Context, args ExchangeBindArgs) error {
	req := &frames.ExchangeBind{
		Destination: args.Destination, Source: args.Source, RoutingKey: args.RoutingKey,
		NoWait: args.NoWait, Arguments: encoding.Table(args.Arguments),
	}
	if args.NoWait {
		return wrapMuxError(ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}))
	}
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassExchange, MethodID: 31}, req)
	return err
}

// ExchangeUnbindArgs configures Exchange.Unbind (RabbitMQ extension).
type ExchangeUnbindArgs struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   map[string]interface{}
}

// ExchangeUnbind removes a binding created by ExchangeBind.
func (ch *Channel) ExchangeUnbind(ctx context.Context, args ExchangeUnbindArgs) error {
	req := &frames.ExchangeUnbind{
		Destination: args.Destination, Source: args.Source, RoutingKey: args.RoutingKey,
		NoWait: args.NoWait, Arguments: encoding.Table(args.Arguments),
	}
	if args.NoWait {
		return wrapMuxError(ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}))
	}
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassExchange, MethodID: 51}, req)
	return err
}

// Qos sets the channel's (or, if global, the connection's) prefetch window.
func (ch *Channel) Qos(ctx context.Context, prefetchCount int, prefetchSize int, global bool) error {
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassBasic, MethodID: 11}, &frames.BasicQos{
		PrefetchSize: uint32(prefetchSize), PrefetchCount: uint16(prefetchCount), Global: global,
	})
	return err
}

// PublishArgs names the exchange/routing-key target and routing options of
// a Basic.Publish.
type PublishArgs struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

// Properties mirrors the basic-class content-header properties callers set
// on a published message.
type Properties = frames.Properties

// Publish sends a (Basic.Publish, ContentHeader, ContentBody...) frame
// group atomically with respect to any other Publish on this channel.
// Publish never awaits a reply; use a confirm handler (ConfirmSelect) or
// Basic.Return handler to observe broker-side outcomes.
func (ch *Channel) Publish(ctx context.Context, args PublishArgs, props Properties, body []byte) error {
	ch.publishMu.Lock()
	defer ch.publishMu.Unlock()

	if err := ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: &frames.BasicPublish{
		Exchange: args.Exchange, RoutingKey: args.RoutingKey, Mandatory: args.Mandatory, Immediate: args.Immediate,
	}}); err != nil {
		return wrapMuxError(err)
	}

	if err := ch.conn.eng.Send(ctx, ch.handle.ID, frames.ContentHeader{
		ClassID: frames.ClassBasic, BodySize: uint64(len(body)), Properties: props,
	}); err != nil {
		return wrapMuxError(err)
	}

	for _, part := range frames.SplitBody(body, ch.conn.negotiatedFrameMax()) {
		if err := ch.conn.eng.Send(ctx, ch.handle.ID, part); err != nil {
			return wrapMuxError(err)
		}
	}
	return nil
}

// Delivery is a fully assembled message delivered to a consumer or returned
// by Get.
type Delivery struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
	Properties  Properties
	Body        []byte

	// MessageCount is the queue's remaining depth after this delivery, as
	// reported by Basic.GetOk. It is always zero for a Consume delivery,
	// which carries no such count.
	MessageCount uint32

	ch *Channel
}

// Ack acknowledges this delivery (and, if multiple, every earlier
// unacknowledged delivery on this channel).
func (d Delivery) Ack(multiple bool) error { return d.ch.Ack(d.DeliveryTag, multiple) }

// Nack negative-acknowledges this delivery.
func (d Delivery) Nack(multiple, requeue bool) error { return d.ch.Nack(d.DeliveryTag, multiple, requeue) }

// Reject rejects this delivery.
func (d Delivery) Reject(requeue bool) error { return d.ch.Reject(d.DeliveryTag, requeue) }

// ConsumeArgs configures Basic.Consume.
type ConsumeArgs struct {
	Queue       string
	ConsumerTag string
	AutoAck     bool
	Exclusive   bool
	NoLocal     bool
	NoWait      bool
	Arguments   map[string]interface{}
}

// Consume registers a consumer against queue and returns a channel fed with
// each delivered message until Cancel, the channel closes, or the
// connection is torn down.
func (ch *Channel) Consume(ctx context.Context, args ConsumeArgs) (<-chan Delivery, error) {
	tag := args.ConsumerTag
	if tag == "" {
		tag = "ctag-" + uuid.NewString()
	}

	out := make(chan Delivery, 16)
	internal := make(chan *mux.Delivery, 16)

	go func() {
		for d := range internal {
			out <- Delivery{
				ConsumerTag: d.ConsumerTag, DeliveryTag: d.DeliveryTag, Redelivered: d.Redelivered,
				Exchange: d.Exchange, RoutingKey: d.RoutingKey, Properties: d.Properties, Body: d.Body, ch: ch,
			}
		}
		close(out)
	}()

	if err := ch.handle.RegisterConsumer(ctx, tag, internal); err != nil {
		return nil, wrapMuxError(err)
	}

	req := &frames.BasicConsume{
		Queue: args.Queue, ConsumerTag: tag, NoLocal: args.NoLocal, NoAck: args.AutoAck,
		Exclusive: args.Exclusive, NoWait: args.NoWait, Arguments: encoding.Table(args.Arguments),
	}
	if args.NoWait {
		if err := ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}); err != nil {
			return nil, wrapMuxError(err)
		}
		return out, nil
	}

	f, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassBasic, MethodID: 21}, req)
	if err != nil {
		_ = ch.handle.CancelConsumer(ctx, tag)
		return nil, err
	}
	if _, ok := f.(frames.Method).Body.(*frames.BasicConsumeOk); !ok {
		_ = ch.handle.CancelConsumer(ctx, tag)
		return nil, errors.Errorf("amqp: unexpected reply %T to Basic.Consume", f)
	}
	return out, nil
}

// Cancel ends a consumer subscription started with Consume.
func (ch *Channel) Cancel(ctx context.Context, consumerTag string, noWait bool) error {
	defer ch.handle.CancelConsumer(ctx, consumerTag)

	req := &frames.BasicCancel{ConsumerTag: consumerTag, NoWait: noWait}
	if noWait {
		return wrapMuxError(ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}))
	}
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassBasic, MethodID: 31}, req)
	return err
}

// Get requests a single message from queue outside of a consumer
// subscription. ok is false when the queue was empty.
func (ch *Channel) Get(ctx context.Context, queue string, autoAck bool) (*Delivery, bool, error) {
	getWaiter := ch.handle.AwaitGet()
	emptyResp, err := ch.conn.eng.RegisterResponder(ctx, ch.handle.ID, frames.MethodHeader{ClassID: frames.ClassBasic, MethodID: 72})
	if err != nil {
		return nil, false, wrapMuxError(err)
	}
	if err := ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: &frames.BasicGet{Queue: queue, NoAck: autoAck}}); err != nil {
		return nil, false, wrapMuxError(err)
	}

	select {
	case res := <-getWaiter:
		d := &Delivery{
			ConsumerTag: "", DeliveryTag: res.DeliveryTag, Redelivered: res.Redelivered,
			Exchange: res.Exchange, RoutingKey: res.RoutingKey, Properties: res.Properties, Body: res.Body,
			MessageCount: res.MessageCount, ch: ch,
		}
		return d, true, nil
	case _, ok := <-emptyResp:
		if !ok {
			return nil, false, wrapMuxError(mux.NewError(mux.KindInterrupted, "connection closed while awaiting Basic.Get reply", nil))
		}
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Ack acknowledges one or more delivered messages.
func (ch *Channel) Ack(deliveryTag uint64, multiple bool) error {
	return wrapMuxError(ch.conn.eng.Send(context.Background(), ch.handle.ID, frames.Method{Body: &frames.BasicAck{DeliveryTag: deliveryTag, Multiple: multiple}}))
}

// Nack negatively acknowledges one or more delivered messages.
func (ch *Channel) Nack(deliveryTag uint64, multiple, requeue bool) error {
	return wrapMuxError(ch.conn.eng.Send(context.Background(), ch.handle.ID, frames.Method{Body: &frames.BasicNack{DeliveryTag: deliveryTag, Multiple: multiple, Requeue: requeue}}))
}

// Reject rejects a single delivered message.
func (ch *Channel) Reject(deliveryTag uint64, requeue bool) error {
	return wrapMuxError(ch.conn.eng.Send(context.Background(), ch.handle.ID, frames.Method{Body: &frames.BasicReject{DeliveryTag: deliveryTag, Requeue: requeue}}))
}

// Recover asks the broker to redeliver this channel's unacknowledged
// messages.
func (ch *Channel) Recover(ctx context.Context, requeue bool) error {
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassBasic, MethodID: 111}, &frames.BasicRecover{Requeue: requeue})
	return err
}

// ConfirmSelect puts the channel into publisher-confirm mode; subsequent
// publishes are acked/nacked asynchronously by the broker. Register a
// confirm handler via SetConfirmHandler before calling this to avoid
// missing the first few confirms.
func (ch *Channel) ConfirmSelect(ctx context.Context, noWait bool) error {
	req := &frames.ConfirmSelect{NoWait: noWait}
	if noWait {
		return wrapMuxError(ch.conn.eng.Send(ctx, ch.handle.ID, frames.Method{Body: req}))
	}
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassConfirm, MethodID: 11}, req)
	return err
}

// SetConfirmHandler registers the callback invoked for each publisher
// Basic.Ack/Basic.Nack once the channel is in confirm mode.
func (ch *Channel) SetConfirmHandler(ctx context.Context, fn func(ack bool, deliveryTag uint64, multiple bool)) error {
	return ch.handle.SetConfirmHandler(ctx, fn)
}

// SetReturnHandler registers the callback invoked for each Basic.Return
// (an unroutable mandatory/immediate publish bounced back by the broker).
func (ch *Channel) SetReturnHandler(ctx context.Context, fn func(mux.Return)) error {
	return ch.handle.SetReturnHandler(ctx, fn)
}

// SetFlowHandler registers the callback invoked for a server-initiated
// Channel.Flow; the reader replies with FlowOk automatically either way.
func (ch *Channel) SetFlowHandler(ctx context.Context, fn func(active bool)) error {
	return ch.handle.SetFlowHandler(ctx, fn)
}

// TxSelect puts the channel into transactional mode.
func (ch *Channel) TxSelect(ctx context.Context) error {
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassTx, MethodID: 11}, &frames.TxSelect{})
	return err
}

// TxCommit commits the current transaction.
func (ch *Channel) TxCommit(ctx context.Context) error {
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassTx, MethodID: 21}, &frames.TxCommit{})
	return err
}

// TxRollback rolls back the current transaction.
func (ch *Channel) TxRollback(ctx context.Context) error {
	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassTx, MethodID: 31}, &frames.TxRollback{})
	return err
}

// Close requests an orderly Channel.Close/CloseOk exchange and releases the
// channel id.
func (ch *Channel) Close(ctx context.Context) error {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return nil
	}
	ch.closed = true
	ch.mu.Unlock()
	ch.conn.forgetChannel(ch.handle.ID)

	_, err := ch.call(ctx, frames.MethodHeader{ClassID: frames.ClassChannel, MethodID: 41}, &frames.ChannelClose{ReplyCode: 200, ReplyText: "normal shutdown"})
	_ = ch.conn.eng.CloseChannel(ctx, ch.handle.ID)
	return err
}
