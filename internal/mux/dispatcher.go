// Package mux is the connection's I/O engine: the channel-id repository,
// the channel resource table, the reader/writer tasks, and the per-channel
// dispatcher, per spec.md §4. It is the hard part of the system and is
// deliberately kept free of any public-facing API; the top-level amqp
// package is the only caller.
package mux

import (
	"sync"

	"github.com/wirebroker/amqp/internal/frames"
	"github.com/wirebroker/amqp/internal/queue"
)

// Delivery is a fully assembled content group delivered to a consumer or a
// Basic.Get caller.
type Delivery struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
	Properties  frames.Properties
	Body        []byte
}

// GetResult is the outcome of a Basic.Get on a non-empty queue.
type GetResult struct {
	Delivery
	MessageCount uint32
}

// Return is an unroutable message bounced back by Basic.Return.
type Return struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
	Properties frames.Properties
	Body       []byte
}

type assemblyState int

const (
	stateIdle assemblyState = iota
	stateAwaitHeader
	stateAwaitBody
)

// pendingAssembly holds the in-progress content group for one channel. Only
// one can be in flight per channel at a time (spec.md §3 invariant).
type pendingAssembly struct {
	method frames.MethodPayload
	header frames.ContentHeader
	body   []byte
}

// consumerState drains a per-consumer backlog into the user-facing channel,
// isolating a slow consumer from the dispatcher's assembly loop and, in
// turn, from every other channel and the shared Reader.
type consumerState struct {
	tag     string
	ch      chan *Delivery
	backlog *queue.Queue[Delivery]
	notify  chan struct{}
	done    chan struct{}
}

func newConsumerState(tag string, ch chan *Delivery) *consumerState {
	return &consumerState{
		tag:     tag,
		ch:      ch,
		backlog: queue.New[Delivery](16),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (c *consumerState) run() {
	defer close(c.ch)
	for {
		item := c.backlog.Dequeue()
		if item == nil {
			select {
			case <-c.notify:
				continue
			case <-c.done:
				return
			}
		}
		select {
		case c.ch <- item:
		case <-c.done:
			return
		}
	}
}

func (c *consumerState) enqueue(d Delivery) {
	c.backlog.Enqueue(d)
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *consumerState) stop() {
	close(c.done)
}

// dispatcher owns one channel's inbound content-assembly state machine: a
// FIFO of inbound method/header/body frames, consumed by a single goroutine
// so no locking is needed around the assembly state itself (spec.md §4.6).
type dispatcher struct {
	channelID uint16
	inbox     chan frames.Frame
	done      chan struct{}

	state   assemblyState
	pending pendingAssembly

	mu        sync.Mutex
	consumers map[string]*consumerState

	getWaiter chan *GetResult

	onReturn  func(Return)
	onConfirm func(ack bool, tag uint64, multiple bool)
}

func newDispatcher(channelID uint16) *dispatcher {
	return &dispatcher{
		channelID: channelID,
		inbox:     make(chan frames.Frame, 64),
		done:      make(chan struct{}),
		consumers: make(map[string]*consumerState),
		getWaiter: make(chan *GetResult, 1),
	}
}

// registerConsumer creates a drain goroutine for tag, replacing any prior
// registration in the map; the facade does not check for a reused tag
// before reaching here.
func (d *dispatcher) registerConsumer(tag string, ch chan *Delivery) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cs := newConsumerState(tag, ch)
	d.consumers[tag] = cs
	go cs.run()
}

// cancelConsumer stops and removes a consumer's drain goroutine.
func (d *dispatcher) cancelConsumer(tag string) {
	d.mu.Lock()
	cs := d.consumers[tag]
	delete(d.consumers, tag)
	d.mu.Unlock()
	if cs != nil {
		cs.stop()
	}
}

// setReturnHandler registers the callback invoked for each Basic.Return.
func (d *dispatcher) setReturnHandler(fn func(Return)) {
	d.mu.Lock()
	d.onReturn = fn
	d.mu.Unlock()
}

// setConfirmHandler registers the callback invoked for each publisher
// Basic.Ack/Basic.Nack on a confirm-mode channel.
func (d *dispatcher) setConfirmHandler(fn func(ack bool, tag uint64, multiple bool)) {
	d.mu.Lock()
	d.onConfirm = fn
	d.mu.Unlock()
}

// awaitGet returns the one-shot channel a Basic.Get caller selects on,
// alongside the responder wired for Basic.GetEmpty by the caller.
func (d *dispatcher) awaitGet() <-chan *GetResult {
	return d.getWaiter
}

// stop tears down every consumer drain goroutine owned by this dispatcher.
func (d *dispatcher) stop() {
	close(d.done)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cs := range d.consumers {
		cs.stop()
	}
}

// run is the dispatcher's single goroutine: it owns pending/state
// exclusively, so no mutex guards them.
func (d *dispatcher) run() {
	for {
		select {
		case f, ok := <-d.inbox:
			if !ok {
				return
			}
			d.handle(f)
		case <-d.done:
			return
		}
	}
}

func (d *dispatcher) handle(f frames.Frame) {
	switch v := f.(type) {
	case frames.Method:
		switch m := v.Body.(type) {
		case *frames.BasicAck:
			if d.onConfirm != nil {
				d.onConfirm(true, m.DeliveryTag, m.Multiple)
			}
		case *frames.BasicNack:
			if d.onConfirm != nil {
				d.onConfirm(false, m.DeliveryTag, m.Multiple)
			}
		default:
			d.pending = pendingAssembly{method: v.Body}
			d.state = stateAwaitHeader
		}
	case frames.ContentHeader:
		if d.state != stateAwaitHeader {
			return
		}
		d.pending.header = v
		if v.BodySize == 0 {
			d.emit()
			return
		}
		d.state = stateAwaitBody
	case frames.ContentBody:
		if d.state != stateAwaitBody {
			return
		}
		d.pending.body = append(d.pending.body, v.Bytes...)
		if uint64(len(d.pending.body)) >= d.pending.header.BodySize {
			d.emit()
		}
	}
}

func (d *dispatcher) emit() {
	defer func() {
		d.state = stateIdle
		d.pending = pendingAssembly{}
	}()

	props := d.pending.header.Properties
	body := d.pending.body

	switch m := d.pending.method.(type) {
	case *frames.BasicDeliver:
		d.mu.Lock()
		cs := d.consumers[m.ConsumerTag]
		d.mu.Unlock()
		if cs == nil {
			return
		}
		cs.enqueue(Delivery{
			ConsumerTag: m.ConsumerTag,
			DeliveryTag: m.DeliveryTag,
			Redelivered: m.Redelivered,
			Exchange:    m.Exchange,
			RoutingKey:  m.RoutingKey,
			Properties:  props,
			Body:        body,
		})
	case *frames.BasicGetOk:
		res := &GetResult{
			Delivery: Delivery{
				DeliveryTag: m.DeliveryTag,
				Redelivered: m.Redelivered,
				Exchange:    m.Exchange,
				RoutingKey:  m.RoutingKey,
				Properties:  props,
				Body:        body,
			},
			MessageCount: m.MessageCount,
		}
		select {
		case d.getWaiter <- res:
		default:
		}
	case *frames.BasicReturn:
		d.mu.Lock()
		fn := d.onReturn
		d.mu.Unlock()
		if fn != nil {
			fn(Return{
				ReplyCode:  m.ReplyCode,
				ReplyText:  m.ReplyText,
				Exchange:   m.Exchange,
				RoutingKey: m.RoutingKey,
				Properties: props,
				Body:       body,
			})
		}
	}
}
