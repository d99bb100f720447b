package mux

import "github.com/wirebroker/amqp/internal/frames"

type channelState int

const (
	channelOpening channelState = iota
	channelOpen
	channelClosing
	channelClosed
)

// channelResource is one channel's entry in the Reader-owned resource
// table (spec.md §4.3): its dispatcher and its registry of in-flight
// synchronous-reply responders, keyed by the method header expected back.
type channelResource struct {
	id         uint16
	state      channelState
	dispatcher *dispatcher
	responders map[frames.MethodHeader]Responder
	onClosed   func(*frames.ChannelClose)
	onFlow     func(active bool)
}

func newChannelResource(id uint16) *channelResource {
	return &channelResource{
		id:         id,
		state:      channelOpening,
		dispatcher: newDispatcher(id),
		responders: make(map[frames.MethodHeader]Responder),
	}
}

// channelManager is exclusively owned and mutated by the Reader task; every
// other task reaches it only through management commands on the reader's
// command channel, so it needs no locking of its own (spec.md §4.3).
type channelManager struct {
	repo      *channelIDRepo
	resources map[uint16]*channelResource
	rec       Recorder
}

func newChannelManager(channelMax uint16) *channelManager {
	mgr := &channelManager{
		repo:      newChannelIDRepo(channelMax),
		resources: make(map[uint16]*channelResource),
	}
	// channel 0 carries connection-level handshake/control traffic and uses
	// the same responder-correlation mechanism as a user channel, so it gets
	// a resource entry even though it is never returned by open/allocate.
	conn0 := newChannelResource(0)
	conn0.state = channelOpen
	mgr.resources[0] = conn0
	go conn0.dispatcher.run()
	return mgr
}

func (m *channelManager) open(desired uint16, hasDesired bool) (*channelResource, error) {
	var id uint16
	if hasDesired {
		if !m.repo.reserve(desired) {
			return nil, NewError(KindChannelUse, "channel id already in use or out of range", nil)
		}
		id = desired
	} else {
		var ok bool
		id, ok = m.repo.allocate()
		if !ok {
			return nil, NewError(KindChannelUse, "channel-max exhausted", nil)
		}
	}

	res := newChannelResource(id)
	m.resources[id] = res
	go res.dispatcher.run()
	if m.rec != nil {
		m.rec.ChannelOpened()
	}
	return res, nil
}

func (m *channelManager) get(id uint16) (*channelResource, bool) {
	r, ok := m.resources[id]
	return r, ok
}

// setMax narrows the channel-id ceiling to a server-negotiated value.
func (m *channelManager) setMax(max uint16) {
	m.repo.setMax(max)
}

func (m *channelManager) close(id uint16) {
	res, ok := m.resources[id]
	if !ok {
		return
	}
	res.dispatcher.stop()
	for _, r := range res.responders {
		close(r)
	}
	delete(m.resources, id)
	m.repo.release(id)
	if m.rec != nil && id != 0 {
		m.rec.ChannelClosed()
	}
}

// closeAll tears down every remaining channel, used when the connection
// itself is going away.
func (m *channelManager) closeAll() {
	for id := range m.resources {
		m.close(id)
	}
}

func (r *channelResource) registerResponder(h frames.MethodHeader, resp Responder) error {
	if _, exists := r.responders[h]; exists {
		return NewError(KindChannelUse, "responder already registered for "+h.String(), nil)
	}
	r.responders[h] = resp
	return nil
}

// fire delivers frame to the responder registered for its header, if any,
// removing the registration. Reports whether a responder consumed it.
func (r *channelResource) fire(h frames.MethodHeader, frame frames.Frame) bool {
	resp, ok := r.responders[h]
	if !ok {
		return false
	}
	delete(r.responders, h)
	resp <- frame
	return true
}
