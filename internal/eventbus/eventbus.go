package eventbus

import "sync"

// Event represents an arbitrary event passed on the bus.
type Event any

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus delivers every event to every subscriber in publish order. Publish
// never blocks: each subscriber has an unbounded queue drained by its own
// goroutine. After Close, subscribers receive the queued events and then see
// their channel closed. A subscriber that stops reading must Unsubscribe.
type Bus struct {
	mu     sync.Mutex
	subs   []*subscription
	closed bool
}

// New creates a new Bus.
func New() *Bus { return &Bus{} }

// Publish queues the event for all subscribers.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		s.push(e)
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	s := newSubscription()
	b.subs = append(b.subs, s)
	go s.run()
	return s.out
}

// Unsubscribe discards pending events for sub and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.out == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			s.cancel()
			return
		}
	}
}

// Close stops accepting events. Subscriber channels close once drained.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		s.finish()
	}
}

type subscription struct {
	out  chan Event
	done chan struct{}

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Event
	finished bool
	stopped  bool
}

func newSubscription() *subscription {
	s := &subscription{out: make(chan Event), done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *subscription) push(e Event) {
	s.mu.Lock()
	if !s.finished {
		s.queue = append(s.queue, e)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

// finish lets run drain the queue and close out.
func (s *subscription) finish() {
	s.mu.Lock()
	s.finished = true
	s.cond.Signal()
	s.mu.Unlock()
}

// cancel drops the queue and makes run return immediately.
func (s *subscription) cancel() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		s.finished = true
		s.queue = nil
		close(s.done)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *subscription) run() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.finished {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		e := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- e:
		case <-s.done:
			return
		}
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}
func (Nop) Subscribe() <-chan Event {
	ch := make(chan Event)
	close(ch)
	return ch
}
func (Nop) Unsubscribe(<-chan Event) {}
func (Nop) Close()                   {}
