package events

import (
	"sync"
	"time"
)

const KindCart = "cart"

type Event struct {
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

// Broker fans events out to subscribers of a topic. Publishing never blocks;
// a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	buffer int
}

func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker{subs: make(map[string]map[chan Event]struct{}), buffer: buffer}
}

// Subscribe returns a channel of events for topic and a func that ends the
// subscription and closes the channel.
func (b *Broker) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan Event]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], ch)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers ev to every current subscriber of topic and reports how
// many received it.
func (b *Broker) Publish(topic string, ev Event) int {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for ch := range b.subs[topic] {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// CartChanged tells the session's open pages to refresh their cart view.
func (b *Broker) CartChanged(sessionID string) {
	if sessionID == "" {
		return
	}
	b.Publish(sessionID, Event{Kind: KindCart})
}

// Subscribers counts live subscriptions on topic.
func (b *Broker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
