package changefeed

import (
	"io"
	"log"
	"sync"
)

// subscriberBuffer bounds how far a subscriber may lag before events are
// dropped for it. The feed itself must never block on a slow consumer.
const subscriberBuffer = 64

type subscriber struct {
	table string
	ch    chan Event
}

// Broker fans change events out to per-table subscribers.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	logger *log.Logger
}

// NewBroker returns an empty Broker.
func NewBroker(logger *log.Logger) *Broker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Broker{subs: make(map[int]*subscriber), logger: logger}
}

// Subscribe registers interest in one table. The returned cancel func stops
// delivery and closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe(table string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscriber{table: table, ch: make(chan Event, subscriberBuffer)}
	b.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if s, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.ch)
			}
		})
	}
	return sub.ch, cancel
}

// Publish delivers e to every subscriber of its table in receipt order.
// A subscriber whose buffer is full loses the event.
func (b *Broker) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.table != e.Table {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			b.logger.Printf("changefeed: dropping %s event for slow subscriber on %s", e.Type, e.Table)
		}
	}
}
