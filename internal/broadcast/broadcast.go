package broadcast

import (
	"encoding/json"
	"log"
	"sync"

	"aimtrainer/internal/events"
)

const clientBuffer = 10

// Message is one server-sent event for spectators.
type Message struct {
	Event string
	Data  string
}

type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[chan Message]bool
	closed  bool
}

// NewBroadcaster forwards the bus's phase changes to every subscriber until
// the bus is closed, then closes every subscriber.
func NewBroadcaster(bus *events.Bus) *Broadcaster {
	b := &Broadcaster{
		Clients: make(map[chan Message]bool),
	}
	go func() {
		for ev := range bus.PhaseChanges {
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("[Broadcast] Marshal error: %v\n", err)
				continue
			}
			b.Broadcast("phaseChange", string(data))
		}
		b.Close()
	}()
	return b
}

// Subscribe returns a channel of events. It is closed when the broadcaster
// shuts down; subscribing after that yields an already closed channel.
func (b *Broadcaster) Subscribe() chan Message {
	ch := make(chan Message, clientBuffer)
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.Clients[ch] = true
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan Message) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if b.Clients[ch] {
		delete(b.Clients, ch)
		close(ch)
	}
}

// Close disconnects every subscriber.
func (b *Broadcaster) Close() {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	b.closed = true
	for ch := range b.Clients {
		close(ch)
		delete(b.Clients, ch)
	}
}

func (b *Broadcaster) Broadcast(event string, data string) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		select {
		case ch <- Message{Event: event, Data: data}:
		default:
			// skip clients with full data channels
		}
	}
}

// BroadcastJSON encodes v and sends it as one event.
func (b *Broadcaster) BroadcastJSON(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.Broadcast(event, string(data))
	return nil
}
