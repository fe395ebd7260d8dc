// Package events fans out live game updates to SSE and WebSocket clients.
package events

import (
	"encoding/json"
	"sync"
)

const (
	TypeGameState        = "game_state"
	TypeSessionStarted   = "session_started"
	TypeSessionCompleted = "session_completed"
)

// Event is the payload published to subscribers.
type Event struct {
	Type       string `json:"type"`
	Started    *bool  `json:"started,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	TotalTime  *int64 `json:"totalTime,omitempty"`
}

func GameState(started bool) Event {
	return Event{Type: TypeGameState, Started: &started}
}

func SessionStarted(name string) Event {
	return Event{Type: TypeSessionStarted, PlayerName: name}
}

func SessionCompleted(name string, totalTime int64) Event {
	return Event{Type: TypeSessionCompleted, PlayerName: name, TotalTime: &totalTime}
}

// Broker is an in-process pub/sub. Every subscriber sees every event.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish sends an event to all subscribers.
func (b *Broker) Publish(event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// Subscribers reports the number of open subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
