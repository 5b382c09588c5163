package memorybus

import (
	"sync"
	"sync/atomic"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
)

const bufferSize = 64

type subscriber struct {
	ch     chan ports.Event
	topics map[string]struct{}
}

func (s subscriber) wants(topic string) bool {
	if len(s.topics) == 0 {
		return true
	}
	_, ok := s.topics[topic]
	return ok
}

// Bus diffuse les événements applicatifs (notifications, progression, SSE).
// Un abonné trop lent perd des événements plutôt que de bloquer l'émetteur.
type Bus struct {
	mu      sync.Mutex
	subs    map[chan ports.Event]subscriber
	alive   bool
	dropped atomic.Int64
}

func New() *Bus {
	return &Bus{subs: make(map[chan ports.Event]subscriber), alive: true}
}

func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}
	evt := ports.Event{Topic: topic, Payload: payload}
	for ch, sub := range b.subs {
		if !sub.wants(topic) {
			continue
		}
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *Bus) Subscribe() (<-chan ports.Event, func()) {
	return b.SubscribeTopics()
}

// SubscribeTopics ne reçoit que les topics listés (tous si la liste est vide).
func (b *Bus) SubscribeTopics(topics ...string) (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, bufferSize)
	b.mu.Lock()
	if !b.alive {
		close(ch)
		b.mu.Unlock()
		return ch, func() {}
	}
	sub := subscriber{ch: ch}
	if len(topics) > 0 {
		sub.topics = make(map[string]struct{}, len(topics))
		for _, t := range topics {
			sub.topics[t] = struct{}{}
		}
	}
	b.subs[ch] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}

	return ch, cancel
}

// Dropped compte les événements perdus par des abonnés saturés.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

// Close ferme tous les abonnements; les publications suivantes sont ignorées.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}
	b.alive = false
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
