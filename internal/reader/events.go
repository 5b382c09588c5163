package reader

import (
	"sync"
	"sync/atomic"
)

// Origin distingue un changement provoqué par l'utilisateur d'un changement
// déclenché par le programme (restauration, mise à jour d'un champ, scroll
// programmatique). Un événement OriginSystem ne doit jamais relancer une
// navigation.
type Origin int

const (
	OriginSystem Origin = iota
	OriginUser
)

func (o Origin) String() string {
	switch o {
	case OriginUser:
		return "user"
	case OriginSystem:
		return "system"
	default:
		return "unknown"
	}
}

// ParseOrigin accepte "user" et "system"; toute autre valeur vaut OriginSystem.
func ParseOrigin(s string) Origin {
	if s == "user" {
		return OriginUser
	}
	return OriginSystem
}

type PageIndexChange struct {
	Origin Origin
	Index  int
}

type EndOfChapter struct {
	ChapterID int
	Index     int
}

// Registration retire un abonnement. Unregister est idempotent.
type Registration struct {
	off func()
}

func (r Registration) Unregister() {
	if r.off != nil {
		r.off()
	}
}

type listener[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// signal est une liste d'abonnés appelés dans l'ordre d'inscription.
// Un abonné retiré pendant une émission n'est plus appelé.
type signal[T any] struct {
	mu        sync.Mutex
	listeners []*listener[T]
}

func (s *signal[T]) add(fn func(T)) Registration {
	l := &listener[T]{fn: fn}
	l.active.Store(true)

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	return Registration{off: func() {
		if !l.active.CompareAndSwap(true, false) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, cur := range s.listeners {
			if cur == l {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				break
			}
		}
	}}
}

func (s *signal[T]) emit(v T) {
	s.mu.Lock()
	snapshot := append([]*listener[T](nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range snapshot {
		if l.active.Load() {
			l.fn(v)
		}
	}
}

func (s *signal[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
