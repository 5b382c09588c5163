package app

import (
	"context"
	"sync"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
)

// RequestLimiter plafonne les requêtes simultanées vers un service distant,
// tous workers de synchronisation confondus. Acquire respecte le contexte.
type RequestLimiter struct {
	mu       sync.Mutex
	limit    int
	inFlight int
	free     chan struct{}
}

func NewRequestLimiter(limit int) *RequestLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RequestLimiter{limit: limit, free: make(chan struct{})}
}

func (l *RequestLimiter) Limit() int { return l.limit }

func (l *RequestLimiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

func (l *RequestLimiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		if l.inFlight < l.limit {
			l.inFlight++
			l.mu.Unlock()
			return nil
		}
		wait := l.free
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		}
	}
}

func (l *RequestLimiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight > 0 {
		l.inFlight--
	}
	// Réveille tous les waiters.
	close(l.free)
	l.free = make(chan struct{})
}

type limitedTracker struct {
	client ports.TrackerClient
	lim    *RequestLimiter
}

// LimitTracker fait passer chaque appel du client par le limiteur.
func LimitTracker(client ports.TrackerClient, lim *RequestLimiter) ports.TrackerClient {
	if lim == nil {
		return client
	}
	return limitedTracker{client: client, lim: lim}
}

func (t limitedTracker) Kind() domain.TrackerKind { return t.client.Kind() }

func (t limitedTracker) Progress(ctx context.Context, remoteID int) (int, error) {
	if err := t.lim.Acquire(ctx); err != nil {
		return 0, err
	}
	defer t.lim.Release()
	return t.client.Progress(ctx, remoteID)
}

func (t limitedTracker) SetProgress(ctx context.Context, remoteID, value int) error {
	if err := t.lim.Acquire(ctx); err != nil {
		return err
	}
	defer t.lim.Release()
	return t.client.SetProgress(ctx, remoteID, value)
}
