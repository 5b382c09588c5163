package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingTracker struct {
	release chan struct{}
	current atomic.Int32
	peak    atomic.Int32
}

func (b *blockingTracker) Kind() domain.TrackerKind { return domain.TrackerAniList }

func (b *blockingTracker) Progress(context.Context, int) (int, error) { return 0, nil }

func (b *blockingTracker) SetProgress(context.Context, int, int) error {
	n := b.current.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	<-b.release
	b.current.Add(-1)
	return nil
}

func TestLimitTracker_CapsConcurrentCalls(t *testing.T) {
	inner := &blockingTracker{release: make(chan struct{})}
	lim := NewRequestLimiter(2)
	client := LimitTracker(inner, lim)
	assert.Equal(t, domain.TrackerAniList, client.Kind())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			assert.NoError(t, client.SetProgress(context.Background(), id, 1))
		}(i)
	}

	require.Eventually(t, func() bool { return lim.InFlight() == 2 }, time.Second, 5*time.Millisecond)
	for i := 0; i < 5; i++ {
		inner.release <- struct{}{}
	}
	wg.Wait()

	assert.Equal(t, int32(2), inner.peak.Load())
	assert.Equal(t, 0, lim.InFlight())
}

func TestRequestLimiter_AcquireHonorsContext(t *testing.T) {
	lim := NewRequestLimiter(0)
	require.Equal(t, 1, lim.Limit())
	require.NoError(t, lim.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, lim.Acquire(ctx), context.DeadlineExceeded)

	lim.Release()
	assert.NoError(t, lim.Acquire(context.Background()))
}

func TestLimitTracker_NilLimiterIsPassthrough(t *testing.T) {
	inner := &fakeTrackerClient{kind: domain.TrackerMyAnimeList, progress: map[int]int{}}
	assert.Same(t, inner, LimitTracker(inner, nil))
}
