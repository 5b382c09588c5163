package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
	"github.com/rs/zerolog"
)

func TestTrackingService_PutKeepsSyncedProgress(t *testing.T) {
	repo := newMemTrackers()
	ctx := context.Background()
	_, _ = repo.Put(ctx, domain.Tracker{MangaID: 1, AniListID: 5, AniListProgress: 12})
	svc := NewTrackingService(repo, newFakeServer(1, 1, 1), nil)

	got, err := svc.Put(ctx, domain.Tracker{MangaID: 1, AniListID: 6, MALID: 8})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if got.AniListID != 6 || got.MALID != 8 || got.AniListProgress != 12 {
		t.Fatalf("unexpected tracker %+v", got)
	}

	var coded *CodedError
	if _, err := svc.Put(ctx, domain.Tracker{MangaID: 1, AniListID: -1}); !errors.As(err, &coded) || coded.Code != "invalid_input" {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	if _, err := svc.Put(ctx, domain.Tracker{}); !errors.As(err, &coded) {
		t.Fatalf("expected invalid_input for manga 0, got %v", err)
	}
}

func TestTrackingService_SyncPushesHighestReadChapter(t *testing.T) {
	ctx := context.Background()
	repo := newMemTrackers()
	_, _ = repo.Put(ctx, domain.Tracker{MangaID: 1, AniListID: 5})
	server := newFakeServer(1, 4, 3)
	server.chapters[0].Read = true
	server.chapters[1].Read = true
	server.chapters[1].Number = 2.5
	client := &fakeTrackerClient{kind: domain.TrackerAniList, progress: map[int]int{5: 1}}
	sync := reader.NewSynchronizer(zerolog.Nop(), server, repo, []ports.TrackerClient{client}, inlineDispatcher{}, nil)
	svc := NewTrackingService(repo, server, sync)

	res, err := svc.Sync(ctx, 1)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !res.Accepted || res.Ordinal != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if client.progress[5] != 2 {
		t.Fatalf("remote progress: want 2, got %d", client.progress[5])
	}

	// Jamais de retour en arrière.
	client.progress[5] = 10
	if _, err := svc.Sync(ctx, 1); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if client.progress[5] != 10 {
		t.Fatalf("remote progress regressed to %d", client.progress[5])
	}

	res, err = svc.Sync(ctx, 2)
	if err != nil {
		t.Fatalf("sync untracked: %v", err)
	}
	if res.Accepted || len(res.Remotes) != 0 {
		t.Fatalf("untracked manga must be a no-op, got %+v", res)
	}
}
