package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
	"github.com/rs/zerolog"
)

func progressEvent(mangaID int, kind domain.TrackerKind, progress int) ports.Event {
	b, _ := json.Marshal(reader.TrackerProgressEvent{MangaID: mangaID, Kind: kind, RemoteID: 9, Progress: progress})
	return ports.Event{Topic: ports.TopicTrackerProgress, Payload: b}
}

func TestProgressRecorder_RecordsMaxProgress(t *testing.T) {
	repo := newMemTrackers()
	u := NewProgressRecorder(zerolog.Nop(), nil, repo)
	ctx := context.Background()

	u.handleEvent(ctx, progressEvent(1, domain.TrackerAniList, 3))
	tr, _ := repo.Get(ctx, 1)
	if tr.AniListProgress != 3 {
		t.Fatalf("expected anilistProgress=3, got %d", tr.AniListProgress)
	}

	// Une progression plus basse ne réduit pas la valeur.
	u.handleEvent(ctx, progressEvent(1, domain.TrackerAniList, 2))
	u.handleEvent(ctx, progressEvent(1, domain.TrackerMyAnimeList, 5))
	tr, _ = repo.Get(ctx, 1)
	if tr.AniListProgress != 3 || tr.MALProgress != 5 {
		t.Fatalf("unexpected tracker %+v", tr)
	}

	u.handleEvent(ctx, ports.Event{Topic: ports.TopicChapterRead, Payload: []byte(`{"mangaId":1}`)})
	u.handleEvent(ctx, ports.Event{Topic: ports.TopicTrackerProgress, Payload: []byte(`not json`)})
	u.handleEvent(ctx, progressEvent(0, domain.TrackerAniList, 9))
	tr, _ = repo.Get(ctx, 1)
	if tr.AniListProgress != 3 {
		t.Fatalf("expected anilistProgress to stay 3, got %d", tr.AniListProgress)
	}
}
