package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
)

type TrackerRepository interface {
	// Get renvoie un Tracker vide (aucun id) si le manga n'a pas d'association.
	Get(ctx context.Context, mangaID int) (domain.Tracker, error)
	Put(ctx context.Context, tracker domain.Tracker) (domain.Tracker, error)
	// RecordProgress mémorise la progression synchronisée, sans jamais la
	// faire reculer.
	RecordProgress(ctx context.Context, mangaID int, kind domain.TrackerKind, progress int) (domain.Tracker, error)
}

// TrackerClient parle à un service de suivi distant (AniList, MyAnimeList).
type TrackerClient interface {
	Kind() domain.TrackerKind
	Progress(ctx context.Context, remoteID int) (int, error)
	SetProgress(ctx context.Context, remoteID int, value int) error
}
