package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
)

// ReaderSettingsRepository stocke les réglages de lecture sur deux portées:
// un défaut global et au plus une surcharge par manga.
type ReaderSettingsRepository interface {
	Default(ctx context.Context) (domain.ReaderSettings, error)
	PutDefault(ctx context.Context, settings domain.ReaderSettings) (domain.ReaderSettings, error)
	// ForManga renvoie ErrNotFound si le manga n'a pas de surcharge.
	ForManga(ctx context.Context, mangaID int) (domain.ReaderSettings, error)
	PutForManga(ctx context.Context, mangaID int, settings domain.ReaderSettings) (domain.ReaderSettings, error)
	DeleteForManga(ctx context.Context, mangaID int) error
}
