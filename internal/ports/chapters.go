package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
)

type PageSource interface {
	// ChapterPages renvoie les URLs des pages, dans l'ordre de lecture.
	ChapterPages(ctx context.Context, chapterID int) ([]string, error)
}

type ChapterSource interface {
	// Chapter renvoie ErrNotFound si le manga n'a pas de chapitre à cet index.
	// L'absence est un résultat attendu, pas une panne.
	Chapter(ctx context.Context, mangaID, index int) (domain.Chapter, error)
	Chapters(ctx context.Context, mangaID int) ([]domain.Chapter, error)
}

type ReadMarker interface {
	SetChapterRead(ctx context.Context, chapterID int) error
}

// MangaServer regroupe ce qu'offre un serveur de mangas (ex: Suwayomi).
type MangaServer interface {
	PageSource
	ChapterSource
	ReadMarker
	BaseURL() string
}

// Navigator est le seul moyen de changer de chapitre actif.
type Navigator interface {
	NavigateTo(mangaID, chapterIndex int)
}

type NavigatorFunc func(mangaID, chapterIndex int)

func (f NavigatorFunc) NavigateTo(mangaID, chapterIndex int) { f(mangaID, chapterIndex) }
