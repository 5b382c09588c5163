package reader

import (
	"context"
	"fmt"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/rs/zerolog"
)

// Reader est la capacité commune aux deux variantes (paginée, bande continue).
//
// Les implémentations ne sont pas thread-safe: elles sont pilotées depuis une
// seule goroutine à la fois (boucle d'événements de l'hôte).
type Reader interface {
	// LoadChapter récupère les pages du chapitre courant. Un second appel
	// après un chargement réussi ne fait rien.
	LoadChapter(ctx context.Context) error
	PageIndex() int
	PageCount() int
	Pages() []domain.PageRef
	// MoveToPage ne fait rien si index est hors de [0, PageCount()).
	MoveToPage(index int)
	MoveToPreviousPage()
	MoveToNextPage()
	Direction() domain.ReaderDirection
	SetDirection(d domain.ReaderDirection)
	Mode() domain.ReaderMode
	OnPageIndexChange(fn func(PageIndexChange)) Registration
	OnEndOfChapter(fn func(EndOfChapter)) Registration
}

type Config struct {
	Chapter   domain.Chapter
	Pages     ports.PageSource
	BaseURL   string
	Direction domain.ReaderDirection
	// Viewport n'est utilisé que par le lecteur en bande continue.
	Viewport Viewport
	Logger   zerolog.Logger
}

// NewReader sélectionne la variante correspondant au mode.
func NewReader(mode domain.ReaderMode, cfg Config) Reader {
	switch mode {
	case domain.ModePaged:
		return NewPagedReader(cfg)
	case domain.ModeStrip:
		return NewStripReader(cfg)
	default:
		panic(fmt.Sprintf("reader: unknown reader mode %q", mode))
	}
}

func mustDirection(d domain.ReaderDirection) domain.ReaderDirection {
	if !d.Valid() {
		panic(fmt.Sprintf("reader: unknown reader direction %q", d))
	}
	return d
}

// pageSet porte la collection de pages d'un chapitre.
type pageSet struct {
	chapter domain.Chapter
	source  ports.PageSource
	baseURL string
	pages   []domain.PageRef
	loaded  bool
}

func (p *pageSet) load(ctx context.Context) (bool, error) {
	if p.loaded {
		return false, nil
	}
	if p.source == nil {
		return false, fmt.Errorf("chapter %d: no page source", p.chapter.ID)
	}
	urls, err := p.source.ChapterPages(ctx, p.chapter.ID)
	if err != nil {
		return false, fmt.Errorf("chapter %d pages: %w", p.chapter.ID, err)
	}
	p.pages = domain.NewPageRefs(p.baseURL, urls)
	p.loaded = true
	return true, nil
}

func (p *pageSet) count() int { return len(p.pages) }

func (p *pageSet) Pages() []domain.PageRef {
	return append([]domain.PageRef(nil), p.pages...)
}

func (p *pageSet) PageCount() int { return p.count() }

func (p *pageSet) inRange(index int) bool {
	return index >= 0 && index < p.count()
}
