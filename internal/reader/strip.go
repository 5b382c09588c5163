package reader

import (
	"context"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/rs/zerolog"
)

// VisibilityThreshold est la part minimale de la page visible pour qu'elle
// devienne la page courante (pas de marge autour du viewport).
const VisibilityThreshold = 0.70

// Viewport est la surface de défilement de l'hôte. ScrollIntoView fait défiler
// en douceur jusqu'au haut de la page; l'hôte signale ensuite la visibilité
// via StripReader.Observe.
type Viewport interface {
	ScrollIntoView(pageIndex int)
}

type ViewportFunc func(pageIndex int)

func (f ViewportFunc) ScrollIntoView(pageIndex int) { f(pageIndex) }

// Visibility est le rapport d'intersection d'une page avec le viewport.
type Visibility struct {
	Index  int
	Ratio  float64
	Origin Origin
}

// StripReader présente les pages en bande verticale continue. La page
// courante est déduite de la visibilité des pages.
type StripReader struct {
	pageSet

	logger    zerolog.Logger
	direction domain.ReaderDirection
	viewport  Viewport
	current   int

	pageChanged signal[PageIndexChange]
	ended       signal[EndOfChapter]
}

func NewStripReader(cfg Config) *StripReader {
	dir := cfg.Direction
	if dir == "" {
		dir = domain.DefaultReaderSettings().Direction
	}
	return &StripReader{
		pageSet:   pageSet{chapter: cfg.Chapter, source: cfg.Pages, baseURL: cfg.BaseURL},
		logger:    cfg.Logger.With().Str("reader", "strip").Int("chapter_id", cfg.Chapter.ID).Logger(),
		direction: mustDirection(dir),
		viewport:  cfg.Viewport,
		current:   -1,
	}
}

func (r *StripReader) LoadChapter(ctx context.Context) error {
	loaded, err := r.load(ctx)
	if err == nil && loaded {
		r.logger.Debug().Int("pages", r.count()).Msg("chapter loaded")
	}
	return err
}

// PageIndex vaut -1 tant qu'aucune page n'a franchi le seuil de visibilité.
func (r *StripReader) PageIndex() int { return r.current }

func (r *StripReader) MoveToPage(index int) {
	if !r.inRange(index) {
		r.logger.Debug().Int("index", index).Msg("page out of range")
		return
	}
	if r.viewport != nil {
		r.viewport.ScrollIntoView(index)
	}
}

func (r *StripReader) MoveToPreviousPage() { r.MoveToPage(r.current - 1) }

func (r *StripReader) MoveToNextPage() { r.MoveToPage(r.current + 1) }

func (r *StripReader) restore(index int) { r.MoveToPage(index) }

// Observe reçoit les rapports d'intersection des pages.
func (r *StripReader) Observe(v Visibility) {
	if v.Ratio < VisibilityThreshold || !r.inRange(v.Index) || v.Index == r.current {
		return
	}
	r.current = v.Index
	r.pageChanged.emit(PageIndexChange{Origin: v.Origin, Index: v.Index})
	if r.current == r.count()-1 {
		r.ended.emit(EndOfChapter{ChapterID: r.chapter.ID, Index: r.current})
	}
}

func (r *StripReader) Direction() domain.ReaderDirection { return r.direction }

// SetDirection ne change pas l'axe de défilement, toujours vertical.
func (r *StripReader) SetDirection(d domain.ReaderDirection) {
	r.direction = mustDirection(d)
}

func (r *StripReader) Mode() domain.ReaderMode { return domain.ModeStrip }

func (r *StripReader) OnPageIndexChange(fn func(PageIndexChange)) Registration {
	return r.pageChanged.add(fn)
}

func (r *StripReader) OnEndOfChapter(fn func(EndOfChapter)) Registration {
	return r.ended.add(fn)
}
