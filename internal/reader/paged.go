package reader

import (
	"context"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/rs/zerolog"
)

const (
	MinZoom  = 1.0
	MaxZoom  = 3.0
	ZoomStep = 0.5
)

// PagedReader présente une page par slide.
type PagedReader struct {
	pageSet

	logger    zerolog.Logger
	direction domain.ReaderDirection
	carousel  *carousel
	zoom      float64

	// origine attribuée au prochain changement de slide
	origin Origin

	pageChanged signal[PageIndexChange]
	ended       signal[EndOfChapter]
}

func NewPagedReader(cfg Config) *PagedReader {
	dir := cfg.Direction
	if dir == "" {
		dir = domain.DefaultReaderSettings().Direction
	}
	r := &PagedReader{
		pageSet:   pageSet{chapter: cfg.Chapter, source: cfg.Pages, baseURL: cfg.BaseURL},
		logger:    cfg.Logger.With().Str("reader", "paged").Int("chapter_id", cfg.Chapter.ID).Logger(),
		direction: mustDirection(dir),
		zoom:      MinZoom,
		origin:    OriginUser,
	}
	r.carousel = newCarousel(0, r.direction == domain.DirectionRTL)
	return r
}

func (r *PagedReader) LoadChapter(ctx context.Context) error {
	loaded, err := r.load(ctx)
	if err != nil || !loaded {
		return err
	}
	r.carousel = newCarousel(r.count(), r.direction == domain.DirectionRTL)
	r.carousel.onActiveChange = func(index int) {
		r.pageChanged.emit(PageIndexChange{Origin: r.origin, Index: index})
	}
	r.carousel.onReachEnd = func() {
		r.ended.emit(EndOfChapter{ChapterID: r.chapter.ID, Index: r.carousel.active})
	}
	r.logger.Debug().Int("pages", r.count()).Msg("chapter loaded")

	// Une seule page: elle est déjà la dernière.
	if r.carousel.isEnd() {
		r.ended.emit(EndOfChapter{ChapterID: r.chapter.ID, Index: 0})
	}
	return nil
}

func (r *PagedReader) PageIndex() int { return r.carousel.active }

func (r *PagedReader) MoveToPage(index int) {
	if !r.inRange(index) {
		r.logger.Debug().Int("index", index).Msg("page out of range")
		return
	}
	r.carousel.slideTo(index)
}

func (r *PagedReader) MoveToPreviousPage() { r.MoveToPage(r.PageIndex() - 1) }

func (r *PagedReader) MoveToNextPage() { r.MoveToPage(r.PageIndex() + 1) }

// restore replace le lecteur sans que le changement soit attribué à l'utilisateur.
func (r *PagedReader) restore(index int) {
	r.origin = OriginSystem
	defer func() { r.origin = OriginUser }()
	r.MoveToPage(index)
}

func (r *PagedReader) Direction() domain.ReaderDirection { return r.direction }

// SetDirection réoriente le carousel immédiatement.
func (r *PagedReader) SetDirection(d domain.ReaderDirection) {
	r.direction = mustDirection(d)
	r.carousel.rtl = d == domain.DirectionRTL
}

func (r *PagedReader) Mode() domain.ReaderMode { return domain.ModePaged }

func (r *PagedReader) Zoom() float64 { return r.zoom }

// Wheel applique une entrée molette: deltaY < 0 zoome, deltaY > 0 dézoome.
func (r *PagedReader) Wheel(deltaY float64) float64 {
	switch {
	case deltaY < 0:
		r.zoom += ZoomStep
	case deltaY > 0:
		r.zoom -= ZoomStep
	}
	if r.zoom < MinZoom {
		r.zoom = MinZoom
	}
	if r.zoom > MaxZoom {
		r.zoom = MaxZoom
	}
	return r.zoom
}

func (r *PagedReader) OnPageIndexChange(fn func(PageIndexChange)) Registration {
	return r.pageChanged.add(fn)
}

func (r *PagedReader) OnEndOfChapter(fn func(EndOfChapter)) Registration {
	return r.ended.add(fn)
}
