package app

import (
	"context"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
)

// TrackingService gère les associations manga <-> trackers et la
// resynchronisation manuelle de la progression.
type TrackingService struct {
	repo     ports.TrackerRepository
	chapters ports.ChapterSource
	sync     *reader.Synchronizer
}

func NewTrackingService(repo ports.TrackerRepository, chapters ports.ChapterSource, sync *reader.Synchronizer) *TrackingService {
	return &TrackingService{repo: repo, chapters: chapters, sync: sync}
}

func (s *TrackingService) Get(ctx context.Context, mangaID int) (domain.Tracker, error) {
	return s.repo.Get(ctx, mangaID)
}

// Put remplace les identifiants distants du manga. La progression déjà
// synchronisée est conservée.
func (s *TrackingService) Put(ctx context.Context, t domain.Tracker) (domain.Tracker, error) {
	if t.MangaID <= 0 {
		return domain.Tracker{}, invalidInput("mangaId must be positive", nil)
	}
	if t.AniListID < 0 || t.MALID < 0 {
		return domain.Tracker{}, invalidInput("tracker ids must not be negative", nil)
	}
	cur, err := s.repo.Get(ctx, t.MangaID)
	if err != nil {
		return domain.Tracker{}, err
	}
	t.AniListProgress = cur.AniListProgress
	t.MALProgress = cur.MALProgress
	return s.repo.Put(ctx, t)
}

type SyncResultDTO struct {
	MangaID  int                `json:"mangaId"`
	Ordinal  int                `json:"ordinal"`
	Remotes  []domain.RemoteRef `json:"remotes"`
	Accepted bool               `json:"accepted"`
}

// Sync pousse vers les trackers le numéro du chapitre lu le plus avancé.
// L'envoi est asynchrone et ne fait jamais reculer la progression distante.
func (s *TrackingService) Sync(ctx context.Context, mangaID int) (SyncResultDTO, error) {
	t, err := s.repo.Get(ctx, mangaID)
	if err != nil {
		return SyncResultDTO{}, err
	}
	res := SyncResultDTO{MangaID: mangaID, Remotes: t.Remotes()}
	if len(res.Remotes) == 0 {
		return res, nil
	}

	chapters, err := s.chapters.Chapters(ctx, mangaID)
	if err != nil {
		return SyncResultDTO{}, &CodedError{Code: "source_unavailable", Message: "list chapters", Err: err}
	}
	for _, ch := range chapters {
		if ch.Read && ch.Ordinal() > res.Ordinal {
			res.Ordinal = ch.Ordinal()
		}
	}
	if res.Ordinal == 0 {
		return res, nil
	}
	s.sync.PushProgress(mangaID, res.Remotes, res.Ordinal)
	res.Accepted = true
	return res, nil
}
