package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
)

type TrackersRepository struct {
	db *sql.DB
}

func NewTrackersRepository(db *sql.DB) *TrackersRepository {
	return &TrackersRepository{db: db}
}

func (r *TrackersRepository) Get(ctx context.Context, mangaID int) (domain.Tracker, error) {
	t := domain.Tracker{MangaID: mangaID}
	var private int
	err := r.db.QueryRowContext(ctx, `
		SELECT anilist_id, mal_id, private, anilist_progress, mal_progress
		FROM trackers WHERE manga_id = ?
	`, mangaID).Scan(&t.AniListID, &t.MALID, &private, &t.AniListProgress, &t.MALProgress)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Pas d'association: aucun tracker actif.
			return t, nil
		}
		return domain.Tracker{}, err
	}
	t.Private = private != 0
	return t, nil
}

func (r *TrackersRepository) Put(ctx context.Context, t domain.Tracker) (domain.Tracker, error) {
	private := 0
	if t.Private {
		private = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trackers(manga_id, anilist_id, mal_id, private, anilist_progress, mal_progress, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(manga_id) DO UPDATE SET
			anilist_id = excluded.anilist_id,
			mal_id = excluded.mal_id,
			private = excluded.private,
			anilist_progress = excluded.anilist_progress,
			mal_progress = excluded.mal_progress,
			updated_at = excluded.updated_at
	`, t.MangaID, t.AniListID, t.MALID, private, t.AniListProgress, t.MALProgress, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return domain.Tracker{}, err
	}
	return r.Get(ctx, t.MangaID)
}

// RecordProgress ne fait jamais reculer la progression mémorisée.
func (r *TrackersRepository) RecordProgress(ctx context.Context, mangaID int, kind domain.TrackerKind, progress int) (domain.Tracker, error) {
	var column string
	switch kind {
	case domain.TrackerAniList:
		column = "anilist_progress"
	case domain.TrackerMyAnimeList:
		column = "mal_progress"
	default:
		return domain.Tracker{}, fmt.Errorf("unknown tracker %q", kind)
	}
	if progress <= 0 {
		return r.Get(ctx, mangaID)
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE trackers
		SET `+column+` = CASE
			WHEN ? > `+column+` THEN ?
			ELSE `+column+`
		END,
		updated_at = ?
		WHERE manga_id = ?
	`, progress, progress, time.Now().UTC().Format(time.RFC3339), mangaID)
	if err != nil {
		return domain.Tracker{}, err
	}
	return r.Get(ctx, mangaID)
}
