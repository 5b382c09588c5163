package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
)

// defaultScope est la ligne des réglages par défaut.
const defaultScope = 0

type ReaderSettingsRepository struct {
	db *sql.DB
}

func NewReaderSettingsRepository(db *sql.DB) *ReaderSettingsRepository {
	return &ReaderSettingsRepository{db: db}
}

func (r *ReaderSettingsRepository) get(ctx context.Context, mangaID int) (domain.ReaderSettings, error) {
	var b []byte
	err := r.db.QueryRowContext(ctx, `SELECT value_json FROM reader_settings WHERE manga_id = ?`, mangaID).Scan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReaderSettings{}, ports.ErrNotFound
		}
		return domain.ReaderSettings{}, err
	}
	var s domain.ReaderSettings
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.ReaderSettings{}, fmt.Errorf("reader settings %d: %w", mangaID, ports.ErrNotFound)
	}
	return s.Normalize(), nil
}

func (r *ReaderSettingsRepository) put(ctx context.Context, mangaID int, settings domain.ReaderSettings) (domain.ReaderSettings, error) {
	b, err := json.Marshal(settings)
	if err != nil {
		return domain.ReaderSettings{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reader_settings(manga_id, value_json, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(manga_id) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at
	`, mangaID, b, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return domain.ReaderSettings{}, err
	}
	return r.get(ctx, mangaID)
}

// Default renvoie les réglages par défaut; sans ligne (ou ligne corrompue),
// les valeurs d'usine.
func (r *ReaderSettingsRepository) Default(ctx context.Context) (domain.ReaderSettings, error) {
	s, err := r.get(ctx, defaultScope)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.DefaultReaderSettings(), nil
	}
	return s, err
}

func (r *ReaderSettingsRepository) PutDefault(ctx context.Context, settings domain.ReaderSettings) (domain.ReaderSettings, error) {
	return r.put(ctx, defaultScope, settings)
}

func (r *ReaderSettingsRepository) ForManga(ctx context.Context, mangaID int) (domain.ReaderSettings, error) {
	if mangaID <= 0 {
		return domain.ReaderSettings{}, ports.ErrNotFound
	}
	return r.get(ctx, mangaID)
}

func (r *ReaderSettingsRepository) PutForManga(ctx context.Context, mangaID int, settings domain.ReaderSettings) (domain.ReaderSettings, error) {
	if mangaID <= 0 {
		return domain.ReaderSettings{}, fmt.Errorf("manga id %d: %w", mangaID, ports.ErrConflict)
	}
	return r.put(ctx, mangaID, settings)
}

func (r *ReaderSettingsRepository) DeleteForManga(ctx context.Context, mangaID int) error {
	if mangaID <= 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM reader_settings WHERE manga_id = ?`, mangaID)
	return err
}
