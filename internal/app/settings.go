package app

import (
	"context"
	"errors"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
)

// SettingsService valide les réglages de lecture avant de les confier au
// DirectionAdapter, qui panique sur une valeur inconnue.
type SettingsService struct {
	adapter *reader.DirectionAdapter
}

func NewSettingsService(adapter *reader.DirectionAdapter) *SettingsService {
	return &SettingsService{adapter: adapter}
}

type MangaSettingsDTO struct {
	MangaID   int                   `json:"mangaId"`
	Settings  domain.ReaderSettings `json:"settings"`
	Overrides bool                  `json:"overrides"`
}

func (s *SettingsService) Default(ctx context.Context) (domain.ReaderSettings, error) {
	return s.adapter.Default(ctx)
}

func (s *SettingsService) SaveDefault(ctx context.Context, fromMangaID int, settings domain.ReaderSettings) (domain.ReaderSettings, error) {
	settings, err := validSettings(settings)
	if err != nil {
		return domain.ReaderSettings{}, err
	}
	return s.adapter.SaveDefault(ctx, fromMangaID, settings)
}

// ForManga renvoie les réglages effectifs du manga et indique s'ils viennent
// d'une surcharge.
func (s *SettingsService) ForManga(ctx context.Context, mangaID int) (MangaSettingsDTO, error) {
	o, err := s.adapter.Override(ctx, mangaID)
	if err == nil {
		return MangaSettingsDTO{MangaID: mangaID, Settings: o, Overrides: true}, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return MangaSettingsDTO{}, err
	}
	def, err := s.adapter.Default(ctx)
	if err != nil {
		return MangaSettingsDTO{}, err
	}
	return MangaSettingsDTO{MangaID: mangaID, Settings: def}, nil
}

func (s *SettingsService) SaveForManga(ctx context.Context, mangaID int, settings domain.ReaderSettings) (MangaSettingsDTO, error) {
	if mangaID <= 0 {
		return MangaSettingsDTO{}, invalidInput("mangaId must be positive", nil)
	}
	settings, err := validSettings(settings)
	if err != nil {
		return MangaSettingsDTO{}, err
	}
	saved, err := s.adapter.SaveForManga(ctx, mangaID, settings)
	if err != nil {
		return MangaSettingsDTO{}, err
	}
	return MangaSettingsDTO{MangaID: mangaID, Settings: saved, Overrides: true}, nil
}

func (s *SettingsService) ClearForManga(ctx context.Context, mangaID int) (MangaSettingsDTO, error) {
	def, err := s.adapter.ClearForManga(ctx, mangaID)
	if err != nil {
		return MangaSettingsDTO{}, err
	}
	return MangaSettingsDTO{MangaID: mangaID, Settings: def}, nil
}

func validSettings(settings domain.ReaderSettings) (domain.ReaderSettings, error) {
	settings = settings.Normalize()
	if err := settings.Validate(); err != nil {
		return domain.ReaderSettings{}, invalidInput("invalid reader settings", err)
	}
	return settings, nil
}
