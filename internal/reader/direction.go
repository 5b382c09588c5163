package reader

import (
	"context"
	"errors"
	"fmt"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/rs/zerolog"
)

type Scope int

const (
	ScopeDefault Scope = iota
	ScopeManga
)

func (s Scope) String() string {
	if s == ScopeManga {
		return "manga"
	}
	return "default"
}

// SettingsChange est diffusé aux abonnés de DirectionAdapter.
// Pour ScopeDefault, MangaID vaut 0 et chaque abonné doit résoudre ses propres
// réglages: une surcharge par manga reste prioritaire.
type SettingsChange struct {
	Scope    Scope
	MangaID  int
	Settings domain.ReaderSettings
}

// AppliesTo indique si le changement peut modifier les réglages effectifs du manga.
func (c SettingsChange) AppliesTo(mangaID int) bool {
	return c.Scope == ScopeDefault || c.MangaID == mangaID
}

// DirectionAdapter résout les réglages effectifs (surcharge par manga sinon
// défaut global) et diffuse leurs changements aux abonnés.
type DirectionAdapter struct {
	logger  zerolog.Logger
	repo    ports.ReaderSettingsRepository
	changes signal[SettingsChange]
}

func NewDirectionAdapter(logger zerolog.Logger, repo ports.ReaderSettingsRepository) *DirectionAdapter {
	return &DirectionAdapter{logger: logger.With().Str("component", "direction").Logger(), repo: repo}
}

// Resolve renvoie la surcharge du manga si elle existe, sinon le défaut global.
func (a *DirectionAdapter) Resolve(ctx context.Context, mangaID int) (domain.ReaderSettings, error) {
	s, err := a.repo.ForManga(ctx, mangaID)
	if err == nil {
		return mustSettings(s), nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return domain.ReaderSettings{}, err
	}
	def, err := a.repo.Default(ctx)
	if err != nil {
		return domain.ReaderSettings{}, err
	}
	return mustSettings(def), nil
}

func (a *DirectionAdapter) Direction(ctx context.Context, mangaID int) (domain.ReaderDirection, error) {
	s, err := a.Resolve(ctx, mangaID)
	if err != nil {
		return "", err
	}
	return s.Direction, nil
}

func (a *DirectionAdapter) Default(ctx context.Context) (domain.ReaderSettings, error) {
	s, err := a.repo.Default(ctx)
	if err != nil {
		return domain.ReaderSettings{}, err
	}
	return mustSettings(s), nil
}

// Override renvoie la surcharge du manga, ou ports.ErrNotFound.
func (a *DirectionAdapter) Override(ctx context.Context, mangaID int) (domain.ReaderSettings, error) {
	s, err := a.repo.ForManga(ctx, mangaID)
	if err != nil {
		return domain.ReaderSettings{}, err
	}
	return mustSettings(s), nil
}

func (a *DirectionAdapter) HasOverride(ctx context.Context, mangaID int) (bool, error) {
	if mangaID <= 0 {
		return false, nil
	}
	_, err := a.repo.ForManga(ctx, mangaID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ports.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// SaveDefault écrit le défaut global. Le changement n'est diffusé que si
// fromMangaID (le manga depuis lequel l'utilisateur enregistre, 0 si aucun)
// n'a pas de surcharge.
func (a *DirectionAdapter) SaveDefault(ctx context.Context, fromMangaID int, s domain.ReaderSettings) (domain.ReaderSettings, error) {
	s = mustSettings(s)
	saved, err := a.repo.PutDefault(ctx, s)
	if err != nil {
		return domain.ReaderSettings{}, err
	}
	has, err := a.HasOverride(ctx, fromMangaID)
	if err != nil {
		return saved, err
	}
	if has {
		a.logger.Debug().Int("manga_id", fromMangaID).Msg("default saved, manga keeps its override")
		return saved, nil
	}
	a.changes.emit(SettingsChange{Scope: ScopeDefault, Settings: saved})
	return saved, nil
}

// SaveForManga écrit la surcharge du manga et diffuse toujours le changement.
func (a *DirectionAdapter) SaveForManga(ctx context.Context, mangaID int, s domain.ReaderSettings) (domain.ReaderSettings, error) {
	if mangaID <= 0 {
		return domain.ReaderSettings{}, fmt.Errorf("manga id %d: %w", mangaID, ports.ErrNotFound)
	}
	s = mustSettings(s)
	saved, err := a.repo.PutForManga(ctx, mangaID, s)
	if err != nil {
		return domain.ReaderSettings{}, err
	}
	a.changes.emit(SettingsChange{Scope: ScopeManga, MangaID: mangaID, Settings: saved})
	return saved, nil
}

// ClearForManga supprime la surcharge; le manga retombe sur le défaut global.
func (a *DirectionAdapter) ClearForManga(ctx context.Context, mangaID int) (domain.ReaderSettings, error) {
	if err := a.repo.DeleteForManga(ctx, mangaID); err != nil {
		return domain.ReaderSettings{}, err
	}
	def, err := a.Default(ctx)
	if err != nil {
		return domain.ReaderSettings{}, err
	}
	a.changes.emit(SettingsChange{Scope: ScopeManga, MangaID: mangaID, Settings: def})
	return def, nil
}

func (a *DirectionAdapter) Subscribe(fn func(SettingsChange)) Registration {
	return a.changes.add(fn)
}

// mustSettings panique sur une direction ou un mode inconnu.
func mustSettings(s domain.ReaderSettings) domain.ReaderSettings {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		panic("reader: " + err.Error())
	}
	return s
}
