// Package stack assemble les adaptateurs et services à partir de la config.
package stack

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/adapters/suwayomi"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/config"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
)

type Stack struct {
	DB           *sqlite.DB
	Bus          *memorybus.Bus
	Dispatcher   *app.Dispatcher
	Server       *suwayomi.Client
	AniList      *app.AniListTracker
	MyAnimeList  *app.MyAnimeListTracker
	Adapter      *reader.DirectionAdapter
	Synchronizer *reader.Synchronizer

	Reading       *app.ReadingService
	Settings      *app.SettingsService
	Tracking      *app.TrackingService
	Notifications *app.NotificationCenter
	Recorder      *app.ProgressRecorder

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Build ouvre la base et câble les services. Les trackers sans token restent
// désactivés.
func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Stack, error) {
	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Stack{DB: db, Bus: memorybus.New(), cancel: cancel}

	s.Server = suwayomi.New(cfg.Suwayomi.URL)
	if cfg.Suwayomi.Username != "" {
		s.Server.WithBasicAuth(cfg.Suwayomi.Username, cfg.Suwayomi.Password)
	}

	var clients []ports.TrackerClient
	lim := app.NewRequestLimiter(cfg.Sync.TrackerRequests)
	if cfg.AniList.Token != "" {
		s.AniList = app.NewAniListTracker(cfg.AniList.Token).WithEndpoint(cfg.AniList.Endpoint)
		clients = append(clients, app.LimitTracker(s.AniList, lim))
	}
	if cfg.MyAnimeList.Token != "" {
		s.MyAnimeList = app.NewMyAnimeListTracker(cfg.MyAnimeList.Token).WithEndpoint(cfg.MyAnimeList.Endpoint)
		clients = append(clients, app.LimitTracker(s.MyAnimeList, lim))
	}

	trackers := sqlite.NewTrackersRepository(db.SQL)
	s.Dispatcher = app.NewDispatcher(runCtx, logger.With().Str("component", "sync").Logger(), cfg.Sync.Workers)
	s.Adapter = reader.NewDirectionAdapter(logger, sqlite.NewReaderSettingsRepository(db.SQL))
	s.Synchronizer = reader.NewSynchronizer(logger.With().Str("component", "synchronizer").Logger(), s.Server, trackers, clients, s.Dispatcher, s.Bus)

	s.Reading = app.NewReadingService(logger.With().Str("component", "reading").Logger(), s.Server, s.Adapter, s.Synchronizer, s.Bus)
	s.Settings = app.NewSettingsService(s.Adapter)
	s.Tracking = app.NewTrackingService(trackers, s.Server, s.Synchronizer)
	s.Notifications = app.NewNotificationCenter(logger.With().Str("component", "notifications").Logger(), s.Bus)
	s.Recorder = app.NewProgressRecorder(logger.With().Str("component", "progress-recorder").Logger(), s.Bus, trackers)

	s.wg.Add(2)
	go func() { defer s.wg.Done(); s.Notifications.Run(runCtx) }()
	go func() { defer s.wg.Done(); s.Recorder.Run(runCtx) }()

	logger.Info().
		Str("suwayomi", cfg.Suwayomi.URL).
		Bool("anilist", s.AniList != nil).
		Bool("myanimelist", s.MyAnimeList != nil).
		Int("sync_workers", s.Dispatcher.Count()).
		Msg("stack ready")
	return s, nil
}

// Close ferme les sessions, attend les synchronisations en cours et laisse
// les abonnés vider le bus avant de libérer la base.
func (s *Stack) Close() error {
	s.Reading.CloseAll()
	s.Dispatcher.Close()
	s.Bus.Close()
	s.wg.Wait()
	s.cancel()
	return s.DB.Close()
}
