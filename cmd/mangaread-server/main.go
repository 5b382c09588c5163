package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/adapters/httpapi"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/buildinfo"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/config"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/stack"
)

func main() {
	configPath := flag.String("config", "", "Fichier de configuration (défaut: mangaread.yaml)")
	addr := flag.String("addr", "", "Adresse d'écoute (ex: 127.0.0.1:8080)")
	dbPath := flag.String("db", "", "Chemin SQLite (ex: mangaread.db)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "mangaread-server").Logger()
	log.Logger = logger

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	// Les flags priment sur fichier et environnement.
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if lvl, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		logger = logger.Level(lvl)
	}

	logger.Info().Interface("build", buildinfo.Current()).Str("db", cfg.DBPath).Msg("starting")

	ctx := context.Background()
	st, err := stack.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build stack")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Msg("close stack")
		}
	}()

	if about, err := st.Server.About(ctx); err != nil {
		logger.Warn().Err(err).Str("url", cfg.Suwayomi.URL).Msg("suwayomi unreachable")
	} else {
		logger.Info().Str("server", about).Msg("suwayomi reachable")
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpapi.NewServer(logger, httpapi.Services{
		Reading:       st.Reading,
		Settings:      st.Settings,
		Tracking:      st.Tracking,
		Notifications: st.Notifications,
		AniList:       st.AniList,
	}, st.Bus)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		// Annulé au signal: les flux SSE se terminent avant Shutdown.
		BaseContext: func(net.Listener) context.Context { return shutdownCtx },
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
}
