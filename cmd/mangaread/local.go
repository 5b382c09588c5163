package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/config"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/stack"
)

// openStack câble les services en local. Les logs partent dans le fichier
// configuré: le terminal appartient à l'interface.
func openStack(ctx context.Context) (*stack.Stack, zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	var out io.WriteCloser = nopCloser{io.Discard}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o755); err != nil {
			return nil, zerolog.Nop(), nil, fmt.Errorf("log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, zerolog.Nop(), nil, fmt.Errorf("log file: %w", err)
		}
		out = f
	}
	logger := zerolog.New(out).With().Timestamp().Str("app", "mangaread").Logger()
	if lvl, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		logger = logger.Level(lvl)
	}

	st, err := stack.Build(ctx, cfg, logger)
	if err != nil {
		_ = out.Close()
		return nil, logger, nil, err
	}
	return st, logger, out, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func positiveArg(s, name string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}
