package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
	"github.com/rs/zerolog"
)

func TestSettingsService_RejectsUnknownValues(t *testing.T) {
	svc := NewSettingsService(reader.NewDirectionAdapter(zerolog.Nop(), newMemReaderSettings()))
	ctx := context.Background()

	_, err := svc.SaveDefault(ctx, 0, domain.ReaderSettings{Direction: "vertical"})
	var coded *CodedError
	if !errors.As(err, &coded) || coded.Code != "invalid_input" {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	_, err = svc.SaveForManga(ctx, 1, domain.ReaderSettings{Direction: domain.DirectionLTR, Mode: "webtoon"})
	if !errors.As(err, &coded) || coded.Code != "invalid_input" {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	_, err = svc.SaveForManga(ctx, 0, domain.ReaderSettings{Direction: domain.DirectionLTR})
	if !errors.As(err, &coded) {
		t.Fatalf("expected coded error for manga 0, got %v", err)
	}
}

func TestSettingsService_OverrideScopes(t *testing.T) {
	svc := NewSettingsService(reader.NewDirectionAdapter(zerolog.Nop(), newMemReaderSettings()))
	ctx := context.Background()

	got, err := svc.ForManga(ctx, 4)
	if err != nil {
		t.Fatalf("for manga: %v", err)
	}
	if got.Overrides || got.Settings != domain.DefaultReaderSettings() {
		t.Fatalf("expected default settings, got %+v", got)
	}

	saved, err := svc.SaveForManga(ctx, 4, domain.ReaderSettings{Direction: "ltr"})
	if err == nil {
		t.Fatalf("lowercase direction must be rejected, got %+v", saved)
	}
	saved, err = svc.SaveForManga(ctx, 4, domain.ReaderSettings{Direction: domain.DirectionLTR})
	if err != nil {
		t.Fatalf("save for manga: %v", err)
	}
	if !saved.Overrides || saved.Settings.Mode != domain.ModePaged {
		t.Fatalf("unexpected saved settings %+v", saved)
	}

	if _, err := svc.SaveDefault(ctx, 4, domain.ReaderSettings{Direction: domain.DirectionRTL, Mode: domain.ModeStrip}); err != nil {
		t.Fatalf("save default: %v", err)
	}
	got, _ = svc.ForManga(ctx, 4)
	if got.Settings.Direction != domain.DirectionLTR {
		t.Fatalf("override must win, got %+v", got)
	}

	cleared, err := svc.ClearForManga(ctx, 4)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.Overrides || cleared.Settings.Mode != domain.ModeStrip {
		t.Fatalf("expected new default after clear, got %+v", cleared)
	}
}
