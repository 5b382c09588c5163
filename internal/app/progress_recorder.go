package app

import (
	"context"
	"encoding/json"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
	"github.com/rs/zerolog"
)

// ProgressRecorder mémorise la dernière progression envoyée à chaque tracker,
// à partir des événements tracker.progress du bus.
type ProgressRecorder struct {
	logger   zerolog.Logger
	bus      ports.EventBus
	trackers ports.TrackerRepository
}

func NewProgressRecorder(logger zerolog.Logger, bus ports.EventBus, trackers ports.TrackerRepository) *ProgressRecorder {
	return &ProgressRecorder{logger: logger, bus: bus, trackers: trackers}
}

func (u *ProgressRecorder) Run(ctx context.Context) {
	if u == nil || u.bus == nil || u.trackers == nil {
		return
	}
	ch, cancel := u.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			u.logger.Info().Msg("progress recorder stopped")
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			u.handleEvent(ctx, evt)
		}
	}
}

func (u *ProgressRecorder) handleEvent(ctx context.Context, evt ports.Event) {
	if evt.Topic != ports.TopicTrackerProgress {
		return
	}

	var p reader.TrackerProgressEvent
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		return
	}
	if p.MangaID <= 0 || p.Progress <= 0 {
		return
	}

	if _, err := u.trackers.RecordProgress(ctx, p.MangaID, p.Kind, p.Progress); err != nil {
		u.logger.Warn().Err(err).Int("manga_id", p.MangaID).Str("tracker", string(p.Kind)).Msg("failed to record tracker progress")
	}
}
