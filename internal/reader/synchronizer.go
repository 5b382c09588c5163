package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/rs/zerolog"
)

// Dispatcher exécute des tâches sans bloquer l'appelant. Les tâches d'une même
// clé s'exécutent dans l'ordre de soumission, jamais en parallèle.
type Dispatcher interface {
	Dispatch(key string, task func(ctx context.Context))
}

// Notification est publiée sur le bus (topic ports.TopicNotification) quand
// l'utilisateur doit être prévenu d'un échec.
type Notification struct {
	Level       string `json:"level"`
	Message     string `json:"message"`
	MangaID     int    `json:"mangaId,omitempty"`
	ChapterID   int    `json:"chapterId,omitempty"`
	Dismissible bool   `json:"dismissible"`
}

type ChapterReadEvent struct {
	MangaID      int `json:"mangaId"`
	ChapterID    int `json:"chapterId"`
	ChapterIndex int `json:"chapterIndex"`
}

type TrackerProgressEvent struct {
	MangaID  int                `json:"mangaId"`
	Kind     domain.TrackerKind `json:"kind"`
	RemoteID int                `json:"remoteId"`
	Progress int                `json:"progress"`
}

// Synchronizer propage la fin de chapitre: statut lu côté serveur et
// progression des trackers.
type Synchronizer struct {
	logger     zerolog.Logger
	marker     ports.ReadMarker
	trackers   ports.TrackerRepository
	clients    map[domain.TrackerKind]ports.TrackerClient
	dispatcher Dispatcher
	bus        ports.EventBus
}

func NewSynchronizer(logger zerolog.Logger, marker ports.ReadMarker, trackers ports.TrackerRepository, clients []ports.TrackerClient, dispatcher Dispatcher, bus ports.EventBus) *Synchronizer {
	byKind := make(map[domain.TrackerKind]ports.TrackerClient, len(clients))
	for _, c := range clients {
		if c != nil {
			byKind[c.Kind()] = c
		}
	}
	return &Synchronizer{
		logger:     logger.With().Str("component", "sync").Logger(),
		marker:     marker,
		trackers:   trackers,
		clients:    byKind,
		dispatcher: dispatcher,
		bus:        bus,
	}
}

// Binding relie un chapitre à l'écoute de sa fin. Le déclenchement est unique
// pour toute la durée du Binding, même après Rebind sur un autre lecteur.
type Binding struct {
	s       *Synchronizer
	chapter domain.Chapter
	remotes []domain.RemoteRef

	mu    sync.Mutex
	fired bool
	reg   Registration
	read  atomic.Bool
}

// Attach écoute la fin de chapitre du lecteur. Les associations trackers du
// manga sont lues ici; un échec de lecture désactive les trackers pour ce
// chapitre.
func (s *Synchronizer) Attach(ctx context.Context, r Reader, chapter domain.Chapter) *Binding {
	b := &Binding{s: s, chapter: chapter}
	b.read.Store(chapter.Read)
	if s.trackers != nil {
		t, err := s.trackers.Get(ctx, chapter.MangaID)
		if err != nil {
			s.logger.Warn().Err(err).Int("manga_id", chapter.MangaID).Msg("tracker lookup failed")
		} else {
			b.remotes = t.Remotes()
		}
	}
	b.Rebind(r)
	return b
}

func (b *Binding) Chapter() domain.Chapter { return b.chapter }

// Read indique si le serveur a confirmé le statut lu.
func (b *Binding) Read() bool { return b.read.Load() }

func (b *Binding) Fired() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fired
}

// Rebind déplace l'écoute vers un nouveau lecteur du même chapitre.
func (b *Binding) Rebind(r Reader) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reg.Unregister()
	b.reg = Registration{}
	if b.fired || r == nil {
		return
	}
	b.reg = r.OnEndOfChapter(b.onEnd)
}

// Detach cesse d'écouter. Les synchronisations déjà lancées continuent.
func (b *Binding) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reg.Unregister()
	b.reg = Registration{}
}

func (b *Binding) onEnd(EndOfChapter) {
	b.mu.Lock()
	if b.fired {
		b.mu.Unlock()
		return
	}
	b.fired = true
	b.reg.Unregister()
	b.reg = Registration{}
	b.mu.Unlock()

	b.s.markRead(b)
	b.s.PushProgress(b.chapter.MangaID, b.remotes, b.chapter.Ordinal())
}

func (s *Synchronizer) markRead(b *Binding) {
	if s.marker == nil {
		return
	}
	ch := b.chapter
	s.dispatch(fmt.Sprintf("chapter:%d", ch.ID), func(ctx context.Context) {
		if err := s.marker.SetChapterRead(ctx, ch.ID); err != nil {
			s.logger.Error().Err(err).Int("chapter_id", ch.ID).Msg("mark chapter read failed")
			s.publish(ports.TopicNotification, Notification{
				Level:       "error",
				Message:     fmt.Sprintf("Could not mark %s as read", ch.String()),
				MangaID:     ch.MangaID,
				ChapterID:   ch.ID,
				Dismissible: true,
			})
			return
		}
		b.read.Store(true)
		s.publish(ports.TopicChapterRead, ChapterReadEvent{MangaID: ch.MangaID, ChapterID: ch.ID, ChapterIndex: ch.Index})
	})
}

// PushProgress envoie ordinal à chaque tracker, seulement s'il dépasse la
// progression distante. Les erreurs sont journalisées puis ignorées.
func (s *Synchronizer) PushProgress(mangaID int, remotes []domain.RemoteRef, ordinal int) {
	if ordinal <= 0 {
		return
	}
	for _, ref := range remotes {
		client, ok := s.clients[ref.Kind]
		if !ok {
			s.logger.Debug().Str("tracker", string(ref.Kind)).Msg("no client for tracker")
			continue
		}
		ref := ref
		s.dispatch(fmt.Sprintf("%s:%d", ref.Kind, ref.ID), func(ctx context.Context) {
			l := s.logger.With().Str("tracker", string(ref.Kind)).Int("remote_id", ref.ID).Logger()
			remote, err := client.Progress(ctx, ref.ID)
			if err != nil {
				l.Warn().Err(err).Msg("read tracker progress failed")
				return
			}
			if ordinal <= remote {
				l.Debug().Int("remote", remote).Int("local", ordinal).Msg("tracker already ahead")
				return
			}
			if err := client.SetProgress(ctx, ref.ID, ordinal); err != nil {
				l.Warn().Err(err).Msg("update tracker progress failed")
				return
			}
			l.Info().Int("progress", ordinal).Msg("tracker progress updated")
			s.publish(ports.TopicTrackerProgress, TrackerProgressEvent{MangaID: mangaID, Kind: ref.Kind, RemoteID: ref.ID, Progress: ordinal})
		})
	}
}

func (s *Synchronizer) dispatch(key string, task func(ctx context.Context)) {
	if s.dispatcher == nil {
		go task(context.Background())
		return
	}
	s.dispatcher.Dispatch(key, task)
}

func (s *Synchronizer) publish(topic string, v any) {
	if s.bus == nil {
		return
	}
	b, _ := json.Marshal(v)
	if len(b) > 0 {
		s.bus.Publish(topic, b)
	}
}
