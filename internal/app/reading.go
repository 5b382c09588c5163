package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// ReadingService héberge les sessions de lecture. Une session suit un lecteur
// à travers les changements de chapitre.
type ReadingService struct {
	logger   zerolog.Logger
	server   ports.MangaServer
	settings *reader.DirectionAdapter
	sync     *reader.Synchronizer
	bus      ports.EventBus

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewReadingService(logger zerolog.Logger, server ports.MangaServer, settings *reader.DirectionAdapter, sync *reader.Synchronizer, bus ports.EventBus) *ReadingService {
	return &ReadingService{
		logger:   logger,
		server:   server,
		settings: settings,
		sync:     sync,
		bus:      bus,
		sessions: map[string]*Session{},
	}
}

type SessionDTO struct {
	ID    string                 `json:"id"`
	State reader.NavigationState `json:"state"`
}

type ScrollRequestDTO struct {
	SessionID string `json:"sessionId"`
	PageIndex int    `json:"pageIndex"`
}

type target struct {
	mangaID      int
	chapterIndex int
}

// Session sérialise tous les appels au contrôleur derrière son mutex, qui
// joue le rôle de boucle d'événements.
type Session struct {
	ID string

	svc    *ReadingService
	logger zerolog.Logger

	mu      sync.Mutex
	ctrl    *reader.Controller
	pending *target
	closed  bool
}

// Open crée une session sur un chapitre (index 1-based dans le manga).
func (s *ReadingService) Open(ctx context.Context, mangaID, chapterIndex int) (*Session, error) {
	if mangaID <= 0 || chapterIndex <= 0 {
		return nil, invalidInput("mangaId and chapterIndex must be positive", nil)
	}
	id := xid.New().String()
	sess := &Session{ID: id, svc: s, logger: s.logger.With().Str("session_id", id).Logger()}

	ctrl, err := sess.build(ctx, target{mangaID: mangaID, chapterIndex: chapterIndex})
	if err != nil {
		return nil, err
	}
	sess.ctrl = ctrl

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	sess.logger.Info().Int("manga_id", mangaID).Int("chapter_index", chapterIndex).Msg("session opened")
	return sess, nil
}

func (s *ReadingService) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *ReadingService) List() []SessionDTO {
	s.mu.Lock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.Unlock()

	out := make([]SessionDTO, 0, len(list))
	for _, sess := range list {
		if dto, err := sess.Snapshot(); err == nil {
			out = append(out, dto)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *ReadingService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.close()
	return nil
}

func (s *ReadingService) CloseAll() {
	s.mu.Lock()
	list := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		list = append(list, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	for _, sess := range list {
		sess.close()
	}
}

func (sess *Session) build(ctx context.Context, t target) (*reader.Controller, error) {
	svc := sess.svc
	ch, err := svc.server.Chapter(ctx, t.mangaID, t.chapterIndex)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("manga %d chapter %d: %w", t.mangaID, t.chapterIndex, ErrNotFound)
		}
		return nil, &CodedError{Code: "source_unavailable", Message: "fetch chapter", Err: err}
	}
	ctrl, err := reader.NewController(ctx, reader.Options{
		Chapter:      ch,
		Chapters:     svc.server,
		Pages:        svc.server,
		BaseURL:      svc.server.BaseURL(),
		Navigator:    ports.NavigatorFunc(sess.navigateTo),
		Settings:     svc.settings,
		Synchronizer: svc.sync,
		Viewport:     reader.ViewportFunc(sess.scrollIntoView),
		Schedule:     sess.schedule,
		Logger:       sess.logger,
	})
	if err != nil {
		return nil, &CodedError{Code: "source_unavailable", Message: "load chapter", Err: err}
	}
	return ctrl, nil
}

// navigateTo est appelé par le contrôleur pendant Do, mutex tenu: la
// navigation est appliquée à la fin de l'opération.
func (sess *Session) navigateTo(mangaID, chapterIndex int) {
	sess.pending = &target{mangaID: mangaID, chapterIndex: chapterIndex}
}

func (sess *Session) scrollIntoView(pageIndex int) {
	sess.svc.publish(ports.TopicSessionScroll, ScrollRequestDTO{SessionID: sess.ID, PageIndex: pageIndex})
}

func (sess *Session) schedule(fn func()) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}
	fn()
	dto := sess.snapshotLocked()
	sess.mu.Unlock()
	sess.svc.publish(ports.TopicSessionChanged, dto)
}

// Do exécute fn sur le contrôleur courant puis applique une éventuelle
// navigation vers un autre chapitre.
func (sess *Session) Do(ctx context.Context, fn func(c *reader.Controller) error) (SessionDTO, error) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return SessionDTO{}, ErrSessionNotFound
	}
	err := fn(sess.ctrl)
	if err == nil && sess.pending != nil {
		t := *sess.pending
		sess.pending = nil
		err = sess.navigateLocked(ctx, t)
	}
	sess.pending = nil
	dto := sess.snapshotLocked()
	sess.mu.Unlock()

	if err != nil {
		return dto, err
	}
	sess.svc.publish(ports.TopicSessionChanged, dto)
	return dto, nil
}

// navigateLocked remplace le contrôleur. En cas d'échec l'ancien reste actif.
func (sess *Session) navigateLocked(ctx context.Context, t target) error {
	next, err := sess.build(ctx, t)
	if err != nil {
		sess.logger.Warn().Err(err).Int("chapter_index", t.chapterIndex).Msg("chapter route failed")
		return err
	}
	sess.ctrl.Close()
	sess.ctrl = next
	sess.logger.Info().Int("chapter_index", t.chapterIndex).Msg("chapter routed")
	return nil
}

func (sess *Session) Snapshot() (SessionDTO, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return SessionDTO{}, ErrSessionNotFound
	}
	return sess.snapshotLocked(), nil
}

func (sess *Session) snapshotLocked() SessionDTO {
	return SessionDTO{ID: sess.ID, State: sess.ctrl.State()}
}

func (sess *Session) close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	sess.closed = true
	sess.ctrl.Close()
	sess.logger.Info().Msg("session closed")
}

func (s *ReadingService) publish(topic string, v any) {
	if s.bus == nil {
		return
	}
	b, _ := json.Marshal(v)
	if len(b) > 0 {
		s.bus.Publish(topic, b)
	}
}
