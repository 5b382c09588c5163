package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
)

// fakeServer simule un serveur de mangas avec un seul manga.
type fakeServer struct {
	mu       sync.Mutex
	mangaID  int
	chapters []domain.Chapter
	pages    int
	pagesErr error
	readErr  error
	read     []int
}

func newFakeServer(mangaID, chapters, pages int) *fakeServer {
	s := &fakeServer{mangaID: mangaID, pages: pages}
	for i := 1; i <= chapters; i++ {
		s.chapters = append(s.chapters, domain.Chapter{ID: 100 + i, MangaID: mangaID, Index: i, Number: float64(i), PageCount: pages})
	}
	return s
}

func (s *fakeServer) BaseURL() string { return "http://suwayomi.test" }

func (s *fakeServer) ChapterPages(_ context.Context, chapterID int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pagesErr != nil {
		return nil, s.pagesErr
	}
	out := make([]string, s.pages)
	for i := range out {
		out[i] = fmt.Sprintf("/api/v1/manga/%d/chapter/%d/page/%d", s.mangaID, chapterID, i)
	}
	return out, nil
}

func (s *fakeServer) Chapter(_ context.Context, mangaID, index int) (domain.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mangaID != s.mangaID || index < 1 || index > len(s.chapters) {
		return domain.Chapter{}, ports.ErrNotFound
	}
	return s.chapters[index-1], nil
}

func (s *fakeServer) Chapters(_ context.Context, mangaID int) ([]domain.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mangaID != s.mangaID {
		return nil, nil
	}
	return append([]domain.Chapter(nil), s.chapters...), nil
}

func (s *fakeServer) SetChapterRead(_ context.Context, chapterID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return s.readErr
	}
	s.read = append(s.read, chapterID)
	for i := range s.chapters {
		if s.chapters[i].ID == chapterID {
			s.chapters[i].Read = true
		}
	}
	return nil
}

type memTrackers struct {
	mu      sync.Mutex
	byManga map[int]domain.Tracker
}

func newMemTrackers() *memTrackers {
	return &memTrackers{byManga: map[int]domain.Tracker{}}
}

func (r *memTrackers) Get(_ context.Context, mangaID int) (domain.Tracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.byManga[mangaID]
	t.MangaID = mangaID
	return t, nil
}

func (r *memTrackers) Put(_ context.Context, t domain.Tracker) (domain.Tracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byManga[t.MangaID] = t
	return t, nil
}

func (r *memTrackers) RecordProgress(_ context.Context, mangaID int, kind domain.TrackerKind, progress int) (domain.Tracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.byManga[mangaID]
	t.MangaID = mangaID
	switch kind {
	case domain.TrackerAniList:
		if progress > t.AniListProgress {
			t.AniListProgress = progress
		}
	case domain.TrackerMyAnimeList:
		if progress > t.MALProgress {
			t.MALProgress = progress
		}
	}
	r.byManga[mangaID] = t
	return t, nil
}

type memReaderSettings struct {
	mu   sync.Mutex
	def  domain.ReaderSettings
	over map[int]domain.ReaderSettings
}

func newMemReaderSettings() *memReaderSettings {
	return &memReaderSettings{def: domain.DefaultReaderSettings(), over: map[int]domain.ReaderSettings{}}
}

func (m *memReaderSettings) Default(context.Context) (domain.ReaderSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.def, nil
}

func (m *memReaderSettings) PutDefault(_ context.Context, s domain.ReaderSettings) (domain.ReaderSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.def = s
	return s, nil
}

func (m *memReaderSettings) ForManga(_ context.Context, mangaID int) (domain.ReaderSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.over[mangaID]
	if !ok {
		return domain.ReaderSettings{}, ports.ErrNotFound
	}
	return s, nil
}

func (m *memReaderSettings) PutForManga(_ context.Context, mangaID int, s domain.ReaderSettings) (domain.ReaderSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.over[mangaID] = s
	return s, nil
}

func (m *memReaderSettings) DeleteForManga(_ context.Context, mangaID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.over, mangaID)
	return nil
}

type inlineDispatcher struct{}

func (inlineDispatcher) Dispatch(_ string, task func(ctx context.Context)) {
	task(context.Background())
}

type recordingBus struct {
	mu     sync.Mutex
	events []ports.Event
}

func (b *recordingBus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ports.Event{Topic: topic, Payload: payload})
}

func (b *recordingBus) Subscribe() (<-chan ports.Event, func()) {
	return make(chan ports.Event), func() {}
}

func (b *recordingBus) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Topic == topic {
			n++
		}
	}
	return n
}

func (b *recordingBus) last(topic string) (ports.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].Topic == topic {
			return b.events[i], true
		}
	}
	return ports.Event{}, false
}

type fakeTrackerClient struct {
	mu       sync.Mutex
	kind     domain.TrackerKind
	progress map[int]int
}

func (f *fakeTrackerClient) Kind() domain.TrackerKind { return f.kind }

func (f *fakeTrackerClient) Progress(_ context.Context, id int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress[id], nil
}

func (f *fakeTrackerClient) SetProgress(_ context.Context, id int, v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress[id] = v
	return nil
}
