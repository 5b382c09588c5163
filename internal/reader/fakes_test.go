package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/rs/zerolog"
)

var errBoom = errors.New("boom")

type fakePages struct {
	calls int
	urls  map[int][]string
	err   error
}

func (f *fakePages) ChapterPages(_ context.Context, chapterID int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.urls[chapterID], nil
}

func pagesOf(chapterID, n int) *fakePages {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("/api/v1/manga/1/chapter/%d/page/%d", chapterID, i)
	}
	return &fakePages{urls: map[int][]string{chapterID: urls}}
}

type fakeChapters struct {
	byIndex map[int]domain.Chapter
	err     error
}

func (f *fakeChapters) Chapter(_ context.Context, mangaID, index int) (domain.Chapter, error) {
	if f.err != nil {
		return domain.Chapter{}, f.err
	}
	ch, ok := f.byIndex[index]
	if !ok || ch.MangaID != mangaID {
		return domain.Chapter{}, ports.ErrNotFound
	}
	return ch, nil
}

func (f *fakeChapters) Chapters(_ context.Context, mangaID int) ([]domain.Chapter, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Chapter
	for i := 1; i <= len(f.byIndex); i++ {
		if ch, ok := f.byIndex[i]; ok && ch.MangaID == mangaID {
			out = append(out, ch)
		}
	}
	return out, nil
}

// chaptersOf crée n chapitres pour le manga, ids = 100+index.
func chaptersOf(mangaID, n int) *fakeChapters {
	f := &fakeChapters{byIndex: map[int]domain.Chapter{}}
	for i := 1; i <= n; i++ {
		f.byIndex[i] = domain.Chapter{ID: 100 + i, MangaID: mangaID, Index: i, Number: float64(i), PageCount: 5}
	}
	return f
}

type route struct {
	MangaID      int
	ChapterIndex int
}

type fakeNav struct {
	routes []route
}

func (n *fakeNav) NavigateTo(mangaID, chapterIndex int) {
	n.routes = append(n.routes, route{mangaID, chapterIndex})
}

type memSettings struct {
	mu   sync.Mutex
	def  *domain.ReaderSettings
	over map[int]domain.ReaderSettings
}

func newMemSettings() *memSettings {
	return &memSettings{over: map[int]domain.ReaderSettings{}}
}

func (m *memSettings) Default(context.Context) (domain.ReaderSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.def == nil {
		return domain.DefaultReaderSettings(), nil
	}
	return *m.def, nil
}

func (m *memSettings) PutDefault(_ context.Context, s domain.ReaderSettings) (domain.ReaderSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.def = &s
	return s, nil
}

func (m *memSettings) ForManga(_ context.Context, mangaID int) (domain.ReaderSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.over[mangaID]
	if !ok {
		return domain.ReaderSettings{}, ports.ErrNotFound
	}
	return s, nil
}

func (m *memSettings) PutForManga(_ context.Context, mangaID int, s domain.ReaderSettings) (domain.ReaderSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.over[mangaID] = s
	return s, nil
}

func (m *memSettings) DeleteForManga(_ context.Context, mangaID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.over, mangaID)
	return nil
}

type fakeMarker struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (f *fakeMarker) SetChapterRead(_ context.Context, chapterID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, chapterID)
	return f.err
}

func (f *fakeMarker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeTrackers struct {
	byManga map[int]domain.Tracker
	err     error
}

func (f *fakeTrackers) Get(_ context.Context, mangaID int) (domain.Tracker, error) {
	if f.err != nil {
		return domain.Tracker{}, f.err
	}
	t := f.byManga[mangaID]
	t.MangaID = mangaID
	return t, nil
}

func (f *fakeTrackers) Put(_ context.Context, t domain.Tracker) (domain.Tracker, error) {
	if f.byManga == nil {
		f.byManga = map[int]domain.Tracker{}
	}
	f.byManga[t.MangaID] = t
	return t, nil
}

func (f *fakeTrackers) RecordProgress(ctx context.Context, mangaID int, kind domain.TrackerKind, progress int) (domain.Tracker, error) {
	t, _ := f.Get(ctx, mangaID)
	switch kind {
	case domain.TrackerAniList:
		t.AniListProgress = max(t.AniListProgress, progress)
	case domain.TrackerMyAnimeList:
		t.MALProgress = max(t.MALProgress, progress)
	}
	return f.Put(ctx, t)
}

type fakeTracker struct {
	mu          sync.Mutex
	kind        domain.TrackerKind
	progress    map[int]int
	progressErr error
	setErr      error
	sets        []int
}

func newFakeTracker(kind domain.TrackerKind) *fakeTracker {
	return &fakeTracker{kind: kind, progress: map[int]int{}}
}

func (f *fakeTracker) Kind() domain.TrackerKind { return f.kind }

func (f *fakeTracker) Progress(_ context.Context, id int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progressErr != nil {
		return 0, f.progressErr
	}
	return f.progress[id], nil
}

func (f *fakeTracker) SetProgress(_ context.Context, id int, v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, v)
	f.progress[id] = v
	return nil
}

func (f *fakeTracker) value(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress[id]
}

// inlineDispatcher exécute les tâches immédiatement, dans l'ordre.
type inlineDispatcher struct {
	keys []string
}

func (d *inlineDispatcher) Dispatch(key string, task func(ctx context.Context)) {
	d.keys = append(d.keys, key)
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
	ch := make(chan ports.Event)
	return ch, func() {}
}

func (b *recordingBus) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Topic)
	}
	return out
}

type recordingViewport struct {
	requests []int
}

func (v *recordingViewport) ScrollIntoView(i int) { v.requests = append(v.requests, i) }

// fixture assemble un contrôleur avec des collaborateurs en mémoire.
type fixture struct {
	pages    *fakePages
	chapters *fakeChapters
	nav      *fakeNav
	settings *memSettings
	adapter  *DirectionAdapter
	marker   *fakeMarker
	trackers *fakeTrackers
	anilist  *fakeTracker
	bus      *recordingBus
	viewport *recordingViewport
	dispatch *inlineDispatcher
	sync     *Synchronizer
}

func newFixture(mangaID, chapters, pages int) *fixture {
	f := &fixture{
		chapters: chaptersOf(mangaID, chapters),
		nav:      &fakeNav{},
		settings: newMemSettings(),
		marker:   &fakeMarker{},
		trackers: &fakeTrackers{byManga: map[int]domain.Tracker{}},
		anilist:  newFakeTracker(domain.TrackerAniList),
		bus:      &recordingBus{},
		viewport: &recordingViewport{},
		dispatch: &inlineDispatcher{},
	}
	f.pages = &fakePages{urls: map[int][]string{}}
	for i := 1; i <= chapters; i++ {
		f.pages.urls[100+i] = pagesOf(100+i, pages).urls[100+i]
	}
	f.adapter = NewDirectionAdapter(zerolog.Nop(), f.settings)
	f.sync = NewSynchronizer(zerolog.Nop(), f.marker, f.trackers, []ports.TrackerClient{f.anilist}, f.dispatch, f.bus)
	return f
}

func (f *fixture) controller(ctx context.Context, chapterIndex int, mods ...func(*Options)) (*Controller, error) {
	opts := Options{
		Chapter:      f.chapters.byIndex[chapterIndex],
		Chapters:     f.chapters,
		Pages:        f.pages,
		BaseURL:      "http://suwayomi:4567",
		Navigator:    f.nav,
		Settings:     f.adapter,
		Synchronizer: f.sync,
		Viewport:     f.viewport,
		Logger:       zerolog.Nop(),
	}
	for _, m := range mods {
		m(&opts)
	}
	return NewController(ctx, opts)
}

func (f *fixture) setDefault(d domain.ReaderDirection, m domain.ReaderMode) {
	s := domain.ReaderSettings{Direction: d, Mode: m}
	f.settings.def = &s
}
