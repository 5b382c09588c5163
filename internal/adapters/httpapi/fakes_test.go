package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
)

// fakeServer sert un seul manga (id 1) dont chaque chapitre a le même nombre de pages.
type fakeServer struct {
	mu       sync.Mutex
	chapters int
	pages    int
	read     []int
}

func (s *fakeServer) BaseURL() string { return "http://suwayomi.test" }

func (s *fakeServer) ChapterPages(_ context.Context, chapterID int) ([]string, error) {
	out := make([]string, s.pages)
	for i := range out {
		out[i] = fmt.Sprintf("/api/v1/manga/1/chapter/%d/page/%d", chapterID, i)
	}
	return out, nil
}

func (s *fakeServer) chapter(index int) domain.Chapter {
	return domain.Chapter{ID: 100 + index, MangaID: 1, Index: index, Number: float64(index), PageCount: s.pages}
}

func (s *fakeServer) Chapter(_ context.Context, mangaID, index int) (domain.Chapter, error) {
	if mangaID != 1 || index < 1 || index > s.chapters {
		return domain.Chapter{}, ports.ErrNotFound
	}
	return s.chapter(index), nil
}

func (s *fakeServer) Chapters(_ context.Context, mangaID int) ([]domain.Chapter, error) {
	if mangaID != 1 {
		return nil, ports.ErrNotFound
	}
	out := make([]domain.Chapter, 0, s.chapters)
	for i := 1; i <= s.chapters; i++ {
		out = append(out, s.chapter(i))
	}
	return out, nil
}

func (s *fakeServer) SetChapterRead(_ context.Context, chapterID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.read = append(s.read, chapterID)
	return nil
}

type inlineDispatcher struct{}

func (inlineDispatcher) Dispatch(_ string, task func(ctx context.Context)) { task(context.Background()) }

type apiFixture struct {
	server  *fakeServer
	reading *app.ReadingService
	center  *app.NotificationCenter
	bus     *memorybus.Bus
	handler http.Handler
}

func newAPIFixture(t *testing.T, chapters, pages int) *apiFixture {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	bus := memorybus.New()
	t.Cleanup(bus.Close)

	logger := zerolog.Nop()
	f := &apiFixture{server: &fakeServer{chapters: chapters, pages: pages}, bus: bus}
	trackers := sqlite.NewTrackersRepository(db.SQL)
	adapter := reader.NewDirectionAdapter(logger, sqlite.NewReaderSettingsRepository(db.SQL))
	sync := reader.NewSynchronizer(logger, f.server, trackers, nil, inlineDispatcher{}, bus)

	f.reading = app.NewReadingService(logger, f.server, adapter, sync, bus)
	t.Cleanup(f.reading.CloseAll)
	f.center = app.NewNotificationCenter(logger, bus)

	f.handler = NewServer(logger, Services{
		Reading:       f.reading,
		Settings:      app.NewSettingsService(adapter),
		Tracking:      app.NewTrackingService(trackers, f.server, sync),
		Notifications: f.center,
	}, bus).Router()
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: want %d, got %d (%s)", want, rr.Code, rr.Body.String())
	}
}
