package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
)

type fakeServer struct {
	chapters int
	pages    int
}

func (s fakeServer) BaseURL() string { return "http://suwayomi.test" }

func (s fakeServer) ChapterPages(_ context.Context, chapterID int) ([]string, error) {
	out := make([]string, s.pages)
	for i := range out {
		out[i] = fmt.Sprintf("/api/v1/manga/1/chapter/%d/page/%d", chapterID, i)
	}
	return out, nil
}

func (s fakeServer) Chapter(_ context.Context, mangaID, index int) (domain.Chapter, error) {
	if mangaID != 1 || index < 1 || index > s.chapters {
		return domain.Chapter{}, ports.ErrNotFound
	}
	return domain.Chapter{ID: 100 + index, MangaID: 1, Index: index, Number: float64(index), PageCount: s.pages}, nil
}

func (s fakeServer) Chapters(ctx context.Context, mangaID int) ([]domain.Chapter, error) {
	var out []domain.Chapter
	for i := 1; i <= s.chapters; i++ {
		ch, _ := s.Chapter(ctx, mangaID, i)
		out = append(out, ch)
	}
	return out, nil
}

func (s fakeServer) SetChapterRead(context.Context, int) error { return nil }

type inlineDispatcher struct{}

func (inlineDispatcher) Dispatch(_ string, task func(ctx context.Context)) { task(context.Background()) }

type recordingSaver struct {
	saved []domain.ReaderSettings
}

func (r *recordingSaver) SaveForManga(_ context.Context, mangaID int, s domain.ReaderSettings) (app.MangaSettingsDTO, error) {
	r.saved = append(r.saved, s)
	return app.MangaSettingsDTO{MangaID: mangaID, Settings: s, Overrides: true}, nil
}

func newModel(t *testing.T, chapters, pages int) (Model, *recordingSaver) {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	srv := fakeServer{chapters: chapters, pages: pages}
	adapter := reader.NewDirectionAdapter(zerolog.Nop(), sqlite.NewReaderSettingsRepository(db.SQL))
	sync := reader.NewSynchronizer(zerolog.Nop(), srv, sqlite.NewTrackersRepository(db.SQL), nil, inlineDispatcher{}, nil)
	svc := app.NewReadingService(zerolog.Nop(), srv, adapter, sync, nil)
	t.Cleanup(svc.CloseAll)

	sess, err := svc.Open(ctx, 1, 1)
	require.NoError(t, err)

	saver := &recordingSaver{}
	m, err := New(ctx, Options{Session: sess, Settings: saver, Logger: zerolog.Nop()})
	require.NoError(t, err)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model), saver
}

// drain exécute les commandes de façon synchrone et réinjecte leurs messages.
func drain(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case sessionMsg, pagesMsg, chaptersMsg:
			next, nextCmd := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nextCmd)
		}
	}
	return m
}

func press(m Model, msg tea.KeyMsg) Model {
	next, cmd := m.Update(msg)
	return drain(next.(Model), cmd)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModel_ArrowsFollowReadingDirection(t *testing.T) {
	m, _ := newModel(t, 2, 3)
	m = drain(m, m.Init())
	require.Equal(t, domain.DirectionRTL, m.state.Direction)
	assert.Len(t, m.pages, 3)

	// RTL: la flèche droite recule, rien avant la première page du premier chapitre.
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, m.state.PageIndex)
	assert.Equal(t, 1, m.state.ChapterIndex)

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, m.state.PageIndex)
	assert.Equal(t, "2", m.state.PageField)

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 2, m.state.ChapterIndex)
	assert.Equal(t, 0, m.state.PageIndex)
	assert.Equal(t, "http://suwayomi.test/api/v1/manga/1/chapter/102/page/0", m.pages[0].URL)

	m = press(m, runes("]"))
	assert.Equal(t, 1, m.state.ChapterIndex, "right chapter button goes back in RTL")
}

func TestModel_PageJumpField(t *testing.T) {
	m, _ := newModel(t, 1, 5)

	m = press(m, runes("g"))
	require.Equal(t, screenJump, m.screen)
	assert.Equal(t, "1", m.input.Value())

	m = press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = press(m, runes("4"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenReading, m.screen)
	assert.Equal(t, 3, m.state.PageIndex)
	assert.Equal(t, "4", m.state.PageField)

	// Hors bornes: refus, le champ garde sa valeur.
	m = press(m, runes("g"))
	m = press(m, runes("0"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 3, m.state.PageIndex)
	assert.Equal(t, "4", m.state.PageField)

	m = press(m, runes("g"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenReading, m.screen)
}

func TestModel_ChapterList(t *testing.T) {
	m, _ := newModel(t, 3, 2)

	m = press(m, runes("c"))
	require.Equal(t, screenChapters, m.screen)
	require.Len(t, m.chapters.Items(), 3)
	assert.True(t, m.chapters.SelectedItem().(chapterItem).current)

	m.chapters.Select(2)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenReading, m.screen)
	assert.Equal(t, 3, m.state.ChapterIndex)
	assert.False(t, m.state.HasNextChapter)
}

func TestModel_ZoomAndSettingsKeys(t *testing.T) {
	m, saver := newModel(t, 1, 3)

	m = press(m, runes("+"))
	assert.Equal(t, 1.5, m.state.Zoom)

	m = press(m, runes("d"))
	m = press(m, runes("m"))
	require.Len(t, saver.saved, 2)
	assert.Equal(t, domain.ReaderSettings{Direction: domain.DirectionLTR, Mode: domain.ModePaged}, saver.saved[0])
	assert.Equal(t, domain.ReaderSettings{Direction: domain.DirectionRTL, Mode: domain.ModeStrip}, saver.saved[1])
}

func TestModel_HandleEvents(t *testing.T) {
	m, _ := newModel(t, 1, 3)

	mustJSON := func(v any) []byte {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return b
	}

	m.handleEvent(ports.Event{Topic: ports.TopicNotification, Payload: mustJSON(reader.Notification{Level: "error", Message: "sync failed", MangaID: 1})})
	m.handleEvent(ports.Event{Topic: ports.TopicNotification, Payload: mustJSON(reader.Notification{Level: "error", Message: "other", MangaID: 2})})
	require.Len(t, m.notifications, 1)
	assert.Contains(t, m.View(), "sync failed")

	m = press(m, runes("x"))
	assert.Empty(t, m.notifications)

	cmd := m.handleEvent(ports.Event{Topic: ports.TopicSessionScroll, Payload: mustJSON(app.ScrollRequestDTO{SessionID: "other", PageIndex: 2})})
	assert.Nil(t, cmd)

	st := m.state
	st.PageIndex = 2
	m.handleEvent(ports.Event{Topic: ports.TopicSessionChanged, Payload: mustJSON(app.SessionDTO{ID: m.id, State: st})})
	assert.Equal(t, 2, m.state.PageIndex)
}

func TestPageBar(t *testing.T) {
	st := reader.NavigationState{PageCount: 4, PageIndex: 0, Direction: domain.DirectionLTR, Mode: domain.ModePaged}
	assert.Equal(t, "● ○ ○ ○", PageBar(st))

	st.Direction = domain.DirectionRTL
	assert.Equal(t, "○ ○ ○ ●", PageBar(st))

	st.Mode = domain.ModeStrip
	assert.Equal(t, "● ○ ○ ○", PageBar(st))
}
