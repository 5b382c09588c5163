// Package tui est un lecteur en terminal: il héberge une session de lecture
// et simule la vue (boutons, champ de page, liste des chapitres, défilement).
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
)

const maxShownNotifications = 3

// Session est implémentée par *app.Session.
type Session interface {
	Do(ctx context.Context, fn func(c *reader.Controller) error) (app.SessionDTO, error)
	Snapshot() (app.SessionDTO, error)
}

type SettingsSaver interface {
	SaveForManga(ctx context.Context, mangaID int, s domain.ReaderSettings) (app.MangaSettingsDTO, error)
}

type Options struct {
	Session  Session
	Settings SettingsSaver
	// Events reçoit le bus applicatif (notifications, changements de session, défilement).
	Events <-chan ports.Event
	Logger zerolog.Logger
}

type screen int

const (
	screenReading screen = iota
	screenJump
	screenChapters
)

type sessionMsg struct {
	dto app.SessionDTO
	err error
}

type pagesMsg struct {
	chapterID int
	pages     []domain.PageRef
	err       error
}

type chaptersMsg struct {
	list []domain.Chapter
	err  error
}

type busMsg ports.Event

type busClosedMsg struct{}

type chapterItem struct {
	ch      domain.Chapter
	current bool
}

func (i chapterItem) Title() string {
	t := i.ch.String()
	if i.current {
		t = "▶ " + t
	}
	return t
}

func (i chapterItem) Description() string {
	d := fmt.Sprintf("#%d · %d pages", i.ch.Index, i.ch.PageCount)
	if i.ch.Read {
		d += " · read"
	}
	return d
}

func (i chapterItem) FilterValue() string { return i.ch.String() }

type Model struct {
	ctx    context.Context
	opts   Options
	logger zerolog.Logger
	keys   KeyMap

	id            string
	state         reader.NavigationState
	pages         []domain.PageRef
	pagesFor      int
	notifications []reader.Notification
	err           error

	screen   screen
	input    textinput.Model
	chapters list.Model
	help     help.Model

	width  int
	height int
}

func New(ctx context.Context, opts Options) (Model, error) {
	dto, err := opts.Session.Snapshot()
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "page"
	ti.CharLimit = 6
	ti.Width = 8
	ti.Prompt = "page › "
	ti.Cursor.SetMode(cursor.CursorStatic)

	delegate := list.NewDefaultDelegate()
	chapters := list.New(nil, delegate, 0, 0)
	chapters.Title = "Chapters"
	chapters.SetShowHelp(false)

	return Model{
		ctx:      ctx,
		opts:     opts,
		logger:   opts.Logger.With().Str("component", "tui").Str("session_id", dto.ID).Logger(),
		keys:     DefaultKeyMap(),
		id:       dto.ID,
		state:    dto.State,
		pagesFor: -1,
		input:    ti,
		chapters: chapters,
		help:     help.New(),
	}, nil
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadPages(), m.listen()}
	if cmd := m.revealFirstPage(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m Model) listen() tea.Cmd {
	if m.opts.Events == nil {
		return nil
	}
	ch := m.opts.Events
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return busClosedMsg{}
		}
		return busMsg(evt)
	}
}

// do exécute fn sur le contrôleur hors de la boucle UI.
func (m Model) do(fn func(c *reader.Controller) error) tea.Cmd {
	sess, ctx := m.opts.Session, m.ctx
	return func() tea.Msg {
		dto, err := sess.Do(ctx, fn)
		return sessionMsg{dto: dto, err: err}
	}
}

func (m Model) loadPages() tea.Cmd {
	sess, ctx, chapterID := m.opts.Session, m.ctx, m.state.ChapterID
	return func() tea.Msg {
		var pages []domain.PageRef
		_, err := sess.Do(ctx, func(c *reader.Controller) error {
			pages = c.Reader().Pages()
			return nil
		})
		return pagesMsg{chapterID: chapterID, pages: pages, err: err}
	}
}

func (m Model) loadChapters() tea.Cmd {
	sess, ctx := m.opts.Session, m.ctx
	return func() tea.Msg {
		var chapters []domain.Chapter
		_, err := sess.Do(ctx, func(c *reader.Controller) error {
			var err error
			chapters, err = c.Chapters(ctx)
			return err
		})
		return chaptersMsg{list: chapters, err: err}
	}
}

// observe joue le rôle de la vue: une page défilée est entièrement visible.
func (m Model) observe(index int, origin reader.Origin) tea.Cmd {
	v := reader.Visibility{Index: index, Ratio: 1, Origin: origin}
	return m.do(func(c *reader.Controller) error { return c.Observe(v) })
}

// revealFirstPage: une bande fraîchement chargée affiche sa première page.
func (m Model) revealFirstPage() tea.Cmd {
	if m.state.Mode != domain.ModeStrip || m.state.PageIndex >= 0 || m.state.PageCount == 0 {
		return nil
	}
	return m.observe(0, reader.OriginSystem)
}

func (m Model) saveSettings(s domain.ReaderSettings) tea.Cmd {
	if m.opts.Settings == nil {
		return nil
	}
	saver, ctx, mangaID, logger := m.opts.Settings, m.ctx, m.state.MangaID, m.logger
	return func() tea.Msg {
		if _, err := saver.SaveForManga(ctx, mangaID, s); err != nil {
			logger.Warn().Err(err).Msg("save reader settings failed")
			return sessionMsg{err: err}
		}
		// Le changement revient par session.changed.
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.chapters.SetSize(msg.Width-4, msg.Height-4)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case screenJump:
			return m.updateJump(msg)
		case screenChapters:
			return m.updateChapters(msg)
		}
		return m.updateReading(msg)

	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
			m.logger.Warn().Err(msg.err).Msg("session action failed")
			return m, nil
		}
		return m.applyState(msg.dto)

	case pagesMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.chapterID == m.state.ChapterID {
			m.pages, m.pagesFor = msg.pages, msg.chapterID
		}
		return m, nil

	case chaptersMsg:
		if msg.err != nil {
			m.err = msg.err
			m.screen = screenReading
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.list))
		selected := 0
		for i, ch := range msg.list {
			current := ch.Index == m.state.ChapterIndex
			if current {
				selected = i
			}
			items = append(items, chapterItem{ch: ch, current: current})
		}
		cmd := m.chapters.SetItems(items)
		m.chapters.Select(selected)
		return m, cmd

	case busMsg:
		cmd := m.handleEvent(ports.Event(msg))
		return m, tea.Batch(cmd, m.listen())

	case busClosedMsg:
		m.logger.Debug().Msg("event bus closed")
		return m, nil
	}
	return m, nil
}

func (m Model) applyState(dto app.SessionDTO) (tea.Model, tea.Cmd) {
	if dto.ID != "" && dto.ID != m.id {
		return m, nil
	}
	chapterChanged := dto.State.ChapterID != m.state.ChapterID
	modeChanged := dto.State.Mode != m.state.Mode
	m.state = dto.State
	m.err = nil

	var cmds []tea.Cmd
	if chapterChanged || m.pagesFor != m.state.ChapterID {
		cmds = append(cmds, m.loadPages())
	}
	if chapterChanged || modeChanged {
		cmds = append(cmds, m.revealFirstPage())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleEvent(evt ports.Event) tea.Cmd {
	switch evt.Topic {
	case ports.TopicNotification:
		var n reader.Notification
		if err := json.Unmarshal(evt.Payload, &n); err != nil {
			return nil
		}
		if n.MangaID != 0 && n.MangaID != m.state.MangaID {
			return nil
		}
		m.notifications = append(m.notifications, n)
	case ports.TopicSessionChanged:
		var dto app.SessionDTO
		if err := json.Unmarshal(evt.Payload, &dto); err != nil || dto.ID != m.id {
			return nil
		}
		next, cmd := m.applyState(dto)
		*m = next.(Model)
		return cmd
	case ports.TopicSessionScroll:
		var req app.ScrollRequestDTO
		if err := json.Unmarshal(evt.Payload, &req); err != nil || req.SessionID != m.id {
			return nil
		}
		return m.observe(req.PageIndex, reader.OriginSystem)
	}
	return nil
}

func (m Model) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		return m, m.do(func(c *reader.Controller) error { return c.Key(reader.KeyArrowLeft) })
	case key.Matches(msg, m.keys.Right):
		return m, m.do(func(c *reader.Controller) error { return c.Key(reader.KeyArrowRight) })
	case key.Matches(msg, m.keys.PrevChapter):
		return m, m.do(func(c *reader.Controller) error { return c.StepChapter(reader.ControlLeft) })
	case key.Matches(msg, m.keys.NextChapter):
		return m, m.do(func(c *reader.Controller) error { return c.StepChapter(reader.ControlRight) })
	case key.Matches(msg, m.keys.ScrollDown):
		if m.state.Mode == domain.ModeStrip {
			return m, m.observe(m.state.PageIndex+1, reader.OriginUser)
		}
	case key.Matches(msg, m.keys.ScrollUp):
		if m.state.Mode == domain.ModeStrip && m.state.PageIndex > 0 {
			return m, m.observe(m.state.PageIndex-1, reader.OriginUser)
		}
	case key.Matches(msg, m.keys.ZoomIn):
		return m, m.do(func(c *reader.Controller) error { _, err := c.Wheel(-1); return err })
	case key.Matches(msg, m.keys.ZoomOut):
		return m, m.do(func(c *reader.Controller) error { _, err := c.Wheel(1); return err })
	case key.Matches(msg, m.keys.Jump):
		m.screen = screenJump
		m.input.SetValue(m.state.PageField)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Chapters):
		m.screen = screenChapters
		return m, m.loadChapters()
	case key.Matches(msg, m.keys.Direction):
		return m, m.saveSettings(domain.ReaderSettings{Direction: flipDirection(m.state.Direction), Mode: m.state.Mode})
	case key.Matches(msg, m.keys.Mode):
		return m, m.saveSettings(domain.ReaderSettings{Direction: m.state.Direction, Mode: flipMode(m.state.Mode)})
	case key.Matches(msg, m.keys.Dismiss):
		if len(m.notifications) > 0 {
			m.notifications = m.notifications[1:]
		}
	}
	return m, nil
}

func (m Model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		value := m.input.Value()
		m.input.Blur()
		m.screen = screenReading
		return m, m.do(func(c *reader.Controller) error {
			_, err := c.JumpToPage(value, reader.OriginUser)
			return err
		})
	case key.Matches(msg, m.keys.Escape):
		m.input.Blur()
		m.screen = screenReading
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateChapters(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chapters.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Enter):
			m.screen = screenReading
			item, ok := m.chapters.SelectedItem().(chapterItem)
			if !ok {
				return m, nil
			}
			index, ctx := item.ch.Index, m.ctx
			return m, m.do(func(c *reader.Controller) error {
				_, err := c.SelectChapter(ctx, index, reader.OriginUser)
				return err
			})
		case key.Matches(msg, m.keys.Escape):
			m.screen = screenReading
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.chapters, cmd = m.chapters.Update(msg)
	return m, cmd
}

func flipDirection(d domain.ReaderDirection) domain.ReaderDirection {
	if d == domain.DirectionRTL {
		return domain.DirectionLTR
	}
	return domain.DirectionRTL
}

func flipMode(md domain.ReaderMode) domain.ReaderMode {
	if md == domain.ModeStrip {
		return domain.ModePaged
	}
	return domain.ModeStrip
}

func (m Model) View() string {
	if m.screen == screenChapters {
		return frameStyle.Render(m.chapters.View())
	}

	var b strings.Builder
	st := m.state
	b.WriteString(titleStyle.Render(fmt.Sprintf("Manga %d · chapter #%d", st.MangaID, st.ChapterIndex)))
	if st.Read {
		b.WriteString(" " + readStyle.Render("✓ read"))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s · %s", st.Mode, st.Direction)))
	if st.Zoom > 1 {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" · zoom ×%.1f", st.Zoom)))
	}
	b.WriteString("\n\n")

	b.WriteString(PageBar(st))
	b.WriteString("\n")
	if st.PageIndex >= 0 && st.PageIndex < len(m.pages) {
		b.WriteString(dimStyle.Render(m.pages[st.PageIndex].URL))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.screen == screenJump {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(accentStyle.Render(fmt.Sprintf("page %s / %d", orDash(st.PageField), st.PageCount)))
		if !st.HasNextChapter {
			b.WriteString(dimStyle.Render("  (last chapter)"))
		}
	}
	b.WriteString("\n")

	shown := m.notifications
	if len(shown) > maxShownNotifications {
		shown = shown[len(shown)-maxShownNotifications:]
	}
	for _, n := range shown {
		style := dimStyle
		if n.Level == "error" {
			style = errorStyle
		}
		b.WriteString(style.Render("• " + n.Message))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return frameStyle.Render(b.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

const maxBarPages = 40

// PageBar dessine les pages dans l'ordre visuel: en RTL la première page est
// à droite.
func PageBar(st reader.NavigationState) string {
	n := st.PageCount
	if n == 0 {
		return dimStyle.Render("(no pages)")
	}
	if n > maxBarPages {
		return dimStyle.Render(fmt.Sprintf("[%d/%d]", st.PageIndex+1, n))
	}
	cells := make([]string, n)
	for i := 0; i < n; i++ {
		cell := "○"
		if i == st.PageIndex {
			cell = "●"
		}
		cells[st.VisualPosition(i)] = cell
	}
	return strings.Join(cells, " ")
}
