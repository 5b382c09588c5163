package reader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/rs/zerolog"
)

// ErrDetached est renvoyée par toute opération sur un Controller fermé.
var ErrDetached = errors.New("reader detached")

// Control est un bouton physique de la vue.
type Control int

const (
	ControlLeft Control = iota
	ControlRight
)

func (c Control) String() string {
	if c == ControlRight {
		return "right"
	}
	return "left"
}

func ParseControl(s string) (Control, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return ControlLeft, nil
	case "right":
		return ControlRight, nil
	}
	return 0, fmt.Errorf("unknown control %q", s)
}

type Key int

const (
	KeyArrowLeft Key = iota
	KeyArrowRight
)

func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrowleft", "left":
		return KeyArrowLeft, nil
	case "arrowright", "right":
		return KeyArrowRight, nil
	}
	return 0, fmt.Errorf("unknown key %q", s)
}

// Movement est la sémantique d'un contrôle une fois la direction appliquée.
type Movement int

const (
	Retreat Movement = iota
	Advance
)

// MovementFor donne la sémantique d'un contrôle: en LTR la droite avance,
// en RTL elle recule.
func MovementFor(d domain.ReaderDirection, c Control) Movement {
	right := c == ControlRight
	if d == domain.DirectionRTL {
		right = !right
	}
	if right {
		return Advance
	}
	return Retreat
}

type NavigationState struct {
	MangaID        int                    `json:"mangaId"`
	ChapterID      int                    `json:"chapterId"`
	ChapterIndex   int                    `json:"chapterIndex"`
	PageIndex      int                    `json:"pageIndex"`
	PageCount      int                    `json:"pageCount"`
	HasNextChapter bool                   `json:"hasNextChapter"`
	Direction      domain.ReaderDirection `json:"direction"`
	Mode           domain.ReaderMode      `json:"mode"`
	PageField      string                 `json:"pageField"`
	Zoom           float64                `json:"zoom,omitempty"`
	Read           bool                   `json:"read"`
}

// VisualPosition place la page index à l'écran, 0 étant le bord gauche.
// Seul le mode paginé RTL inverse l'ordre; la bande reste verticale.
func (s NavigationState) VisualPosition(index int) int {
	return visualPosition(s.PageCount, index, s.Direction == domain.DirectionRTL && s.Mode != domain.ModeStrip)
}

type Options struct {
	Chapter  domain.Chapter
	Chapters ports.ChapterSource
	Pages    ports.PageSource
	BaseURL  string

	Navigator    ports.Navigator
	Settings     *DirectionAdapter
	Synchronizer *Synchronizer
	Viewport     Viewport

	// Schedule exécute une réaction à un changement de réglages sur la boucle
	// d'événements de l'hôte. Par défaut la réaction est exécutée sur place.
	Schedule func(func())

	Logger zerolog.Logger
}

// Controller pilote un lecteur pour un chapitre et décide des passages de
// chapitre. Il n'est pas thread-safe.
type Controller struct {
	logger   zerolog.Logger
	opts     Options
	chapter  domain.Chapter
	hasNext  bool
	settings domain.ReaderSettings

	reader    Reader
	readerReg Registration
	binding   *Binding
	settReg   Registration

	pageField string
	closed    bool
}

type restorer interface {
	restore(index int)
}

type zoomer interface {
	Wheel(deltaY float64) float64
	Zoom() float64
}

type observer interface {
	Observe(v Visibility)
}

// NewController charge le chapitre. Un échec de la source de pages annule la
// construction.
func NewController(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Chapters == nil || opts.Pages == nil || opts.Navigator == nil || opts.Settings == nil {
		return nil, errors.New("reader: incomplete controller options")
	}
	ch := opts.Chapter
	c := &Controller{
		logger:  opts.Logger.With().Int("manga_id", ch.MangaID).Int("chapter_index", ch.Index).Logger(),
		opts:    opts,
		chapter: ch,
	}

	s, err := opts.Settings.Resolve(ctx, ch.MangaID)
	if err != nil {
		return nil, fmt.Errorf("resolve reader settings: %w", err)
	}
	c.settings = s
	c.hasNext = c.probe(ctx, ch.Index+1)

	r := c.newReader(s)
	if opts.Synchronizer != nil {
		c.binding = opts.Synchronizer.Attach(ctx, r, ch)
	}
	c.readerReg = r.OnPageIndexChange(c.onPageIndexChange)
	c.reader = r
	if err := r.LoadChapter(ctx); err != nil {
		c.detach()
		return nil, err
	}
	c.pageField = c.fieldFor(r.PageIndex())
	c.settReg = opts.Settings.Subscribe(c.onSettingsChange)
	return c, nil
}

// probe vérifie l'existence d'un chapitre. Un échec vaut absence.
func (c *Controller) probe(ctx context.Context, index int) bool {
	if index < 1 {
		return false
	}
	_, err := c.opts.Chapters.Chapter(ctx, c.chapter.MangaID, index)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			c.logger.Debug().Err(err).Int("index", index).Msg("chapter probe failed")
		}
		return false
	}
	return true
}

func (c *Controller) newReader(s domain.ReaderSettings) Reader {
	return NewReader(s.Mode, Config{
		Chapter:   c.chapter,
		Pages:     c.opts.Pages,
		BaseURL:   c.opts.BaseURL,
		Direction: s.Direction,
		Viewport:  c.opts.Viewport,
		Logger:    c.opts.Logger,
	})
}

func (c *Controller) fieldFor(index int) string {
	if index < 0 {
		index = 0
	}
	return strconv.Itoa(index + 1)
}

func (c *Controller) onPageIndexChange(e PageIndexChange) {
	c.pageField = c.fieldFor(e.Index)
}

func (c *Controller) State() NavigationState {
	st := NavigationState{
		MangaID:        c.chapter.MangaID,
		ChapterID:      c.chapter.ID,
		ChapterIndex:   c.chapter.Index,
		HasNextChapter: c.hasNext,
		Direction:      c.settings.Direction,
		Mode:           c.settings.Mode,
		PageField:      c.pageField,
	}
	if c.reader != nil {
		st.PageIndex = c.reader.PageIndex()
		st.PageCount = c.reader.PageCount()
		st.Direction = c.reader.Direction()
		if z, ok := c.reader.(zoomer); ok {
			st.Zoom = z.Zoom()
		}
	}
	if c.binding != nil {
		st.Read = c.binding.Read()
	}
	return st
}

func (c *Controller) Chapter() domain.Chapter { return c.chapter }

func (c *Controller) Reader() Reader { return c.reader }

func (c *Controller) Binding() *Binding { return c.binding }

func (c *Controller) HasNextChapter() bool { return c.hasNext }

func (c *Controller) Settings() domain.ReaderSettings { return c.settings }

// PageField est la valeur affichée dans le champ de saisie de page (1-based).
func (c *Controller) PageField() string { return c.pageField }

// Advance passe à la page suivante, ou au chapitre suivant depuis la dernière page.
func (c *Controller) Advance() error {
	if c.closed {
		return ErrDetached
	}
	r := c.reader
	if r.PageIndex() != r.PageCount()-1 {
		r.MoveToNextPage()
		return nil
	}
	if c.hasNext {
		c.route(c.chapter.Index + 1)
	}
	return nil
}

// Retreat passe à la page précédente, ou au chapitre précédent depuis la première page.
func (c *Controller) Retreat() error {
	if c.closed {
		return ErrDetached
	}
	r := c.reader
	if r.PageIndex() != 0 {
		// -1 (bande pas encore observée): MoveToPreviousPage est sans effet.
		r.MoveToPreviousPage()
		return nil
	}
	if c.chapter.Index > 1 {
		c.route(c.chapter.Index - 1)
	}
	return nil
}

func (c *Controller) route(index int) {
	c.logger.Debug().Int("to", index).Msg("route to chapter")
	c.opts.Navigator.NavigateTo(c.chapter.MangaID, index)
}

func (c *Controller) Press(ctl Control) error {
	if c.closed {
		return ErrDetached
	}
	if MovementFor(c.reader.Direction(), ctl) == Advance {
		return c.Advance()
	}
	return c.Retreat()
}

// Key applique un raccourci clavier: chaque flèche actionne le bouton du
// même côté.
func (c *Controller) Key(k Key) error {
	if k == KeyArrowRight {
		return c.Press(ControlRight)
	}
	return c.Press(ControlLeft)
}

// StepChapter actionne les boutons de chapitre de la barre latérale.
func (c *Controller) StepChapter(ctl Control) error {
	if c.closed {
		return ErrDetached
	}
	if MovementFor(c.reader.Direction(), ctl) == Advance {
		if c.hasNext {
			c.route(c.chapter.Index + 1)
		}
		return nil
	}
	if c.chapter.Index > 1 {
		c.route(c.chapter.Index - 1)
	}
	return nil
}

// JumpToPage traite une saisie dans le champ de page. Une saisie vide, non
// numérique, hors de [1, PageCount] ou égale à la page courante est refusée
// et le champ reprend sa valeur précédente.
func (c *Controller) JumpToPage(input string, origin Origin) (bool, error) {
	if c.closed {
		return false, ErrDetached
	}
	if origin != OriginUser {
		return false, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || value < 1 || value > c.reader.PageCount() || value-1 == c.reader.PageIndex() {
		c.logger.Debug().Str("input", input).Msg("page jump rejected")
		return false, nil
	}
	c.reader.MoveToPage(value - 1)
	c.pageField = strconv.Itoa(value)
	return true, nil
}

// SelectChapter route vers le chapitre choisi dans la liste.
func (c *Controller) SelectChapter(ctx context.Context, index int, origin Origin) (bool, error) {
	if c.closed {
		return false, ErrDetached
	}
	if origin != OriginUser || index == c.chapter.Index {
		return false, nil
	}
	if !c.probe(ctx, index) {
		return false, nil
	}
	c.route(index)
	return true, nil
}

func (c *Controller) Chapters(ctx context.Context) ([]domain.Chapter, error) {
	if c.closed {
		return nil, ErrDetached
	}
	return c.opts.Chapters.Chapters(ctx, c.chapter.MangaID)
}

// Wheel transmet la molette au lecteur paginé; renvoie le zoom courant.
func (c *Controller) Wheel(deltaY float64) (float64, error) {
	if c.closed {
		return 0, ErrDetached
	}
	z, ok := c.reader.(zoomer)
	if !ok {
		return 0, nil
	}
	return z.Wheel(deltaY), nil
}

// Observe transmet un rapport de visibilité au lecteur en bande continue.
func (c *Controller) Observe(v Visibility) error {
	if c.closed {
		return ErrDetached
	}
	if o, ok := c.reader.(observer); ok {
		o.Observe(v)
	}
	return nil
}

func (c *Controller) onSettingsChange(change SettingsChange) {
	if !change.AppliesTo(c.chapter.MangaID) {
		return
	}
	apply := func() {
		if c.closed {
			return
		}
		s := change.Settings
		if change.Scope == ScopeDefault {
			resolved, err := c.opts.Settings.Resolve(context.Background(), c.chapter.MangaID)
			if err != nil {
				c.logger.Warn().Err(err).Msg("resolve reader settings failed")
				return
			}
			s = resolved
		}
		c.applySettings(mustSettings(s))
	}
	if c.opts.Schedule != nil {
		c.opts.Schedule(apply)
		return
	}
	apply()
}

func (c *Controller) applySettings(s domain.ReaderSettings) {
	if s.Mode != c.reader.Mode() {
		if err := c.swap(s); err != nil {
			c.logger.Error().Err(err).Str("mode", string(s.Mode)).Msg("reader swap failed")
			return
		}
	} else if s.Direction != c.reader.Direction() {
		c.reader.SetDirection(s.Direction)
	}
	c.settings = s
}

// swap remplace le lecteur par l'autre variante en gardant la page courante.
func (c *Controller) swap(s domain.ReaderSettings) error {
	index := c.reader.PageIndex()
	next := c.newReader(s)
	if err := next.LoadChapter(context.Background()); err != nil {
		return err
	}
	if index >= 0 {
		if rs, ok := next.(restorer); ok {
			rs.restore(index)
		} else {
			next.MoveToPage(index)
		}
	}

	c.readerReg.Unregister()
	c.reader = next
	c.readerReg = next.OnPageIndexChange(c.onPageIndexChange)
	if c.binding != nil {
		c.binding.Rebind(next)
	}
	c.logger.Info().Str("mode", string(s.Mode)).Int("page", index).Msg("reader swapped")
	return nil
}

func (c *Controller) detach() {
	c.readerReg.Unregister()
	c.settReg.Unregister()
	if c.binding != nil {
		c.binding.Detach()
	}
}

// Close détache le contrôleur de ses abonnements. Idempotent.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.detach()
}
