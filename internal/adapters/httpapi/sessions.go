package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/httpjson"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
)

type SessionsHandler struct {
	reading *app.ReadingService
}

func NewSessionsHandler(reading *app.ReadingService) *SessionsHandler {
	return &SessionsHandler{reading: reading}
}

func (h *SessionsHandler) Routes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.open)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.close)
		r.Get("/{id}/pages", h.pages)
		r.Get("/{id}/chapters", h.chapters)
		r.Post("/{id}/controls", h.control)
		r.Post("/{id}/keys", h.key)
		r.Post("/{id}/chapter-controls", h.chapterControl)
		r.Post("/{id}/page", h.jumpToPage)
		r.Post("/{id}/chapter", h.selectChapter)
		r.Post("/{id}/visibility", h.visibility)
		r.Post("/{id}/wheel", h.wheel)
	})
}

type openSessionRequest struct {
	MangaID      int `json:"mangaId"`
	ChapterIndex int `json:"chapterIndex"`
}

type controlRequest struct {
	Control string `json:"control"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type pageRequest struct {
	Input  string `json:"input"`
	Origin string `json:"origin"`
}

type chapterRequest struct {
	Index  int    `json:"index"`
	Origin string `json:"origin"`
}

type visibilityRequest struct {
	Index  int     `json:"index"`
	Ratio  float64 `json:"ratio"`
	Origin string  `json:"origin"`
}

type wheelRequest struct {
	DeltaY float64 `json:"deltaY"`
}

// acceptedResponse indique si une saisie a été prise en compte.
type acceptedResponse struct {
	Accepted bool           `json:"accepted"`
	Session  app.SessionDTO `json:"session"`
}

type wheelResponse struct {
	Zoom    float64        `json:"zoom"`
	Session app.SessionDTO `json:"session"`
}

type pagesResponse struct {
	SessionID string           `json:"sessionId"`
	Pages     []domain.PageRef `json:"pages"`
}

func (h *SessionsHandler) open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.reading.Open(r.Context(), req.MangaID, req.ChapterIndex)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	dto, err := sess.Snapshot()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, dto)
}

func (h *SessionsHandler) list(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.reading.List())
}

func (h *SessionsHandler) session(w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	sess, err := h.reading.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	dto, err := sess.Snapshot()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, dto)
}

func (h *SessionsHandler) close(w http.ResponseWriter, r *http.Request) {
	if err := h.reading.Close(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) pages(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var pages []domain.PageRef
	if _, err := sess.Do(r.Context(), func(c *reader.Controller) error {
		pages = c.Reader().Pages()
		return nil
	}); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, pagesResponse{SessionID: sess.ID, Pages: pages})
}

func (h *SessionsHandler) chapters(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var list []domain.Chapter
	if _, err := sess.Do(r.Context(), func(c *reader.Controller) error {
		var err error
		if list, err = c.Chapters(r.Context()); err != nil && err != reader.ErrDetached {
			return &app.CodedError{Code: "source_unavailable", Message: "list chapters", Err: err}
		}
		return err
	}); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// do applique fn et renvoie l'état de la session.
func (h *SessionsHandler) do(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, c *reader.Controller) error) (app.SessionDTO, bool) {
	sess, ok := h.session(w, r)
	if !ok {
		return app.SessionDTO{}, false
	}
	dto, err := sess.Do(r.Context(), func(c *reader.Controller) error { return fn(r.Context(), c) })
	if err != nil {
		writeServiceError(w, r, err)
		return app.SessionDTO{}, false
	}
	return dto, true
}

func (h *SessionsHandler) control(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctl, err := reader.ParseControl(req.Control)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	dto, ok := h.do(w, r, func(_ context.Context, c *reader.Controller) error { return c.Press(ctl) })
	if ok {
		httpjson.Write(w, http.StatusOK, dto)
	}
}

func (h *SessionsHandler) key(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	k, err := reader.ParseKey(req.Key)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	dto, ok := h.do(w, r, func(_ context.Context, c *reader.Controller) error { return c.Key(k) })
	if ok {
		httpjson.Write(w, http.StatusOK, dto)
	}
}

func (h *SessionsHandler) chapterControl(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctl, err := reader.ParseControl(req.Control)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	dto, ok := h.do(w, r, func(_ context.Context, c *reader.Controller) error { return c.StepChapter(ctl) })
	if ok {
		httpjson.Write(w, http.StatusOK, dto)
	}
}

// jumpToPage répond 200 même si la saisie est refusée: le champ de page
// renvoyé reprend alors sa valeur précédente.
func (h *SessionsHandler) jumpToPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var accepted bool
	dto, ok := h.do(w, r, func(_ context.Context, c *reader.Controller) error {
		var err error
		accepted, err = c.JumpToPage(req.Input, originOrUser(req.Origin))
		return err
	})
	if ok {
		httpjson.Write(w, http.StatusOK, acceptedResponse{Accepted: accepted, Session: dto})
	}
}

func (h *SessionsHandler) selectChapter(w http.ResponseWriter, r *http.Request) {
	var req chapterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var accepted bool
	dto, ok := h.do(w, r, func(ctx context.Context, c *reader.Controller) error {
		var err error
		accepted, err = c.SelectChapter(ctx, req.Index, originOrUser(req.Origin))
		return err
	})
	if ok {
		httpjson.Write(w, http.StatusOK, acceptedResponse{Accepted: accepted, Session: dto})
	}
}

func (h *SessionsHandler) visibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Ratio < 0 || req.Ratio > 1 {
		httpjson.WriteError(w, http.StatusBadRequest, "ratio must be within [0, 1]")
		return
	}
	v := reader.Visibility{Index: req.Index, Ratio: req.Ratio, Origin: originOrUser(req.Origin)}
	dto, ok := h.do(w, r, func(_ context.Context, c *reader.Controller) error { return c.Observe(v) })
	if ok {
		httpjson.Write(w, http.StatusOK, dto)
	}
}

func (h *SessionsHandler) wheel(w http.ResponseWriter, r *http.Request) {
	var req wheelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var zoom float64
	dto, ok := h.do(w, r, func(_ context.Context, c *reader.Controller) error {
		var err error
		zoom, err = c.Wheel(req.DeltaY)
		return err
	})
	if ok {
		httpjson.Write(w, http.StatusOK, wheelResponse{Zoom: zoom, Session: dto})
	}
}

// Un client HTTP agit pour l'utilisateur sauf s'il dit le contraire.
func originOrUser(s string) reader.Origin {
	if s == "" {
		return reader.OriginUser
	}
	return reader.ParseOrigin(s)
}
