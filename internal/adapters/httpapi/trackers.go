package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/httpjson"
)

type TrackersHandler struct {
	tracking *app.TrackingService
	anilist  *app.AniListTracker
}

func NewTrackersHandler(tracking *app.TrackingService, anilist *app.AniListTracker) *TrackersHandler {
	return &TrackersHandler{tracking: tracking, anilist: anilist}
}

func (h *TrackersHandler) Routes(r chi.Router) {
	r.Get("/mangas/{mangaId}/tracker", h.get)
	r.Put("/mangas/{mangaId}/tracker", h.put)
	r.Post("/mangas/{mangaId}/tracker/sync", h.sync)
	r.Get("/trackers/anilist/viewer", h.viewer)
}

func (h *TrackersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := mangaIDParam(w, r)
	if !ok {
		return
	}
	t, err := h.tracking.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, t)
}

func (h *TrackersHandler) put(w http.ResponseWriter, r *http.Request) {
	id, ok := mangaIDParam(w, r)
	if !ok {
		return
	}
	var t domain.Tracker
	if !decodeJSON(w, r, &t) {
		return
	}
	t.MangaID = id
	saved, err := h.tracking.Put(r.Context(), t)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, saved)
}

// sync répond 202: l'envoi aux trackers se fait en tâche de fond.
func (h *TrackersHandler) sync(w http.ResponseWriter, r *http.Request) {
	id, ok := mangaIDParam(w, r)
	if !ok {
		return
	}
	res, err := h.tracking.Sync(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Accepted {
		status = http.StatusAccepted
	}
	httpjson.Write(w, status, res)
}

func (h *TrackersHandler) viewer(w http.ResponseWriter, r *http.Request) {
	if h.anilist == nil {
		httpjson.WriteError(w, http.StatusNotImplemented, "anilist disabled")
		return
	}
	viewer, err := h.anilist.Viewer(r.Context())
	if err != nil {
		if errors.Is(err, app.ErrAniListNotConfigured) {
			httpjson.WriteError(w, http.StatusBadRequest, "anilist not configured (set MANGAREAD_ANILIST_TOKEN)")
			return
		}
		httpjson.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, viewer)
}
