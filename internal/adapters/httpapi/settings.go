package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/httpjson"
)

type SettingsHandler struct {
	settings *app.SettingsService
}

func NewSettingsHandler(settings *app.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Routes(r chi.Router) {
	r.Get("/settings/reader", h.getDefault)
	r.Put("/settings/reader", h.putDefault)
	// Variante avec slash final (utile selon reverse-proxy / clients).
	r.Get("/settings/reader/", h.getDefault)
	r.Put("/settings/reader/", h.putDefault)

	r.Get("/mangas/{mangaId}/reader-settings", h.getManga)
	r.Put("/mangas/{mangaId}/reader-settings", h.putManga)
	r.Delete("/mangas/{mangaId}/reader-settings", h.deleteManga)
}

func (h *SettingsHandler) getDefault(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Default(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, s)
}

// putDefault accepte ?fromManga=<id>: le lecteur de ce manga ne suit le
// nouveau défaut que s'il n'a pas de surcharge.
func (h *SettingsHandler) putDefault(w http.ResponseWriter, r *http.Request) {
	var s domain.ReaderSettings
	if !decodeJSON(w, r, &s) {
		return
	}
	from := 0
	if raw := r.URL.Query().Get("fromManga"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 0 {
			httpjson.WriteError(w, http.StatusBadRequest, "invalid fromManga")
			return
		}
		from = id
	}
	updated, err := h.settings.SaveDefault(r.Context(), from, s)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

func (h *SettingsHandler) getManga(w http.ResponseWriter, r *http.Request) {
	id, ok := mangaIDParam(w, r)
	if !ok {
		return
	}
	dto, err := h.settings.ForManga(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, dto)
}

func (h *SettingsHandler) putManga(w http.ResponseWriter, r *http.Request) {
	id, ok := mangaIDParam(w, r)
	if !ok {
		return
	}
	var s domain.ReaderSettings
	if !decodeJSON(w, r, &s) {
		return
	}
	dto, err := h.settings.SaveForManga(r.Context(), id, s)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, dto)
}

func (h *SettingsHandler) deleteManga(w http.ResponseWriter, r *http.Request) {
	id, ok := mangaIDParam(w, r)
	if !ok {
		return
	}
	dto, err := h.settings.ClearForManga(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, dto)
}
