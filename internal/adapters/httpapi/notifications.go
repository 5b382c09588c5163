package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/httpjson"
)

type NotificationsHandler struct {
	center *app.NotificationCenter
}

func NewNotificationsHandler(center *app.NotificationCenter) *NotificationsHandler {
	return &NotificationsHandler{center: center}
}

func (h *NotificationsHandler) Routes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.list)
		r.Delete("/{id}", h.dismiss)
	})
}

func (h *NotificationsHandler) list(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.center.List())
}

func (h *NotificationsHandler) dismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.center.Dismiss(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
