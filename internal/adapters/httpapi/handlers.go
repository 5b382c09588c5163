package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/buildinfo"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/httpjson"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
)

const defaultRequestTimeout = 30 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, buildinfo.Current())
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	logger.Info().
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func mangaIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "mangaId"))
	if err != nil || id <= 0 {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid manga id")
		return 0, false
	}
	return id, true
}

// writeServiceError traduit les erreurs des services en statut HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrSessionNotFound), errors.Is(err, app.ErrNotFound):
		httpjson.WriteError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, reader.ErrDetached):
		httpjson.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	var coded *app.CodedError
	if errors.As(err, &coded) {
		status := http.StatusInternalServerError
		switch coded.Code {
		case "invalid_input":
			status = http.StatusBadRequest
		case "source_unavailable", "tracker_unavailable":
			status = http.StatusBadGateway
		}
		httpjson.WriteCodedError(w, status, coded.Code, coded.Error())
		return
	}

	hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
}
