package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"cutline/internal/session"
	"cutline/internal/timeline"
)

const maxCommandBytes = 8 << 20

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/document", documentHandler(cfg))
	r.Get("/clips/{id}", clipHandler(cfg))
	r.Post("/commands", commandHandler(cfg))
	r.Post("/undo", shortcutHandler(cfg, timeline.Undo{}))
	r.Post("/redo", shortcutHandler(cfg, timeline.Redo{}))
	r.Get("/history", historyHandler(cfg))
	r.Get("/journal", journalHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := cfg.Version
		if version == "" {
			version = "dev"
		}
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Version:   version,
			UptimeS:   int64(time.Since(cfg.StartTime).Seconds()),
			SessionID: cfg.Session.ID(),
		})
	}
}

func documentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := cfg.Session.Document(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, doc)
	}
}

func clipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		doc, err := cfg.Session.Document(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		ti, ci, ok := doc.FindClip(id)
		if !ok {
			WriteError(w, http.StatusNotFound, "clip "+strconv.Quote(id)+" not found", string(timeline.KindNotFound))
			return
		}
		WriteJSON(w, http.StatusOK, ClipResponse{TrackID: doc.Tracks[ti].ID, Clip: doc.Tracks[ti].Clips[ci]})
	}
}

func commandHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBytes))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "read request body: "+err.Error(), "BAD_REQUEST")
			return
		}
		var env timeline.Envelope
		if err := json.Unmarshal(body, &env); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		dispatch(cfg, w, r, env.Command)
	}
}

func shortcutHandler(cfg ServerConfig, cmd timeline.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dispatch(cfg, w, r, cmd)
	}
}

func dispatch(cfg ServerConfig, w http.ResponseWriter, r *http.Request, cmd timeline.Command) {
	doc, err := cfg.Session.Dispatch(r.Context(), cmd)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

func historyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := cfg.Session.Document(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, HistoryToResponse(doc.History, time.Now()))
	}
}

func journalHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Journal == nil {
			WriteError(w, http.StatusServiceUnavailable, "journal is disabled", "UNAVAILABLE")
			return
		}
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer", "BAD_REQUEST")
				return
			}
			limit = n
		}
		records, err := cfg.Journal.List(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to read journal", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, JournalToResponse(records, time.Now()))
	}
}

// StatusFor maps an engine error to an HTTP status.
func StatusFor(err error) int {
	switch timeline.KindOf(err) {
	case timeline.KindNotFound:
		return http.StatusNotFound
	case timeline.KindTypeMismatch, timeline.KindInvalidArgument:
		return http.StatusBadRequest
	case timeline.KindDuplicateID, timeline.KindInvariantViolation:
		return http.StatusConflict
	}
	switch {
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

func writeEngineError(w http.ResponseWriter, err error) {
	code := string(timeline.KindOf(err))
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	WriteError(w, StatusFor(err), err.Error(), code)
}
