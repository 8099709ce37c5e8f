// Package api serves the recorder's HTTP routes: live hand sessions, the
// saved hand archive, share codes and home games.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"holdem-recorder/apps/server/internal/codec"
	"holdem-recorder/apps/server/internal/session"
	"holdem-recorder/apps/server/internal/store"
	"holdem-recorder/history"
	"holdem-recorder/holdem"
	"holdem-recorder/homegame"
	"holdem-recorder/locale"
)

const storeTimeout = 5 * time.Second

type Server struct {
	sessions    *session.Registry
	store       store.Store
	ws          http.HandlerFunc
	defaultLang string
	log         *logrus.Entry
	now         func() time.Time

	// gamesMu serializes read-modify-write of home games.
	gamesMu sync.Mutex
}

type Options struct {
	Sessions    *session.Registry
	Store       store.Store
	// Websocket serves /ws/hands/{id} when set.
	Websocket   http.HandlerFunc
	DefaultLang string
	Log         *logrus.Entry
}

func NewServer(opts Options) *Server {
	return &Server{
		sessions:    opts.Sessions,
		store:       opts.Store,
		ws:          opts.Websocket,
		defaultLang: locale.Lookup(opts.DefaultLang).Code(),
		log:         opts.Log.WithField("component", "api"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.ws != nil {
		r.Get("/ws/hands/{id}", s.ws)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/languages", s.handleLanguages)

		r.Route("/hands", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Put("/title", s.handleSetTitle)
				r.Post("/seats", s.handleSitDown)
				r.Delete("/seats/{position}", s.handleStandUp)
				r.Put("/seats/{position}/stack", s.handleSetStack)
				r.Put("/seats/{position}/cards", s.handleSetHoleCards)
				r.Put("/straddle", s.handleSetStraddle)
				r.Put("/board/{street}", s.handleSetBoard)
				r.Post("/actions", s.handleAppendAction)
				r.Post("/undo", s.handleUndo)
				r.Post("/new", s.handleNewHand)
				r.Get("/spec", s.handleExportSpec)
				r.Get("/transcript", s.handleSessionTranscript)
				r.Get("/share", s.handleSessionShareCode)
				r.Post("/record", s.handleRecordSession)
			})
		})

		r.Post("/replay", s.handleReplay)
		r.Get("/share/{code}", s.handleDecodeShareCode)
		r.Post("/share/{code}/open", s.handleOpenShareCode)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.handleListRecords)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRecord)
				r.Delete("/", s.handleDeleteRecord)
				r.Put("/saved", s.handleSetSaved)
				r.Get("/transcript", s.handleRecordTranscript)
				r.Post("/open", s.handleOpenRecord)
			})
		})

		r.Route("/games", func(r chi.Router) {
			r.Post("/", s.handleCreateGame)
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Post("/players", s.handleAddPlayer)
				r.Post("/players/{name}/rebuy", s.handleRebuy)
				r.Post("/players/{name}/cashout", s.handleCashOut)
				r.Delete("/players/{name}/cashout", s.handleUndoCashOut)
			})
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).Round(time.Microsecond),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":   s.defaultLang,
		"languages": locale.Languages(),
	})
}

// bundleFor picks the language from ?lang=, then Accept-Language, then the
// server default.
func (s *Server) bundleFor(r *http.Request) *locale.Bundle {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return locale.Lookup(lang)
	}
	if accept := r.Header.Get("Accept-Language"); strings.TrimSpace(accept) != "" {
		return locale.Match(accept)
	}
	return locale.Lookup(s.defaultLang)
}

type errorResponse struct {
	Error   string               `json:"error"`
	Message string               `json:"message,omitempty"`
	Replay  *history.ReplayError `json:"replay,omitempty"`
}

var notFoundErrors = []error{
	session.ErrNotFound,
	store.ErrNotFound,
	holdem.ErrUnknownPlayer,
	homegame.ErrUnknownPlayer,
}

var conflictErrors = []error{
	holdem.ErrOutOfTurn,
	holdem.ErrStaleQuery,
	holdem.ErrHandInProgress,
	holdem.ErrPositionTaken,
	holdem.ErrTableNotReady,
	holdem.ErrIllegalRemoval,
	holdem.ErrDuplicateCard,
	store.ErrSavedLimitReach,
	homegame.ErrPlayerExists,
	homegame.ErrAlreadyCashedOut,
	errNothingToUndo,
}

var badRequestErrors = []error{
	holdem.ErrInvalidAction,
	holdem.ErrAmountOutOfRange,
	holdem.ErrInvalidBoard,
	holdem.ErrStraddleNotEligible,
	codec.ErrInvalidCards,
	homegame.ErrInvalidCode,
	homegame.ErrInvalidName,
	homegame.ErrInvalidAmount,
	errBadRequest,
}

var (
	errBadRequest    = errors.New("invalid request body")
	errNothingToUndo = errors.New("no action to undo")
)

func statusFor(err error, fallback int) int {
	var replayErr *history.ReplayError
	if errors.As(err, &replayErr) {
		return http.StatusUnprocessableEntity
	}
	var stateErr holdem.InvalidStateError
	if errors.As(err, &stateErr) {
		return http.StatusConflict
	}
	for _, group := range []struct {
		status int
		errs   []error
	}{
		{http.StatusNotFound, notFoundErrors},
		{http.StatusConflict, conflictErrors},
		{http.StatusBadRequest, badRequestErrors},
	} {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return fallback
}

// writeFailure maps err onto a status. fallback covers errors no sentinel
// matches: 400 for hand commands, 500 for storage.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	status := statusFor(err, fallback)
	resp := errorResponse{Error: err.Error()}
	b := s.bundleFor(r)
	switch status {
	case http.StatusNotFound:
		resp.Message = b.T("error.not_found")
	case http.StatusConflict:
		resp.Message = b.T("error.conflict")
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		resp.Message = b.T("error.invalid_request")
	}
	errors.As(err, &resp.Replay)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		resp.Error = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 20
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
