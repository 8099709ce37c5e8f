package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"holdem-recorder/apps/server/internal/codec"
	"holdem-recorder/apps/server/internal/session"
	"holdem-recorder/apps/server/internal/store"
	"holdem-recorder/history"
	"holdem-recorder/holdem"
)

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// applyCommand runs fn on the session's hand and answers with the new view.
func (s *Server) applyCommand(w http.ResponseWriter, r *http.Request, fn func(h *holdem.Hand) error) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	snap, err := sess.Apply(fn)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.sessions.List()})
}

// handleCreateSession opens a hand from a spec. The spec may already carry
// actions, which are replayed.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var spec history.HandSpec
	if err := decodeJSON(r, &spec); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	h, err := history.Build(spec)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	sess := s.sessions.Add(h, spec.Title)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeFailure(w, r, err, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req codec.TitleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.SetTitle(req.Title))
}

func (s *Server) handleSitDown(w http.ResponseWriter, r *http.Request) {
	var req codec.SeatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	p, err := req.ToPlayer()
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyCommand(w, r, func(h *holdem.Hand) error { return h.SitDown(p) })
}

func positionParam(r *http.Request) (holdem.Position, error) {
	return holdem.ParsePosition(chi.URLParam(r, "position"))
}

func (s *Server) handleStandUp(w http.ResponseWriter, r *http.Request) {
	pos, err := positionParam(r)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyCommand(w, r, func(h *holdem.Hand) error { return h.StandUp(pos) })
}

func (s *Server) handleSetStack(w http.ResponseWriter, r *http.Request) {
	pos, err := positionParam(r)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	var req codec.StackRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyCommand(w, r, func(h *holdem.Hand) error { return h.SetStack(pos, req.Stack) })
}

func (s *Server) handleSetHoleCards(w http.ResponseWriter, r *http.Request) {
	pos, err := positionParam(r)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	var req codec.CardsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	cards, err := codec.ParseCards(req.Cards)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyCommand(w, r, func(h *holdem.Hand) error { return h.SetHoleCards(pos, cards) })
}

func (s *Server) handleSetStraddle(w http.ResponseWriter, r *http.Request) {
	var req codec.StraddleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyCommand(w, r, func(h *holdem.Hand) error { return h.SetStraddle(req.Amount) })
}

func (s *Server) handleSetBoard(w http.ResponseWriter, r *http.Request) {
	street, err := holdem.ParseStreet(chi.URLParam(r, "street"))
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	var req codec.CardsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	cards, err := codec.ParseCards(req.Cards)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyCommand(w, r, func(h *holdem.Hand) error { return h.SetBoard(street, cards) })
}

type actionResponse struct {
	Action holdem.Action    `json:"action"`
	Hand   session.Snapshot `json:"hand"`
}

func (s *Server) handleAppendAction(w http.ResponseWriter, r *http.Request) {
	var req codec.ActionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var recorded holdem.Action
	snap, err := sess.Apply(func(h *holdem.Hand) error {
		street, a, err := req.ToAction(h.CurrentStreet())
		if err != nil {
			return err
		}
		recorded, err = h.AppendAction(street, a)
		return err
	})
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Action: recorded, Hand: snap})
}

// handleUndo drops the last recorded action by replaying everything before it.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	snap, err := sess.Rebuild(func(cur *holdem.Hand, title string) (*holdem.Hand, error) {
		spec := history.Export(cur, title)
		if len(spec.Actions) == 0 {
			return nil, errNothingToUndo
		}
		spec.Actions = spec.Actions[:len(spec.Actions)-1]
		return history.Build(spec)
	})
	if err != nil {
		s.writeFailure(w, r, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleNewHand(w http.ResponseWriter, r *http.Request) {
	// an empty body resets stacks
	var req codec.NewHandRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyCommand(w, r, func(h *holdem.Hand) error {
		h.NewHand(req.PreserveSeats)
		return nil
	})
}

func (s *Server) handleExportSpec(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var spec history.HandSpec
	sess.Read(func(h *holdem.Hand, title string) { spec = history.Export(h, title) })
	writeJSON(w, http.StatusOK, spec)
}

func (s *Server) handleSessionTranscript(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	b := s.bundleFor(r)
	var text string
	sess.Read(func(h *holdem.Hand, title string) { text = history.Transcript(h, title, b) })
	writeText(w, http.StatusOK, text)
}

func (s *Server) handleSessionShareCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var spec history.HandSpec
	sess.Read(func(h *holdem.Hand, title string) { spec = history.Export(h, title) })
	code, err := history.EncodeShareCode(spec)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": code})
}

// handleRecordSession stores the session's hand in the archive.
func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var (
		rec store.HandRecord
		err error
	)
	sess.Read(func(h *holdem.Hand, title string) {
		rec, err = store.NewRecord(uuid.NewString(), title, h, s.now())
	})
	if err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	if err := s.store.PutHand(ctx, rec); err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	s.log.WithFields(logrus.Fields{"session": sess.ID, "record": rec.ID}).Info("hand recorded")
	writeJSON(w, http.StatusCreated, rec)
}
