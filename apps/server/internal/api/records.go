package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"holdem-recorder/apps/server/internal/codec"
	"holdem-recorder/history"
	"holdem-recorder/holdem"
)

type replayResponse struct {
	Spec       history.HandSpec `json:"spec"`
	View       holdem.View      `json:"view"`
	Transcript string           `json:"transcript"`
	ShareCode  string           `json:"share_code,omitempty"`
}

func (s *Server) replayResult(r *http.Request, spec history.HandSpec, h *holdem.Hand) replayResponse {
	resp := replayResponse{
		Spec:       history.Export(h, spec.Title),
		View:       h.View(),
		Transcript: history.Transcript(h, spec.Title, s.bundleFor(r)),
	}
	if code, err := history.EncodeShareCode(resp.Spec); err == nil {
		resp.ShareCode = code
	}
	return resp
}

// handleReplay checks a spec without opening a session.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, s.replayResult(r, spec, h))
}

func (s *Server) decodeShareParam(w http.ResponseWriter, r *http.Request) (history.HandSpec, *holdem.Hand, bool) {
	spec, err := history.DecodeShareCode(chi.URLParam(r, "code"))
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return history.HandSpec{}, nil, false
	}
	h, err := history.Build(spec)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return history.HandSpec{}, nil, false
	}
	return spec, h, true
}

func (s *Server) handleDecodeShareCode(w http.ResponseWriter, r *http.Request) {
	spec, h, ok := s.decodeShareParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.replayResult(r, spec, h))
}

// handleOpenShareCode opens a shared hand as a new session.
func (s *Server) handleOpenShareCode(w http.ResponseWriter, r *http.Request) {
	spec, h, ok := s.decodeShareParam(w, r)
	if !ok {
		return
	}
	sess := s.sessions.Add(h, spec.Title)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	items, err := s.store.ListRecent(ctx, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	rec, err := s.store.GetHand(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	if err := s.store.DeleteHand(ctx, chi.URLParam(r, "id")); err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetSaved(w http.ResponseWriter, r *http.Request) {
	var req codec.SavedRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	if err := s.store.SetSaved(ctx, id, req.Saved); err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       id,
		"is_saved": req.Saved,
	})
}

// recordHand loads a stored record and rebuilds its hand.
func (s *Server) recordHand(w http.ResponseWriter, r *http.Request) (history.HandSpec, *holdem.Hand, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	rec, err := s.store.GetHand(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return history.HandSpec{}, nil, false
	}
	h, err := history.Build(rec.Spec)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return history.HandSpec{}, nil, false
	}
	return rec.Spec, h, true
}

func (s *Server) handleRecordTranscript(w http.ResponseWriter, r *http.Request) {
	spec, h, ok := s.recordHand(w, r)
	if !ok {
		return
	}
	writeText(w, http.StatusOK, history.Transcript(h, spec.Title, s.bundleFor(r)))
}

func (s *Server) handleOpenRecord(w http.ResponseWriter, r *http.Request) {
	spec, h, ok := s.recordHand(w, r)
	if !ok {
		return
	}
	sess := s.sessions.Add(h, spec.Title)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}
