package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"holdem-recorder/apps/server/internal/codec"
	"holdem-recorder/homegame"
)

type gameResponse struct {
	*homegame.Game
	Results     []homegame.Result `json:"results"`
	BankBalance decimal.Decimal   `json:"bank_balance"`
	Settled     bool              `json:"settled"`
}

func newGameResponse(g *homegame.Game) gameResponse {
	return gameResponse{
		Game:        g,
		Results:     g.Results(),
		BankBalance: g.BankBalance(),
		Settled:     g.Settled(),
	}
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	g, err := homegame.New(s.now())
	if err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	if err := s.store.PutGame(ctx, g); err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	s.log.WithField("game", g.Code).Info("home game created")
	writeJSON(w, http.StatusCreated, newGameResponse(g))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	code, err := homegame.NormalizeCode(chi.URLParam(r, "code"))
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	g, err := s.store.GetGame(ctx, code)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, newGameResponse(g))
}

// updateGame loads, mutates and stores a game under gamesMu. Errors from fn
// are client errors; storage errors are server errors.
func (s *Server) updateGame(w http.ResponseWriter, r *http.Request, fn func(g *homegame.Game) error) {
	code, err := homegame.NormalizeCode(chi.URLParam(r, "code"))
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	g, err := s.store.GetGame(ctx, code)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	if err := fn(g); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.store.PutGame(ctx, g); err != nil {
		s.writeFailure(w, r, err, http.StatusInternalServerError)
		return
	}
	s.log.WithFields(logrus.Fields{"game": g.Code, "bank": g.BankBalance().String()}).Debug("home game updated")
	writeJSON(w, http.StatusOK, newGameResponse(g))
}

func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req codec.AddPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	amount, err := homegame.ParseAmount(req.Amount)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return
	}
	s.updateGame(w, r, func(g *homegame.Game) error {
		return g.AddPlayer(req.Name, amount, s.now())
	})
}

func (s *Server) decodeAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req codec.AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return decimal.Zero, false
	}
	amount, err := homegame.ParseAmount(req.Amount)
	if err != nil {
		s.writeFailure(w, r, err, http.StatusBadRequest)
		return decimal.Zero, false
	}
	return amount, true
}

func (s *Server) handleRebuy(w http.ResponseWriter, r *http.Request) {
	amount, ok := s.decodeAmount(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	s.updateGame(w, r, func(g *homegame.Game) error {
		return g.Rebuy(name, amount, s.now())
	})
}

func (s *Server) handleCashOut(w http.ResponseWriter, r *http.Request) {
	amount, ok := s.decodeAmount(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	s.updateGame(w, r, func(g *homegame.Game) error { return g.CashOut(name, amount) })
}

func (s *Server) handleUndoCashOut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.updateGame(w, r, func(g *homegame.Game) error { return g.UndoCashOut(name) })
}
