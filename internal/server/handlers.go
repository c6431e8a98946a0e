package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dyike/QuantumGPT/internal/storage"
	"github.com/dyike/QuantumGPT/models"
)

func (s *Server) strategy(w http.ResponseWriter, r *http.Request) {
	var req models.StrategyRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	res, err := s.backend.Suggest(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) screener(w http.ResponseWriter, r *http.Request) {
	var req models.ScreenerRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	res, err := s.backend.Screen(r.Context(), req)
	if err != nil {
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			err = fmt.Errorf("%w: could not screen cryptocurrencies: %v", errUpstream, err)
		}
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type symbolBody struct {
	Symbol string `json:"symbol"`
}

func (s *Server) listWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := s.backend.Watchlist().List(r.Context(), clientID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbols": list})
}

func (s *Server) addWatchlist(w http.ResponseWriter, r *http.Request) {
	var body symbolBody
	if err := decode(r, &body); err != nil {
		writeErr(w, err)
		return
	}
	list, err := s.backend.Watchlist().Add(r.Context(), clientID(r), body.Symbol)
	if errors.Is(err, storage.ErrAlreadyExists) {
		writeError(w, http.StatusConflict, fmt.Sprintf("%s is already in your watchlist", body.Symbol))
		return
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"symbols": list})
}

func (s *Server) removeWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	list, err := s.backend.Watchlist().Remove(r.Context(), clientID(r), symbol)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s is not in your watchlist", symbol))
		return
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbols": list})
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	list, err := s.backend.Alerts().List(r.Context(), clientID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": list})
}

func (s *Server) createAlert(w http.ResponseWriter, r *http.Request) {
	var in models.AlertInput
	if err := decode(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	al, err := s.backend.Alerts().Create(r.Context(), clientID(r), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, al)
}

func (s *Server) updateAlert(w http.ResponseWriter, r *http.Request) {
	var in models.AlertInput
	if err := decode(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	al, err := s.backend.Alerts().Update(r.Context(), clientID(r), r.PathValue("id"), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, al)
}

func (s *Server) setAlertActive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsActive *bool `json:"isActive"`
	}
	if err := decode(r, &body); err != nil {
		writeErr(w, err)
		return
	}
	if body.IsActive == nil {
		var v models.ValidationError
		v.Add("isActive", "isActive is required")
		writeErr(w, &v)
		return
	}
	al, err := s.backend.Alerts().SetActive(r.Context(), clientID(r), r.PathValue("id"), *body.IsActive)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, al)
}

func (s *Server) removeAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Alerts().Remove(r.Context(), clientID(r), r.PathValue("id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Alert removed"})
}

func (s *Server) overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Board().Overview(r.Context()))
}

func (s *Server) trending(w http.ResponseWriter, r *http.Request) {
	coins, err := s.backend.Board().Trending(r.Context())
	if err != nil {
		writeErr(w, fmt.Errorf("%w: %v", errUpstream, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"coins": coins})
}

// snapshot returns the lookup result; JSON null means the symbol is unknown.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.backend.Board().Snapshot(r.Context(), r.PathValue("symbol"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
