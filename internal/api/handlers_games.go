package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleBlackjackStart(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Bet int64 `json:"bet"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.games.StartBlackjack(r.Context(), userID(r), in.Bet, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBlackjackState(w http.ResponseWriter, r *http.Request) {
	out, err := s.games.BlackjackState(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBlackjackHit(w http.ResponseWriter, r *http.Request) {
	out, err := s.games.HitBlackjack(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBlackjackStand(w http.ResponseWriter, r *http.Request) {
	out, err := s.games.StandBlackjack(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBlackjackDouble(w http.ResponseWriter, r *http.Request) {
	out, err := s.games.DoubleBlackjack(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePoker(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Bet int64 `json:"bet"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.games.PlayPoker(r.Context(), userID(r), in.Bet, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Bet   int64 `json:"bet"`
		Guess int   `json:"guess"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.games.RollDice(r.Context(), userID(r), in.Bet, in.Guess, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDuelChallenge(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Opponent string `json:"opponent"`
		Bet      int64  `json:"bet"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.pvp.Challenge(r.Context(), userID(r), in.Opponent, in.Bet, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleDuelsPending(w http.ResponseWriter, r *http.Request) {
	out, err := s.pvp.Pending(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"duels": out})
}

func (s *Server) handleDuelAccept(w http.ResponseWriter, r *http.Request) {
	out, err := s.pvp.Accept(r.Context(), userID(r), chi.URLParam(r, "id"), idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDuelDecline(w http.ResponseWriter, r *http.Request) {
	if err := s.pvp.Decline(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDuelStats(w http.ResponseWriter, r *http.Request) {
	out, err := s.pvp.StatsFor(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStocksList(w http.ResponseWriter, r *http.Request) {
	out, err := s.stocks.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": out})
}

func (s *Server) handleStockQuote(w http.ResponseWriter, r *http.Request) {
	out, err := s.stocks.Quote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := s.stocks.History(r.Context(), chi.URLParam(r, "symbol"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": out})
}

func (s *Server) handleStockBuy(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Shares int64 `json:"shares"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.stocks.Buy(r.Context(), userID(r), chi.URLParam(r, "symbol"), in.Shares, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStockSell(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Shares int64 `json:"shares"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.stocks.Sell(r.Context(), userID(r), chi.URLParam(r, "symbol"), in.Shares, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStockPortfolio(w http.ResponseWriter, r *http.Request) {
	out, err := s.stocks.PortfolioFor(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTournamentCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name       string `json:"name"`
		EntryFee   int64  `json:"entry_fee"`
		MaxPlayers int    `json:"max_players"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.tourney.Create(r.Context(), userID(r), in.Name, in.EntryFee, in.MaxPlayers, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleTournamentsOpen(w http.ResponseWriter, r *http.Request) {
	out, err := s.tourney.Open(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tournaments": out})
}

func (s *Server) handleTournamentsHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := s.tourney.History(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tournaments": out})
}

func (s *Server) handleTournamentGet(w http.ResponseWriter, r *http.Request) {
	out, err := s.tourney.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTournamentJoin(w http.ResponseWriter, r *http.Request) {
	out, err := s.tourney.Join(r.Context(), userID(r), chi.URLParam(r, "id"), idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTournamentStart(w http.ResponseWriter, r *http.Request) {
	out, err := s.tourney.Start(r.Context(), userID(r), chi.URLParam(r, "id"), idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTournamentCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.tourney.Cancel(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
