package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"guildmint/internal/auth"
	"guildmint/internal/bank"
	"guildmint/internal/business"
	"guildmint/internal/config"
	"guildmint/internal/crime"
	"guildmint/internal/games"
	"guildmint/internal/ledger"
	"guildmint/internal/levels"
	"guildmint/internal/perks"
	"guildmint/internal/pvp"
	"guildmint/internal/social"
	"guildmint/internal/stats"
	"guildmint/internal/stocks"
	"guildmint/internal/tourney"
)

// Server wires every domain service behind the HTTP API. Player routes are
// keyed by the X-User-ID header set by the bot gateway; admin routes take a
// bearer token from /v1/auth/login.
type Server struct {
	cfg      config.APIConfig
	log      *slog.Logger
	tokens   *auth.Manager
	store    *ledger.Store
	bank     *bank.Service
	business *business.Service
	crime    *crime.Service
	games    *games.Service
	pvp      *pvp.Service
	social   *social.Service
	stocks   *stocks.Service
	tourney  *tourney.Service
	levels   *levels.Service
	perks    *perks.Service
	stats    *stats.Service
	mux      *chi.Mux
}

type Deps struct {
	Tokens   *auth.Manager
	Store    *ledger.Store
	Bank     *bank.Service
	Business *business.Service
	Crime    *crime.Service
	Games    *games.Service
	PvP      *pvp.Service
	Social   *social.Service
	Stocks   *stocks.Service
	Tourney  *tourney.Service
	Levels   *levels.Service
	Perks    *perks.Service
	Stats    *stats.Service
}

func New(cfg config.APIConfig, logger *slog.Logger, deps Deps) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		tokens:   deps.Tokens,
		store:    deps.Store,
		bank:     deps.Bank,
		business: deps.Business,
		crime:    deps.Crime,
		games:    deps.Games,
		pvp:      deps.PvP,
		social:   deps.Social,
		stocks:   deps.Stocks,
		tourney:  deps.Tourney,
		levels:   deps.Levels,
		perks:    deps.Perks,
		stats:    deps.Stats,
		mux:      chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-User-ID", "Idempotency-Key"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		// Dashboard reads, no identity required.
		r.Get("/stats/server", s.handleServerStats)
		r.Get("/stats/transactions", s.handleTransactions)
		r.Get("/leaderboard/rich", s.handleRichList)
		r.Get("/leaderboard/levels", s.handleLevelLeaderboard)
		r.Get("/leaderboard/duels", s.handleDuelLeaderboard)
		r.Get("/stocks", s.handleStocksList)
		r.Get("/stocks/{symbol}", s.handleStockQuote)
		r.Get("/stocks/{symbol}/history", s.handleStockHistory)
		r.Get("/tournaments", s.handleTournamentsOpen)
		r.Get("/tournaments/history", s.handleTournamentsHistory)
		r.Get("/tournaments/{id}", s.handleTournamentGet)

		// Player routes.
		r.Group(func(r chi.Router) {
			r.Use(s.userMiddleware)

			r.Get("/account", s.handleAccount)
			r.Get("/stats/me", s.handleUserStats)

			r.Post("/bank/deposit", s.handleBankDeposit)
			r.Post("/bank/withdraw", s.handleBankWithdraw)
			r.Post("/bank/loan", s.handleBankLoan)
			r.Post("/bank/repay", s.handleBankRepay)
			r.Get("/bank/statement", s.handleBankStatement)

			r.Post("/crime/rob", s.handleRob)
			r.Post("/crime/commit", s.handleCrimeCommit)
			r.Post("/crime/bail", s.handleBail)
			r.Get("/crime/status", s.handleCrimeStatus)

			r.Post("/businesses", s.handleBusinessBuy)
			r.Get("/businesses", s.handleBusinessPortfolio)
			r.Post("/businesses/{id}/collect", s.handleBusinessCollect)
			r.Post("/businesses/{id}/upgrade", s.handleBusinessUpgrade)
			r.Post("/businesses/{id}/hire", s.handleBusinessHire)
			r.Post("/businesses/{id}/fire", s.handleBusinessFire)
			r.Post("/businesses/{id}/sell", s.handleBusinessSell)

			r.Post("/games/blackjack", s.handleBlackjackStart)
			r.Get("/games/blackjack", s.handleBlackjackState)
			r.Post("/games/blackjack/hit", s.handleBlackjackHit)
			r.Post("/games/blackjack/stand", s.handleBlackjackStand)
			r.Post("/games/blackjack/double", s.handleBlackjackDouble)
			r.Post("/games/poker", s.handlePoker)
			r.Post("/games/dice", s.handleDice)

			r.Post("/duels", s.handleDuelChallenge)
			r.Get("/duels", s.handleDuelsPending)
			r.Get("/duels/stats", s.handleDuelStats)
			r.Post("/duels/{id}/accept", s.handleDuelAccept)
			r.Post("/duels/{id}/decline", s.handleDuelDecline)

			r.Post("/gifts", s.handleGift)
			r.Post("/trades", s.handleTradePropose)
			r.Get("/trades", s.handleTradesPending)
			r.Post("/trades/{id}/accept", s.handleTradeAccept)
			r.Post("/trades/{id}/cancel", s.handleTradeCancel)

			r.Post("/stocks/{symbol}/buy", s.handleStockBuy)
			r.Post("/stocks/{symbol}/sell", s.handleStockSell)
			r.Get("/portfolio", s.handleStockPortfolio)

			r.Post("/tournaments", s.handleTournamentCreate)
			r.Post("/tournaments/{id}/join", s.handleTournamentJoin)
			r.Post("/tournaments/{id}/start", s.handleTournamentStart)
			r.Post("/tournaments/{id}/cancel", s.handleTournamentCancel)

			r.Post("/xp/message", s.handleXPMessage)
			r.Post("/xp/reaction", s.handleXPReaction)
			r.Post("/xp/voice", s.handleXPVoice)
			r.Post("/daily", s.handleDaily)
			r.Get("/level", s.handleLevel)

			r.Post("/prestige", s.handlePrestige)
			r.Post("/boosters", s.handleBoosterBuy)
			r.Post("/titles/buy", s.handleTitleBuy)
			r.Post("/titles/equip", s.handleTitleEquip)
			r.Get("/perks", s.handlePerksProfile)
		})

		// Admin routes.
		r.Group(func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Post("/admin/grant", s.handleAdminGrant)
			r.Post("/admin/release", s.handleAdminRelease)
			r.Post("/admin/server-booster", s.handleAdminServerBooster)
		})
	})
}

func (s *Server) userMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get("X-User-ID")) == "" {
			writeError(w, http.StatusBadRequest, "missing X-User-ID header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if err := s.tokens.Verify(token); err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := s.tokens.Login(in.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrDuplicateIdempotency),
		errors.Is(err, ledger.ErrTxConflict),
		errors.Is(err, games.ErrSessionActive),
		errors.Is(err, pvp.ErrDuelPending),
		errors.Is(err, bank.ErrLoanOutstanding),
		errors.Is(err, tourney.ErrAlreadyJoined),
		errors.Is(err, tourney.ErrFull),
		errors.Is(err, tourney.ErrAlreadyOpen),
		errors.Is(err, perks.ErrBoosterActive),
		errors.Is(err, perks.ErrTitleOwned),
		errors.Is(err, crime.ErrRobCooldown),
		errors.Is(err, levels.ErrDailyClaimed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, crime.ErrJailed),
		errors.Is(err, pvp.ErrNotYourDuel),
		errors.Is(err, social.ErrNotYourTrade),
		errors.Is(err, tourney.ErrNotHost),
		errors.Is(err, business.ErrLevelGated),
		errors.Is(err, perks.ErrTitleLevelGated),
		errors.Is(err, perks.ErrLevelTooLow):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, games.ErrSessionNotFound),
		errors.Is(err, pvp.ErrDuelNotFound),
		errors.Is(err, social.ErrTradeNotFound),
		errors.Is(err, tourney.ErrNotFound),
		errors.Is(err, stocks.ErrUnknownSymbol),
		errors.Is(err, stocks.ErrPositionMissing),
		errors.Is(err, business.ErrNotOwner),
		errors.Is(err, bank.ErrNoLoan),
		errors.Is(err, crime.ErrNotJailed),
		errors.Is(err, perks.ErrTitleNotOwned):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, bank.ErrInsufficientDeposit),
		errors.Is(err, bank.ErrLoanTooLarge),
		errors.Is(err, stocks.ErrNotEnoughShares),
		errors.Is(err, stocks.ErrBadShareCount),
		errors.Is(err, games.ErrBetTooSmall),
		errors.Is(err, games.ErrInvalidGuess),
		errors.Is(err, games.ErrCannotDouble),
		errors.Is(err, pvp.ErrBetTooSmall),
		errors.Is(err, pvp.ErrSelfDuel),
		errors.Is(err, social.ErrSelfGift),
		errors.Is(err, social.ErrSelfTrade),
		errors.Is(err, social.ErrGiftTooSmall),
		errors.Is(err, social.ErrTradeEmpty),
		errors.Is(err, crime.ErrSelfTarget),
		errors.Is(err, crime.ErrVictimTooPoor),
		errors.Is(err, crime.ErrUnknownTier),
		errors.Is(err, business.ErrUnknownKind),
		errors.Is(err, business.ErrTooMany),
		errors.Is(err, business.ErrMaxLevel),
		errors.Is(err, business.ErrMaxEmployees),
		errors.Is(err, business.ErrNoEmployees),
		errors.Is(err, business.ErrNothingToCollect),
		errors.Is(err, tourney.ErrBadPlayerCap),
		errors.Is(err, tourney.ErrBadEntryFee),
		errors.Is(err, tourney.ErrNotEnoughPlayer),
		errors.Is(err, perks.ErrInvalidBooster),
		errors.Is(err, perks.ErrTitleUnknown):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
