package tourney

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"guildmint/internal/crime"
	"guildmint/internal/ledger"
	"guildmint/internal/rng"
)

// Service runs entry-fee tournaments: the pot collects fees, a coin-flip
// bracket decides standings, and the top places split the pot.
type Service struct {
	store *ledger.Store
	log   *slog.Logger
	rand  *rng.Rand
}

func NewService(store *ledger.Store, logger *slog.Logger, rand *rng.Rand) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, log: logger, rand: rand}
}

// Create opens a tournament and enters the host, collecting their fee.
func (s *Service) Create(ctx context.Context, host, name string, entryFee int64, maxPlayers int, idemKey string) (Tournament, error) {
	var out Tournament
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return out, ErrBadPlayerCap
	}
	if entryFee <= 0 {
		return out, ErrBadEntryFee
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, host, idemKey, "tourney:create"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, host); err != nil {
			return err
		}
		if err := crime.EnsureNotJailed(ctx, tx, host); err != nil {
			return err
		}
		// One tournament runs at a time; a partial unique index backs this up.
		var open bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM econ.tournaments WHERE state = 'open')
		`).Scan(&open); err != nil {
			return err
		}
		if open {
			return ErrAlreadyOpen
		}
		if err := ledger.Debit(ctx, tx, host, entryFee, "tourney:entry"); err != nil {
			return err
		}
		out = Tournament{
			ID:         uuid.NewString(),
			Host:       host,
			Name:       name,
			EntryFee:   entryFee,
			MaxPlayers: maxPlayers,
			Pot:        entryFee,
			State:      "open",
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO econ.tournaments (id, host, name, entry_fee, max_players, pot, state)
			VALUES ($1, $2, $3, $4, $5, $6, 'open')
		`, out.ID, host, name, entryFee, maxPlayers, entryFee); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO econ.tournament_players (tournament_id, user_id) VALUES ($1, $2)
		`, out.ID, host)
		return err
	})
	return out, err
}

func (s *Service) Join(ctx context.Context, userID, tournamentID, idemKey string) (Tournament, error) {
	var out Tournament
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "tourney:join"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		if err := crime.EnsureNotJailed(ctx, tx, userID); err != nil {
			return err
		}
		t, err := lockTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		players, err := listPlayers(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		for _, p := range players {
			if p.UserID == userID {
				return ErrAlreadyJoined
			}
		}
		if len(players) >= t.MaxPlayers {
			return ErrFull
		}
		if err := ledger.Debit(ctx, tx, userID, t.EntryFee, "tourney:entry"); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO econ.tournament_players (tournament_id, user_id) VALUES ($1, $2)
		`, tournamentID, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.tournaments SET pot = pot + $1 WHERE id = $2
		`, t.EntryFee, tournamentID); err != nil {
			return err
		}
		t.Pot += t.EntryFee
		t.Players = append(players, Player{UserID: userID})
		out = t
		return nil
	})
	return out, err
}

// Start runs the bracket and pays out the pot. Host only.
func (s *Service) Start(ctx context.Context, host, tournamentID, idemKey string) (Tournament, error) {
	var out Tournament
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, host, idemKey, "tourney:start"); err != nil {
			return err
		}
		t, err := lockTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if t.Host != host {
			return ErrNotHost
		}
		players, err := listPlayers(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if len(players) < MinPlayers {
			return ErrNotEnoughPlayer
		}

		ids := make([]string, len(players))
		for i, p := range players {
			ids[i] = p.UserID
		}
		standings := RunBracket(ids, s.rand)
		payouts := Payouts(t.Pot, len(standings))

		t.Players = t.Players[:0]
		for place, userID := range standings {
			var payout int64
			if place < len(payouts) {
				payout = payouts[place]
			}
			if payout > 0 {
				if err := ledger.Credit(ctx, tx, userID, payout, "tourney:payout", true); err != nil {
					return err
				}
			}
			if _, err := tx.Exec(ctx, `
				UPDATE econ.tournament_players
				SET place = $1, payout = $2
				WHERE tournament_id = $3 AND user_id = $4
			`, place+1, payout, tournamentID, userID); err != nil {
				return err
			}
			t.Players = append(t.Players, Player{UserID: userID, Place: place + 1, Payout: payout})
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.tournaments SET state = 'finished', finished_at = now() WHERE id = $1
		`, tournamentID); err != nil {
			return err
		}
		t.State = "finished"
		out = t
		return nil
	})
	return out, err
}

// Cancel refunds every entry fee. Host only.
func (s *Service) Cancel(ctx context.Context, host, tournamentID string) error {
	return s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		t, err := lockTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if t.Host != host {
			return ErrNotHost
		}
		players, err := listPlayers(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		for _, p := range players {
			if err := ledger.Credit(ctx, tx, p.UserID, t.EntryFee, "tourney:refund", false); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `
			UPDATE econ.tournaments SET state = 'cancelled' WHERE id = $1
		`, tournamentID)
		return err
	})
}

func (s *Service) Open(ctx context.Context) ([]Tournament, error) {
	return s.list(ctx, `
		SELECT id, host, name, entry_fee, max_players, pot, state, created_at
		FROM econ.tournaments WHERE state = 'open' ORDER BY created_at
	`)
}

func (s *Service) History(ctx context.Context, limit int) ([]Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.list(ctx, `
		SELECT id, host, name, entry_fee, max_players, pot, state, created_at
		FROM econ.tournaments WHERE state <> 'open'
		ORDER BY finished_at DESC NULLS LAST, created_at DESC
		LIMIT $1
	`, limit)
}

func (s *Service) Get(ctx context.Context, tournamentID string) (Tournament, error) {
	var t Tournament
	err := s.store.Pool().QueryRow(ctx, `
		SELECT id, host, name, entry_fee, max_players, pot, state, created_at
		FROM econ.tournaments WHERE id = $1
	`, tournamentID).Scan(&t.ID, &t.Host, &t.Name, &t.EntryFee, &t.MaxPlayers, &t.Pot, &t.State, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	rows, err := s.store.Pool().Query(ctx, `
		SELECT user_id, COALESCE(place, 0), payout
		FROM econ.tournament_players
		WHERE tournament_id = $1
		ORDER BY place NULLS LAST, joined_at
	`, tournamentID)
	if err != nil {
		return t, err
	}
	defer rows.Close()
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.UserID, &p.Place, &p.Payout); err != nil {
			return t, err
		}
		t.Players = append(t.Players, p)
	}
	return t, rows.Err()
}

func (s *Service) list(ctx context.Context, query string, args ...any) ([]Tournament, error) {
	rows, err := s.store.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Tournament
	for rows.Next() {
		var t Tournament
		if err := rows.Scan(&t.ID, &t.Host, &t.Name, &t.EntryFee, &t.MaxPlayers, &t.Pot, &t.State, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func lockTournament(ctx context.Context, tx pgx.Tx, tournamentID string) (Tournament, error) {
	var t Tournament
	err := tx.QueryRow(ctx, `
		SELECT id, host, name, entry_fee, max_players, pot, state, created_at
		FROM econ.tournaments
		WHERE id = $1 AND state = 'open'
		FOR UPDATE
	`, tournamentID).Scan(&t.ID, &t.Host, &t.Name, &t.EntryFee, &t.MaxPlayers, &t.Pot, &t.State, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return t, ErrNotFound
	}
	return t, err
}

func listPlayers(ctx context.Context, tx pgx.Tx, tournamentID string) ([]Player, error) {
	rows, err := tx.Query(ctx, `
		SELECT user_id FROM econ.tournament_players
		WHERE tournament_id = $1
		ORDER BY joined_at
	`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.UserID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
