package games

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"guildmint/internal/crime"
	"guildmint/internal/ledger"
	"guildmint/internal/rng"
)

// Service runs the house-banked games. Bets are escrowed when the game
// starts; settlement credits zero or more back.
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

type bjSession struct {
	ID      string
	Bet     int64
	Deck    []Card
	Player  []Card
	Dealer  []Card
	Doubled bool
}

func (s *Service) StartBlackjack(ctx context.Context, userID string, bet int64, idemKey string) (BlackjackView, error) {
	var out BlackjackView
	if bet < BlackjackMinBet {
		return out, fmt.Errorf("%w: min %d", ErrBetTooSmall, BlackjackMinBet)
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "game:blackjack"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		if err := crime.EnsureNotJailed(ctx, tx, userID); err != nil {
			return err
		}
		var active bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM econ.blackjack_sessions
				WHERE user_id = $1 AND state = 'playing'
			)
		`, userID).Scan(&active); err != nil {
			return err
		}
		if active {
			return ErrSessionActive
		}
		if err := ledger.Debit(ctx, tx, userID, bet, "game:blackjack:bet"); err != nil {
			return err
		}

		deck := ShuffledDeck(s.rand)
		var p1, p2, d1, d2 Card
		p1, deck = drawCard(deck)
		d1, deck = drawCard(deck)
		p2, deck = drawCard(deck)
		d2, deck = drawCard(deck)
		sess := bjSession{
			ID:     uuid.NewString(),
			Bet:    bet,
			Deck:   deck,
			Player: []Card{p1, p2},
			Dealer: []Card{d1, d2},
		}

		if IsNatural(sess.Player) {
			view, err := s.settleTx(ctx, tx, userID, sess, true)
			if err != nil {
				return err
			}
			out = view
			return nil
		}

		if err := insertSession(ctx, tx, userID, sess); err != nil {
			return err
		}
		out = playingView(sess)
		return nil
	})
	return out, err
}

func (s *Service) HitBlackjack(ctx context.Context, userID string) (BlackjackView, error) {
	var out BlackjackView
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sess, err := lockSession(ctx, tx, userID)
		if err != nil {
			return err
		}
		var c Card
		c, sess.Deck = drawCard(sess.Deck)
		sess.Player = append(sess.Player, c)

		if HandValue(sess.Player) > 21 {
			view, err := s.settleTx(ctx, tx, userID, sess, false)
			if err != nil {
				return err
			}
			out = view
			return nil
		}
		if err := updateSession(ctx, tx, sess); err != nil {
			return err
		}
		out = playingView(sess)
		return nil
	})
	return out, err
}

func (s *Service) StandBlackjack(ctx context.Context, userID string) (BlackjackView, error) {
	var out BlackjackView
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sess, err := lockSession(ctx, tx, userID)
		if err != nil {
			return err
		}
		sess.Dealer, sess.Deck = DealerPlay(sess.Dealer, sess.Deck)
		view, err := s.settleTx(ctx, tx, userID, sess, false)
		if err != nil {
			return err
		}
		out = view
		return nil
	})
	return out, err
}

// DoubleBlackjack doubles the escrow, draws exactly one card and stands.
func (s *Service) DoubleBlackjack(ctx context.Context, userID string) (BlackjackView, error) {
	var out BlackjackView
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sess, err := lockSession(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(sess.Player) != 2 || sess.Doubled {
			return ErrCannotDouble
		}
		if err := ledger.Debit(ctx, tx, userID, sess.Bet, "game:blackjack:double"); err != nil {
			return err
		}
		sess.Bet *= 2
		sess.Doubled = true

		var c Card
		c, sess.Deck = drawCard(sess.Deck)
		sess.Player = append(sess.Player, c)

		if HandValue(sess.Player) <= 21 {
			sess.Dealer, sess.Deck = DealerPlay(sess.Dealer, sess.Deck)
		}
		view, err := s.settleTx(ctx, tx, userID, sess, false)
		if err != nil {
			return err
		}
		out = view
		return nil
	})
	return out, err
}

func (s *Service) BlackjackState(ctx context.Context, userID string) (BlackjackView, error) {
	var out BlackjackView
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sess, err := lockSession(ctx, tx, userID)
		if err != nil {
			return err
		}
		out = playingView(sess)
		return nil
	})
	return out, err
}

// SweepSessions refunds escrow on timed-out hands.
func (s *Service) SweepSessions(ctx context.Context) (int, error) {
	rows, err := s.store.Pool().Query(ctx, `
		SELECT user_id
		FROM econ.blackjack_sessions
		WHERE state = 'playing' AND expires_at <= now()
	`)
	if err != nil {
		return 0, err
	}
	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		users = append(users, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	swept := 0
	for _, userID := range users {
		err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			sess, err := lockSession(ctx, tx, userID)
			if err == ErrSessionNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				UPDATE econ.blackjack_sessions SET state = 'expired' WHERE id = $1
			`, sess.ID); err != nil {
				return err
			}
			return ledger.Credit(ctx, tx, userID, sess.Bet, "game:blackjack:refund", false)
		})
		if err != nil {
			s.log.Error("blackjack sweep failed", "user_id", userID, "err", err)
			continue
		}
		swept++
	}
	return swept, nil
}

func (s *Service) PlayPoker(ctx context.Context, userID string, bet int64, idemKey string) (PokerResult, error) {
	var out PokerResult
	if bet < PokerMinBet {
		return out, fmt.Errorf("%w: min %d", ErrBetTooSmall, PokerMinBet)
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "game:poker"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		if err := crime.EnsureNotJailed(ctx, tx, userID); err != nil {
			return err
		}
		if err := ledger.Debit(ctx, tx, userID, bet, "game:poker:bet"); err != nil {
			return err
		}

		deck := ShuffledDeck(s.rand)
		hand := make([]Card, 5)
		for i := range hand {
			hand[i], deck = drawCard(deck)
		}
		rank := EvaluateHand(hand)
		payout := scaleBet(bet, PokerMultiplier(rank))

		out = PokerResult{Hand: labels(hand), Rank: rank.String(), Bet: bet, Payout: payout}
		if payout > 0 {
			if err := ledger.Credit(ctx, tx, userID, payout, "game:poker:payout", payout > bet); err != nil {
				return err
			}
		}
		if err := ledger.RecordGame(ctx, tx, userID, payout > bet); err != nil {
			return err
		}
		balance, err := ledger.LockBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		out.Balance = balance
		return nil
	})
	return out, err
}

func (s *Service) RollDice(ctx context.Context, userID string, bet int64, guess int, idemKey string) (DiceResult, error) {
	var out DiceResult
	if bet < DiceMinBet {
		return out, fmt.Errorf("%w: min %d", ErrBetTooSmall, DiceMinBet)
	}
	if guess < DiceMinGuess || guess > DiceMaxGuess {
		return out, ErrInvalidGuess
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "game:dice"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		if err := crime.EnsureNotJailed(ctx, tx, userID); err != nil {
			return err
		}
		if err := ledger.Debit(ctx, tx, userID, bet, "game:dice:bet"); err != nil {
			return err
		}

		d1 := s.rand.Intn(6) + 1
		d2 := s.rand.Intn(6) + 1
		total := d1 + d2
		payout := scaleBet(bet, DiceMultiplier(guess, total))

		out = DiceResult{Guess: guess, Dice: []int{d1, d2}, Total: total, Bet: bet, Payout: payout}
		if payout > 0 {
			if err := ledger.Credit(ctx, tx, userID, payout, "game:dice:payout", payout > bet); err != nil {
				return err
			}
		}
		return ledger.RecordGame(ctx, tx, userID, payout > bet)
	})
	return out, err
}

func (s *Service) settleTx(ctx context.Context, tx pgx.Tx, userID string, sess bjSession, fresh bool) (BlackjackView, error) {
	credit := SettleBlackjack(sess.Player, sess.Dealer, sess.Bet)
	if fresh {
		if err := insertSession(ctx, tx, userID, sess); err != nil {
			return BlackjackView{}, err
		}
	}
	if err := updateSession(ctx, tx, sess); err != nil {
		return BlackjackView{}, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE econ.blackjack_sessions SET state = 'settled' WHERE id = $1
	`, sess.ID); err != nil {
		return BlackjackView{}, err
	}
	if credit > 0 {
		if err := ledger.Credit(ctx, tx, userID, credit, "game:blackjack:payout", credit > sess.Bet); err != nil {
			return BlackjackView{}, err
		}
	}
	if err := ledger.RecordGame(ctx, tx, userID, credit > sess.Bet); err != nil {
		return BlackjackView{}, err
	}

	view := BlackjackView{
		SessionID:   sess.ID,
		Bet:         sess.Bet,
		Player:      labels(sess.Player),
		PlayerValue: HandValue(sess.Player),
		Dealer:      labels(sess.Dealer),
		DealerValue: HandValue(sess.Dealer),
		State:       "settled",
		Payout:      credit,
	}
	switch {
	case IsNatural(sess.Player) && credit > sess.Bet:
		view.Outcome = "blackjack"
	case credit > sess.Bet:
		view.Outcome = "win"
	case credit == sess.Bet:
		view.Outcome = "push"
	default:
		view.Outcome = "lose"
	}
	return view, nil
}

func playingView(sess bjSession) BlackjackView {
	return BlackjackView{
		SessionID:   sess.ID,
		Bet:         sess.Bet,
		Player:      labels(sess.Player),
		PlayerValue: HandValue(sess.Player),
		Dealer:      labels(sess.Dealer[:1]),
		State:       "playing",
	}
}

func insertSession(ctx context.Context, tx pgx.Tx, userID string, sess bjSession) error {
	deck, player, dealer, err := encodeSession(sess)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO econ.blackjack_sessions (id, user_id, bet, deck, player, dealer, doubled, state, expires_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb, $7, 'playing', $8)
	`, sess.ID, userID, sess.Bet, deck, player, dealer, sess.Doubled, time.Now().Add(sessionTTL))
	return err
}

func updateSession(ctx context.Context, tx pgx.Tx, sess bjSession) error {
	deck, player, dealer, err := encodeSession(sess)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE econ.blackjack_sessions
		SET bet = $1, deck = $2::jsonb, player = $3::jsonb, dealer = $4::jsonb, doubled = $5
		WHERE id = $6
	`, sess.Bet, deck, player, dealer, sess.Doubled, sess.ID)
	return err
}

func lockSession(ctx context.Context, tx pgx.Tx, userID string) (bjSession, error) {
	var sess bjSession
	var deck, player, dealer []byte
	err := tx.QueryRow(ctx, `
		SELECT id, bet, deck, player, dealer, doubled
		FROM econ.blackjack_sessions
		WHERE user_id = $1 AND state = 'playing'
		FOR UPDATE
	`, userID).Scan(&sess.ID, &sess.Bet, &deck, &player, &dealer, &sess.Doubled)
	if err == pgx.ErrNoRows {
		return sess, ErrSessionNotFound
	}
	if err != nil {
		return sess, err
	}
	if err := json.Unmarshal(deck, &sess.Deck); err != nil {
		return sess, fmt.Errorf("decode deck: %w", err)
	}
	if err := json.Unmarshal(player, &sess.Player); err != nil {
		return sess, fmt.Errorf("decode player hand: %w", err)
	}
	if err := json.Unmarshal(dealer, &sess.Dealer); err != nil {
		return sess, fmt.Errorf("decode dealer hand: %w", err)
	}
	return sess, nil
}

func encodeSession(sess bjSession) (deck, player, dealer string, err error) {
	d, err := json.Marshal(sess.Deck)
	if err != nil {
		return "", "", "", err
	}
	p, err := json.Marshal(sess.Player)
	if err != nil {
		return "", "", "", err
	}
	dl, err := json.Marshal(sess.Dealer)
	if err != nil {
		return "", "", "", err
	}
	return string(d), string(p), string(dl), nil
}

func scaleBet(bet int64, multiplier float64) int64 {
	if multiplier <= 0 {
		return 0
	}
	return decimal.NewFromInt(bet).Mul(decimal.NewFromFloat(multiplier)).Floor().IntPart()
}
