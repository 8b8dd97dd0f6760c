package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"minebet/game"
	"minebet/models"
)

// defaultLockWait bounds how long a session operation waits for the
// per-user lock before giving up with ErrContention.
const defaultLockWait = 2 * time.Second

// sessionService keeps live game sessions in memory, at most one per
// user. All operations on a user's session are serialized through a
// per-user lock so concurrent taps cannot interleave reveals.
type sessionService struct {
	ledger   LedgerService
	engine   GameEngine
	minStake int64
	lockWait time.Duration

	mu       sync.Mutex
	sessions map[int64]*models.GameSession
	locks    map[int64]chan struct{}
}

// NewSessionService creates a new session service backed by the given
// ledger and game engine.
func NewSessionService(ledger LedgerService, engine GameEngine, minStake int64) SessionService {
	return &sessionService{
		ledger:   ledger,
		engine:   engine,
		minStake: minStake,
		lockWait: defaultLockWait,
		sessions: make(map[int64]*models.GameSession),
		locks:    make(map[int64]chan struct{}),
	}
}

// acquire takes the per-user lock, waiting at most lockWait.
func (s *sessionService) acquire(ctx context.Context, userID int64) (release func(), err error) {
	s.mu.Lock()
	ch, ok := s.locks[userID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[userID] = ch
	}
	s.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-time.After(s.lockWait):
		return nil, fmt.Errorf("session for user %d is busy: %w", userID, models.ErrContention)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *sessionService) getSession(userID int64) (*models.GameSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	return session, ok
}

func (s *sessionService) putSession(session *models.GameSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
}

func (s *sessionService) dropSession(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// StartGame debits the stake and creates a fresh session. The debit and
// the loss on a mine are the same money movement; a lost game needs no
// further balance change.
func (s *sessionService) StartGame(ctx context.Context, userID int64, stake int64) (*StartResult, error) {
	if stake < s.minStake {
		return nil, fmt.Errorf("stake %d below minimum %d: %w", stake, s.minStake, models.ErrInvalidAmount)
	}

	release, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, ok := s.getSession(userID); ok {
		return nil, fmt.Errorf("user %d already has a game running: %w", userID, models.ErrSessionActive)
	}

	newBalance, err := s.ledger.AdjustBalance(ctx, userID, -stake, models.EntryTypeGameStake, map[string]any{
		"stake": stake,
	})
	if err != nil {
		return nil, err
	}

	session := &models.GameSession{
		UserID:    userID,
		Mines:     s.engine.NewBoard(),
		Stake:     stake,
		StartedAt: time.Now(),
	}
	s.putSession(session)

	log.WithFields(log.Fields{
		"userID": userID,
		"stake":  stake,
	}).Info("game started")

	return &StartResult{
		Stake:      stake,
		NewBalance: newBalance,
		Board:      s.engine.RenderBoard(nil, session.Mines, false),
	}, nil
}

// Reveal opens a tile in the user's live session. Hitting a mine ends
// the game with the stake already gone; a safe tile reports the running
// multiplier and potential payout.
func (s *sessionService) Reveal(ctx context.Context, userID int64, tile int) (*RevealResult, error) {
	release, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, ok := s.getSession(userID)
	if !ok {
		return nil, fmt.Errorf("user %d has no game running: %w", userID, models.ErrNoSession)
	}

	outcome, err := s.engine.Reveal(session, tile)
	if err != nil {
		return nil, err
	}

	if outcome == game.OutcomeMine {
		s.dropSession(userID)

		balance, err := s.ledger.GetBalance(ctx, userID)
		if err != nil {
			// The game is over either way; the balance is display-only here.
			log.WithError(err).WithField("userID", userID).Warn("failed to read balance after loss")
			balance = 0
		}

		log.WithFields(log.Fields{
			"userID": userID,
			"stake":  session.Stake,
			"tile":   tile,
		}).Info("game lost")

		return &RevealResult{
			GameOver: true,
			Balance:  balance,
			Board:    s.engine.RenderBoard(session.Opened, session.Mines, true),
		}, nil
	}

	mult := s.engine.Multiplier(session.RevealCount)
	return &RevealResult{
		TilesOpened: session.RevealCount,
		Multiplier:  mult,
		Potential:   s.engine.Payout(session.Stake, session.RevealCount),
		Board:       s.engine.RenderBoard(session.Opened, session.Mines, false),
	}, nil
}

// Cashout credits stake x multiplier for the tiles opened so far and
// destroys the session.
func (s *sessionService) Cashout(ctx context.Context, userID int64) (*CashoutResult, error) {
	release, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, ok := s.getSession(userID)
	if !ok {
		return nil, fmt.Errorf("user %d has no game running: %w", userID, models.ErrNoSession)
	}

	payout := s.engine.Payout(session.Stake, session.RevealCount)
	newBalance, err := s.ledger.AdjustBalance(ctx, userID, payout, models.EntryTypeGamePayout, map[string]any{
		"stake":        session.Stake,
		"tiles_opened": session.RevealCount,
	})
	if err != nil {
		// Keep the session so the user can retry the cashout.
		return nil, fmt.Errorf("failed to credit payout: %w", err)
	}
	s.dropSession(userID)

	log.WithFields(log.Fields{
		"userID":      userID,
		"stake":       session.Stake,
		"tilesOpened": session.RevealCount,
		"payout":      payout,
	}).Info("game cashed out")

	return &CashoutResult{
		TilesOpened: session.RevealCount,
		Multiplier:  s.engine.Multiplier(session.RevealCount),
		Payout:      payout,
		NewBalance:  newBalance,
		Board:       s.engine.RenderBoard(session.Opened, session.Mines, true),
	}, nil
}

// Abandon discards the session without any payout. The stake stays
// debited.
func (s *sessionService) Abandon(ctx context.Context, userID int64) error {
	release, err := s.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := s.getSession(userID); !ok {
		return fmt.Errorf("user %d has no game running: %w", userID, models.ErrNoSession)
	}
	s.dropSession(userID)

	log.WithField("userID", userID).Info("game abandoned")
	return nil
}

// ActiveSession returns a copy of the user's live session, if any. The
// copy keeps callers from mutating session state outside the lock.
func (s *sessionService) ActiveSession(userID int64) (*models.GameSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}

	clone := *session
	clone.Mines = append([]int(nil), session.Mines...)
	clone.Opened = append([]int(nil), session.Opened...)
	if session.ForcedTile != nil {
		ft := *session.ForcedTile
		clone.ForcedTile = &ft
	}
	return &clone, true
}
