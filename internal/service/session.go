package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/daypass/chat-gateway-go/internal/audit"
	apperrors "github.com/daypass/chat-gateway-go/internal/errors"
	"github.com/daypass/chat-gateway-go/internal/database"
	"github.com/daypass/chat-gateway-go/internal/model"
	"github.com/daypass/chat-gateway-go/internal/repository"
)

// txRunner runs a function inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// SessionService is the authority on paid access: it grants time-boxed
// sessions on payment confirmation and answers whether a user is currently
// entitled to spend model-API budget.
type SessionService struct {
	db       txRunner
	sessions repository.AccessSessionRepository
	now      func() time.Time
}

func NewSessionService(db txRunner, sessions repository.AccessSessionRepository) *SessionService {
	return &SessionService{
		db:       db,
		sessions: sessions,
		now:      time.Now,
	}
}

// Grant creates a new active session for the user, atomically deactivating any
// prior active one. Two concurrent grants for one user cannot both stay
// active: the deactivate-then-create step runs in a single transaction, last
// writer wins.
func (s *SessionService) Grant(ctx context.Context, userID, paymentReference string, duration time.Duration) (*model.AccessSession, error) {
	if userID == "" {
		return nil, apperrors.MissingRequired("userId")
	}
	if paymentReference == "" {
		return nil, apperrors.MissingRequired("paymentReference")
	}
	if duration <= 0 {
		return nil, apperrors.InvalidInput("duration", "must be positive")
	}

	now := s.now()
	var created *model.AccessSession

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.sessions.WithTx(tx)

		// Serializes concurrent grants for the user; without it two grants
		// starting from no active row could both commit active rows.
		if err := repo.AcquireUserLock(ctx, userID); err != nil {
			return err
		}

		superseded, err := repo.DeactivateAllForUser(ctx, userID)
		if err != nil {
			return err
		}
		if superseded > 0 {
			log.Info().Str("userId", userID).Int64("superseded", superseded).Msg("deactivated prior sessions")
		}

		created, err = repo.Create(ctx, model.CreateAccessSessionParams{
			ID:               uuid.NewString(),
			UserID:           userID,
			PaymentReference: paymentReference,
			ExpiresAt:        now.Add(duration),
		})
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("grant session failed")
		return nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:   audit.EventSessionGrant,
		UserID: userID,
		Details: map[string]interface{}{
			"sessionId":        created.ID,
			"paymentReference": paymentReference,
		},
	})

	log.Info().
		Str("sessionId", created.ID).
		Str("userId", userID).
		Time("expiresAt", created.ExpiresAt).
		Msg("session granted")

	return created, nil
}

// QueryStatus reports whether the user currently holds an active grant and how
// long it has left. It is side-effect-free.
func (s *SessionService) QueryStatus(ctx context.Context, userID string) (*model.SessionStatus, error) {
	now := s.now()

	session, err := s.sessions.FindActiveByUserID(ctx, userID, now)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	// Expiry is judged by time, not by the stored flag. The query already
	// filters on expires_at, but the store is not trusted to be the only
	// enforcement point.
	if session == nil || session.Expired(now) {
		return &model.SessionStatus{Active: false, Remaining: 0}, nil
	}

	return &model.SessionStatus{
		Active:    true,
		Remaining: session.ExpiresAt.Sub(now),
		SessionID: session.ID,
		ExpiresAt: &session.ExpiresAt,
	}, nil
}

// RequireActive fails closed: no session, an expired session and a storage
// error all deny access. The storage-error case is logged distinctly but
// produces the same caller-visible denial.
func (s *SessionService) RequireActive(ctx context.Context, userID string) error {
	status, err := s.QueryStatus(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("session check failed, denying access")
		return apperrors.NoActiveSession().WithCause(err)
	}

	if !status.Active {
		audit.Log(ctx, audit.Event{Type: audit.EventEntitlementDenied, UserID: userID})
		return apperrors.NoActiveSession()
	}

	return nil
}

// ListSessions returns the user's full grant history, active rows first.
func (s *SessionService) ListSessions(ctx context.Context, userID string) ([]model.AccessSession, error) {
	sessions, err := s.sessions.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return sessions, nil
}
