package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/daypass/chat-gateway-go/internal/database"
	"github.com/daypass/chat-gateway-go/internal/model"
)

type AccessSessionRepository interface {
	// AcquireUserLock serializes grants for one user. Deactivate-then-insert
	// alone is not race-safe at READ COMMITTED: two grants starting with no
	// active row both match zero rows on the update and both insert. The
	// advisory lock is transaction-scoped and released on commit or rollback.
	AcquireUserLock(ctx context.Context, userID string) error
	Create(ctx context.Context, params model.CreateAccessSessionParams) (*model.AccessSession, error)
	// FindActiveByUserID returns the most recently expiring session that is
	// both flagged active and not yet past its expiry, or nil.
	FindActiveByUserID(ctx context.Context, userID string, now time.Time) (*model.AccessSession, error)
	ListByUserID(ctx context.Context, userID string) ([]model.AccessSession, error)
	DeactivateAllForUser(ctx context.Context, userID string) (int64, error)
	// DeactivateExpired flips the active flag on rows past their expiry.
	// Rows are superseded, never deleted; history stays queryable.
	DeactivateExpired(ctx context.Context) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) AccessSessionRepository
}

type accessSessionRepo struct {
	db database.DBTX
}

func NewAccessSessionRepository(db *sqlx.DB) AccessSessionRepository {
	return &accessSessionRepo{db: db}
}

func (r *accessSessionRepo) WithTx(tx *sqlx.Tx) AccessSessionRepository {
	return &accessSessionRepo{db: tx}
}

func (r *accessSessionRepo) AcquireUserLock(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID)
	return err
}

func (r *accessSessionRepo) Create(ctx context.Context, params model.CreateAccessSessionParams) (*model.AccessSession, error) {
	var session model.AccessSession
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO access_sessions (id, user_id, payment_reference, active, expires_at)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING *
	`, params.ID, params.UserID, params.PaymentReference, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *accessSessionRepo) FindActiveByUserID(ctx context.Context, userID string, now time.Time) (*model.AccessSession, error) {
	var session model.AccessSession
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM access_sessions
		WHERE user_id = $1
		AND active = TRUE
		AND expires_at > $2
		ORDER BY expires_at DESC
		LIMIT 1
	`, userID, now)
	return HandleNotFound(&session, err)
}

func (r *accessSessionRepo) ListByUserID(ctx context.Context, userID string) ([]model.AccessSession, error) {
	var sessions []model.AccessSession
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM access_sessions
		WHERE user_id = $1
		ORDER BY active DESC, expires_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *accessSessionRepo) DeactivateAllForUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE access_sessions SET
			active = FALSE,
			updated_at = $2
		WHERE user_id = $1 AND active = TRUE
	`, userID, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *accessSessionRepo) DeactivateExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE access_sessions SET
			active = FALSE,
			updated_at = NOW()
		WHERE active = TRUE AND expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
