package model

import (
	"time"
)

// AccessSession is one paid, time-boxed access grant. Grants are superseded,
// never deleted: buying a new session deactivates the previous row and inserts
// a fresh one, so the table keeps the full purchase history per user.
type AccessSession struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"userId"`
	PaymentReference string    `db:"payment_reference" json:"paymentReference"`
	Active           bool      `db:"active" json:"active"`
	ExpiresAt        time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// Expired reports whether the grant is past its expiry, regardless of the
// stored active flag. Expiry is a function of time, not only of the flag.
func (s *AccessSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type CreateAccessSessionParams struct {
	ID               string
	UserID           string
	PaymentReference string
	ExpiresAt        time.Time
}

// SessionStatus is the side-effect-free answer to "does this user currently
// have paid access, and for how much longer."
type SessionStatus struct {
	Active    bool          `json:"active"`
	Remaining time.Duration `json:"-"`
	SessionID string        `json:"sessionId,omitempty"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
}
