package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/daypass/chat-gateway-go/internal/database"
	"github.com/daypass/chat-gateway-go/internal/gate"
	"github.com/daypass/chat-gateway-go/internal/model"
	"github.com/daypass/chat-gateway-go/internal/ratelimit"
	"github.com/daypass/chat-gateway-go/internal/repository"
	"github.com/daypass/chat-gateway-go/internal/sanitize"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

type mockAccessSessionRepo struct {
	activeSession *model.AccessSession
	sessions      []model.AccessSession
	created       []model.CreateAccessSessionParams
	deactivated   []string
}

func (m *mockAccessSessionRepo) AcquireUserLock(ctx context.Context, userID string) error {
	return nil
}

func (m *mockAccessSessionRepo) Create(ctx context.Context, params model.CreateAccessSessionParams) (*model.AccessSession, error) {
	m.created = append(m.created, params)
	return &model.AccessSession{
		ID:               params.ID,
		UserID:           params.UserID,
		PaymentReference: params.PaymentReference,
		Active:           true,
		ExpiresAt:        params.ExpiresAt,
	}, nil
}

func (m *mockAccessSessionRepo) FindActiveByUserID(ctx context.Context, userID string, now time.Time) (*model.AccessSession, error) {
	return m.activeSession, nil
}

func (m *mockAccessSessionRepo) ListByUserID(ctx context.Context, userID string) ([]model.AccessSession, error) {
	return m.sessions, nil
}

func (m *mockAccessSessionRepo) DeactivateAllForUser(ctx context.Context, userID string) (int64, error) {
	m.deactivated = append(m.deactivated, userID)
	return 0, nil
}

func (m *mockAccessSessionRepo) DeactivateExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockAccessSessionRepo) WithTx(tx *sqlx.Tx) repository.AccessSessionRepository {
	return m
}

type mockModelClient struct {
	response json.RawMessage
	err      error
	payloads []any
}

func (m *mockModelClient) Complete(ctx context.Context, payload any) (json.RawMessage, error) {
	m.payloads = append(m.payloads, payload)
	return m.response, m.err
}

func (m *mockModelClient) Embed(ctx context.Context, payload any) (json.RawMessage, error) {
	m.payloads = append(m.payloads, payload)
	return m.response, m.err
}

func (m *mockModelClient) GenerateImage(ctx context.Context, payload any) (json.RawMessage, error) {
	m.payloads = append(m.payloads, payload)
	return m.response, m.err
}

// newOpenGate returns a gate with quota high enough to never interfere.
func newOpenGate() *gate.Gate {
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), nil, ratelimit.Quota{
		MaxRequests: 1000,
		Window:      time.Minute,
	})
	return gate.New(limiter, sanitize.NewDetector(), sanitize.NewSanitizer(), true)
}
