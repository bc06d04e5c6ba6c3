package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/daypass/chat-gateway-go/internal/model"
	"github.com/daypass/chat-gateway-go/internal/ratelimit"
	"github.com/daypass/chat-gateway-go/internal/repository"
)

type mockSessionRepo struct {
	deactivateCalls int32
	deactivateCount int64
}

func (m *mockSessionRepo) AcquireUserLock(ctx context.Context, userID string) error {
	return nil
}

func (m *mockSessionRepo) Create(ctx context.Context, params model.CreateAccessSessionParams) (*model.AccessSession, error) {
	return nil, nil
}

func (m *mockSessionRepo) FindActiveByUserID(ctx context.Context, userID string, now time.Time) (*model.AccessSession, error) {
	return nil, nil
}

func (m *mockSessionRepo) ListByUserID(ctx context.Context, userID string) ([]model.AccessSession, error) {
	return nil, nil
}

func (m *mockSessionRepo) DeactivateAllForUser(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (m *mockSessionRepo) DeactivateExpired(ctx context.Context) (int64, error) {
	atomic.AddInt32(&m.deactivateCalls, 1)
	return m.deactivateCount, nil
}

func (m *mockSessionRepo) WithTx(tx *sqlx.Tx) repository.AccessSessionRepository {
	return m
}

func newTestLimiter() *ratelimit.Limiter {
	return ratelimit.New(ratelimit.NewMemoryStore(), nil, ratelimit.Quota{
		MaxRequests: 100,
		Window:      time.Minute,
	})
}

func TestCleanupJob(t *testing.T) {
	t.Run("creates job with correct interval", func(t *testing.T) {
		job := NewCleanupJob(&mockSessionRepo{}, newTestLimiter(), 5*time.Minute)

		assert.NotNil(t, job)
		assert.Equal(t, 5*time.Minute, job.interval)
	})

	t.Run("starts and stops without panic", func(t *testing.T) {
		job := NewCleanupJob(&mockSessionRepo{}, newTestLimiter(), 100*time.Millisecond)

		job.Start()
		time.Sleep(50 * time.Millisecond)
		job.Stop()
	})

	t.Run("runs cleanup on start", func(t *testing.T) {
		repo := &mockSessionRepo{deactivateCount: 3}
		job := NewCleanupJob(repo, newTestLimiter(), 1*time.Hour)

		job.Start()
		time.Sleep(20 * time.Millisecond)
		job.Stop()

		assert.GreaterOrEqual(t, atomic.LoadInt32(&repo.deactivateCalls), int32(1))
	})

	t.Run("cleanup deactivates sessions and sweeps counters", func(t *testing.T) {
		repo := &mockSessionRepo{deactivateCount: 2}
		job := NewCleanupJob(repo, newTestLimiter(), 1*time.Hour)

		job.cleanup()

		assert.Equal(t, int32(1), atomic.LoadInt32(&repo.deactivateCalls))
	})
}
