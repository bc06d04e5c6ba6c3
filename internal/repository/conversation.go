package repository

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/daypass/chat-gateway-go/internal/database"
	"github.com/daypass/chat-gateway-go/internal/model"
)

// Row lookups are always scoped by owner so one user can never read or
// mutate another user's conversation by guessing an id.
type ConversationRepository interface {
	Create(ctx context.Context, params model.CreateConversationParams) (*model.Conversation, error)
	FindByIDForUser(ctx context.Context, id, userID string) (*model.Conversation, error)
	ListByUserID(ctx context.Context, userID string) ([]model.Conversation, error)
	UpdateMessages(ctx context.Context, id, userID string, messages json.RawMessage) (*model.Conversation, error)
	DeleteForUser(ctx context.Context, id, userID string) (int64, error)
}

type conversationRepo struct {
	db database.DBTX
}

func NewConversationRepository(db *sqlx.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Create(ctx context.Context, params model.CreateConversationParams) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.GetContext(ctx, &conv, `
		INSERT INTO conversations (id, user_id, title, messages)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.ID, params.UserID, params.Title, params.Messages)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepo) FindByIDForUser(ctx context.Context, id, userID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.GetContext(ctx, &conv, `
		SELECT * FROM conversations
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	return HandleNotFound(&conv, err)
}

func (r *conversationRepo) UpdateMessages(ctx context.Context, id, userID string, messages json.RawMessage) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.GetContext(ctx, &conv, `
		UPDATE conversations SET
			messages = $3,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING *
	`, id, userID, messages)
	return HandleNotFound(&conv, err)
}

func (r *conversationRepo) DeleteForUser(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM conversations
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *conversationRepo) ListByUserID(ctx context.Context, userID string) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.SelectContext(ctx, &convs, `
		SELECT * FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return convs, nil
}
