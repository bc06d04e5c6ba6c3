package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	apperrors "github.com/daypass/chat-gateway-go/internal/errors"
	"github.com/daypass/chat-gateway-go/internal/model"
	"github.com/daypass/chat-gateway-go/internal/repository"
)

type ConversationService struct {
	conversations repository.ConversationRepository
}

func NewConversationService(conversations repository.ConversationRepository) *ConversationService {
	return &ConversationService{conversations: conversations}
}

func (s *ConversationService) Create(ctx context.Context, userID, title string, messages any) (*model.Conversation, error) {
	raw, err := json.Marshal(messages)
	if err != nil {
		return nil, apperrors.InvalidInput("messages", "not serializable")
	}

	conv, err := s.conversations.Create(ctx, model.CreateConversationParams{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    title,
		Messages: raw,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return conv, nil
}

func (s *ConversationService) Get(ctx context.Context, userID, id string) (*model.Conversation, error) {
	conv, err := s.conversations.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if conv == nil {
		return nil, apperrors.NotFound("Conversation")
	}
	return conv, nil
}

func (s *ConversationService) List(ctx context.Context, userID string) ([]model.Conversation, error) {
	convs, err := s.conversations.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return convs, nil
}

// AppendMessages adds messages to the end of an existing conversation. The
// stored history and the new entries are merged as raw JSON so earlier rows
// are never reshaped on write.
func (s *ConversationService) AppendMessages(ctx context.Context, userID, id string, messages any) (*model.Conversation, error) {
	conv, err := s.conversations.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if conv == nil {
		return nil, apperrors.NotFound("Conversation")
	}

	var history []json.RawMessage
	if len(conv.Messages) > 0 {
		if err := json.Unmarshal(conv.Messages, &history); err != nil {
			return nil, apperrors.Internal("Stored conversation is not readable")
		}
	}

	raw, err := json.Marshal(messages)
	if err != nil {
		return nil, apperrors.InvalidInput("messages", "not serializable")
	}
	var incoming []json.RawMessage
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return nil, apperrors.InvalidInput("messages", "not a list")
	}

	merged, err := json.Marshal(append(history, incoming...))
	if err != nil {
		return nil, apperrors.Internal("Failed to merge messages")
	}

	updated, err := s.conversations.UpdateMessages(ctx, id, userID, merged)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Conversation")
	}
	return updated, nil
}

func (s *ConversationService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.conversations.DeleteForUser(ctx, id, userID)
	if err != nil {
		return apperrors.Database(err)
	}
	if deleted == 0 {
		return apperrors.NotFound("Conversation")
	}
	return nil
}
