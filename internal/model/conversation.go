package model

import (
	"encoding/json"
	"time"
)

type Conversation struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"userId"`
	Title     string          `db:"title" json:"title"`
	Messages  json.RawMessage `db:"messages" json:"messages"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

type CreateConversationParams struct {
	ID       string
	UserID   string
	Title    string
	Messages json.RawMessage
}
