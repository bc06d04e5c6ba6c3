package handler

import (
	"fmt"

	"github.com/daypass/chat-gateway-go/internal/gate"
)

// Request shapes for the protected endpoints. Bounds mirror what the upstream
// providers accept; validation fails closed before any text is screened.

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

type ChatRequest struct {
	Messages    []ChatMessage `json:"messages" validate:"required,min=1,max=50,dive"`
	Model       string        `json:"model" validate:"omitempty,max=100"`
	Temperature *float64      `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int          `json:"max_tokens" validate:"omitempty,gte=1,lte=4000"`
}

type EmbeddingsRequest struct {
	Text  string `json:"text" validate:"required,min=1,max=8000"`
	Model string `json:"model" validate:"omitempty,max=100"`
}

type ImageRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=1000"`
	Size   string `json:"size" validate:"omitempty,oneof=256x256 512x512 1024x1024"`
	N      *int   `json:"n" validate:"omitempty,gte=1,lte=4"`
}

type ConversationRequest struct {
	Title    string        `json:"title" validate:"required,min=1,max=200"`
	Messages []ChatMessage `json:"messages" validate:"omitempty,max=50,dive"`
}

type AppendMessagesRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,max=50,dive"`
}

type CreateSessionRequest struct {
	PaymentID string `json:"payment_id" validate:"required,min=1,max=200"`
}

var ChatSchema = gate.Schema{
	New: func() any { return &ChatRequest{} },
	Text: func(v any) []gate.TextField {
		req := v.(*ChatRequest)
		fields := make([]gate.TextField, 0, len(req.Messages))
		for i := range req.Messages {
			fields = append(fields, gate.TextField{
				Name:  fmt.Sprintf("messages[%d].content", i),
				Value: &req.Messages[i].Content,
			})
		}
		return fields
	},
}

var EmbeddingsSchema = gate.Schema{
	New: func() any { return &EmbeddingsRequest{} },
	Text: func(v any) []gate.TextField {
		req := v.(*EmbeddingsRequest)
		return []gate.TextField{{Name: "text", Value: &req.Text}}
	},
}

var ImageSchema = gate.Schema{
	New: func() any { return &ImageRequest{} },
	Text: func(v any) []gate.TextField {
		req := v.(*ImageRequest)
		return []gate.TextField{{Name: "prompt", Value: &req.Prompt}}
	},
}

var ConversationSchema = gate.Schema{
	New: func() any { return &ConversationRequest{} },
	Text: func(v any) []gate.TextField {
		req := v.(*ConversationRequest)
		fields := []gate.TextField{{Name: "title", Value: &req.Title}}
		for i := range req.Messages {
			fields = append(fields, gate.TextField{
				Name:  fmt.Sprintf("messages[%d].content", i),
				Value: &req.Messages[i].Content,
			})
		}
		return fields
	},
}

var AppendMessagesSchema = gate.Schema{
	New: func() any { return &AppendMessagesRequest{} },
	Text: func(v any) []gate.TextField {
		req := v.(*AppendMessagesRequest)
		fields := make([]gate.TextField, 0, len(req.Messages))
		for i := range req.Messages {
			fields = append(fields, gate.TextField{
				Name:  fmt.Sprintf("messages[%d].content", i),
				Value: &req.Messages[i].Content,
			})
		}
		return fields
	},
}

var CreateSessionSchema = gate.Schema{
	New: func() any { return &CreateSessionRequest{} },
}
