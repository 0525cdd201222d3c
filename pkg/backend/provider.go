package backend

import (
	"context"

	"ragchat-client/internal/entity"
)

// AnswerProvider produces an answer for a turn history.
type AnswerProvider interface {
	Submit(ctx context.Context, req AddRequest) (entity.Answer, error)
}

// ConversationStore is the remote CRUD surface for saved conversations.
type ConversationStore interface {
	Add(ctx context.Context, req AddRequest) (entity.Answer, error)
	Read(ctx context.Context, req ReadRequest) ([]entity.ChatTurn, error)
	List(ctx context.Context) ([]entity.ConversationSummary, error)
	Delete(ctx context.Context, req DeleteRequest) (DeleteResult, error)
}
