package contract

import (
	"context"

	"ragchat-client/internal/entity"
)

// ConversationRepository stores the stub backend's conversations, scoped
// per user. FindOne returns nil, nil when nothing matches.
type ConversationRepository interface {
	Save(ctx context.Context, conversation *entity.StoredConversation) error
	FindOne(ctx context.Context, userId, id string) (*entity.StoredConversation, error)
	FindAllByUser(ctx context.Context, userId string) ([]*entity.StoredConversation, error)
	Delete(ctx context.Context, userId, id string) (bool, error)
}
