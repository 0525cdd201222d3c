package history

import (
	"context"

	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/pkg/logger"
	"ragchat-client/pkg/backend"
)

// Loaded is a persisted conversation mapped into the session shape.
type Loaded struct {
	ConversationId string
	History        []entity.Exchange
	LastQuestion   string
}

// Loader fetches persisted conversations from the remote store.
type Loader struct {
	store  backend.ConversationStore
	logger logger.ILogger
}

func NewLoader(store backend.ConversationStore, l logger.ILogger) *Loader {
	return &Loader{store: store, logger: l}
}

// Load reads the conversation and reconciles its turns. A conversation
// without turns is reported as EmptyResult.
func (l *Loader) Load(ctx context.Context, conversationId string) (Loaded, error) {
	turns, err := l.store.Read(ctx, backend.ReadRequest{ConversationId: conversationId})
	if err != nil {
		return Loaded{}, err
	}
	if len(turns) == 0 {
		return Loaded{}, apperror.EmptyResult("history.Load", "conversation has no messages")
	}

	exchanges := Reconcile(conversationId, turns)
	l.logger.Debug("HISTORY", "Conversation reconciled", map[string]interface{}{
		"conversation_id": conversationId,
		"turns":           len(exchanges),
	})

	return Loaded{
		ConversationId: conversationId,
		History:        exchanges,
		LastQuestion:   exchanges[len(exchanges)-1].Question,
	}, nil
}

// Reconcile maps stored turns into exchanges. Persisted conversations keep
// only the raw bot text, so every answer has no supporting facts, no
// citations and the conversation's own id.
func Reconcile(conversationId string, turns []entity.ChatTurn) []entity.Exchange {
	out := make([]entity.Exchange, 0, len(turns))
	for _, t := range turns {
		text := ""
		if t.Bot != nil {
			text = *t.Bot
		}
		out = append(out, entity.Exchange{
			Question: t.User,
			Answer: entity.Answer{
				Text:            text,
				SupportingFacts: []string{},
				CitationsRaw:    nil,
				ConversationId:  conversationId,
			},
		})
	}
	return out
}
