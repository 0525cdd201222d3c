package memory

import (
	"github.com/patrickmn/go-cache"

	"ragchat-client/internal/entity"
)

const conversationListKey = "conversations"

// ConversationListRepository keeps the last fetched conversation list.
// Entries never expire; a refresh replaces them.
type ConversationListRepository struct {
	cache *cache.Cache
}

func NewConversationListRepository() *ConversationListRepository {
	return &ConversationListRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *ConversationListRepository) Replace(list []entity.ConversationSummary) {
	cp := make([]entity.ConversationSummary, len(list))
	copy(cp, list)
	r.cache.Set(conversationListKey, cp, cache.NoExpiration)
}

// Get reports false until the first Replace.
func (r *ConversationListRepository) Get() ([]entity.ConversationSummary, bool) {
	x, found := r.cache.Get(conversationListKey)
	if !found {
		return nil, false
	}
	list := x.([]entity.ConversationSummary)
	cp := make([]entity.ConversationSummary, len(list))
	copy(cp, list)
	return cp, true
}
