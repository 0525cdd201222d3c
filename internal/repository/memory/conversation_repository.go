package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"

	"ragchat-client/internal/entity"
	"ragchat-client/internal/repository/contract"
)

type conversationRepository struct {
	cache *cache.Cache
}

func NewConversationRepository() contract.ConversationRepository {
	return &conversationRepository{cache: cache.New(cache.NoExpiration, 0)}
}

func conversationKey(userId, id string) string {
	return userId + ":" + id
}

func (r *conversationRepository) Save(ctx context.Context, c *entity.StoredConversation) error {
	cp := *c
	cp.Messages = append([]entity.StoredMessage(nil), c.Messages...)
	r.cache.Set(conversationKey(c.UserId, c.Id), &cp, cache.NoExpiration)
	return nil
}

func (r *conversationRepository) FindOne(ctx context.Context, userId, id string) (*entity.StoredConversation, error) {
	x, found := r.cache.Get(conversationKey(userId, id))
	if !found {
		return nil, nil
	}
	cp := *x.(*entity.StoredConversation)
	cp.Messages = append([]entity.StoredMessage(nil), cp.Messages...)
	return &cp, nil
}

// FindAllByUser returns the most recently updated first.
func (r *conversationRepository) FindAllByUser(ctx context.Context, userId string) ([]*entity.StoredConversation, error) {
	prefix := userId + ":"
	out := make([]*entity.StoredConversation, 0)
	for key, item := range r.cache.Items() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		cp := *item.Object.(*entity.StoredConversation)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *conversationRepository) Delete(ctx context.Context, userId, id string) (bool, error) {
	key := conversationKey(userId, id)
	if _, found := r.cache.Get(key); !found {
		return false, nil
	}
	r.cache.Delete(key)
	return true, nil
}
