package conversations

import (
	"context"
	"sync"

	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/pkg/logger"
	"ragchat-client/internal/repository/memory"
	"ragchat-client/pkg/backend"
)

// Cache holds the user's conversation list, replaced wholesale on refresh.
type Cache struct {
	store  backend.ConversationStore
	repo   *memory.ConversationListRepository
	logger logger.ILogger

	mu        sync.Mutex
	started   uint64
	committed uint64
}

func NewCache(store backend.ConversationStore, repo *memory.ConversationListRepository, l logger.ILogger) *Cache {
	return &Cache{store: store, repo: repo, logger: l}
}

// Refresh fetches the list and replaces the cache. An empty remote list is
// stored as fetched-and-empty; any other failure leaves the cache as it was.
// When refreshes overlap, the most recently started one wins.
func (c *Cache) Refresh(ctx context.Context) ([]entity.ConversationSummary, error) {
	c.mu.Lock()
	c.started++
	seq := c.started
	c.mu.Unlock()

	list, err := c.store.List(ctx)
	if err != nil && !apperror.Is(err, apperror.KindEmptyResult) {
		c.logger.Warn("CONVERSATIONS", "Refresh failed, keeping previous list", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if list == nil {
		list = []entity.ConversationSummary{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.committed {
		c.logger.Debug("CONVERSATIONS", "Dropped outdated refresh", map[string]interface{}{"seq": seq})
		cur, _ := c.repo.Get()
		return cur, nil
	}
	c.committed = seq
	c.repo.Replace(list)
	c.logger.Info("CONVERSATIONS", "List refreshed", map[string]interface{}{"count": len(list)})
	return list, nil
}

// Snapshot returns the cached list and whether a refresh ever succeeded.
func (c *Cache) Snapshot() ([]entity.ConversationSummary, bool) {
	return c.repo.Get()
}

// Contains reports whether id is in the cached list.
func (c *Cache) Contains(id string) bool {
	list, _ := c.repo.Get()
	for _, s := range list {
		if s.Id == id {
			return true
		}
	}
	return false
}
