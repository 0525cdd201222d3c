package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"ragchat-client/internal/entity"
	"ragchat-client/internal/repository/contract"
)

type redisConversationRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisConversationRepository(client *redis.Client, prefix string) contract.ConversationRepository {
	return &redisConversationRepository{client: client, prefix: prefix}
}

func (r *redisConversationRepository) key(userId, id string) string {
	return fmt.Sprintf("%s:conversation:%s:%s", r.prefix, userId, id)
}

func (r *redisConversationRepository) indexKey(userId string) string {
	return fmt.Sprintf("%s:user:%s:conversations", r.prefix, userId)
}

func (r *redisConversationRepository) Save(ctx context.Context, c *entity.StoredConversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(c.UserId, c.Id), data, 0)
		pipe.SAdd(ctx, r.indexKey(c.UserId), c.Id)
		return nil
	})
	return err
}

func (r *redisConversationRepository) FindOne(ctx context.Context, userId, id string) (*entity.StoredConversation, error) {
	data, err := r.client.Get(ctx, r.key(userId, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c entity.StoredConversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *redisConversationRepository) FindAllByUser(ctx context.Context, userId string) ([]*entity.StoredConversation, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey(userId)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*entity.StoredConversation{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(userId, id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*entity.StoredConversation, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // index entry outlived its record
		}
		var c entity.StoredConversation
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *redisConversationRepository) Delete(ctx context.Context, userId, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.key(userId, id))
		pipe.SRem(ctx, r.indexKey(userId), id)
		return nil
	})
	if err != nil {
		return false, err
	}
	return del.Val() > 0, nil
}
