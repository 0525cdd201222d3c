package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ragchat-client/internal/config"
	"ragchat-client/internal/controller"
	"ragchat-client/internal/pkg/logger"
	"ragchat-client/internal/repository/contract"
	"ragchat-client/internal/repository/implementation"
	"ragchat-client/internal/repository/memory"
	"ragchat-client/internal/service"
	"ragchat-client/pkg/rag/search"
)

const redisKeyPrefix = "ragchat-stub"

// StubContainer wires the development backend.
type StubContainer struct {
	Logger                 *logger.ZapLogger
	ConversationController controller.IConversationController

	redis *redis.Client
}

func NewStubContainer(cfg *config.Config) (*StubContainer, error) {
	zapLogger := logger.NewZapLogger(cfg.Stub.LogFilePath, cfg.IsProduction())

	c := &StubContainer{Logger: zapLogger}

	var repo contract.ConversationRepository
	switch cfg.Stub.StoreBackend {
	case "memory", "":
		repo = memory.NewConversationRepository()
	case "redis":
		opts, err := redis.ParseURL(cfg.Stub.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.redis = rdb
		repo = implementation.NewRedisConversationRepository(rdb, redisKeyPrefix)
	default:
		return nil, fmt.Errorf("unknown STUB_STORE %q", cfg.Stub.StoreBackend)
	}

	svc := service.NewConversationService(repo, search.DefaultCorpus(), zapLogger)
	c.ConversationController = controller.NewConversationController(svc)

	zapLogger.Info("BOOT", "Stub backend ready", map[string]interface{}{
		"store": cfg.Stub.StoreBackend,
		"auth":  cfg.Stub.JWTSecret != "",
	})
	return c, nil
}

func (c *StubContainer) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	_ = c.Logger.Sync()
}
