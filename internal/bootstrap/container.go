package bootstrap

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"ragchat-client/internal/config"
	"ragchat-client/internal/constant"
	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/logger"
	"ragchat-client/internal/repository/memory"
	"ragchat-client/internal/service"
	"ragchat-client/pkg/auth"
	"ragchat-client/pkg/backend"
	"ragchat-client/pkg/events"
	"ragchat-client/pkg/rag/conversations"

	pktNats "ragchat-client/pkg/nats"
)

const devTokenTTL = 15 * time.Minute

// Container holds everything the chat client needs for one session.
type Container struct {
	Config  *config.Config
	Logger  *logger.ZapLogger
	Backend *backend.Client
	Bus     *events.Bus
	Session service.IChatSessionService

	nats *pktNats.Publisher
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// The REPL owns the terminal, so logs only go to the file.
	zapLogger := logger.NewIsolatedLogger(cfg.App.LogFilePath, cfg.App.Debug)

	tokens, err := tokenSource(cfg.Backend)
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithTokenSource(tokens),
		backend.WithLogger(zapLogger),
	)

	bus := events.NewBus(constant.BusTopicSession, logger.NewWatermillAdapter(zapLogger))

	c := &Container{
		Config:  cfg,
		Logger:  zapLogger,
		Backend: client,
		Bus:     bus,
	}

	var publisher events.Publisher = bus
	if cfg.Events.NatsEnabled {
		np, err := pktNats.NewPublisher(cfg.Events.NatsURL, constant.NatsStreamName, cfg.Events.SubjectPrefix, zapLogger)
		if err != nil {
			// events are a side channel; the chat keeps working without them
			zapLogger.Warn("BOOT", "NATS unavailable, continuing without it", map[string]interface{}{"error": err.Error()})
		} else {
			c.nats = np
			publisher = events.NewMultiPublisher(bus, np)
		}
	}

	list := conversations.NewCache(client, memory.NewConversationListRepository(), zapLogger)
	c.Session = service.NewChatSessionService(client, client, list, publisher, zapLogger,
		service.WithGenerationOptions(GenerationOptions(cfg.Generation)),
	)

	zapLogger.Info("BOOT", "Chat client ready", map[string]interface{}{
		"backend": cfg.Backend.BaseURL,
		"nats":    c.nats != nil,
	})
	return c, nil
}

// GenerationOptions falls back to the defaults for an out-of-range TopK.
func GenerationOptions(g config.GenerationConfig) entity.GenerationOptions {
	opts := entity.GenerationOptions{
		PromptTemplate:           g.PromptTemplate,
		ExcludeCategory:          g.ExcludeCategory,
		TopK:                     g.TopK,
		UseSemanticRanker:        g.SemanticRanker,
		UseSemanticCaptions:      g.SemanticCaptions && g.SemanticRanker,
		SuggestFollowupQuestions: g.SuggestFollowupQuestions,
	}
	if opts.TopK < constant.MinTopK || opts.TopK > constant.MaxTopK {
		opts.TopK = constant.DefaultTopK
	}
	return opts
}

func tokenSource(cfg config.BackendConfig) (oauth2.TokenSource, error) {
	switch {
	case cfg.Token != "":
		return auth.StaticTokenSource(cfg.Token), nil
	case cfg.TokenSecret != "":
		ts, err := auth.DevTokenSource(cfg.TokenSecret, cfg.UserID, devTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("dev token source: %w", err)
		}
		return ts, nil
	default:
		return auth.NoToken{}, nil
	}
}

func (c *Container) Close() {
	if c.nats != nil {
		c.nats.Close()
	}
	_ = c.Bus.Close()
	_ = c.Logger.Sync()
}
