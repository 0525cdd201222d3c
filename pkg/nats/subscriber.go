package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"ragchat-client/internal/pkg/logger"
	"ragchat-client/pkg/events"
)

// EventHandler processes one event. Returning an error naks the message.
type EventHandler func(ctx context.Context, event events.Event) error

type Subscriber struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream string
	logger logger.ILogger
}

func NewSubscriber(url, stream string, l logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, stream: stream, logger: l}, nil
}

// Subscribe consumes subject until ctx is done. An empty durableName
// creates an ephemeral consumer that only sees new events.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, handler EventHandler) error {
	cfg := jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	if durableName == "" {
		cfg.DeliverPolicy = jetstream.DeliverNewPolicy
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.stream, cfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		var env events.Envelope
		if err := json.Unmarshal(msg.Data(), &env); err != nil {
			s.logger.Warn("NATS", "Dropping undecodable event", map[string]interface{}{"subject": msg.Subject(), "error": err.Error()})
			_ = msg.Term()
			return
		}
		if env.Type == "" {
			env.Type = msg.Headers().Get(headerEventType)
		}

		if err := handler(ctx, env.Event()); err != nil {
			s.logger.Warn("NATS", "Handler failed", map[string]interface{}{"subject": msg.Subject(), "error": err.Error()})
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.logger.Info("NATS", "Subscribed", map[string]interface{}{"subject": subject, "durable": durableName})
	<-ctx.Done()
	consumeCtx.Stop()
	return nil
}

func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
