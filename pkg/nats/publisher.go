package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"ragchat-client/internal/pkg/logger"
	"ragchat-client/pkg/events"
)

const headerEventType = "Ragchat-Event-Type"

// Publisher mirrors session events onto a JetStream stream so other
// processes can follow a chat session.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	prefix string
}

func connect(url string) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return nc, js, nil
}

// NewPublisher connects and ensures the stream covering prefix.> exists.
func NewPublisher(url, stream, prefix string, l logger.ILogger) (*Publisher, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      stream,
		Subjects:  []string{prefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		// the stream may already exist with another config, or the server is not ready yet
		l.Warn("NATS", "Failed to ensure stream", map[string]interface{}{"stream": stream, "error": err.Error()})
	}

	return &Publisher{nc: nc, js: js, prefix: prefix}, nil
}

func Subject(prefix, eventType string) string {
	return prefix + "." + eventType
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(events.ToEnvelope(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := Subject(p.prefix, event.EventType())
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(headerEventType, event.EventType())

	if _, err := p.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
