package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const metadataEventType = "event_type"

// Bus is the in-process event channel between the session controller and
// its read-only subscribers, such as the terminal renderer.
type Bus struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewBus(topic string, wmLogger watermill.LoggerAdapter) *Bus {
	if wmLogger == nil {
		wmLogger = watermill.NopLogger{}
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger),
		topic:  topic,
	}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(ToEnvelope(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(metadataEventType, event.EventType())
	msg.SetContext(ctx)

	return b.pubSub.Publish(b.topic, msg)
}

// Subscribe streams decoded events until ctx is done or the bus closes.
// Delivery order between events is not guaranteed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, error) {
	messages, err := b.pubSub.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 64)
	go func() {
		defer close(out)
		for msg := range messages {
			var env Envelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				msg.Ack() // undecodable, never retry
				continue
			}
			msg.Ack()
			select {
			case out <- env.Event():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
