package events

import "time"

// Event defines the contract for all published events.
type Event interface {
	// EventType returns the code for this event (e.g., "session.changed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Envelope is the serialized form shared by the in-process bus and NATS.
type Envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{Type: e.EventType(), OccurredAt: e.Timestamp(), Data: e.Payload()}
}

func (env Envelope) Event() BaseEvent {
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}
}
