package events

import (
	"context"
	"errors"
)

// Publisher delivers events to some transport.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// MultiPublisher fans an event out to every publisher and joins the errors.
type MultiPublisher struct {
	publishers []Publisher
}

func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	out := &MultiPublisher{}
	for _, p := range publishers {
		if p != nil {
			out.publishers = append(out.publishers, p)
		}
	}
	return out
}

func (m *MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
