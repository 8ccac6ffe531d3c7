package portal

import (
	"context"
	"fmt"

	"github.com/dln-law/payments-portal/internal/types"
)

// Event names a user-triggered page event.
type Event string

const (
	EventSubmit         Event = "submit"
	EventSelectProvider Event = "select-provider"
	EventOpenProvider   Event = "open-provider"
	EventDownloadExport Event = "download-export"
	EventCloseModal     Event = "close-modal"
	EventKeydown        Event = "keydown"
	EventAmountInput    Event = "amount-input"
	EventAmountBlur     Event = "amount-blur"
	EventContactSubmit  Event = "contact-submit"
)

// Payload carries the data of one event. Only the fields relevant to the
// event are set.
type Payload struct {
	Form     types.RawFormInput `json:"form"`
	Contact  types.ContactInput `json:"contact"`
	Provider string             `json:"provider,omitempty"`
	Key      string             `json:"key,omitempty"`
	Value    string             `json:"value,omitempty"`
	Format   string             `json:"format,omitempty"`
}

// Handler reacts to one event.
type Handler func(ctx context.Context, p Payload) error

// EventSource delivers named events to registered handlers.
type EventSource interface {
	On(event Event, h Handler)
}

// Dispatcher is an in-process EventSource. It runs one handler per event
// and is not safe for concurrent use.
type Dispatcher struct {
	handlers map[Event]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Event]Handler)}
}

// On registers h for event, replacing any earlier handler.
func (d *Dispatcher) On(event Event, h Handler) {
	d.handlers[event] = h
}

// Dispatch runs the handler for event.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event, p Payload) error {
	h, ok := d.handlers[event]
	if !ok {
		return fmt.Errorf("no handler registered for event %q", event)
	}
	return h(ctx, p)
}
