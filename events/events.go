package events

import (
	"context"
	"sync"

	"minebet/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeRequestDecided EventType = "request_decided"
	EventTypeRequestCreated EventType = "request_created"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a committed balance change
type BalanceChangeEvent struct {
	UserID       int64
	OldBalance   int64
	NewBalance   int64
	ChangeAmount int64
	EntryType    models.EntryType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// RequestCreatedEvent represents a newly submitted funding request,
// used to alert the admin review queue.
type RequestCreatedEvent struct {
	Kind      models.RequestKind
	RequestID int64
	UserID    int64
	Amount    int64
}

func (e RequestCreatedEvent) Type() EventType {
	return EventTypeRequestCreated
}

// RequestDecidedEvent represents an approved or rejected funding
// request, used to notify the requesting user.
type RequestDecidedEvent struct {
	Kind      models.RequestKind
	RequestID int64
	UserID    int64
	Amount    int64
	Approved  bool
}

func (e RequestDecidedEvent) Type() EventType {
	return EventTypeRequestDecided
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously so a slow subscriber never blocks the publisher.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus holds pending events coupled to a unit of work.
// Events publish to the underlying bus only after the transaction
// commits; a rollback discards them.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the transaction context that produced them.
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after a rollback to drop the pending events.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
