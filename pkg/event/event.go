// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	DestinationSet     Type = "destination_set"
	DestinationReached Type = "destination_reached"
	VesselDocked       Type = "vessel_docked"
	VesselUndocked     Type = "vessel_undocked"
	AIStateChanged     Type = "ai_state_changed"
	TargetLocked       Type = "target_locked"
	TargetReleased     Type = "target_released"
	SimStarted         Type = "sim_started"
	SimStopped         Type = "sim_stopped"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// SubscriptionID identifies a registered handler so it can be removed.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscription
	nextID   SubscriptionID
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscription),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type and returns an ID
// for Unsubscribe.
func (b *Bus) Subscribe(eventType Type, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes the handler registered under id. It reports whether a
// handler was removed.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.handlers {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			remaining := make([]subscription, 0, len(subs)-1)
			remaining = append(remaining, subs[:i]...)
			remaining = append(remaining, subs[i+1:]...)
			if len(remaining) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = remaining
			}
			return true
		}
	}
	return false
}

// Publish sends an event to all subscribed handlers. Handlers run on the
// caller's goroutine, outside the bus lock, so they may publish in turn.
func (b *Bus) Publish(event Event) {
	if b == nil || event == nil {
		return
	}

	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(event)
	}
}

// HandlerCount returns the number of handlers registered for eventType.
func (b *Bus) HandlerCount(eventType Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// Specific event implementations

// VesselEvent describes a vessel moving relative to a place: a destination
// being set or reached, or docking at a location.
type VesselEvent struct {
	BaseEvent
	VesselTag   string
	LocationTag string // empty for free coordinates
	Position    physics.Vector2D
}

// NewVesselEvent creates a new vessel event
func NewVesselEvent(eventType Type, source interface{}, vesselTag, locationTag string, pos physics.Vector2D) *VesselEvent {
	return &VesselEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		VesselTag:   vesselTag,
		LocationTag: locationTag,
		Position:    pos,
	}
}

// StateEvent records an AI state machine transition
type StateEvent struct {
	BaseEvent
	VesselTag string
	From      string
	To        string
	Time      float64
}

// NewStateEvent creates a new AI state change event
func NewStateEvent(source interface{}, vesselTag, from, to string, now float64) *StateEvent {
	return &StateEvent{
		BaseEvent: BaseEvent{
			EventType: AIStateChanged,
			Source:    source,
		},
		VesselTag: vesselTag,
		From:      from,
		To:        to,
		Time:      now,
	}
}

// TargetEvent contains information about a target lock change
type TargetEvent struct {
	BaseEvent
	VesselTag string
	TargetTag string
}

// NewTargetEvent creates a new target lock event
func NewTargetEvent(eventType Type, source interface{}, vesselTag, targetTag string) *TargetEvent {
	return &TargetEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		VesselTag: vesselTag,
		TargetTag: targetTag,
	}
}

// SimEvent marks simulation lifecycle changes
type SimEvent struct {
	BaseEvent
	Tick uint64
	Time float64
}

// NewSimEvent creates a new simulation lifecycle event
func NewSimEvent(eventType Type, source interface{}, tick uint64, now float64) *SimEvent {
	return &SimEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Tick: tick,
		Time: now,
	}
}
