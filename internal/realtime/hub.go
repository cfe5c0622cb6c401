// Package realtime pushes events to connected clients. Events are addressed
// to topics: the global room, or a single user.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/anonto42/gooners/backend/internal/metrics"
	"github.com/anonto42/gooners/backend/pkg/logger"
)

// EventType represents the type of event
type EventType string

const (
	EventGlobalMessage EventType = "global_message"
	EventChatMessage   EventType = "chat_message"
	EventNotification  EventType = "notification"
)

// TopicGlobal receives every global chat message.
const TopicGlobal = "global"

// UserTopic is the private topic of one user.
func UserTopic(userID string) string {
	return "user:" + userID
}

// Event is the unit delivered to subscribers and written to websockets.
type Event struct {
	Type      EventType       `json:"type"`
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent encodes payload into an event for topic.
func NewEvent(eventType EventType, topic string, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Topic:     topic,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Relay carries events to other server instances.
type Relay interface {
	Publish(event *Event) error
}

// Subscription receives the events of its topics on C.
type Subscription struct {
	C      chan *Event
	topics []string
}

// Hub manages topic subscriptions and distribution
type Hub struct {
	subscribers map[string]map[*Subscription]struct{}
	mu          sync.RWMutex
	relay       Relay
	bufferSize  int
}

// NewHub creates a hub whose subscriptions buffer up to bufferSize events.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Hub{
		subscribers: make(map[string]map[*Subscription]struct{}),
		bufferSize:  bufferSize,
	}
}

// SetRelay makes Publish forward events to other instances as well.
func (h *Hub) SetRelay(relay Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relay = relay
}

// Subscribe creates a subscription to the given topics
func (h *Hub) Subscribe(topics ...string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{C: make(chan *Event, h.bufferSize), topics: topics}
	for _, topic := range topics {
		set, ok := h.subscribers[topic]
		if !ok {
			set = make(map[*Subscription]struct{})
			h.subscribers[topic] = set
		}
		set[sub] = struct{}{}
	}
	return sub
}

// Unsubscribe removes the subscription and closes its channel
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := false
	for _, topic := range sub.topics {
		set := h.subscribers[topic]
		if _, ok := set[sub]; ok {
			delete(set, sub)
			removed = true
		}
		if len(set) == 0 {
			delete(h.subscribers, topic)
		}
	}
	if removed {
		close(sub.C)
	}
}

// Publish delivers the event locally and hands it to the relay, if any.
func (h *Hub) Publish(event *Event) {
	h.Deliver(event)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay == nil {
		return
	}
	if err := relay.Publish(event); err != nil {
		log := logger.WithComponent("realtime")
		log.Warn().Err(err).Str("topic", event.Topic).Msg("relay publish failed")
	}
}

// Deliver broadcasts to local subscribers only. A subscriber whose buffer
// is full misses the event.
func (h *Hub) Deliver(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[event.Topic] {
		select {
		case sub.C <- event:
		default:
			metrics.EventsDropped.Inc()
		}
	}
}

// SubscriberCount returns the number of subscriptions on topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// PublishJSON is a convenience wrapper around NewEvent and Publish.
func (h *Hub) PublishJSON(eventType EventType, topic string, payload interface{}) {
	event, err := NewEvent(eventType, topic, payload)
	if err != nil {
		log := logger.WithComponent("realtime")
		log.Error().Err(err).Str("type", string(eventType)).Msg("encode event")
		return
	}
	h.Publish(event)
}
