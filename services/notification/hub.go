package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"fixly/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Subscriber is one live-channel consumer, bound to a (serviceType, district)
// topic. Events arrive on a buffered channel; a consumer that stops draining
// loses events rather than blocking the fan-out.
type Subscriber struct {
	serviceType string
	district    string
	events      chan models.DispatchEvent
}

// Events returns the subscriber's event stream.
func (s *Subscriber) Events() <-chan models.DispatchEvent {
	return s.events
}

type hubTopic struct {
	serviceType string
	district    string
}

// Hub is the in-process publish/subscribe fabric for connected clients.
// With a Redis client attached, events round-trip through Redis pub/sub so
// sockets held by other instances receive them too; without one, delivery is
// purely local. Constructed once per process and injected.
type Hub struct {
	mu     sync.RWMutex
	topics map[hubTopic]map[*Subscriber]struct{}
	rdb    *redis.Client
	logger *zap.Logger
}

// NewHub creates a hub. redisClient may be nil for single-instance (and test)
// operation. When a Redis client is supplied, Run must be started for local
// delivery to happen at all: every publish goes out through Redis and comes
// back through the relay.
func NewHub(redisClient *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		topics: make(map[hubTopic]map[*Subscriber]struct{}),
		rdb:    redisClient,
		logger: logger,
	}
}

// Subscribe attaches a consumer to a topic.
func (h *Hub) Subscribe(serviceType, district string) *Subscriber {
	sub := &Subscriber{
		serviceType: serviceType,
		district:    district,
		events:      make(chan models.DispatchEvent, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	key := hubTopic{serviceType: serviceType, district: district}
	if h.topics[key] == nil {
		h.topics[key] = make(map[*Subscriber]struct{})
	}
	h.topics[key][sub] = struct{}{}
	return sub
}

// Unsubscribe detaches a consumer and closes its event stream.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := hubTopic{serviceType: sub.serviceType, district: sub.district}
	if subs := h.topics[key]; subs != nil {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.events)
			if len(subs) == 0 {
				delete(h.topics, key)
			}
		}
	}
}

// Publish delivers an event to every subscriber of the event's topic.
func (h *Hub) Publish(ctx context.Context, ev models.DispatchEvent) {
	if h.rdb == nil {
		h.deliverLocal(ev)
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("hub: failed to marshal event", zap.Error(err))
		return
	}
	if err := h.rdb.Publish(ctx, redisChannel(ev.ServiceType, ev.District), payload).Err(); err != nil {
		h.logger.Warn("hub: redis publish failed, delivering locally only",
			zap.String("bookingId", ev.BookingID), zap.Error(err))
		h.deliverLocal(ev)
	}
}

// Run relays events from Redis pub/sub into local subscribers until the
// context is cancelled. No-op without a Redis client.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	pubsub := h.rdb.PSubscribe(ctx, redisChannel("*", "*"))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev models.DispatchEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				h.logger.Warn("hub: dropping malformed relay payload", zap.Error(err))
				continue
			}
			h.deliverLocal(ev)
		}
	}
}

func (h *Hub) deliverLocal(ev models.DispatchEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	key := hubTopic{serviceType: ev.ServiceType, district: ev.District}
	for sub := range h.topics[key] {
		select {
		case sub.events <- ev:
		default:
			h.logger.Warn("hub: subscriber buffer full, dropping event",
				zap.String("type", ev.Type), zap.String("bookingId", ev.BookingID))
		}
	}
}

func redisChannel(serviceType, district string) string {
	return fmt.Sprintf("dispatch:events:%s:%s", serviceType, district)
}
