package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anonto42/gooners/backend/pkg/logger"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// DefaultRelayChannel is the redis pub/sub channel shared by all instances.
const DefaultRelayChannel = "gooners:events"

type envelope struct {
	Origin string `json:"origin"`
	Event  *Event `json:"event"`
}

// RedisRelay fans events out to every instance subscribed to the same
// redis channel. Events published by this instance are not redelivered.
type RedisRelay struct {
	client     *redis.Client
	channel    string
	instanceID string
	hub        *Hub
}

// NewRedisRelay connects to redisURL and verifies the connection.
func NewRedisRelay(ctx context.Context, redisURL string, hub *Hub) (*RedisRelay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRelay{
		client:     client,
		channel:    DefaultRelayChannel,
		instanceID: uuid.NewString(),
		hub:        hub,
	}, nil
}

// Publish sends the event to the other instances
func (r *RedisRelay) Publish(event *Event) error {
	data, err := json.Marshal(envelope{Origin: r.instanceID, Event: event})
	if err != nil {
		return err
	}
	return r.client.Publish(context.Background(), r.channel, data).Err()
}

// Run delivers events from other instances to local subscribers until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) {
	log := logger.WithComponent("realtime")
	pubsub := r.client.Subscribe(ctx, r.channel)
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
			event, err := r.decode(msg.Payload)
			if err != nil {
				log.Warn().Err(err).Msg("drop malformed relay message")
				continue
			}
			if event != nil {
				r.hub.Deliver(event)
			}
		}
	}
}

// decode returns nil for events this instance published itself.
func (r *RedisRelay) decode(payload string) (*Event, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, err
	}
	if env.Event == nil {
		return nil, fmt.Errorf("relay message without event")
	}
	if env.Origin == r.instanceID {
		return nil, nil
	}
	return env.Event, nil
}

// Close releases the redis connection
func (r *RedisRelay) Close() error {
	return r.client.Close()
}
