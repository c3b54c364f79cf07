package question

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

const defaultEventsChannel = "trivia:questions"

// Event announces a catalog change. Type is ws.TypeQuestionCreated or ws.TypeQuestionDeleted.
type Event struct {
	Type     string `json:"type"`
	ID       int    `json:"id"`
	Category int    `json:"category,omitempty"`
}

// EventPublisher fans catalog changes out to every API instance.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// RedisPublisher publishes events on a Redis Pub/Sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

var _ EventPublisher = (*RedisPublisher)(nil)

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = defaultEventsChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// Broadcaster listens for catalog events on Redis Pub/Sub and forwards them to all WebSocket clients.
type Broadcaster struct {
	redis   *redis.Client
	hub     *ws.Hub
	channel string
	logger  zerolog.Logger
}

// NewBroadcaster creates a Pub/Sub powered catalog broadcaster.
func NewBroadcaster(redis *redis.Client, hub *ws.Hub, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = defaultEventsChannel
	}
	return &Broadcaster{
		redis:   redis,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "catalog_broadcaster").Logger(),
	}
}

// Run subscribes to the events channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode catalog event")
		return
	}

	switch evt.Type {
	case ws.TypeQuestionCreated, ws.TypeQuestionDeleted:
	default:
		b.logger.Warn().Str("type", evt.Type).Msg("ignoring unknown catalog event")
		return
	}

	msg, err := ws.NewMessage(evt.Type, evt, "")
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to marshal catalog WS payload")
		return
	}
	if err := b.hub.BroadcastAll(msg); err != nil {
		b.logger.Warn().Err(err).Msg("failed to broadcast catalog event")
	}
}
