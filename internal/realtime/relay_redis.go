package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
)

const publishTimeout = 3 * time.Second

// relayMessage is the wire form of an event on the Redis channel. The
// payload is kept raw so it reaches clients byte for byte.
type relayMessage struct {
	ID          string           `json:"id"`
	Type        events.EventType `json:"type"`
	ComplaintID string           `json:"complaintId"`
	Room        string           `json:"room,omitempty"`
	ActorID     string           `json:"actorId,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	Payload     json.RawMessage  `json:"payload"`
}

// RedisRelay fans events out across API instances through Redis pub/sub.
// Every instance, including the publisher, receives the event from Redis
// and delivers it to its local hub.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   Sink
	logger  *zap.Logger
}

// NewRedisRelay constructs the relay. local receives events read from Redis.
func NewRedisRelay(client *redis.Client, channel string, local Sink, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{client: client, channel: channel, local: local, logger: logger}
}

// Deliver publishes the event asynchronously. Failures are logged and the
// event is lost.
func (r *RedisRelay) Deliver(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("encode relay event", zap.String("event", string(event.Type)), zap.Error(err))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
			r.logger.Warn("relay publish failed",
				zap.String("event", string(event.Type)),
				zap.String("channel", r.channel),
				zap.Error(err))
		}
	}()
}

// Run subscribes to the channel and forwards events to the local hub until
// ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.logger.Info("realtime relay subscribed", zap.String("channel", r.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := decodeRelayMessage([]byte(msg.Payload))
			if err != nil {
				r.logger.Warn("relay message ignored", zap.Error(err))
				continue
			}
			r.local.Deliver(event)
		}
	}
}

func decodeRelayMessage(data []byte) (events.Event, error) {
	var msg relayMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return events.Event{}, err
	}
	var payload any
	if len(msg.Payload) > 0 && string(msg.Payload) != "null" {
		payload = msg.Payload
	}
	return events.Event{
		ID:          msg.ID,
		Type:        msg.Type,
		ComplaintID: msg.ComplaintID,
		Room:        msg.Room,
		ActorID:     msg.ActorID,
		Timestamp:   msg.Timestamp,
		Payload:     payload,
	}, nil
}
