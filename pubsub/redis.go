package pubsub

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"huntboard/models"

	"github.com/redis/go-redis/v9"
)

// Redis relays events through redis PUBLISH/SUBSCRIBE so multiple server
// instances see each other's chat and presence events.
type Redis struct {
	conn *redis.Client
}

func NewRedis(conn *redis.Client) *Redis {
	return &Redis{conn: conn}
}

func (r *Redis) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.conn.Publish(ctx, topic, data).Err()
}

func (r *Redis) Subscribe(ctx context.Context, topic string) (chan interface{}, func()) {
	sub := r.conn.Subscribe(ctx, topic)
	ch := make(chan interface{}, 16)

	go func() {
		defer close(ch)
		for msg := range sub.Channel() {
			payload, err := decodePayload(topic, msg.Payload)
			if err != nil {
				log.Printf("pubsub: failed to decode event on %s: %v", topic, err)
				continue
			}
			select {
			case ch <- payload:
			default:
			}
		}
	}()

	cancel := func() {
		if err := sub.Close(); err != nil {
			log.Printf("pubsub: failed to close subscription on %s: %v", topic, err)
		}
	}
	return ch, cancel
}

func (r *Redis) Close() {}

// decodePayload maps a topic back to its concrete event type.
func decodePayload(topic, raw string) (interface{}, error) {
	if strings.HasPrefix(topic, "chat:") {
		var m models.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, err
		}
		return m, nil
	}
	var p models.PresenceEvent
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return p, nil
}
