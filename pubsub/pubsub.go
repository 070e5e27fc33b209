// Package pubsub is the event relay behind chat and presence subscriptions.
// The broker is an injected dependency, not a global: the default Memory
// broker is process-local, and the Redis broker relays the same topics
// through PUBLISH/SUBSCRIBE for multi-instance deployments.
package pubsub

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Topic naming, shared by both brokers and the schema resolvers.
const (
	TopicPresence = "presence"
)

func ChatTopic(collectionID string) string {
	return "chat:" + collectionID
}

func PresenceTopic(collectionID string) string {
	return "presence:" + collectionID
}

type Broker interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
	// Subscribe returns a channel of payloads for topic and a cancel func.
	// Delivery is best-effort: a slow subscriber's messages are dropped.
	Subscribe(ctx context.Context, topic string) (chan interface{}, func())
	Close()
}

// Memory is the in-process broker.
type Memory struct {
	mu     sync.Mutex
	topics map[string]map[string]chan interface{}
	closed bool
}

func NewMemory() *Memory {
	return &Memory{topics: make(map[string]map[string]chan interface{})}
}

func (m *Memory) Publish(_ context.Context, topic string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.topics[topic] {
		select {
		case ch <- payload:
		default:
			// subscriber not keeping up; drop rather than block the publisher
		}
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, topic string) (chan interface{}, func()) {
	ch := make(chan interface{}, 16)
	id := uuid.NewString()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if m.topics[topic] == nil {
		m.topics[topic] = make(map[string]chan interface{})
	}
	m.topics[topic][id] = ch
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if subs := m.topics[topic]; subs != nil {
			if _, ok := subs[id]; ok {
				delete(subs, id)
				close(ch)
			}
			if len(subs) == 0 {
				delete(m.topics, topic)
			}
		}
	}
	return ch, cancel
}

func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for topic, subs := range m.topics {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(m.topics, topic)
	}
}
