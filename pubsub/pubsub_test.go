package pubsub

import (
	"context"
	"testing"
	"time"

	"huntboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvWithin(t *testing.T, ch chan interface{}, d time.Duration) interface{} {
	t.Helper()
	select {
	case payload, ok := <-ch:
		require.True(t, ok, "channel closed before delivery")
		return payload
	case <-time.After(d):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestMemoryFanOut(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	a, cancelA := m.Subscribe(ctx, ChatTopic("c1"))
	defer cancelA()
	b, cancelB := m.Subscribe(ctx, ChatTopic("c1"))
	defer cancelB()
	other, cancelOther := m.Subscribe(ctx, ChatTopic("c2"))
	defer cancelOther()

	msg := models.Message{ID: "m1", Content: "hello"}
	require.NoError(t, m.Publish(ctx, ChatTopic("c1"), msg))

	assert.Equal(t, msg, recvWithin(t, a, time.Second))
	assert.Equal(t, msg, recvWithin(t, b, time.Second))

	select {
	case payload := <-other:
		t.Fatalf("unrelated topic received %v", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryUnsubscribeClosesChannel(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	ch, cancel := m.Subscribe(ctx, TopicPresence)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected closed channel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// publishing after cancel must not panic or deliver
	require.NoError(t, m.Publish(ctx, TopicPresence, models.PresenceEvent{UserID: "u1"}))
	cancel() // second cancel is a no-op
}

func TestMemoryDropsWhenSubscriberLagging(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	ch, cancel := m.Subscribe(ctx, TopicPresence)
	defer cancel()

	// overflow the buffer without reading; Publish must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			m.Publish(ctx, TopicPresence, models.PresenceEvent{IsOnline: i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a lagging subscriber")
	}
	assert.LessOrEqual(t, len(ch), cap(ch))
}

func TestMemoryClose(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	ch, _ := m.Subscribe(ctx, ChatTopic("c1"))
	m.Close()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed by Close")
	}

	// subscriptions after Close come back already closed
	ch2, cancel := m.Subscribe(ctx, ChatTopic("c1"))
	defer cancel()
	_, ok := <-ch2
	assert.False(t, ok)
}

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "chat:abc", ChatTopic("abc"))
	assert.Equal(t, "presence:abc", PresenceTopic("abc"))
	assert.Equal(t, "presence", TopicPresence)
}
