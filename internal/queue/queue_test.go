package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestInMemoryDelivers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: "auth_audit", Body: json.RawMessage(`{"action":"login"}`)}))

	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	msg := receive(t, ch)
	assert.Equal(t, "auth_audit", msg.Type)
	assert.JSONEq(t, `{"action":"login"}`, string(msg.Body))

	cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestInMemoryPublishRespectsContext(t *testing.T) {
	q := NewInMemory(1)
	require.NoError(t, q.Publish(context.Background(), Message{Type: "a"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Publish(ctx, Message{Type: "b"}), context.DeadlineExceeded)
}

func TestRedisQueueRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	q := NewRedisQueue(client, "")
	q.timeout = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Publish(ctx, Message{Type: "auth_audit", Body: json.RawMessage(`{"n":1}`)}))
	// Entries that are not JSON are skipped.
	require.NoError(t, client.LPush(ctx, DefaultKey, "garbage|body").Err())
	require.NoError(t, q.Publish(ctx, Message{Type: "auth_audit", Body: json.RawMessage(`{"n":2}`)}))

	ch, err := q.Consume(ctx)
	require.NoError(t, err)

	assert.JSONEq(t, `{"n":1}`, string(receive(t, ch).Body))
	assert.JSONEq(t, `{"n":2}`, string(receive(t, ch).Body))
}
