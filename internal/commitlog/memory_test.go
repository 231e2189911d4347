package commitlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PublishAndReadAll(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	defer l.Close()

	id1, err := l.Publish(ctx, "t", Message{Key: "a", Value: []byte("1")})
	require.NoError(t, err)
	id2, err := l.Publish(ctx, "t", Message{Key: "b", Value: []byte("2")})
	require.NoError(t, err)
	assert.Equal(t, "1", id1)
	assert.Equal(t, "2", id2)

	msgs, err := l.ReadAll(ctx, "t")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Key)
	assert.Equal(t, "t", msgs[1].Topic)

	empty, err := l.ReadAll(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemory_DedupID(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	defer l.Close()

	id1, err := l.Publish(ctx, "t", Message{Key: "k", Value: []byte("x"), DedupID: "d"})
	require.NoError(t, err)
	id2, err := l.Publish(ctx, "t", Message{Key: "k", Value: []byte("x"), DedupID: "d"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	msgs, err := l.ReadAll(ctx, "t")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestMemory_SubscriptionResumesAfterAck(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	defer l.Close()

	for _, k := range []string{"a", "b", "c"} {
		_, err := l.Publish(ctx, "t", Message{Key: k})
		require.NoError(t, err)
	}

	sub, err := l.Subscribe(ctx, "t", "s")
	require.NoError(t, err)
	first, err := sub.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, sub.Ack(ctx, first))
	second, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", second.Key)
	require.NoError(t, sub.Close())

	// b was delivered but never acknowledged.
	sub, err = l.Subscribe(ctx, "t", "s")
	require.NoError(t, err)
	again, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", again.Key)

	other, err := l.Subscribe(ctx, "t", "other")
	require.NoError(t, err)
	m, err := other.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", m.Key)
}

func TestMemory_NextBlocksUntilPublish(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	defer l.Close()

	sub, err := l.Subscribe(ctx, "t", "s")
	require.NoError(t, err)

	got := make(chan Message, 1)
	go func() {
		m, err := sub.Next(ctx)
		if err == nil {
			got <- m
		}
	}()

	_, err = l.Publish(ctx, "t", Message{Key: "late"})
	require.NoError(t, err)

	select {
	case m := <-got:
		assert.Equal(t, "late", m.Key)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber was not woken")
	}
}

func TestMemory_NextObservesContextAndClose(t *testing.T) {
	l := NewMemory()
	sub, err := l.Subscribe(context.Background(), "t", "s")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, l.Close())
	_, err = sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = l.Publish(context.Background(), "t", Message{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLatestAndCompact(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	defer l.Close()

	for _, m := range []Message{{Key: "a", Value: []byte("1")}, {Key: "b", Value: []byte("2")}, {Key: "a", Value: []byte("3")}} {
		_, err := l.Publish(ctx, "t", m)
		require.NoError(t, err)
	}

	m, err := Latest(ctx, l, "t", "a")
	require.NoError(t, err)
	assert.Equal(t, "3", string(m.Value))

	_, err = Latest(ctx, l, "t", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := l.ReadAll(ctx, "t")
	require.NoError(t, err)
	compacted := Compact(all)
	require.Len(t, compacted, 2)
	assert.Equal(t, "a", compacted[0].Key)
	assert.Equal(t, "3", string(compacted[0].Value))
	assert.Equal(t, "b", compacted[1].Key)
}
