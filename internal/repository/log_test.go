package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shsdb/reconciler/internal/commitlog"
)

func openTestLog(t *testing.T, path string) *Log {
	t.Helper()
	l, err := Open(path)
	require.NoError(t, err)
	return l
}

func TestLog_PublishReadAll(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t, filepath.Join(t.TempDir(), "log.db"))
	defer l.Close()

	id, err := l.Publish(ctx, "reports-vanilla", commitlog.Message{Key: "k1", Value: []byte("a;b")})
	require.NoError(t, err)
	assert.Equal(t, "1", id)
	id, err = l.Publish(ctx, "reports-vanilla", commitlog.Message{Key: "k2", Value: []byte("c;d")})
	require.NoError(t, err)
	assert.Equal(t, "2", id)
	id, err = l.Publish(ctx, "csdb-vanilla", commitlog.Message{Key: "k3"})
	require.NoError(t, err)
	assert.Equal(t, "1", id, "sequences are per topic")

	msgs, err := l.ReadAll(ctx, "reports-vanilla")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "k1", msgs[0].Key)
	assert.Equal(t, []byte("c;d"), msgs[1].Value)
	assert.Equal(t, uint64(2), msgs[1].Offset)
	assert.False(t, msgs[0].PublishedAt.IsZero())

	m, err := commitlog.Latest(ctx, l, "reports-vanilla", "k2")
	require.NoError(t, err)
	assert.Equal(t, "c;d", string(m.Value))
}

func TestLog_DedupID(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t, ":memory:")
	defer l.Close()

	first, err := l.Publish(ctx, "t", commitlog.Message{Key: "k", Value: []byte("v"), DedupID: "same"})
	require.NoError(t, err)
	second, err := l.Publish(ctx, "t", commitlog.Message{Key: "k", Value: []byte("v"), DedupID: "same"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = l.Publish(ctx, "other", commitlog.Message{Key: "k", DedupID: "same"})
	require.NoError(t, err)

	msgs, err := l.ReadAll(ctx, "t")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "same", msgs[0].DedupID)
}

func TestLog_SubscriptionSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "log.db")

	l := openTestLog(t, path)
	for _, k := range []string{"a", "b", "c"} {
		_, err := l.Publish(ctx, "t", commitlog.Message{Key: k})
		require.NoError(t, err)
	}
	sub, err := l.Subscribe(ctx, "t", "engine")
	require.NoError(t, err)
	a, err := sub.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, sub.Ack(ctx, a))
	b, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", b.Key)
	require.NoError(t, sub.Close())
	require.NoError(t, l.Close())

	l = openTestLog(t, path)
	defer l.Close()
	sub, err = l.Subscribe(ctx, "t", "engine")
	require.NoError(t, err)
	again, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", again.Key, "unacknowledged messages are redelivered")

	require.NoError(t, sub.Ack(ctx, again))
	require.NoError(t, sub.Ack(ctx, a), "acks never move the cursor back")
	sub, err = l.Subscribe(ctx, "t", "engine")
	require.NoError(t, err)
	c, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", c.Key)
}

func TestLog_NextWakesOnPublish(t *testing.T) {
	ctx := context.Background()
	l := NewLog(mustInitDB(t), time.Hour)
	defer l.Close()

	sub, err := l.Subscribe(ctx, "t", "s")
	require.NoError(t, err)

	got := make(chan commitlog.Message, 1)
	go func() {
		if m, err := sub.Next(ctx); err == nil {
			got <- m
		}
	}()

	_, err = l.Publish(ctx, "t", commitlog.Message{Key: "late"})
	require.NoError(t, err)

	select {
	case m := <-got:
		assert.Equal(t, "late", m.Key)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber was not woken")
	}
}

func TestLog_Closed(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t, ":memory:")
	sub, err := l.Subscribe(ctx, "t", "s")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = l.Publish(ctx, "t", commitlog.Message{})
	assert.ErrorIs(t, err, commitlog.ErrClosed)
	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, commitlog.ErrClosed)
	_, err = l.ReadAll(ctx, "t")
	assert.ErrorIs(t, err, commitlog.ErrClosed)
}

func mustInitDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(":memory:")
	require.NoError(t, err)
	return db
}
