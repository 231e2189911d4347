// Package commitlog defines the append-only, topic-partitioned log the
// services publish to and subscribe from, plus an in-process implementation.
package commitlog

import (
	"context"
	"errors"
	"strconv"
	"time"
)

var (
	// ErrNotFound is returned when a lookup by key misses.
	ErrNotFound = errors.New("not found")
	// ErrClosed is returned by every operation on a closed log or subscription.
	ErrClosed = errors.New("commit log closed")
)

// Message is one entry of a topic.
type Message struct {
	// Offset is the position assigned at publish time. Offsets grow strictly
	// within a topic.
	Offset      uint64    `json:"offset"`
	Topic       string    `json:"topic"`
	Key         string    `json:"key"`
	Value       []byte    `json:"value"`
	PublishedAt time.Time `json:"publishedAt"`

	// DedupID is optional. Publishing a second message with the same DedupID
	// to the same topic stores nothing and returns the first message's ID.
	DedupID string `json:"dedupId,omitempty"`
}

// ID renders the offset as the message id returned by Publish.
func (m Message) ID() string { return strconv.FormatUint(m.Offset, 10) }

// Log is the transport contract.
type Log interface {
	// Publish appends msg to topic and returns the message id.
	Publish(ctx context.Context, topic string, msg Message) (string, error)
	// Subscribe opens the durable subscription name on topic. Delivery
	// resumes after the last acknowledged message of that name, so anything
	// delivered but not acknowledged is delivered again.
	Subscribe(ctx context.Context, topic, name string) (Subscription, error)
	// ReadAll returns every message of topic from the beginning.
	ReadAll(ctx context.Context, topic string) ([]Message, error)
	Close() error
}

// Subscription is a blocking stream of messages.
type Subscription interface {
	// Next blocks until a message is available, ctx is done or the
	// subscription is closed.
	Next(ctx context.Context) (Message, error)
	// Ack records msg and everything before it as processed.
	Ack(ctx context.Context, msg Message) error
	Close() error
}

// Latest returns the last message with the given key, replaying topic from
// the beginning.
func Latest(ctx context.Context, l Log, topic, key string) (Message, error) {
	msgs, err := l.ReadAll(ctx, topic)
	if err != nil {
		return Message{}, err
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Key == key {
			return msgs[i], nil
		}
	}
	return Message{}, ErrNotFound
}

// Compact keeps the last message per key, in order of first appearance.
func Compact(msgs []Message) []Message {
	pos := make(map[string]int, len(msgs))
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if i, ok := pos[m.Key]; ok {
			out[i] = m
			continue
		}
		pos[m.Key] = len(out)
		out = append(out, m)
	}
	return out
}
