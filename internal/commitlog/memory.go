package commitlog

import (
	"context"
	"sync"
	"time"
)

type memTopic struct {
	msgs  []Message
	dedup map[string]uint64
}

// Memory is a Log held in process memory. Nothing survives Close.
type Memory struct {
	mu      sync.Mutex
	topics  map[string]*memTopic
	cursors map[string]uint64
	closed  bool
	notify  Notifier
}

// NewMemory returns an empty in-memory log.
func NewMemory() *Memory {
	return &Memory{
		topics:  make(map[string]*memTopic),
		cursors: make(map[string]uint64),
	}
}

func (m *Memory) topic(name string) *memTopic {
	t, ok := m.topics[name]
	if !ok {
		t = &memTopic{dedup: make(map[string]uint64)}
		m.topics[name] = t
	}
	return t
}

func (m *Memory) Publish(ctx context.Context, topic string, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrClosed
	}
	t := m.topic(topic)
	if msg.DedupID != "" {
		if off, ok := t.dedup[msg.DedupID]; ok {
			m.mu.Unlock()
			return Message{Offset: off}.ID(), nil
		}
	}
	msg.Topic = topic
	msg.Offset = uint64(len(t.msgs)) + 1
	msg.PublishedAt = time.Now().UTC()
	msg.Value = append([]byte(nil), msg.Value...)
	t.msgs = append(t.msgs, msg)
	if msg.DedupID != "" {
		t.dedup[msg.DedupID] = msg.Offset
	}
	m.mu.Unlock()

	m.notify.Broadcast()
	return msg.ID(), nil
}

func (m *Memory) Subscribe(ctx context.Context, topic, name string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	cursor := topic + "/" + name
	return &memSubscription{log: m, topic: topic, cursor: cursor, next: m.cursors[cursor]}, nil
}

func (m *Memory) ReadAll(ctx context.Context, topic string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	t, ok := m.topics[topic]
	if !ok {
		return nil, nil
	}
	return append([]Message(nil), t.msgs...), nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.notify.Broadcast()
	return nil
}

type memSubscription struct {
	log    *Memory
	topic  string
	cursor string

	mu     sync.Mutex
	next   uint64 // count of messages already handed out
	closed bool
}

func (s *memSubscription) Next(ctx context.Context) (Message, error) {
	for {
		wait := s.log.notify.Wait()

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return Message{}, ErrClosed
		}
		s.log.mu.Lock()
		if s.log.closed {
			s.log.mu.Unlock()
			s.mu.Unlock()
			return Message{}, ErrClosed
		}
		if t, ok := s.log.topics[s.topic]; ok && s.next < uint64(len(t.msgs)) {
			msg := t.msgs[s.next]
			s.next++
			s.log.mu.Unlock()
			s.mu.Unlock()
			return msg, nil
		}
		s.log.mu.Unlock()
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-wait:
		}
	}
}

func (s *memSubscription) Ack(ctx context.Context, msg Message) error {
	s.log.mu.Lock()
	defer s.log.mu.Unlock()
	if s.log.closed {
		return ErrClosed
	}
	if msg.Offset > s.log.cursors[s.cursor] {
		s.log.cursors[s.cursor] = msg.Offset
	}
	return nil
}

func (s *memSubscription) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.log.notify.Broadcast()
	return nil
}
