package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shsdb/reconciler/internal/commitlog"
)

// Subscribe resumes the named subscription after its acknowledged sequence.
func (l *Log) Subscribe(ctx context.Context, topic, name string) (commitlog.Subscription, error) {
	if l.isClosed() {
		return nil, commitlog.ErrClosed
	}
	var acked uint64
	err := l.db.QueryRowContext(ctx,
		"SELECT acked_seq FROM subscriptions WHERE topic = ? AND name = ?", topic, name,
	).Scan(&acked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load cursor %s/%s: %w", topic, name, err)
	}
	return &subscription{log: l, topic: topic, name: name, last: acked}, nil
}

type subscription struct {
	log   *Log
	topic string
	name  string

	mu     sync.Mutex
	last   uint64 // sequence of the last delivered message
	closed bool
}

func (s *subscription) Next(ctx context.Context) (commitlog.Message, error) {
	ticker := time.NewTicker(s.log.pollInterval)
	defer ticker.Stop()

	for {
		wait := s.log.notify.Wait()

		s.mu.Lock()
		if s.closed || s.log.isClosed() {
			s.mu.Unlock()
			return commitlog.Message{}, commitlog.ErrClosed
		}
		m, err := s.log.after(ctx, s.topic, s.last)
		if err != nil {
			s.mu.Unlock()
			if ctx.Err() != nil {
				return commitlog.Message{}, ctx.Err()
			}
			if s.log.isClosed() {
				return commitlog.Message{}, commitlog.ErrClosed
			}
			return commitlog.Message{}, fmt.Errorf("read %s: %w", s.topic, err)
		}
		if m != nil {
			s.last = m.Offset
			s.mu.Unlock()
			return *m, nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return commitlog.Message{}, ctx.Err()
		case <-wait:
		case <-ticker.C:
		}
	}
}

func (s *subscription) Ack(ctx context.Context, msg commitlog.Message) error {
	if s.log.isClosed() {
		return commitlog.ErrClosed
	}
	_, err := s.log.db.ExecContext(ctx,
		`INSERT INTO subscriptions (topic, name, acked_seq, updated_at) VALUES (?,?,?,?)
		ON CONFLICT(topic, name) DO UPDATE SET
			acked_seq = MAX(acked_seq, excluded.acked_seq),
			updated_at = excluded.updated_at`,
		s.topic, s.name, msg.Offset, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("ack %s/%s: %w", s.topic, s.name, err)
	}
	return nil
}

func (s *subscription) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.log.notify.Broadcast()
	return nil
}
