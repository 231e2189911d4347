// Package repository stores the commit log in SQLite.
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

// Log is a commitlog.Log whose topics are rows of the messages table.
type Log struct {
	db           *sql.DB
	notify       commitlog.Notifier
	pollInterval time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewLog wraps an initialised database. Subscribers are woken by publishes
// of this process and poll every pollInterval for writes of other processes.
func NewLog(db *sql.DB, pollInterval time.Duration) *Log {
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	return &Log{db: db, pollInterval: pollInterval}
}

// Open initialises the database at dsn and returns a log over it.
func Open(dsn string) (*Log, error) {
	db, err := InitDB(dsn)
	if err != nil {
		return nil, err
	}
	return NewLog(db, 0), nil
}

func (l *Log) isClosed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

func (l *Log) Publish(ctx context.Context, topic string, msg commitlog.Message) (string, error) {
	if l.isClosed() {
		return "", commitlog.ErrClosed
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var dedup any
	if msg.DedupID != "" {
		var seq uint64
		err := tx.QueryRowContext(ctx,
			"SELECT seq FROM messages WHERE topic = ? AND dedup_id = ?", topic, msg.DedupID,
		).Scan(&seq)
		if err == nil {
			return commitlog.Message{Offset: seq}.ID(), nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("dedup lookup: %w", err)
		}
		dedup = msg.DedupID
	}

	var seq uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE topic = ?", topic,
	).Scan(&seq); err != nil {
		return "", fmt.Errorf("next seq: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (topic, seq, key, dedup_id, value, published_at)
		VALUES (?,?,?,?,?,?)`,
		topic, seq, msg.Key, dedup, msg.Value, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	l.notify.Broadcast()
	return commitlog.Message{Offset: seq}.ID(), nil
}

func (l *Log) ReadAll(ctx context.Context, topic string) ([]commitlog.Message, error) {
	if l.isClosed() {
		return nil, commitlog.ErrClosed
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT topic, seq, key, dedup_id, value, published_at
		FROM messages WHERE topic = ? ORDER BY seq`, topic,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []commitlog.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// after returns the first message of topic with a sequence above seq.
func (l *Log) after(ctx context.Context, topic string, seq uint64) (*commitlog.Message, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT topic, seq, key, dedup_id, value, published_at
		FROM messages WHERE topic = ? AND seq > ? ORDER BY seq LIMIT 1`, topic, seq,
	)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// Close closes the log and its database.
func (l *Log) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.notify.Broadcast()
	return l.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*commitlog.Message, error) {
	var m commitlog.Message
	var dedup sql.NullString
	var publishedAt string
	if err := s.Scan(&m.Topic, &m.Offset, &m.Key, &dedup, &m.Value, &publishedAt); err != nil {
		return nil, err
	}
	m.DedupID = dedup.String
	m.PublishedAt, _ = time.Parse(time.RFC3339Nano, publishedAt)
	return &m, nil
}
