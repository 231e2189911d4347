// Package natslog implements the commit log on NATS JetStream. All topics
// share one stream; a topic is the subject "<stream>.<topic>".
package natslog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/shsdb/reconciler/internal/commitlog"
)

// KeyHeader carries the message key.
const KeyHeader = "Shsdb-Key"

// Config describes the connection and the stream.
type Config struct {
	URL    string
	Stream string
	// DuplicateWindow bounds how long a DedupID is remembered by the server.
	DuplicateWindow time.Duration
	// FetchWait bounds a single pull request of a subscription.
	FetchWait time.Duration
}

// Log is a commitlog.Log backed by a JetStream stream.
type Log struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// Connect dials NATS and creates or updates the stream.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Log, error) {
	if cfg.Stream == "" {
		cfg.Stream = "SHSDB"
	}
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = 24 * time.Hour
	}
	if cfg.FetchWait <= 0 {
		cfg.FetchWait = time.Second
	}
	logger = logger.With("component", "natslog")

	nc, err := nats.Connect(cfg.URL,
		nats.Name("shsdb-reconciler"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.Stream,
		Subjects:   []string{cfg.Stream + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		Duplicates: cfg.DuplicateWindow,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create stream %s: %w", cfg.Stream, err)
	}

	logger.Info("connected", "url", cfg.URL, "stream", cfg.Stream)
	return &Log{nc: nc, js: js, stream: stream, cfg: cfg, logger: logger}, nil
}

func (l *Log) subject(topic string) string { return l.cfg.Stream + "." + topic }

func (l *Log) isClosed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

func (l *Log) Publish(ctx context.Context, topic string, msg commitlog.Message) (string, error) {
	if l.isClosed() {
		return "", commitlog.ErrClosed
	}
	m := nats.NewMsg(l.subject(topic))
	m.Data = msg.Value
	m.Header.Set(KeyHeader, msg.Key)

	var opts []jetstream.PublishOpt
	if msg.DedupID != "" {
		opts = append(opts, jetstream.WithMsgID(msg.DedupID))
	}
	ack, err := l.js.PublishMsg(ctx, m, opts...)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", topic, err)
	}
	return commitlog.Message{Offset: ack.Sequence}.ID(), nil
}

// ReadAll replays topic with an ordered consumer up to the number of
// messages the stream held for it when the call started.
func (l *Log) ReadAll(ctx context.Context, topic string) ([]commitlog.Message, error) {
	if l.isClosed() {
		return nil, commitlog.ErrClosed
	}
	subj := l.subject(topic)
	info, err := l.stream.Info(ctx, jetstream.WithSubjectFilter(subj))
	if err != nil {
		return nil, fmt.Errorf("stream info %s: %w", topic, err)
	}
	pending := int(info.State.Subjects[subj])
	if pending == 0 {
		return nil, nil
	}

	cons, err := l.stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{subj},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", topic, err)
	}

	msgs := make([]commitlog.Message, 0, pending)
	for len(msgs) < pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := cons.Next(jetstream.FetchMaxWait(l.cfg.FetchWait))
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", topic, err)
		}
		msgs = append(msgs, l.convert(topic, m))
	}
	return msgs, nil
}

func (l *Log) convert(topic string, m jetstream.Msg) commitlog.Message {
	out := commitlog.Message{
		Topic:   topic,
		Key:     m.Headers().Get(KeyHeader),
		DedupID: m.Headers().Get(nats.MsgIdHdr),
		Value:   m.Data(),
	}
	if meta, err := m.Metadata(); err == nil {
		out.Offset = meta.Sequence.Stream
		out.PublishedAt = meta.Timestamp
	}
	return out
}

// Subscribe binds a durable pull consumer named after topic and name.
func (l *Log) Subscribe(ctx context.Context, topic, name string) (commitlog.Subscription, error) {
	if l.isClosed() {
		return nil, commitlog.ErrClosed
	}
	durable := durableName(topic, name)
	cons, err := l.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       durable,
		FilterSubject: l.subject(topic),
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		MaxAckPending: 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("consumer %s: %w", durable, err)
	}
	return &subscription{log: l, topic: topic, cons: cons, inflight: make(map[uint64]jetstream.Msg)}, nil
}

func durableName(topic, name string) string {
	r := strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")
	return r.Replace(topic + "__" + name)
}

// Close closes the connection. Subscriptions fail with ErrClosed afterwards.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.nc.Close()
	return nil
}

type subscription struct {
	log   *Log
	topic string
	cons  jetstream.Consumer

	mu       sync.Mutex
	inflight map[uint64]jetstream.Msg
	closed   bool
}

func (s *subscription) Next(ctx context.Context) (commitlog.Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return commitlog.Message{}, err
		}
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed || s.log.isClosed() {
			return commitlog.Message{}, commitlog.ErrClosed
		}

		m, err := s.cons.Next(jetstream.FetchMaxWait(s.log.cfg.FetchWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if s.log.isClosed() || errors.Is(err, nats.ErrConnectionClosed) {
				return commitlog.Message{}, commitlog.ErrClosed
			}
			return commitlog.Message{}, fmt.Errorf("fetch %s: %w", s.topic, err)
		}

		msg := s.log.convert(s.topic, m)
		s.mu.Lock()
		s.inflight[msg.Offset] = m
		s.mu.Unlock()
		return msg, nil
	}
}

// Ack acknowledges msg and every earlier message still in flight.
func (s *subscription) Ack(ctx context.Context, msg commitlog.Message) error {
	if s.log.isClosed() {
		return commitlog.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for seq, m := range s.inflight {
		if seq > msg.Offset {
			continue
		}
		if err := m.Ack(); err != nil {
			return fmt.Errorf("ack %s seq %d: %w", s.topic, seq, err)
		}
		delete(s.inflight, seq)
	}
	return nil
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.inflight = map[uint64]jetstream.Msg{}
	return nil
}
