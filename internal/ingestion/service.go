package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/shsdb/reconciler/internal/commitlog"
	"github.com/shsdb/reconciler/internal/domain"
	"github.com/shsdb/reconciler/internal/metrics"
)

// uploadNamespace seeds the content-derived keys of uploaded files.
var uploadNamespace = uuid.MustParse("6f1f4e0e-8f9b-4b7a-9d4c-3b5f2c9e7a10")

// Service ingests the files of one family: raw uploads go to the vanilla
// topic, and Run turns them into one transformed record per row.
type Service[T any] struct {
	log     commitlog.Log
	codec   *Codec[T]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService creates the ingestion service of codec's family.
func NewService[T any](l commitlog.Log, codec *Codec[T], m *metrics.Metrics, logger *slog.Logger) *Service[T] {
	return &Service[T]{
		log:     l,
		codec:   codec,
		metrics: m,
		logger:  logger.With("component", "ingestion", "family", string(codec.Family())),
	}
}

func (s *Service[T]) Family() domain.Family { return s.codec.Family() }

// Produce validates an uploaded file and publishes it unchanged. The returned
// key is derived from the content, so uploading the same bytes twice yields
// the same key and a single raw message.
func (s *Service[T]) Produce(ctx context.Context, raw []byte) (string, error) {
	if err := s.codec.Validate(raw); err != nil {
		return "", err
	}

	key := uuid.NewSHA1(uploadNamespace, raw).String()
	topic := domain.VanillaTopic(s.Family())
	id, err := s.log.Publish(ctx, topic, commitlog.Message{Key: key, Value: raw, DedupID: key})
	if err != nil {
		s.metrics.PublishFailures.WithLabelValues(topic).Inc()
		return "", fmt.Errorf("publish %s: %w", topic, err)
	}

	s.logger.Info("file accepted", "key", key, "message_id", id, "bytes", len(raw))
	return key, nil
}

// Run consumes the vanilla topic until ctx is done. Each file is decoded and
// every record is published to the transformed topic before the file is
// acknowledged.
func (s *Service[T]) Run(ctx context.Context) error {
	topic := domain.VanillaTopic(s.Family())
	sub, err := s.log.Subscribe(ctx, topic, string(s.Family())+"-transformer")
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	defer sub.Close()

	s.logger.Info("transform loop started", "topic", topic)
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, commitlog.ErrClosed) {
				s.logger.Info("transform loop stopped")
				return nil
			}
			return fmt.Errorf("next %s: %w", topic, err)
		}

		s.transform(ctx, msg)

		if err := sub.Ack(ctx, msg); err != nil {
			s.logger.Warn("ack failed", "key", msg.Key, "error", err)
		}
	}
}

func (s *Service[T]) transform(ctx context.Context, msg commitlog.Message) {
	family := string(s.Family())
	res, err := s.codec.DecodeFile(msg.Value)
	if err != nil {
		s.metrics.IngestedRows.WithLabelValues(family, metrics.OutcomeRejected).Inc()
		s.logger.Warn("file rejected", "key", msg.Key, "error", err)
		return
	}

	for _, rowErr := range res.Skipped {
		s.metrics.IngestedRows.WithLabelValues(family, metrics.OutcomeSkipped).Inc()
		s.logger.Warn("row skipped", "key", msg.Key, "error", rowErr)
	}

	topic := domain.TransformedTopic(s.Family())
	published := 0
	for i := range res.Records {
		rec := &res.Records[i]
		value, err := json.Marshal(rec)
		if err != nil {
			s.logger.Error("encode record", "key", msg.Key, "error", err)
			continue
		}
		out := commitlog.Message{
			Key:     s.codec.Key(rec),
			Value:   value,
			DedupID: msg.Key + "/" + strconv.Itoa(i),
		}
		if _, err := s.log.Publish(ctx, topic, out); err != nil {
			s.metrics.PublishFailures.WithLabelValues(topic).Inc()
			s.logger.Error("publish record", "record", out.Key, "error", err)
			continue
		}
		published++
	}
	s.metrics.IngestedRows.WithLabelValues(family, metrics.OutcomeDecoded).Add(float64(published))
	s.logger.Info("file transformed", "key", msg.Key, "records", published, "skipped", len(res.Skipped))
}

// FindRaw returns the uploaded file stored under key.
func (s *Service[T]) FindRaw(ctx context.Context, key string) ([]byte, error) {
	msg, err := commitlog.Latest(ctx, s.log, domain.VanillaTopic(s.Family()), key)
	if err != nil {
		return nil, err
	}
	return msg.Value, nil
}

// WriteAllRaw writes every uploaded file to w, each ending with a newline.
func (s *Service[T]) WriteAllRaw(ctx context.Context, w io.Writer) error {
	msgs, err := s.log.ReadAll(ctx, domain.VanillaTopic(s.Family()))
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if _, err := w.Write(m.Value); err != nil {
			return err
		}
		if n := len(m.Value); n > 0 && m.Value[n-1] != '\n' {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// FindRecord returns the latest transformed record published under key.
func (s *Service[T]) FindRecord(ctx context.Context, key string) (T, error) {
	var rec T
	msg, err := commitlog.Latest(ctx, s.log, domain.TransformedTopic(s.Family()), key)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		return rec, fmt.Errorf("decode record %s: %w", key, err)
	}
	return rec, nil
}

// AllRecords returns every transformed record, the last write per key
// winning.
func (s *Service[T]) AllRecords(ctx context.Context) ([]T, error) {
	msgs, err := s.log.ReadAll(ctx, domain.TransformedTopic(s.Family()))
	if err != nil {
		return nil, err
	}
	msgs = commitlog.Compact(msgs)
	out := make([]T, 0, len(msgs))
	for _, m := range msgs {
		var rec T
		if err := json.Unmarshal(m.Value, &rec); err != nil {
			s.logger.Warn("skip undecodable record", "record", m.Key, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Decode validates and decodes raw without publishing anything.
func (s *Service[T]) Decode(raw []byte) (*Result[T], error) {
	return s.codec.DecodeFile(raw)
}
