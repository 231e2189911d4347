// Package reconciliation joins reported holdings with the reference data of
// the securities they hold.
//
// Two subscription loops buffer the transformed reference records and
// reports. A third loop periodically resolves every pending report against
// the reference buffer and publishes one joined record per matched report.
package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shsdb/reconciler/internal/commitlog"
	"github.com/shsdb/reconciler/internal/domain"
	"github.com/shsdb/reconciler/internal/metrics"
)

// Config tunes the engine.
type Config struct {
	// TickInterval is the pause between two reconciliation passes.
	TickInterval time.Duration
	// ReferenceRetention evicts buffered reference records that long after
	// their last update. Zero keeps them forever.
	ReferenceRetention time.Duration
}

// Status is a point-in-time view of the buffers.
type Status struct {
	PendingReports     int `json:"pending_reports"`
	BufferedReferences int `json:"buffered_references"`
	JoinedReports      int `json:"joined_reports"`
}

// Engine owns the join buffers.
type Engine struct {
	log     commitlog.Log
	cfg     Config
	metrics *metrics.Metrics
	logger  *slog.Logger

	pending    *pendingReports
	references *referenceBuffer
}

// NewEngine creates an engine reading from and publishing to l.
func NewEngine(l commitlog.Log, cfg Config, m *metrics.Metrics, logger *slog.Logger) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &Engine{
		log:        l,
		cfg:        cfg,
		metrics:    m,
		logger:     logger.With("component", "reconciliation"),
		pending:    newPendingReports(),
		references: newReferenceBuffer(cfg.ReferenceRetention),
	}
}

// Run restores the buffers by replaying the source topics from the
// beginning, then runs the two subscription loops and the tick loop until
// ctx is done. It returns once all three loops have exited.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Restore(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.consume(ctx, domain.TransformedTopic(domain.FamilyCSDB), "microdata-csdb", e.addReference)
	})
	g.Go(func() error {
		return e.consume(ctx, domain.TransformedTopic(domain.FamilyReports), "microdata-reports", e.addReport)
	})
	g.Go(func() error {
		ticker := time.NewTicker(e.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				e.Reconcile(ctx)
			}
		}
	})

	err := g.Wait()
	e.logger.Info("engine stopped", "pending", e.pending.Len())
	return err
}

// Restore marks every report already joined as retired and reloads both
// buffers from the start of their topics.
func (e *Engine) Restore(ctx context.Context) error {
	joined, err := e.log.ReadAll(ctx, domain.MicroDataTopic)
	if err != nil {
		return fmt.Errorf("replay %s: %w", domain.MicroDataTopic, err)
	}
	for _, m := range joined {
		e.pending.Retire(m.Key)
	}

	for _, src := range []struct {
		family domain.Family
		add    func(commitlog.Message) error
	}{
		{domain.FamilyCSDB, e.addReference},
		{domain.FamilyReports, e.addReport},
	} {
		topic := domain.TransformedTopic(src.family)
		msgs, err := e.log.ReadAll(ctx, topic)
		if err != nil {
			return fmt.Errorf("replay %s: %w", topic, err)
		}
		for _, m := range msgs {
			if err := src.add(m); err != nil {
				e.logger.Warn("skip malformed record", "topic", topic, "key", m.Key, "error", err)
			}
		}
	}

	e.updateGauges()
	e.logger.Info("buffers restored",
		"joined", e.pending.RetiredLen(), "pending", e.pending.Len(), "references", e.references.Len())
	return nil
}

// consume buffers every message of topic and acknowledges it afterwards.
func (e *Engine) consume(ctx context.Context, topic, name string, add func(commitlog.Message) error) error {
	sub, err := e.log.Subscribe(ctx, topic, name)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	defer sub.Close()

	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, commitlog.ErrClosed) {
				return nil
			}
			return fmt.Errorf("next %s: %w", topic, err)
		}
		if err := add(msg); err != nil {
			e.logger.Warn("skip malformed record", "topic", topic, "key", msg.Key, "error", err)
		}
		if err := sub.Ack(ctx, msg); err != nil {
			e.logger.Warn("ack failed", "topic", topic, "key", msg.Key, "error", err)
		}
	}
}

func (e *Engine) addReference(msg commitlog.Message) error {
	var ref domain.Reference
	if err := json.Unmarshal(msg.Value, &ref); err != nil {
		return err
	}
	e.references.Put(ref)
	e.metrics.BufferedReferences.Set(float64(e.references.Len()))
	return nil
}

func (e *Engine) addReport(msg commitlog.Message) error {
	var rep domain.Report
	if err := json.Unmarshal(msg.Value, &rep); err != nil {
		return err
	}
	if !e.pending.Add(rep) {
		e.logger.Debug("report already pending or joined", "report", rep.Key.String())
		return nil
	}
	e.metrics.PendingReports.Set(float64(e.pending.Len()))
	return nil
}

// lookup resolves a report against the reference buffer, version 1 first.
func (e *Engine) lookup(k domain.ReportKey) (domain.Reference, bool) {
	for _, ck := range domain.CandidateKeys(k) {
		if ref, ok := e.references.Get(ck); ok {
			return ref, true
		}
	}
	return domain.Reference{}, false
}

// Reconcile runs one pass over the pending reports and returns the number of
// joined records published. A report whose publish fails stays pending for
// the next pass.
func (e *Engine) Reconcile(ctx context.Context) int {
	e.metrics.Ticks.Inc()

	var retired []string
	for _, rep := range e.pending.Snapshot() {
		ref, ok := e.lookup(rep.Key)
		if !ok {
			continue
		}

		key := rep.Key.String()
		value, err := json.Marshal(domain.NewMicroData(ref, rep))
		if err != nil {
			e.logger.Error("encode joined record", "report", key, "error", err)
			continue
		}
		id, err := e.log.Publish(ctx, domain.MicroDataTopic, commitlog.Message{Key: key, Value: value, DedupID: key})
		if err != nil {
			e.metrics.PublishFailures.WithLabelValues(domain.MicroDataTopic).Inc()
			e.logger.Error("publish joined record", "report", key, "error", err)
			continue
		}
		e.logger.Debug("report joined", "report", key, "reference", ref.Key.String(), "message_id", id)
		retired = append(retired, key)
	}

	if len(retired) > 0 {
		e.pending.Retire(retired...)
		e.metrics.JoinedRecords.Add(float64(len(retired)))
		e.logger.Info("reports joined", "count", len(retired), "pending", e.pending.Len())
	}
	e.updateGauges()
	return len(retired)
}

func (e *Engine) updateGauges() {
	e.metrics.PendingReports.Set(float64(e.pending.Len()))
	e.metrics.BufferedReferences.Set(float64(e.references.Len()))
}

// Status reports the current buffer sizes.
func (e *Engine) Status() Status {
	return Status{
		PendingReports:     e.pending.Len(),
		BufferedReferences: e.references.Len(),
		JoinedReports:      e.pending.RetiredLen(),
	}
}
