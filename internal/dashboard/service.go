// Package dashboard is the read side over the joined records.
package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shsdb/reconciler/internal/commitlog"
	"github.com/shsdb/reconciler/internal/domain"
)

// Service replays the joined-record topic.
type Service struct {
	log    commitlog.Log
	logger *slog.Logger
}

func NewService(l commitlog.Log, logger *slog.Logger) *Service {
	return &Service{log: l, logger: logger.With("component", "dashboard")}
}

// AllMicroData returns every joined record, the last write per report key
// winning.
func (s *Service) AllMicroData(ctx context.Context) ([]domain.MicroData, error) {
	msgs, err := s.log.ReadAll(ctx, domain.MicroDataTopic)
	if err != nil {
		return nil, err
	}
	msgs = commitlog.Compact(msgs)
	out := make([]domain.MicroData, 0, len(msgs))
	for _, m := range msgs {
		var md domain.MicroData
		if err := json.Unmarshal(m.Value, &md); err != nil {
			s.logger.Warn("skip undecodable joined record", "key", m.Key, "error", err)
			continue
		}
		out = append(out, md)
	}
	return out, nil
}

// InstrumentClassesWithCount counts the joined records per ESA 2010
// instrument class of the held security. Records without a class are not
// counted.
func (s *Service) InstrumentClassesWithCount(ctx context.Context) (map[string]int, error) {
	all, err := s.AllMicroData(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, md := range all {
		if c := md.Security.InstrumentClass; c != "" {
			counts[c]++
		}
	}
	return counts, nil
}
