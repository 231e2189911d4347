package ingestion

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shsdb/reconciler/internal/commitlog"
	"github.com/shsdb/reconciler/internal/domain"
	"github.com/shsdb/reconciler/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runService[T any](t *testing.T, svc *Service[T]) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func TestService_ProduceIsContentAddressed(t *testing.T) {
	ctx := context.Background()
	l := commitlog.NewMemory()
	defer l.Close()
	svc := NewService(l, Reports, metrics.New(), discardLogger())

	raw := readSample(t, "reports_sample.csv")
	key1, err := svc.Produce(ctx, raw)
	require.NoError(t, err)
	key2, err := svc.Produce(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	msgs, err := l.ReadAll(ctx, domain.VanillaTopic(domain.FamilyReports))
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	got, err := svc.FindRaw(ctx, key1)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = svc.FindRaw(ctx, "unknown")
	assert.ErrorIs(t, err, commitlog.ErrNotFound)
}

func TestService_ProduceRejectsInvalidFiles(t *testing.T) {
	ctx := context.Background()
	l := commitlog.NewMemory()
	defer l.Close()
	svc := NewService(l, Reports, metrics.New(), discardLogger())

	_, err := svc.Produce(ctx, []byte("ISIN;PERIOD\nX;202112\n"))
	assert.ErrorIs(t, err, ErrHeaderInvalid)

	msgs, err := l.ReadAll(ctx, domain.VanillaTopic(domain.FamilyReports))
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestService_RunTransformsUploads(t *testing.T) {
	ctx := context.Background()
	l := commitlog.NewMemory()
	defer l.Close()
	m := metrics.New()
	svc := NewService(l, References, m, discardLogger())
	runService(t, svc)

	_, err := svc.Produce(ctx, readSample(t, "csdb_sample.csv"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		recs, err := svc.AllRecords(ctx)
		return err == nil && len(recs) == 4
	}, 2*time.Second, 10*time.Millisecond)

	rec, err := svc.FindRecord(ctx, "US1234567+202201+0")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Key.Version)
	assert.Equal(t, "ACME CORP", rec.IssuerName)
	require.NotNil(t, rec.MaturityDate)
	assert.Equal(t, "2029-03-15", rec.MaturityDate.String())

	_, err = svc.FindRecord(ctx, "US1234567+202201+7")
	assert.ErrorIs(t, err, commitlog.ErrNotFound)

	family := string(domain.FamilyCSDB)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.IngestedRows.WithLabelValues(family, metrics.OutcomeDecoded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestedRows.WithLabelValues(family, metrics.OutcomeSkipped)))
}

func TestService_AllRecordsKeepsLastWrite(t *testing.T) {
	ctx := context.Background()
	l := commitlog.NewMemory()
	defer l.Close()
	svc := NewService(l, References, metrics.New(), discardLogger())
	runService(t, svc)

	header := "IDENTIFIER;PERIOD;VERSION;ISSUER_NAME\n"
	_, err := svc.Produce(ctx, []byte(header+"US1;202201;1;OLD NAME\n"))
	require.NoError(t, err)
	_, err = svc.Produce(ctx, []byte(header+"US1;202201;1;NEW NAME\n"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		msgs, err := l.ReadAll(ctx, domain.TransformedTopic(domain.FamilyCSDB))
		return err == nil && len(msgs) == 2
	}, 2*time.Second, 10*time.Millisecond)

	recs, err := svc.AllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "NEW NAME", recs[0].IssuerName)
}

func TestService_WriteAllRaw(t *testing.T) {
	ctx := context.Background()
	l := commitlog.NewMemory()
	defer l.Close()
	svc := NewService(l, References, metrics.New(), discardLogger())

	_, err := svc.Produce(ctx, []byte("IDENTIFIER;PERIOD;VERSION\nA;202201;1"))
	require.NoError(t, err)
	_, err = svc.Produce(ctx, []byte("IDENTIFIER;PERIOD;VERSION\nB;202201;1\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteAllRaw(ctx, &buf))
	assert.Equal(t, "IDENTIFIER;PERIOD;VERSION\nA;202201;1\nIDENTIFIER;PERIOD;VERSION\nB;202201;1\n", buf.String())
}

func TestService_RejectedFileIsAcknowledged(t *testing.T) {
	ctx := context.Background()
	l := commitlog.NewMemory()
	defer l.Close()
	m := metrics.New()
	svc := NewService(l, Reports, m, discardLogger())
	runService(t, svc)

	// Bypass Produce to put a file with a bad field on the raw topic.
	header := domain.ReportSchema.Header()
	bad := "DE2;202112;M;N;N;Y;DE1;EUR;T;S12K;BBK;DE;P;LE;M;2x0;EUR;;"
	_, err := l.Publish(ctx, domain.VanillaTopic(domain.FamilyReports), commitlog.Message{Key: "k", Value: []byte(header + "\n" + bad)})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.IngestedRows.WithLabelValues(string(domain.FamilyReports), metrics.OutcomeRejected)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	msgs, err := l.ReadAll(ctx, domain.TransformedTopic(domain.FamilyReports))
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
