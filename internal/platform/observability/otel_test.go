package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"chatty":  slog.LevelInfo,
	}
	for raw, want := range cases {
		require.Equal(t, want, parseLevel(raw), raw)
	}
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelWarn)
	logger.Info("order placed")
	require.Zero(t, buf.Len())
	logger.Warn("gateway slow", slog.String("payment.gateway", "momo"))
	require.Contains(t, buf.String(), `"payment.gateway":"momo"`)
}

func TestOrderTotalsUseMoneyBuckets(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := newMeterProvider(resource.Empty(), reader)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	instruments := &Instruments{MeterProvider: provider, reader: reader}

	hist, err := instruments.Meter("checkout").Int64Histogram(OrderTotalInstrument)
	require.NoError(t, err)
	hist.Record(context.Background(), 250_000)
	hist.Record(context.Background(), 99_920)

	rm, err := instruments.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	data, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	point := data.DataPoints[0]
	require.Equal(t, moneyBuckets, point.Bounds)
	require.Equal(t, uint64(2), point.Count)
	// 99,920 falls in (50k, 100k], 250,000 in (200k, 300k].
	require.Equal(t, uint64(1), point.BucketCounts[1])
	require.Equal(t, uint64(1), point.BucketCounts[3])
}

func TestCollectWithoutReader(t *testing.T) {
	var instruments *Instruments
	_, err := instruments.Collect(context.Background())
	require.Error(t, err)
	require.NotNil(t, instruments.Meter("noop"))
}
