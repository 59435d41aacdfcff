package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestSum(t *testing.T) {
	ctx := context.Background()
	m, err := InitMetrics(ctx)
	require.NoError(t, err)
	defer func() { require.NoError(t, m.Shutdown(ctx)) }()

	counter, err := otel.Meter("test").Int64Counter(TranslationMisses)
	require.NoError(t, err)
	counter.Add(ctx, 2, metric.WithAttributes(attribute.String("kind", "item")))
	counter.Add(ctx, 3, metric.WithAttributes(attribute.String("kind", "block")))

	total, err := m.Sum(ctx, TranslationMisses)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	total, err = m.Sum(ctx, "unknown")
	require.NoError(t, err)
	assert.Zero(t, total)
}
