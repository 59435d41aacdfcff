// Package telemetry installs the OpenTelemetry providers of the command-line
// tools and reads back the metrics they record.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/JukeboxMC/JBackwards/pkg/version"
)

// TranslationMisses is the counter of ids replaced by a placeholder.
const TranslationMisses = "backwards.translation_misses"

// Metrics is an in-process meter provider whose data is collected on demand.
type Metrics struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// InitMetrics creates a Metrics and installs it as the global meter provider.
// Instruments created before are not recorded.
func InitMetrics(ctx context.Context) (*Metrics, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("backwards"),
			semconv.ServiceVersion(version.String()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	m := &Metrics{reader: sdkmetric.NewManualReader()}
	m.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(m.reader),
	)
	otel.SetMeterProvider(m.provider)
	return m, nil
}

// Sum returns the total of the int64 counter name over all attribute sets.
// Unknown counters have a total of zero.
func (m *Metrics) Sum(ctx context.Context, name string) (int64, error) {
	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return 0, fmt.Errorf("failed to collect metrics: %w", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != name {
				continue
			}
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total, nil
}

// Shutdown flushes and stops the provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
