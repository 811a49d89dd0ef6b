/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/carverauto/monitord/pkg/logger"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Sum[int64])

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}

	return out
}

func total(sum metricdata.Sum[int64], key, value string) int64 {
	var n int64

	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			n += dp.Value
		}
	}

	return n
}

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	p, err := NewProviderWithMeter(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	ctx := context.Background()
	rec := p.Recorder()

	rec.ServiceChecked(ctx, "nginx", true)
	rec.ServiceChecked(ctx, "nginx", false)
	rec.RestartAttempted(ctx, "nginx", true)
	rec.ResourceBreached(ctx, "cpu")
	rec.NotificationSent(ctx, "email")
	rec.NotificationDropped(ctx, "email", "rate_limit")
	rec.NotificationDropped(ctx, "slack", "severity")

	sums := collect(t, reader)

	assert.Equal(t, int64(2), total(sums[ServiceChecks], "service", "nginx"))
	assert.Equal(t, int64(1), total(sums[ServiceFailures], "service", "nginx"))
	assert.Equal(t, int64(1), total(sums[ServiceRestarts], "service", "nginx"))
	assert.Equal(t, int64(1), total(sums[ResourceBreaches], "resource", "cpu"))
	assert.Equal(t, int64(1), total(sums[NotificationsSent], "channel", "email"))
	assert.Equal(t, int64(1), total(sums[NotificationsDropped], "reason", "rate_limit"))
	assert.Equal(t, int64(1), total(sums[NotificationsDropped], "channel", "slack"))
}

func TestNilRecorderIsSafe(t *testing.T) {
	t.Parallel()

	var rec *Recorder

	ctx := context.Background()

	assert.NotPanics(t, func() {
		rec.ServiceChecked(ctx, "x", false)
		rec.RestartAttempted(ctx, "x", false)
		rec.ResourceBreached(ctx, "disk")
		rec.NotificationSent(ctx, "email")
		rec.NotificationDropped(ctx, "email", "error")
	})

	var p *Provider

	assert.Nil(t, p.Recorder())
	assert.NoError(t, p.Shutdown(ctx))
}

func TestInitDisabledUsesNoopMeter(t *testing.T) {
	t.Parallel()

	p, err := Init(context.Background(), &Config{Enabled: true}, "1.0.0", logger.NewTestLogger())
	require.NoError(t, err)
	require.NotNil(t, p.Recorder())

	p.Recorder().ServiceChecked(context.Background(), "x", true)
	assert.NoError(t, p.Shutdown(context.Background()))

	p, err = Init(context.Background(), nil, "", logger.NewTestLogger())
	require.NoError(t, err)
	assert.NotNil(t, p.Recorder())
}
