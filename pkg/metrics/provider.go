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

// Package metrics exports agent counters over OTLP.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.31.0"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/models"
)

const (
	defaultServiceName    = "monitord"
	defaultServiceVersion = "dev"
	defaultExportInterval = 15 * time.Second

	meterName = "github.com/carverauto/monitord"
)

// Config is the metrics section of the agent configuration.
type Config struct {
	Enabled     bool              `yaml:"enabled"`
	Endpoint    string            `yaml:"endpoint"`
	Insecure    bool              `yaml:"insecure"`
	Headers     map[string]string `yaml:"headers"`
	Interval    models.Interval   `yaml:"interval"`
	ServiceName string            `yaml:"service_name"`
}

// Provider owns the meter pipeline and the agent instruments.
type Provider struct {
	provider *sdkmetric.MeterProvider
	recorder *Recorder
}

// Init builds an OTLP gRPC meter provider. When metrics are disabled the
// returned provider records into a no-op meter.
func Init(ctx context.Context, cfg *Config, version string, log logger.Logger) (*Provider, error) {
	if cfg == nil || !cfg.Enabled || cfg.Endpoint == "" {
		rec, err := NewRecorder(noop.NewMeterProvider().Meter(meterName))
		if err != nil {
			return nil, err
		}

		return &Provider{recorder: rec}, nil
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}

	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	if version == "" {
		version = defaultServiceVersion
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics resource: %w", err)
	}

	interval := defaultExportInterval
	if cfg.Interval.Active() {
		interval = cfg.Interval.Duration()
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)

	otel.SetMeterProvider(provider)

	rec, err := NewRecorder(provider.Meter(meterName))
	if err != nil {
		return nil, errors.Join(err, provider.Shutdown(ctx))
	}

	log.Info().Str("endpoint", cfg.Endpoint).Dur("interval", interval).Msg("OTLP metrics exporter initialized")

	return &Provider{provider: provider, recorder: rec}, nil
}

// NewProviderWithMeter wraps an existing meter provider, mainly for tests.
func NewProviderWithMeter(mp metric.MeterProvider) (*Provider, error) {
	rec, err := NewRecorder(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}

	return &Provider{recorder: rec}, nil
}

// Recorder returns the agent instruments. Safe on a nil provider.
func (p *Provider) Recorder() *Recorder {
	if p == nil {
		return nil
	}

	return p.recorder
}

// Shutdown flushes and stops the exporter pipeline.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}

	return p.provider.Shutdown(ctx)
}
