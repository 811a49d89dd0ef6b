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
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	ServiceChecks        = "monitord.service.checks"
	ServiceFailures      = "monitord.service.failures"
	ServiceRestarts      = "monitord.service.restarts"
	ResourceBreaches     = "monitord.resource.breaches"
	NotificationsSent    = "monitord.notifications.sent"
	NotificationsDropped = "monitord.notifications.dropped"
)

// Recorder holds the agent counters. A nil *Recorder records nothing, so
// engines built without metrics need no special casing.
type Recorder struct {
	checks   metric.Int64Counter
	failures metric.Int64Counter
	restarts metric.Int64Counter
	breaches metric.Int64Counter
	sent     metric.Int64Counter
	dropped  metric.Int64Counter
}

// NewRecorder registers every instrument on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	r := &Recorder{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&r.checks, ServiceChecks, "Service probes executed"},
		{&r.failures, ServiceFailures, "Service probes reporting not running"},
		{&r.restarts, ServiceRestarts, "Service restart attempts"},
		{&r.breaches, ResourceBreaches, "Resource threshold breaches"},
		{&r.sent, NotificationsSent, "Notifications delivered per channel"},
		{&r.dropped, NotificationsDropped, "Notifications dropped per channel"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
		}

		*c.dst = counter
	}

	return r, nil
}

func (r *Recorder) ServiceChecked(ctx context.Context, service string, running bool) {
	if r == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("service", service))

	r.checks.Add(ctx, 1, attrs)

	if !running {
		r.failures.Add(ctx, 1, attrs)
	}
}

func (r *Recorder) RestartAttempted(ctx context.Context, service string, success bool) {
	if r == nil {
		return
	}

	r.restarts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.Bool("success", success),
	))
}

func (r *Recorder) ResourceBreached(ctx context.Context, resource string) {
	if r == nil {
		return
	}

	r.breaches.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
}

func (r *Recorder) NotificationSent(ctx context.Context, channel string) {
	if r == nil {
		return
	}

	r.sent.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel)))
}

// NotificationDropped counts a report a channel did not deliver; reason is
// severity, rate_limit or error.
func (r *Recorder) NotificationDropped(ctx context.Context, channel, reason string) {
	if r == nil {
		return
	}

	r.dropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("reason", reason),
	))
}
