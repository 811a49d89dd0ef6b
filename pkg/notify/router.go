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

package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/monitord/pkg/clock"
	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/metrics"
	"github.com/carverauto/monitord/pkg/models"
)

// Reasons reported on the dropped-notification counter.
const (
	dropSeverity  = "severity"
	dropRateLimit = "rate_limit"
	dropError     = "error"
)

type registration struct {
	channel  Channel
	settings ChannelSettings
}

// Router fans reports out to the registered channels in registration order.
type Router struct {
	config   Config
	channels []registration
	redact   *redactor
	limits   *limiter
	clock    clock.Clock
	metrics  *metrics.Recorder
	logger   logger.Logger
	mu       sync.RWMutex
}

// Option customizes a Router.
type Option func(*Router)

// WithClock replaces the wall clock used for rate limiting.
func WithClock(c clock.Clock) Option {
	return func(r *Router) {
		r.clock = c
	}
}

// WithMetrics counts deliveries and drops per channel.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// NewRouter builds a router with no channels. Invalid redact patterns are
// logged and skipped.
func NewRouter(cfg *Config, log logger.Logger, opts ...Option) *Router {
	r := &Router{
		config: *cfg,
		redact: newRedactor(&cfg.ContentFilter, log),
		limits: newLimiter(),
		clock:  clock.Real(),
		logger: log,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a channel. Channels are tried in the order registered.
func (r *Router) Register(ch Channel, settings ChannelSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.channels = append(r.channels, registration{channel: ch, settings: settings})
}

// Enabled reports whether notifications are switched on.
func (r *Router) Enabled() bool {
	return r.config.IsEnabled()
}

// EnabledChannels lists the names of enabled channels in dispatch order.
func (r *Router) EnabledChannels() []string {
	var names []string

	for _, reg := range r.active() {
		names = append(names, reg.channel.Name())
	}

	return names
}

func (r *Router) active() []registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]registration, 0, len(r.channels))

	for _, reg := range r.channels {
		if reg.channel.Enabled() {
			out = append(out, reg)
		}
	}

	return out
}

// DispatchEvent sends an event report. It returns true when at least one
// channel accepted it.
func (r *Router) DispatchEvent(ctx context.Context, report *models.Report) bool {
	return r.dispatch(ctx, models.ReportEvent, report)
}

// DispatchActionResult sends an action report.
func (r *Router) DispatchActionResult(ctx context.Context, report *models.Report) bool {
	return r.dispatch(ctx, models.ReportAction, report)
}

func (r *Router) dispatch(ctx context.Context, reportType models.ReportType, report *models.Report) bool {
	if !r.config.IsEnabled() {
		r.logger.Debug().Msg("Notifications are disabled")
		return false
	}

	eventType := report.EventType
	if eventType == "" {
		eventType = "unknown"
	}

	key := fmt.Sprintf("%s_%s", reportType, eventType)
	delivered := false

	for _, reg := range r.active() {
		if r.deliver(ctx, reg, reportType, key, report) {
			delivered = true
		}
	}

	return delivered
}

func (r *Router) deliver(
	ctx context.Context, reg registration, reportType models.ReportType, key string, report *models.Report,
) (ok bool) {
	name := reg.channel.Name()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Str("channel", name).Interface("panic", rec).Msg("Notification channel panicked")
			r.metrics.NotificationDropped(ctx, name, dropError)

			ok = false
		}
	}()

	if !report.Severity.AtLeast(r.minSeverity(reg.settings)) {
		r.logger.Debug().Str("channel", name).Str("severity", string(report.Severity.Normalize())).
			Msg("Below channel minimum severity")
		r.metrics.NotificationDropped(ctx, name, dropSeverity)

		return false
	}

	channelKey := name + ":" + key
	policy := reg.settings.RateLimit

	if policy == nil {
		policy = &r.config.RateLimit
	}

	if !r.limits.allow(channelKey, policy, r.clock.Now()) {
		r.logger.Info().Str("channel", name).Str("key", key).Msg("Notification rate limited")
		r.metrics.NotificationDropped(ctx, name, dropRateLimit)

		return false
	}

	prepared := prepare(report, reg.settings)

	var (
		sent bool
		err  error
	)

	if structured(name) {
		sent, err = reg.channel.SendStructured(ctx, r.redact.payload(map[string]any{
			"report_type": string(reportType),
			"report":      prepared.Payload(),
		}))
	} else {
		msg := Message{Subject: subjectFor(reportType, prepared)}
		if name == KindEmail && reg.settings.Template.Format == FormatHTML {
			msg.Body, msg.HTML = formatHTML(reportType, prepared), true
		} else {
			msg.Body = formatPlain(reportType, prepared)
		}

		msg.Body = r.redact.text(msg.Body)
		sent, err = reg.channel.Send(ctx, msg)
	}

	if err != nil || !sent {
		r.logger.Warn().Err(err).Str("channel", name).Str("key", key).Msg("Failed to deliver notification")
		r.metrics.NotificationDropped(ctx, name, dropError)

		return false
	}

	r.limits.record(channelKey, r.clock.Now())
	r.metrics.NotificationSent(ctx, name)

	return true
}

func (r *Router) minSeverity(settings ChannelSettings) models.Severity {
	if settings.MinSeverity != "" {
		return settings.MinSeverity
	}

	if r.config.MinSeverity != "" {
		return r.config.MinSeverity
	}

	return models.SeverityInfo
}

// prepare drops the sections a channel opted out of.
func prepare(report *models.Report, settings ChannelSettings) *models.Report {
	out := report.Clone()

	if !include(settings.IncludeSystemStats) {
		out.SystemStats = nil
	}

	if !include(settings.IncludeActionDetails) {
		out.Action = nil
	}

	if !include(settings.IncludeDetails) {
		out.Details = ""
	}

	return out
}

// DispatchCustomMessage sends free text to every enabled channel, bypassing
// severity and rate limits. The message is redacted; the subject is not.
func (r *Router) DispatchCustomMessage(ctx context.Context, subject, message string) bool {
	if !r.config.IsEnabled() {
		return false
	}

	message = r.redact.text(message)
	delivered := false

	for _, reg := range r.active() {
		name := reg.channel.Name()

		sent, err := r.sendCustom(ctx, reg.channel, subject, message)
		if err != nil || !sent {
			r.logger.Warn().Err(err).Str("channel", name).Msg("Failed to deliver custom message")
			r.metrics.NotificationDropped(ctx, name, dropError)

			continue
		}

		r.metrics.NotificationSent(ctx, name)

		delivered = true
	}

	return delivered
}

func (r *Router) sendCustom(ctx context.Context, ch Channel, subject, message string) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ok, err = false, fmt.Errorf("%w: %v", errChannelPanic, rec)
		}
	}()

	switch name := ch.Name(); {
	case structured(name):
		return ch.SendStructured(ctx, map[string]any{"subject": subject, "message": message})
	case name == KindEmail:
		return ch.Send(ctx, Message{Subject: subject, Body: message})
	case name == KindTelegram:
		return ch.Send(ctx, Message{Subject: subject, Body: subject + "\n\n" + message})
	default:
		return ch.Send(ctx, Message{Subject: subject, Body: subject + "\n" + message})
	}
}

// TestAllChannels runs every enabled channel's self test concurrently and
// returns the outcome by channel name.
func (r *Router) TestAllChannels(ctx context.Context) map[string]bool {
	results := make(map[string]bool)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	for _, reg := range r.active() {
		ch := reg.channel

		g.Go(func() error {
			ok, err := testChannel(ctx, ch)
			if err != nil {
				r.logger.Warn().Err(err).Str("channel", ch.Name()).Msg("Channel test failed")
			}

			mu.Lock()
			results[ch.Name()] = ok
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return results
}

func testChannel(ctx context.Context, ch Channel) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ok, err = false, fmt.Errorf("%w: %v", errChannelPanic, rec)
		}
	}()

	return ch.Test(ctx)
}

// Close releases channels that hold connections.
func (r *Router) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error

	for _, reg := range r.channels {
		if c, ok := reg.channel.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", reg.channel.Name(), err))
			}
		}
	}

	return errors.Join(errs...)
}
