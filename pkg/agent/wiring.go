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

package agent

import (
	"os"

	"github.com/carverauto/monitord/pkg/checker"
	"github.com/carverauto/monitord/pkg/clock"
	"github.com/carverauto/monitord/pkg/command"
	"github.com/carverauto/monitord/pkg/config"
	"github.com/carverauto/monitord/pkg/lifecycle"
	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/metrics"
	"github.com/carverauto/monitord/pkg/monitor/resource"
	"github.com/carverauto/monitord/pkg/monitor/service"
	"github.com/carverauto/monitord/pkg/notify"
	"github.com/carverauto/monitord/pkg/notify/channels/discord"
	"github.com/carverauto/monitord/pkg/notify/channels/email"
	"github.com/carverauto/monitord/pkg/notify/channels/kafka"
	"github.com/carverauto/monitord/pkg/notify/channels/nats"
	"github.com/carverauto/monitord/pkg/notify/channels/slack"
	"github.com/carverauto/monitord/pkg/notify/channels/telegram"
	"github.com/carverauto/monitord/pkg/notify/channels/webhook"
	"github.com/carverauto/monitord/pkg/platform"
)

const fallbackHostname = "localhost"

type buildOptions struct {
	hostname string
	runner   command.Runner
	manager  platform.ServiceManager
	clock    clock.Clock
	metrics  *metrics.Recorder
	previous *Components
}

// BuildOption customizes Build.
type BuildOption func(*buildOptions)

// WithHostname sets the host name stamped on reports.
func WithHostname(h string) BuildOption {
	return func(o *buildOptions) {
		o.hostname = h
	}
}

// WithRunner replaces the command runner.
func WithRunner(r command.Runner) BuildOption {
	return func(o *buildOptions) {
		o.runner = r
	}
}

// WithServiceManager skips platform detection.
func WithServiceManager(m platform.ServiceManager) BuildOption {
	return func(o *buildOptions) {
		o.manager = m
	}
}

// WithRecorder counts checks, restarts and notifications.
func WithRecorder(r *metrics.Recorder) BuildOption {
	return func(o *buildOptions) {
		o.metrics = r
	}
}

// WithBuildClock replaces the wall clock in every component.
func WithBuildClock(c clock.Clock) BuildOption {
	return func(o *buildOptions) {
		o.clock = c
	}
}

// WithPrevious reconfigures the engines of prev instead of building new
// ones, so restart budgets and cooldowns survive a reload. The notification
// router is always rebuilt.
func WithPrevious(prev *Components) BuildOption {
	return func(o *buildOptions) {
		o.previous = prev
	}
}

// Build wires the engines and the notification router for cfg. Without
// WithPrevious the engines start with clean state.
func Build(cfg *config.Config, log logger.Logger, opts ...BuildOption) *Components {
	o := &buildOptions{clock: clock.Real()}

	for _, opt := range opts {
		opt(o)
	}

	if o.runner == nil {
		o.runner = command.NewExecRunner()
	}

	if o.manager == nil {
		o.manager = platform.NewDetector(o.runner, lifecycle.ComponentOf(log, "platform"))
	}

	if o.hostname == "" {
		o.hostname = hostname()
	}

	probe := checker.NewProbe(o.runner, o.manager, checker.NewProcessTable(),
		lifecycle.ComponentOf(log, "checker"), checker.Config{OnlyIPv4: cfg.ServiceMonitor.OnlyIPv4})

	reporter := NewReporter(NewRouter(cfg, log, notify.WithMetrics(o.metrics), notify.WithClock(o.clock)), o.hostname, o.clock)

	if prev := o.previous; prev != nil && prev.Services != nil && prev.Resources != nil {
		prev.Services.UpdateConfig(&cfg.ServiceMonitor, probe, reporter)
		prev.Resources.UpdateConfig(&cfg.ResourceMonitor)

		return &Components{Services: prev.Services, Resources: prev.Resources, Notifier: reporter}
	}

	return &Components{
		Services: service.NewEngine(&cfg.ServiceMonitor, probe, o.manager, o.runner, reporter,
			lifecycle.ComponentOf(log, "service_monitor"), service.WithMetrics(o.metrics), service.WithClock(o.clock)),
		Resources: resource.NewEngine(&cfg.ResourceMonitor, o.manager, o.runner,
			lifecycle.ComponentOf(log, "resource_monitor"), resource.WithMetrics(o.metrics), resource.WithClock(o.clock)),
		Notifier: reporter,
	}
}

// NewRouter builds the notification router with every channel kind
// registered in notify.Kinds order. Disabled channels stay registered and
// are skipped at dispatch time.
func NewRouter(cfg *config.Config, log logger.Logger, opts ...notify.Option) *notify.Router {
	n := &cfg.Notifications

	router := notify.NewRouter(&n.Config, lifecycle.ComponentOf(log, "notify"), opts...)

	channels := map[string]notify.Channel{
		notify.KindEmail:    email.New(&n.Email, lifecycle.ComponentOf(log, "notify.email")),
		notify.KindTelegram: telegram.New(&n.Telegram, lifecycle.ComponentOf(log, "notify.telegram")),
		notify.KindWebhook:  webhook.New(&n.Webhook, lifecycle.ComponentOf(log, "notify.webhook")),
		notify.KindSlack:    slack.New(&n.Slack, lifecycle.ComponentOf(log, "notify.slack")),
		notify.KindDiscord:  discord.New(&n.Discord, lifecycle.ComponentOf(log, "notify.discord")),
		notify.KindNATS:     nats.New(&n.NATS, lifecycle.ComponentOf(log, "notify.nats")),
		notify.KindKafka:    kafka.New(&n.Kafka, lifecycle.ComponentOf(log, "notify.kafka")),
	}

	for _, kind := range notify.Kinds() {
		router.Register(channels[kind], *n.Settings(kind))
	}

	return router
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return fallbackHostname
	}

	return h
}
