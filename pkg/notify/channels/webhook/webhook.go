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

// Package webhook posts JSON notifications to one or more HTTP endpoints.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/notify"
	"github.com/carverauto/monitord/pkg/notify/channels/jsonhttp"
)

const defaultTimeout = 10 * time.Second

var (
	errNoURLs      = errors.New("no webhook urls configured")
	errAllRejected = errors.New("no webhook endpoint accepted the notification")
)

// Config is the notifications.webhook block. url takes precedence over urls.
type Config struct {
	notify.ChannelSettings `yaml:",inline"`

	Enabled       bool              `yaml:"enabled"`
	URL           string            `yaml:"url"`
	URLs          []string          `yaml:"urls"`
	Method        string            `yaml:"method"`
	Headers       map[string]string `yaml:"headers"`
	Timeout       int               `yaml:"timeout"`
	VerifySSL     *bool             `yaml:"verify_ssl"`
	OnlyIPv4      bool              `yaml:"only_ipv4"`
	TestOnStartup bool              `yaml:"test_on_startup"`

	// RatePerSecond paces requests across endpoints; zero means unpaced.
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// Endpoints returns the configured target URLs.
func (c *Config) Endpoints() []string {
	urls := c.URLs
	if c.URL != "" {
		urls = []string{c.URL}
	}

	out := make([]string, 0, len(urls))

	for _, u := range urls {
		if u != "" {
			out = append(out, u)
		}
	}

	return out
}

// Notifier fans JSON payloads out to every endpoint.
type Notifier struct {
	config  Config
	urls    []string
	client  *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

func New(cfg *Config, log logger.Logger) *Notifier {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Notifier{
		config: *cfg,
		urls:   cfg.Endpoints(),
		client: jsonhttp.NewClient(jsonhttp.Options{
			Timeout:   jsonhttp.Seconds(cfg.Timeout, defaultTimeout),
			VerifyTLS: cfg.VerifySSL == nil || *cfg.VerifySSL,
			OnlyIPv4:  cfg.OnlyIPv4,
		}),
		limiter: rate.NewLimiter(limit, 1),
		logger:  log,
	}
}

func (*Notifier) Name() string { return notify.KindWebhook }

func (n *Notifier) Enabled() bool { return n.config.Enabled }

// Send posts {"subject","message"}.
func (n *Notifier) Send(ctx context.Context, msg notify.Message) (bool, error) {
	return n.SendStructured(ctx, map[string]any{"subject": msg.Subject, "message": msg.Body})
}

// SendStructured posts payload to every endpoint. It succeeds when at least
// one endpoint answered 2xx.
func (n *Notifier) SendStructured(ctx context.Context, payload map[string]any) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if len(n.urls) == 0 {
		return false, errNoURLs
	}

	var errs []error

	accepted := 0

	for _, url := range n.urls {
		if err := n.limiter.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}

		if err := jsonhttp.Post(ctx, n.client, n.config.Method, url, n.config.Headers, payload); err != nil {
			n.logger.Warn().Err(err).Str("url", url).Msg("Webhook POST failed")
			errs = append(errs, fmt.Errorf("%s: %w", url, err))

			continue
		}

		accepted++
	}

	if accepted == 0 {
		return false, fmt.Errorf("%w: %w", errAllRejected, errors.Join(errs...))
	}

	n.logger.Debug().Int("accepted", accepted).Int("endpoints", len(n.urls)).Msg("Webhook notification sent")

	return true, nil
}

// Test posts a test document to the first endpoint when test_on_startup is
// set.
func (n *Notifier) Test(ctx context.Context) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if len(n.urls) == 0 {
		return false, errNoURLs
	}

	if !n.config.TestOnStartup {
		n.logger.Info().Msg("Webhook test_on_startup disabled; skipping live test")
		return true, nil
	}

	payload := map[string]any{"type": "test", "message": "Webhook test notification from monitord"}
	if err := jsonhttp.Post(ctx, n.client, http.MethodPost, n.urls[0], nil, payload); err != nil {
		return false, err
	}

	return true, nil
}
