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

// Package slack delivers notifications through a Slack incoming webhook.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/notify"
	"github.com/carverauto/monitord/pkg/notify/channels/jsonhttp"
)

const defaultTimeout = 30 * time.Second

var errNoWebhookURL = errors.New("slack webhook_url is not configured")

// Config is the notifications.slack block.
type Config struct {
	notify.ChannelSettings `yaml:",inline"`

	Enabled       bool   `yaml:"enabled"`
	WebhookURL    string `yaml:"webhook_url"`
	Channel       string `yaml:"channel"`
	Username      string `yaml:"username"`
	IconEmoji     string `yaml:"icon_emoji"`
	IconURL       string `yaml:"icon_url"`
	Timeout       int    `yaml:"timeout"`
	VerifySSL     *bool  `yaml:"verify_ssl"`
	OnlyIPv4      bool   `yaml:"only_ipv4"`
	TestOnStartup bool   `yaml:"test_on_startup"`
}

// Notifier posts messages to Slack.
type Notifier struct {
	config Config
	client *http.Client
	logger logger.Logger
}

// New builds a Slack notifier.
func New(cfg *Config, log logger.Logger) *Notifier {
	return &Notifier{
		config: *cfg,
		client: jsonhttp.NewClient(jsonhttp.Options{
			Timeout:   jsonhttp.Seconds(cfg.Timeout, defaultTimeout),
			VerifyTLS: cfg.VerifySSL == nil || *cfg.VerifySSL,
			OnlyIPv4:  cfg.OnlyIPv4,
		}),
		logger: log,
	}
}

func (*Notifier) Name() string { return notify.KindSlack }

func (n *Notifier) Enabled() bool { return n.config.Enabled }

// Send posts the message body as the Slack text.
func (n *Notifier) Send(ctx context.Context, msg notify.Message) (bool, error) {
	return n.post(ctx, msg.Body)
}

// SendStructured posts the payload as an indented JSON code block.
func (n *Notifier) SendStructured(ctx context.Context, payload map[string]any) (bool, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return false, err
	}

	return n.post(ctx, "```"+string(data)+"```")
}

// Test posts a test message when test_on_startup is set, otherwise it only
// checks the configuration.
func (n *Notifier) Test(ctx context.Context) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if n.config.WebhookURL == "" {
		return false, errNoWebhookURL
	}

	if !n.config.TestOnStartup {
		n.logger.Info().Msg("Slack test_on_startup disabled; skipping live test")
		return true, nil
	}

	return n.post(ctx, "Slack test notification from monitord")
}

func (n *Notifier) post(ctx context.Context, text string) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if n.config.WebhookURL == "" {
		return false, errNoWebhookURL
	}

	body := map[string]any{"text": text}

	optional := map[string]string{
		"channel":    n.config.Channel,
		"username":   n.config.Username,
		"icon_emoji": n.config.IconEmoji,
		"icon_url":   n.config.IconURL,
	}
	for k, v := range optional {
		if v != "" {
			body[k] = v
		}
	}

	if err := jsonhttp.Post(ctx, n.client, http.MethodPost, n.config.WebhookURL, nil, body); err != nil {
		return false, err
	}

	n.logger.Debug().Msg("Slack notification sent")

	return true, nil
}
