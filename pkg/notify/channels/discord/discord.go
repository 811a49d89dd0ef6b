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

// Package discord delivers notifications through a Discord webhook.
package discord

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

const (
	defaultTimeout = 30 * time.Second

	// Discord rejects content longer than this.
	maxContent = 2000
)

var errNoWebhookURL = errors.New("discord webhook_url is not configured")

// Config is the notifications.discord block.
type Config struct {
	notify.ChannelSettings `yaml:",inline"`

	Enabled       bool   `yaml:"enabled"`
	WebhookURL    string `yaml:"webhook_url"`
	Username      string `yaml:"username"`
	AvatarURL     string `yaml:"avatar_url"`
	Timeout       int    `yaml:"timeout"`
	VerifySSL     *bool  `yaml:"verify_ssl"`
	OnlyIPv4      bool   `yaml:"only_ipv4"`
	TestOnStartup bool   `yaml:"test_on_startup"`
}

// Notifier posts messages to Discord.
type Notifier struct {
	config Config
	client *http.Client
	logger logger.Logger
}

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

func (*Notifier) Name() string { return notify.KindDiscord }

func (n *Notifier) Enabled() bool { return n.config.Enabled }

func (n *Notifier) Send(ctx context.Context, msg notify.Message) (bool, error) {
	return n.post(ctx, msg.Body)
}

func (n *Notifier) SendStructured(ctx context.Context, payload map[string]any) (bool, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return false, err
	}

	return n.post(ctx, "```json\n"+string(data)+"\n```")
}

func (n *Notifier) Test(ctx context.Context) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if n.config.WebhookURL == "" {
		return false, errNoWebhookURL
	}

	if !n.config.TestOnStartup {
		n.logger.Info().Msg("Discord test_on_startup disabled; skipping live test")
		return true, nil
	}

	return n.post(ctx, "Discord test notification from monitord")
}

func (n *Notifier) post(ctx context.Context, content string) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if n.config.WebhookURL == "" {
		return false, errNoWebhookURL
	}

	body := map[string]any{"content": truncate(content, maxContent)}
	if n.config.Username != "" {
		body["username"] = n.config.Username
	}

	if n.config.AvatarURL != "" {
		body["avatar_url"] = n.config.AvatarURL
	}

	if err := jsonhttp.Post(ctx, n.client, http.MethodPost, n.config.WebhookURL, nil, body); err != nil {
		return false, err
	}

	return true, nil
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit-1]) + "…"
}
