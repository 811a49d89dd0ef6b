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

// Package telegram delivers notifications through the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/notify"
	"github.com/carverauto/monitord/pkg/notify/channels/jsonhttp"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultParseMode = "HTML"

	// Telegram allows roughly this many messages per second per bot.
	defaultRatePerSecond = 25
)

var (
	errNoToken     = errors.New("telegram bot_token is not configured")
	errNoChats     = errors.New("no telegram chat_ids configured")
	errNoChatOK    = errors.New("no telegram chat accepted the notification")
	errInvalidChat = errors.New("invalid telegram chat target")
)

// Config is the notifications.telegram block.
type Config struct {
	notify.ChannelSettings `yaml:",inline"`

	Enabled        bool     `yaml:"enabled"`
	BotToken       string   `yaml:"bot_token"`
	ChatIDs        []string `yaml:"chat_ids"`
	ParseMode      string   `yaml:"parse_mode"`
	DisablePreview *bool    `yaml:"disable_preview"`
	Timeout        int      `yaml:"timeout"`
	OnlyIPv4       bool     `yaml:"only_ipv4"`
	RatePerSecond  float64  `yaml:"rate_per_second"`

	// APIURL overrides the Bot API server, mainly for tests and local
	// bot API servers.
	APIURL string `yaml:"api_url"`
}

// Target is one destination chat, optionally a forum topic.
type Target struct {
	ChatID   string
	ThreadID int
}

// ParseTarget splits "chatid_threadid" into a chat and a topic. A suffix
// that is not numeric is ignored with errInvalidChat.
func ParseTarget(raw string) (Target, error) {
	base, thread, found := strings.Cut(raw, "_")
	if !found || base == "" {
		return Target{ChatID: raw}, nil
	}

	id, err := strconv.Atoi(thread)
	if err != nil || id < 0 {
		return Target{ChatID: base}, fmt.Errorf("%w: %q", errInvalidChat, raw)
	}

	return Target{ChatID: base, ThreadID: id}, nil
}

// Notifier sends messages to every configured chat.
type Notifier struct {
	config  Config
	limiter *rate.Limiter
	logger  logger.Logger

	once   sync.Once
	client *bot.Bot
	err    error
}

func New(cfg *Config, log logger.Logger) *Notifier {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = defaultRatePerSecond
	}

	return &Notifier{
		config:  *cfg,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  log,
	}
}

func (*Notifier) Name() string { return notify.KindTelegram }

func (n *Notifier) Enabled() bool { return n.config.Enabled }

// api builds the API client once. getMe is deferred to Test so a bad token
// does not block startup.
func (n *Notifier) api() (*bot.Bot, error) {
	n.once.Do(func() {
		timeout := jsonhttp.Seconds(n.config.Timeout, defaultTimeout)

		opts := []bot.Option{
			bot.WithSkipGetMe(),
			bot.WithHTTPClient(timeout, jsonhttp.NewClient(jsonhttp.Options{
				Timeout:   timeout,
				VerifyTLS: true,
				OnlyIPv4:  n.config.OnlyIPv4,
			})),
		}

		if n.config.APIURL != "" {
			opts = append(opts, bot.WithServerURL(n.config.APIURL))
		}

		n.client, n.err = bot.New(n.config.BotToken, opts...)
	})

	return n.client, n.err
}

func (n *Notifier) parseMode() string {
	if n.config.ParseMode == "" {
		return defaultParseMode
	}

	return n.config.ParseMode
}

func (n *Notifier) ready() error {
	if n.config.BotToken == "" {
		return errNoToken
	}

	if len(n.config.ChatIDs) == 0 {
		return errNoChats
	}

	return nil
}

// Send delivers the body to every chat; the message counts as sent when any
// chat accepted it.
func (n *Notifier) Send(ctx context.Context, msg notify.Message) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if err := n.ready(); err != nil {
		return false, err
	}

	client, err := n.api()
	if err != nil {
		return false, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	text := msg.Body
	if strings.EqualFold(n.parseMode(), defaultParseMode) {
		text = html.EscapeString(text)
	}

	var errs []error

	accepted := 0

	for _, raw := range n.config.ChatIDs {
		target, err := ParseTarget(raw)
		if err != nil {
			n.logger.Warn().Err(err).Msg("Ignoring telegram topic id")
		}

		if err := n.limiter.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}

		if err := n.sendTo(ctx, client, target, text); err != nil {
			n.logger.Warn().Err(err).Str("chat_id", target.ChatID).Msg("Telegram send failed")
			errs = append(errs, err)

			continue
		}

		accepted++
	}

	if accepted == 0 {
		return false, fmt.Errorf("%w: %w", errNoChatOK, errors.Join(errs...))
	}

	n.logger.Debug().Int("accepted", accepted).Int("chats", len(n.config.ChatIDs)).Msg("Telegram notification sent")

	return true, nil
}

func (n *Notifier) sendTo(ctx context.Context, client *bot.Bot, target Target, text string) error {
	disable := n.config.DisablePreview == nil || *n.config.DisablePreview

	params := &bot.SendMessageParams{
		ChatID:             target.ChatID,
		MessageThreadID:    target.ThreadID,
		Text:               text,
		ParseMode:          tgmodels.ParseMode(n.parseMode()),
		LinkPreviewOptions: &tgmodels.LinkPreviewOptions{IsDisabled: &disable},
	}

	if _, err := client.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("chat %s: %w", target.ChatID, err)
	}

	return nil
}

// SendStructured sends the payload as a preformatted JSON block.
func (n *Notifier) SendStructured(ctx context.Context, payload map[string]any) (bool, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return false, err
	}

	return n.Send(ctx, notify.Message{Body: string(data)})
}

// Test calls getMe with the configured token.
func (n *Notifier) Test(ctx context.Context) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if n.config.BotToken == "" {
		return false, errNoToken
	}

	client, err := n.api()
	if err != nil {
		return false, err
	}

	me, err := client.GetMe(ctx)
	if err != nil {
		return false, fmt.Errorf("telegram getMe failed: %w", err)
	}

	n.logger.Info().Str("bot", me.Username).Msg("Telegram bot connection test successful")

	return true, nil
}
