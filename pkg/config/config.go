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

// Package config loads the monitord YAML configuration, applies the .env file
// and environment references, and validates the typed result.
package config

import (
	"context"
	"os"
	"time"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/metrics"
	"github.com/carverauto/monitord/pkg/models"
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
)

const (
	// DefaultPath is used when neither --config nor MONITORD_CONFIG is given.
	DefaultPath = "/opt/monitord/config/main.yaml"
	// PathEnv overrides DefaultPath.
	PathEnv = "MONITORD_CONFIG"
	// EnvFileEnv points at the .env file; the default is .env next to the
	// configuration file.
	EnvFileEnv = "MONITORD_ENV_FILE"

	defaultAppName       = "monitord"
	defaultPIDFile       = "/var/run/monitord.pid"
	defaultCheckInterval = 60
)

// Config is the whole configuration file.
type Config struct {
	General         General         `yaml:"general"`
	ServiceMonitor  service.Config  `yaml:"service_monitor"`
	ResourceMonitor resource.Config `yaml:"resource_monitor"`
	Notifications   Notifications   `yaml:"notifications"`
	Metrics         metrics.Config  `yaml:"metrics"`
}

// General holds daemon-wide settings.
type General struct {
	AppName       string          `yaml:"app_name"`
	CheckInterval models.Interval `yaml:"check_interval"`
	PIDFile       string          `yaml:"pid_file"`
	Logging       *logger.Config  `yaml:"logging"`
	NotifyOnStart bool            `yaml:"notify_on_start"`
}

// Name returns app_name, monitord when empty.
func (g *General) Name() string {
	if g.AppName == "" {
		return defaultAppName
	}

	return g.AppName
}

// Interval is the poll period. Unset or non-positive values fall back to 60s.
func (g *General) Interval() time.Duration {
	if !g.CheckInterval.Active() {
		return defaultCheckInterval * time.Second
	}

	return g.CheckInterval.Duration()
}

// PIDPath returns pid_file or the default location.
func (g *General) PIDPath() string {
	if g.PIDFile == "" {
		return defaultPIDFile
	}

	return g.PIDFile
}

// LogConfig returns the logging section, or the environment-driven default.
func (g *General) LogConfig() *logger.Config {
	if g.Logging == nil {
		return logger.DefaultConfig()
	}

	return g.Logging
}

// Notifications is the router policy plus one section per channel kind.
type Notifications struct {
	notify.Config `yaml:",inline"`

	Email    email.Config    `yaml:"email"`
	Telegram telegram.Config `yaml:"telegram"`
	Slack    slack.Config    `yaml:"slack"`
	Discord  discord.Config  `yaml:"discord"`
	Webhook  webhook.Config  `yaml:"webhook"`
	NATS     nats.Config     `yaml:"nats"`
	Kafka    kafka.Config    `yaml:"kafka"`
}

// Settings returns the shared per-channel settings for kind, nil when kind
// is not a known channel.
func (n *Notifications) Settings(kind string) *notify.ChannelSettings {
	switch kind {
	case notify.KindEmail:
		return &n.Email.ChannelSettings
	case notify.KindTelegram:
		return &n.Telegram.ChannelSettings
	case notify.KindSlack:
		return &n.Slack.ChannelSettings
	case notify.KindDiscord:
		return &n.Discord.ChannelSettings
	case notify.KindWebhook:
		return &n.Webhook.ChannelSettings
	case notify.KindNATS:
		return &n.NATS.ChannelSettings
	case notify.KindKafka:
		return &n.Kafka.ChannelSettings
	}

	return nil
}

// ResolvePath picks the configuration file: the flag value, then
// MONITORD_CONFIG, then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if p := os.Getenv(PathEnv); p != "" {
		return p
	}

	return DefaultPath
}

// LoadConfig reads, expands and validates the configuration at path.
func LoadConfig(ctx context.Context, path string, log logger.Logger, opts ...LoaderOption) (*Config, error) {
	var cfg Config

	if err := NewFileConfigLoader(log, opts...).Load(ctx, path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
