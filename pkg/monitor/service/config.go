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

package service

import (
	"time"

	"github.com/carverauto/monitord/pkg/models"
)

// Failure policies accepted in action_on_failure.
const (
	PolicyRestart          = "restart"
	PolicyRestartAndNotify = "restart_and_notify"
	PolicyNotifyOnly       = "notify_only"
)

const (
	defaultMaxRestartAttempts = 3
	defaultAttemptWindow      = time.Hour
	defaultRestartCooldown    = 300 * time.Second
	defaultRestartWait        = 10 * time.Second

	hookTimeout    = 30 * time.Second
	restartTimeout = 60 * time.Second
)

// Config is the service_monitor section.
type Config struct {
	Enabled              *bool                `yaml:"enabled"`
	OnlyIPv4             bool                 `yaml:"only_ipv4"`
	ActionOnFailure      string               `yaml:"action_on_failure"`
	MaxRestartAttempts   *int                 `yaml:"max_restart_attempts"`
	RestartAttemptWindow models.Interval      `yaml:"restart_attempt_window"`
	RestartCooldown      models.Interval      `yaml:"restart_cooldown"`
	RestartWaitTime      models.Interval      `yaml:"restart_wait_time"`
	ActionCooldown       models.Interval      `yaml:"action_cooldown"`
	CheckInterval        models.Interval      `yaml:"check_interval"`
	Services             []models.ServiceSpec `yaml:"services"`
}

// IsEnabled defaults to true.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Policy returns action_on_failure, restart_and_notify when empty.
func (c *Config) Policy() string {
	if c.ActionOnFailure == "" {
		return PolicyRestartAndNotify
	}

	return c.ActionOnFailure
}

// RestartsAllowed reports whether the policy permits recovery.
func (c *Config) RestartsAllowed() bool {
	p := c.Policy()

	return p == PolicyRestart || p == PolicyRestartAndNotify
}

func (c *Config) maxAttempts() int {
	if c.MaxRestartAttempts == nil {
		return defaultMaxRestartAttempts
	}

	return *c.MaxRestartAttempts
}

func (c *Config) attemptWindow() time.Duration {
	if c.RestartAttemptWindow.IsSet() {
		return c.RestartAttemptWindow.Duration()
	}

	return defaultAttemptWindow
}

func (c *Config) restartCooldown() time.Duration {
	if c.RestartCooldown.IsSet() {
		return c.RestartCooldown.Duration()
	}

	return defaultRestartCooldown
}

func (c *Config) restartWait() time.Duration {
	if c.RestartWaitTime.IsSet() {
		return c.RestartWaitTime.Duration()
	}

	return defaultRestartWait
}
