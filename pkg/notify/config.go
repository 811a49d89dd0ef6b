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
	"time"

	"github.com/carverauto/monitord/pkg/models"
)

const (
	defaultMinInterval = 300 * time.Second
	defaultMaxPerHour  = 20
	defaultReplacement = "[REDACTED]"

	FormatPlain = "plain"
	FormatHTML  = "html"
)

// Config holds the router-wide notification settings.
type Config struct {
	Enabled       *bool               `yaml:"enabled" json:"enabled,omitempty"`
	MinSeverity   models.Severity     `yaml:"min_severity" json:"min_severity,omitempty"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit" json:"rate_limit"`
	ContentFilter ContentFilterConfig `yaml:"content_filter" json:"content_filter"`
}

// IsEnabled defaults to true.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RateLimitConfig bounds how often one notification key may be delivered.
type RateLimitConfig struct {
	Enabled     *bool           `yaml:"enabled" json:"enabled,omitempty"`
	MinInterval models.Interval `yaml:"min_interval" json:"-"`
	MaxPerHour  *int            `yaml:"max_per_hour" json:"max_per_hour,omitempty"`
}

func (r *RateLimitConfig) active() bool {
	return r.Enabled == nil || *r.Enabled
}

func (r *RateLimitConfig) minInterval() time.Duration {
	if r.MinInterval.IsSet() {
		return r.MinInterval.Duration()
	}

	return defaultMinInterval
}

func (r *RateLimitConfig) maxPerHour() int {
	if r.MaxPerHour != nil {
		return *r.MaxPerHour
	}

	return defaultMaxPerHour
}

// ContentFilterConfig lists patterns scrubbed from outgoing content.
type ContentFilterConfig struct {
	Enabled           *bool    `yaml:"enabled" json:"enabled,omitempty"`
	RedactPatterns    []string `yaml:"redact_patterns" json:"redact_patterns,omitempty"`
	RedactReplacement string   `yaml:"redact_replacement" json:"redact_replacement,omitempty"`
}

// TemplateConfig selects the text rendering for a channel.
type TemplateConfig struct {
	Format string `yaml:"format" json:"format,omitempty"`
}

// ChannelSettings are the routing options every channel carries in its
// configuration block.
type ChannelSettings struct {
	MinSeverity          models.Severity  `yaml:"min_severity" json:"min_severity,omitempty"`
	RateLimit            *RateLimitConfig `yaml:"rate_limit" json:"rate_limit,omitempty"`
	IncludeSystemStats   *bool            `yaml:"include_system_stats" json:"include_system_stats,omitempty"`
	IncludeActionDetails *bool            `yaml:"include_action_details" json:"include_action_details,omitempty"`
	IncludeDetails       *bool            `yaml:"include_details" json:"include_details,omitempty"`
	Template             TemplateConfig   `yaml:"template" json:"template"`
}

func include(flag *bool) bool {
	return flag == nil || *flag
}
