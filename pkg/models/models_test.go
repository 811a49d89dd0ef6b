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

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     any
		seconds int
		set     bool
	}{
		{name: "nil", raw: nil},
		{name: "int", raw: 45, seconds: 45, set: true},
		{name: "negative clamps", raw: -5, seconds: 0, set: true},
		{name: "float truncates", raw: 2.9, seconds: 2, set: true},
		{name: "minutes", raw: map[string]any{"value": 2, "unit": "minutes"}, seconds: 120, set: true},
		{name: "hours", raw: map[string]any{"value": 1, "unit": "hours"}, seconds: 3600, set: true},
		{name: "short unit", raw: map[string]any{"value": 1.5, "unit": "m"}, seconds: 90, set: true},
		{name: "unit defaults to seconds", raw: map[string]any{"value": 30}, seconds: 30, set: true},
		{name: "unit is case insensitive", raw: map[string]any{"value": 3, "unit": "HRS"}, seconds: 10800, set: true},
		{name: "numeric string value", raw: map[string]any{"value": "10", "unit": "s"}, seconds: 10, set: true},
		{name: "unknown unit", raw: map[string]any{"value": 1, "unit": "days"}},
		{name: "missing value", raw: map[string]any{"unit": "minutes"}},
		{name: "plain string", raw: "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseInterval(tt.raw)
			assert.Equal(t, tt.set, got.IsSet())
			assert.Equal(t, tt.seconds, got.Seconds())
		})
	}
}

func TestIntervalUnmarshalYAML(t *testing.T) {
	t.Parallel()

	var cfg struct {
		A Interval `yaml:"a"`
		B Interval `yaml:"b"`
		C Interval `yaml:"c"`
	}

	err := yaml.Unmarshal([]byte("a: 30\nb:\n  value: 5\n  unit: minutes\n"), &cfg)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.A.Duration())
	assert.Equal(t, 300, cfg.B.Seconds())
	assert.False(t, cfg.C.IsSet())
	assert.Equal(t, 300, cfg.C.Or(cfg.B).Seconds())
	assert.False(t, Seconds(0).Active())
}

func TestSeverityRank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, SeverityDebug.Rank())
	assert.Equal(t, 5, SeverityCritical.Rank())
	assert.Equal(t, 4, Severity("HIGH").Rank())
	assert.Equal(t, 1, Severity("bogus").Rank())
	assert.Equal(t, 1, Severity("").Rank())

	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.False(t, SeverityInfo.AtLeast(SeverityHigh))
	assert.True(t, Severity("unknown").AtLeast(SeverityInfo))

	assert.True(t, Severity("Medium").Known())
	assert.True(t, Severity("").Known())
	assert.False(t, Severity("urgent").Known())
}

func TestServiceSpecDecode(t *testing.T) {
	t.Parallel()

	doc := `
name: web
check_method: process_regex
process_pattern: "nginx: master"
process_patterns:
  - "php-fpm"
  - pattern: "gunicorn .*app"
restart_command:
  - systemctl restart nginx
  - " "
check_interval: {value: 1, unit: minutes}
`

	var spec ServiceSpec
	require.NoError(t, yaml.Unmarshal([]byte(doc), &spec))

	assert.True(t, spec.IsEnabled())
	assert.Equal(t, CheckProcessRegex, spec.Method())
	assert.Equal(t, []string{"nginx: master", "php-fpm", "gunicorn .*app"}, spec.Patterns())
	assert.True(t, spec.RestartCommand.List)
	assert.Equal(t, []string{"systemctl restart nginx", " "}, spec.RestartCommand.Commands)
	assert.Equal(t, 60, spec.CheckInterval.Seconds())
	assert.Equal(t, "web", spec.Key())
}

func TestServiceSpecRestartCommandShapes(t *testing.T) {
	t.Parallel()

	var scalar, mapping, absent ServiceSpec

	require.NoError(t, yaml.Unmarshal([]byte("restart_command: service nginx restart"), &scalar))
	require.NoError(t, yaml.Unmarshal([]byte("restart_command: {cmd: x}"), &mapping))
	require.NoError(t, yaml.Unmarshal([]byte("name: x"), &absent))

	assert.Equal(t, Shell("service nginx restart"), scalar.RestartCommand)
	assert.True(t, mapping.RestartCommand.Invalid)
	assert.True(t, mapping.RestartCommand.IsSet())
	assert.False(t, absent.RestartCommand.IsSet())
}

func TestServiceSpecKeyFallbacks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sshd", (&ServiceSpec{ServiceName: "sshd"}).Key())
	assert.Equal(t, "redis-server", (&ServiceSpec{ProcessName: "redis-server"}).Key())
	assert.Equal(t, "http://x", (&ServiceSpec{URL: "http://x"}).Key())
	assert.Equal(t, "unknown_service", (&ServiceSpec{}).Key())
	assert.Equal(t, CheckSystemctl, (&ServiceSpec{}).Method())
	assert.False(t, CheckMethod("snmp").Known())
}

func TestReportPayload(t *testing.T) {
	t.Parallel()

	report := &Report{
		EventType: EventServiceDown,
		Severity:  "HIGH",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Service:   map[string]any{"name": "nginx"},
	}

	payload := report.Payload()

	assert.Equal(t, "service_down", payload["event_type"])
	assert.Equal(t, "high", payload["severity"])
	assert.Equal(t, "2026-01-02T03:04:05Z", payload["timestamp"])
	assert.Equal(t, map[string]any{"name": "nginx"}, payload["service"])
	assert.NotContains(t, payload, "action")
	assert.NotContains(t, payload, "details")
}

func TestToFieldsKeepsNumberText(t *testing.T) {
	t.Parallel()

	fields := ToFields(NetCounters{BytesSent: 12345678901})

	assert.Equal(t, json.Number("12345678901"), fields["bytes_sent"])
}
