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
	"bytes"
	"encoding/json"
	"time"
)

// ReportType distinguishes events from action results.
type ReportType string

const (
	ReportEvent  ReportType = "event"
	ReportAction ReportType = "action"
)

// Event types emitted by the agent.
const (
	EventServiceDown          = "service_down"
	EventServiceRecoveryStart = "service_recovery_start"
	EventServiceRecovery      = "service_recovery"
	EventResourceThreshold    = "resource_threshold"
	EventResourceRecovery     = "resource_recovery"
	EventMonitorStarted       = "monitor_started"
)

// Report is an event or action payload routed to notification channels.
// Sections are free-form nested maps.
type Report struct {
	EventID     string         `json:"event_id,omitempty"`
	EventType   string         `json:"event_type"`
	Title       string         `json:"title,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Severity    Severity       `json:"severity"`
	Hostname    string         `json:"hostname,omitempty"`
	Service     map[string]any `json:"service,omitempty"`
	Resource    map[string]any `json:"resource,omitempty"`
	Action      map[string]any `json:"action,omitempty"`
	Details     string         `json:"details,omitempty"`
	SystemStats map[string]any `json:"system_stats,omitempty"`
}

// Clone returns a copy whose section maps can be dropped independently.
func (r *Report) Clone() *Report {
	c := *r

	return &c
}

// Payload renders the report as a JSON-shaped map.
func (r *Report) Payload() map[string]any {
	out := map[string]any{
		"event_type": r.EventType,
		"severity":   string(r.Severity.Normalize()),
	}

	if r.Timestamp.IsZero() {
		out["timestamp"] = nil
	} else {
		out["timestamp"] = r.Timestamp.UTC().Format(time.RFC3339)
	}

	optional := map[string]string{"event_id": r.EventID, "title": r.Title, "hostname": r.Hostname, "details": r.Details}
	for k, v := range optional {
		if v != "" {
			out[k] = v
		}
	}

	sections := map[string]map[string]any{
		"service": r.Service, "resource": r.Resource, "action": r.Action, "system_stats": r.SystemStats,
	}
	for k, v := range sections {
		if len(v) > 0 {
			out[k] = v
		}
	}

	return out
}

// ToFields converts a JSON-tagged value into a nested map suitable for a
// report section. Numbers keep their JSON text form.
func ToFields(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return map[string]any{"error": err.Error()}
	}

	return out
}
