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
	"context"

	"github.com/google/uuid"

	"github.com/carverauto/monitord/pkg/clock"
	"github.com/carverauto/monitord/pkg/models"
)

// Reporter stamps every report with an event id, the host name and a UTC
// timestamp before passing it on.
type Reporter struct {
	next     Notifier
	hostname string
	clock    clock.Clock
}

// NewReporter wraps next.
func NewReporter(next Notifier, hostname string, c clock.Clock) *Reporter {
	if c == nil {
		c = clock.Real()
	}

	return &Reporter{next: next, hostname: hostname, clock: c}
}

func (r *Reporter) stamp(report *models.Report) *models.Report {
	out := report.Clone()

	if out.EventID == "" {
		out.EventID = uuid.NewString()
	}

	if out.Hostname == "" {
		out.Hostname = r.hostname
	}

	if out.Timestamp.IsZero() {
		out.Timestamp = r.clock.Now()
	}

	out.Timestamp = out.Timestamp.UTC()

	return out
}

func (r *Reporter) DispatchEvent(ctx context.Context, report *models.Report) bool {
	return r.next.DispatchEvent(ctx, r.stamp(report))
}

func (r *Reporter) DispatchActionResult(ctx context.Context, report *models.Report) bool {
	return r.next.DispatchActionResult(ctx, r.stamp(report))
}

func (r *Reporter) EnabledChannels() []string {
	return r.next.EnabledChannels()
}

func (r *Reporter) TestAllChannels(ctx context.Context) map[string]bool {
	return r.next.TestAllChannels(ctx)
}

func (r *Reporter) Close() error {
	return r.next.Close()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}

func serviceDownReport(res *models.ServiceCheckResult, stats map[string]any) *models.Report {
	severity := models.SeverityHigh
	if res.Critical {
		severity = models.SeverityCritical
	}

	message := orDefault(res.Message, "N/A")

	return &models.Report{
		EventType: models.EventServiceDown,
		Timestamp: res.EventTime,
		Severity:  severity,
		Service: map[string]any{
			"name":         res.Name,
			"status":       "down",
			"check_method": orDefault(string(res.CheckMethod), "unknown"),
			"message":      message,
			"description":  res.Description,
			"critical":     res.Critical,
		},
		Details:     message,
		SystemStats: stats,
	}
}

// restartReport describes the outcome of a restart attempt, nil when no
// restart was attempted for res.
func restartReport(res *models.ServiceCheckResult, stats map[string]any) *models.Report {
	action := res.ActionResult
	if res.ActionTaken == "" || action == nil || action.Action != models.ActionRestartService {
		return nil
	}

	severity, status := models.SeverityHigh, "failed"
	if res.RestartSuccess {
		severity, status = models.SeverityInfo, "restarted"
	}

	return &models.Report{
		EventType: models.EventServiceRecovery,
		Timestamp: action.Timestamp,
		Severity:  severity,
		Service: map[string]any{
			"name":         res.Name,
			"status":       status,
			"check_method": orDefault(string(res.CheckMethod), "unknown"),
			"message":      orDefault(res.Message, "N/A"),
		},
		Action:      models.ToFields(action),
		Details:     action.Message,
		SystemStats: stats,
	}
}

// thresholdReports returns one report per exceeded resource, in cpu, memory,
// disk order.
func thresholdReports(res *models.ResourceCheckResult, stats func() map[string]any) []*models.Report {
	type breach struct {
		kind     string
		details  string
		exceeded bool
		section  any
	}

	breaches := []breach{
		{kind: "cpu", details: "CPU load threshold exceeded"},
		{kind: "memory", details: "Memory threshold exceeded"},
		{kind: "disk", details: "Disk threshold exceeded"},
	}

	if res.CPULoad != nil {
		breaches[0].exceeded, breaches[0].section = res.CPULoad.ThresholdExceeded, res.CPULoad
	}

	if res.Memory != nil {
		breaches[1].exceeded, breaches[1].section = res.Memory.ThresholdExceeded, res.Memory
	}

	if res.Disk != nil {
		breaches[2].exceeded, breaches[2].section = res.Disk.ThresholdExceeded, res.Disk
	}

	var reports []*models.Report

	for _, b := range breaches {
		if !b.exceeded {
			continue
		}

		reports = append(reports, &models.Report{
			EventType: models.EventResourceThreshold,
			Timestamp: res.Timestamp,
			Severity:  models.SeverityHigh,
			Resource: map[string]any{
				"type":    b.kind,
				"details": models.ToFields(b.section),
			},
			Details:     b.details,
			SystemStats: stats(),
		})
	}

	return reports
}

func resourceRecoveryReport(action *models.ResourceActionResult, stats map[string]any) *models.Report {
	severity := models.SeverityHigh
	if action.Success {
		severity = models.SeverityInfo
	}

	return &models.Report{
		EventType:   models.EventResourceRecovery,
		Timestamp:   action.Timestamp,
		Severity:    severity,
		Action:      models.ToFields(action),
		Details:     orDefault(action.Action, "resource_recovery"),
		SystemStats: stats,
	}
}
