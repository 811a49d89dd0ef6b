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

// Package agent runs the monitoring loop: it drives the service and resource
// engines, turns their results into reports and hands them to the
// notification router.
package agent

//go:generate mockgen -destination=mock_agent.go -package=agent github.com/carverauto/monitord/pkg/agent ServiceMonitor,ResourceMonitor,Notifier

import (
	"context"

	"github.com/carverauto/monitord/pkg/models"
	"github.com/carverauto/monitord/pkg/monitor/resource"
	"github.com/carverauto/monitord/pkg/monitor/service"
)

// ServiceMonitor checks the configured services once per cycle.
type ServiceMonitor interface {
	Enabled() bool
	CheckAll(ctx context.Context) []models.ServiceCheckResult
	ProbeAll(ctx context.Context) []models.ServiceCheckResult
	UpdateConfig(cfg *service.Config, probe service.Prober, notifier service.Notifier)
}

// ResourceMonitor evaluates host resources and samples system statistics.
type ResourceMonitor interface {
	Enabled() bool
	CheckResources(ctx context.Context) models.ResourceCheckResult
	Evaluate(ctx context.Context) models.ResourceCheckResult
	GetCurrentStats(ctx context.Context) models.SystemStats
	UpdateConfig(cfg *resource.Config)
}

// Notifier routes reports to the notification channels.
type Notifier interface {
	DispatchEvent(ctx context.Context, report *models.Report) bool
	DispatchActionResult(ctx context.Context, report *models.Report) bool
	EnabledChannels() []string
	TestAllChannels(ctx context.Context) map[string]bool
	Close() error
}
