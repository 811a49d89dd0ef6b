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
	"sync"

	"github.com/carverauto/monitord/pkg/models"
)

// RunCycle checks services, then resources, and dispatches the resulting
// reports. System statistics are sampled at most once per cycle.
func (s *Server) RunCycle(ctx context.Context) {
	cfg, comps := s.current()
	start := s.clock.Now()

	stats := sync.OnceValue(func() map[string]any {
		return models.ToFields(comps.Resources.GetCurrentStats(ctx))
	})

	if comps.Services.Enabled() {
		s.safely("service", func() {
			s.processServiceResults(ctx, comps.Notifier, comps.Services.CheckAll(ctx), stats)
		})
	}

	if comps.Resources.Enabled() {
		s.safely("resource", func() {
			s.processResourceResults(ctx, comps.Notifier, comps.Resources.CheckResources(ctx), stats)
		})
	}

	elapsed := s.clock.Now().Sub(start)
	if interval := cfg.General.Interval(); elapsed > interval {
		s.logger.Warn().Dur("elapsed", elapsed).Dur("interval", interval).Msg("Monitoring cycle exceeded the check interval")
	} else {
		s.logger.Debug().Dur("elapsed", elapsed).Msg("Monitoring cycle completed")
	}
}

func (s *Server) safely(section string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("section", section).Interface("panic", r).Msg("Error in monitoring cycle")
		}
	}()

	fn()
}

func (s *Server) processServiceResults(
	ctx context.Context, notifier Notifier, results []models.ServiceCheckResult, stats func() map[string]any,
) {
	for i := range results {
		res := &results[i]
		if res.Running {
			continue
		}

		notifier.DispatchEvent(ctx, serviceDownReport(res, stats()))

		if report := restartReport(res, stats()); report != nil {
			notifier.DispatchActionResult(ctx, report)
			continue
		}

		if res.ActionResult != nil {
			s.logger.Info().
				Str("service", res.Name).
				Str("action", res.ActionResult.Action).
				Str("reason", res.ActionResult.Message).
				Msg("Recovery not attempted")
		}
	}
}

func (s *Server) processResourceResults(
	ctx context.Context, notifier Notifier, result models.ResourceCheckResult, stats func() map[string]any,
) {
	if result.Error != "" {
		s.logger.Error().Str("error", result.Error).Msg("Resource check failed")
	}

	for _, report := range thresholdReports(&result, stats) {
		notifier.DispatchEvent(ctx, report)
	}

	for i := range result.ActionResults {
		notifier.DispatchActionResult(ctx, resourceRecoveryReport(&result.ActionResults[i], stats()))
	}

	if len(result.ActionsTaken) > 0 && len(result.ActionResults) == 0 {
		s.logger.Debug().Strs("actions", result.ActionsTaken).Msg("Resource recovery in cooldown, no new results")
	}
}

// Summary is the outcome of a one-shot check.
type Summary struct {
	Services  []models.ServiceCheckResult `json:"services"`
	Resources models.ResourceCheckResult  `json:"resources"`
}

// CriticalDown reports whether any critical service is not running.
func (s *Summary) CriticalDown() bool {
	for i := range s.Services {
		if s.Services[i].Critical && !s.Services[i].Running {
			return true
		}
	}

	return false
}

// Check probes every service and evaluates resources once, without any
// recovery action or notification.
func (s *Server) Check(ctx context.Context) Summary {
	_, comps := s.current()

	var summary Summary

	if comps.Services.Enabled() {
		summary.Services = comps.Services.ProbeAll(ctx)
	}

	if comps.Resources.Enabled() {
		summary.Resources = comps.Resources.Evaluate(ctx)
	}

	return summary
}

// Stats samples the current system statistics.
func (s *Server) Stats(ctx context.Context) models.SystemStats {
	_, comps := s.current()

	return comps.Resources.GetCurrentStats(ctx)
}
