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

package config

import (
	"errors"
	"fmt"

	"github.com/carverauto/monitord/pkg/monitor/resource"
	"github.com/carverauto/monitord/pkg/monitor/service"
	"github.com/carverauto/monitord/pkg/notify"
)

// Validate checks the shape of every section and reports all problems at
// once. Disabled services are not checked.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, validateServiceMonitor(&c.ServiceMonitor)...)
	errs = append(errs, validateResourceMonitor(&c.ResourceMonitor)...)
	errs = append(errs, validateNotifications(&c.Notifications)...)

	return errors.Join(errs...)
}

func validateServiceMonitor(cfg *service.Config) []error {
	var errs []error

	switch cfg.Policy() {
	case service.PolicyRestart, service.PolicyRestartAndNotify, service.PolicyNotifyOnly:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownFailurePolicy, cfg.ActionOnFailure))
	}

	if cfg.MaxRestartAttempts != nil && *cfg.MaxRestartAttempts < 0 {
		errs = append(errs, fmt.Errorf("%w: service_monitor.max_restart_attempts", ErrNegativeValue))
	}

	for i := range cfg.Services {
		spec := &cfg.Services[i]
		if !spec.IsEnabled() {
			continue
		}

		if !spec.Method().Known() {
			errs = append(errs, fmt.Errorf("%w: %q for service %s", ErrUnknownCheckMethod, spec.CheckMethod, spec.Key()))
		}

		if spec.CheckTimeout < 0 || spec.TimeoutSeconds < 0 || spec.MaxResponseTimeMS < 0 {
			errs = append(errs, fmt.Errorf("%w: timeout for service %s", ErrNegativeValue, spec.Key()))
		}
	}

	return errs
}

func validateResourceMonitor(cfg *resource.Config) []error {
	var errs []error

	switch cfg.Memory.Policy() {
	case resource.ConditionOr, resource.ConditionAnd:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownMemoryCondition, cfg.Memory.Condition))
	}

	thresholds := map[string]*float64{
		"cpu_load.threshold_1min":       cfg.CPULoad.Threshold1Min,
		"cpu_load.threshold_5min":       cfg.CPULoad.Threshold5Min,
		"cpu_load.threshold_15min":      cfg.CPULoad.Threshold15Min,
		"memory.free_percent_threshold": cfg.Memory.FreePercentThreshold,
		"memory.free_mb_threshold":      cfg.Memory.FreeMBThreshold,
		"disk.free_percent_threshold":   cfg.Disk.FreePercentThreshold,
		"disk.free_gb_threshold":        cfg.Disk.FreeGBThreshold,
		"disk.free_mb_threshold":        cfg.Disk.FreeMBThreshold,
	}

	for _, mp := range cfg.Disk.Targets() {
		thresholds["disk "+mp.Path+" free_percent_threshold"] = mp.FreePercentThreshold
		thresholds["disk "+mp.Path+" threshold_percent"] = mp.ThresholdPercent
		thresholds["disk "+mp.Path+" free_gb_threshold"] = mp.FreeGBThreshold
		thresholds["disk "+mp.Path+" free_mb_threshold"] = mp.FreeMBThreshold
	}

	for name, v := range thresholds {
		if v != nil && *v < 0 {
			errs = append(errs, fmt.Errorf("%w: resource_monitor.%s", ErrNegativeValue, name))
		}
	}

	return errs
}

func validateNotifications(cfg *Notifications) []error {
	var errs []error

	if !cfg.MinSeverity.Known() {
		errs = append(errs, fmt.Errorf("%w: notifications.min_severity %q", ErrUnknownSeverity, cfg.MinSeverity))
	}

	errs = append(errs, validateRateLimit("notifications", &cfg.RateLimit)...)

	for _, kind := range notify.Kinds() {
		settings := cfg.Settings(kind)

		if !settings.MinSeverity.Known() {
			errs = append(errs, fmt.Errorf("%w: %s.min_severity %q", ErrUnknownSeverity, kind, settings.MinSeverity))
		}

		switch settings.Template.Format {
		case "", notify.FormatPlain, notify.FormatHTML:
		default:
			errs = append(errs, fmt.Errorf("%w: %s.template.format %q", ErrUnknownFormat, kind, settings.Template.Format))
		}

		if settings.RateLimit != nil {
			errs = append(errs, validateRateLimit(kind, settings.RateLimit)...)
		}
	}

	return errs
}

func validateRateLimit(scope string, rl *notify.RateLimitConfig) []error {
	if rl.MaxPerHour != nil && *rl.MaxPerHour < 0 {
		return []error{fmt.Errorf("%w: %s.rate_limit.max_per_hour", ErrNegativeValue, scope)}
	}

	return nil
}
