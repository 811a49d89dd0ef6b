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

// Package service checks configured services and drives their recovery.
package service

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/carverauto/monitord/pkg/clock"
	"github.com/carverauto/monitord/pkg/command"
	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/metrics"
	"github.com/carverauto/monitord/pkg/models"
	"github.com/carverauto/monitord/pkg/platform"
)

type attemptRecord struct {
	count int
	first time.Time
}

// Engine owns the per-service scheduling, budget and cooldown state. Each
// instance starts clean; a config reload builds a new one.
type Engine struct {
	config   Config
	probe    Prober
	manager  platform.ServiceManager
	runner   command.Runner
	notifier Notifier
	clock    clock.Clock
	metrics  *metrics.Recorder
	logger   logger.Logger

	// cycle serializes checks with UpdateConfig.
	cycle sync.Mutex

	mu              sync.Mutex
	restartHistory  map[string]*attemptRecord
	restartCooldown map[string]time.Time
	actionCooldown  map[string]time.Time
	lastCheck       map[string]time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithMetrics records checks and restarts.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// NewEngine builds a service health engine. notifier may be nil.
func NewEngine(
	cfg *Config,
	probe Prober,
	manager platform.ServiceManager,
	runner command.Runner,
	notifier Notifier,
	log logger.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		config:          *cfg,
		probe:           probe,
		manager:         manager,
		runner:          runner,
		notifier:        notifier,
		clock:           clock.Real(),
		logger:          log,
		restartHistory:  make(map[string]*attemptRecord),
		restartCooldown: make(map[string]time.Time),
		actionCooldown:  make(map[string]time.Time),
		lastCheck:       make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Enabled reports whether service monitoring is switched on.
func (e *Engine) Enabled() bool {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	return e.config.IsEnabled()
}

// UpdateConfig swaps in a reloaded configuration, probe and notifier. Restart
// budgets, cooldowns and check schedules carry over, so a reload never grants
// a service extra restarts. A check in flight completes first.
func (e *Engine) UpdateConfig(cfg *Config, probe Prober, notifier Notifier) {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	e.config = *cfg

	if probe != nil {
		e.probe = probe
	}

	e.notifier = notifier

	e.logger.Info().Int("services", len(cfg.Services)).Msg("Service monitor configuration updated")
}

// CheckAll checks every enabled service that is due and handles failures.
// A failing service never aborts the batch.
func (e *Engine) CheckAll(ctx context.Context) []models.ServiceCheckResult {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	if !e.config.IsEnabled() {
		e.logger.Debug().Msg("Service monitoring is disabled")
		return nil
	}

	results := make([]models.ServiceCheckResult, 0, len(e.config.Services))

	for i := range e.config.Services {
		spec := &e.config.Services[i]
		if !spec.IsEnabled() || !e.due(spec) {
			continue
		}

		results = append(results, e.checkOne(ctx, spec))
	}

	return results
}

// ProbeAll probes every enabled service once, ignoring schedules and without
// any recovery action.
func (e *Engine) ProbeAll(ctx context.Context) []models.ServiceCheckResult {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	results := make([]models.ServiceCheckResult, 0, len(e.config.Services))

	for i := range e.config.Services {
		spec := &e.config.Services[i]
		if !spec.IsEnabled() {
			continue
		}

		status := e.probe.Check(ctx, spec)
		status.Critical = spec.Critical
		status.Description = spec.Description
		results = append(results, status)
	}

	return results
}

func (e *Engine) checkOne(ctx context.Context, spec *models.ServiceSpec) (status models.ServiceCheckResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("service", spec.Name).Interface("panic", r).Msg("Error checking service")

			status = models.ServiceCheckResult{
				Name:        spec.Name,
				CheckMethod: spec.Method(),
				Critical:    spec.Critical,
				Description: spec.Description,
				Error:       fmt.Sprint(r),
			}
		}
	}()

	e.logger.Debug().Str("service", spec.Name).Msg("Checking service")

	status = e.probe.Check(ctx, spec)
	status.Critical = spec.Critical
	status.Description = spec.Description

	e.metrics.ServiceChecked(ctx, spec.Key(), status.Running)

	if status.Running {
		e.logger.Debug().Str("service", spec.Name).Msg("Service is running normally")
		return status
	}

	status.EventTime = e.clock.Now()

	e.logger.Warn().Str("service", spec.Name).Str("message", status.Message).Msg("Service is not running")

	status.ActionResult = e.handleFailure(ctx, spec, &status)

	return status
}

// due applies check_interval scheduling and records the check time.
func (e *Engine) due(spec *models.ServiceSpec) bool {
	interval := spec.CheckInterval.Or(e.config.CheckInterval)
	if !interval.Active() {
		return true
	}

	key := spec.Key()
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if last, ok := e.lastCheck[key]; ok && now.Sub(last) < interval.Duration() {
		e.logger.Debug().Str("service", spec.Name).Msg("Skipping service check, interval not elapsed")
		return false
	}

	e.lastCheck[key] = now

	return true
}

func (e *Engine) handleFailure(
	ctx context.Context, spec *models.ServiceSpec, status *models.ServiceCheckResult,
) *models.ActionResult {
	if !e.config.RestartsAllowed() {
		return nil
	}

	key := spec.Key()

	if !e.actionAllowed(key, spec) {
		e.logger.Info().Str("service", spec.Name).Msg("Service is in action cooldown period, skipping recovery")

		return &models.ActionResult{
			Action:    models.ActionRecoverySkipped,
			Timestamp: e.clock.Now(),
			Message:   "Action cooldown active",
		}
	}

	if ready, reason := e.readiness(ctx, spec); !ready {
		e.logger.Info().Str("service", spec.Name).Str("reason", reason).Msg("Service action blocked")

		return &models.ActionResult{
			Action:    models.ActionRecoveryBlocked,
			Timestamp: e.clock.Now(),
			Message:   reason,
		}
	}

	if !e.reserveAttempt(key) {
		return nil
	}

	e.notifyPreAction(ctx, spec, status)

	success := e.restart(ctx, spec)
	status.ActionTaken = models.ActionTakenRestartAttempted
	status.RestartSuccess = success

	e.metrics.RestartAttempted(ctx, key, success)

	now := e.clock.Now()

	e.mu.Lock()
	if success {
		e.restartCooldown[key] = now
	}

	e.actionCooldown[key] = now
	e.mu.Unlock()

	if success {
		e.logger.Info().Str("service", spec.Name).Msg("Successfully restarted service")
	} else {
		e.logger.Error().Str("service", spec.Name).Msg("Failed to restart service")
	}

	return &models.ActionResult{
		Action:    models.ActionRestartService,
		Command:   spec.RestartCommand.String(),
		Success:   success,
		Timestamp: now,
		Message:   status.Message,
	}
}

func (e *Engine) actionAllowed(key string, spec *models.ServiceSpec) bool {
	cooldown := spec.ActionCooldown.Or(e.config.ActionCooldown)
	if !cooldown.Active() {
		return true
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	last, ok := e.actionCooldown[key]

	return !ok || e.clock.Now().Sub(last) >= cooldown.Duration()
}

// reserveAttempt checks the rolling restart budget and the post-restart
// cooldown, then counts the attempt. Check and increment share one critical
// section so concurrent cycles cannot both pass the budget.
func (e *Engine) reserveAttempt(key string) bool {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	record, ok := e.restartHistory[key]

	switch {
	case !ok, now.Sub(record.first) > e.config.attemptWindow():
		record = &attemptRecord{first: now}
		e.restartHistory[key] = record
	case record.count >= e.config.maxAttempts():
		e.logger.Error().Str("service", key).Msg("Service has exceeded maximum restart attempts")
		return false
	}

	if last, ok := e.restartCooldown[key]; ok && now.Sub(last) < e.config.restartCooldown() {
		e.logger.Info().Str("service", key).Msg("Service is in cooldown period, skipping restart")
		return false
	}

	record.count++

	return true
}

// readiness refuses recovery on systemd hosts when the unit is missing or
// already transitioning.
func (e *Engine) readiness(ctx context.Context, spec *models.ServiceSpec) (bool, string) {
	if spec.ServiceName == "" && spec.ServiceNamePattern == "" {
		return true, ""
	}

	if e.manager.Manager() != platform.Systemd {
		return true, ""
	}

	exists, restarting := e.systemdState(ctx, spec)

	switch {
	case !exists:
		return false, "Service not found"
	case restarting:
		return false, "Service is restarting"
	}

	return true, ""
}

func (e *Engine) systemdState(ctx context.Context, spec *models.ServiceSpec) (exists, restarting bool) {
	if spec.ServiceNamePattern != "" {
		re, err := regexp.Compile(spec.ServiceNamePattern)
		if err != nil {
			e.logger.Error().Err(err).Str("pattern", spec.ServiceNamePattern).Msg("Error checking systemd state")
			return false, false
		}

		units, err := e.manager.ListUnits(ctx)
		if err != nil {
			return false, false
		}

		for _, u := range units {
			if !re.MatchString(u.Name) {
				continue
			}

			exists = true

			if platform.IsTransitioning(u.Active, u.Sub) {
				return true, true
			}
		}

		return exists, false
	}

	state, err := e.manager.UnitState(ctx, spec.ServiceName)
	if err != nil {
		return false, false
	}

	return state.Exists(), state.Transitioning()
}

func (e *Engine) notifyPreAction(ctx context.Context, spec *models.ServiceSpec, status *models.ServiceCheckResult) {
	if e.notifier == nil {
		return
	}

	method := string(status.CheckMethod)
	if method == "" {
		method = "unknown"
	}

	message := status.Message
	if message == "" {
		message = "N/A"
	}

	var command any
	if spec.RestartCommand.IsSet() {
		command = spec.RestartCommand.String()
	}

	e.notifier.DispatchEvent(ctx, &models.Report{
		EventType: models.EventServiceRecoveryStart,
		Timestamp: e.clock.Now(),
		Severity:  models.SeverityHigh,
		Service: map[string]any{
			"name":         spec.Name,
			"status":       "recovery_start",
			"check_method": method,
			"message":      message,
			"description":  spec.Description,
		},
		Action: map[string]any{
			"planned_action": models.ActionRestartService,
			"command":        command,
		},
		Details: "Recovery action will be executed",
	})
}

// ResetRestartHistory clears budgets, cooldowns and schedules.
func (e *Engine) ResetRestartHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()

	clear(e.restartHistory)
	clear(e.restartCooldown)
	clear(e.actionCooldown)
	clear(e.lastCheck)

	e.logger.Info().Msg("Reset all service restart history and cooldowns")
}
