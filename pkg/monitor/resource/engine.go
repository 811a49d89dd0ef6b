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

// Package resource evaluates host load, memory and disk thresholds and runs
// cooldown-gated recovery actions.
package resource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/monitord/pkg/clock"
	"github.com/carverauto/monitord/pkg/command"
	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/metrics"
	"github.com/carverauto/monitord/pkg/models"
	"github.com/carverauto/monitord/pkg/platform"
)

const (
	mib = 1024 * 1024
	gib = 1024 * 1024 * 1024
)

// Engine owns the per-action cooldown state.
type Engine struct {
	config  Config
	sources Sources
	manager platform.ServiceManager
	runner  command.Runner
	clock   clock.Clock
	metrics *metrics.Recorder
	logger  logger.Logger

	// cycle serializes evaluation with UpdateConfig.
	cycle sync.Mutex

	mu         sync.Mutex
	lastAction map[string]time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithSources replaces the host statistics collectors. Nil fields keep the
// gopsutil defaults.
func WithSources(s Sources) Option {
	return func(e *Engine) {
		e.sources = s.withDefaults()
	}
}

func NewEngine(
	cfg *Config,
	manager platform.ServiceManager,
	runner command.Runner,
	log logger.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		config:     *cfg,
		sources:    HostSources(),
		manager:    manager,
		runner:     runner,
		clock:      clock.Real(),
		logger:     log,
		lastAction: make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Enabled reports whether resource monitoring is switched on.
func (e *Engine) Enabled() bool {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	return e.config.IsEnabled()
}

// UpdateConfig swaps in a reloaded configuration. Recovery cooldowns carry
// over. An evaluation in flight completes first.
func (e *Engine) UpdateConfig(cfg *Config) {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	e.config = *cfg

	e.logger.Info().Msg("Resource monitor configuration updated")
}

// CheckResources evaluates cpu, memory and disk in that order and triggers at
// most one recovery per exceeded category.
func (e *Engine) CheckResources(ctx context.Context) models.ResourceCheckResult {
	return e.evaluate(ctx, true)
}

// Evaluate is CheckResources without any recovery action or cooldown change.
func (e *Engine) Evaluate(ctx context.Context) models.ResourceCheckResult {
	return e.evaluate(ctx, false)
}

func (e *Engine) evaluate(ctx context.Context, withRecovery bool) models.ResourceCheckResult {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	if !e.config.IsEnabled() {
		e.logger.Debug().Msg("Resource monitoring is disabled")
		return models.ResourceCheckResult{}
	}

	result := models.ResourceCheckResult{
		Enabled:       true,
		Timestamp:     e.clock.Now(),
		ActionsTaken:  []string{},
		ActionResults: []models.ResourceActionResult{},
	}

	if e.config.CPULoad.Enabled {
		e.safely(&result, "cpu", func() {
			result.CPULoad = e.checkCPU(ctx)
			if result.CPULoad.ThresholdExceeded {
				e.metrics.ResourceBreached(ctx, "cpu")
			}

			if result.CPULoad.ThresholdExceeded && withRecovery {
				e.record(&result, models.ActionHighCPURecovery, e.handleHighCPU(ctx))
			}
		})
	}

	if e.config.Memory.Enabled {
		e.safely(&result, "memory", func() {
			result.Memory = e.checkMemory(ctx)
			if result.Memory.ThresholdExceeded {
				e.metrics.ResourceBreached(ctx, "memory")
			}

			if result.Memory.ThresholdExceeded && withRecovery {
				e.record(&result, models.ActionLowMemoryRecovery,
					e.restartForAction(ctx, models.ActionTypeLowMemory, e.config.RecoveryActions.LowMemoryServices))
			}
		})
	}

	if e.config.Disk.Enabled {
		e.safely(&result, "disk", func() {
			result.Disk = e.checkDisk(ctx)
			if result.Disk.ThresholdExceeded {
				e.metrics.ResourceBreached(ctx, "disk")
			}

			if result.Disk.ThresholdExceeded && withRecovery {
				e.record(&result, models.ActionLowDiskRecovery,
					e.restartForAction(ctx, models.ActionTypeLowDisk, e.config.RecoveryActions.LowDiskServices))
			}
		})
	}

	return result
}

// safely runs one resource category so that a panic in it leaves the other
// categories to be checked. Panics are joined into result.Error.
func (e *Engine) safely(result *models.ResourceCheckResult, resource string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("resource", resource).Interface("panic", r).Msg("Error checking resources")

			if result.Error != "" {
				result.Error += "; "
			}

			result.Error += fmt.Sprint(r)
		}
	}()

	fn()
}

func (*Engine) record(result *models.ResourceCheckResult, name string, action *models.ResourceActionResult) {
	result.ActionsTaken = append(result.ActionsTaken, name)

	if action != nil {
		result.ActionResults = append(result.ActionResults, *action)
	}
}

func (e *Engine) checkCPU(ctx context.Context) *models.CPULoadResult {
	res := &models.CPULoadResult{}

	avg, err := e.sources.Load(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Error checking CPU load")
		res.Error = err.Error()

		return res
	}

	res.Load1Min, res.Load5Min, res.Load15Min = avg.Load1, avg.Load5, avg.Load15

	cfg := &e.config.CPULoad
	windows := []struct {
		enabled   bool
		load      float64
		threshold float64
		name      string
	}{
		{cfg.Check1Min, avg.Load1, value(cfg.Threshold1Min, defaultThreshold1Min), "1min"},
		{cfg.Check5Min, avg.Load5, value(cfg.Threshold5Min, defaultThreshold5Min), "5min"},
		{cfg.Check15Min, avg.Load15, value(cfg.Threshold15Min, defaultThreshold15Min), "15min"},
	}

	for _, w := range windows {
		if !w.enabled || w.load <= w.threshold {
			continue
		}

		res.ThresholdExceeded = true
		res.ExceededType = w.name

		e.logger.Warn().Str("window", w.name).Float64("load", w.load).Float64("threshold", w.threshold).
			Msg("CPU load exceeded threshold")

		break
	}

	return res
}

func (e *Engine) checkMemory(ctx context.Context) *models.MemoryResult {
	res := &models.MemoryResult{}

	vm, err := e.sources.Memory(ctx)
	if err == nil && vm.Total == 0 {
		err = errZeroTotal
	}

	if err != nil {
		e.logger.Error().Err(err).Msg("Error checking memory")
		res.Error = err.Error()

		return res
	}

	res.TotalMB = float64(vm.Total) / mib
	res.AvailableMB = float64(vm.Available) / mib
	res.AvailablePercent = float64(vm.Available) / float64(vm.Total) * 100

	cfg := &e.config.Memory
	percentThreshold := value(cfg.FreePercentThreshold, defaultMemFreePercent)
	mbThreshold := value(cfg.FreeMBThreshold, defaultMemFreeMB)

	percentLow := res.AvailablePercent < percentThreshold
	mbLow := res.AvailableMB < mbThreshold

	if cfg.Policy() == ConditionAnd {
		res.ThresholdExceeded = percentLow && mbLow
	} else {
		res.ThresholdExceeded = percentLow || mbLow
	}

	if !res.ThresholdExceeded {
		return res
	}

	switch {
	case percentLow && !mbLow:
		res.ExceededType = "percent"
	case mbLow && !percentLow:
		res.ExceededType = "mb"
	default:
		res.ExceededType = "both"
	}

	e.logger.Warn().Str("type", res.ExceededType).
		Float64("free_percent", res.AvailablePercent).Float64("free_percent_threshold", percentThreshold).
		Float64("free_mb", res.AvailableMB).Float64("free_mb_threshold", mbThreshold).
		Msg("Free memory below threshold")

	return res
}

func (e *Engine) checkDisk(ctx context.Context) *models.DiskResult {
	cfg := &e.config.Disk
	res := &models.DiskResult{MountPoints: []models.MountPointResult{}}

	for _, mp := range cfg.Targets() {
		if mp.Path == "" || !e.sources.PathExists(mp.Path) {
			continue
		}

		entry := models.MountPointResult{Path: mp.Path}

		usage, err := e.sources.DiskUsage(ctx, mp.Path)
		if err == nil && usage.Total == 0 {
			err = errZeroTotal
		}

		if err != nil {
			e.logger.Error().Err(err).Str("path", mp.Path).Msg("Error checking disk")
			entry.Error = err.Error()
			res.MountPoints = append(res.MountPoints, entry)

			continue
		}

		entry.TotalGB = float64(usage.Total) / gib
		entry.FreeGB = float64(usage.Free) / gib
		entry.FreePercent = float64(usage.Free) / float64(usage.Total) * 100

		percentThreshold := defaultDiskFreePercent

		switch {
		case mp.FreePercentThreshold != nil:
			percentThreshold = *mp.FreePercentThreshold
		case mp.ThresholdPercent != nil:
			percentThreshold = *mp.ThresholdPercent
		case cfg.FreePercentThreshold != nil:
			percentThreshold = *cfg.FreePercentThreshold
		}

		gbThreshold := value(mp.FreeGBThreshold, value(cfg.FreeGBThreshold, defaultDiskFreeGB))

		mbThreshold := cfg.FreeMBThreshold
		if mp.FreeMBThreshold != nil {
			mbThreshold = mp.FreeMBThreshold
		}

		freeMB := float64(usage.Free) / mib

		switch {
		case entry.FreePercent < percentThreshold:
			entry.ThresholdExceeded = e.diskBreach(mp.Path, "free_percent", entry.FreePercent, percentThreshold)
		case entry.FreeGB < gbThreshold:
			entry.ThresholdExceeded = e.diskBreach(mp.Path, "free_gb", entry.FreeGB, gbThreshold)
		case mbThreshold != nil && freeMB < *mbThreshold:
			entry.ThresholdExceeded = e.diskBreach(mp.Path, "free_mb", freeMB, *mbThreshold)
		}

		if entry.ThresholdExceeded {
			res.ThresholdExceeded = true
		}

		res.MountPoints = append(res.MountPoints, entry)
	}

	return res
}

func (e *Engine) diskBreach(path, measure string, observed, threshold float64) bool {
	e.logger.Warn().Str("path", path).Str("measure", measure).
		Float64("value", observed).Float64("threshold", threshold).
		Msg("Disk space below threshold")

	return true
}

// allowed reports whether the action type is outside its cooldown window.
func (e *Engine) allowed(actionType string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	last, ok := e.lastAction[actionType]

	return !ok || e.clock.Now().Sub(last) >= e.config.RecoveryActions.cooldown()
}

func (e *Engine) markAction(actionType string) {
	e.mu.Lock()
	e.lastAction[actionType] = e.clock.Now()
	e.mu.Unlock()
}

func (e *Engine) handleHighCPU(ctx context.Context) *models.ResourceActionResult {
	if !e.allowed(models.ActionTypeHighCPU) {
		e.logger.Info().Msg("High CPU recovery is in cooldown period")
		return nil
	}

	e.logger.Info().Msg("Executing high CPU recovery actions")

	details := models.ResourceActionDetails{Services: []models.ServiceRestartResult{}}

	if rc := e.config.CPULoad.RecoveryCommand; rc.IsSet() {
		details.RecoveryCommand = rc.String()
		ok := e.runRecoveryCommand(ctx, rc)
		details.RecoveryCommandSuccess = &ok
	}

	if services := e.config.RecoveryActions.HighCPUServices; len(services) > 0 {
		details.Services = e.restartServices(ctx, services)
	}

	e.markAction(models.ActionTypeHighCPU)

	return &models.ResourceActionResult{
		Action:    models.ActionHighCPURecovery,
		Timestamp: e.clock.Now(),
		Success:   actionSucceeded(&details),
		Details:   details,
	}
}

func (e *Engine) runRecoveryCommand(ctx context.Context, rc CommandLine) bool {
	args, err := rc.Args()
	if err == nil && len(args) == 0 {
		err = errEmptyRecoveryCommand
	}

	if err != nil {
		e.logger.Error().Err(err).Str("command", rc.String()).Msg("Invalid CPU recovery command")
		return false
	}

	res := e.runner.Run(ctx, args, recoveryCommandTimeout)

	switch {
	case res.Status == command.StatusTimeout:
		e.logger.Error().Str("command", rc.String()).Msg("Timeout executing CPU recovery command")
	case !res.OK():
		e.logger.Error().Str("command", rc.String()).Str("output", res.Diagnostic()).
			Msg("CPU recovery command failed")
	default:
		e.logger.Info().Str("command", rc.String()).Msg("Successfully executed CPU recovery command")
	}

	return res.OK()
}

func (e *Engine) restartForAction(ctx context.Context, actionType string, services []string) *models.ResourceActionResult {
	if !e.allowed(actionType) {
		e.logger.Info().Str("action", actionType).Msg("Resource recovery is in cooldown period")
		return nil
	}

	e.logger.Info().Str("action", actionType).Msg("Executing resource recovery actions")

	results := e.restartServices(ctx, services)

	e.markAction(actionType)

	details := models.ResourceActionDetails{Services: results}

	return &models.ResourceActionResult{
		Action:    actionType + "_recovery",
		Timestamp: e.clock.Now(),
		Success:   actionSucceeded(&details),
		Details:   details,
	}
}

// restartServices restarts each service in order, pausing between restarts
// but not after the last one.
func (e *Engine) restartServices(ctx context.Context, services []string) []models.ServiceRestartResult {
	results := make([]models.ServiceRestartResult, 0, len(services))

	for i, name := range services {
		e.logger.Info().Str("service", name).Msg("Restarting service for resource recovery")

		outcome := e.manager.RestartService(ctx, name, "")

		results = append(results, models.ServiceRestartResult{
			Service: name,
			Success: outcome.Success,
			Stdout:  outcome.Stdout,
			Stderr:  outcome.Stderr,
		})

		if outcome.Success {
			e.logger.Info().Str("service", name).Msg("Successfully restarted service")
		} else {
			e.logger.Error().Str("service", name).Str("stderr", outcome.Stderr).Msg("Failed to restart service")
		}

		if i < len(services)-1 {
			e.clock.Sleep(e.config.RecoveryActions.restartInterval())
		}
	}

	return results
}

// actionSucceeded is false when the recovery command failed, otherwise true
// iff every service restart succeeded (vacuously true with none).
func actionSucceeded(d *models.ResourceActionDetails) bool {
	if d.RecoveryCommandSuccess != nil && !*d.RecoveryCommandSuccess {
		return false
	}

	for _, s := range d.Services {
		if !s.Success {
			return false
		}
	}

	return true
}
