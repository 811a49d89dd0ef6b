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

// Package checker probes a single service with one of a closed set of check
// methods and converts every failure into a non-running verdict.
package checker

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/monitord/pkg/command"
	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/models"
	"github.com/carverauto/monitord/pkg/platform"
)

const (
	defaultCustomTimeout   = 30 * time.Second
	defaultIptablesTimeout = 10 * time.Second
)

// Probe implements the service check contract.
type Probe struct {
	runner    command.Runner
	manager   platform.ServiceManager
	processes ProcessLister
	registry  Registry
	logger    logger.Logger
	onlyIPv4  bool

	mu       sync.Mutex
	patterns map[string][]*regexp.Regexp
}

// Config holds probe-wide settings.
type Config struct {
	OnlyIPv4 bool
}

// NewProbe wires every built-in check method into a fresh registry.
func NewProbe(
	runner command.Runner,
	manager platform.ServiceManager,
	processes ProcessLister,
	log logger.Logger,
	cfg Config,
) *Probe {
	p := &Probe{
		runner:    runner,
		manager:   manager,
		processes: processes,
		registry:  NewRegistry(),
		logger:    log,
		onlyIPv4:  cfg.OnlyIPv4,
		patterns:  make(map[string][]*regexp.Regexp),
	}

	p.registry.Register(models.CheckSystemctl, p.checkSystemctl)
	p.registry.Register(models.CheckAuto, p.managerCheck(""))
	p.registry.Register(models.CheckService, p.managerCheck(platform.SysV))
	p.registry.Register(models.CheckOpenRC, p.managerCheck(platform.OpenRC))
	p.registry.Register(models.CheckProcess, p.checkProcess)
	p.registry.Register(models.CheckProcessRegex, p.checkProcessRegex)
	p.registry.Register(models.CheckCustomCommand, p.checkCustomCommand)
	p.registry.Register(models.CheckIptables, p.checkIptables)
	p.registry.Register(models.CheckHTTP, p.checkHTTP)
	p.registry.Register(models.CheckHTTPS, p.checkHTTP)

	return p
}

// Check runs exactly one check method for spec. It never panics and never
// returns an error: failures become a non-running result with a message.
func (p *Probe) Check(ctx context.Context, spec *models.ServiceSpec) (result models.ServiceCheckResult) {
	method := spec.Method()

	result = models.ServiceCheckResult{
		Name:        spec.Name,
		CheckMethod: method,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Running = false
			result.Message = fmt.Sprintf("Check error: %v", r)
			p.logger.Error().Str("service", spec.Name).Interface("panic", r).Msg("Service check failed")
		}
	}()

	handler, err := p.registry.Get(method)
	if err != nil {
		result.Message = fmt.Sprintf("Unknown check method: %s", method)
		p.logger.Warn().Str("service", spec.Name).Err(err).Msg(result.Message)

		return result
	}

	verdict := handler(ctx, spec)
	result.Running = verdict.Running
	result.Message = verdict.Message
	result.HTTPStatus = verdict.HTTP

	return result
}

func activeMessage(running bool) string {
	if running {
		return "Active"
	}

	return "Inactive or failed"
}

func (p *Probe) checkSystemctl(ctx context.Context, spec *models.ServiceSpec) Verdict {
	if spec.ServiceNamePattern != "" {
		return Verdict{Running: p.anyUnitActive(ctx, spec.ServiceNamePattern)}.withMessage(activeMessage)
	}

	if spec.ServiceName == "" {
		return Verdict{Message: activeMessage(false)}
	}

	status := p.manager.CheckService(ctx, spec.ServiceName, "")

	return Verdict{Running: status.Running, Message: activeMessage(status.Running)}
}

func (v Verdict) withMessage(fn func(bool) string) Verdict {
	v.Message = fn(v.Running)
	return v
}

func (p *Probe) anyUnitActive(ctx context.Context, pattern string) bool {
	if !p.manager.SupportsPatterns() {
		p.logger.Warn().Str("pattern", pattern).Msg("Service manager does not support unit pattern checks")
		return false
	}

	compiled, err := p.compile([]string{pattern})
	if err != nil {
		p.logger.Warn().Err(err).Str("pattern", pattern).Msg("Invalid unit pattern")
		return false
	}

	units, err := p.manager.ListUnits(ctx)
	if err != nil {
		p.logger.Error().Err(err).Str("pattern", pattern).Msg("Error listing units")
		return false
	}

	for _, u := range units {
		if compiled[0].MatchString(u.Name) && u.Active == "active" {
			return true
		}
	}

	return false
}

func (p *Probe) managerCheck(override platform.ManagerType) Handler {
	return func(ctx context.Context, spec *models.ServiceSpec) Verdict {
		name := spec.UnitName()
		if name == "" {
			return Verdict{Message: activeMessage(false)}
		}

		status := p.manager.CheckService(ctx, name, override)

		return Verdict{Running: status.Running, Message: activeMessage(status.Running)}
	}
}

func (p *Probe) checkProcess(ctx context.Context, spec *models.ServiceSpec) Verdict {
	found := false

	if spec.ProcessName != "" {
		names, err := p.processes.Names(ctx)
		if err != nil {
			p.logger.Error().Err(err).Str("process", spec.ProcessName).Msg("Error checking process")
		}

		found = slices.Contains(names, spec.ProcessName)
	}

	if found {
		return Verdict{Running: true, Message: "Process found"}
	}

	return Verdict{Message: "Process not found"}
}

func (p *Probe) checkProcessRegex(ctx context.Context, spec *models.ServiceSpec) Verdict {
	running := p.matchProcessPatterns(ctx, spec)
	if running {
		return Verdict{Running: true, Message: "Process pattern matched"}
	}

	return Verdict{Message: "No matching process"}
}

func (p *Probe) matchProcessPatterns(ctx context.Context, spec *models.ServiceSpec) bool {
	patterns := spec.Patterns()
	if len(patterns) == 0 {
		if spec.MultiInstance {
			return p.anyInstanceActive(ctx, spec)
		}

		return false
	}

	compiled, err := p.compile(patterns)
	if err != nil {
		p.logger.Warn().Err(err).Strs("patterns", patterns).Msg("Invalid process pattern")
		return false
	}

	rows, err := p.processes.CommandLines(ctx)
	if err != nil {
		p.logger.Error().Err(err).Strs("patterns", patterns).Msg("Error checking process pattern")
		return false
	}

	for _, row := range rows {
		for _, re := range compiled {
			if re.MatchString(row) {
				return true
			}
		}
	}

	return false
}

func (p *Probe) anyInstanceActive(ctx context.Context, spec *models.ServiceSpec) bool {
	anyRunning := false

	for _, inst := range spec.Instances {
		if inst.ServiceName == "" {
			continue
		}

		if platform.IsActive(ctx, p.runner, inst.ServiceName) {
			anyRunning = true

			p.logger.Debug().Str("instance", inst.ServiceName).Msg("Instance is running")
		} else {
			p.logger.Debug().Str("instance", inst.ServiceName).Msg("Instance is not running")
		}
	}

	return anyRunning
}

// compile returns the cached compiled set for patterns, keyed by the ordered
// pattern list.
func (p *Probe) compile(patterns []string) ([]*regexp.Regexp, error) {
	key := strings.Join(patterns, "\x00")

	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.patterns[key]; ok {
		return cached, nil
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}

		compiled = append(compiled, re)
	}

	p.patterns[key] = compiled

	return compiled, nil
}

func (p *Probe) checkCustomCommand(ctx context.Context, spec *models.ServiceSpec) Verdict {
	if p.runCustom(ctx, spec) {
		return Verdict{Running: true, Message: "Check passed"}
	}

	return Verdict{Message: "Check failed"}
}

func (p *Probe) runCustom(ctx context.Context, spec *models.ServiceSpec) bool {
	if spec.CheckCommand == "" {
		return false
	}

	timeout := defaultCustomTimeout
	if spec.CheckTimeout > 0 {
		timeout = time.Duration(spec.CheckTimeout) * time.Second
	}

	res := p.runner.RunShell(ctx, spec.CheckCommand, timeout)
	if res.Status != command.StatusExited {
		p.logger.Error().Str("service", spec.Name).Str("status", res.Status.String()).
			Msg("Error running custom check command")
	}

	return res.OK()
}

func (p *Probe) checkIptables(ctx context.Context, spec *models.ServiceSpec) Verdict {
	if spec.CheckCommand != "" {
		return Verdict{Running: p.runCustom(ctx, spec)}.withMessage(activeMessage)
	}

	timeout := defaultIptablesTimeout
	if spec.CheckTimeout > 0 {
		timeout = time.Duration(spec.CheckTimeout) * time.Second
	}

	res := p.runner.Run(ctx, []string{"iptables", "-L", "-n"}, timeout)

	switch res.Status {
	case command.StatusNotFound:
		p.logger.Warn().Msg("iptables command not found")
	case command.StatusTimeout, command.StatusError:
		p.logger.Error().Err(res.Err).Msg("Error running iptables check")
	case command.StatusExited:
	}

	return Verdict{Running: res.OK()}.withMessage(activeMessage)
}
