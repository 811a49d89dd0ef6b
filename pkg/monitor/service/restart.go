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

package service

import (
	"context"
	"strings"

	"github.com/carverauto/monitord/pkg/command"
	"github.com/carverauto/monitord/pkg/models"
	"github.com/carverauto/monitord/pkg/platform"
)

// restartPlan is either one manager-built argv or a sequence of shell
// commands.
type restartPlan struct {
	argv  []string
	shell []string
}

func (p *restartPlan) String() string {
	if p.argv != nil {
		return strings.Join(p.argv, " ")
	}

	return strings.Join(p.shell, "; ")
}

// resolveRestart picks the configured restart command, falling back to the
// service manager when it is absent, blank, malformed or assumes systemd on
// a host without it.
func (e *Engine) resolveRestart(spec *models.ServiceSpec) *restartPlan {
	unit := spec.UnitName()

	built := func() *restartPlan {
		if unit == "" {
			return nil
		}

		argv := e.manager.BuildRestartCommand(unit, "")
		if argv == nil {
			return nil
		}

		return &restartPlan{argv: argv}
	}

	rc := spec.RestartCommand

	switch {
	case rc.Invalid:
		e.logger.Warn().Str("service", unit).Msg("Unsupported restart_command type")
		return built()
	case !rc.IsSet():
		return built()
	case rc.List:
		commands := make([]string, 0, len(rc.Commands))

		for _, c := range rc.Commands {
			if c = strings.TrimSpace(c); c != "" {
				commands = append(commands, c)
			}
		}

		if len(commands) == 0 {
			return built()
		}

		return &restartPlan{shell: commands}
	}

	cmd := strings.TrimSpace(rc.Commands[0])
	if cmd == "" {
		return built()
	}

	if strings.HasPrefix(cmd, "systemctl") && e.manager.Manager() != platform.Systemd && unit != "" {
		return built()
	}

	return &restartPlan{shell: []string{cmd}}
}

// restart runs hooks and the restart plan, waits for the service to settle
// and re-probes it. The re-probe is the success signal.
func (e *Engine) restart(ctx context.Context, spec *models.ServiceSpec) bool {
	plan := e.resolveRestart(spec)
	if plan == nil {
		e.logger.Error().Str("service", spec.Name).Msg("No restart command defined for service")
		return false
	}

	if !e.hook(ctx, spec, "pre-restart", spec.PreRestartHook) {
		return false
	}

	if plan.argv != nil {
		e.logger.Info().Str("service", spec.Name).Str("command", plan.String()).Msg("Executing restart command")

		if !e.completed(spec, e.runner.Run(ctx, plan.argv, restartTimeout)) {
			return false
		}
	}

	for _, cmd := range plan.shell {
		e.logger.Info().Str("service", spec.Name).Str("command", cmd).Msg("Executing restart command")

		res := e.runner.RunShell(ctx, cmd, restartTimeout)
		if !e.completed(spec, res) {
			return false
		}

		if !res.OK() {
			e.logger.Warn().Str("service", spec.Name).Str("output", res.Diagnostic()).
				Msg("Restart command returned non-zero")
		}
	}

	e.clock.Sleep(e.config.restartWait())

	if !e.hook(ctx, spec, "post-restart", spec.PostRestartHook) {
		return false
	}

	return e.probe.Check(ctx, spec).Running
}

func (e *Engine) hook(ctx context.Context, spec *models.ServiceSpec, kind, script string) bool {
	if script == "" {
		return true
	}

	e.logger.Info().Str("service", spec.Name).Str("hook", kind).Str("command", script).Msg("Running restart hook")

	return e.completed(spec, e.runner.RunShell(ctx, script, hookTimeout))
}

// completed is false when a restart step timed out or could not be started;
// either aborts the restart.
func (e *Engine) completed(spec *models.ServiceSpec, res command.Result) bool {
	switch res.Status {
	case command.StatusTimeout:
		e.logger.Error().Str("service", spec.Name).Msg("Timeout while restarting service")
		return false
	case command.StatusError:
		e.logger.Error().Err(res.Err).Str("service", spec.Name).Msg("Error restarting service")
		return false
	case command.StatusExited, command.StatusNotFound:
	}

	return true
}
