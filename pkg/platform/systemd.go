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

package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carverauto/monitord/pkg/command"
)

var (
	ErrUnitQueryFailed = errors.New("systemctl query failed")
	ErrNoUnitName      = errors.New("no unit name")
)

// Unit is one row of `systemctl list-units`.
type Unit struct {
	Name   string
	Load   string
	Active string
	Sub    string
}

// UnitState is the subset of `systemctl show` used for readiness decisions.
type UnitState struct {
	LoadState   string
	ActiveState string
	SubState    string
}

// Exists is false only when systemd reports the unit as not-found.
func (s UnitState) Exists() bool {
	return s.LoadState != "not-found"
}

// Transitioning reports whether the unit is already starting, stopping or
// being restarted by systemd.
func (s UnitState) Transitioning() bool {
	return IsTransitioning(s.ActiveState, s.SubState)
}

// IsTransitioning classifies active and sub states.
func IsTransitioning(active, sub string) bool {
	switch active {
	case "activating", "deactivating", "reloading":
		return true
	}

	switch sub {
	case "auto-restart", "start", "stop":
		return true
	}

	return false
}

// ListUnits returns every service unit systemd knows about.
func (d *Detector) ListUnits(ctx context.Context) ([]Unit, error) {
	res := d.runner.Run(ctx, []string{
		"systemctl", "list-units", "--type=service", "--all", "--no-pager", "--no-legend",
	}, d.statusTimeout)
	if !res.OK() {
		return nil, fmt.Errorf("%w: list-units: %s", ErrUnitQueryFailed, res.Diagnostic())
	}

	var units []Unit

	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		// bullet-prefixed rows mark failed units
		if len(fields) > 0 && (fields[0] == "●" || fields[0] == "*") {
			fields = fields[1:]
		}

		if len(fields) < 4 {
			continue
		}

		units = append(units, Unit{Name: fields[0], Load: fields[1], Active: fields[2], Sub: fields[3]})
	}

	return units, nil
}

// UnitState queries LoadState, ActiveState and SubState for one unit.
func (d *Detector) UnitState(ctx context.Context, service string) (UnitState, error) {
	if service == "" {
		return UnitState{}, ErrNoUnitName
	}

	res := d.runner.Run(ctx, []string{
		"systemctl", "show", service, "-p", "LoadState", "-p", "ActiveState", "-p", "SubState",
	}, d.statusTimeout)
	if !res.OK() {
		return UnitState{}, fmt.Errorf("%w: show %s: %s", ErrUnitQueryFailed, service, res.Diagnostic())
	}

	var state UnitState

	for _, line := range strings.Split(res.Stdout, "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		value = strings.TrimSpace(value)

		switch key {
		case "LoadState":
			state.LoadState = value
		case "ActiveState":
			state.ActiveState = value
		case "SubState":
			state.SubState = value
		}
	}

	return state, nil
}

// compile-time check
var _ ServiceManager = (*Detector)(nil)

// IsActive is a direct `systemctl is-active` probe used for multi-instance
// services regardless of the detected manager.
func IsActive(ctx context.Context, runner command.Runner, unit string) bool {
	res := runner.Run(ctx, []string{"systemctl", "is-active", unit}, defaultStatusTimeout)

	return res.OK() && res.Output() == "active"
}
