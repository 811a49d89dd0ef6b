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

//go:generate mockgen -destination=mock_process.go -package=checker github.com/carverauto/monitord/pkg/checker ProcessLister

package checker

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessLister exposes the host process table.
type ProcessLister interface {
	// Names returns the short name of every process.
	Names(ctx context.Context) ([]string, error)
	// CommandLines returns one "user pid command line" row per process.
	CommandLines(ctx context.Context) ([]string, error)
}

// ProcessTable reads processes through gopsutil.
type ProcessTable struct{}

func NewProcessTable() *ProcessTable {
	return &ProcessTable{}
}

func (*ProcessTable) Names(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoProcesses, err)
	}

	names := make([]string, 0, len(procs))

	for _, p := range procs {
		// processes may exit between listing and inspection
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}

		names = append(names, name)
	}

	return names, nil
}

func (*ProcessTable) CommandLines(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoProcesses, err)
	}

	rows := make([]string, 0, len(procs))

	for _, p := range procs {
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil {
			continue
		}

		if strings.TrimSpace(cmdline) == "" {
			name, nameErr := p.NameWithContext(ctx)
			if nameErr != nil {
				continue
			}

			cmdline = "[" + name + "]"
		}

		user, err := p.UsernameWithContext(ctx)
		if err != nil {
			user = "?"
		}

		rows = append(rows, fmt.Sprintf("%s %d %s", user, p.Pid, cmdline))
	}

	return rows, nil
}
