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

package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/carverauto/monitord/pkg/models"
)

const cpuSampleInterval = time.Second

// GetCurrentStats samples load, cpu, memory, disk and network without any
// threshold evaluation. A failing collector leaves its section zeroed and is
// reported in Error.
func (e *Engine) GetCurrentStats(ctx context.Context) models.SystemStats {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	stats := models.SystemStats{
		Timestamp: e.clock.Now(),
		Disk:      []models.DiskStats{},
		Network:   models.NetworkStats{Interfaces: map[string]models.NetCounters{}},
	}

	var errs []error

	if avg, err := e.sources.Load(ctx); err != nil {
		errs = append(errs, fmt.Errorf("load: %w", err))
	} else {
		stats.CPU.Load1Min, stats.CPU.Load5Min, stats.CPU.Load15Min = avg.Load1, avg.Load5, avg.Load15
	}

	if pct, err := e.sources.CPUPercent(ctx, cpuSampleInterval, false); err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	} else if len(pct) > 0 {
		stats.CPU.Percent = pct[0]
	}

	if vm, err := e.sources.Memory(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		stats.Memory = models.MemoryStats{
			TotalMB:     float64(vm.Total) / mib,
			AvailableMB: float64(vm.Available) / mib,
			UsedMB:      float64(vm.Used) / mib,
			PercentUsed: vm.UsedPercent,
		}
	}

	for _, path := range e.statPaths() {
		if !e.sources.PathExists(path) {
			continue
		}

		usage, err := e.sources.DiskUsage(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("disk %s: %w", path, err))
			continue
		}

		stats.Disk = append(stats.Disk, models.DiskStats{
			Path:        path,
			TotalGB:     float64(usage.Total) / gib,
			UsedGB:      float64(usage.Used) / gib,
			FreeGB:      float64(usage.Free) / gib,
			PercentUsed: usage.UsedPercent,
		})
	}

	if err := e.collectNetwork(ctx, &stats.Network); err != nil {
		errs = append(errs, fmt.Errorf("network: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		e.logger.Error().Err(err).Msg("Error getting resource stats")
		stats.Error = err.Error()
	}

	return stats
}

// statPaths lists the configured mount points, or "/" when none are.
func (e *Engine) statPaths() []string {
	targets := e.config.Disk.Targets()
	paths := make([]string, 0, len(targets))

	for _, mp := range targets {
		if mp.Path != "" {
			paths = append(paths, mp.Path)
		}
	}

	if len(paths) == 0 {
		return []string{"/"}
	}

	return paths
}

func (e *Engine) collectNetwork(ctx context.Context, out *models.NetworkStats) error {
	totals, err := e.sources.NetCounters(ctx, false)
	if err != nil {
		return err
	}

	if len(totals) == 0 {
		return errNoCounters
	}

	out.Total = counters(&totals[0])

	perNIC, err := e.sources.NetCounters(ctx, true)
	if err != nil {
		return err
	}

	for i := range perNIC {
		out.Interfaces[perNIC[i].Name] = counters(&perNIC[i])
	}

	return nil
}

func counters(c *net.IOCountersStat) models.NetCounters {
	return models.NetCounters{
		BytesSent:   c.BytesSent,
		BytesRecv:   c.BytesRecv,
		PacketsSent: c.PacketsSent,
		PacketsRecv: c.PacketsRecv,
		ErrIn:       c.Errin,
		ErrOut:      c.Errout,
		DropIn:      c.Dropin,
		DropOut:     c.Dropout,
	}
}
