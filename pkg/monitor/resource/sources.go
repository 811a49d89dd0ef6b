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
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// Sources are the host statistics collectors. Each field defaults to the
// gopsutil implementation and can be swapped in tests.
type Sources struct {
	Load        func(context.Context) (*load.AvgStat, error)
	Memory      func(context.Context) (*mem.VirtualMemoryStat, error)
	DiskUsage   func(context.Context, string) (*disk.UsageStat, error)
	CPUPercent  func(context.Context, time.Duration, bool) ([]float64, error)
	NetCounters func(context.Context, bool) ([]net.IOCountersStat, error)
	PathExists  func(string) bool
}

// HostSources reads the local host.
func HostSources() Sources {
	return Sources{
		Load:        load.AvgWithContext,
		Memory:      mem.VirtualMemoryWithContext,
		DiskUsage:   disk.UsageWithContext,
		CPUPercent:  cpu.PercentWithContext,
		NetCounters: net.IOCountersWithContext,
		PathExists:  pathExists,
	}
}

// withDefaults fills any nil collector from HostSources.
func (s Sources) withDefaults() Sources {
	host := HostSources()

	if s.Load == nil {
		s.Load = host.Load
	}

	if s.Memory == nil {
		s.Memory = host.Memory
	}

	if s.DiskUsage == nil {
		s.DiskUsage = host.DiskUsage
	}

	if s.CPUPercent == nil {
		s.CPUPercent = host.CPUPercent
	}

	if s.NetCounters == nil {
		s.NetCounters = host.NetCounters
	}

	if s.PathExists == nil {
		s.PathExists = host.PathExists
	}

	return s
}

func pathExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
