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

package models

import "time"

// Resource recovery action types and the names reported for them.
const (
	ActionTypeHighCPU   = "high_cpu"
	ActionTypeLowMemory = "low_memory"
	ActionTypeLowDisk   = "low_disk"

	ActionHighCPURecovery   = "high_cpu_recovery"
	ActionLowMemoryRecovery = "low_memory_recovery"
	ActionLowDiskRecovery   = "low_disk_recovery"
)

// ResourceCheckResult is a snapshot of one resource evaluation pass.
type ResourceCheckResult struct {
	Enabled       bool                   `json:"enabled"`
	Timestamp     time.Time              `json:"timestamp"`
	CPULoad       *CPULoadResult         `json:"cpu_load,omitempty"`
	Memory        *MemoryResult          `json:"memory,omitempty"`
	Disk          *DiskResult            `json:"disk,omitempty"`
	ActionsTaken  []string               `json:"actions_taken"`
	ActionResults []ResourceActionResult `json:"action_results"`
	Error         string                 `json:"error,omitempty"`
}

type CPULoadResult struct {
	Load1Min          float64 `json:"load_1min"`
	Load5Min          float64 `json:"load_5min"`
	Load15Min         float64 `json:"load_15min"`
	ThresholdExceeded bool    `json:"threshold_exceeded"`
	ExceededType      string  `json:"exceeded_type,omitempty"`
	Error             string  `json:"error,omitempty"`
}

type MemoryResult struct {
	TotalMB           float64 `json:"total_mb"`
	AvailableMB       float64 `json:"available_mb"`
	AvailablePercent  float64 `json:"available_percent"`
	ThresholdExceeded bool    `json:"threshold_exceeded"`
	ExceededType      string  `json:"exceeded_type,omitempty"`
	Error             string  `json:"error,omitempty"`
}

type DiskResult struct {
	MountPoints       []MountPointResult `json:"mount_points"`
	ThresholdExceeded bool               `json:"threshold_exceeded"`
	Error             string             `json:"error,omitempty"`
}

type MountPointResult struct {
	Path              string  `json:"path"`
	TotalGB           float64 `json:"total_gb"`
	FreeGB            float64 `json:"free_gb"`
	FreePercent       float64 `json:"free_percent"`
	ThresholdExceeded bool    `json:"threshold_exceeded"`
	Error             string  `json:"error,omitempty"`
}

// ResourceActionResult records one cooldown-gated recovery attempt.
type ResourceActionResult struct {
	Action    string                `json:"action"`
	Timestamp time.Time             `json:"timestamp"`
	Success   bool                  `json:"success"`
	Details   ResourceActionDetails `json:"details"`
}

type ResourceActionDetails struct {
	Services               []ServiceRestartResult `json:"services"`
	RecoveryCommand        string                 `json:"recovery_command,omitempty"`
	RecoveryCommandSuccess *bool                  `json:"recovery_command_success,omitempty"`
}

type ServiceRestartResult struct {
	Service string `json:"service"`
	Success bool   `json:"success"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// SystemStats is a threshold-free point-in-time view of the host.
type SystemStats struct {
	Timestamp time.Time    `json:"timestamp"`
	CPU       CPUStats     `json:"cpu"`
	Memory    MemoryStats  `json:"memory"`
	Disk      []DiskStats  `json:"disk"`
	Network   NetworkStats `json:"network"`
	Error     string       `json:"error,omitempty"`
}

type CPUStats struct {
	Load1Min  float64 `json:"load_1min"`
	Load5Min  float64 `json:"load_5min"`
	Load15Min float64 `json:"load_15min"`
	Percent   float64 `json:"percent"`
}

type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	AvailableMB float64 `json:"available_mb"`
	UsedMB      float64 `json:"used_mb"`
	PercentUsed float64 `json:"percent_used"`
}

type DiskStats struct {
	Path        string  `json:"path"`
	TotalGB     float64 `json:"total_gb"`
	UsedGB      float64 `json:"used_gb"`
	FreeGB      float64 `json:"free_gb"`
	PercentUsed float64 `json:"percent_used"`
}

type NetworkStats struct {
	Total      NetCounters            `json:"total"`
	Interfaces map[string]NetCounters `json:"interfaces"`
}

type NetCounters struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	ErrIn       uint64 `json:"errin"`
	ErrOut      uint64 `json:"errout"`
	DropIn      uint64 `json:"dropin"`
	DropOut     uint64 `json:"dropout"`
}
