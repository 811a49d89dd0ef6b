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
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/carverauto/monitord/pkg/models"
)

// Memory threshold combination policies.
const (
	ConditionOr  = "or"
	ConditionAnd = "and"
)

const (
	defaultThreshold1Min  = 99.0
	defaultThreshold5Min  = 80.0
	defaultThreshold15Min = 60.0

	defaultMemFreePercent = 5.0
	defaultMemFreeMB      = 512.0

	defaultDiskFreePercent = 10.0
	defaultDiskFreeGB      = 5.0

	defaultCooldown        = 1800 * time.Second
	defaultRestartInterval = 5 * time.Second

	recoveryCommandTimeout = 60 * time.Second
)

// Config is the resource_monitor section.
type Config struct {
	Enabled         *bool          `yaml:"enabled"`
	CPULoad         CPULoadConfig  `yaml:"cpu_load"`
	Memory          MemoryConfig   `yaml:"memory"`
	Disk            DiskConfig     `yaml:"disk"`
	RecoveryActions RecoveryConfig `yaml:"recovery_actions"`
}

// IsEnabled defaults to true.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

type CPULoadConfig struct {
	Enabled         bool        `yaml:"enabled"`
	Check1Min       bool        `yaml:"check_1min"`
	Threshold1Min   *float64    `yaml:"threshold_1min"`
	Check5Min       bool        `yaml:"check_5min"`
	Threshold5Min   *float64    `yaml:"threshold_5min"`
	Check15Min      bool        `yaml:"check_15min"`
	Threshold15Min  *float64    `yaml:"threshold_15min"`
	RecoveryCommand CommandLine `yaml:"recovery_command"`
}

type MemoryConfig struct {
	Enabled              bool     `yaml:"enabled"`
	FreePercentThreshold *float64 `yaml:"free_percent_threshold"`
	FreeMBThreshold      *float64 `yaml:"free_mb_threshold"`
	Condition            string   `yaml:"condition"`
}

// Policy returns the lowercased condition, or when empty.
func (m *MemoryConfig) Policy() string {
	if m.Condition == "" {
		return ConditionOr
	}

	return strings.ToLower(m.Condition)
}

// DiskConfig accepts mount points under paths or mount_points; paths wins
// when both are present.
type DiskConfig struct {
	Enabled              bool      `yaml:"enabled"`
	Paths                MountList `yaml:"paths"`
	MountPoints          MountList `yaml:"mount_points"`
	FreePercentThreshold *float64  `yaml:"free_percent_threshold"`
	FreeGBThreshold      *float64  `yaml:"free_gb_threshold"`
	FreeMBThreshold      *float64  `yaml:"free_mb_threshold"`
}

// Targets returns the configured mount points.
func (d *DiskConfig) Targets() MountList {
	if d.Paths != nil {
		return d.Paths
	}

	return d.MountPoints
}

// MountPoint is one disk target with optional per-path thresholds.
type MountPoint struct {
	Path                 string   `yaml:"path"`
	FreePercentThreshold *float64 `yaml:"free_percent_threshold"`
	ThresholdPercent     *float64 `yaml:"threshold_percent"`
	FreeGBThreshold      *float64 `yaml:"free_gb_threshold"`
	FreeMBThreshold      *float64 `yaml:"free_mb_threshold"`
}

// MountList decodes items that are bare paths or MountPoint mappings. Blank
// paths and other shapes are dropped.
type MountList []MountPoint

func (l *MountList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		*l = nil
		return nil
	}

	out := make(MountList, 0, len(node.Content))

	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			if strings.TrimSpace(item.Value) != "" {
				out = append(out, MountPoint{Path: item.Value})
			}
		case yaml.MappingNode:
			var mp MountPoint
			if err := item.Decode(&mp); err != nil {
				return err
			}

			out = append(out, mp)
		case yaml.DocumentNode, yaml.SequenceNode, yaml.AliasNode:
		}
	}

	*l = out

	return nil
}

type RecoveryConfig struct {
	CooldownPeriod    models.Interval `yaml:"cooldown_period"`
	RestartInterval   models.Interval `yaml:"restart_interval"`
	HighCPUServices   []string        `yaml:"high_cpu_services"`
	LowMemoryServices []string        `yaml:"low_memory_services"`
	LowDiskServices   []string        `yaml:"low_disk_services"`
}

func (r *RecoveryConfig) cooldown() time.Duration {
	if r.CooldownPeriod.IsSet() {
		return r.CooldownPeriod.Duration()
	}

	return defaultCooldown
}

func (r *RecoveryConfig) restartInterval() time.Duration {
	if r.RestartInterval.IsSet() {
		return r.RestartInterval.Duration()
	}

	return defaultRestartInterval
}

// CommandLine is a recovery command given either as one string, split into
// words like a shell would, or as an argument list.
type CommandLine struct {
	Raw  string
	List []string
}

// Line builds a string-form command.
func Line(raw string) CommandLine {
	return CommandLine{Raw: raw}
}

// IsSet reports whether a non-blank command was configured.
func (c CommandLine) IsSet() bool {
	return strings.TrimSpace(c.Raw) != "" || len(c.List) > 0
}

func (c CommandLine) String() string {
	if c.List != nil {
		return strings.Join(c.List, " ")
	}

	return c.Raw
}

// Args returns the argv to execute.
func (c CommandLine) Args() ([]string, error) {
	if c.List != nil {
		args := make([]string, 0, len(c.List))

		for _, a := range c.List {
			if strings.TrimSpace(a) != "" {
				args = append(args, a)
			}
		}

		return args, nil
	}

	return splitWords(strings.TrimSpace(c.Raw))
}

func (c *CommandLine) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*c = CommandLine{}
			return nil
		}

		*c = Line(node.Value)
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}

		*c = CommandLine{List: list}
	case yaml.DocumentNode, yaml.MappingNode, yaml.AliasNode:
		return errRecoveryCommandShape
	}

	return nil
}

func value(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}

	return *v
}
