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

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// CheckMethod selects how a service is probed.
type CheckMethod string

const (
	CheckSystemctl     CheckMethod = "systemctl"
	CheckAuto          CheckMethod = "auto"
	CheckService       CheckMethod = "service"
	CheckOpenRC        CheckMethod = "openrc"
	CheckProcess       CheckMethod = "process"
	CheckProcessRegex  CheckMethod = "process_regex"
	CheckCustomCommand CheckMethod = "custom_command"
	CheckIptables      CheckMethod = "iptables"
	CheckHTTP          CheckMethod = "http"
	CheckHTTPS         CheckMethod = "https"
)

// CheckMethods lists every supported check method.
func CheckMethods() []CheckMethod {
	return []CheckMethod{
		CheckSystemctl, CheckAuto, CheckService, CheckOpenRC, CheckProcess,
		CheckProcessRegex, CheckCustomCommand, CheckIptables, CheckHTTP, CheckHTTPS,
	}
}

// Known reports whether m is one of CheckMethods.
func (m CheckMethod) Known() bool {
	for _, known := range CheckMethods() {
		if m == known {
			return true
		}
	}

	return false
}

// ServiceSpec is the static configuration of one monitored service.
type ServiceSpec struct {
	Name        string      `yaml:"name" json:"name"`
	Enabled     *bool       `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Critical    bool        `yaml:"critical" json:"critical"`
	Description string      `yaml:"description" json:"description"`
	CheckMethod CheckMethod `yaml:"check_method" json:"check_method"`

	// init system
	ServiceName        string `yaml:"service_name" json:"service_name,omitempty"`
	ServiceNamePattern string `yaml:"service_name_pattern" json:"service_name_pattern,omitempty"`

	// process table
	ProcessName     string      `yaml:"process_name" json:"process_name,omitempty"`
	ProcessPattern  string      `yaml:"process_pattern" json:"process_pattern,omitempty"`
	ProcessPatterns PatternList `yaml:"process_patterns" json:"process_patterns,omitempty"`
	MultiInstance   bool        `yaml:"multi_instance" json:"multi_instance,omitempty"`
	Instances       []Instance  `yaml:"instances" json:"instances,omitempty"`

	// shell
	CheckCommand string `yaml:"check_command" json:"check_command,omitempty"`
	CheckTimeout int    `yaml:"check_timeout" json:"check_timeout,omitempty"`

	// http
	URL                 string            `yaml:"url" json:"url,omitempty"`
	TimeoutSeconds      float64           `yaml:"timeout_seconds" json:"timeout_seconds,omitempty"`
	ExpectedStatusCodes []int             `yaml:"expected_status_codes" json:"expected_status_codes,omitempty"`
	MaxResponseTimeMS   float64           `yaml:"max_response_time_ms" json:"max_response_time_ms,omitempty"`
	HTTPMethod          string            `yaml:"http_method" json:"http_method,omitempty"`
	Headers             map[string]string `yaml:"headers" json:"headers,omitempty"`
	VerifyTLS           *bool             `yaml:"verify_tls,omitempty" json:"verify_tls,omitempty"`

	CheckInterval   Interval       `yaml:"check_interval" json:"-"`
	ActionCooldown  Interval       `yaml:"action_cooldown" json:"-"`
	RestartCommand  RestartCommand `yaml:"restart_command" json:"-"`
	PreRestartHook  string         `yaml:"pre_restart_hook" json:"pre_restart_hook,omitempty"`
	PostRestartHook string         `yaml:"post_restart_hook" json:"post_restart_hook,omitempty"`
}

// Instance is one member of a multi-instance service.
type Instance struct {
	ServiceName string `yaml:"service_name" json:"service_name"`
}

// IsEnabled defaults to true when the flag is absent.
func (s *ServiceSpec) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Method returns the configured check method, systemctl when empty.
func (s *ServiceSpec) Method() CheckMethod {
	if s.CheckMethod == "" {
		return CheckSystemctl
	}

	return CheckMethod(strings.ToLower(string(s.CheckMethod)))
}

// Key identifies the service in scheduling and cooldown state.
func (s *ServiceSpec) Key() string {
	for _, candidate := range []string{s.Name, s.ServiceName, s.ProcessName, s.URL} {
		if candidate != "" {
			return candidate
		}
	}

	return "unknown_service"
}

// UnitName is the init-system name used for manager checks and restarts.
func (s *ServiceSpec) UnitName() string {
	if s.ServiceName != "" {
		return s.ServiceName
	}

	return s.Name
}

// Patterns collects process_pattern followed by process_patterns, in order.
func (s *ServiceSpec) Patterns() []string {
	patterns := make([]string, 0, 1+len(s.ProcessPatterns))
	if s.ProcessPattern != "" {
		patterns = append(patterns, s.ProcessPattern)
	}

	for _, p := range s.ProcessPatterns {
		if p != "" {
			patterns = append(patterns, p)
		}
	}

	return patterns
}

// PatternList decodes a sequence whose items are either bare strings or
// {pattern: ...} mappings.
type PatternList []string

func (p *PatternList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		*p = nil
		return nil
	}

	out := make(PatternList, 0, len(node.Content))

	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, item.Value)
		case yaml.MappingNode:
			var entry struct {
				Pattern string `yaml:"pattern"`
			}

			if err := item.Decode(&entry); err != nil {
				return err
			}

			out = append(out, entry.Pattern)
		case yaml.DocumentNode, yaml.SequenceNode, yaml.AliasNode:
		}
	}

	*p = out

	return nil
}

// RestartCommand is a restart_command value: absent, a single shell string, or
// a list of shell strings. Any other YAML shape is kept as Invalid.
type RestartCommand struct {
	Commands []string
	List     bool
	Invalid  bool
}

// Shell returns a single command string.
func Shell(command string) RestartCommand {
	return RestartCommand{Commands: []string{command}}
}

// ShellList returns a list-form restart command.
func ShellList(commands ...string) RestartCommand {
	return RestartCommand{Commands: commands, List: true}
}

// IsSet reports whether anything was configured.
func (r RestartCommand) IsSet() bool {
	return len(r.Commands) > 0 || r.Invalid
}

func (r RestartCommand) String() string {
	if r.List {
		return "[" + strings.Join(r.Commands, ", ") + "]"
	}

	return strings.Join(r.Commands, "")
}

func (r *RestartCommand) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*r = RestartCommand{}
			return nil
		}

		*r = Shell(node.Value)
	case yaml.SequenceNode:
		commands := make([]string, 0, len(node.Content))

		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				*r = RestartCommand{Invalid: true}
				return nil
			}

			commands = append(commands, item.Value)
		}

		*r = ShellList(commands...)
	case yaml.DocumentNode, yaml.MappingNode, yaml.AliasNode:
		*r = RestartCommand{Invalid: true}
	default:
		return fmt.Errorf("unexpected restart_command node kind %d", node.Kind)
	}

	return nil
}
