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

// Package platform detects the host's service manager and builds the commands
// used to query and restart services through it.
package platform

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/carverauto/monitord/pkg/command"
	"github.com/carverauto/monitord/pkg/logger"
)

// ManagerType identifies an init system.
type ManagerType string

const (
	Systemd ManagerType = "systemd"
	OpenRC  ManagerType = "openrc"
	SysV    ManagerType = "sysv"
	Unknown ManagerType = "unknown"

	// OverrideEnv forces a manager type when set to a supported value.
	OverrideEnv = "MONITORD_SERVICE_MANAGER"

	osReleasePath = "/etc/os-release"

	defaultStatusTimeout  = 10 * time.Second
	defaultRestartTimeout = 60 * time.Second
)

//nolint:gochecknoglobals // lookup table
var systemdFamilies = []string{"debian", "ubuntu", "rhel", "fedora", "suse", "arch"}

//go:generate mockgen -destination=mock_manager.go -package=platform github.com/carverauto/monitord/pkg/platform ServiceManager

// ServiceManager is what the engines need from the host init system.
type ServiceManager interface {
	Manager() ManagerType
	SupportsPatterns() bool
	BuildStatusCommand(service string, override ManagerType) []string
	BuildRestartCommand(service string, override ManagerType) []string
	CheckService(ctx context.Context, service string, override ManagerType) ServiceStatus
	RestartService(ctx context.Context, service string, override ManagerType) RestartOutcome
	ListUnits(ctx context.Context) ([]Unit, error)
	UnitState(ctx context.Context, service string) (UnitState, error)
}

// Info is the distribution metadata read from os-release.
type Info struct {
	ID        string
	Name      string
	Like      string
	VersionID string
}

// ServiceStatus is the result of a status query.
type ServiceStatus struct {
	Running  bool
	Message  string
	ExitCode *int
}

// RestartOutcome is the result of a restart through the service manager.
type RestartOutcome struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode *int
	Success  bool
}

// Detector implements ServiceManager for the local host.
type Detector struct {
	runner  command.Runner
	logger  logger.Logger
	manager ManagerType
	info    Info

	statusTimeout  time.Duration
	restartTimeout time.Duration
}

type options struct {
	manager  ManagerType
	lookPath func(string) (string, error)
	readFile func(string) ([]byte, error)
	getenv   func(string) string
}

// Option customizes detection.
type Option func(*options)

// WithManager skips detection and uses m.
func WithManager(m ManagerType) Option {
	return func(o *options) { o.manager = m }
}

// WithLookPath replaces exec.LookPath during detection.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(o *options) { o.lookPath = fn }
}

// WithReadFile replaces os.ReadFile for os-release.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(o *options) { o.readFile = fn }
}

// WithGetenv replaces os.Getenv for the override variable.
func WithGetenv(fn func(string) string) Option {
	return func(o *options) { o.getenv = fn }
}

// NewDetector reads platform metadata and detects the service manager.
func NewDetector(runner command.Runner, log logger.Logger, opts ...Option) *Detector {
	o := &options{
		lookPath: exec.LookPath,
		readFile: os.ReadFile,
		getenv:   os.Getenv,
	}

	for _, opt := range opts {
		opt(o)
	}

	d := &Detector{
		runner:         runner,
		logger:         log,
		info:           loadInfo(o.readFile, log),
		statusTimeout:  defaultStatusTimeout,
		restartTimeout: defaultRestartTimeout,
	}

	d.manager = o.manager
	if d.manager == "" {
		d.manager = detect(d.info, o)
	}

	log.Info().
		Str("manager", string(d.manager)).
		Str("distro", d.info.ID).
		Str("version", d.info.VersionID).
		Msg("Detected service manager")

	return d
}

func detect(info Info, o *options) ManagerType {
	if override := ManagerType(strings.ToLower(strings.TrimSpace(o.getenv(OverrideEnv)))); override != "" {
		switch override {
		case Systemd, OpenRC, SysV:
			return override
		case Unknown:
		}
	}

	has := func(bin string) bool {
		p, err := o.lookPath(bin)
		return err == nil && p != ""
	}

	if info.ID == "alpine" && has("rc-service") {
		return OpenRC
	}

	for _, family := range systemdFamilies {
		if info.ID == family || strings.Contains(info.Like, family) {
			if has("systemctl") {
				return Systemd
			}

			break
		}
	}

	switch {
	case has("systemctl"):
		return Systemd
	case has("rc-service"):
		return OpenRC
	case has("service"):
		return SysV
	default:
		return Unknown
	}
}

func loadInfo(readFile func(string) ([]byte, error), log logger.Logger) Info {
	data, err := readFile(osReleasePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Failed to read os-release")
		}

		return Info{ID: "unknown", Name: "unknown", VersionID: "unknown"}
	}

	return ParseOSRelease(string(data))
}

// ParseOSRelease parses os-release KEY=value content.
func ParseOSRelease(contents string) Info {
	values := make(map[string]string)

	for _, line := range strings.Split(contents, "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}

	get := func(key, fallback string) string {
		if v, ok := values[key]; ok {
			return v
		}

		return fallback
	}

	return Info{
		ID:        strings.ToLower(get("ID", "unknown")),
		Name:      get("NAME", "unknown"),
		Like:      strings.ToLower(get("ID_LIKE", "")),
		VersionID: get("VERSION_ID", "unknown"),
	}
}

func (d *Detector) Manager() ManagerType {
	return d.manager
}

func (d *Detector) Info() Info {
	return d.info
}

// SupportsPatterns is true only for systemd.
func (d *Detector) SupportsPatterns() bool {
	return d.manager == Systemd
}

func (d *Detector) resolve(override ManagerType) ManagerType {
	if override != "" {
		return override
	}

	return d.manager
}

// BuildStatusCommand returns nil when the manager is unsupported.
func (d *Detector) BuildStatusCommand(service string, override ManagerType) []string {
	switch d.resolve(override) {
	case Systemd:
		return []string{"systemctl", "is-active", service}
	case OpenRC:
		return []string{"rc-service", service, "status"}
	case SysV:
		return []string{"service", service, "status"}
	case Unknown:
	}

	return nil
}

// BuildRestartCommand returns nil when the manager is unsupported.
func (d *Detector) BuildRestartCommand(service string, override ManagerType) []string {
	switch d.resolve(override) {
	case Systemd:
		return []string{"systemctl", "restart", service}
	case OpenRC:
		return []string{"rc-service", service, "restart"}
	case SysV:
		return []string{"service", service, "restart"}
	case Unknown:
	}

	return nil
}

// CheckService queries the manager for the status of service.
func (d *Detector) CheckService(ctx context.Context, service string, override ManagerType) ServiceStatus {
	argv := d.BuildStatusCommand(service, override)
	if argv == nil {
		return ServiceStatus{Message: "Unsupported service manager"}
	}

	res := d.runner.Run(ctx, argv, d.statusTimeout)

	switch res.Status {
	case command.StatusTimeout:
		return ServiceStatus{Message: "Status command timeout"}
	case command.StatusNotFound:
		return ServiceStatus{Message: "Service manager command not found"}
	case command.StatusError:
		d.logger.Error().Err(res.Err).Str("service", service).Msg("Service status check error")
		return ServiceStatus{Message: res.Diagnostic()}
	case command.StatusExited:
	}

	code := res.ExitCode
	stdout := res.Output()

	if d.resolve(override) == Systemd {
		msg := stdout
		if msg == "" {
			msg = "inactive"
		}

		return ServiceStatus{Running: code == 0 && stdout == "active", Message: msg, ExitCode: &code}
	}

	msg := stdout
	if msg == "" {
		msg = strings.TrimSpace(res.Stderr)
	}

	return ServiceStatus{Running: code == 0, Message: msg, ExitCode: &code}
}

// RestartService restarts service through the manager.
func (d *Detector) RestartService(ctx context.Context, service string, override ManagerType) RestartOutcome {
	argv := d.BuildRestartCommand(service, override)
	if argv == nil {
		return RestartOutcome{Stderr: "Unsupported service manager"}
	}

	out := RestartOutcome{Command: strings.Join(argv, " ")}
	res := d.runner.Run(ctx, argv, d.restartTimeout)

	switch res.Status {
	case command.StatusTimeout:
		out.Stderr = "Timeout"
	case command.StatusNotFound:
		out.Stderr = "Service manager command not found"
	case command.StatusError:
		d.logger.Error().Err(res.Err).Str("service", service).Msg("Service restart error")
		out.Stderr = res.Diagnostic()
	case command.StatusExited:
		code := res.ExitCode
		out.ExitCode = &code
		out.Stdout = strings.TrimSpace(res.Stdout)
		out.Stderr = strings.TrimSpace(res.Stderr)
		out.Success = code == 0
	}

	return out
}
