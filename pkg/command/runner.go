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

//go:generate mockgen -destination=mock_runner.go -package=command github.com/carverauto/monitord/pkg/command Runner

// Package command runs external programs with a timeout and reports the
// outcome as a discriminated Result instead of an error.
package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Status classifies how a command invocation ended.
type Status int

const (
	// StatusExited means the process ran to completion; see ExitCode.
	StatusExited Status = iota
	StatusTimeout
	StatusNotFound
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusExited:
		return "exited"
	case StatusTimeout:
		return "timeout"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one command invocation.
type Result struct {
	Status   Status
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// OK reports whether the process exited with status zero.
func (r Result) OK() bool {
	return r.Status == StatusExited && r.ExitCode == 0
}

// Output returns trimmed stdout.
func (r Result) Output() string {
	return strings.TrimSpace(r.Stdout)
}

// Diagnostic returns the most useful text for logs: stderr, stdout or the error.
func (r Result) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}

	if s := strings.TrimSpace(r.Stdout); s != "" {
		return s
	}

	if r.Err != nil {
		return r.Err.Error()
	}

	return r.Status.String()
}

// Runner executes commands.
type Runner interface {
	// Run executes argv directly.
	Run(ctx context.Context, argv []string, timeout time.Duration) Result
	// RunShell executes script with /bin/sh -c.
	RunShell(ctx context.Context, script string, timeout time.Duration) Result
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	shell string
}

// NewExecRunner returns a Runner that uses /bin/sh for shell commands.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{shell: "/bin/sh"}
}

func (r *ExecRunner) Run(ctx context.Context, argv []string, timeout time.Duration) Result {
	if len(argv) == 0 {
		return Result{Status: StatusError, ExitCode: -1, Err: errEmptyCommand}
	}

	return r.exec(ctx, timeout, argv[0], argv[1:]...)
}

func (r *ExecRunner) RunShell(ctx context.Context, script string, timeout time.Duration) Result {
	if strings.TrimSpace(script) == "" {
		return Result{Status: StatusError, ExitCode: -1, Err: errEmptyCommand}
	}

	return r.exec(ctx, timeout, r.shell, "-c", script)
}

func (*ExecRunner) exec(ctx context.Context, timeout time.Duration, name string, args ...string) Result {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}

	var exitErr *exec.ExitError

	switch {
	case err == nil:
		res.Status = StatusExited
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Status = StatusTimeout
		res.ExitCode = -1
		res.Err = errTimeout
	case errors.Is(err, exec.ErrNotFound):
		res.Status = StatusNotFound
		res.ExitCode = -1
	case errors.As(err, &exitErr):
		res.Status = StatusExited
		res.ExitCode = exitErr.ExitCode()
		res.Err = nil
	default:
		res.Status = StatusError
		res.ExitCode = -1
	}

	return res
}
