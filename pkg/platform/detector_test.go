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
	"os"
	"testing"
	"time"

	"github.com/carverauto/monitord/pkg/command"
	"github.com/carverauto/monitord/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func lookPathFor(bins ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, b := range bins {
			if b == name {
				return "/usr/bin/" + name, nil
			}
		}

		return "", errors.New("not found")
	}
}

func osRelease(contents string) func(string) ([]byte, error) {
	return func(string) ([]byte, error) {
		if contents == "" {
			return nil, os.ErrNotExist
		}

		return []byte(contents), nil
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		env      string
		release  string
		bins     []string
		expected ManagerType
	}{
		{
			name:     "override wins",
			env:      " OpenRC ",
			release:  "ID=ubuntu\n",
			bins:     []string{"systemctl"},
			expected: OpenRC,
		},
		{
			name:     "unsupported override ignored",
			env:      "upstart",
			bins:     []string{"service"},
			expected: SysV,
		},
		{
			name:     "alpine with openrc",
			release:  "ID=alpine\nVERSION_ID=3.19\n",
			bins:     []string{"rc-service", "systemctl"},
			expected: OpenRC,
		},
		{
			name:     "debian family via ID_LIKE",
			release:  "ID=pop\nID_LIKE=\"ubuntu debian\"\n",
			bins:     []string{"systemctl", "service"},
			expected: Systemd,
		},
		{
			name:     "fallback to rc-service",
			bins:     []string{"rc-service"},
			expected: OpenRC,
		},
		{
			name:     "fallback to service",
			release:  "ID=centos\nID_LIKE=rhel\n",
			bins:     []string{"service"},
			expected: SysV,
		},
		{
			name:     "nothing available",
			expected: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := NewDetector(nil, logger.NewTestLogger(),
				WithGetenv(func(string) string { return tt.env }),
				WithReadFile(osRelease(tt.release)),
				WithLookPath(lookPathFor(tt.bins...)),
			)

			assert.Equal(t, tt.expected, d.Manager())
			assert.Equal(t, tt.expected == Systemd, d.SupportsPatterns())
		})
	}
}

func TestParseOSRelease(t *testing.T) {
	t.Parallel()

	info := ParseOSRelease("NAME=\"Ubuntu\"\nID=Ubuntu\nID_LIKE=debian\nVERSION_ID=\"24.04\"\n\ngarbage\n")

	assert.Equal(t, Info{ID: "ubuntu", Name: "Ubuntu", Like: "debian", VersionID: "24.04"}, info)
	assert.Equal(t, "unknown", ParseOSRelease("").ID)
}

func TestBuildCommands(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil, logger.NewTestLogger(), WithManager(Systemd))

	assert.Equal(t, []string{"systemctl", "is-active", "nginx"}, d.BuildStatusCommand("nginx", ""))
	assert.Equal(t, []string{"systemctl", "restart", "nginx"}, d.BuildRestartCommand("nginx", ""))
	assert.Equal(t, []string{"rc-service", "nginx", "status"}, d.BuildStatusCommand("nginx", OpenRC))
	assert.Equal(t, []string{"service", "nginx", "restart"}, d.BuildRestartCommand("nginx", SysV))
	assert.Nil(t, d.BuildStatusCommand("nginx", Unknown))
	assert.Nil(t, d.BuildRestartCommand("nginx", Unknown))
}

func TestCheckService(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	runner := command.NewMockRunner(ctrl)
	ctx := context.Background()

	d := NewDetector(runner, logger.NewTestLogger(), WithManager(Systemd))

	runner.EXPECT().Run(ctx, []string{"systemctl", "is-active", "nginx"}, 10*time.Second).
		Return(command.Result{Status: command.StatusExited, Stdout: "active\n"})

	status := d.CheckService(ctx, "nginx", "")
	assert.True(t, status.Running)
	assert.Equal(t, "active", status.Message)

	runner.EXPECT().Run(ctx, []string{"systemctl", "is-active", "nginx"}, gomock.Any()).
		Return(command.Result{Status: command.StatusExited, ExitCode: 3})

	status = d.CheckService(ctx, "nginx", "")
	assert.False(t, status.Running)
	assert.Equal(t, "inactive", status.Message)
	require.NotNil(t, status.ExitCode)
	assert.Equal(t, 3, *status.ExitCode)

	runner.EXPECT().Run(ctx, []string{"rc-service", "sshd", "status"}, gomock.Any()).
		Return(command.Result{Status: command.StatusExited, Stderr: " * status: started\n"})

	status = d.CheckService(ctx, "sshd", OpenRC)
	assert.True(t, status.Running)
	assert.Equal(t, "* status: started", status.Message)

	runner.EXPECT().Run(ctx, gomock.Any(), gomock.Any()).Return(command.Result{Status: command.StatusTimeout})
	assert.Equal(t, "Status command timeout", d.CheckService(ctx, "nginx", "").Message)

	runner.EXPECT().Run(ctx, gomock.Any(), gomock.Any()).Return(command.Result{Status: command.StatusNotFound})
	assert.Equal(t, "Service manager command not found", d.CheckService(ctx, "nginx", "").Message)

	assert.Equal(t, "Unsupported service manager", d.CheckService(ctx, "nginx", Unknown).Message)
}

func TestRestartService(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	runner := command.NewMockRunner(ctrl)
	ctx := context.Background()

	d := NewDetector(runner, logger.NewTestLogger(), WithManager(SysV))

	runner.EXPECT().Run(ctx, []string{"service", "mysql", "restart"}, 60*time.Second).
		Return(command.Result{Status: command.StatusExited, Stdout: "ok\n"})

	out := d.RestartService(ctx, "mysql", "")
	assert.True(t, out.Success)
	assert.Equal(t, "service mysql restart", out.Command)
	assert.Equal(t, "ok", out.Stdout)

	runner.EXPECT().Run(ctx, gomock.Any(), gomock.Any()).Return(command.Result{Status: command.StatusTimeout})

	out = d.RestartService(ctx, "mysql", "")
	assert.False(t, out.Success)
	assert.Equal(t, "Timeout", out.Stderr)
	assert.Nil(t, out.ExitCode)
}

func TestListUnitsAndUnitState(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	runner := command.NewMockRunner(ctrl)
	ctx := context.Background()

	d := NewDetector(runner, logger.NewTestLogger(), WithManager(Systemd))

	runner.EXPECT().Run(ctx, gomock.Any(), gomock.Any()).Return(command.Result{
		Status: command.StatusExited,
		Stdout: "nginx.service loaded active running A high performance web server\n" +
			"● php8.2-fpm.service loaded failed failed PHP FastCGI\n" +
			"short line\n",
	})

	units, err := d.ListUnits(ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, Unit{Name: "nginx.service", Load: "loaded", Active: "active", Sub: "running"}, units[0])
	assert.Equal(t, "php8.2-fpm.service", units[1].Name)

	runner.EXPECT().Run(ctx, []string{
		"systemctl", "show", "nginx", "-p", "LoadState", "-p", "ActiveState", "-p", "SubState",
	}, gomock.Any()).Return(command.Result{
		Status: command.StatusExited,
		Stdout: "LoadState=loaded\nActiveState=activating\nSubState=auto-restart\n",
	})

	state, err := d.UnitState(ctx, "nginx")
	require.NoError(t, err)
	assert.True(t, state.Exists())
	assert.True(t, state.Transitioning())

	runner.EXPECT().Run(ctx, gomock.Any(), gomock.Any()).Return(command.Result{Status: command.StatusExited, ExitCode: 1})

	_, err = d.UnitState(ctx, "ghost")
	require.ErrorIs(t, err, ErrUnitQueryFailed)

	_, err = d.UnitState(ctx, "")
	require.ErrorIs(t, err, ErrNoUnitName)
}

func TestIsTransitioning(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTransitioning("deactivating", "running"))
	assert.True(t, IsTransitioning("active", "stop"))
	assert.False(t, IsTransitioning("active", "running"))
	assert.False(t, IsTransitioning("failed", "failed"))
}
