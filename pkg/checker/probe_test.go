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

package checker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carverauto/monitord/pkg/command"
	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/models"
	"github.com/carverauto/monitord/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type probeFixture struct {
	runner    *command.MockRunner
	processes *MockProcessLister
	probe     *Probe
}

func newProbeFixture(t *testing.T, manager platform.ManagerType) *probeFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	runner := command.NewMockRunner(ctrl)
	processes := NewMockProcessLister(ctrl)
	log := logger.NewTestLogger()

	detector := platform.NewDetector(runner, log, platform.WithManager(manager))

	return &probeFixture{
		runner:    runner,
		processes: processes,
		probe:     NewProbe(runner, detector, processes, log, Config{}),
	}
}

func exited(code int, stdout string) command.Result {
	return command.Result{Status: command.StatusExited, ExitCode: code, Stdout: stdout}
}

func TestCheckSystemctlByName(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()
	spec := &models.ServiceSpec{Name: "web", CheckMethod: models.CheckSystemctl, ServiceName: "nginx"}

	f.runner.EXPECT().Run(ctx, []string{"systemctl", "is-active", "nginx"}, gomock.Any()).Return(exited(0, "active\n"))

	res := f.probe.Check(ctx, spec)
	assert.True(t, res.Running)
	assert.Equal(t, "Active", res.Message)
	assert.Equal(t, models.CheckSystemctl, res.CheckMethod)

	f.runner.EXPECT().Run(ctx, []string{"systemctl", "is-active", "nginx"}, gomock.Any()).Return(exited(3, "failed\n"))

	res = f.probe.Check(ctx, spec)
	assert.False(t, res.Running)
	assert.Equal(t, "Inactive or failed", res.Message)
}

func TestCheckSystemctlWithoutNameIsNotRunning(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)

	res := f.probe.Check(context.Background(), &models.ServiceSpec{Name: "web"})
	assert.False(t, res.Running)
	assert.Equal(t, "Inactive or failed", res.Message)
}

func TestCheckSystemctlOnOpenRCDelegatesToManager(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.OpenRC)
	ctx := context.Background()

	f.runner.EXPECT().Run(ctx, []string{"rc-service", "sshd", "status"}, gomock.Any()).Return(exited(0, "started"))

	res := f.probe.Check(ctx, &models.ServiceSpec{Name: "ssh", ServiceName: "sshd"})
	assert.True(t, res.Running)
}

func TestCheckSystemctlPattern(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()
	spec := &models.ServiceSpec{Name: "php", ServiceNamePattern: `^php\d\.\d-fpm`}

	f.runner.EXPECT().Run(ctx, gomock.Any(), gomock.Any()).Return(exited(0,
		"php7.4-fpm.service loaded inactive dead PHP 7.4\n"+
			"php8.2-fpm.service loaded active running PHP 8.2\n")).Times(2)

	assert.True(t, f.probe.Check(ctx, spec).Running)
	assert.True(t, f.probe.Check(ctx, spec).Running)

	f.runner.EXPECT().Run(ctx, gomock.Any(), gomock.Any()).Return(exited(0,
		"php8.2-fpm.service loaded failed failed PHP 8.2\n"))

	assert.False(t, f.probe.Check(ctx, spec).Running)
}

func TestCheckSystemctlPatternUnsupported(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.SysV)

	res := f.probe.Check(context.Background(), &models.ServiceSpec{Name: "php", ServiceNamePattern: "php"})
	assert.False(t, res.Running)
}

func TestCheckManagerOverrides(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	f.runner.EXPECT().Run(ctx, []string{"service", "cron", "status"}, gomock.Any()).Return(exited(0, ""))
	f.runner.EXPECT().Run(ctx, []string{"rc-service", "cron", "status"}, gomock.Any()).Return(exited(1, ""))
	f.runner.EXPECT().Run(ctx, []string{"systemctl", "is-active", "crond"}, gomock.Any()).Return(exited(0, "active"))

	assert.True(t, f.probe.Check(ctx, &models.ServiceSpec{Name: "cron", CheckMethod: models.CheckService}).Running)
	assert.False(t, f.probe.Check(ctx, &models.ServiceSpec{Name: "cron", CheckMethod: models.CheckOpenRC}).Running)
	assert.True(t, f.probe.Check(ctx, &models.ServiceSpec{
		Name: "cron", ServiceName: "crond", CheckMethod: models.CheckAuto,
	}).Running)
}

func TestCheckProcess(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	f.processes.EXPECT().Names(ctx).Return([]string{"systemd", "redis-server", "sshd"}, nil).Times(2)

	res := f.probe.Check(ctx, &models.ServiceSpec{Name: "redis", CheckMethod: models.CheckProcess, ProcessName: "redis-server"})
	assert.True(t, res.Running)
	assert.Equal(t, "Process found", res.Message)

	res = f.probe.Check(ctx, &models.ServiceSpec{Name: "redis", CheckMethod: models.CheckProcess, ProcessName: "redis"})
	assert.False(t, res.Running)
	assert.Equal(t, "Process not found", res.Message)

	res = f.probe.Check(ctx, &models.ServiceSpec{Name: "redis", CheckMethod: models.CheckProcess})
	assert.False(t, res.Running)
}

func TestCheckProcessRegex(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	rows := []string{
		"root 1 /sbin/init",
		"www-data 812 php-fpm: pool www",
	}

	f.processes.EXPECT().CommandLines(ctx).Return(rows, nil).Times(2)

	res := f.probe.Check(ctx, &models.ServiceSpec{
		Name:            "php",
		CheckMethod:     models.CheckProcessRegex,
		ProcessPatterns: models.PatternList{"gunicorn", `php-fpm: pool \w+`},
	})
	assert.True(t, res.Running)
	assert.Equal(t, "Process pattern matched", res.Message)

	res = f.probe.Check(ctx, &models.ServiceSpec{
		Name:           "gunicorn",
		CheckMethod:    models.CheckProcessRegex,
		ProcessPattern: "gunicorn",
	})
	assert.False(t, res.Running)
	assert.Equal(t, "No matching process", res.Message)
}

func TestCheckProcessRegexCachesCompiledPatterns(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)

	first, err := f.probe.compile([]string{"a", "b"})
	require.NoError(t, err)

	second, err := f.probe.compile([]string{"a", "b"})
	require.NoError(t, err)

	reordered, err := f.probe.compile([]string{"b", "a"})
	require.NoError(t, err)

	assert.Same(t, first[0], second[0])
	assert.NotSame(t, first[0], reordered[1])
	assert.Len(t, f.probe.patterns, 2)
}

func TestCheckProcessRegexInvalidPattern(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)

	res := f.probe.Check(context.Background(), &models.ServiceSpec{
		Name:           "bad",
		CheckMethod:    models.CheckProcessRegex,
		ProcessPattern: "([unclosed",
	})
	assert.False(t, res.Running)
	assert.Equal(t, "No matching process", res.Message)
}

func TestCheckProcessRegexMultiInstance(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	f.runner.EXPECT().Run(ctx, []string{"systemctl", "is-active", "worker@1"}, gomock.Any()).Return(exited(3, "inactive"))
	f.runner.EXPECT().Run(ctx, []string{"systemctl", "is-active", "worker@2"}, gomock.Any()).Return(exited(0, "active"))

	res := f.probe.Check(ctx, &models.ServiceSpec{
		Name:          "workers",
		CheckMethod:   models.CheckProcessRegex,
		MultiInstance: true,
		Instances:     []models.Instance{{ServiceName: "worker@1"}, {}, {ServiceName: "worker@2"}},
	})
	assert.True(t, res.Running)
}

func TestCheckCustomCommand(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	f.runner.EXPECT().RunShell(ctx, "pg_isready -q", 30*time.Second).Return(exited(0, ""))
	f.runner.EXPECT().RunShell(ctx, "pg_isready -q", 5*time.Second).Return(command.Result{Status: command.StatusTimeout})

	res := f.probe.Check(ctx, &models.ServiceSpec{Name: "pg", CheckMethod: models.CheckCustomCommand, CheckCommand: "pg_isready -q"})
	assert.True(t, res.Running)
	assert.Equal(t, "Check passed", res.Message)

	res = f.probe.Check(ctx, &models.ServiceSpec{
		Name: "pg", CheckMethod: models.CheckCustomCommand, CheckCommand: "pg_isready -q", CheckTimeout: 5,
	})
	assert.False(t, res.Running)
	assert.Equal(t, "Check failed", res.Message)
}

func TestCheckIptables(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	f.runner.EXPECT().Run(ctx, []string{"iptables", "-L", "-n"}, 10*time.Second).Return(exited(0, "Chain INPUT"))
	f.runner.EXPECT().Run(ctx, []string{"iptables", "-L", "-n"}, gomock.Any()).Return(command.Result{Status: command.StatusNotFound})
	f.runner.EXPECT().RunShell(ctx, "nft list ruleset", gomock.Any()).Return(exited(0, ""))

	spec := &models.ServiceSpec{Name: "firewall", CheckMethod: models.CheckIptables}

	assert.True(t, f.probe.Check(ctx, spec).Running)

	res := f.probe.Check(ctx, spec)
	assert.False(t, res.Running)
	assert.Equal(t, "Inactive or failed", res.Message)

	spec.CheckCommand = "nft list ruleset"
	assert.True(t, f.probe.Check(ctx, spec).Running)
}

func TestCheckUnknownMethod(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)

	res := f.probe.Check(context.Background(), &models.ServiceSpec{Name: "x", CheckMethod: "snmp"})
	assert.False(t, res.Running)
	assert.Equal(t, "Unknown check method: snmp", res.Message)
}

func TestCheckRecoversFromPanics(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	f.processes.EXPECT().Names(ctx).DoAndReturn(func(context.Context) ([]string, error) {
		panic("proc table exploded")
	})

	res := f.probe.Check(ctx, &models.ServiceSpec{Name: "p", CheckMethod: models.CheckProcess, ProcessName: "p"})
	assert.False(t, res.Running)
	assert.Equal(t, "Check error: proc table exploded", res.Message)
}

func TestCheckProcessListerError(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	f.processes.EXPECT().CommandLines(ctx).Return(nil, errors.New("permission denied"))

	res := f.probe.Check(ctx, &models.ServiceSpec{Name: "p", CheckMethod: models.CheckProcessRegex, ProcessPattern: "p"})
	assert.False(t, res.Running)
}

func TestCheckHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "probe", r.Header.Get("X-Monitor"))
			w.WriteHeader(http.StatusOK)
		case "/head":
			assert.Equal(t, http.MethodHead, r.Method)
			w.WriteHeader(http.StatusNoContent)
		case "/teapot":
			w.WriteHeader(http.StatusTeapot)
		case "/accepted":
			w.WriteHeader(http.StatusAccepted)
		case "/slow":
			time.Sleep(50 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	res := f.probe.Check(ctx, &models.ServiceSpec{
		Name: "api", CheckMethod: models.CheckHTTP, URL: srv.URL + "/ok",
		Headers: map[string]string{"X-Monitor": "probe"},
	})
	assert.True(t, res.Running)
	assert.Regexp(t, `^HTTP 200 \(\d+ms\)$`, res.Message)
	require.NotNil(t, res.HTTPStatus)
	assert.Equal(t, 200, res.HTTPStatus.StatusCode)

	res = f.probe.Check(ctx, &models.ServiceSpec{
		Name: "api", CheckMethod: models.CheckHTTP, URL: srv.URL + "/head", HTTPMethod: "head",
	})
	assert.True(t, res.Running)

	res = f.probe.Check(ctx, &models.ServiceSpec{Name: "api", CheckMethod: models.CheckHTTP, URL: srv.URL + "/teapot"})
	assert.False(t, res.Running)
	assert.Equal(t, "HTTP error: 418", res.Message)

	res = f.probe.Check(ctx, &models.ServiceSpec{Name: "api", CheckMethod: models.CheckHTTP, URL: srv.URL + "/accepted"})
	assert.False(t, res.Running)
	assert.Equal(t, "Unexpected HTTP status: 202", res.Message)

	res = f.probe.Check(ctx, &models.ServiceSpec{
		Name: "api", CheckMethod: models.CheckHTTP, URL: srv.URL + "/accepted", ExpectedStatusCodes: []int{202},
	})
	assert.True(t, res.Running)

	res = f.probe.Check(ctx, &models.ServiceSpec{
		Name: "api", CheckMethod: models.CheckHTTP, URL: srv.URL + "/slow", MaxResponseTimeMS: 1,
	})
	assert.False(t, res.Running)
	assert.Regexp(t, `^Slow response: \d+ms$`, res.Message)
}

func TestCheckHTTPSVerifyTLS(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	res := f.probe.Check(ctx, &models.ServiceSpec{Name: "tls", CheckMethod: models.CheckHTTPS, URL: srv.URL})
	assert.False(t, res.Running)
	assert.Contains(t, res.Message, "Connection error:")

	insecure := false
	res = f.probe.Check(ctx, &models.ServiceSpec{Name: "tls", CheckMethod: models.CheckHTTPS, URL: srv.URL, VerifyTLS: &insecure})
	assert.True(t, res.Running)
}

func TestCheckHTTPMissingURLAndRefused(t *testing.T) {
	t.Parallel()

	f := newProbeFixture(t, platform.Systemd)
	ctx := context.Background()

	res := f.probe.Check(ctx, &models.ServiceSpec{Name: "api", CheckMethod: models.CheckHTTP})
	assert.False(t, res.Running)
	assert.Equal(t, "Missing URL for HTTP check", res.Message)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f.probe.onlyIPv4 = true
	res = f.probe.Check(ctx, &models.ServiceSpec{Name: "api", CheckMethod: models.CheckHTTP, URL: url, TimeoutSeconds: 1})
	assert.False(t, res.Running)
	assert.Contains(t, res.Message, "Connection error:")
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(models.CheckHTTP, func(context.Context, *models.ServiceSpec) Verdict { return Verdict{Running: true} })

	h, err := r.Get(models.CheckHTTP)
	require.NoError(t, err)
	assert.True(t, h(context.Background(), nil).Running)

	_, err = r.Get(models.CheckIptables)
	require.ErrorIs(t, err, errNoChecker)
}
