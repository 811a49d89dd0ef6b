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

package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/monitord/pkg/clock"
	"github.com/carverauto/monitord/pkg/command"
	"github.com/carverauto/monitord/pkg/config"
	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/models"
	"github.com/carverauto/monitord/pkg/platform"
)

//nolint:gochecknoglobals // fixed test epoch
var epoch = time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

type fixture struct {
	services  *MockServiceMonitor
	resources *MockResourceMonitor
	notifier  *MockNotifier
	clock     *clock.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	return &fixture{
		services:  NewMockServiceMonitor(ctrl),
		resources: NewMockResourceMonitor(ctrl),
		notifier:  NewMockNotifier(ctrl),
		clock:     clock.NewFake(epoch),
	}
}

func (f *fixture) components() *Components {
	return &Components{Services: f.services, Resources: f.resources, Notifier: f.notifier}
}

func (f *fixture) server(cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = &config.Config{}
	}

	opts = append([]Option{WithClock(f.clock)}, opts...)

	return NewServer(cfg, f.components(), logger.NewTestLogger(), opts...)
}

// capture records every report passed to the notifier.
type capture struct {
	events  []*models.Report
	actions []*models.Report
}

func (c *capture) expect(n *MockNotifier) {
	n.EXPECT().DispatchEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r *models.Report) bool {
			c.events = append(c.events, r)
			return true
		}).AnyTimes()
	n.EXPECT().DispatchActionResult(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r *models.Report) bool {
			c.actions = append(c.actions, r)
			return true
		}).AnyTimes()
}

func TestRunCycleServiceDownAndRestart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	f.services.EXPECT().Enabled().Return(true)
	f.resources.EXPECT().Enabled().Return(false)
	f.services.EXPECT().CheckAll(gomock.Any()).Return([]models.ServiceCheckResult{
		{Name: "sshd", Running: true, CheckMethod: models.CheckSystemctl},
		{
			Name:           "nginx",
			Running:        false,
			Critical:       true,
			CheckMethod:    models.CheckSystemctl,
			Message:        "Service is not active",
			EventTime:      epoch,
			ActionTaken:    models.ActionTakenRestartAttempted,
			RestartSuccess: true,
			ActionResult: &models.ActionResult{
				Action:    models.ActionRestartService,
				Command:   "systemctl restart nginx",
				Success:   true,
				Timestamp: epoch.Add(time.Minute),
				Message:   "Service is not active",
			},
		},
	})
	f.resources.EXPECT().GetCurrentStats(gomock.Any()).Return(models.SystemStats{
		CPU: models.CPUStats{Percent: 12.5},
	}).Times(1)

	var c capture
	c.expect(f.notifier)

	f.server(nil).RunCycle(ctx)

	require.Len(t, c.events, 1)
	down := c.events[0]
	assert.Equal(t, models.EventServiceDown, down.EventType)
	assert.Equal(t, models.SeverityCritical, down.Severity)
	assert.Equal(t, "down", down.Service["status"])
	assert.Equal(t, "systemctl", down.Service["check_method"])
	assert.Equal(t, "Service is not active", down.Details)
	assert.Equal(t, epoch, down.Timestamp)
	assert.Contains(t, down.SystemStats, "cpu")

	require.Len(t, c.actions, 1)
	recovery := c.actions[0]
	assert.Equal(t, models.EventServiceRecovery, recovery.EventType)
	assert.Equal(t, models.SeverityInfo, recovery.Severity)
	assert.Equal(t, "restarted", recovery.Service["status"])
	assert.Equal(t, "restart_service", recovery.Action["action"])
	assert.Equal(t, epoch.Add(time.Minute), recovery.Timestamp)
}

func TestRunCycleSkippedRecoveryOnlyReportsDown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.services.EXPECT().Enabled().Return(true)
	f.resources.EXPECT().Enabled().Return(false)
	f.services.EXPECT().CheckAll(gomock.Any()).Return([]models.ServiceCheckResult{{
		Name:         "redis",
		CheckMethod:  models.CheckProcess,
		ActionResult: &models.ActionResult{Action: models.ActionRecoverySkipped, Message: "Action cooldown active"},
	}})
	f.resources.EXPECT().GetCurrentStats(gomock.Any()).Return(models.SystemStats{})

	var c capture
	c.expect(f.notifier)

	f.server(nil).RunCycle(context.Background())

	require.Len(t, c.events, 1)
	assert.Equal(t, models.SeverityHigh, c.events[0].Severity)
	assert.Empty(t, c.actions)
}

func TestRunCycleHealthyHostSkipsStats(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.services.EXPECT().Enabled().Return(true)
	f.resources.EXPECT().Enabled().Return(true)
	f.services.EXPECT().CheckAll(gomock.Any()).Return([]models.ServiceCheckResult{{Name: "sshd", Running: true}})
	f.resources.EXPECT().CheckResources(gomock.Any()).Return(models.ResourceCheckResult{
		Enabled: true,
		CPULoad: &models.CPULoadResult{Load1Min: 0.2},
	})

	f.server(nil).RunCycle(context.Background())
}

func TestRunCycleResourceReports(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.services.EXPECT().Enabled().Return(false)
	f.resources.EXPECT().Enabled().Return(true)
	f.resources.EXPECT().CheckResources(gomock.Any()).Return(models.ResourceCheckResult{
		Enabled:   true,
		Timestamp: epoch,
		CPULoad:   &models.CPULoadResult{Load1Min: 15, ThresholdExceeded: true, ExceededType: "1min"},
		Memory:    &models.MemoryResult{AvailablePercent: 40},
		Disk: &models.DiskResult{
			ThresholdExceeded: true,
			MountPoints:       []models.MountPointResult{{Path: "/", FreePercent: 3, ThresholdExceeded: true}},
		},
		ActionsTaken: []string{models.ActionHighCPURecovery, models.ActionLowDiskRecovery},
		ActionResults: []models.ResourceActionResult{
			{Action: models.ActionTypeHighCPU, Timestamp: epoch, Success: false},
		},
	})
	f.resources.EXPECT().GetCurrentStats(gomock.Any()).Return(models.SystemStats{}).Times(1)

	var c capture
	c.expect(f.notifier)

	f.server(nil).RunCycle(context.Background())

	require.Len(t, c.events, 2)
	assert.Equal(t, "cpu", c.events[0].Resource["type"])
	assert.Equal(t, "CPU load threshold exceeded", c.events[0].Details)
	assert.Equal(t, "disk", c.events[1].Resource["type"])

	cpu, ok := c.events[0].Resource["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1min", cpu["exceeded_type"])

	require.Len(t, c.actions, 1)
	assert.Equal(t, models.EventResourceRecovery, c.actions[0].EventType)
	assert.Equal(t, models.SeverityHigh, c.actions[0].Severity)
	assert.Equal(t, models.ActionTypeHighCPU, c.actions[0].Details)
}

func TestRunCycleSurvivesPanics(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.services.EXPECT().Enabled().Return(true)
	f.services.EXPECT().CheckAll(gomock.Any()).DoAndReturn(func(context.Context) []models.ServiceCheckResult {
		panic("probe exploded")
	})
	f.resources.EXPECT().Enabled().Return(true)
	f.resources.EXPECT().CheckResources(gomock.Any()).Return(models.ResourceCheckResult{Enabled: true})

	assert.NotPanics(t, func() {
		f.server(nil).RunCycle(context.Background())
	})
}

func TestStartTestsChannelsAndAnnounces(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	cfg := &config.Config{}
	cfg.General.NotifyOnStart = true
	cfg.General.AppName = "edge"

	f.notifier.EXPECT().EnabledChannels().Return([]string{"slack", "email"})
	f.notifier.EXPECT().TestAllChannels(gomock.Any()).Return(map[string]bool{"slack": true, "email": false})

	var c capture
	c.expect(f.notifier)

	f.server(cfg, WithVersion("1.2.3")).Start(context.Background())

	require.Len(t, c.events, 1)
	assert.Equal(t, models.EventMonitorStarted, c.events[0].EventType)
	assert.Equal(t, models.SeverityInfo, c.events[0].Severity)
	assert.Equal(t, "edge started", c.events[0].Title)
	assert.Contains(t, c.events[0].Details, "edge 1.2.3 monitoring 0 services every 1m0s")
}

func TestStartWithoutChannelsSkipsTests(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.notifier.EXPECT().EnabledChannels().Return(nil)

	f.server(nil).Start(context.Background())
}

func TestRunReloadsBetweenCycles(t *testing.T) {
	t.Parallel()

	first := newFixture(t)
	second := newFixture(t)

	cycles := make(chan string, 8)
	closed := make(chan struct{})

	first.notifier.EXPECT().EnabledChannels().Return(nil)
	first.services.EXPECT().Enabled().DoAndReturn(func() bool {
		cycles <- "first"
		return false
	}).AnyTimes()
	first.resources.EXPECT().Enabled().Return(false).AnyTimes()
	first.notifier.EXPECT().Close().DoAndReturn(func() error {
		close(closed)
		return nil
	})

	second.services.EXPECT().Enabled().DoAndReturn(func() bool {
		cycles <- "second"
		return false
	}).AnyTimes()
	second.resources.EXPECT().Enabled().Return(false).AnyTimes()

	reloaded := &config.Config{}
	reloaded.General.AppName = "reloaded"

	srv := first.server(nil, WithReloader(func(_ context.Context, current *Components) (*config.Config, *Components, error) {
		assert.Same(t, first.services, current.Services)
		return reloaded, second.components(), nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	reload := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- srv.Run(ctx, reload)
	}()

	assert.Equal(t, "first", <-cycles)

	reload <- struct{}{}
	<-closed

	first.clock.Tick()
	assert.Equal(t, "second", <-cycles)

	cancel()
	require.NoError(t, <-done)

	cfg, _ := srv.current()
	assert.Equal(t, "reloaded", cfg.General.AppName)
}

func TestReloadKeepsRestartBudget(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	runner := command.NewMockRunner(ctrl)
	fake := clock.NewFake(epoch)
	ctx := context.Background()

	restarts := 0

	runner.EXPECT().RunShell(gomock.Any(), "app-health", gomock.Any()).
		Return(command.Result{Status: command.StatusExited, ExitCode: 1}).AnyTimes()
	runner.EXPECT().RunShell(gomock.Any(), "app-restart", gomock.Any()).DoAndReturn(
		func(context.Context, string, time.Duration) command.Result {
			restarts++
			return command.Result{Status: command.StatusExited}
		}).AnyTimes()

	load := func() *config.Config {
		budget := 1
		disabled := false

		cfg := &config.Config{}
		cfg.ResourceMonitor.Enabled = &disabled
		cfg.ServiceMonitor.MaxRestartAttempts = &budget
		cfg.ServiceMonitor.Services = []models.ServiceSpec{{
			Name:           "app",
			CheckMethod:    models.CheckCustomCommand,
			CheckCommand:   "app-health",
			RestartCommand: models.Shell("app-restart"),
		}}

		return cfg
	}

	build := func(cfg *config.Config, extra ...BuildOption) *Components {
		opts := []BuildOption{
			WithHostname("edge-7"),
			WithRunner(runner),
			WithServiceManager(platform.NewMockServiceManager(ctrl)),
			WithBuildClock(fake),
		}

		return Build(cfg, logger.NewTestLogger(), append(opts, extra...)...)
	}

	initial := load()
	srv := NewServer(initial, build(initial), logger.NewTestLogger(),
		WithClock(fake),
		WithReloader(func(_ context.Context, current *Components) (*config.Config, *Components, error) {
			next := load()
			return next, build(next, WithPrevious(current)), nil
		}))

	checkAll := func() {
		_, comps := srv.current()
		comps.Services.CheckAll(ctx)
	}

	checkAll()
	require.Equal(t, 1, restarts)

	fake.Advance(time.Minute)
	checkAll()

	_, before := srv.current()
	require.NoError(t, srv.Reload(ctx))

	_, after := srv.current()
	assert.Same(t, before.Services, after.Services)
	assert.NotSame(t, before.Notifier, after.Notifier)

	fake.Advance(time.Minute)
	checkAll()
	assert.Equal(t, 1, restarts, "reload must not reset the restart budget")

	fake.Advance(time.Hour)
	checkAll()
	assert.Equal(t, 2, restarts)
}

func TestReloadWithoutReloader(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.ErrorIs(t, f.server(nil).Reload(context.Background()), errNoReloader)
}

func TestCheckNeverRecovers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.services.EXPECT().Enabled().Return(true)
	f.services.EXPECT().ProbeAll(gomock.Any()).Return([]models.ServiceCheckResult{
		{Name: "nginx", Critical: true},
		{Name: "cron", Running: true},
	})
	f.resources.EXPECT().Enabled().Return(true)
	f.resources.EXPECT().Evaluate(gomock.Any()).Return(models.ResourceCheckResult{Enabled: true})

	summary := f.server(nil).Check(context.Background())

	assert.Len(t, summary.Services, 2)
	assert.True(t, summary.Resources.Enabled)
	assert.True(t, summary.CriticalDown())

	summary.Services[0].Running = true
	assert.False(t, summary.CriticalDown())
}
