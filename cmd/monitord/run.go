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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/carverauto/monitord/pkg/agent"
	"github.com/carverauto/monitord/pkg/config"
	"github.com/carverauto/monitord/pkg/lifecycle"
	"github.com/carverauto/monitord/pkg/metrics"
	"github.com/carverauto/monitord/pkg/version"
)

const shutdownTimeout = 10 * time.Second

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitoring daemon",
		Long: "Run monitoring cycles until SIGINT or SIGTERM. SIGHUP re-reads the configuration " +
			"and rebuilds the engines between cycles.",
		Args: cobra.NoArgs,
		RunE: runDaemon,
	}
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := configPath(cmd)

	cfg, err := loadConfig(ctx, path)
	if err != nil {
		return err
	}

	log, err := lifecycle.CreateComponentLogger("monitord", cfg.General.LogConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer func() {
		if err := lifecycle.ShutdownLogger(log); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shutdown logger: %v\n", err)
		}
	}()

	pid, err := lifecycle.AcquirePIDFile(cfg.General.PIDPath())
	if err != nil {
		return err
	}

	defer func() {
		if err := pid.Release(); err != nil {
			log.Warn().Err(err).Str("path", pid.Path()).Msg("Failed to remove pid file")
		}
	}()

	provider, err := metrics.Init(ctx, &cfg.Metrics, version.GetVersion(), log)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to flush metrics")
		}
	}()

	reloader := func(ctx context.Context, current *agent.Components) (*config.Config, *agent.Components, error) {
		next, err := config.LoadConfig(ctx, path, log)
		if err != nil {
			return nil, nil, err
		}

		return next, agent.Build(next, log, agent.WithRecorder(provider.Recorder()), agent.WithPrevious(current)), nil
	}

	server := agent.NewServer(cfg, agent.Build(cfg, log, agent.WithRecorder(provider.Recorder())), log,
		agent.WithReloader(reloader),
		agent.WithVersion(version.GetVersion()),
	)

	defer func() {
		if err := server.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close notification channels")
		}
	}()

	log.Info().
		Str("version", version.GetVersion()).
		Str("config", path).
		Int("pid", os.Getpid()).
		Msg("Starting monitord")

	err = server.Run(ctx, reloadSignals(ctx))

	log.Info().Msg("monitord stopped")

	return err
}

// reloadSignals forwards SIGHUP until ctx is done.
func reloadSignals(ctx context.Context) <-chan struct{} {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	reload := make(chan struct{})

	go func() {
		defer signal.Stop(hup)

		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				select {
				case reload <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return reload
}
