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

	"github.com/spf13/cobra"

	"github.com/carverauto/monitord/pkg/agent"
	"github.com/carverauto/monitord/pkg/config"
	"github.com/carverauto/monitord/pkg/lifecycle"
	"github.com/carverauto/monitord/pkg/logger"
)

// NewRootCmd creates the monitord command with every subcommand registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "monitord",
		Short:         "Host service and resource monitor",
		Long:          "monitord watches services and host resources, restarts what fails and reports to notification channels.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "",
		fmt.Sprintf("path to config file (default $%s or %s)", config.PathEnv, config.DefaultPath))

	root.AddCommand(
		newRunCmd(),
		newCheckCmd(),
		newTestChannelsCmd(),
		newStatsCmd(),
		newVersionCmd(),
	)

	return root
}

func configPath(cmd *cobra.Command) string {
	flag, _ := cmd.Flags().GetString("config")

	return config.ResolvePath(flag)
}

// loadConfig reads the configuration with a console logger, since the
// configured one is not known yet.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	bootLog, err := lifecycle.CreateComponentLogger("config", logger.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer func() { _ = lifecycle.ShutdownLogger(bootLog) }()

	cfg, err := config.LoadConfig(ctx, path, bootLog)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// oneShot holds what the short-lived commands need: the configuration, a
// logger on stderr so stdout stays machine readable, and the components.
type oneShot struct {
	cfg    *config.Config
	log    *lifecycle.LoggerImpl
	server *agent.Server
}

func newOneShot(cmd *cobra.Command) (*oneShot, error) {
	cfg, err := loadConfig(cmd.Context(), configPath(cmd))
	if err != nil {
		return nil, err
	}

	logConfig := *cfg.General.LogConfig()
	logConfig.Output = "stderr"

	log, err := lifecycle.CreateComponentLogger("monitord", &logConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	comps := agent.Build(cfg, log)

	return &oneShot{cfg: cfg, log: log, server: agent.NewServer(cfg, comps, log)}, nil
}

func (o *oneShot) Close() {
	if err := o.server.Close(); err != nil {
		o.log.Warn().Err(err).Msg("Failed to close notification channels")
	}

	_ = lifecycle.ShutdownLogger(o.log)
}
