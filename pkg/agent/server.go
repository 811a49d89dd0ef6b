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
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/monitord/pkg/clock"
	"github.com/carverauto/monitord/pkg/config"
	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/models"
)

const channelTestTimeout = 60 * time.Second

var errNoReloader = errors.New("no configuration reloader set")

// Components are the engines and router built from one configuration.
type Components struct {
	Services  ServiceMonitor
	Resources ResourceMonitor
	Notifier  Notifier
}

// Reloader re-reads the configuration and returns the components to run
// with it. current are the running components; engines should be carried
// over with WithPrevious so their state survives.
type Reloader func(ctx context.Context, current *Components) (*config.Config, *Components, error)

// Server runs monitoring cycles against the current components. A reload
// swaps the components between cycles.
type Server struct {
	logger   logger.Logger
	clock    clock.Clock
	version  string
	reloader Reloader

	mu     sync.RWMutex
	config *config.Config
	comps  *Components
}

// Option customizes a Server.
type Option func(*Server)

func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		s.clock = c
	}
}

func WithReloader(fn Reloader) Option {
	return func(s *Server) {
		s.reloader = fn
	}
}

func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer returns a server for cfg and comps.
func NewServer(cfg *config.Config, comps *Components, log logger.Logger, opts ...Option) *Server {
	s := &Server{
		logger:  log,
		clock:   clock.Real(),
		version: "dev",
		config:  cfg,
		comps:   comps,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Server) current() (*config.Config, *Components) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.config, s.comps
}

// Start tests the notification channels and, when configured, announces
// the start.
func (s *Server) Start(ctx context.Context) {
	cfg, comps := s.current()

	channels := comps.Notifier.EnabledChannels()
	s.logger.Info().Strs("channels", channels).Msg("Notification router initialized")

	if len(channels) > 0 {
		results := s.TestChannels(ctx)

		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			if results[name] {
				s.logger.Info().Str("channel", name).Msg("Notification channel test OK")
			} else {
				s.logger.Warn().Str("channel", name).Msg("Notification channel test FAILED")
			}
		}
	}

	if cfg.General.NotifyOnStart {
		comps.Notifier.DispatchEvent(ctx, &models.Report{
			EventType: models.EventMonitorStarted,
			Title:     cfg.General.Name() + " started",
			Severity:  models.SeverityInfo,
			Details: fmt.Sprintf("%s %s monitoring %d services every %s",
				cfg.General.Name(), s.version, len(cfg.ServiceMonitor.Services), cfg.General.Interval()),
		})
	}
}

// TestChannels tests every enabled channel concurrently and returns the
// outcome by channel name.
func (s *Server) TestChannels(ctx context.Context) map[string]bool {
	_, comps := s.current()

	ctx, cancel := context.WithTimeout(ctx, channelTestTimeout)
	defer cancel()

	return comps.Notifier.TestAllChannels(ctx)
}

// Run starts the server and runs a cycle immediately and then once per
// check interval until ctx is done. A cycle in flight when ctx is cancelled
// runs to completion. A value on reload rebuilds the components between
// cycles.
func (s *Server) Run(ctx context.Context, reload <-chan struct{}) error {
	s.Start(ctx)

	cycleCtx := context.WithoutCancel(ctx)

	cfg, _ := s.current()
	interval := cfg.General.Interval()

	s.logger.Info().Dur("interval", interval).Msg("Monitoring loop started")

	ticker := s.clock.Ticker(interval)
	defer func() { ticker.Stop() }()

	s.RunCycle(cycleCtx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Monitoring loop stopping")
			return nil
		case <-reload:
			if err := s.Reload(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Configuration reload failed, keeping current configuration")
				continue
			}

			cfg, _ = s.current()
			if next := cfg.General.Interval(); next != interval {
				ticker.Stop()
				ticker = s.clock.Ticker(next)
				interval = next

				s.logger.Info().Dur("interval", interval).Msg("Check interval changed")
			}
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return nil
			}

			s.RunCycle(cycleCtx)
		}
	}
}

// Reload hands the running components to the reloader and swaps in what it
// returns.
func (s *Server) Reload(ctx context.Context) error {
	if s.reloader == nil {
		return errNoReloader
	}

	s.logger.Info().Msg("Reloading configuration")

	_, current := s.current()

	cfg, comps, err := s.reloader(ctx, current)
	if err != nil {
		return err
	}

	s.UpdateConfig(cfg, comps)

	return nil
}

// UpdateConfig swaps in cfg and comps and releases the previous notifier.
func (s *Server) UpdateConfig(cfg *config.Config, comps *Components) {
	s.mu.Lock()
	old, oldComps := s.config, s.comps
	s.config, s.comps = cfg, comps
	s.mu.Unlock()

	s.logger.Info().Strs("changed", config.ChangedSections(old, cfg)).Msg("Configuration updated")

	if oldComps != nil && oldComps.Notifier != nil && oldComps.Notifier != comps.Notifier {
		if err := oldComps.Notifier.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close previous notification channels")
		}
	}
}

// Close releases the notification channels.
func (s *Server) Close() error {
	_, comps := s.current()

	return comps.Notifier.Close()
}
