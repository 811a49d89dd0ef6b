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

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/carverauto/monitord/pkg/logger"
)

//nolint:gochecknoglobals // section names checked on load
var knownSections = []string{"general", "service_monitor", "resource_monitor", "notifications"}

// Environment is the process environment seen by the loader.
type Environment interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
}

type osEnvironment struct{}

func (osEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (osEnvironment) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

// LoaderOption customizes a FileConfigLoader.
type LoaderOption func(*FileConfigLoader)

// WithEnvironment replaces the process environment, mainly for tests.
func WithEnvironment(env Environment) LoaderOption {
	return func(l *FileConfigLoader) {
		l.env = env
	}
}

// FileConfigLoader loads configuration from a local YAML file.
type FileConfigLoader struct {
	logger logger.Logger
	env    Environment
}

// NewFileConfigLoader returns a loader bound to the process environment.
func NewFileConfigLoader(log logger.Logger, opts ...LoaderOption) *FileConfigLoader {
	l := &FileConfigLoader{logger: log, env: osEnvironment{}}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads path, applies the .env file, expands environment references in
// every scalar value and decodes the result into dst. An empty document
// leaves dst untouched.
func (l *FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}

		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	l.logger.Info().Str("path", path).Msg("Loading configuration")

	l.loadEnvFile(l.envFilePath(path))

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML from '%s': %w", path, err)
	}

	if len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]

	switch {
	case root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null":
		return nil
	case root.Kind != yaml.MappingNode:
		return fmt.Errorf("%w: %s", ErrInvalidDocument, path)
	}

	l.warnMissingSections(root)
	l.expand(root)

	if err := root.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode configuration from '%s': %w", path, err)
	}

	return nil
}

func (l *FileConfigLoader) warnMissingSections(root *yaml.Node) {
	present := make(map[string]bool, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		present[root.Content[i].Value] = true
	}

	for _, section := range knownSections {
		if !present[section] {
			l.logger.Warn().Str("section", section).Msg("Missing configuration section")
		}
	}
}
