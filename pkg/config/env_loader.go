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
	"errors"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const nullTag = "!!null"

// envRef matches ${NAME} and $NAME references.
var envRef = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func (l *FileConfigLoader) envFilePath(configPath string) string {
	if p, ok := l.env.LookupEnv(EnvFileEnv); ok && p != "" {
		return p
	}

	return filepath.Join(filepath.Dir(configPath), ".env")
}

// loadEnvFile exports the variables of a .env file that are not already set.
// A missing file is not an error.
func (l *FileConfigLoader) loadEnvFile(path string) int {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug().Str("path", path).Msg("Environment file not found")
			return 0
		}

		l.logger.Warn().Err(err).Str("path", path).Msg("Failed to read environment file")

		return 0
	}

	loaded := 0

	for key, value := range values {
		if _, exists := l.env.LookupEnv(key); exists {
			l.logger.Debug().Str("key", key).Msg("Skipping existing environment key")
			continue
		}

		if err := l.env.Setenv(key, value); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("Failed to export environment key")
			continue
		}

		loaded++
	}

	l.logger.Info().Int("count", loaded).Str("path", path).Msg("Loaded environment file")

	return loaded
}

// expand rewrites environment references in scalar values. Mapping keys are
// left alone.
func (l *FileConfigLoader) expand(node *yaml.Node) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			l.expand(child)
		}
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			l.expand(node.Content[i])
		}
	case yaml.ScalarNode:
		l.expandScalar(node)
	case yaml.AliasNode:
	}
}

// expandScalar replaces a whole-value reference with the variable, letting
// YAML resolve its type again, and a missing variable with null. References
// embedded in longer text are substituted as text, missing ones as empty.
func (l *FileConfigLoader) expandScalar(node *yaml.Node) {
	if !strings.Contains(node.Value, "$") {
		return
	}

	loc := envRef.FindStringIndex(node.Value)
	if loc == nil {
		return
	}

	if loc[0] == 0 && loc[1] == len(node.Value) {
		value, ok := l.lookup(refName(node.Value))
		node.Style = 0

		if !ok {
			node.Tag = nullTag
			node.Value = ""

			return
		}

		node.Tag = ""
		node.Value = value

		return
	}

	node.Value = envRef.ReplaceAllStringFunc(node.Value, func(ref string) string {
		value, _ := l.lookup(refName(ref))
		return value
	})
}

func (l *FileConfigLoader) lookup(name string) (string, bool) {
	value, ok := l.env.LookupEnv(name)
	if !ok {
		l.logger.Warn().Str("variable", name).Msg("Environment variable not found")
	}

	return value, ok
}

func refName(ref string) string {
	if strings.HasPrefix(ref, "${") {
		return strings.TrimSuffix(strings.TrimPrefix(ref, "${"), "}")
	}

	return strings.TrimPrefix(ref, "$")
}
