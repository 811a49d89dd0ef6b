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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var errInvalidOutput = errors.New("invalid log output")

// ParseLevel resolves the effective level; Debug wins over Level.
func ParseLevel(config *Config) (zerolog.Level, error) {
	if config.Debug {
		return zerolog.DebugLevel, nil
	}

	if config.Level == "" {
		return zerolog.InfoLevel, nil
	}

	return zerolog.ParseLevel(config.Level)
}

// NewWriter builds the output sink for config. When a log file is configured
// the console and the rotating file both receive every event, and the returned
// closer releases the file.
func NewWriter(config *Config) (io.Writer, io.Closer, error) {
	var console io.Writer

	switch config.Output {
	case "", "stdout":
		console = os.Stdout
	case "stderr":
		console = os.Stderr
	case "none":
		console = io.Discard
	default:
		return nil, nil, fmt.Errorf("%w: %q", errInvalidOutput, config.Output)
	}

	if config.File == nil || config.File.Path == "" {
		return console, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(config.File.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := newRotator(config.File)

	return zerolog.MultiLevelWriter(console, rotator), rotator, nil
}

func newRotator(config *FileConfig) *lumberjack.Logger {
	maxSize := config.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}

	maxBackups := config.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}

	return &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
