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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/monitord/pkg/agent"
	"github.com/carverauto/monitord/pkg/config"
)

const checkConfig = `
general:
  app_name: test
service_monitor:
  services:
    - name: healthy
      check_method: custom_command
      check_command: "true"
    - name: broken
      check_method: custom_command
      check_command: "exit 3"
      critical: true
resource_monitor:
  enabled: false
notifications:
  enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "main.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return buf.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"run", "check", "test-channels", "stats", "version", "--config"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "monitord dev")

	out, err = execute(t, "version", "-o", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, "version", "--output", "yaml")
	require.ErrorIs(t, err, errUnknownOutput)
}

func TestCheckMissingConfig(t *testing.T) {
	_, err := execute(t, "check", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestCheckReportsCriticalDown(t *testing.T) {
	out, err := execute(t, "check", "--config", writeConfig(t, checkConfig))
	require.ErrorIs(t, err, errCriticalDown)

	assert.Regexp(t, `healthy\s+up\s+custom_command\s+false`, out)
	assert.Regexp(t, `broken\s+down\s+custom_command\s+true\s+Check failed`, out)
}

func TestCheckJSON(t *testing.T) {
	body := `
service_monitor:
  services:
    - name: healthy
      check_method: custom_command
      check_command: "true"
resource_monitor:
  enabled: false
`

	out, err := execute(t, "check", "-o", "json", "--config", writeConfig(t, body))
	require.NoError(t, err)

	var summary agent.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Len(t, summary.Services, 1)
	assert.True(t, summary.Services[0].Running)
	assert.False(t, summary.Resources.Enabled)
}

func TestTestChannelsNoneEnabled(t *testing.T) {
	out, err := execute(t, "test-channels", "--config", writeConfig(t, checkConfig))
	require.NoError(t, err)
	assert.Contains(t, out, "No notification channels enabled")
}

func TestPrintChannelResults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printChannelResults(&buf, map[string]bool{"slack": true, "email": false}))

	assert.Regexp(t, `(?s)CHANNEL\s+RESULT\s+email\s+FAILED\s+slack\s+OK`, buf.String())
}
