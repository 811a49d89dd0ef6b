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

package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/notify"
)

func TestSendTruncatesContent(t *testing.T) {
	t.Parallel()

	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(&Config{Enabled: true, WebhookURL: srv.URL, Username: "monitord"}, logger.NewTestLogger())

	ok, err := n.Send(context.Background(), notify.Message{Body: strings.Repeat("x", 2500)})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "monitord", got["username"])
	assert.Equal(t, maxContent, utf8.RuneCountInString(got["content"]))
	assert.True(t, strings.HasSuffix(got["content"], "…"))
}

func TestSendStructured(t *testing.T) {
	t.Parallel()

	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(&Config{Enabled: true, WebhookURL: srv.URL}, logger.NewTestLogger())

	ok, err := n.SendStructured(context.Background(), map[string]any{"subject": "s"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "```json\n{\n  \"subject\": \"s\"\n}\n```", got["content"])
}

func TestTest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	ok, err := New(&Config{Enabled: true}, logger.NewTestLogger()).Test(ctx)
	require.ErrorIs(t, err, errNoWebhookURL)
	assert.False(t, ok)

	ok, err = New(&Config{}, logger.NewTestLogger()).Test(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
}

func untouchable(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("disabled channel sent %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestDisabledDoesNoIO(t *testing.T) {
	t.Parallel()

	n := New(&Config{WebhookURL: untouchable(t).URL, TestOnStartup: true}, logger.NewTestLogger())
	ctx := context.Background()

	ok, err := n.Test(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = n.Send(ctx, notify.Message{Body: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}
