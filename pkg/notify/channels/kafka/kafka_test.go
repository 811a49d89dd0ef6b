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

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/notify"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}

	f.messages = append(f.messages, msgs...)

	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newNotifier(cfg *Config, w *fakeWriter) *Notifier {
	n := New(cfg, logger.NewTestLogger())
	n.writer = w
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	return n
}

func TestSendStructured(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	n := newNotifier(&Config{Enabled: true, Brokers: []string{"kafka:9092"}}, w)

	payload := map[string]any{
		"report_type": "action",
		"report":      map[string]any{"event_type": "service_recovery"},
	}

	ok, err := n.SendStructured(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]

	assert.Equal(t, "service_recovery", string(msg.Key))
	assert.Equal(t, "report_type", msg.Headers[0].Key)
	assert.Equal(t, "action", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestSendCustomMessage(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	n := newNotifier(&Config{Enabled: true, Brokers: []string{"kafka:9092"}}, w)

	ok, err := n.Send(context.Background(), notify.Message{Subject: "Maintenance", Body: "tonight"})
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, w.messages, 1)
	assert.Equal(t, "custom", string(w.messages[0].Key))
	assert.JSONEq(t, `{"subject":"Maintenance","message":"tonight"}`, string(w.messages[0].Value))
}

func TestSendErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	ok, err := newNotifier(&Config{Enabled: true}, &fakeWriter{}).Send(ctx, notify.Message{})
	require.ErrorIs(t, err, errNoBrokers)
	assert.False(t, ok)

	ok, err = newNotifier(&Config{Enabled: true, Brokers: []string{"k:9092"}}, &fakeWriter{err: kafka.LeaderNotAvailable}).
		Send(ctx, notify.Message{})
	require.ErrorIs(t, err, kafka.LeaderNotAvailable)
	assert.False(t, ok)

	ok, err = newNotifier(&Config{Brokers: []string{"k:9092"}}, &fakeWriter{}).Send(ctx, notify.Message{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTestDialsFirstBroker(t *testing.T) {
	t.Parallel()

	n := newNotifier(&Config{Enabled: true, Brokers: []string{"a:9092", "b:9092"}}, &fakeWriter{})

	var dialed string

	n.dial = func(_ context.Context, broker string) error {
		dialed = broker
		return nil
	}

	ok, err := n.Test(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a:9092", dialed)

	n.dial = func(context.Context, string) error { return errors.New("connection refused") }

	ok, err = n.Test(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
}

func TestClose(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	require.NoError(t, newNotifier(&Config{}, w).Close())
	assert.True(t, w.closed)
}

// untouchable returns an address whose listener fails the test on any
// connection.
func untouchable(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}

		_ = conn.Close()
		t.Error("disabled channel opened a connection")
	}()

	return ln.Addr().String()
}

func TestDisabledDoesNoIO(t *testing.T) {
	t.Parallel()

	n := New(&Config{Brokers: []string{untouchable(t)}}, logger.NewTestLogger())

	ok, err := n.Test(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
