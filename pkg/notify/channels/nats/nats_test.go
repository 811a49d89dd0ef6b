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

package nats

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/natsutil"
	"github.com/carverauto/monitord/pkg/notify"
)

type published struct {
	subject string
	event   *natsutil.CloudEvent
}

type fakePublisher struct {
	events    []published
	err       error
	connected bool
	closed    bool
}

func (f *fakePublisher) Publish(_ context.Context, subject string, event *natsutil.CloudEvent) error {
	if f.err != nil {
		return f.err
	}

	f.events = append(f.events, published{subject: subject, event: event})

	return nil
}

func (f *fakePublisher) Connected() bool { return f.connected }

func (f *fakePublisher) Close() { f.closed = true }

func newNotifier(cfg *Config, pub *fakePublisher, dialErr error) (*Notifier, *int) {
	n := New(cfg, logger.NewTestLogger())
	n.source = "monitord/web1"
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	dials := 0
	n.dial = func(context.Context) (publisher, error) {
		dials++
		if dialErr != nil {
			return nil, dialErr
		}

		return pub, nil
	}

	return n, &dials
}

func TestSendStructuredWrapsCloudEvent(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{connected: true}
	n, dials := newNotifier(&Config{Enabled: true}, pub, nil)

	payload := map[string]any{
		"report_type": "event",
		"report":      map[string]any{"event_type": "service_down", "event_id": "evt-1"},
	}

	ctx := context.Background()

	ok, err := n.SendStructured(ctx, payload)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = n.Send(ctx, notify.Message{Subject: "s", Body: "m"})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 1, *dials)
	require.Len(t, pub.events, 2)

	first := pub.events[0]
	assert.Equal(t, defaultSubject, first.subject)
	assert.Equal(t, "evt-1", first.event.ID)
	assert.Equal(t, "monitord/web1", first.event.Source)
	assert.Equal(t, "io.monitord.event.service_down", first.event.Type)
	assert.Equal(t, payload, first.event.Data)

	second := pub.events[1]
	assert.Equal(t, "io.monitord.message.custom", second.event.Type)
	assert.NotEmpty(t, second.event.ID)
}

func TestSendErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	n, _ := newNotifier(&Config{Enabled: true, Subject: "ops.alerts"}, nil, errors.New("no servers available"))
	ok, err := n.Send(ctx, notify.Message{})
	require.Error(t, err)
	assert.False(t, ok)

	pub := &fakePublisher{err: errors.New("flush timeout")}
	n, _ = newNotifier(&Config{Enabled: true}, pub, nil)
	ok, err = n.SendStructured(ctx, map[string]any{})
	require.Error(t, err)
	assert.False(t, ok)

	n, dials := newNotifier(&Config{}, &fakePublisher{}, nil)
	ok, err = n.Send(ctx, notify.Message{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, *dials)
}

func TestTestAndClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	pub := &fakePublisher{}
	n, _ := newNotifier(&Config{Enabled: true}, pub, nil)

	ok, err := n.Test(ctx)
	require.ErrorIs(t, err, errNotConnected)
	assert.False(t, ok)

	pub.connected = true

	ok, err = n.Test(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, n.Close())
	assert.True(t, pub.closed)
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

	n := New(&Config{URL: "nats://" + untouchable(t)}, logger.NewTestLogger())

	ok, err := n.Test(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
