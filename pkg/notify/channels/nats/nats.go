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

// Package nats publishes notifications to NATS as CloudEvents.
package nats

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/natsutil"
	"github.com/carverauto/monitord/pkg/notify"
	"github.com/carverauto/monitord/pkg/notify/channels/jsonhttp"
)

const (
	defaultSubject = "monitord.reports"
	defaultTimeout = 10 * time.Second
	eventTypeRoot  = "io.monitord."
)

var errNotConnected = errors.New("nats connection is not established")

// Config is the notifications.nats block.
type Config struct {
	notify.ChannelSettings `yaml:",inline"`

	Enabled   bool              `yaml:"enabled"`
	URL       string            `yaml:"url"`
	Subject   string            `yaml:"subject"`
	Stream    string            `yaml:"stream"`
	CredsFile string            `yaml:"creds_file"`
	TLS       natsutil.TLSFiles `yaml:"tls"`
	Timeout   int               `yaml:"timeout"`
}

type publisher interface {
	Publish(ctx context.Context, subject string, event *natsutil.CloudEvent) error
	Connected() bool
	Close()
}

type dialFunc func(ctx context.Context) (publisher, error)

// Notifier publishes reports on one subject. The connection is opened on
// first use and reused afterwards.
type Notifier struct {
	config  Config
	subject string
	source  string
	logger  logger.Logger
	dial    dialFunc
	now     func() time.Time

	mu  sync.Mutex
	pub publisher
}

func New(cfg *Config, log logger.Logger) *Notifier {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	n := &Notifier{
		config:  *cfg,
		subject: cfg.Subject,
		source:  "monitord/" + hostname,
		logger:  log,
		now:     time.Now,
	}

	if n.subject == "" {
		n.subject = defaultSubject
	}

	n.dial = n.connect

	return n
}

func (*Notifier) Name() string { return notify.KindNATS }

func (n *Notifier) Enabled() bool { return n.config.Enabled }

func (n *Notifier) timeout() time.Duration {
	return jsonhttp.Seconds(n.config.Timeout, defaultTimeout)
}

func (n *Notifier) connect(ctx context.Context) (publisher, error) {
	url := n.config.URL
	if url == "" {
		url = natsgo.DefaultURL
	}

	nc, err := natsutil.Connect(url, &natsutil.ConnectConfig{
		Name:      "monitord",
		CredsFile: n.config.CredsFile,
		TLS:       n.config.TLS,
		Timeout:   n.timeout(),
	}, n.logger)
	if err != nil {
		return nil, err
	}

	if n.config.Stream == "" {
		return natsutil.NewEventPublisher(nc, nil, n.timeout()), nil
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}

	if err := natsutil.EnsureStream(ctx, js, n.config.Stream, n.subject); err != nil {
		nc.Close()
		return nil, err
	}

	return natsutil.NewEventPublisher(nc, js, n.timeout()), nil
}

func (n *Notifier) publisher(ctx context.Context) (publisher, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pub != nil {
		return n.pub, nil
	}

	pub, err := n.dial(ctx)
	if err != nil {
		return nil, err
	}

	n.pub = pub

	return pub, nil
}

// Send publishes {"subject","message"}.
func (n *Notifier) Send(ctx context.Context, msg notify.Message) (bool, error) {
	return n.SendStructured(ctx, map[string]any{"subject": msg.Subject, "message": msg.Body})
}

// SendStructured publishes payload wrapped in a CloudEvent whose type is
// derived from the report and event type.
func (n *Notifier) SendStructured(ctx context.Context, payload map[string]any) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	pub, err := n.publisher(ctx)
	if err != nil {
		return false, err
	}

	info := notify.DescribePayload(payload)

	id := info.EventID
	if id == "" {
		id = uuid.NewString()
	}

	pubCtx, cancel := context.WithTimeout(ctx, n.timeout())
	defer cancel()

	event := natsutil.NewCloudEvent(id, n.source, eventTypeRoot+info.ReportType+"."+info.EventType, n.subject, n.now(), payload)
	if err := pub.Publish(pubCtx, n.subject, event); err != nil {
		return false, err
	}

	return true, nil
}

// Test connects when needed and reports the connection status.
func (n *Notifier) Test(ctx context.Context) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	pub, err := n.publisher(ctx)
	if err != nil {
		return false, err
	}

	if !pub.Connected() {
		return false, errNotConnected
	}

	return true, nil
}

// Close releases the connection.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pub != nil {
		n.pub.Close()
		n.pub = nil
	}

	return nil
}
