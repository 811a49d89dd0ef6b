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

// Package kafka writes notifications to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/notify"
	"github.com/carverauto/monitord/pkg/notify/channels/jsonhttp"
)

const (
	defaultTopic   = "monitord.reports"
	defaultTimeout = 10 * time.Second
)

var errNoBrokers = errors.New("no kafka brokers configured")

// Config is the notifications.kafka block.
type Config struct {
	notify.ChannelSettings `yaml:",inline"`

	Enabled         bool     `yaml:"enabled"`
	Brokers         []string `yaml:"brokers"`
	Topic           string   `yaml:"topic"`
	ClientID        string   `yaml:"client_id"`
	Timeout         int      `yaml:"timeout"`
	AutoCreateTopic bool     `yaml:"auto_create_topic"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Notifier writes one JSON message per notification, keyed by event type
// so events of one kind stay ordered within a partition.
type Notifier struct {
	config Config
	writer messageWriter
	dial   func(ctx context.Context, broker string) error
	logger logger.Logger
	now    func() time.Time
}

func New(cfg *Config, log logger.Logger) *Notifier {
	timeout := jsonhttp.Seconds(cfg.Timeout, defaultTimeout)

	topic := cfg.Topic
	if topic == "" {
		topic = defaultTopic
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "monitord"
	}

	dialer := &kafka.Dialer{Timeout: timeout, ClientID: clientID}

	n := &Notifier{
		config: *cfg,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           timeout,
			AllowAutoTopicCreation: cfg.AutoCreateTopic,
			Transport:              &kafka.Transport{ClientID: clientID, DialTimeout: timeout},
		},
		logger: log,
		now:    time.Now,
	}

	n.dial = func(ctx context.Context, broker string) error {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			return err
		}

		return conn.Close()
	}

	return n
}

func (*Notifier) Name() string { return notify.KindKafka }

func (n *Notifier) Enabled() bool { return n.config.Enabled }

// Send writes {"subject","message"}.
func (n *Notifier) Send(ctx context.Context, msg notify.Message) (bool, error) {
	return n.SendStructured(ctx, map[string]any{"subject": msg.Subject, "message": msg.Body})
}

// SendStructured writes payload as JSON with the report type in a header.
func (n *Notifier) SendStructured(ctx context.Context, payload map[string]any) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if len(n.config.Brokers) == 0 {
		return false, errNoBrokers
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to encode payload: %w", err)
	}

	info := notify.DescribePayload(payload)

	msg := kafka.Message{
		Key:   []byte(info.EventType),
		Value: value,
		Time:  n.now(),
		Headers: []kafka.Header{
			{Key: "report_type", Value: []byte(info.ReportType)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return false, fmt.Errorf("failed to write kafka message: %w", err)
	}

	return true, nil
}

// Test dials the first broker.
func (n *Notifier) Test(ctx context.Context) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if len(n.config.Brokers) == 0 {
		return false, errNoBrokers
	}

	if err := n.dial(ctx, n.config.Brokers[0]); err != nil {
		return false, fmt.Errorf("failed to reach kafka broker %s: %w", n.config.Brokers[0], err)
	}

	return true, nil
}

// Close flushes and closes the writer.
func (n *Notifier) Close() error {
	return n.writer.Close()
}
