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

// Package notify routes reports to the configured notification channels,
// applying severity filters, rate limits and redaction per channel.
package notify

//go:generate mockgen -destination=mock_channel.go -package=notify github.com/carverauto/monitord/pkg/notify Channel

import "context"

// Channel kinds, in dispatch order.
const (
	KindEmail    = "email"
	KindTelegram = "telegram"
	KindWebhook  = "webhook"
	KindSlack    = "slack"
	KindDiscord  = "discord"
	KindNATS     = "nats"
	KindKafka    = "kafka"
)

// Kinds returns every channel kind in dispatch order.
func Kinds() []string {
	return []string{KindEmail, KindTelegram, KindWebhook, KindSlack, KindDiscord, KindNATS, KindKafka}
}

// Message is a rendered text notification.
type Message struct {
	Subject string
	Body    string
	HTML    bool
}

// Channel delivers notifications to one destination. Text channels receive
// Send, structured channels receive SendStructured.
type Channel interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, msg Message) (bool, error)
	SendStructured(ctx context.Context, payload map[string]any) (bool, error)
	Test(ctx context.Context) (bool, error)
}

// structured reports whether kind takes a JSON payload instead of text.
func structured(kind string) bool {
	switch kind {
	case KindWebhook, KindNATS, KindKafka:
		return true
	default:
		return false
	}
}

// PayloadInfo identifies a structured payload for transports that key or
// type their messages.
type PayloadInfo struct {
	ReportType string
	EventType  string
	EventID    string
}

// DescribePayload reads the routing fields of a structured payload. Custom
// messages, which carry no report, describe as report type "message".
func DescribePayload(payload map[string]any) PayloadInfo {
	info := PayloadInfo{ReportType: "message", EventType: "custom"}

	if rt, ok := payload["report_type"].(string); ok && rt != "" {
		info.ReportType = rt
	}

	report, ok := payload["report"].(map[string]any)
	if !ok {
		return info
	}

	if et, ok := report["event_type"].(string); ok && et != "" {
		info.EventType = et
	}

	if id, ok := report["event_id"].(string); ok {
		info.EventID = id
	}

	return info
}
