package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// CloudEvent is a CloudEvents 1.0 envelope in structured JSON mode.
type CloudEvent struct {
	SpecVersion     string     `json:"specversion"`
	ID              string     `json:"id"`
	Source          string     `json:"source"`
	Type            string     `json:"type"`
	DataContentType string     `json:"datacontenttype"`
	Subject         string     `json:"subject,omitempty"`
	Time            *time.Time `json:"time,omitempty"`
	Data            any        `json:"data,omitempty"`
}

// NewCloudEvent wraps data in a JSON CloudEvent.
func NewCloudEvent(id, source, eventType, subject string, at time.Time, data any) *CloudEvent {
	at = at.UTC()

	return &CloudEvent{
		SpecVersion:     "1.0",
		ID:              id,
		Source:          source,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &at,
		Data:            data,
	}
}

// EventPublisher publishes CloudEvents to core NATS, or to JetStream when a
// stream is configured.
type EventPublisher struct {
	nc           *nats.Conn
	js           jetstream.JetStream
	flushTimeout time.Duration
}

// NewEventPublisher publishes on nc. js may be nil for core NATS.
func NewEventPublisher(nc *nats.Conn, js jetstream.JetStream, flushTimeout time.Duration) *EventPublisher {
	return &EventPublisher{nc: nc, js: js, flushTimeout: flushTimeout}
}

// Publish sends event on subject. Core NATS publishes are flushed so a
// dead server surfaces as an error.
func (p *EventPublisher) Publish(ctx context.Context, subject string, event *CloudEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if p.js != nil {
		if _, err := p.js.Publish(ctx, subject, data); err != nil {
			return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
		}

		return nil
	}

	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}

	if err := p.nc.FlushTimeout(p.flushTimeout); err != nil {
		return fmt.Errorf("failed to flush event %s: %w", event.ID, err)
	}

	return nil
}

// Connected reports whether the underlying connection is up.
func (p *EventPublisher) Connected() bool {
	return p.nc != nil && p.nc.IsConnected()
}

// Close closes the connection.
func (p *EventPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// EnsureStream makes sure streamName exists and captures subject.
func EnsureStream(ctx context.Context, js jetstream.JetStream, streamName, subject string) error {
	stream, err := js.Stream(ctx, streamName)
	if err != nil {
		if !isStreamMissingErr(err) {
			return fmt.Errorf("failed to look up stream %s: %w", streamName, err)
		}

		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: []string{subject},
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}

		return nil
	}

	cfg := stream.CachedInfo().Config

	subjects := ensureSubjectList(cfg.Subjects, subject)
	if len(subjects) == len(cfg.Subjects) {
		return nil
	}

	cfg.Subjects = subjects

	if _, err := js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to add subject %s to stream %s: %w", subject, streamName, err)
	}

	return nil
}

// ensureSubjectList appends subject unless an existing pattern covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, pattern := range subjects {
		if matchesSubject(pattern, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject applies NATS wildcard rules: '*' matches one token, '>'
// matches the rest.
func matchesSubject(pattern, subject string) bool {
	pTokens := strings.Split(pattern, ".")
	sTokens := strings.Split(subject, ".")

	for i, tok := range pTokens {
		if tok == ">" {
			return len(sTokens) > i
		}

		if i >= len(sTokens) {
			return false
		}

		if tok != "*" && tok != sTokens[i] {
			return false
		}
	}

	return len(pTokens) == len(sTokens)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}
