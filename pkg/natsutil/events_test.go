package natsutil

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

var errTestFixture = errors.New("fixture error")

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{
			name:     "adds subject when list empty",
			subjects: nil,
			subject:  "monitord.reports",
			want:     []string{"monitord.reports"},
		},
		{
			name:     "keeps list when wildcard matches",
			subjects: []string{"monitord.*"},
			subject:  "monitord.reports",
			want:     []string{"monitord.*"},
		},
		{
			name:     "keeps list when greater wildcard matches",
			subjects: []string{"monitord.>"},
			subject:  "monitord.reports.web1",
			want:     []string{"monitord.>"},
		},
		{
			name:     "appends when unmatched",
			subjects: []string{"logs.syslog.*"},
			subject:  "monitord.reports",
			want:     []string{"logs.syslog.*", "monitord.reports"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := ensureSubjectList(append([]string(nil), tc.subjects...), tc.subject)

			if len(result) != len(tc.want) {
				t.Fatalf("expected %d subjects, got %d", len(tc.want), len(result))
			}

			for i := range tc.want {
				if tc.want[i] != result[i] {
					t.Fatalf("result[%d] = %q, want %q", i, result[i], tc.want[i])
				}
			}
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact match", "monitord.reports", "monitord.reports", true},
		{"single wildcard", "monitord.*.events", "monitord.web1.events", true},
		{"greater wildcard", "monitord.>", "monitord.reports.web1", true},
		{"greater needs a token", "monitord.>", "monitord", false},
		{"no match length", "monitord.*", "monitord.reports.web1", false},
		{"no match tokens", "logs.syslog.*", "monitord.reports", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := matchesSubject(tc.pattern, tc.subject); got != tc.expected {
				t.Fatalf("matchesSubject(%q, %q) = %t, want %t", tc.pattern, tc.subject, got, tc.expected)
			}
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"jetstream no stream response", jetstream.ErrNoStreamResponse, true},
		{"jetstream stream not found", jetstream.ErrStreamNotFound, true},
		{"nats no stream response", nats.ErrNoStreamResponse, true},
		{"nats stream not found", nats.ErrStreamNotFound, true},
		{"nats no responders", nats.ErrNoResponders, true},
		{"other error", errTestFixture, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isStreamMissingErr(tc.err); got != tc.expected {
				t.Fatalf("isStreamMissingErr(%v) = %t, want %t", tc.err, got, tc.expected)
			}
		})
	}
}

func TestNewCloudEvent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	event := NewCloudEvent("id-1", "monitord/web1", "io.monitord.event.service_down", "monitord.reports", at,
		map[string]any{"event_type": "service_down"})

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded["specversion"] != "1.0" || decoded["id"] != "id-1" || decoded["datacontenttype"] != "application/json" {
		t.Fatalf("unexpected envelope: %v", decoded)
	}

	if decoded["time"] != "2026-03-01T05:00:00Z" {
		t.Fatalf("time = %v, want UTC", decoded["time"])
	}
}

func TestTLSConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	badCA := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(badCA, []byte("not a certificate"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := TLSConfig(&TLSFiles{CAFile: badCA}); !errors.Is(err, ErrCAParsingFailed) {
		t.Fatalf("expected ErrCAParsingFailed, got %v", err)
	}

	if _, err := TLSConfig(&TLSFiles{CertFile: "client.pem"}); !errors.Is(err, ErrIncompleteKeyPair) {
		t.Fatalf("expected ErrIncompleteKeyPair, got %v", err)
	}

	if _, err := TLSConfig(&TLSFiles{CAFile: filepath.Join(dir, "missing.pem")}); err == nil {
		t.Fatal("expected error for missing CA file")
	}

	conf, err := TLSConfig(&TLSFiles{ServerName: "nats.internal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conf.ServerName != "nats.internal" || conf.RootCAs != nil {
		t.Fatalf("unexpected config: %+v", conf)
	}

	if (&TLSFiles{}).IsSet() {
		t.Fatal("empty TLSFiles should not be set")
	}
}
