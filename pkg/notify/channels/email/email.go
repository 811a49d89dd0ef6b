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

// Package email delivers notifications over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/monitord/pkg/logger"
	"github.com/carverauto/monitord/pkg/notify"
	"github.com/carverauto/monitord/pkg/notify/channels/jsonhttp"
)

const (
	defaultPort          = 587
	defaultTimeout       = 30 * time.Second
	defaultFromName      = "monitord"
	defaultSubjectPrefix = "[monitord]"
)

var (
	errNoRecipients = errors.New("no email recipients configured")
	errNoSender     = errors.New("email from_address is not configured")
)

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UseTLS   *bool  `yaml:"use_tls"`
	UseSSL   bool   `yaml:"use_ssl"`
	Timeout  int    `yaml:"timeout"`
}

// Config is the notifications.email block.
type Config struct {
	notify.ChannelSettings `yaml:",inline"`

	Enabled         bool       `yaml:"enabled"`
	SMTP            SMTPConfig `yaml:"smtp"`
	FromAddress     string     `yaml:"from_address"`
	FromName        string     `yaml:"from_name"`
	ToAddresses     []string   `yaml:"to_addresses"`
	SubjectPrefix   *string    `yaml:"subject_prefix"`
	IncludeHostname *bool      `yaml:"include_hostname"`
}

// Notifier sends mail through one SMTP server.
type Notifier struct {
	config   Config
	hostname string
	logger   logger.Logger
	now      func() time.Time
}

func New(cfg *Config, log logger.Logger) *Notifier {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return &Notifier{config: *cfg, hostname: hostname, logger: log, now: time.Now}
}

func (*Notifier) Name() string { return notify.KindEmail }

func (n *Notifier) Enabled() bool { return n.config.Enabled }

func (n *Notifier) address() string {
	host := n.config.SMTP.Host
	if host == "" {
		host = "localhost"
	}

	port := n.config.SMTP.Port
	if port == 0 {
		port = defaultPort
	}

	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Subject applies the configured prefix and hostname suffix.
func (n *Notifier) Subject(subject string) string {
	prefix := defaultSubjectPrefix
	if n.config.SubjectPrefix != nil {
		prefix = *n.config.SubjectPrefix
	}

	full := strings.TrimSpace(prefix + " " + subject)

	if n.config.IncludeHostname == nil || *n.config.IncludeHostname {
		full += " [" + n.hostname + "]"
	}

	return full
}

// Send mails msg to every recipient in one transaction.
func (n *Notifier) Send(ctx context.Context, msg notify.Message) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	if len(n.config.ToAddresses) == 0 {
		return false, errNoRecipients
	}

	if n.config.FromAddress == "" {
		return false, errNoSender
	}

	data, err := n.compose(msg)
	if err != nil {
		return false, err
	}

	if err := n.deliver(ctx, data); err != nil {
		return false, err
	}

	n.logger.Info().Int("recipients", len(n.config.ToAddresses)).Msg("Email notification sent")

	return true, nil
}

// SendStructured mails the payload as indented JSON.
func (n *Notifier) SendStructured(ctx context.Context, payload map[string]any) (bool, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return false, err
	}

	subject, _ := payload["subject"].(string)
	if subject == "" {
		subject = "Structured report"
	}

	return n.Send(ctx, notify.Message{Subject: subject, Body: string(data)})
}

// Test connects, greets and, when credentials are set, authenticates.
func (n *Notifier) Test(ctx context.Context) (bool, error) {
	if !n.config.Enabled {
		return false, nil
	}

	client, err := n.dial(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = client.Close() }()

	if err := client.Quit(); err != nil {
		return false, fmt.Errorf("smtp quit failed: %w", err)
	}

	n.logger.Info().Str("server", n.address()).Msg("Email SMTP connection test successful")

	return true, nil
}

func (n *Notifier) timeout() time.Duration {
	return jsonhttp.Seconds(n.config.SMTP.Timeout, defaultTimeout)
}

// dial returns a client that has completed EHLO, STARTTLS and AUTH as
// configured.
func (n *Notifier) dial(ctx context.Context) (*smtp.Client, error) {
	addr := n.address()
	host, _, _ := net.SplitHostPort(addr)
	timeout := n.timeout()

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		conn net.Conn
		err  error
	)

	if n.config.SMTP.UseSSL {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{}, Config: &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}}
		conn, err = dialer.DialContext(dialCtx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(dialCtx, "tcp", addr)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp greeting failed: %w", err)
	}

	if err := client.Hello(n.hostname); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("smtp EHLO failed: %w", err)
	}

	useTLS := n.config.SMTP.UseTLS == nil || *n.config.SMTP.UseTLS
	if useTLS && !n.config.SMTP.UseSSL {
		if err := client.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp STARTTLS failed: %w", err)
		}
	}

	if n.config.SMTP.Username != "" && n.config.SMTP.Password != "" {
		auth := smtp.PlainAuth("", n.config.SMTP.Username, n.config.SMTP.Password, host)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp AUTH failed: %w", err)
		}
	}

	return client, nil
}

func (n *Notifier) deliver(ctx context.Context, data []byte) error {
	client, err := n.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(n.config.FromAddress); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}

	for _, rcpt := range n.config.ToAddresses {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s failed: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp message rejected: %w", err)
	}

	return client.Quit()
}

// compose renders a multipart/alternative message with a single text or
// HTML part.
func (n *Notifier) compose(msg notify.Message) ([]byte, error) {
	fromName := n.config.FromName
	if fromName == "" {
		fromName = defaultFromName
	}

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	contentType := "text/plain; charset=utf-8"
	if msg.HTML {
		contentType = "text/html; charset=utf-8"
	}

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}

	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	if err := qp.Close(); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	from := mail.Address{Name: fromName, Address: n.config.FromAddress}

	var out bytes.Buffer

	headers := [][2]string{
		{"From", from.String()},
		{"To", strings.Join(n.config.ToAddresses, ", ")},
		{"Subject", mime.QEncoding.Encode("utf-8", n.Subject(msg.Subject))},
		{"Date", n.now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}

	for _, h := range headers {
		fmt.Fprintf(&out, "%s: %s\r\n", h[0], h[1])
	}

	out.WriteString("\r\n")
	out.Write(body.Bytes())

	return out.Bytes(), nil
}
