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

package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/carverauto/monitord/pkg/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultHTTPMethod  = http.MethodGet
)

//nolint:gochecknoglobals // default expectation for HTTP probes
var defaultExpectedStatusCodes = []int{200, 204, 301, 302}

// httpClientFor builds a client for one probe. Forcing IPv4 is expressed as
// the dial network rather than a process-wide resolver override.
func httpClientFor(spec *models.ServiceSpec, onlyIPv4 bool, timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}

	network := "tcp"
	if onlyIPv4 {
		network = "tcp4"
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		TLSHandshakeTimeout: timeout,
		DisableKeepAlives:   true,
	}

	if spec.VerifyTLS != nil && !*spec.VerifyTLS {
		//nolint:gosec // explicitly requested per service
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{Transport: transport, Timeout: timeout}
}

func (p *Probe) checkHTTP(ctx context.Context, spec *models.ServiceSpec) Verdict {
	status := p.probeHTTP(ctx, spec)

	return Verdict{Running: status.Running, Message: status.Message, HTTP: status}
}

func (p *Probe) probeHTTP(ctx context.Context, spec *models.ServiceSpec) *models.HTTPStatus {
	if spec.URL == "" {
		return &models.HTTPStatus{Message: "Missing URL for HTTP check"}
	}

	timeout := defaultHTTPTimeout
	if spec.TimeoutSeconds > 0 {
		timeout = time.Duration(spec.TimeoutSeconds * float64(time.Second))
	}

	expected := spec.ExpectedStatusCodes
	if len(expected) == 0 {
		expected = defaultExpectedStatusCodes
	}

	method := strings.ToUpper(spec.HTTPMethod)
	if method == "" {
		method = defaultHTTPMethod
	}

	req, err := http.NewRequestWithContext(ctx, method, spec.URL, http.NoBody)
	if err != nil {
		return &models.HTTPStatus{Message: fmt.Sprintf("Connection error: %v", err)}
	}

	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}

	client := httpClientFor(spec, p.onlyIPv4, timeout)

	start := time.Now()

	resp, err := client.Do(req)

	elapsedMS := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		return &models.HTTPStatus{
			Message:        fmt.Sprintf("Connection error: %v", err),
			ResponseTimeMS: elapsedMS,
		}
	}

	_ = resp.Body.Close()

	code := resp.StatusCode
	status := &models.HTTPStatus{StatusCode: code, ResponseTimeMS: elapsedMS}

	switch {
	case spec.MaxResponseTimeMS > 0 && elapsedMS > spec.MaxResponseTimeMS:
		status.Message = fmt.Sprintf("Slow response: %.0fms", elapsedMS)
	case !containsCode(expected, code) && code >= http.StatusBadRequest:
		status.Message = fmt.Sprintf("HTTP error: %d", code)
	case !containsCode(expected, code):
		status.Message = fmt.Sprintf("Unexpected HTTP status: %d", code)
	default:
		status.Running = true
		status.Message = fmt.Sprintf("HTTP %d (%.0fms)", code, elapsedMS)
	}

	return status
}

func containsCode(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}

	return false
}
