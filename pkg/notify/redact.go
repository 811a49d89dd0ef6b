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

package notify

import (
	"regexp"

	"github.com/carverauto/monitord/pkg/logger"
)

// redactor replaces configured patterns, case-insensitively, in outgoing
// content.
type redactor struct {
	patterns    []*regexp.Regexp
	replacement string
}

func newRedactor(cfg *ContentFilterConfig, log logger.Logger) *redactor {
	r := &redactor{replacement: cfg.RedactReplacement}
	if r.replacement == "" {
		r.replacement = defaultReplacement
	}

	if cfg.Enabled != nil && !*cfg.Enabled {
		return r
	}

	for _, pattern := range cfg.RedactPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			log.Warn().Err(err).Str("pattern", pattern).Msg("Skipping invalid redact pattern")
			continue
		}

		r.patterns = append(r.patterns, re)
	}

	return r
}

func (r *redactor) text(s string) string {
	for _, re := range r.patterns {
		s = re.ReplaceAllLiteralString(s, r.replacement)
	}

	return s
}

// payload returns a copy of m with every string value redacted, descending
// into nested maps and lists.
func (r *redactor) payload(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = r.value(v)
	}

	return out
}

func (r *redactor) value(v any) any {
	switch t := v.(type) {
	case string:
		return r.text(t)
	case map[string]any:
		return r.payload(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = r.value(item)
		}

		return out
	case []string:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = r.text(item)
		}

		return out
	default:
		return v
	}
}
