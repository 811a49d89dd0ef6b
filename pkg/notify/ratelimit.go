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
	"sync"
	"time"
)

const rateWindow = time.Hour

// limiter keeps per-key delivery history for rate limiting. Only successful
// deliveries are recorded.
type limiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
}

func newLimiter() *limiter {
	return &limiter{history: make(map[string][]time.Time)}
}

// allow checks the minimum interval against the latest delivery, then the
// hourly cap against deliveries inside the last hour.
func (l *limiter) allow(key string, policy *RateLimitConfig, now time.Time) bool {
	if !policy.active() {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.history[key]

	if n := len(history); n > 0 && now.Sub(history[n-1]) < policy.minInterval() {
		return false
	}

	kept := history[:0]
	for _, sent := range history {
		if now.Sub(sent) < rateWindow {
			kept = append(kept, sent)
		}
	}

	l.history[key] = kept

	return len(kept) < policy.maxPerHour()
}

func (l *limiter) record(key string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.history[key] = append(l.history[key], now)
}
