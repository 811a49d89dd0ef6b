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

// Package models holds the configuration and result types shared by the
// monitord engines, the notification router and the agent.
package models

import "strings"

// Severity is the ordered importance of a report.
type Severity string

const (
	SeverityDebug    Severity = "debug"
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

//nolint:gochecknoglobals // lookup table
var severityRank = map[Severity]int{
	SeverityDebug:    0,
	SeverityInfo:     1,
	SeverityLow:      2,
	SeverityMedium:   3,
	SeverityHigh:     4,
	SeverityCritical: 5,
}

// Normalize lowercases s and maps the empty value to info.
func (s Severity) Normalize() Severity {
	if s == "" {
		return SeverityInfo
	}

	return Severity(strings.ToLower(string(s)))
}

// Rank orders severities; unknown values rank as info.
func (s Severity) Rank() int {
	if rank, ok := severityRank[s.Normalize()]; ok {
		return rank
	}

	return severityRank[SeverityInfo]
}

// AtLeast reports whether s is as severe as minimum.
func (s Severity) AtLeast(minimum Severity) bool {
	return s.Rank() >= minimum.Rank()
}

// Known reports whether s names one of the six severities. Empty is known
// and means info.
func (s Severity) Known() bool {
	_, ok := severityRank[s.Normalize()]

	return ok
}
