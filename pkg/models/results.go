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

package models

import "time"

// Action names recorded in ActionResult.Action.
const (
	ActionRestartService  = "restart_service"
	ActionRecoverySkipped = "recovery_skipped"
	ActionRecoveryBlocked = "recovery_blocked"

	ActionTakenRestartAttempted = "restart_attempted"
)

// HTTPStatus carries the outcome of an HTTP or HTTPS probe.
type HTTPStatus struct {
	Running        bool    `json:"running"`
	Message        string  `json:"message"`
	StatusCode     int     `json:"status_code,omitempty"`
	ResponseTimeMS float64 `json:"response_time_ms,omitempty"`
}

// ServiceCheckResult is the outcome of checking one service in one cycle.
type ServiceCheckResult struct {
	Name           string        `json:"name"`
	Running        bool          `json:"running"`
	Message        string        `json:"message"`
	CheckMethod    CheckMethod   `json:"check_method"`
	Critical       bool          `json:"critical"`
	Description    string        `json:"description"`
	HTTPStatus     *HTTPStatus   `json:"http_status,omitempty"`
	Error          string        `json:"error,omitempty"`
	EventTime      time.Time     `json:"event_timestamp,omitempty"`
	ActionTaken    string        `json:"action_taken,omitempty"`
	RestartSuccess bool          `json:"restart_success,omitempty"`
	ActionResult   *ActionResult `json:"action_result,omitempty"`
}

// ActionResult describes a recovery decision for a failing service.
type ActionResult struct {
	Action    string    `json:"action"`
	Command   string    `json:"command,omitempty"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}
