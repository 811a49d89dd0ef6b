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

package resource

import "errors"

var (
	errRecoveryCommandShape = errors.New("recovery_command must be a string or a list")
	errUnterminatedQuote    = errors.New("unterminated quote")
	errTrailingEscape       = errors.New("trailing backslash")
	errEmptyRecoveryCommand = errors.New("recovery command is empty after parsing")
	errZeroTotal            = errors.New("reported total size is zero")
	errNoCounters           = errors.New("no network counters reported")
)
