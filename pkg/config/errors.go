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

package config

import "errors"

var (
	ErrConfigNotFound         = errors.New("configuration file not found")
	ErrInvalidDocument        = errors.New("configuration must be a mapping")
	ErrUnknownCheckMethod     = errors.New("unknown check method")
	ErrUnknownFailurePolicy   = errors.New("unknown action_on_failure")
	ErrUnknownMemoryCondition = errors.New("unknown memory condition")
	ErrUnknownSeverity        = errors.New("unknown severity")
	ErrNegativeValue          = errors.New("value must not be negative")
	ErrUnknownFormat          = errors.New("unknown template format")
)
