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

package service

//go:generate mockgen -destination=mock_service.go -package=service github.com/carverauto/monitord/pkg/monitor/service Prober,Notifier

import (
	"context"

	"github.com/carverauto/monitord/pkg/models"
)

// Prober runs one check method against a service spec.
type Prober interface {
	Check(ctx context.Context, spec *models.ServiceSpec) models.ServiceCheckResult
}

// Notifier receives the pre-action event emitted before a restart.
type Notifier interface {
	DispatchEvent(ctx context.Context, report *models.Report) bool
}
