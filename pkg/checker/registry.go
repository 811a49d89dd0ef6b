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
	"fmt"

	"github.com/carverauto/monitord/pkg/models"
)

// Verdict is what a single check method concludes about a service.
type Verdict struct {
	Running bool
	Message string
	HTTP    *models.HTTPStatus
}

// Handler implements one check method.
type Handler func(ctx context.Context, spec *models.ServiceSpec) Verdict

// Registry defines how to store and retrieve check method handlers.
type Registry interface {
	Register(method models.CheckMethod, handler Handler)
	Get(method models.CheckMethod) (Handler, error)
}

// handlerRegistry is a simple in-memory implementation of Registry.
type handlerRegistry struct {
	handlers map[models.CheckMethod]Handler
}

// NewRegistry creates a new handler registry.
func NewRegistry() Registry {
	return &handlerRegistry{
		handlers: make(map[models.CheckMethod]Handler),
	}
}

// Register adds a handler for a check method, replacing any previous one.
func (r *handlerRegistry) Register(method models.CheckMethod, handler Handler) {
	r.handlers[method] = handler
}

// Get retrieves the handler for method.
func (r *handlerRegistry) Get(method models.CheckMethod) (Handler, error) {
	h, ok := r.handlers[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNoChecker, method)
	}

	return h, nil
}
