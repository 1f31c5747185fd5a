/*
 * Copyright 2024 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"fmt"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

func (a *Api) HealthCheck(ctx context.Context, cID string) (lib_model.HealthStatus, error) {
	comp, err := a.registryHandler.Get(ctx, cID)
	if err != nil {
		return lib_model.HealthStatus{}, err
	}
	if comp.HealthCheck.Type == "" {
		return lib_model.HealthStatus{}, lib_model.NewNotFoundError(fmt.Errorf("no health check configured for component '%s'", cID))
	}
	return a.healthHandler.Check(ctx, comp.ComponentDefinition), nil
}
