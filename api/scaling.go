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

func (a *Api) ScaleComponent(ctx context.Context, cID string, config lib_model.ScalingConfig) error {
	a.km.Lock(cID)
	defer a.km.Unlock(cID)
	if _, err := a.registryHandler.Get(ctx, cID); err != nil {
		return err
	}
	if err := a.scalingHandler.Scale(ctx, cID, config); err != nil {
		return err
	}
	if config.Replicas != nil {
		a.emit(lib_model.ComponentScaled, cID, fmt.Sprintf("component '%s' scaled to %d replicas", cID, *config.Replicas))
	}
	return nil
}
