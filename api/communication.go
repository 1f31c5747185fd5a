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

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

func (a *Api) SetupCommunication(ctx context.Context, cID string, config lib_model.CommConfig) error {
	a.km.Lock(cID)
	defer a.km.Unlock(cID)
	if _, err := a.registryHandler.Get(ctx, cID); err != nil {
		return err
	}
	_, err := a.commHandler.Setup(ctx, cID, config)
	return err
}
