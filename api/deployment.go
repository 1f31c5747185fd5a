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
	"github.com/SENERGY-Platform/mgw-component-manager/util"
)

func (a *Api) DeployComponent(ctx context.Context, cID string, config lib_model.DeployConfig) (lib_model.DeploymentResult, error) {
	a.km.Lock(cID)
	defer a.km.Unlock(cID)
	return a.deploy(ctx, cID, config)
}

func (a *Api) deploy(ctx context.Context, cID string, config lib_model.DeployConfig) (lib_model.DeploymentResult, error) {
	comp, err := a.registryHandler.Get(ctx, cID)
	if err != nil {
		return lib_model.DeploymentResult{}, err
	}
	if len(comp.Dependencies) > 0 {
		if err = a.dependencyHandler.Validate(ctx, comp.Dependencies); err != nil {
			return lib_model.DeploymentResult{}, err
		}
	}
	if _, err = a.createSnapshot(ctx, cID, comp.ComponentDefinition); err != nil {
		return lib_model.DeploymentResult{}, err
	}
	result := a.deploymentHandler.Deploy(ctx, comp.ComponentDefinition, config)
	if !result.Success {
		return result, nil
	}
	if err = a.healthHandler.StartMonitoring(comp.ComponentDefinition); err != nil {
		util.Logger.Errorf("starting health monitoring for component '%s' failed: %s", cID, err)
	}
	if comp.Scaling.MaxReplicas > comp.Scaling.MinReplicas {
		if err = a.scalingHandler.EnableAutoScaling(cID, comp.Scaling); err != nil {
			util.Logger.Errorf("enabling autoscaling for component '%s' failed: %s", cID, err)
		}
	} else if err = a.scalingHandler.UpdatePolicy(ctx, cID, comp.Scaling); err != nil {
		util.Logger.Errorf("setting scaling policy for component '%s' failed: %s", cID, err)
	}
	a.mu.Lock()
	a.recovered.Remove(cID)
	a.mu.Unlock()
	a.emit(lib_model.ComponentDeployed, cID, fmt.Sprintf("component '%s' deployed", cID))
	return result, nil
}

func (a *Api) RestartComponent(ctx context.Context, cID string) error {
	a.km.Lock(cID)
	defer a.km.Unlock(cID)
	if _, err := a.registryHandler.Get(ctx, cID); err != nil {
		return err
	}
	return a.deploymentHandler.Restart(ctx, cID)
}

func (a *Api) DeployComponents(ctx context.Context, cIDs []string) (string, error) {
	order, err := a.dependencyHandler.GetInstallOrder(ctx, cIDs)
	if err != nil {
		return "", err
	}
	return a.jobHandler.Create(fmt.Sprintf("deploy components '%v'", order), func(ctx context.Context, cf context.CancelFunc) error {
		defer cf()
		for _, cID := range order {
			if ctx.Err() != nil {
				return lib_model.NewInternalError(ctx.Err())
			}
			a.km.Lock(cID)
			result, err := a.deploy(ctx, cID, lib_model.DeployConfig{})
			a.km.Unlock(cID)
			if err != nil {
				return err
			}
			if !result.Success {
				return lib_model.NewInternalError(fmt.Errorf("deploying component '%s' failed: %s", cID, result.Message))
			}
		}
		return nil
	})
}

func (a *Api) RemoveComponents(ctx context.Context, filter lib_model.ComponentFilter) (string, error) {
	components, err := a.registryHandler.List(ctx, filter)
	if err != nil {
		return "", err
	}
	var cIDs []string
	for id := range components {
		cIDs = append(cIDs, id)
	}
	order, err := a.dependencyHandler.GetInstallOrder(ctx, cIDs)
	if err != nil {
		return "", err
	}
	// dependents go first, reverse of install order
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return a.jobHandler.Create(fmt.Sprintf("remove components '%v'", order), func(ctx context.Context, cf context.CancelFunc) error {
		defer cf()
		for _, cID := range order {
			if ctx.Err() != nil {
				return lib_model.NewInternalError(ctx.Err())
			}
			if err := a.RemoveComponent(ctx, cID); err != nil {
				return err
			}
		}
		return nil
	})
}
