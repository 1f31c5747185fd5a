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
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
	context_hdl "github.com/SENERGY-Platform/mgw-component-manager/util/context_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/util/set"
)

func (a *Api) RegisterComponent(ctx context.Context, def lib_model.ComponentDefinition) error {
	a.km.Lock(def.ID)
	defer a.km.Unlock(def.ID)
	if err := a.checkDependencyCycle(ctx, def); err != nil {
		return err
	}
	if err := a.registryHandler.Register(ctx, def); err != nil {
		return err
	}
	util.ComponentsRegistered.Inc()
	a.emit(lib_model.ComponentRegistered, def.ID, fmt.Sprintf("component '%s' registered", def.ID))
	return nil
}

// checkDependencyCycle walks the registered dependency graph from the new
// definition's dependencies. Unregistered dependencies are tolerated,
// components may be registered in any order.
func (a *Api) checkDependencyCycle(ctx context.Context, def lib_model.ComponentDefinition) error {
	visited := set.New[string]()
	var walk func(cID string, path []string) error
	walk = func(cID string, path []string) error {
		if cID == def.ID {
			return lib_model.NewInvalidInputError(fmt.Errorf("dependency cycle detected: %s -> %s", strings.Join(append([]string{def.ID}, path...), " -> "), def.ID))
		}
		if visited.Has(cID) {
			return nil
		}
		visited.Add(cID)
		comp, err := a.registryHandler.Get(ctx, cID)
		if err != nil {
			var nfe *lib_model.NotFoundError
			if errors.As(err, &nfe) {
				return nil
			}
			return err
		}
		for _, dID := range comp.Dependencies {
			if err = walk(dID, append(path, cID)); err != nil {
				return err
			}
		}
		return nil
	}
	for _, dID := range def.Dependencies {
		if err := walk(dID, nil); err != nil {
			return err
		}
	}
	return nil
}

func (a *Api) ListComponents(ctx context.Context, filter lib_model.ComponentFilter) (map[string]lib_model.ComponentDefinition, error) {
	components, err := a.registryHandler.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	defs := make(map[string]lib_model.ComponentDefinition)
	for id, comp := range components {
		defs[id] = comp.ComponentDefinition
	}
	return defs, nil
}

func (a *Api) GetComponent(ctx context.Context, cID string) (lib_model.ComponentDefinition, error) {
	comp, err := a.registryHandler.Get(ctx, cID)
	if err != nil {
		return lib_model.ComponentDefinition{}, err
	}
	return comp.ComponentDefinition, nil
}

func (a *Api) UpdateComponent(ctx context.Context, cID string, update lib_model.ComponentUpdate) error {
	a.km.Lock(cID)
	defer a.km.Unlock(cID)
	comp, err := a.registryHandler.Get(ctx, cID)
	if err != nil {
		return err
	}
	created, err := a.createSnapshot(ctx, cID, comp.ComponentDefinition)
	if err != nil {
		return err
	}
	def, err := a.registryHandler.Update(ctx, cID, update)
	if err != nil {
		// nothing was mutated, discard the snapshot taken above
		if created {
			if dErr := a.dropLatestSnapshot(ctx, cID); dErr != nil {
				util.Logger.Errorf("discarding snapshot for component '%s' failed: %s", cID, dErr)
			}
		}
		return err
	}
	if err = a.propagateDefinition(ctx, def); err != nil {
		a.tryRollback(ctx, cID, err)
		return err
	}
	a.emit(lib_model.ComponentUpdated, cID, fmt.Sprintf("component '%s' updated", cID))
	return nil
}

// propagateDefinition pushes a changed definition to the deployer, health
// monitor and scaler if the component is currently deployed.
func (a *Api) propagateDefinition(ctx context.Context, def lib_model.ComponentDefinition) error {
	if len(def.Dependencies) > 0 {
		if err := a.dependencyHandler.Validate(ctx, def.Dependencies); err != nil {
			return err
		}
	}
	if _, err := a.deploymentHandler.Status(def.ID); err != nil {
		var nfe *lib_model.NotFoundError
		if errors.As(err, &nfe) {
			return nil
		}
		return err
	}
	result := a.deploymentHandler.Update(ctx, def)
	if !result.Success {
		return lib_model.NewInternalError(fmt.Errorf("updating deployment of component '%s' failed: %s", def.ID, result.Message))
	}
	a.healthHandler.StopMonitoring(def.ID)
	if err := a.healthHandler.StartMonitoring(def); err != nil {
		return err
	}
	return a.scalingHandler.UpdatePolicy(ctx, def.ID, def.Scaling)
}

// tryRollback is invoked on failed updates, a rollback failure is logged and
// never masks the original error.
func (a *Api) tryRollback(ctx context.Context, cID string, origErr error) {
	if _, _, err := a.storageHandler.LatestSnapshot(ctx, cID); err != nil {
		util.Logger.Errorf("update of component '%s' failed without rollback history: %s", cID, origErr)
		return
	}
	util.Logger.Warningf("update of component '%s' failed, rolling back: %s", cID, origErr)
	if err := a.rollback(ctx, cID); err != nil {
		util.Logger.Errorf("automatic rollback of component '%s' failed: %s", cID, err)
	}
}

func (a *Api) RollbackComponent(ctx context.Context, cID string) error {
	a.km.Lock(cID)
	defer a.km.Unlock(cID)
	if _, err := a.registryHandler.Get(ctx, cID); err != nil {
		return err
	}
	return a.rollback(ctx, cID)
}

func (a *Api) rollback(ctx context.Context, cID string) error {
	def, index, err := a.storageHandler.LatestSnapshot(ctx, cID)
	if err != nil {
		var nfe *lib_model.NotFoundError
		if errors.As(err, &nfe) {
			return lib_model.NewInvalidInputError(fmt.Errorf("no rollback history for component '%s'", cID))
		}
		return err
	}
	if err = a.registryHandler.SetDefinition(ctx, def); err != nil {
		return err
	}
	if _, sErr := a.deploymentHandler.Status(cID); sErr == nil {
		result := a.deploymentHandler.Rollback(ctx, def)
		if !result.Success {
			return lib_model.NewInternalError(fmt.Errorf("rolling back deployment of component '%s' failed: %s", cID, result.Message))
		}
		a.healthHandler.StopMonitoring(cID)
		if err = a.healthHandler.StartMonitoring(def); err != nil {
			return err
		}
		if err = a.scalingHandler.UpdatePolicy(ctx, cID, def.Scaling); err != nil {
			return err
		}
	}
	if err = a.dropSnapshot(ctx, index); err != nil {
		return err
	}
	a.emit(lib_model.ComponentRolledBack, cID, fmt.Sprintf("component '%s' rolled back", cID))
	return nil
}

func (a *Api) RemoveComponent(ctx context.Context, cID string) error {
	a.km.Lock(cID)
	defer a.km.Unlock(cID)
	if _, err := a.registryHandler.Get(ctx, cID); err != nil {
		return err
	}
	dependents, err := a.registryHandler.FindDependents(ctx, cID)
	if err != nil {
		return err
	}
	if len(dependents) > 0 {
		return lib_model.NewResourceBusyError(fmt.Errorf("component '%s' required by: %s", cID, strings.Join(dependents, ", ")))
	}
	a.healthHandler.StopMonitoring(cID)
	a.scalingHandler.Remove(cID)
	if err = a.deploymentHandler.Remove(ctx, cID); err != nil {
		var nfe *lib_model.NotFoundError
		if !errors.As(err, &nfe) {
			return err
		}
	}
	if err = a.commHandler.Teardown(ctx, cID); err != nil {
		var nfe *lib_model.NotFoundError
		if !errors.As(err, &nfe) {
			return err
		}
	}
	if err = a.registryHandler.Unregister(ctx, cID); err != nil {
		return err
	}
	a.mu.Lock()
	a.recovered.Remove(cID)
	a.mu.Unlock()
	util.ComponentsRegistered.Dec()
	a.emit(lib_model.ComponentRemoved, cID, fmt.Sprintf("component '%s' removed", cID))
	return nil
}

func (a *Api) GetComponentStatus(ctx context.Context, cID string) (lib_model.ComponentStatus, error) {
	comp, err := a.registryHandler.Get(ctx, cID)
	if err != nil {
		return lib_model.ComponentStatus{}, err
	}
	status := lib_model.ComponentStatus{Definition: comp.ComponentDefinition}
	if result, err := a.deploymentHandler.Status(cID); err == nil {
		status.Deployment = &result
	}
	if health, err := a.healthHandler.Status(cID); err == nil {
		status.Health = &health
	}
	if metrics, err := a.metricsProvider.GetMetrics(ctx, cID); err == nil {
		status.Metrics = &metrics
	}
	if scaling, err := a.scalingHandler.State(cID); err == nil {
		status.Scaling = &scaling
	}
	return status, nil
}

// createSnapshot persists the definition for rollback. A definition equal to
// the latest snapshot is not stored again, repeated failed operations must not
// evict older history.
func (a *Api) createSnapshot(ctx context.Context, cID string, def lib_model.ComponentDefinition) (bool, error) {
	latest, _, err := a.storageHandler.LatestSnapshot(ctx, cID)
	if err != nil {
		var nfe *lib_model.NotFoundError
		if !errors.As(err, &nfe) {
			return false, err
		}
	} else if reflect.DeepEqual(latest, def) {
		return false, nil
	}
	ch := context_hdl.New()
	defer ch.CancelAll()
	tx, err := a.storageHandler.BeginTransaction(ch.Add(context.WithTimeout(ctx, a.dbTimeout)))
	if err != nil {
		return false, err
	}
	defer tx.Rollback()
	if err = a.storageHandler.CreateSnapshot(ch.Add(context.WithTimeout(ctx, a.dbTimeout)), tx, cID, def, time.Now().UTC(), a.maxHistory); err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, lib_model.NewInternalError(err)
	}
	return true, nil
}

func (a *Api) dropLatestSnapshot(ctx context.Context, cID string) error {
	_, index, err := a.storageHandler.LatestSnapshot(ctx, cID)
	if err != nil {
		return err
	}
	return a.dropSnapshot(ctx, index)
}

func (a *Api) dropSnapshot(ctx context.Context, index int64) error {
	ch := context_hdl.New()
	defer ch.CancelAll()
	tx, err := a.storageHandler.BeginTransaction(ch.Add(context.WithTimeout(ctx, a.dbTimeout)))
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err = a.storageHandler.DeleteSnapshot(ch.Add(context.WithTimeout(ctx, a.dbTimeout)), tx, index); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}
