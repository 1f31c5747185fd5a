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

package deployer_hdl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SENERGY-Platform/mgw-component-manager/handler"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
	"github.com/google/uuid"
)

type deployment struct {
	dID    string
	result lib_model.DeploymentResult
}

type Handler struct {
	runtimeClient handler.RuntimeClient
	timeout       time.Duration
	maxRetries    int
	retryDelay    time.Duration
	strategies    map[lib_model.ComponentType]strategy
	deployments   map[string]*deployment
	mu            sync.RWMutex
}

func New(runtimeClient handler.RuntimeClient, timeout time.Duration, maxRetries int, retryDelay time.Duration) *Handler {
	return &Handler{
		runtimeClient: runtimeClient,
		timeout:       timeout,
		maxRetries:    maxRetries,
		retryDelay:    retryDelay,
		strategies:    newStrategies(),
		deployments:   make(map[string]*deployment),
	}
}

func (h *Handler) Deploy(ctx context.Context, def lib_model.ComponentDefinition, config lib_model.DeployConfig) lib_model.DeploymentResult {
	util.DeploymentsTotal.WithLabelValues(def.Type).Inc()
	strat, ok := h.strategies[def.Type]
	if !ok {
		return h.storeFailed(def, "", fmt.Sprintf("no deployment strategy for type '%s'", def.Type))
	}
	replicas := strat.Replicas(def, config.Replicas)
	uid, err := uuid.NewRandom()
	if err != nil {
		return h.storeFailed(def, "", err.Error())
	}
	dID := uid.String()
	err = h.withRetry(ctx, func(ctx context.Context) error {
		return h.runtimeClient.CreateInstances(ctx, dID, def, replicas, config.Environment)
	})
	if err != nil {
		util.Logger.Errorf("deploying component '%s' failed: %s", def.ID, err)
		return h.storeFailed(def, dID, err.Error())
	}
	return h.storeRunning(ctx, def, dID, replicas, fmt.Sprintf("component '%s' deployed", def.ID))
}

func (h *Handler) Update(ctx context.Context, def lib_model.ComponentDefinition) lib_model.DeploymentResult {
	util.DeploymentsTotal.WithLabelValues(def.Type).Inc()
	dep, err := h.get(def.ID)
	if err != nil {
		return h.storeFailed(def, "", err.Error())
	}
	replicas := h.strategies[def.Type].Replicas(def, nil)
	if dep.result.Status.DesiredReplicas >= def.Scaling.MinReplicas && dep.result.Status.DesiredReplicas <= def.Scaling.MaxReplicas {
		replicas = h.strategies[def.Type].Replicas(def, &dep.result.Status.DesiredReplicas)
	}
	err = h.withRetry(ctx, func(ctx context.Context) error {
		return h.runtimeClient.UpdateInstances(ctx, dep.dID, def, replicas)
	})
	if err != nil {
		util.Logger.Errorf("updating component '%s' failed: %s", def.ID, err)
		return h.storeFailed(def, dep.dID, err.Error())
	}
	return h.storeRunning(ctx, def, dep.dID, replicas, fmt.Sprintf("component '%s' updated", def.ID))
}

func (h *Handler) Rollback(ctx context.Context, def lib_model.ComponentDefinition) lib_model.DeploymentResult {
	util.DeploymentsTotal.WithLabelValues(def.Type).Inc()
	dep, err := h.get(def.ID)
	if err != nil {
		return h.storeFailed(def, "", err.Error())
	}
	replicas := h.strategies[def.Type].Replicas(def, nil)
	err = h.withRetry(ctx, func(ctx context.Context) error {
		return h.runtimeClient.UpdateInstances(ctx, dep.dID, def, replicas)
	})
	if err != nil {
		util.Logger.Errorf("rolling back component '%s' failed: %s", def.ID, err)
		return h.storeFailed(def, dep.dID, err.Error())
	}
	return h.storeRunning(ctx, def, dep.dID, replicas, fmt.Sprintf("component '%s' rolled back", def.ID))
}

func (h *Handler) Restart(ctx context.Context, cID string) error {
	dep, err := h.get(cID)
	if err != nil {
		return err
	}
	err = h.withRetry(ctx, func(ctx context.Context) error {
		return h.runtimeClient.RestartInstances(ctx, dep.dID)
	})
	if err != nil {
		return lib_model.NewInternalError(fmt.Errorf("restarting component '%s': %s", cID, err))
	}
	return nil
}

func (h *Handler) Remove(ctx context.Context, cID string) error {
	dep, err := h.get(cID)
	if err != nil {
		return err
	}
	err = h.withRetry(ctx, func(ctx context.Context) error {
		return h.runtimeClient.RemoveInstances(ctx, dep.dID)
	})
	if err != nil {
		return lib_model.NewInternalError(fmt.Errorf("removing component '%s': %s", cID, err))
	}
	h.mu.Lock()
	delete(h.deployments, cID)
	h.mu.Unlock()
	return nil
}

func (h *Handler) Status(cID string) (lib_model.DeploymentResult, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	dep, ok := h.deployments[cID]
	if !ok {
		return lib_model.DeploymentResult{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not deployed", cID))
	}
	return dep.result, nil
}

// Scale adjusts the replica count of an existing deployment, used by the scaler.
func (h *Handler) Scale(ctx context.Context, cID string, replicas int) error {
	dep, err := h.get(cID)
	if err != nil {
		return err
	}
	err = h.withRetry(ctx, func(ctx context.Context) error {
		return h.runtimeClient.ScaleInstances(ctx, dep.dID, replicas)
	})
	if err != nil {
		return lib_model.NewInternalError(fmt.Errorf("scaling component '%s': %s", cID, err))
	}
	h.mu.Lock()
	if cur, ok := h.deployments[cID]; ok {
		cur.result.Status.DesiredReplicas = replicas
		cur.result.Status.CurrentReplicas = replicas
		cur.result.Status.ReadyReplicas = replicas
		cur.result.Status.AvailableReplicas = replicas
	}
	h.mu.Unlock()
	return nil
}

// get returns a copy, deployments are mutated concurrently by Scale.
func (h *Handler) get(cID string) (deployment, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	dep, ok := h.deployments[cID]
	if !ok {
		return deployment{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not deployed", cID))
	}
	return *dep, nil
}

func (h *Handler) withRetry(ctx context.Context, f func(ctx context.Context) error) error {
	var err error
	for i := 0; i < h.maxRetries; i++ {
		if i > 0 {
			timer := time.NewTimer(time.Duration(i) * h.retryDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
		ctxWt, cf := context.WithTimeout(ctx, h.timeout)
		err = f(ctxWt)
		cf()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (h *Handler) storeRunning(ctx context.Context, def lib_model.ComponentDefinition, dID string, replicas int, msg string) lib_model.DeploymentResult {
	status, err := h.runtimeClient.InstancesStatus(ctx, dID)
	if err != nil {
		status = lib_model.DeploymentStatus{
			Phase:             lib_model.DepRunning,
			DesiredReplicas:   replicas,
			CurrentReplicas:   replicas,
			ReadyReplicas:     replicas,
			AvailableReplicas: replicas,
		}
	}
	result := lib_model.DeploymentResult{
		Success:      true,
		DeploymentID: dID,
		Status:       status,
		Message:      msg,
		Created:      time.Now().UTC(),
	}
	h.mu.Lock()
	h.deployments[def.ID] = &deployment{dID: dID, result: result}
	h.mu.Unlock()
	return result
}

func (h *Handler) storeFailed(def lib_model.ComponentDefinition, dID string, msg string) lib_model.DeploymentResult {
	util.DeploymentsFailed.WithLabelValues(def.Type).Inc()
	result := lib_model.DeploymentResult{
		Success:      false,
		DeploymentID: dID,
		Status:       lib_model.DeploymentStatus{Phase: lib_model.DepFailed},
		Message:      msg,
		Created:      time.Now().UTC(),
	}
	h.mu.Lock()
	h.deployments[def.ID] = &deployment{dID: dID, result: result}
	h.mu.Unlock()
	return result
}
