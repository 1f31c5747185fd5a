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

package registry_hdl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SENERGY-Platform/mgw-component-manager/handler"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
	context_hdl "github.com/SENERGY-Platform/mgw-component-manager/util/context_hdl"
)

type Handler struct {
	storageHandler handler.StorageHandler
	dbTimeout      time.Duration
	components     map[string]lib_model.Component
	mu             sync.RWMutex
}

func New(storageHandler handler.StorageHandler, dbTimeout time.Duration) *Handler {
	return &Handler{
		storageHandler: storageHandler,
		dbTimeout:      dbTimeout,
		components:     make(map[string]lib_model.Component),
	}
}

func (h *Handler) Init(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	ctxWt, cf := context.WithTimeout(ctx, h.dbTimeout)
	defer cf()
	components, err := h.storageHandler.ListComp(ctxWt, lib_model.ComponentFilter{})
	if err != nil {
		return err
	}
	h.components = components
	return nil
}

func (h *Handler) Register(ctx context.Context, def lib_model.ComponentDefinition) error {
	if err := ValidateDefinition(def); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.components[def.ID]; ok {
		return lib_model.NewInvalidInputError(fmt.Errorf("component '%s' already registered", def.ID))
	}
	def.Dependencies = dedupeDependencies(def.ID, def.Dependencies)
	now := time.Now().UTC()
	comp := lib_model.Component{
		ComponentDefinition: def,
		Created:             now,
		Updated:             now,
	}
	ch := context_hdl.New()
	defer ch.CancelAll()
	tx, err := h.storageHandler.BeginTransaction(ch.Add(context.WithTimeout(ctx, h.dbTimeout)))
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err = h.storageHandler.CreateComp(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, comp); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return lib_model.NewInternalError(err)
	}
	h.components[def.ID] = comp
	return nil
}

func (h *Handler) Unregister(ctx context.Context, cID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.components[cID]; !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
	}
	ch := context_hdl.New()
	defer ch.CancelAll()
	tx, err := h.storageHandler.BeginTransaction(ch.Add(context.WithTimeout(ctx, h.dbTimeout)))
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err = h.storageHandler.DeleteComp(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, cID); err != nil {
		return err
	}
	if err = h.storageHandler.DeleteSnapshots(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, cID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return lib_model.NewInternalError(err)
	}
	delete(h.components, cID)
	return nil
}

func (h *Handler) Get(_ context.Context, cID string) (lib_model.Component, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	comp, ok := h.components[cID]
	if !ok {
		return lib_model.Component{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
	}
	return comp, nil
}

func (h *Handler) List(_ context.Context, filter lib_model.ComponentFilter) (map[string]lib_model.Component, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	components := make(map[string]lib_model.Component)
	for id, comp := range h.components {
		if filter.Name != "" && comp.Name != filter.Name {
			continue
		}
		if filter.Type != "" && comp.Type != filter.Type {
			continue
		}
		components[id] = comp
	}
	return components, nil
}

func (h *Handler) Update(ctx context.Context, cID string, update lib_model.ComponentUpdate) (lib_model.ComponentDefinition, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	comp, ok := h.components[cID]
	if !ok {
		return lib_model.ComponentDefinition{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
	}
	def := mergeUpdate(comp.ComponentDefinition, update)
	if err := ValidateDefinition(def); err != nil {
		return lib_model.ComponentDefinition{}, err
	}
	def.Dependencies = dedupeDependencies(def.ID, def.Dependencies)
	comp.ComponentDefinition = def
	comp.Updated = time.Now().UTC()
	if err := h.writeComp(ctx, comp); err != nil {
		return lib_model.ComponentDefinition{}, err
	}
	h.components[cID] = comp
	return def, nil
}

// SetDefinition overwrites a stored definition without merging, used for rollback.
func (h *Handler) SetDefinition(ctx context.Context, def lib_model.ComponentDefinition) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	comp, ok := h.components[def.ID]
	if !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", def.ID))
	}
	comp.ComponentDefinition = def
	comp.Updated = time.Now().UTC()
	if err := h.writeComp(ctx, comp); err != nil {
		return err
	}
	h.components[def.ID] = comp
	return nil
}

func (h *Handler) FindDependents(_ context.Context, cID string) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var dependents []string
	for id, comp := range h.components {
		for _, dID := range comp.Dependencies {
			if dID == cID {
				dependents = append(dependents, id)
				break
			}
		}
	}
	return dependents, nil
}

func (h *Handler) Exists(_ context.Context, cID string) (bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.components[cID]
	return ok, nil
}

func (h *Handler) Count(_ context.Context) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.components), nil
}

func (h *Handler) writeComp(ctx context.Context, comp lib_model.Component) error {
	ch := context_hdl.New()
	defer ch.CancelAll()
	tx, err := h.storageHandler.BeginTransaction(ch.Add(context.WithTimeout(ctx, h.dbTimeout)))
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err = h.storageHandler.UpdateComp(ch.Add(context.WithTimeout(ctx, h.dbTimeout)), tx, comp); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}

func mergeUpdate(def lib_model.ComponentDefinition, update lib_model.ComponentUpdate) lib_model.ComponentDefinition {
	if update.Name != nil {
		def.Name = *update.Name
	}
	if update.Version != nil {
		def.Version = *update.Version
	}
	if update.Resources != nil {
		def.Resources = *update.Resources
	}
	if update.Scaling != nil {
		def.Scaling = *update.Scaling
	}
	if update.HealthCheck != nil {
		def.HealthCheck = *update.HealthCheck
	}
	if update.Dependencies != nil {
		def.Dependencies = *update.Dependencies
	}
	if len(update.Metadata) > 0 {
		if def.Metadata == nil {
			def.Metadata = make(map[string]string)
		} else {
			md := make(map[string]string, len(def.Metadata))
			for k, v := range def.Metadata {
				md[k] = v
			}
			def.Metadata = md
		}
		for k, v := range update.Metadata {
			def.Metadata[k] = v
		}
	}
	return def
}

func dedupeDependencies(cID string, dependencies []string) []string {
	if len(dependencies) == 0 {
		return dependencies
	}
	seen := make(map[string]struct{})
	var deps []string
	for _, dID := range dependencies {
		if _, ok := seen[dID]; ok {
			util.Logger.Warningf("component '%s' lists dependency '%s' more than once", cID, dID)
			continue
		}
		seen[dID] = struct{}{}
		deps = append(deps, dID)
	}
	return deps
}
