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

package resolver_hdl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/SENERGY-Platform/mgw-component-manager/handler"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
	"github.com/SENERGY-Platform/mgw-component-manager/util/set"
)

type Handler struct {
	registryHandler handler.RegistryHandler
}

func New(registryHandler handler.RegistryHandler) *Handler {
	return &Handler{registryHandler: registryHandler}
}

// Resolve collects the transitive dependency set of a component.
func (h *Handler) Resolve(ctx context.Context, cID string) (map[string]lib_model.ComponentDefinition, error) {
	comp, err := h.registryHandler.Get(ctx, cID)
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]lib_model.ComponentDefinition)
	stack := append([]string{}, comp.Dependencies...)
	for len(stack) > 0 {
		dID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := resolved[dID]; ok {
			continue
		}
		dep, err := h.registryHandler.Get(ctx, dID)
		if err != nil {
			return nil, err
		}
		resolved[dID] = dep.ComponentDefinition
		stack = append(stack, dep.Dependencies...)
	}
	return resolved, nil
}

func (h *Handler) Validate(ctx context.Context, dependencies []string) error {
	for _, dID := range dependencies {
		ok, err := h.registryHandler.Exists(ctx, dID)
		if err != nil {
			return err
		}
		if !ok {
			return lib_model.NewNotFoundError(fmt.Errorf("dependency '%s' not found", dID))
		}
	}
	visited := set.New[string]()
	onStack := set.New[string]()
	for _, dID := range dependencies {
		if cycle, err := h.detectCycle(ctx, dID, visited, onStack, nil); err != nil {
			return err
		} else if len(cycle) > 0 {
			return lib_model.NewInvalidInputError(fmt.Errorf("dependency cycle detected: %s", strings.Join(cycle, " -> ")))
		}
	}
	h.warnVersionConflicts(ctx, dependencies)
	return nil
}

func (h *Handler) detectCycle(ctx context.Context, cID string, visited, onStack set.Set[string], path []string) ([]string, error) {
	if onStack.Has(cID) {
		cycle := append([]string{}, path...)
		for i, id := range cycle {
			if id == cID {
				return append(cycle[i:], cID), nil
			}
		}
		return append(cycle, cID), nil
	}
	if visited.Has(cID) {
		return nil, nil
	}
	comp, err := h.registryHandler.Get(ctx, cID)
	if err != nil {
		var nfe *lib_model.NotFoundError
		if errors.As(err, &nfe) {
			return nil, nil
		}
		return nil, err
	}
	visited.Add(cID)
	onStack.Add(cID)
	defer onStack.Remove(cID)
	path = append(path, cID)
	for _, dID := range comp.Dependencies {
		cycle, err := h.detectCycle(ctx, dID, visited, onStack, path)
		if err != nil || len(cycle) > 0 {
			return cycle, err
		}
	}
	return nil, nil
}

func (h *Handler) warnVersionConflicts(ctx context.Context, dependencies []string) {
	versions := make(map[string]map[string][]string)
	for _, dID := range dependencies {
		comp, err := h.registryHandler.Get(ctx, dID)
		if err != nil {
			continue
		}
		if versions[comp.Name] == nil {
			versions[comp.Name] = make(map[string][]string)
		}
		versions[comp.Name][comp.Version] = append(versions[comp.Name][comp.Version], dID)
	}
	for name, byVer := range versions {
		if len(byVer) > 1 {
			var parts []string
			for ver, ids := range byVer {
				parts = append(parts, fmt.Sprintf("%s (%s)", ver, strings.Join(ids, ", ")))
			}
			sort.Strings(parts)
			util.Logger.Warningf("version conflict for '%s': %s", name, strings.Join(parts, "; "))
		}
	}
}

// GetInstallOrder performs a topological sort over the given set via Kahn's
// algorithm. Dependencies outside the set are ignored.
func (h *Handler) GetInstallOrder(ctx context.Context, cIDs []string) ([]string, error) {
	inSet := set.New(cIDs...)
	dependents := make(map[string][]string)
	inDegree := make(map[string]int)
	for cID := range inSet {
		inDegree[cID] = 0
	}
	for cID := range inSet {
		comp, err := h.registryHandler.Get(ctx, cID)
		if err != nil {
			return nil, err
		}
		for _, dID := range comp.Dependencies {
			if !inSet.Has(dID) {
				continue
			}
			dependents[dID] = append(dependents[dID], cID)
			inDegree[cID]++
		}
	}
	var queue []string
	for cID, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, cID)
		}
	}
	sort.Strings(queue)
	var order []string
	for len(queue) > 0 {
		cID := queue[0]
		queue = queue[1:]
		order = append(order, cID)
		var ready []string
		for _, dID := range dependents[cID] {
			inDegree[dID]--
			if inDegree[dID] == 0 {
				ready = append(ready, dID)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}
	if len(order) < len(inSet) {
		var remaining []string
		for cID, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, cID)
			}
		}
		sort.Strings(remaining)
		return nil, lib_model.NewInvalidInputError(fmt.Errorf("dependency cycle involving: %s", strings.Join(remaining, ", ")))
	}
	return order, nil
}

func (h *Handler) GetDependencyTree(ctx context.Context, cID string) (map[string][]string, error) {
	comp, err := h.registryHandler.Get(ctx, cID)
	if err != nil {
		return nil, err
	}
	tree := make(map[string][]string)
	tree[cID] = append([]string{}, comp.Dependencies...)
	stack := append([]string{}, comp.Dependencies...)
	for len(stack) > 0 {
		dID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := tree[dID]; ok {
			continue
		}
		dep, err := h.registryHandler.Get(ctx, dID)
		if err != nil {
			var nfe *lib_model.NotFoundError
			if errors.As(err, &nfe) {
				tree[dID] = []string{}
				continue
			}
			return nil, err
		}
		tree[dID] = append([]string{}, dep.Dependencies...)
		stack = append(stack, dep.Dependencies...)
	}
	return tree, nil
}

// FindAffected returns all components that transitively depend on the given one.
func (h *Handler) FindAffected(ctx context.Context, cID string) ([]string, error) {
	ok, err := h.registryHandler.Exists(ctx, cID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
	}
	affected := set.New[string]()
	queue := []string{cID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		dependents, err := h.registryHandler.FindDependents(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, dID := range dependents {
			if affected.Has(dID) {
				continue
			}
			affected.Add(dID)
			queue = append(queue, dID)
		}
	}
	result := affected.Slice()
	sort.Strings(result)
	return result, nil
}

// ValidateUpdateOrder checks that a proposed update sequence never updates a
// component before its dependencies and suggests the correct order otherwise.
func (h *Handler) ValidateUpdateOrder(ctx context.Context, cIDs []string) ([]string, error) {
	inSet := make(map[string]int)
	for i, cID := range cIDs {
		inSet[cID] = i
	}
	for _, cID := range cIDs {
		comp, err := h.registryHandler.Get(ctx, cID)
		if err != nil {
			return nil, err
		}
		for _, dID := range comp.Dependencies {
			dPos, ok := inSet[dID]
			if !ok {
				continue
			}
			if dPos > inSet[cID] {
				suggested, sErr := h.GetInstallOrder(ctx, cIDs)
				if sErr != nil {
					return nil, sErr
				}
				return suggested, lib_model.NewInvalidInputError(fmt.Errorf("'%s' updated before its dependency '%s', suggested order: %s", cID, dID, strings.Join(suggested, ", ")))
			}
		}
	}
	return cIDs, nil
}
