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
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

// strategies only differ in replica semantics, the runtime calls are uniform
type strategy interface {
	Replicas(def lib_model.ComponentDefinition, override *int) int
}

type replicatedStrategy struct{}

func (s *replicatedStrategy) Replicas(def lib_model.ComponentDefinition, override *int) int {
	if override != nil && *override > 0 {
		return *override
	}
	if def.Scaling.MinReplicas > 0 {
		return def.Scaling.MinReplicas
	}
	return 1
}

type singleInstanceStrategy struct{}

func (s *singleInstanceStrategy) Replicas(_ lib_model.ComponentDefinition, _ *int) int {
	return 1
}

func newStrategies() map[lib_model.ComponentType]strategy {
	replicated := &replicatedStrategy{}
	single := &singleInstanceStrategy{}
	return map[lib_model.ComponentType]strategy{
		lib_model.ServiceComponent:   replicated,
		lib_model.WorkerComponent:    replicated,
		lib_model.FunctionComponent:  single,
		lib_model.ExtensionComponent: single,
	}
}
