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
	"fmt"
	"regexp"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

const maxIDLen = 63

var idRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

func ValidateDefinition(def lib_model.ComponentDefinition) error {
	if def.ID == "" {
		return lib_model.NewInvalidInputError(fmt.Errorf("missing component ID"))
	}
	if len(def.ID) > maxIDLen {
		return lib_model.NewInvalidInputError(fmt.Errorf("component ID '%s' exceeds %d characters", def.ID, maxIDLen))
	}
	if !idRegex.MatchString(def.ID) {
		return lib_model.NewInvalidInputError(fmt.Errorf("invalid component ID '%s'", def.ID))
	}
	if def.Name == "" {
		return lib_model.NewInvalidInputError(fmt.Errorf("missing component name"))
	}
	if def.Version == "" {
		return lib_model.NewInvalidInputError(fmt.Errorf("missing component version"))
	}
	if _, ok := lib_model.ComponentTypeMap[def.Type]; !ok {
		return lib_model.NewInvalidInputError(fmt.Errorf("unknown component type '%s'", def.Type))
	}
	if err := validateResources(def.Resources); err != nil {
		return err
	}
	if err := validateScalingPolicy(def.Scaling); err != nil {
		return err
	}
	if err := validateHealthCheck(def.HealthCheck); err != nil {
		return err
	}
	for _, dID := range def.Dependencies {
		if dID == def.ID {
			return lib_model.NewInvalidInputError(fmt.Errorf("component '%s' depends on itself", def.ID))
		}
		if dID == "" {
			return lib_model.NewInvalidInputError(fmt.Errorf("component '%s' lists an empty dependency", def.ID))
		}
	}
	return nil
}

func validateResources(res lib_model.Resources) error {
	if res.CPU <= 0 {
		return lib_model.NewInvalidInputError(fmt.Errorf("cpu request must be > 0 (got %f)", res.CPU))
	}
	if res.Memory <= 0 {
		return lib_model.NewInvalidInputError(fmt.Errorf("memory request must be > 0 (got %d)", res.Memory))
	}
	return nil
}

func validateScalingPolicy(policy lib_model.ScalingPolicy) error {
	if policy.MinReplicas < 1 {
		return lib_model.NewInvalidInputError(fmt.Errorf("min replicas must be >= 1 (got %d)", policy.MinReplicas))
	}
	if policy.MaxReplicas < policy.MinReplicas {
		return lib_model.NewInvalidInputError(fmt.Errorf("max replicas must be >= min replicas (got %d < %d)", policy.MaxReplicas, policy.MinReplicas))
	}
	if err := validateUtilizationTarget("cpu", policy.TargetCPUUtilization); err != nil {
		return err
	}
	if err := validateUtilizationTarget("memory", policy.TargetMemoryUtilization); err != nil {
		return err
	}
	for _, cm := range policy.CustomMetrics {
		if cm.Name == "" {
			return lib_model.NewInvalidInputError(fmt.Errorf("missing custom metric name"))
		}
		if cm.Target <= 0 {
			return lib_model.NewInvalidInputError(fmt.Errorf("custom metric '%s' target must be > 0", cm.Name))
		}
	}
	if err := validateStepPolicy("scale up", policy.ScaleUp); err != nil {
		return err
	}
	return validateStepPolicy("scale down", policy.ScaleDown)
}

func validateUtilizationTarget(name string, target *int) error {
	if target == nil {
		return nil
	}
	if *target < 1 || *target > 100 {
		return lib_model.NewInvalidInputError(fmt.Errorf("%s utilization target must be in [1, 100] (got %d)", name, *target))
	}
	return nil
}

func validateStepPolicy(name string, step lib_model.StepPolicy) error {
	switch step.Type {
	case "", lib_model.FixedStep, lib_model.PercentStep:
	default:
		return lib_model.NewInvalidInputError(fmt.Errorf("unknown %s step type '%s'", name, step.Type))
	}
	if step.Value < 0 {
		return lib_model.NewInvalidInputError(fmt.Errorf("%s step value must be >= 0 (got %d)", name, step.Value))
	}
	return nil
}

func validateHealthCheck(hc lib_model.HealthCheckConfig) error {
	if hc.Type == "" {
		return nil
	}
	if _, ok := lib_model.HealthCheckTypeMap[hc.Type]; !ok {
		return lib_model.NewInvalidInputError(fmt.Errorf("unknown health check type '%s'", hc.Type))
	}
	if hc.Target == "" {
		return lib_model.NewInvalidInputError(fmt.Errorf("missing health check target"))
	}
	if hc.InitialDelaySeconds < 0 {
		return lib_model.NewInvalidInputError(fmt.Errorf("health check initial delay must be >= 0 (got %d)", hc.InitialDelaySeconds))
	}
	if hc.PeriodSeconds < 1 {
		return lib_model.NewInvalidInputError(fmt.Errorf("health check period must be >= 1 (got %d)", hc.PeriodSeconds))
	}
	if hc.TimeoutSeconds < 1 {
		return lib_model.NewInvalidInputError(fmt.Errorf("health check timeout must be >= 1 (got %d)", hc.TimeoutSeconds))
	}
	return nil
}
