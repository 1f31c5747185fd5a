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

package model

import "time"

type ComponentBase struct {
	Name         string            `json:"name" yaml:"name"`
	Version      string            `json:"version" yaml:"version"`
	Type         ComponentType     `json:"type" yaml:"type"`
	Resources    Resources         `json:"resources" yaml:"resources"`
	Scaling      ScalingPolicy     `json:"scaling" yaml:"scaling"`
	HealthCheck  HealthCheckConfig `json:"health_check" yaml:"health_check"`
	Dependencies []string          `json:"dependencies" yaml:"dependencies"` // component IDs required by this component
	Metadata     map[string]string `json:"metadata" yaml:"metadata"`
}

type ComponentDefinition struct {
	ID string `json:"id" yaml:"id"`
	ComponentBase
}

type Component struct {
	ComponentDefinition
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

type Resources struct {
	CPU    float64 `json:"cpu" yaml:"cpu"`       // requested cores
	Memory int64   `json:"memory" yaml:"memory"` // requested bytes
}

type ScalingPolicy struct {
	MinReplicas             int                  `json:"min_replicas" yaml:"min_replicas"`
	MaxReplicas             int                  `json:"max_replicas" yaml:"max_replicas"`
	TargetCPUUtilization    *int                 `json:"target_cpu_utilization" yaml:"target_cpu_utilization"`       // 1-100
	TargetMemoryUtilization *int                 `json:"target_memory_utilization" yaml:"target_memory_utilization"` // 1-100
	CustomMetrics           []CustomMetricTarget `json:"custom_metrics" yaml:"custom_metrics"`
	ScaleUp                 StepPolicy           `json:"scale_up" yaml:"scale_up"`
	ScaleDown               StepPolicy           `json:"scale_down" yaml:"scale_down"`
}

type CustomMetricTarget struct {
	Name   string  `json:"name" yaml:"name"`
	Target float64 `json:"target" yaml:"target"`
}

type StepPolicy struct {
	Type  StepType `json:"type" yaml:"type"` // defaults to fixed
	Value int      `json:"value" yaml:"value"`
}

type HealthCheckConfig struct {
	Type                HealthCheckType `json:"type" yaml:"type"`
	Target              string          `json:"target" yaml:"target"` // url, address or command depending on type
	InitialDelaySeconds int             `json:"initial_delay_seconds" yaml:"initial_delay_seconds"`
	PeriodSeconds       int             `json:"period_seconds" yaml:"period_seconds"`
	TimeoutSeconds      int             `json:"timeout_seconds" yaml:"timeout_seconds"`
}

type ComponentFilter struct {
	Name string
	Type ComponentType
}

type ComponentUpdate struct {
	Name         *string            `json:"name"`
	Version      *string            `json:"version"`
	Resources    *Resources         `json:"resources"`
	Scaling      *ScalingPolicy     `json:"scaling"`
	HealthCheck  *HealthCheckConfig `json:"health_check"`
	Dependencies *[]string          `json:"dependencies"`
	Metadata     map[string]string  `json:"metadata"` // merged by key
}
