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

package lib

import (
	"context"
	"github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

type Api interface {
	RegisterComponent(ctx context.Context, def model.ComponentDefinition) error
	ListComponents(ctx context.Context, filter model.ComponentFilter) (map[string]model.ComponentDefinition, error)
	GetComponent(ctx context.Context, cID string) (model.ComponentDefinition, error)
	UpdateComponent(ctx context.Context, cID string, update model.ComponentUpdate) error
	RollbackComponent(ctx context.Context, cID string) error
	RemoveComponent(ctx context.Context, cID string) error
	DeployComponent(ctx context.Context, cID string, config model.DeployConfig) (model.DeploymentResult, error)
	DeployComponents(ctx context.Context, cIDs []string) (string, error)
	RestartComponent(ctx context.Context, cID string) error
	RemoveComponents(ctx context.Context, filter model.ComponentFilter) (string, error)
	ScaleComponent(ctx context.Context, cID string, config model.ScalingConfig) error
	HealthCheck(ctx context.Context, cID string) (model.HealthStatus, error)
	GetComponentStatus(ctx context.Context, cID string) (model.ComponentStatus, error)
	SetupCommunication(ctx context.Context, cID string, config model.CommConfig) error
	GetInstallOrder(ctx context.Context, cIDs []string) ([]string, error)
	GetDependencyTree(ctx context.Context, cID string) (map[string][]string, error)
	GetAffectedComponents(ctx context.Context, cID string) ([]string, error)
	GetJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error)
	GetJob(ctx context.Context, jID string) (model.Job, error)
	CancelJob(ctx context.Context, jID string) error
}
