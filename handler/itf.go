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

package handler

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

type RegistryHandler interface {
	Init(ctx context.Context) error
	Register(ctx context.Context, def model.ComponentDefinition) error
	Unregister(ctx context.Context, cID string) error
	Get(ctx context.Context, cID string) (model.Component, error)
	List(ctx context.Context, filter model.ComponentFilter) (map[string]model.Component, error)
	Update(ctx context.Context, cID string, update model.ComponentUpdate) (model.ComponentDefinition, error)
	SetDefinition(ctx context.Context, def model.ComponentDefinition) error
	FindDependents(ctx context.Context, cID string) ([]string, error)
	Exists(ctx context.Context, cID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type DependencyHandler interface {
	Resolve(ctx context.Context, cID string) (map[string]model.ComponentDefinition, error)
	Validate(ctx context.Context, dependencies []string) error
	GetInstallOrder(ctx context.Context, cIDs []string) ([]string, error)
	GetDependencyTree(ctx context.Context, cID string) (map[string][]string, error)
	FindAffected(ctx context.Context, cID string) ([]string, error)
	ValidateUpdateOrder(ctx context.Context, cIDs []string) ([]string, error)
}

type DeploymentHandler interface {
	Deploy(ctx context.Context, def model.ComponentDefinition, config model.DeployConfig) model.DeploymentResult
	Update(ctx context.Context, def model.ComponentDefinition) model.DeploymentResult
	Rollback(ctx context.Context, def model.ComponentDefinition) model.DeploymentResult
	Restart(ctx context.Context, cID string) error
	Remove(ctx context.Context, cID string) error
	Scale(ctx context.Context, cID string, replicas int) error
	Status(cID string) (model.DeploymentResult, error)
}

type ScalingHandler interface {
	EnableAutoScaling(cID string, policy model.ScalingPolicy) error
	DisableAutoScaling(cID string)
	Scale(ctx context.Context, cID string, config model.ScalingConfig) error
	UpdatePolicy(ctx context.Context, cID string, policy model.ScalingPolicy) error
	State(cID string) (model.ScalingState, error)
	Remove(cID string)
	SetListener(listener func(model.ScalingEvent))
	Stop()
}

type HealthHandler interface {
	StartMonitoring(def model.ComponentDefinition) error
	StopMonitoring(cID string)
	Check(ctx context.Context, def model.ComponentDefinition) model.HealthStatus
	Status(cID string) (model.HealthStatus, error)
	SetListener(listener func(model.HealthEvent))
	Stop()
}

type CommHandler interface {
	Setup(ctx context.Context, cID string, config model.CommConfig) (model.CommStatus, error)
	Teardown(ctx context.Context, cID string) error
	Status(cID string) (model.CommStatus, error)
	PublishEvent(ctx context.Context, subject string, data []byte) error
	SubscribeToEvents(ctx context.Context, pattern string, hdl func(subject string, data []byte)) error
	SendMessage(ctx context.Context, queue string, data []byte) error
	SubscribeToQueue(ctx context.Context, queue string, hdl func(data []byte) error) error
	Close()
}

type StorageHandler interface {
	Init(ctx context.Context) error
	BeginTransaction(ctx context.Context) (driver.Tx, error)
	ListComp(ctx context.Context, filter model.ComponentFilter) (map[string]model.Component, error)
	CreateComp(ctx context.Context, itf driver.Tx, comp model.Component) error
	ReadComp(ctx context.Context, cID string) (model.Component, error)
	UpdateComp(ctx context.Context, itf driver.Tx, comp model.Component) error
	DeleteComp(ctx context.Context, itf driver.Tx, cID string) error
	CreateSnapshot(ctx context.Context, itf driver.Tx, cID string, def model.ComponentDefinition, timestamp time.Time, maxHistory int) error
	LatestSnapshot(ctx context.Context, cID string) (model.ComponentDefinition, int64, error)
	ListSnapshots(ctx context.Context, cID string) ([]model.ComponentDefinition, error)
	DeleteSnapshot(ctx context.Context, itf driver.Tx, index int64) error
	DeleteSnapshots(ctx context.Context, itf driver.Tx, cID string) error
}

type RuntimeClient interface {
	CreateInstances(ctx context.Context, dID string, def model.ComponentDefinition, replicas int, env map[string]string) error
	UpdateInstances(ctx context.Context, dID string, def model.ComponentDefinition, replicas int) error
	RemoveInstances(ctx context.Context, dID string) error
	RestartInstances(ctx context.Context, dID string) error
	ScaleInstances(ctx context.Context, dID string, replicas int) error
	InstancesStatus(ctx context.Context, dID string) (model.DeploymentStatus, error)
}

type MetricsProvider interface {
	GetMetrics(ctx context.Context, cID string) (model.ComponentMetrics, error)
}

type JobHandler interface {
	Create(desc string, tFunc func(context.Context, context.CancelFunc) error) (string, error)
	Get(jID string) (model.Job, error)
	Cancel(jID string) error
	List(filter model.JobFilter) []model.Job
	PurgeJobs(maxAge int64) int
}
