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

const ServiceName = "mgw-component-manager"

const (
	HeaderRequestID = "X-Request-ID"
	HeaderApiVer    = "X-Api-Version"
	HeaderSrvName   = "X-Service"
)

const (
	ComponentsPath      = "components"
	BatchPath           = "batch"
	DeployPath          = "deploy"
	RestartPath         = "restart"
	RollbackPath        = "rollback"
	ScalePath           = "scale"
	StatusPath          = "status"
	HealthPath          = "health"
	CommunicationPath   = "communication"
	DependencyTreePath  = "dep_tree"
	AffectedPath        = "affected"
	InstallOrderPath    = "install_order"
	JobsPath            = "jobs"
	JobsCancelPath      = "cancel"
	HealthCheckPath     = "health_check"
	MetricsPath         = "metrics"
)

type ComponentType = string

const (
	ServiceComponent   ComponentType = "service"
	FunctionComponent  ComponentType = "function"
	WorkerComponent    ComponentType = "worker"
	ExtensionComponent ComponentType = "extension"
)

var ComponentTypeMap = map[ComponentType]struct{}{
	ServiceComponent:   {},
	FunctionComponent:  {},
	WorkerComponent:    {},
	ExtensionComponent: {},
}

type HealthCheckType = string

const (
	HttpCheck HealthCheckType = "http"
	TcpCheck  HealthCheckType = "tcp"
	ExecCheck HealthCheckType = "exec"
	GrpcCheck HealthCheckType = "grpc"
)

var HealthCheckTypeMap = map[HealthCheckType]struct{}{
	HttpCheck: {},
	TcpCheck:  {},
	ExecCheck: {},
	GrpcCheck: {},
}

type DepPhase = string

const (
	DepPending DepPhase = "pending"
	DepRunning DepPhase = "running"
	DepFailed  DepPhase = "failed"
)

type HealthState = string

const (
	CompHealthy   HealthState = "healthy"
	CompUnhealthy HealthState = "unhealthy"
)

type ScaleDirection = string

const (
	ScaleUp   ScaleDirection = "up"
	ScaleDown ScaleDirection = "down"
)

type StepType = string

const (
	FixedStep   StepType = "fixed"
	PercentStep StepType = "percent"
)

type EventType = string

const (
	ComponentRegistered EventType = "component_registered"
	ComponentDeployed   EventType = "component_deployed"
	ComponentScaled     EventType = "component_scaled"
	ComponentUpdated    EventType = "component_updated"
	ComponentRolledBack EventType = "component_rolled_back"
	ComponentRemoved    EventType = "component_removed"
	HealthChanged       EventType = "health_changed"
	ScalingEvtType      EventType = "scaling_event"
)

type JobStatus = string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCanceled  JobStatus = "canceled"
	JobCompleted JobStatus = "completed"
	JobError     JobStatus = "error"
	JobOK        JobStatus = "ok"
)

var JobStateMap = map[JobStatus]struct{}{
	JobPending:   {},
	JobRunning:   {},
	JobCanceled:  {},
	JobCompleted: {},
	JobError:     {},
	JobOK:        {},
}

type CommBackend = string

const (
	MemoryBackend CommBackend = "memory"
	NatsBackend   CommBackend = "nats"
)
