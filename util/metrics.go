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

package util

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ComponentsRegistered prometheus.Gauge
	DeploymentsTotal     *prometheus.CounterVec
	DeploymentsFailed    *prometheus.CounterVec
	ScaleActionsTotal    *prometheus.CounterVec
	HealthTransitions    *prometheus.CounterVec
	RecoveryAttempts     prometheus.Counter
)

func InitMetrics() {
	ComponentsRegistered = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mgw",
		Subsystem: "component_manager",
		Name:      "components_registered",
		Help:      "Number of registered components",
	})

	DeploymentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mgw",
		Subsystem: "component_manager",
		Name:      "deployments_total",
		Help:      "Total deployment actions",
	}, []string{"type"})

	DeploymentsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mgw",
		Subsystem: "component_manager",
		Name:      "deployments_failed_total",
		Help:      "Failed deployment actions",
	}, []string{"type"})

	ScaleActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mgw",
		Subsystem: "component_manager",
		Name:      "scale_actions_total",
		Help:      "Executed scale actions",
	}, []string{"direction"})

	HealthTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mgw",
		Subsystem: "component_manager",
		Name:      "health_transitions_total",
		Help:      "Health state transitions",
	}, []string{"state"})

	RecoveryAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mgw",
		Subsystem: "component_manager",
		Name:      "recovery_attempts_total",
		Help:      "Automatic recovery restarts",
	})

	prometheus.MustRegister(ComponentsRegistered, DeploymentsTotal, DeploymentsFailed, ScaleActionsTotal, HealthTransitions, RecoveryAttempts)
}
