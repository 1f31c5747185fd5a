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

type DeployConfig struct {
	Replicas    *int              `json:"replicas"` // overrides scaling.min_replicas if set
	Environment map[string]string `json:"environment"`
}

type DeploymentResult struct {
	Success      bool              `json:"success"`
	DeploymentID string            `json:"deployment_id"`
	Status       DeploymentStatus  `json:"status"`
	Message      string            `json:"message"`
	Created      time.Time         `json:"created"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type DeploymentStatus struct {
	Phase             DepPhase       `json:"phase"`
	DesiredReplicas   int            `json:"desired_replicas"`
	CurrentReplicas   int            `json:"current_replicas"`
	ReadyReplicas     int            `json:"ready_replicas"`
	AvailableReplicas int            `json:"available_replicas"`
	Conditions        []DepCondition `json:"conditions"`
}

type DepCondition struct {
	Type    string    `json:"type"`
	Status  bool      `json:"status"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type BatchRequest struct {
	IDs []string `json:"ids"`
}
