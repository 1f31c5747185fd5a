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

type ScalingConfig struct {
	Replicas    *int           `json:"replicas"`
	Policy      *ScalingPolicy `json:"policy"`
	AutoScaling *bool          `json:"auto_scaling"`
}

type ScalingState struct {
	ComponentID     string        `json:"component_id"`
	CurrentReplicas int           `json:"current_replicas"`
	Policy          ScalingPolicy `json:"policy"`
	AutoScaling     bool          `json:"auto_scaling"`
	LastScaleAction *ScaleAction  `json:"last_scale_action"`
}

type ScaleAction struct {
	Direction ScaleDirection `json:"direction"`
	Replicas  int            `json:"replicas"`
	Time      time.Time      `json:"time"`
}

type ScalingEvent struct {
	ComponentID string         `json:"component_id"`
	Direction   ScaleDirection `json:"direction"`
	From        int            `json:"from"`
	To          int            `json:"to"`
	Reason      string         `json:"reason"`
	Time        time.Time      `json:"time"`
}
