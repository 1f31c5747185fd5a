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

type ComponentMetrics struct {
	CPUUtilization    float64            `json:"cpu_utilization"`    // percent of requested
	MemoryUtilization float64            `json:"memory_utilization"` // percent of requested
	NetworkIn         int64              `json:"network_in"`
	NetworkOut        int64              `json:"network_out"`
	RequestRate       float64            `json:"request_rate"`
	RequestLatency    float64            `json:"request_latency"` // milliseconds
	StatusCodes       map[string]int64   `json:"status_codes"`
	ErrorCount        int64              `json:"error_count"`
	Custom            map[string]float64 `json:"custom"`
	Collected         time.Time          `json:"collected"`
}
