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

type CommConfig struct {
	Queue     *QueueConfig     `json:"queue" yaml:"queue"`
	Events    *EventBusConfig  `json:"events" yaml:"events"`
	Gateway   *GatewayConfig   `json:"gateway" yaml:"gateway"`
	Discovery *DiscoveryConfig `json:"discovery" yaml:"discovery"`
}

type QueueConfig struct {
	Backend    CommBackend `json:"backend" yaml:"backend"`
	Address    string      `json:"address" yaml:"address"` // host:port, empty for memory backend
	Topic      string      `json:"topic" yaml:"topic"`
	DeadLetter string      `json:"dead_letter" yaml:"dead_letter"` // dlq topic, defaults to topic + ".dlq"
	MaxRetries int         `json:"max_retries" yaml:"max_retries"`
}

type EventBusConfig struct {
	Backend  CommBackend `json:"backend" yaml:"backend"`
	Address  string      `json:"address" yaml:"address"`
	Subjects []string    `json:"subjects" yaml:"subjects"` // subscription patterns, '*' matches one segment
}

type GatewayConfig struct {
	Path       string   `json:"path" yaml:"path"`
	Upstream   string   `json:"upstream" yaml:"upstream"`
	Middleware []string `json:"middleware" yaml:"middleware"`
}

type DiscoveryConfig struct {
	ServiceName string `json:"service_name" yaml:"service_name"`
	Address     string `json:"address" yaml:"address"`
	Port        int    `json:"port" yaml:"port"`
}

type CommStatus struct {
	ComponentID string   `json:"component_id"`
	Queue       string   `json:"queue"`   // provisioned topic
	Events      []string `json:"events"`  // subscribed patterns
	Gateway     string   `json:"gateway"` // provisioned route path
	Discovery   string   `json:"discovery"`
	Connections []string `json:"connections"` // backend connection identities
}
