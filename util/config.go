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
	"github.com/SENERGY-Platform/go-service-base/srv-base"
	"github.com/y-du/go-log-level/level"
)

type DatabaseConfig struct {
	Host       string `json:"host" env_var:"DB_HOST"`
	Port       uint   `json:"port" env_var:"DB_PORT"`
	User       string `json:"user" env_var:"DB_USER"`
	Passwd     string `json:"passwd" env_var:"DB_PASSWD"`
	Name       string `json:"name" env_var:"DB_NAME"`
	Timeout    int64  `json:"timeout" env_var:"DB_TIMEOUT"`
	SchemaPath string `json:"schema_path" env_var:"DB_SCHEMA_PATH"`
}

type RuntimeClientConfig struct {
	BaseUrl string `json:"base_url" env_var:"RT_BASE_URL"`
	Timeout int64  `json:"timeout" env_var:"RT_TIMEOUT"`
}

type MetricsClientConfig struct {
	BaseUrl string `json:"base_url" env_var:"MC_BASE_URL"`
	Timeout int64  `json:"timeout" env_var:"MC_TIMEOUT"`
}

type DeployerConfig struct {
	Timeout    int64 `json:"timeout" env_var:"DEP_TIMEOUT"`
	MaxRetries int   `json:"max_retries" env_var:"DEP_MAX_RETRIES"`
	RetryDelay int64 `json:"retry_delay" env_var:"DEP_RETRY_DELAY"`
}

type ScalerConfig struct {
	EvalInterval      int64 `json:"eval_interval" env_var:"SCL_EVAL_INTERVAL"`
	ScaleUpCooldown   int64 `json:"scale_up_cooldown" env_var:"SCL_UP_COOLDOWN"`
	ScaleDownCooldown int64 `json:"scale_down_cooldown" env_var:"SCL_DOWN_COOLDOWN"`
}

type HealthMonitorConfig struct {
	DefaultPeriod  int64 `json:"default_period" env_var:"HM_DEFAULT_PERIOD"`
	DefaultTimeout int64 `json:"default_timeout" env_var:"HM_DEFAULT_TIMEOUT"`
}

type CommunicationConfig struct {
	NatsUrl string `json:"nats_url" env_var:"COMM_NATS_URL"`
	Timeout int64  `json:"timeout" env_var:"COMM_TIMEOUT"`
}

type JobsConfig struct {
	BufferSize  int   `json:"buffer_size" env_var:"JOBS_BUFFER_SIZE"`
	MaxNumber   int   `json:"max_number" env_var:"JOBS_MAX_NUMBER"`
	CCHInterval int   `json:"cch_interval" env_var:"JOBS_CCH_INTERVAL"`
	JHInterval  int   `json:"jh_interval" env_var:"JOBS_JH_INTERVAL"`
	MaxAge      int64 `json:"max_age" env_var:"JOBS_MAX_AGE"`
}

type SnapshotsConfig struct {
	MaxHistory int `json:"max_history" env_var:"SNAPSHOTS_MAX_HISTORY"`
}

type Config struct {
	ServerPort        uint                  `json:"server_port" env_var:"SERVER_PORT"`
	Database          DatabaseConfig        `json:"database" env_var:"DATABASE_CONFIG"`
	RuntimeClient     RuntimeClientConfig   `json:"runtime_client" env_var:"RUNTIME_CLIENT_CONFIG"`
	MetricsClient     MetricsClientConfig   `json:"metrics_client" env_var:"METRICS_CLIENT_CONFIG"`
	Deployer          DeployerConfig        `json:"deployer" env_var:"DEPLOYER_CONFIG"`
	Scaler            ScalerConfig          `json:"scaler" env_var:"SCALER_CONFIG"`
	HealthMonitor     HealthMonitorConfig   `json:"health_monitor" env_var:"HEALTH_MONITOR_CONFIG"`
	Communication     CommunicationConfig   `json:"communication" env_var:"COMMUNICATION_CONFIG"`
	Jobs              JobsConfig            `json:"jobs" env_var:"JOBS_CONFIG"`
	Snapshots         SnapshotsConfig       `json:"snapshots" env_var:"SNAPSHOTS_CONFIG"`
	Logger            srv_base.LoggerConfig `json:"logger" env_var:"LOGGER_CONFIG"`
	ComponentDefsPath string                `json:"component_defs_path" env_var:"COMPONENT_DEFS_PATH"`
	ManagerIDPath     string                `json:"manager_id_path" env_var:"MANAGER_ID_PATH"`
}

func NewConfig(path string) (*Config, error) {
	cfg := Config{
		ServerPort: 80,
		Database: DatabaseConfig{
			Host:       "core-db",
			Port:       3306,
			Name:       "component_manager",
			Timeout:    5000000000,
			SchemaPath: "include/storage_schema.sql",
		},
		RuntimeClient: RuntimeClientConfig{
			BaseUrl: "http://core-api/runtime",
			Timeout: 10000000000,
		},
		MetricsClient: MetricsClientConfig{
			BaseUrl: "http://core-api/monitoring",
			Timeout: 10000000000,
		},
		Deployer: DeployerConfig{
			Timeout:    30000000000,
			MaxRetries: 3,
			RetryDelay: 2000000000,
		},
		Scaler: ScalerConfig{
			EvalInterval:      30000000000,
			ScaleUpCooldown:   180000000000,
			ScaleDownCooldown: 300000000000,
		},
		HealthMonitor: HealthMonitorConfig{
			DefaultPeriod:  30000000000,
			DefaultTimeout: 5000000000,
		},
		Communication: CommunicationConfig{
			Timeout: 10000000000,
		},
		Jobs: JobsConfig{
			BufferSize:  50,
			MaxNumber:   10,
			CCHInterval: 500000,
			JHInterval:  500000,
			MaxAge:      3600000000,
		},
		Snapshots: SnapshotsConfig{
			MaxHistory: 5,
		},
		Logger: srv_base.LoggerConfig{
			Level:        level.Warning,
			Utc:          true,
			Microseconds: true,
			Terminal:     true,
		},
		ManagerIDPath: "/opt/component-manager/mid",
	}
	err := srv_base.LoadConfig(&path, &cfg, nil, nil, nil)
	return &cfg, err
}
