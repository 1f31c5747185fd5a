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

package api

import (
	"context"
	"sync"
	"time"

	"github.com/SENERGY-Platform/mgw-component-manager/handler"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
	"github.com/SENERGY-Platform/mgw-component-manager/util/set"
)

const eventBufferSize = 64

type Api struct {
	registryHandler   handler.RegistryHandler
	dependencyHandler handler.DependencyHandler
	deploymentHandler handler.DeploymentHandler
	scalingHandler    handler.ScalingHandler
	healthHandler     handler.HealthHandler
	commHandler       handler.CommHandler
	storageHandler    handler.StorageHandler
	jobHandler        handler.JobHandler
	metricsProvider   handler.MetricsProvider
	maxHistory        int
	dbTimeout         time.Duration
	actionTimeout     time.Duration
	km                *util.KeyMutex
	events            chan lib_model.ComponentEvent
	recovered         set.Set[string]
	mu                sync.Mutex
}

func New(registryHandler handler.RegistryHandler, dependencyHandler handler.DependencyHandler, deploymentHandler handler.DeploymentHandler, scalingHandler handler.ScalingHandler, healthHandler handler.HealthHandler, commHandler handler.CommHandler, storageHandler handler.StorageHandler, jobHandler handler.JobHandler, metricsProvider handler.MetricsProvider, maxHistory int, dbTimeout, actionTimeout time.Duration) *Api {
	a := &Api{
		registryHandler:   registryHandler,
		dependencyHandler: dependencyHandler,
		deploymentHandler: deploymentHandler,
		scalingHandler:    scalingHandler,
		healthHandler:     healthHandler,
		commHandler:       commHandler,
		storageHandler:    storageHandler,
		jobHandler:        jobHandler,
		metricsProvider:   metricsProvider,
		maxHistory:        maxHistory,
		dbTimeout:         dbTimeout,
		actionTimeout:     actionTimeout,
		km:                util.NewKeyMutex(),
		events:            make(chan lib_model.ComponentEvent, eventBufferSize),
		recovered:         set.New[string](),
	}
	healthHandler.SetListener(a.onHealthEvent)
	scalingHandler.SetListener(a.onScalingEvent)
	return a
}

// Events exposes the component event stream. Events are dropped if the
// consumer falls behind.
func (a *Api) Events() <-chan lib_model.ComponentEvent {
	return a.events
}

func (a *Api) emit(eType lib_model.EventType, cID, msg string) {
	event := lib_model.ComponentEvent{
		Type:        eType,
		ComponentID: cID,
		Message:     msg,
		Time:        time.Now().UTC(),
	}
	select {
	case a.events <- event:
	default:
		util.Logger.Warningf("event buffer full, dropping %s event for component '%s'", eType, cID)
	}
}

func (a *Api) onScalingEvent(event lib_model.ScalingEvent) {
	a.emit(lib_model.ScalingEvtType, event.ComponentID, event.Reason)
}

// onHealthEvent reacts to a transition to unhealthy with a single automatic
// restart, further consecutive failures are reported but not retried.
func (a *Api) onHealthEvent(event lib_model.HealthEvent) {
	a.emit(lib_model.HealthChanged, event.ComponentID, event.Current)
	if event.Current != lib_model.CompUnhealthy {
		a.mu.Lock()
		a.recovered.Remove(event.ComponentID)
		a.mu.Unlock()
		return
	}
	a.mu.Lock()
	attempted := a.recovered.Has(event.ComponentID)
	if !attempted {
		a.recovered.Add(event.ComponentID)
	}
	a.mu.Unlock()
	if attempted {
		util.Logger.Errorf("component '%s' unhealthy after recovery attempt, not retrying", event.ComponentID)
		return
	}
	util.RecoveryAttempts.Inc()
	util.Logger.Warningf("component '%s' unhealthy, attempting restart", event.ComponentID)
	go func() {
		ctx, cf := context.WithTimeout(context.Background(), a.actionTimeout)
		defer cf()
		if err := a.RestartComponent(ctx, event.ComponentID); err != nil {
			util.Logger.Errorf("automatic restart of component '%s' failed: %s", event.ComponentID, err)
		}
	}()
}
