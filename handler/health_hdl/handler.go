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

package health_hdl

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
)

type monitor struct {
	def    lib_model.ComponentDefinition
	status lib_model.HealthStatus
	stop   chan struct{}
}

type Handler struct {
	httpClient     *http.Client
	defaultPeriod  time.Duration
	defaultTimeout time.Duration
	monitors       map[string]*monitor
	listener       func(lib_model.HealthEvent)
	mu             sync.RWMutex
	wg             sync.WaitGroup
}

func New(defaultPeriod, defaultTimeout time.Duration) *Handler {
	return &Handler{
		httpClient:     &http.Client{},
		defaultPeriod:  defaultPeriod,
		defaultTimeout: defaultTimeout,
		monitors:       make(map[string]*monitor),
	}
}

func (h *Handler) SetListener(listener func(lib_model.HealthEvent)) {
	h.mu.Lock()
	h.listener = listener
	h.mu.Unlock()
}

func (h *Handler) StartMonitoring(def lib_model.ComponentDefinition) error {
	if def.HealthCheck.Type == "" {
		return nil
	}
	if _, ok := lib_model.HealthCheckTypeMap[def.HealthCheck.Type]; !ok {
		return lib_model.NewInvalidInputError(fmt.Errorf("unknown health check type '%s'", def.HealthCheck.Type))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if mon, ok := h.monitors[def.ID]; ok {
		close(mon.stop)
	}
	mon := &monitor{
		def:  def,
		stop: make(chan struct{}),
		status: lib_model.HealthStatus{
			Status:      lib_model.CompHealthy,
			LastUpdated: time.Now().UTC(),
		},
	}
	h.monitors[def.ID] = mon
	h.wg.Add(1)
	go h.monitorLoop(mon)
	return nil
}

func (h *Handler) StopMonitoring(cID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	mon, ok := h.monitors[cID]
	if !ok {
		return
	}
	close(mon.stop)
	delete(h.monitors, cID)
}

func (h *Handler) Status(cID string) (lib_model.HealthStatus, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	mon, ok := h.monitors[cID]
	if !ok {
		return lib_model.HealthStatus{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not monitored", cID))
	}
	return mon.status, nil
}

func (h *Handler) Stop() {
	h.mu.Lock()
	for _, mon := range h.monitors {
		close(mon.stop)
	}
	h.monitors = make(map[string]*monitor)
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Handler) monitorLoop(mon *monitor) {
	defer h.wg.Done()
	hc := mon.def.HealthCheck
	if hc.InitialDelaySeconds > 0 {
		timer := time.NewTimer(time.Duration(hc.InitialDelaySeconds) * time.Second)
		select {
		case <-mon.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	period := time.Duration(hc.PeriodSeconds) * time.Second
	if period <= 0 {
		period = h.defaultPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-mon.stop:
			return
		case <-ticker.C:
			h.runCheck(mon)
		}
	}
}

func (h *Handler) runCheck(mon *monitor) {
	status := h.Check(context.Background(), mon.def)
	h.mu.Lock()
	previous := mon.status.Status
	mon.status = status
	listener := h.listener
	h.mu.Unlock()
	if previous != status.Status {
		util.HealthTransitions.WithLabelValues(status.Status).Inc()
		util.Logger.Warningf("component '%s' transitioned from %s to %s", mon.def.ID, previous, status.Status)
		if listener != nil {
			listener(lib_model.HealthEvent{
				ComponentID: mon.def.ID,
				Previous:    previous,
				Current:     status.Status,
				Status:      status,
				Time:        status.LastUpdated,
			})
		}
	}
}

func (h *Handler) Check(ctx context.Context, def lib_model.ComponentDefinition) lib_model.HealthStatus {
	hc := def.HealthCheck
	timeout := time.Duration(hc.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = h.defaultTimeout
	}
	ctxWt, cf := context.WithTimeout(ctx, timeout)
	defer cf()
	var result lib_model.HealthCheckResult
	switch hc.Type {
	case lib_model.HttpCheck:
		result = h.checkHttp(ctxWt, hc.Target)
	case lib_model.TcpCheck:
		result = checkTcp(ctxWt, hc.Target)
	case lib_model.ExecCheck:
		result = checkExec(ctxWt, hc.Target)
	case lib_model.GrpcCheck:
		result = checkGrpc(ctxWt, hc.Target)
	default:
		result = lib_model.HealthCheckResult{Name: hc.Type, Passed: false, Message: fmt.Sprintf("unknown health check type '%s'", hc.Type)}
	}
	status := lib_model.HealthStatus{
		Status:      lib_model.CompHealthy,
		Checks:      []lib_model.HealthCheckResult{result},
		LastUpdated: time.Now().UTC(),
	}
	if !result.Passed {
		status.Status = lib_model.CompUnhealthy
	}
	return status
}
