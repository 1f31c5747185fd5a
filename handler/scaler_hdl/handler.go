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

package scaler_hdl

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/SENERGY-Platform/mgw-component-manager/handler"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
)

const (
	scaleUpFactor   = 1.1
	scaleDownFactor = 0.7
)

type state struct {
	currentReplicas int
	policy          lib_model.ScalingPolicy
	autoScaling     bool
	lastScaleAction *lib_model.ScaleAction
	stop            chan struct{}
}

type Handler struct {
	metricsProvider   handler.MetricsProvider
	deploymentHandler handler.DeploymentHandler
	evalInterval      time.Duration
	scaleUpCooldown   time.Duration
	scaleDownCooldown time.Duration
	timeout           time.Duration
	states            map[string]*state
	listener          func(lib_model.ScalingEvent)
	mu                sync.RWMutex
	wg                sync.WaitGroup
}

func New(metricsProvider handler.MetricsProvider, deploymentHandler handler.DeploymentHandler, evalInterval, scaleUpCooldown, scaleDownCooldown, timeout time.Duration) *Handler {
	return &Handler{
		metricsProvider:   metricsProvider,
		deploymentHandler: deploymentHandler,
		evalInterval:      evalInterval,
		scaleUpCooldown:   scaleUpCooldown,
		scaleDownCooldown: scaleDownCooldown,
		timeout:           timeout,
		states:            make(map[string]*state),
	}
}

func (h *Handler) SetListener(listener func(lib_model.ScalingEvent)) {
	h.mu.Lock()
	h.listener = listener
	h.mu.Unlock()
}

func (h *Handler) EnableAutoScaling(cID string, policy lib_model.ScalingPolicy) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.states[cID]
	if !ok {
		st = &state{}
		h.states[cID] = st
	}
	st.policy = policy
	st.currentReplicas = policy.MinReplicas
	if st.autoScaling {
		return nil
	}
	st.autoScaling = true
	st.stop = make(chan struct{})
	h.wg.Add(1)
	go h.evalLoop(cID, st.stop)
	return nil
}

func (h *Handler) DisableAutoScaling(cID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.states[cID]
	if !ok || !st.autoScaling {
		return
	}
	st.autoScaling = false
	close(st.stop)
	st.stop = nil
}

func (h *Handler) Scale(ctx context.Context, cID string, config lib_model.ScalingConfig) error {
	if config.Policy != nil {
		if err := h.UpdatePolicy(ctx, cID, *config.Policy); err != nil {
			return err
		}
	}
	if config.Replicas != nil {
		h.mu.RLock()
		st, ok := h.states[cID]
		if !ok {
			h.mu.RUnlock()
			return lib_model.NewNotFoundError(fmt.Errorf("no scaling state for component '%s'", cID))
		}
		policy := st.policy
		current := st.currentReplicas
		h.mu.RUnlock()
		target := clamp(*config.Replicas, policy.MinReplicas, policy.MaxReplicas)
		if target != current {
			direction := lib_model.ScaleUp
			if target < current {
				direction = lib_model.ScaleDown
			}
			if err := h.execScale(ctx, cID, current, target, direction, "manual scale"); err != nil {
				return err
			}
		}
	}
	if config.AutoScaling != nil {
		if *config.AutoScaling {
			h.mu.RLock()
			st, ok := h.states[cID]
			var policy lib_model.ScalingPolicy
			if ok {
				policy = st.policy
			}
			h.mu.RUnlock()
			if !ok {
				return lib_model.NewNotFoundError(fmt.Errorf("no scaling state for component '%s'", cID))
			}
			return h.EnableAutoScaling(cID, policy)
		}
		h.DisableAutoScaling(cID)
	}
	return nil
}

func (h *Handler) UpdatePolicy(ctx context.Context, cID string, policy lib_model.ScalingPolicy) error {
	h.mu.Lock()
	st, ok := h.states[cID]
	if !ok {
		st = &state{currentReplicas: policy.MinReplicas}
		h.states[cID] = st
	}
	st.policy = policy
	current := st.currentReplicas
	h.mu.Unlock()
	clamped := clamp(current, policy.MinReplicas, policy.MaxReplicas)
	if clamped != current {
		direction := lib_model.ScaleUp
		if clamped < current {
			direction = lib_model.ScaleDown
		}
		return h.execScale(ctx, cID, current, clamped, direction, "policy bounds changed")
	}
	return nil
}

func (h *Handler) State(cID string) (lib_model.ScalingState, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	st, ok := h.states[cID]
	if !ok {
		return lib_model.ScalingState{}, lib_model.NewNotFoundError(fmt.Errorf("no scaling state for component '%s'", cID))
	}
	scalingState := lib_model.ScalingState{
		ComponentID:     cID,
		CurrentReplicas: st.currentReplicas,
		Policy:          st.policy,
		AutoScaling:     st.autoScaling,
	}
	if st.lastScaleAction != nil {
		action := *st.lastScaleAction
		scalingState.LastScaleAction = &action
	}
	return scalingState, nil
}

func (h *Handler) Remove(cID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.states[cID]
	if !ok {
		return
	}
	if st.autoScaling {
		close(st.stop)
	}
	delete(h.states, cID)
}

func (h *Handler) Stop() {
	h.mu.Lock()
	for _, st := range h.states {
		if st.autoScaling {
			st.autoScaling = false
			close(st.stop)
			st.stop = nil
		}
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Handler) evalLoop(cID string, stop chan struct{}) {
	defer h.wg.Done()
	ticker := time.NewTicker(h.evalInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cf := context.WithTimeout(context.Background(), h.timeout)
			if err := h.evaluate(ctx, cID); err != nil {
				util.Logger.Errorf("scaling evaluation for component '%s' failed: %s", cID, err)
			}
			cf()
		}
	}
}

func (h *Handler) evaluate(ctx context.Context, cID string) error {
	h.mu.RLock()
	st, ok := h.states[cID]
	if !ok || !st.autoScaling {
		h.mu.RUnlock()
		return nil
	}
	policy := st.policy
	current := st.currentReplicas
	lastAction := st.lastScaleAction
	h.mu.RUnlock()
	metrics, err := h.metricsProvider.GetMetrics(ctx, cID)
	if err != nil {
		return err
	}
	direction, reason := decide(policy, metrics)
	if direction == "" {
		return nil
	}
	if lastAction != nil {
		cooldown := h.scaleUpCooldown
		if direction == lib_model.ScaleDown {
			cooldown = h.scaleDownCooldown
		}
		if time.Since(lastAction.Time) < cooldown {
			return nil
		}
	}
	var target int
	if direction == lib_model.ScaleUp {
		target = current + stepUp(policy.ScaleUp, current)
	} else {
		target = current - stepDown(policy.ScaleDown, current)
	}
	target = clamp(target, policy.MinReplicas, policy.MaxReplicas)
	if target == current {
		return nil
	}
	return h.execScale(ctx, cID, current, target, direction, reason)
}

func (h *Handler) execScale(ctx context.Context, cID string, from, to int, direction lib_model.ScaleDirection, reason string) error {
	if err := h.deploymentHandler.Scale(ctx, cID, to); err != nil {
		return err
	}
	util.ScaleActionsTotal.WithLabelValues(direction).Inc()
	now := time.Now().UTC()
	h.mu.Lock()
	st, ok := h.states[cID]
	if ok {
		st.currentReplicas = to
		st.lastScaleAction = &lib_model.ScaleAction{Direction: direction, Replicas: to, Time: now}
	}
	listener := h.listener
	h.mu.Unlock()
	util.Logger.Infof("scaled component '%s' %s from %d to %d (%s)", cID, direction, from, to, reason)
	if listener != nil {
		listener(lib_model.ScalingEvent{
			ComponentID: cID,
			Direction:   direction,
			From:        from,
			To:          to,
			Reason:      reason,
			Time:        now,
		})
	}
	return nil
}

// decide compares each targeted metric against its threshold with hysteresis.
// Any metric above target demands a scale up, all metrics below the lower
// bound allow a scale down.
func decide(policy lib_model.ScalingPolicy, metrics lib_model.ComponentMetrics) (lib_model.ScaleDirection, string) {
	type sample struct {
		name   string
		value  float64
		target float64
	}
	var samples []sample
	if policy.TargetCPUUtilization != nil {
		samples = append(samples, sample{"cpu", metrics.CPUUtilization, float64(*policy.TargetCPUUtilization)})
	}
	if policy.TargetMemoryUtilization != nil {
		samples = append(samples, sample{"memory", metrics.MemoryUtilization, float64(*policy.TargetMemoryUtilization)})
	}
	for _, cm := range policy.CustomMetrics {
		if value, ok := metrics.Custom[cm.Name]; ok {
			samples = append(samples, sample{cm.Name, value, cm.Target})
		}
	}
	if len(samples) == 0 {
		return "", ""
	}
	allBelow := true
	for _, s := range samples {
		if s.value > s.target*scaleUpFactor {
			return lib_model.ScaleUp, fmt.Sprintf("%s %.2f above target %.2f", s.name, s.value, s.target)
		}
		if s.value >= s.target*scaleDownFactor {
			allBelow = false
		}
	}
	if allBelow {
		return lib_model.ScaleDown, "all metrics below scale down threshold"
	}
	return "", ""
}

func stepUp(step lib_model.StepPolicy, current int) int {
	switch step.Type {
	case lib_model.PercentStep:
		if step.Value > 0 {
			return int(math.Ceil(float64(current) * float64(step.Value) / 100))
		}
	case "", lib_model.FixedStep:
		if step.Value > 0 {
			return step.Value
		}
	}
	return 1
}

func stepDown(step lib_model.StepPolicy, current int) int {
	switch step.Type {
	case lib_model.PercentStep:
		if step.Value > 0 {
			delta := int(math.Floor(float64(current) * float64(step.Value) / 100))
			if delta > 0 {
				return delta
			}
		}
	case "", lib_model.FixedStep:
		if step.Value > 0 {
			return step.Value
		}
	}
	return 1
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
