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
	"testing"
	"time"

	srv_base "github.com/SENERGY-Platform/go-service-base/srv-base"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
	"github.com/y-du/go-log-level/level"
)

func init() {
	_, _ = util.InitLogger(srv_base.LoggerConfig{Level: level.Debug, Terminal: true})
	util.InitMetrics()
}

type mtrProviderMock struct {
	metrics lib_model.ComponentMetrics
	err     error
}

func (m *mtrProviderMock) GetMetrics(_ context.Context, _ string) (lib_model.ComponentMetrics, error) {
	return m.metrics, m.err
}

type depHdlMock struct {
	replicas map[string]int
	err      error
}

func newDepHdlMock() *depHdlMock {
	return &depHdlMock{replicas: make(map[string]int)}
}

func (m *depHdlMock) Deploy(_ context.Context, _ lib_model.ComponentDefinition, _ lib_model.DeployConfig) lib_model.DeploymentResult {
	return lib_model.DeploymentResult{}
}

func (m *depHdlMock) Update(_ context.Context, _ lib_model.ComponentDefinition) lib_model.DeploymentResult {
	return lib_model.DeploymentResult{}
}

func (m *depHdlMock) Rollback(_ context.Context, _ lib_model.ComponentDefinition) lib_model.DeploymentResult {
	return lib_model.DeploymentResult{}
}

func (m *depHdlMock) Restart(_ context.Context, _ string) error { return nil }

func (m *depHdlMock) Remove(_ context.Context, _ string) error { return nil }

func (m *depHdlMock) Scale(_ context.Context, cID string, replicas int) error {
	if m.err != nil {
		return m.err
	}
	m.replicas[cID] = replicas
	return nil
}

func (m *depHdlMock) Status(_ string) (lib_model.DeploymentResult, error) {
	return lib_model.DeploymentResult{}, nil
}

func intPtr(i int) *int { return &i }

func testPolicy() lib_model.ScalingPolicy {
	return lib_model.ScalingPolicy{
		MinReplicas:          1,
		MaxReplicas:          10,
		TargetCPUUtilization: intPtr(50),
	}
}

func newTestHandler(mtr *mtrProviderMock, dep *depHdlMock) *Handler {
	return New(mtr, dep, time.Hour, time.Second*180, time.Second*300, time.Second)
}

func TestHandler_EnableAutoScaling(t *testing.T) {
	mtr := &mtrProviderMock{}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	policy := testPolicy()
	policy.MinReplicas = 3
	if err := h.EnableAutoScaling("comp-a", policy); err != nil {
		t.Error("err != nil")
	}
	st, err := h.State("comp-a")
	if err != nil {
		t.Error("err != nil")
	}
	if st.CurrentReplicas != 3 {
		t.Errorf("%d != 3", st.CurrentReplicas)
	}
	if !st.AutoScaling {
		t.Error("auto scaling not enabled")
	}
	t.Run("disable", func(t *testing.T) {
		h.DisableAutoScaling("comp-a")
		st, err = h.State("comp-a")
		if err != nil {
			t.Error("err != nil")
		}
		if st.AutoScaling {
			t.Error("auto scaling still enabled")
		}
	})
}

func TestHandler_EvaluateScaleUp(t *testing.T) {
	mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{CPUUtilization: 80}}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	if err := h.EnableAutoScaling("comp-a", testPolicy()); err != nil {
		t.Error("err != nil")
	}
	if err := h.evaluate(context.Background(), "comp-a"); err != nil {
		t.Error("err != nil")
	}
	st, _ := h.State("comp-a")
	if st.CurrentReplicas != 2 {
		t.Errorf("%d != 2", st.CurrentReplicas)
	}
	if st.LastScaleAction == nil || st.LastScaleAction.Direction != lib_model.ScaleUp {
		t.Error("last scale action not recorded")
	}
	if dep.replicas["comp-a"] != 2 {
		t.Errorf("%d != 2", dep.replicas["comp-a"])
	}
}

func TestHandler_EvaluateScaleDown(t *testing.T) {
	mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{CPUUtilization: 10}}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	policy := testPolicy()
	policy.MinReplicas = 1
	if err := h.EnableAutoScaling("comp-a", policy); err != nil {
		t.Error("err != nil")
	}
	h.mu.Lock()
	h.states["comp-a"].currentReplicas = 4
	h.mu.Unlock()
	if err := h.evaluate(context.Background(), "comp-a"); err != nil {
		t.Error("err != nil")
	}
	st, _ := h.State("comp-a")
	if st.CurrentReplicas != 3 {
		t.Errorf("%d != 3", st.CurrentReplicas)
	}
	if st.LastScaleAction == nil || st.LastScaleAction.Direction != lib_model.ScaleDown {
		t.Error("last scale action not recorded")
	}
}

func TestHandler_EvaluateHysteresis(t *testing.T) {
	// 52 is above target but below target * 1.1, 40 is below target but above target * 0.7
	for _, cpu := range []float64{52, 40, 50} {
		mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{CPUUtilization: cpu}}
		dep := newDepHdlMock()
		h := newTestHandler(mtr, dep)
		if err := h.EnableAutoScaling("comp-a", testPolicy()); err != nil {
			t.Error("err != nil")
		}
		h.mu.Lock()
		h.states["comp-a"].currentReplicas = 4
		h.mu.Unlock()
		if err := h.evaluate(context.Background(), "comp-a"); err != nil {
			t.Error("err != nil")
		}
		st, _ := h.State("comp-a")
		if st.CurrentReplicas != 4 {
			t.Errorf("cpu %f: %d != 4", cpu, st.CurrentReplicas)
		}
		h.Stop()
	}
}

func TestHandler_EvaluateCooldown(t *testing.T) {
	mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{CPUUtilization: 80}}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	if err := h.EnableAutoScaling("comp-a", testPolicy()); err != nil {
		t.Error("err != nil")
	}
	if err := h.evaluate(context.Background(), "comp-a"); err != nil {
		t.Error("err != nil")
	}
	if err := h.evaluate(context.Background(), "comp-a"); err != nil {
		t.Error("err != nil")
	}
	st, _ := h.State("comp-a")
	if st.CurrentReplicas != 2 {
		t.Errorf("%d != 2", st.CurrentReplicas)
	}
	t.Run("elapsed cooldown allows action", func(t *testing.T) {
		h.mu.Lock()
		h.states["comp-a"].lastScaleAction.Time = time.Now().UTC().Add(-time.Second * 200)
		h.mu.Unlock()
		if err := h.evaluate(context.Background(), "comp-a"); err != nil {
			t.Error("err != nil")
		}
		st, _ = h.State("comp-a")
		if st.CurrentReplicas != 3 {
			t.Errorf("%d != 3", st.CurrentReplicas)
		}
	})
	t.Run("scale down cooldown is longer", func(t *testing.T) {
		mtr.metrics = lib_model.ComponentMetrics{CPUUtilization: 10}
		h.mu.Lock()
		h.states["comp-a"].lastScaleAction.Time = time.Now().UTC().Add(-time.Second * 200)
		h.mu.Unlock()
		if err := h.evaluate(context.Background(), "comp-a"); err != nil {
			t.Error("err != nil")
		}
		st, _ = h.State("comp-a")
		if st.CurrentReplicas != 3 {
			t.Errorf("%d != 3", st.CurrentReplicas)
		}
		h.mu.Lock()
		h.states["comp-a"].lastScaleAction.Time = time.Now().UTC().Add(-time.Second * 301)
		h.mu.Unlock()
		if err := h.evaluate(context.Background(), "comp-a"); err != nil {
			t.Error("err != nil")
		}
		st, _ = h.State("comp-a")
		if st.CurrentReplicas != 2 {
			t.Errorf("%d != 2", st.CurrentReplicas)
		}
	})
}

func TestHandler_EvaluateSteps(t *testing.T) {
	t.Run("fixed step", func(t *testing.T) {
		mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{CPUUtilization: 80}}
		dep := newDepHdlMock()
		h := newTestHandler(mtr, dep)
		defer h.Stop()
		policy := testPolicy()
		policy.ScaleUp = lib_model.StepPolicy{Type: lib_model.FixedStep, Value: 3}
		if err := h.EnableAutoScaling("comp-a", policy); err != nil {
			t.Error("err != nil")
		}
		if err := h.evaluate(context.Background(), "comp-a"); err != nil {
			t.Error("err != nil")
		}
		st, _ := h.State("comp-a")
		if st.CurrentReplicas != 4 {
			t.Errorf("%d != 4", st.CurrentReplicas)
		}
	})
	t.Run("percent step rounds up", func(t *testing.T) {
		mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{CPUUtilization: 80}}
		dep := newDepHdlMock()
		h := newTestHandler(mtr, dep)
		defer h.Stop()
		policy := testPolicy()
		policy.ScaleUp = lib_model.StepPolicy{Type: lib_model.PercentStep, Value: 50}
		if err := h.EnableAutoScaling("comp-a", policy); err != nil {
			t.Error("err != nil")
		}
		h.mu.Lock()
		h.states["comp-a"].currentReplicas = 3
		h.mu.Unlock()
		// 50% of 3 is 1.5, rounded up to 2
		if err := h.evaluate(context.Background(), "comp-a"); err != nil {
			t.Error("err != nil")
		}
		st, _ := h.State("comp-a")
		if st.CurrentReplicas != 5 {
			t.Errorf("%d != 5", st.CurrentReplicas)
		}
	})
	t.Run("percent step rounds down", func(t *testing.T) {
		mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{CPUUtilization: 10}}
		dep := newDepHdlMock()
		h := newTestHandler(mtr, dep)
		defer h.Stop()
		policy := testPolicy()
		policy.ScaleDown = lib_model.StepPolicy{Type: lib_model.PercentStep, Value: 50}
		if err := h.EnableAutoScaling("comp-a", policy); err != nil {
			t.Error("err != nil")
		}
		h.mu.Lock()
		h.states["comp-a"].currentReplicas = 5
		h.mu.Unlock()
		// 50% of 5 is 2.5, rounded down to 2
		if err := h.evaluate(context.Background(), "comp-a"); err != nil {
			t.Error("err != nil")
		}
		st, _ := h.State("comp-a")
		if st.CurrentReplicas != 3 {
			t.Errorf("%d != 3", st.CurrentReplicas)
		}
	})
}

func TestHandler_EvaluateClamp(t *testing.T) {
	mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{CPUUtilization: 80}}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	policy := testPolicy()
	policy.MaxReplicas = 2
	policy.ScaleUp = lib_model.StepPolicy{Type: lib_model.FixedStep, Value: 5}
	if err := h.EnableAutoScaling("comp-a", policy); err != nil {
		t.Error("err != nil")
	}
	if err := h.evaluate(context.Background(), "comp-a"); err != nil {
		t.Error("err != nil")
	}
	st, _ := h.State("comp-a")
	if st.CurrentReplicas != 2 {
		t.Errorf("%d != 2", st.CurrentReplicas)
	}
	t.Run("no action when already at bound", func(t *testing.T) {
		h.mu.Lock()
		h.states["comp-a"].lastScaleAction = nil
		h.mu.Unlock()
		if err := h.evaluate(context.Background(), "comp-a"); err != nil {
			t.Error("err != nil")
		}
		st, _ = h.State("comp-a")
		if st.LastScaleAction != nil {
			t.Error("action issued at max replicas")
		}
	})
}

func TestHandler_EvaluateCustomMetrics(t *testing.T) {
	mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{
		CPUUtilization: 40,
		Custom:         map[string]float64{"queue_depth": 200},
	}}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	policy := testPolicy()
	policy.CustomMetrics = []lib_model.CustomMetricTarget{{Name: "queue_depth", Target: 100}}
	if err := h.EnableAutoScaling("comp-a", policy); err != nil {
		t.Error("err != nil")
	}
	if err := h.evaluate(context.Background(), "comp-a"); err != nil {
		t.Error("err != nil")
	}
	st, _ := h.State("comp-a")
	if st.CurrentReplicas != 2 {
		t.Errorf("%d != 2", st.CurrentReplicas)
	}
}

func TestHandler_ManualScale(t *testing.T) {
	mtr := &mtrProviderMock{}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	if err := h.EnableAutoScaling("comp-a", testPolicy()); err != nil {
		t.Error("err != nil")
	}
	if err := h.Scale(context.Background(), "comp-a", lib_model.ScalingConfig{Replicas: intPtr(5)}); err != nil {
		t.Error("err != nil")
	}
	st, _ := h.State("comp-a")
	if st.CurrentReplicas != 5 {
		t.Errorf("%d != 5", st.CurrentReplicas)
	}
	t.Run("clamped to max", func(t *testing.T) {
		if err := h.Scale(context.Background(), "comp-a", lib_model.ScalingConfig{Replicas: intPtr(100)}); err != nil {
			t.Error("err != nil")
		}
		st, _ = h.State("comp-a")
		if st.CurrentReplicas != 10 {
			t.Errorf("%d != 10", st.CurrentReplicas)
		}
	})
	t.Run("toggle auto scaling off", func(t *testing.T) {
		autoScaling := false
		if err := h.Scale(context.Background(), "comp-a", lib_model.ScalingConfig{AutoScaling: &autoScaling}); err != nil {
			t.Error("err != nil")
		}
		st, _ = h.State("comp-a")
		if st.AutoScaling {
			t.Error("auto scaling still enabled")
		}
	})
	t.Run("unknown component", func(t *testing.T) {
		if err := h.Scale(context.Background(), "comp-x", lib_model.ScalingConfig{Replicas: intPtr(2)}); err == nil {
			t.Error("err == nil")
		}
	})
}

func TestHandler_UpdatePolicy(t *testing.T) {
	mtr := &mtrProviderMock{}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	if err := h.EnableAutoScaling("comp-a", testPolicy()); err != nil {
		t.Error("err != nil")
	}
	if err := h.Scale(context.Background(), "comp-a", lib_model.ScalingConfig{Replicas: intPtr(8)}); err != nil {
		t.Error("err != nil")
	}
	policy := testPolicy()
	policy.MaxReplicas = 5
	if err := h.UpdatePolicy(context.Background(), "comp-a", policy); err != nil {
		t.Error("err != nil")
	}
	st, _ := h.State("comp-a")
	if st.CurrentReplicas != 5 {
		t.Errorf("%d != 5", st.CurrentReplicas)
	}
	if dep.replicas["comp-a"] != 5 {
		t.Errorf("%d != 5", dep.replicas["comp-a"])
	}
}

func TestHandler_Listener(t *testing.T) {
	mtr := &mtrProviderMock{metrics: lib_model.ComponentMetrics{CPUUtilization: 80}}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	var events []lib_model.ScalingEvent
	h.SetListener(func(e lib_model.ScalingEvent) {
		events = append(events, e)
	})
	if err := h.EnableAutoScaling("comp-a", testPolicy()); err != nil {
		t.Error("err != nil")
	}
	if err := h.evaluate(context.Background(), "comp-a"); err != nil {
		t.Error("err != nil")
	}
	if len(events) != 1 {
		t.Errorf("%d != 1", len(events))
	}
	if events[0].From != 1 || events[0].To != 2 || events[0].Direction != lib_model.ScaleUp {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestHandler_Remove(t *testing.T) {
	mtr := &mtrProviderMock{}
	dep := newDepHdlMock()
	h := newTestHandler(mtr, dep)
	defer h.Stop()
	if err := h.EnableAutoScaling("comp-a", testPolicy()); err != nil {
		t.Error("err != nil")
	}
	h.Remove("comp-a")
	if _, err := h.State("comp-a"); err == nil {
		t.Error("err == nil")
	}
}
