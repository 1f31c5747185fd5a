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
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

type txMock struct{}

func (t *txMock) Commit() error   { return nil }
func (t *txMock) Rollback() error { return nil }

type regHdlMock struct {
	mu         sync.RWMutex
	components map[string]lib_model.Component
}

func newRegHdlMock() *regHdlMock {
	return &regHdlMock{components: make(map[string]lib_model.Component)}
}

func (m *regHdlMock) Init(_ context.Context) error { return nil }

func (m *regHdlMock) Register(_ context.Context, def lib_model.ComponentDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.components[def.ID]; ok {
		return lib_model.NewInvalidInputError(fmt.Errorf("component '%s' already registered", def.ID))
	}
	m.components[def.ID] = lib_model.Component{ComponentDefinition: def, Created: time.Now().UTC()}
	return nil
}

func (m *regHdlMock) Unregister(_ context.Context, cID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.components[cID]; !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
	}
	delete(m.components, cID)
	return nil
}

func (m *regHdlMock) Get(_ context.Context, cID string) (lib_model.Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	comp, ok := m.components[cID]
	if !ok {
		return lib_model.Component{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
	}
	return comp, nil
}

func (m *regHdlMock) List(_ context.Context, filter lib_model.ComponentFilter) (map[string]lib_model.Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	components := make(map[string]lib_model.Component)
	for id, comp := range m.components {
		if filter.Name != "" && comp.Name != filter.Name {
			continue
		}
		if filter.Type != "" && comp.Type != filter.Type {
			continue
		}
		components[id] = comp
	}
	return components, nil
}

func (m *regHdlMock) Update(_ context.Context, cID string, update lib_model.ComponentUpdate) (lib_model.ComponentDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comp, ok := m.components[cID]
	if !ok {
		return lib_model.ComponentDefinition{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
	}
	if update.Name != nil {
		comp.Name = *update.Name
	}
	if update.Version != nil {
		comp.Version = *update.Version
	}
	if update.Resources != nil {
		comp.Resources = *update.Resources
	}
	if update.Scaling != nil {
		comp.Scaling = *update.Scaling
	}
	if update.HealthCheck != nil {
		comp.HealthCheck = *update.HealthCheck
	}
	if update.Dependencies != nil {
		comp.Dependencies = *update.Dependencies
	}
	for k, v := range update.Metadata {
		if comp.Metadata == nil {
			comp.Metadata = make(map[string]string)
		}
		comp.Metadata[k] = v
	}
	comp.Updated = time.Now().UTC()
	m.components[cID] = comp
	return comp.ComponentDefinition, nil
}

func (m *regHdlMock) SetDefinition(_ context.Context, def lib_model.ComponentDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comp, ok := m.components[def.ID]
	if !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", def.ID))
	}
	comp.ComponentDefinition = def
	comp.Updated = time.Now().UTC()
	m.components[def.ID] = comp
	return nil
}

func (m *regHdlMock) FindDependents(_ context.Context, cID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var dependents []string
	for id, comp := range m.components {
		for _, dID := range comp.Dependencies {
			if dID == cID {
				dependents = append(dependents, id)
				break
			}
		}
	}
	return dependents, nil
}

func (m *regHdlMock) Exists(_ context.Context, cID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.components[cID]
	return ok, nil
}

func (m *regHdlMock) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.components), nil
}

type dpnHdlMock struct {
	mu          sync.Mutex
	validateErr error
	order       []string
}

func (m *dpnHdlMock) Resolve(_ context.Context, _ string) (map[string]lib_model.ComponentDefinition, error) {
	return nil, nil
}

func (m *dpnHdlMock) Validate(_ context.Context, _ []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateErr
}

func (m *dpnHdlMock) GetInstallOrder(_ context.Context, cIDs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.order != nil {
		return m.order, nil
	}
	return cIDs, nil
}

func (m *dpnHdlMock) GetDependencyTree(_ context.Context, _ string) (map[string][]string, error) {
	return nil, nil
}

func (m *dpnHdlMock) FindAffected(_ context.Context, _ string) ([]string, error) { return nil, nil }

func (m *dpnHdlMock) ValidateUpdateOrder(_ context.Context, cIDs []string) ([]string, error) {
	return cIDs, nil
}

type depHdlMock struct {
	mu        sync.Mutex
	deployed  map[string]lib_model.DeploymentResult
	failNext  bool
	updates   int
	rollbacks int
	restarts  int
}

func newDepHdlMock() *depHdlMock {
	return &depHdlMock{deployed: make(map[string]lib_model.DeploymentResult)}
}

func (m *depHdlMock) Deploy(_ context.Context, def lib_model.ComponentDefinition, _ lib_model.DeployConfig) lib_model.DeploymentResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return lib_model.DeploymentResult{Success: false, Message: "deploy failed", Status: lib_model.DeploymentStatus{Phase: lib_model.DepFailed}}
	}
	result := lib_model.DeploymentResult{
		Success:      true,
		DeploymentID: "dep-" + def.ID,
		Status:       lib_model.DeploymentStatus{Phase: lib_model.DepRunning},
		Created:      time.Now().UTC(),
	}
	m.deployed[def.ID] = result
	return result
}

func (m *depHdlMock) Update(_ context.Context, def lib_model.ComponentDefinition) lib_model.DeploymentResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if _, ok := m.deployed[def.ID]; !ok {
		return lib_model.DeploymentResult{Success: false, Message: "not deployed", Status: lib_model.DeploymentStatus{Phase: lib_model.DepFailed}}
	}
	if m.failNext {
		m.failNext = false
		return lib_model.DeploymentResult{Success: false, Message: "update failed", Status: lib_model.DeploymentStatus{Phase: lib_model.DepFailed}}
	}
	return m.deployed[def.ID]
}

func (m *depHdlMock) Rollback(_ context.Context, def lib_model.ComponentDefinition) lib_model.DeploymentResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollbacks++
	if _, ok := m.deployed[def.ID]; !ok {
		return lib_model.DeploymentResult{Success: false, Message: "not deployed", Status: lib_model.DeploymentStatus{Phase: lib_model.DepFailed}}
	}
	return m.deployed[def.ID]
}

func (m *depHdlMock) Restart(_ context.Context, cID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deployed[cID]; !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("component '%s' not deployed", cID))
	}
	m.restarts++
	return nil
}

func (m *depHdlMock) Remove(_ context.Context, cID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deployed[cID]; !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("component '%s' not deployed", cID))
	}
	delete(m.deployed, cID)
	return nil
}

func (m *depHdlMock) Scale(_ context.Context, cID string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deployed[cID]; !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("component '%s' not deployed", cID))
	}
	return nil
}

func (m *depHdlMock) Status(cID string) (lib_model.DeploymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.deployed[cID]
	if !ok {
		return lib_model.DeploymentResult{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not deployed", cID))
	}
	return result, nil
}

func (m *depHdlMock) restartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restarts
}

type sclHdlMock struct {
	mu       sync.Mutex
	policies map[string]lib_model.ScalingPolicy
	auto     map[string]bool
	listener func(lib_model.ScalingEvent)
}

func newSclHdlMock() *sclHdlMock {
	return &sclHdlMock{policies: make(map[string]lib_model.ScalingPolicy), auto: make(map[string]bool)}
}

func (m *sclHdlMock) EnableAutoScaling(cID string, policy lib_model.ScalingPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[cID] = policy
	m.auto[cID] = true
	return nil
}

func (m *sclHdlMock) DisableAutoScaling(cID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auto[cID] = false
}

func (m *sclHdlMock) Scale(_ context.Context, cID string, config lib_model.ScalingConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if config.Policy != nil {
		m.policies[cID] = *config.Policy
	}
	return nil
}

func (m *sclHdlMock) UpdatePolicy(_ context.Context, cID string, policy lib_model.ScalingPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[cID] = policy
	return nil
}

func (m *sclHdlMock) State(cID string) (lib_model.ScalingState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	policy, ok := m.policies[cID]
	if !ok {
		return lib_model.ScalingState{}, lib_model.NewNotFoundError(fmt.Errorf("no scaling state for component '%s'", cID))
	}
	return lib_model.ScalingState{ComponentID: cID, Policy: policy, AutoScaling: m.auto[cID]}, nil
}

func (m *sclHdlMock) Remove(cID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.policies, cID)
	delete(m.auto, cID)
}

func (m *sclHdlMock) SetListener(listener func(lib_model.ScalingEvent)) {
	m.listener = listener
}

func (m *sclHdlMock) Stop() {}

func (m *sclHdlMock) policy(cID string) (lib_model.ScalingPolicy, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	policy, ok := m.policies[cID]
	return policy, ok
}

type hltHdlMock struct {
	mu        sync.Mutex
	monitored map[string]lib_model.ComponentDefinition
	listener  func(lib_model.HealthEvent)
}

func newHltHdlMock() *hltHdlMock {
	return &hltHdlMock{monitored: make(map[string]lib_model.ComponentDefinition)}
}

func (m *hltHdlMock) StartMonitoring(def lib_model.ComponentDefinition) error {
	if def.HealthCheck.Type == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monitored[def.ID] = def
	return nil
}

func (m *hltHdlMock) StopMonitoring(cID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.monitored, cID)
}

func (m *hltHdlMock) Check(_ context.Context, _ lib_model.ComponentDefinition) lib_model.HealthStatus {
	return lib_model.HealthStatus{Status: lib_model.CompHealthy, LastUpdated: time.Now().UTC()}
}

func (m *hltHdlMock) Status(cID string) (lib_model.HealthStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.monitored[cID]; !ok {
		return lib_model.HealthStatus{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not monitored", cID))
	}
	return lib_model.HealthStatus{Status: lib_model.CompHealthy}, nil
}

func (m *hltHdlMock) SetListener(listener func(lib_model.HealthEvent)) {
	m.listener = listener
}

func (m *hltHdlMock) Stop() {}

func (m *hltHdlMock) isMonitored(cID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.monitored[cID]
	return ok
}

type commHdlMock struct {
	mu       sync.Mutex
	statuses map[string]lib_model.CommStatus
}

func newCommHdlMock() *commHdlMock {
	return &commHdlMock{statuses: make(map[string]lib_model.CommStatus)}
}

func (m *commHdlMock) Setup(_ context.Context, cID string, _ lib_model.CommConfig) (lib_model.CommStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := lib_model.CommStatus{ComponentID: cID}
	m.statuses[cID] = status
	return status, nil
}

func (m *commHdlMock) Teardown(_ context.Context, cID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.statuses[cID]; !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("communication for component '%s' not set up", cID))
	}
	delete(m.statuses, cID)
	return nil
}

func (m *commHdlMock) Status(cID string) (lib_model.CommStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[cID]
	if !ok {
		return lib_model.CommStatus{}, lib_model.NewNotFoundError(fmt.Errorf("communication for component '%s' not set up", cID))
	}
	return status, nil
}

func (m *commHdlMock) PublishEvent(_ context.Context, _ string, _ []byte) error { return nil }

func (m *commHdlMock) SubscribeToEvents(_ context.Context, _ string, _ func(string, []byte)) error {
	return nil
}

func (m *commHdlMock) SendMessage(_ context.Context, _ string, _ []byte) error { return nil }

func (m *commHdlMock) SubscribeToQueue(_ context.Context, _ string, _ func([]byte) error) error {
	return nil
}

func (m *commHdlMock) Close() {}

type snapshotRec struct {
	index int64
	cID   string
	def   lib_model.ComponentDefinition
}

type stgHdlMock struct {
	mu        sync.Mutex
	snapshots []snapshotRec
	nextIndex int64
}

func newStgHdlMock() *stgHdlMock {
	return &stgHdlMock{nextIndex: 1}
}

func (m *stgHdlMock) Init(_ context.Context) error { return nil }

func (m *stgHdlMock) BeginTransaction(_ context.Context) (driver.Tx, error) {
	return &txMock{}, nil
}

func (m *stgHdlMock) ListComp(_ context.Context, _ lib_model.ComponentFilter) (map[string]lib_model.Component, error) {
	return nil, nil
}

func (m *stgHdlMock) CreateComp(_ context.Context, _ driver.Tx, _ lib_model.Component) error {
	return nil
}

func (m *stgHdlMock) ReadComp(_ context.Context, cID string) (lib_model.Component, error) {
	return lib_model.Component{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
}

func (m *stgHdlMock) UpdateComp(_ context.Context, _ driver.Tx, _ lib_model.Component) error {
	return nil
}

func (m *stgHdlMock) DeleteComp(_ context.Context, _ driver.Tx, _ string) error { return nil }

func (m *stgHdlMock) CreateSnapshot(_ context.Context, _ driver.Tx, cID string, def lib_model.ComponentDefinition, _ time.Time, maxHistory int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snapshotRec{index: m.nextIndex, cID: cID, def: def})
	m.nextIndex++
	var kept []snapshotRec
	count := 0
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].cID == cID {
			count++
			if count > maxHistory {
				continue
			}
		}
		kept = append([]snapshotRec{m.snapshots[i]}, kept...)
	}
	m.snapshots = kept
	return nil
}

func (m *stgHdlMock) LatestSnapshot(_ context.Context, cID string) (lib_model.ComponentDefinition, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].cID == cID {
			return m.snapshots[i].def, m.snapshots[i].index, nil
		}
	}
	return lib_model.ComponentDefinition{}, 0, lib_model.NewNotFoundError(fmt.Errorf("no snapshots for component '%s'", cID))
}

func (m *stgHdlMock) ListSnapshots(_ context.Context, cID string) ([]lib_model.ComponentDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var defs []lib_model.ComponentDefinition
	for _, rec := range m.snapshots {
		if rec.cID == cID {
			defs = append(defs, rec.def)
		}
	}
	return defs, nil
}

func (m *stgHdlMock) DeleteSnapshot(_ context.Context, _ driver.Tx, index int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, rec := range m.snapshots {
		if rec.index == index {
			m.snapshots = append(m.snapshots[:i], m.snapshots[i+1:]...)
			return nil
		}
	}
	return lib_model.NewNotFoundError(fmt.Errorf("snapshot '%d' not found", index))
}

func (m *stgHdlMock) DeleteSnapshots(_ context.Context, _ driver.Tx, cID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []snapshotRec
	for _, rec := range m.snapshots {
		if rec.cID != cID {
			kept = append(kept, rec)
		}
	}
	m.snapshots = kept
	return nil
}

func (m *stgHdlMock) snapshotCount(cID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rec := range m.snapshots {
		if rec.cID == cID {
			n++
		}
	}
	return n
}

type jobHdlMock struct {
	mu   sync.Mutex
	jobs map[string]lib_model.Job
	num  int
}

func newJobHdlMock() *jobHdlMock {
	return &jobHdlMock{jobs: make(map[string]lib_model.Job)}
}

// Create runs the target synchronously to keep tests deterministic.
func (m *jobHdlMock) Create(desc string, tFunc func(context.Context, context.CancelFunc) error) (string, error) {
	m.mu.Lock()
	m.num++
	id := fmt.Sprintf("job-%d", m.num)
	m.mu.Unlock()
	ctx, cf := context.WithCancel(context.Background())
	defer cf()
	started := time.Now().UTC()
	err := tFunc(ctx, cf)
	completed := time.Now().UTC()
	job := lib_model.Job{ID: id, Description: desc, Created: started, Started: &started, Completed: &completed}
	if err != nil {
		job.Error = err.Error()
	}
	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()
	return id, nil
}

func (m *jobHdlMock) Get(jID string) (lib_model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jID]
	if !ok {
		return lib_model.Job{}, lib_model.NewNotFoundError(fmt.Errorf("job '%s' not found", jID))
	}
	return job, nil
}

func (m *jobHdlMock) Cancel(jID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[jID]; !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("job '%s' not found", jID))
	}
	return nil
}

func (m *jobHdlMock) List(_ lib_model.JobFilter) []lib_model.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []lib_model.Job
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

func (m *jobHdlMock) PurgeJobs(_ int64) int { return 0 }

type mtrProviderMock struct{}

func (m *mtrProviderMock) GetMetrics(_ context.Context, cID string) (lib_model.ComponentMetrics, error) {
	return lib_model.ComponentMetrics{}, lib_model.NewNotFoundError(fmt.Errorf("no metrics for component '%s'", cID))
}
