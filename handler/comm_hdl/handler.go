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

package comm_hdl

import (
	"context"
	"fmt"
	"sync"
	"time"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
)

const memConnKey = "memory:local"

type connection struct {
	broker broker
	refs   int
}

type queueRef struct {
	cID     string
	connKey string
	config  lib_model.QueueConfig
}

type busRef struct {
	cID      string
	connKey  string
	subjects []string
}

type Handler struct {
	defaultAddress string
	timeout        time.Duration
	conns          map[string]*connection
	queues         map[string]*queueRef
	buses          map[string]*busRef
	routes         map[string]lib_model.GatewayConfig
	services       map[string]lib_model.DiscoveryConfig
	statuses       map[string]lib_model.CommStatus
	unsubs         []func() error
	mu             sync.RWMutex
}

func New(defaultAddress string, timeout time.Duration) *Handler {
	return &Handler{
		defaultAddress: defaultAddress,
		timeout:        timeout,
		conns:          make(map[string]*connection),
		queues:         make(map[string]*queueRef),
		buses:          make(map[string]*busRef),
		routes:         make(map[string]lib_model.GatewayConfig),
		services:       make(map[string]lib_model.DiscoveryConfig),
		statuses:       make(map[string]lib_model.CommStatus),
	}
}

func (h *Handler) Setup(_ context.Context, cID string, config lib_model.CommConfig) (lib_model.CommStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.statuses[cID]; ok {
		return lib_model.CommStatus{}, lib_model.NewResourceBusyError(fmt.Errorf("communication for component '%s' already set up", cID))
	}
	applyDefaults(cID, &config)
	status := lib_model.CommStatus{ComponentID: cID}
	var connKeys []string
	fail := func(err error) (lib_model.CommStatus, error) {
		h.teardownLocked(cID)
		return lib_model.CommStatus{}, err
	}
	if config.Queue != nil {
		if _, ok := h.queues[config.Queue.Topic]; ok {
			return fail(lib_model.NewResourceBusyError(fmt.Errorf("queue '%s' already provisioned", config.Queue.Topic)))
		}
		key, err := h.acquireConn(config.Queue.Backend, config.Queue.Address)
		if err != nil {
			return fail(err)
		}
		h.queues[config.Queue.Topic] = &queueRef{cID: cID, connKey: key, config: *config.Queue}
		status.Queue = config.Queue.Topic
		connKeys = appendUnique(connKeys, key)
	}
	if config.Events != nil {
		key, err := h.acquireConn(config.Events.Backend, config.Events.Address)
		if err != nil {
			return fail(err)
		}
		h.buses[cID] = &busRef{cID: cID, connKey: key, subjects: config.Events.Subjects}
		status.Events = config.Events.Subjects
		connKeys = appendUnique(connKeys, key)
	}
	if config.Gateway != nil {
		if _, ok := h.routes[config.Gateway.Path]; ok {
			return fail(lib_model.NewResourceBusyError(fmt.Errorf("gateway route '%s' already provisioned", config.Gateway.Path)))
		}
		h.routes[config.Gateway.Path] = *config.Gateway
		status.Gateway = config.Gateway.Path
	}
	if config.Discovery != nil {
		h.services[config.Discovery.ServiceName] = *config.Discovery
		status.Discovery = fmt.Sprintf("%s@%s:%d", config.Discovery.ServiceName, config.Discovery.Address, config.Discovery.Port)
	}
	status.Connections = connKeys
	h.statuses[cID] = status
	return status, nil
}

func (h *Handler) Teardown(_ context.Context, cID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.statuses[cID]; !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("no communication set up for component '%s'", cID))
	}
	h.teardownLocked(cID)
	return nil
}

func (h *Handler) teardownLocked(cID string) {
	for topic, ref := range h.queues {
		if ref.cID == cID {
			h.releaseConn(ref.connKey)
			delete(h.queues, topic)
		}
	}
	if ref, ok := h.buses[cID]; ok {
		h.releaseConn(ref.connKey)
		delete(h.buses, cID)
	}
	for path := range h.routes {
		if h.statuses[cID].Gateway == path {
			delete(h.routes, path)
		}
	}
	for name, svc := range h.services {
		if h.statuses[cID].Discovery == fmt.Sprintf("%s@%s:%d", svc.ServiceName, svc.Address, svc.Port) {
			delete(h.services, name)
		}
	}
	delete(h.statuses, cID)
}

func (h *Handler) Status(cID string) (lib_model.CommStatus, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	status, ok := h.statuses[cID]
	if !ok {
		return lib_model.CommStatus{}, lib_model.NewNotFoundError(fmt.Errorf("no communication set up for component '%s'", cID))
	}
	return status, nil
}

func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, unsub := range h.unsubs {
		_ = unsub()
	}
	h.unsubs = nil
	for key, conn := range h.conns {
		conn.broker.Close()
		delete(h.conns, key)
	}
}

// connections are shared and keyed by backend type and address
func connKey(backend lib_model.CommBackend, address string) string {
	if backend == lib_model.MemoryBackend {
		return memConnKey
	}
	return fmt.Sprintf("%s:%s", backend, address)
}

func (h *Handler) acquireConn(backend lib_model.CommBackend, address string) (string, error) {
	if backend == "" {
		backend = lib_model.MemoryBackend
	}
	if backend == lib_model.NatsBackend && address == "" {
		address = h.defaultAddress
	}
	key := connKey(backend, address)
	if conn, ok := h.conns[key]; ok {
		conn.refs++
		return key, nil
	}
	var b broker
	switch backend {
	case lib_model.MemoryBackend:
		b = newMemBroker()
	case lib_model.NatsBackend:
		var err error
		b, err = newNatsBroker(address, h.timeout)
		if err != nil {
			return "", err
		}
	default:
		return "", lib_model.NewInvalidInputError(fmt.Errorf("unknown communication backend '%s'", backend))
	}
	h.conns[key] = &connection{broker: b, refs: 1}
	util.Logger.Debugf("opened communication connection '%s'", key)
	return key, nil
}

func (h *Handler) releaseConn(key string) {
	conn, ok := h.conns[key]
	if !ok {
		return
	}
	conn.refs--
	if conn.refs < 1 {
		conn.broker.Close()
		delete(h.conns, key)
		util.Logger.Debugf("closed communication connection '%s'", key)
	}
}

func applyDefaults(cID string, config *lib_model.CommConfig) {
	if config.Queue == nil && config.Events == nil && config.Gateway == nil && config.Discovery == nil {
		config.Queue = &lib_model.QueueConfig{}
		config.Events = &lib_model.EventBusConfig{}
		config.Gateway = &lib_model.GatewayConfig{}
		config.Discovery = &lib_model.DiscoveryConfig{}
	}
	if config.Queue != nil {
		if config.Queue.Backend == "" {
			config.Queue.Backend = lib_model.MemoryBackend
		}
		if config.Queue.Topic == "" {
			config.Queue.Topic = "components." + cID + ".queue"
		}
		if config.Queue.DeadLetter == "" {
			config.Queue.DeadLetter = config.Queue.Topic + ".dlq"
		}
		if config.Queue.MaxRetries < 1 {
			config.Queue.MaxRetries = 3
		}
	}
	if config.Events != nil {
		if config.Events.Backend == "" {
			config.Events.Backend = lib_model.MemoryBackend
		}
		if len(config.Events.Subjects) == 0 {
			config.Events.Subjects = []string{"components." + cID + ".>"}
		}
	}
	if config.Gateway != nil {
		if config.Gateway.Path == "" {
			config.Gateway.Path = "/" + cID
		}
		if config.Gateway.Upstream == "" {
			config.Gateway.Upstream = "http://" + cID
		}
	}
	if config.Discovery != nil {
		if config.Discovery.ServiceName == "" {
			config.Discovery.ServiceName = cID
		}
	}
}

func appendUnique(sl []string, v string) []string {
	for _, s := range sl {
		if s == v {
			return sl
		}
	}
	return append(sl, v)
}
