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

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
)

// PublishEvent routes the event to every bus with a matching subject pattern.
func (h *Handler) PublishEvent(_ context.Context, subject string, data []byte) error {
	h.mu.RLock()
	targets := make(map[string]broker)
	for _, ref := range h.buses {
		if _, ok := targets[ref.connKey]; ok {
			continue
		}
		for _, pattern := range ref.subjects {
			if matchSubject(pattern, subject) {
				if conn, ok := h.conns[ref.connKey]; ok {
					targets[ref.connKey] = conn.broker
				}
				break
			}
		}
	}
	h.mu.RUnlock()
	for key, b := range targets {
		if err := b.Publish(subject, data); err != nil {
			return lib_model.NewInternalError(fmt.Errorf("publishing on '%s': %s", key, err))
		}
	}
	return nil
}

// SubscribeToEvents registers the handler on every open event bus connection.
func (h *Handler) SubscribeToEvents(_ context.Context, pattern string, hdl func(subject string, data []byte)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[string]struct{})
	for _, ref := range h.buses {
		if _, ok := seen[ref.connKey]; ok {
			continue
		}
		seen[ref.connKey] = struct{}{}
		conn, ok := h.conns[ref.connKey]
		if !ok {
			continue
		}
		unsub, err := conn.broker.Subscribe(pattern, hdl)
		if err != nil {
			return err
		}
		h.unsubs = append(h.unsubs, unsub)
	}
	if len(seen) == 0 {
		return lib_model.NewNotFoundError(fmt.Errorf("no event bus provisioned"))
	}
	return nil
}

func (h *Handler) SendMessage(_ context.Context, queue string, data []byte) error {
	h.mu.RLock()
	ref, ok := h.queues[queue]
	var b broker
	if ok {
		if conn, cOk := h.conns[ref.connKey]; cOk {
			b = conn.broker
		}
	}
	h.mu.RUnlock()
	if b == nil {
		return lib_model.NewNotFoundError(fmt.Errorf("queue '%s' not provisioned", queue))
	}
	return b.SendQueue(queue, data)
}

// SubscribeToQueue delivers messages to the handler, retrying on failure up to
// the queue's retry limit before moving the message to the dead letter queue.
func (h *Handler) SubscribeToQueue(_ context.Context, queue string, hdl func(data []byte) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	ref, ok := h.queues[queue]
	if !ok {
		return lib_model.NewNotFoundError(fmt.Errorf("queue '%s' not provisioned", queue))
	}
	conn, ok := h.conns[ref.connKey]
	if !ok {
		return lib_model.NewInternalError(fmt.Errorf("connection '%s' not open", ref.connKey))
	}
	b := conn.broker
	maxRetries := ref.config.MaxRetries
	deadLetter := ref.config.DeadLetter
	unsub, err := b.SubscribeQueue(queue, func(data []byte) {
		var err error
		for i := 0; i <= maxRetries; i++ {
			if err = hdl(data); err == nil {
				return
			}
		}
		util.Logger.Warningf("message on queue '%s' failed after %d retries, moving to '%s': %s", queue, maxRetries, deadLetter, err)
		if err = b.SendQueue(deadLetter, data); err != nil {
			util.Logger.Errorf("moving message to dead letter queue '%s' failed: %s", deadLetter, err)
		}
	})
	if err != nil {
		return err
	}
	h.unsubs = append(h.unsubs, unsub)
	return nil
}
