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

import "sync"

// KeyMutex serializes operations per key while allowing operations on
// different keys to proceed concurrently.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*keyLock)}
}

func (m *KeyMutex) Lock(key string) {
	m.mu.Lock()
	kl, ok := m.locks[key]
	if !ok {
		kl = &keyLock{}
		m.locks[key] = kl
	}
	kl.refs++
	m.mu.Unlock()
	kl.mu.Lock()
}

func (m *KeyMutex) Unlock(key string) {
	m.mu.Lock()
	kl, ok := m.locks[key]
	if ok {
		kl.refs--
		if kl.refs == 0 {
			delete(m.locks, key)
		}
	}
	m.mu.Unlock()
	if ok {
		kl.mu.Unlock()
	}
}
