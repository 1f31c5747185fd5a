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
	"fmt"
	"strings"
	"sync"
	"time"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/nats-io/nats.go"
)

const queueBufferSize = 256

type broker interface {
	Publish(subject string, data []byte) error
	Subscribe(pattern string, hdl func(subject string, data []byte)) (func() error, error)
	SendQueue(queue string, data []byte) error
	SubscribeQueue(queue string, hdl func(data []byte)) (func() error, error)
	Close()
}

// matchSubject implements token based subject matching, '*' matches a single
// token and '>' matches the remaining tail.
func matchSubject(pattern, subject string) bool {
	pTokens := strings.Split(pattern, ".")
	sTokens := strings.Split(subject, ".")
	for i, pt := range pTokens {
		if pt == ">" {
			return true
		}
		if i >= len(sTokens) {
			return false
		}
		if pt != "*" && pt != sTokens[i] {
			return false
		}
	}
	return len(pTokens) == len(sTokens)
}

type memSub struct {
	pattern string
	hdl     func(subject string, data []byte)
}

type memBroker struct {
	subs    map[int]*memSub
	queues  map[string]chan []byte
	nextID  int
	mu      sync.RWMutex
	wg      sync.WaitGroup
	closing chan struct{}
}

func newMemBroker() *memBroker {
	return &memBroker{
		subs:    make(map[int]*memSub),
		queues:  make(map[string]chan []byte),
		closing: make(chan struct{}),
	}
}

func (b *memBroker) Publish(subject string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if matchSubject(sub.pattern, subject) {
			hdl := sub.hdl
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				hdl(subject, data)
			}()
		}
	}
	return nil
}

func (b *memBroker) Subscribe(pattern string, hdl func(subject string, data []byte)) (func() error, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = &memSub{pattern: pattern, hdl: hdl}
	return func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
		return nil
	}, nil
}

func (b *memBroker) queue(name string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.queues[name]
	if !ok {
		ch = make(chan []byte, queueBufferSize)
		b.queues[name] = ch
	}
	return ch
}

func (b *memBroker) SendQueue(queue string, data []byte) error {
	select {
	case b.queue(queue) <- data:
		return nil
	default:
		return lib_model.NewInternalError(fmt.Errorf("queue '%s' full", queue))
	}
}

func (b *memBroker) SubscribeQueue(queue string, hdl func(data []byte)) (func() error, error) {
	ch := b.queue(queue)
	stop := make(chan struct{})
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-stop:
				return
			case <-b.closing:
				return
			case data := <-ch:
				hdl(data)
			}
		}
	}()
	var once sync.Once
	return func() error {
		once.Do(func() { close(stop) })
		return nil
	}, nil
}

func (b *memBroker) Close() {
	b.mu.Lock()
	select {
	case <-b.closing:
	default:
		close(b.closing)
	}
	b.subs = make(map[int]*memSub)
	b.mu.Unlock()
	b.wg.Wait()
}

type natsBroker struct {
	conn *nats.Conn
}

func newNatsBroker(address string, timeout time.Duration) (*natsBroker, error) {
	conn, err := nats.Connect(address, nats.Timeout(timeout))
	if err != nil {
		return nil, lib_model.NewInternalError(fmt.Errorf("connecting to '%s': %s", address, err))
	}
	return &natsBroker{conn: conn}, nil
}

func (b *natsBroker) Publish(subject string, data []byte) error {
	if err := b.conn.Publish(subject, data); err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}

func (b *natsBroker) Subscribe(pattern string, hdl func(subject string, data []byte)) (func() error, error) {
	sub, err := b.conn.Subscribe(pattern, func(msg *nats.Msg) {
		hdl(msg.Subject, msg.Data)
	})
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return sub.Unsubscribe, nil
}

func (b *natsBroker) SendQueue(queue string, data []byte) error {
	if err := b.conn.Publish(queue, data); err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}

func (b *natsBroker) SubscribeQueue(queue string, hdl func(data []byte)) (func() error, error) {
	sub, err := b.conn.QueueSubscribe(queue, queue+".workers", func(msg *nats.Msg) {
		hdl(msg.Data)
	})
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return sub.Unsubscribe, nil
}

func (b *natsBroker) Close() {
	b.conn.Close()
}
