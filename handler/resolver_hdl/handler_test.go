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

package resolver_hdl

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	srv_base "github.com/SENERGY-Platform/go-service-base/srv-base"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
	"github.com/y-du/go-log-level/level"
)

func init() {
	_, _ = util.InitLogger(srv_base.LoggerConfig{Level: level.Debug, Terminal: true})
}

type regHdlMock struct {
	components map[string]lib_model.Component
}

func (m *regHdlMock) Init(_ context.Context) error { return nil }

func (m *regHdlMock) Register(_ context.Context, def lib_model.ComponentDefinition) error {
	m.components[def.ID] = lib_model.Component{ComponentDefinition: def}
	return nil
}

func (m *regHdlMock) Unregister(_ context.Context, cID string) error {
	delete(m.components, cID)
	return nil
}

func (m *regHdlMock) Get(_ context.Context, cID string) (lib_model.Component, error) {
	comp, ok := m.components[cID]
	if !ok {
		return lib_model.Component{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
	}
	return comp, nil
}

func (m *regHdlMock) List(_ context.Context, _ lib_model.ComponentFilter) (map[string]lib_model.Component, error) {
	return m.components, nil
}

func (m *regHdlMock) Update(_ context.Context, cID string, _ lib_model.ComponentUpdate) (lib_model.ComponentDefinition, error) {
	return m.components[cID].ComponentDefinition, nil
}

func (m *regHdlMock) SetDefinition(_ context.Context, def lib_model.ComponentDefinition) error {
	comp := m.components[def.ID]
	comp.ComponentDefinition = def
	m.components[def.ID] = comp
	return nil
}

func (m *regHdlMock) FindDependents(_ context.Context, cID string) ([]string, error) {
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
	_, ok := m.components[cID]
	return ok, nil
}

func (m *regHdlMock) Count(_ context.Context) (int, error) {
	return len(m.components), nil
}

func newRegistry(defs ...lib_model.ComponentDefinition) *regHdlMock {
	m := &regHdlMock{components: make(map[string]lib_model.Component)}
	for _, def := range defs {
		m.components[def.ID] = lib_model.Component{ComponentDefinition: def}
	}
	return m
}

func def(id, name, version string, deps ...string) lib_model.ComponentDefinition {
	return lib_model.ComponentDefinition{
		ID: id,
		ComponentBase: lib_model.ComponentBase{
			Name:         name,
			Version:      version,
			Type:         lib_model.ServiceComponent,
			Dependencies: deps,
		},
	}
}

func TestHandler_Resolve(t *testing.T) {
	h := New(newRegistry(
		def("api", "API", "1.0.0", "db", "cache"),
		def("db", "Database", "1.0.0"),
		def("cache", "Cache", "1.0.0", "db"),
	))
	resolved, err := h.Resolve(context.Background(), "api")
	if err != nil {
		t.Error("err != nil")
	}
	if len(resolved) != 2 {
		t.Errorf("%d != 2", len(resolved))
	}
	if _, ok := resolved["db"]; !ok {
		t.Error("db not resolved")
	}
	if _, ok := resolved["cache"]; !ok {
		t.Error("cache not resolved")
	}
	t.Run("not found", func(t *testing.T) {
		_, err = h.Resolve(context.Background(), "missing")
		if err == nil {
			t.Error("err == nil")
		}
	})
	t.Run("missing dependency", func(t *testing.T) {
		h2 := New(newRegistry(def("api", "API", "1.0.0", "gone")))
		_, err = h2.Resolve(context.Background(), "api")
		if err == nil {
			t.Error("err == nil")
		}
	})
}

func TestHandler_Validate(t *testing.T) {
	h := New(newRegistry(
		def("api", "API", "1.0.0", "db"),
		def("db", "Database", "1.0.0"),
	))
	if err := h.Validate(context.Background(), []string{"api", "db"}); err != nil {
		t.Error("err != nil")
	}
	t.Run("missing dependency", func(t *testing.T) {
		err := h.Validate(context.Background(), []string{"api", "missing"})
		var nfe *lib_model.NotFoundError
		if !errors.As(err, &nfe) {
			t.Error("wrong error type")
		}
	})
	t.Run("cycle", func(t *testing.T) {
		h2 := New(newRegistry(
			def("a", "A", "1.0.0", "b"),
			def("b", "B", "1.0.0", "c"),
			def("c", "C", "1.0.0", "a"),
		))
		err := h2.Validate(context.Background(), []string{"a"})
		if err == nil {
			t.Error("err == nil")
		}
		var iie *lib_model.InvalidInputError
		if !errors.As(err, &iie) {
			t.Error("wrong error type")
		}
		if !strings.Contains(err.Error(), "a -> b -> c -> a") {
			t.Errorf("cycle path missing: %s", err.Error())
		}
	})
	t.Run("version conflict is not an error", func(t *testing.T) {
		h3 := New(newRegistry(
			def("db-1", "Database", "1.0.0"),
			def("db-2", "Database", "2.0.0"),
		))
		if err := h3.Validate(context.Background(), []string{"db-1", "db-2"}); err != nil {
			t.Error("err != nil")
		}
	})
}

func TestHandler_GetInstallOrder(t *testing.T) {
	h := New(newRegistry(
		def("api", "API", "1.0.0", "db"),
		def("db", "Database", "1.0.0"),
		def("worker", "Worker", "1.0.0", "db", "api"),
	))
	order, err := h.GetInstallOrder(context.Background(), []string{"worker", "api", "db"})
	if err != nil {
		t.Error("err != nil")
	}
	if !reflect.DeepEqual(order, []string{"db", "api", "worker"}) {
		t.Errorf("wrong order: %v", order)
	}
	t.Run("order independent of input order", func(t *testing.T) {
		order2, err := h.GetInstallOrder(context.Background(), []string{"db", "worker", "api"})
		if err != nil {
			t.Error("err != nil")
		}
		if !reflect.DeepEqual(order2, order) {
			t.Errorf("%v != %v", order2, order)
		}
	})
	t.Run("external dependencies ignored", func(t *testing.T) {
		order3, err := h.GetInstallOrder(context.Background(), []string{"api", "worker"})
		if err != nil {
			t.Error("err != nil")
		}
		if !reflect.DeepEqual(order3, []string{"api", "worker"}) {
			t.Errorf("wrong order: %v", order3)
		}
	})
	t.Run("cycle fails", func(t *testing.T) {
		h2 := New(newRegistry(
			def("a", "A", "1.0.0", "b"),
			def("b", "B", "1.0.0", "a"),
		))
		_, err = h2.GetInstallOrder(context.Background(), []string{"a", "b"})
		if err == nil {
			t.Error("err == nil")
		}
	})
	t.Run("independent components alphabetical", func(t *testing.T) {
		h3 := New(newRegistry(
			def("c", "C", "1.0.0"),
			def("a", "A", "1.0.0"),
			def("b", "B", "1.0.0"),
		))
		order4, err := h3.GetInstallOrder(context.Background(), []string{"c", "a", "b"})
		if err != nil {
			t.Error("err != nil")
		}
		if !reflect.DeepEqual(order4, []string{"a", "b", "c"}) {
			t.Errorf("wrong order: %v", order4)
		}
	})
}

func TestHandler_GetDependencyTree(t *testing.T) {
	h := New(newRegistry(
		def("api", "API", "1.0.0", "db", "cache"),
		def("db", "Database", "1.0.0"),
		def("cache", "Cache", "1.0.0", "db"),
	))
	tree, err := h.GetDependencyTree(context.Background(), "api")
	if err != nil {
		t.Error("err != nil")
	}
	expected := map[string][]string{
		"api":   {"db", "cache"},
		"db":    {},
		"cache": {"db"},
	}
	if !reflect.DeepEqual(tree, expected) {
		t.Errorf("%v != %v", tree, expected)
	}
	t.Run("not found", func(t *testing.T) {
		_, err = h.GetDependencyTree(context.Background(), "missing")
		if err == nil {
			t.Error("err == nil")
		}
	})
}

func TestHandler_FindAffected(t *testing.T) {
	h := New(newRegistry(
		def("db", "Database", "1.0.0"),
		def("api", "API", "1.0.0", "db"),
		def("web", "Web", "1.0.0", "api"),
		def("other", "Other", "1.0.0"),
	))
	affected, err := h.FindAffected(context.Background(), "db")
	if err != nil {
		t.Error("err != nil")
	}
	if !reflect.DeepEqual(affected, []string{"api", "web"}) {
		t.Errorf("wrong result: %v", affected)
	}
	affected, err = h.FindAffected(context.Background(), "web")
	if err != nil {
		t.Error("err != nil")
	}
	if len(affected) != 0 {
		t.Errorf("%d != 0", len(affected))
	}
	t.Run("not found", func(t *testing.T) {
		_, err = h.FindAffected(context.Background(), "missing")
		var nfe *lib_model.NotFoundError
		if !errors.As(err, &nfe) {
			t.Error("wrong error type")
		}
	})
}

func TestHandler_ValidateUpdateOrder(t *testing.T) {
	h := New(newRegistry(
		def("db", "Database", "1.0.0"),
		def("api", "API", "1.0.0", "db"),
	))
	order, err := h.ValidateUpdateOrder(context.Background(), []string{"db", "api"})
	if err != nil {
		t.Error("err != nil")
	}
	if !reflect.DeepEqual(order, []string{"db", "api"}) {
		t.Errorf("wrong order: %v", order)
	}
	t.Run("wrong order suggests correction", func(t *testing.T) {
		suggested, err := h.ValidateUpdateOrder(context.Background(), []string{"api", "db"})
		if err == nil {
			t.Error("err == nil")
		}
		var iie *lib_model.InvalidInputError
		if !errors.As(err, &iie) {
			t.Error("wrong error type")
		}
		if !reflect.DeepEqual(suggested, []string{"db", "api"}) {
			t.Errorf("wrong suggestion: %v", suggested)
		}
	})
}
