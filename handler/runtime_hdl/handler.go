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

package runtime_hdl

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	base_client "github.com/SENERGY-Platform/go-base-http-client"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

const instancesPath = "instances"

type instancesRequest struct {
	Component   lib_model.ComponentDefinition `json:"component"`
	Replicas    int                           `json:"replicas"`
	Environment map[string]string             `json:"environment,omitempty"`
}

type scaleRequest struct {
	Replicas int `json:"replicas"`
}

type Handler struct {
	baseClient *base_client.Client
	baseUrl    string
}

func New(httpClient base_client.HTTPClient, baseUrl string) *Handler {
	return &Handler{
		baseClient: base_client.New(httpClient, customError, lib_model.HeaderRequestID),
		baseUrl:    baseUrl,
	}
}

func customError(code int, err error) error {
	switch code {
	case http.StatusInternalServerError:
		err = lib_model.NewInternalError(err)
	case http.StatusNotFound:
		err = lib_model.NewNotFoundError(err)
	case http.StatusBadRequest:
		err = lib_model.NewInvalidInputError(err)
	}
	return err
}

func (h *Handler) CreateInstances(ctx context.Context, dID string, def lib_model.ComponentDefinition, replicas int, env map[string]string) error {
	u, err := url.JoinPath(h.baseUrl, instancesPath, dID)
	if err != nil {
		return err
	}
	body, err := json.Marshal(instancesRequest{Component: def, Replicas: replicas, Environment: env})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = h.baseClient.ExecRequestString(req)
	return err
}

func (h *Handler) UpdateInstances(ctx context.Context, dID string, def lib_model.ComponentDefinition, replicas int) error {
	u, err := url.JoinPath(h.baseUrl, instancesPath, dID)
	if err != nil {
		return err
	}
	body, err := json.Marshal(instancesRequest{Component: def, Replicas: replicas})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = h.baseClient.ExecRequestString(req)
	return err
}

func (h *Handler) RemoveInstances(ctx context.Context, dID string) error {
	u, err := url.JoinPath(h.baseUrl, instancesPath, dID)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	_, err = h.baseClient.ExecRequestString(req)
	return err
}

func (h *Handler) RestartInstances(ctx context.Context, dID string) error {
	u, err := url.JoinPath(h.baseUrl, instancesPath, dID, lib_model.RestartPath)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, nil)
	if err != nil {
		return err
	}
	_, err = h.baseClient.ExecRequestString(req)
	return err
}

func (h *Handler) ScaleInstances(ctx context.Context, dID string, replicas int) error {
	u, err := url.JoinPath(h.baseUrl, instancesPath, dID, lib_model.ScalePath)
	if err != nil {
		return err
	}
	body, err := json.Marshal(scaleRequest{Replicas: replicas})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = h.baseClient.ExecRequestString(req)
	return err
}

func (h *Handler) InstancesStatus(ctx context.Context, dID string) (lib_model.DeploymentStatus, error) {
	u, err := url.JoinPath(h.baseUrl, instancesPath, dID, lib_model.StatusPath)
	if err != nil {
		return lib_model.DeploymentStatus{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return lib_model.DeploymentStatus{}, err
	}
	var status lib_model.DeploymentStatus
	if err = h.baseClient.ExecRequestJSON(req, &status); err != nil {
		return lib_model.DeploymentStatus{}, err
	}
	return status, nil
}
