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

package metrics_hdl

import (
	"context"
	"net/http"
	"net/url"

	base_client "github.com/SENERGY-Platform/go-base-http-client"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

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

func (h *Handler) GetMetrics(ctx context.Context, cID string) (lib_model.ComponentMetrics, error) {
	u, err := url.JoinPath(h.baseUrl, lib_model.MetricsPath, cID)
	if err != nil {
		return lib_model.ComponentMetrics{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return lib_model.ComponentMetrics{}, err
	}
	var metrics lib_model.ComponentMetrics
	if err = h.baseClient.ExecRequestJSON(req, &metrics); err != nil {
		return lib_model.ComponentMetrics{}, err
	}
	return metrics, nil
}
