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

package health_hdl

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health "google.golang.org/grpc/health/grpc_health_v1"
)

func (h *Handler) checkHttp(ctx context.Context, target string) lib_model.HealthCheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failed(lib_model.HttpCheck, err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return failed(lib_model.HttpCheck, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return failed(lib_model.HttpCheck, fmt.Errorf("status code %d", resp.StatusCode))
	}
	return passed(lib_model.HttpCheck)
}

func checkTcp(ctx context.Context, target string) lib_model.HealthCheckResult {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return failed(lib_model.TcpCheck, err)
	}
	conn.Close()
	return passed(lib_model.TcpCheck)
}

func checkExec(ctx context.Context, target string) lib_model.HealthCheckResult {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", target)
	if err := cmd.Run(); err != nil {
		return failed(lib_model.ExecCheck, err)
	}
	return passed(lib_model.ExecCheck)
}

func checkGrpc(ctx context.Context, target string) lib_model.HealthCheckResult {
	conn, err := grpc.DialContext(ctx, target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return failed(lib_model.GrpcCheck, err)
	}
	defer conn.Close()
	resp, err := grpc_health.NewHealthClient(conn).Check(ctx, &grpc_health.HealthCheckRequest{})
	if err != nil {
		return failed(lib_model.GrpcCheck, err)
	}
	if resp.Status != grpc_health.HealthCheckResponse_SERVING {
		return failed(lib_model.GrpcCheck, fmt.Errorf("status %s", resp.Status))
	}
	return passed(lib_model.GrpcCheck)
}

func passed(name string) lib_model.HealthCheckResult {
	return lib_model.HealthCheckResult{Name: name, Passed: true}
}

func failed(name string, err error) lib_model.HealthCheckResult {
	return lib_model.HealthCheckResult{Name: name, Passed: false, Message: err.Error()}
}
