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

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	srv_base "github.com/SENERGY-Platform/go-service-base/srv-base"
	srv_base_types "github.com/SENERGY-Platform/go-service-base/srv-base/types"
	"github.com/SENERGY-Platform/mgw-component-manager/api"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/comm_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/deployer_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/health_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/http_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/job_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/metrics_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/registry_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/resolver_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/runtime_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/scaler_hdl"
	"github.com/SENERGY-Platform/mgw-component-manager/handler/storage_hdl"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
)

var version string

func main() {
	srv_base.PrintInfo(lib_model.ServiceName, version)

	flags := util.NewFlags()

	config, err := util.NewConfig(flags.ConfPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logFile, err := util.InitLogger(config.Logger)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		var logFileError *srv_base.LogFileError
		if errors.As(err, &logFileError) {
			os.Exit(1)
		}
	}
	if logFile != nil {
		defer logFile.Close()
	}

	util.Logger.Debugf("config: %s", srv_base.ToJsonStr(config))

	util.InitMetrics()

	managerID, err := util.GetManagerID(config.ManagerIDPath, os.Getenv("MGW_MANAGER_ID"))
	if err != nil {
		util.Logger.Error(err)
		return
	}
	util.Logger.Debugf("manager ID: %s", managerID)

	ctx, cf := context.WithCancel(context.Background())
	defer cf()

	dbTimeout := time.Duration(config.Database.Timeout)

	db, err := util.InitDB(ctx, config.Database.Host, config.Database.Port, config.Database.User, config.Database.Passwd, config.Database.Name, 10, 5, dbTimeout)
	if err != nil {
		util.Logger.Error(err)
		return
	}
	defer db.Close()

	if err = util.InitDBSchema(ctx, db, config.Database.SchemaPath, dbTimeout); err != nil {
		util.Logger.Error(err)
		return
	}

	storageHandler := storage_hdl.New(db)
	if err = storageHandler.Init(ctx); err != nil {
		util.Logger.Error(err)
		return
	}

	registryHandler := registry_hdl.New(storageHandler, dbTimeout)
	if err = registryHandler.Init(ctx); err != nil {
		util.Logger.Error(err)
		return
	}

	dependencyHandler := resolver_hdl.New(registryHandler)

	runtimeClient := runtime_hdl.New(&http.Client{}, config.RuntimeClient.BaseUrl)
	metricsProvider := metrics_hdl.New(&http.Client{}, config.MetricsClient.BaseUrl)

	deploymentHandler := deployer_hdl.New(runtimeClient, time.Duration(config.Deployer.Timeout), config.Deployer.MaxRetries, time.Duration(config.Deployer.RetryDelay))

	scalingHandler := scaler_hdl.New(metricsProvider, deploymentHandler, time.Duration(config.Scaler.EvalInterval), time.Duration(config.Scaler.ScaleUpCooldown), time.Duration(config.Scaler.ScaleDownCooldown), time.Duration(config.MetricsClient.Timeout))
	defer scalingHandler.Stop()

	healthHandler := health_hdl.New(time.Duration(config.HealthMonitor.DefaultPeriod), time.Duration(config.HealthMonitor.DefaultTimeout))
	defer healthHandler.Stop()

	commHandler := comm_hdl.New(config.Communication.NatsUrl, time.Duration(config.Communication.Timeout))
	defer commHandler.Close()

	ccHandler := ccjh.New(config.Jobs.BufferSize)
	defer ccHandler.Stop()

	jobHandler := job_hdl.New(ctx, ccHandler)

	cmApi := api.New(registryHandler, dependencyHandler, deploymentHandler, scalingHandler, healthHandler, commHandler, storageHandler, jobHandler, metricsProvider, config.Snapshots.MaxHistory, dbTimeout, time.Duration(config.Deployer.Timeout))

	if err = ccHandler.RunAsync(config.Jobs.MaxNumber, time.Duration(config.Jobs.CCHInterval)*time.Microsecond); err != nil {
		util.Logger.Error(err)
		return
	}

	go func() {
		ticker := time.NewTicker(time.Duration(config.Jobs.JHInterval) * time.Microsecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := jobHandler.PurgeJobs(config.Jobs.MaxAge); n > 0 {
					util.Logger.Debugf("purged %d jobs", n)
				}
			}
		}
	}()

	go func() {
		for event := range cmApi.Events() {
			util.Logger.Infof("%s: component=%s msg=%s", event.Type, event.ComponentID, event.Message)
		}
	}()

	if config.ComponentDefsPath != "" {
		if err = loadComponentDefs(ctx, cmApi, config.ComponentDefsPath); err != nil {
			util.Logger.Error(err)
			return
		}
	}

	httpHandler := http_hdl.New(cmApi, map[string]string{
		lib_model.HeaderApiVer:  version,
		lib_model.HeaderSrvName: lib_model.ServiceName,
	})
	util.Logger.Debugf("routes: %s", srv_base.ToJsonStr(http_hdl.GetRoutes(httpHandler)))

	listener, err := net.Listen("tcp", ":"+strconv.FormatInt(int64(config.ServerPort), 10))
	if err != nil {
		util.Logger.Error(err)
		return
	}
	srv_base.StartServer(&http.Server{Handler: httpHandler}, listener, srv_base_types.DefaultShutdownSignals)
}
