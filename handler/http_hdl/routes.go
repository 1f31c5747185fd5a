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

package http_hdl

import (
	"sort"

	"github.com/SENERGY-Platform/mgw-component-manager/lib"
	"github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetRoutes(e *gin.Engine, a lib.Api) {
	e.GET("/"+model.ComponentsPath, getComponentsH(a))
	e.POST("/"+model.ComponentsPath, postComponentH(a))
	e.GET("/"+model.ComponentsPath+"/:"+compIdParam, getComponentH(a))
	e.PATCH("/"+model.ComponentsPath+"/:"+compIdParam, patchComponentH(a))
	e.DELETE("/"+model.ComponentsPath+"/:"+compIdParam, deleteComponentH(a))
	e.POST("/"+model.ComponentsPath+"/:"+compIdParam+"/"+model.DeployPath, postComponentDeployH(a))
	e.PATCH("/"+model.ComponentsPath+"/:"+compIdParam+"/"+model.RestartPath, patchComponentRestartH(a))
	e.PATCH("/"+model.ComponentsPath+"/:"+compIdParam+"/"+model.RollbackPath, patchComponentRollbackH(a))
	e.PATCH("/"+model.ComponentsPath+"/:"+compIdParam+"/"+model.ScalePath, patchComponentScaleH(a))
	e.GET("/"+model.ComponentsPath+"/:"+compIdParam+"/"+model.StatusPath, getComponentStatusH(a))
	e.GET("/"+model.ComponentsPath+"/:"+compIdParam+"/"+model.HealthPath, getComponentHealthH(a))
	e.POST("/"+model.ComponentsPath+"/:"+compIdParam+"/"+model.CommunicationPath, postComponentCommunicationH(a))
	e.GET("/"+model.ComponentsPath+"/:"+compIdParam+"/"+model.DependencyTreePath, getComponentDepTreeH(a))
	e.GET("/"+model.ComponentsPath+"/:"+compIdParam+"/"+model.AffectedPath, getComponentAffectedH(a))
	e.POST("/"+model.InstallOrderPath, postInstallOrderH(a))
	e.POST("/"+model.BatchPath+"/"+model.DeployPath, postBatchDeployH(a))
	e.DELETE("/"+model.BatchPath, deleteBatchH(a))
	e.GET("/"+model.JobsPath, getJobsH(a))
	e.GET("/"+model.JobsPath+"/:"+jobIdParam, getJobH(a))
	e.PATCH("/"+model.JobsPath+"/:"+jobIdParam+"/"+model.JobsCancelPath, patchJobCancelH(a))
	e.GET("/"+model.HealthCheckPath, getServiceHealthH(a))
	e.GET("/"+model.MetricsPath, gin.WrapH(promhttp.Handler()))
}

func GetRoutes(e *gin.Engine) [][2]string {
	routes := e.Routes()
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Path < routes[j].Path
	})
	var rInfo [][2]string
	for _, info := range routes {
		rInfo = append(rInfo, [2]string{info.Method, info.Path})
	}
	return rInfo
}
