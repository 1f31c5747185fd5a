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
	"fmt"
	"net/http"

	"github.com/SENERGY-Platform/mgw-component-manager/lib"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/gin-gonic/gin"
)

func postComponentDeployH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		var config lib_model.DeployConfig
		if err := gc.ShouldBindJSON(&config); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		result, err := a.DeployComponent(gc.Request.Context(), gc.Param(compIdParam), config)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, result)
	}
}

func patchComponentRestartH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		if err := a.RestartComponent(gc.Request.Context(), gc.Param(compIdParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func patchComponentScaleH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		var config lib_model.ScalingConfig
		if err := gc.ShouldBindJSON(&config); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		if err := a.ScaleComponent(gc.Request.Context(), gc.Param(compIdParam), config); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func postBatchDeployH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		var req lib_model.BatchRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		if len(req.IDs) == 0 {
			_ = gc.Error(lib_model.NewInvalidInputError(fmt.Errorf("no component IDs provided")))
			return
		}
		jID, err := a.DeployComponents(gc.Request.Context(), req.IDs)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}

func deleteBatchH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		query := componentsQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		jID, err := a.RemoveComponents(gc.Request.Context(), lib_model.ComponentFilter{Name: query.Name, Type: query.Type})
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}
