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

const compIdParam = "c"

type componentsQuery struct {
	Name string `form:"name"`
	Type string `form:"type"`
}

func getComponentsH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		query := componentsQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		if query.Type != "" {
			if _, ok := lib_model.ComponentTypeMap[query.Type]; !ok {
				_ = gc.Error(lib_model.NewInvalidInputError(fmt.Errorf("unknown component type '%s'", query.Type)))
				return
			}
		}
		components, err := a.ListComponents(gc.Request.Context(), lib_model.ComponentFilter{Name: query.Name, Type: query.Type})
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, components)
	}
}

func postComponentH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		var def lib_model.ComponentDefinition
		if err := gc.ShouldBindJSON(&def); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		if err := a.RegisterComponent(gc.Request.Context(), def); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func getComponentH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		def, err := a.GetComponent(gc.Request.Context(), gc.Param(compIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, def)
	}
}

func patchComponentH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		var update lib_model.ComponentUpdate
		if err := gc.ShouldBindJSON(&update); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		if err := a.UpdateComponent(gc.Request.Context(), gc.Param(compIdParam), update); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func deleteComponentH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		if err := a.RemoveComponent(gc.Request.Context(), gc.Param(compIdParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func patchComponentRollbackH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		if err := a.RollbackComponent(gc.Request.Context(), gc.Param(compIdParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func getComponentStatusH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		status, err := a.GetComponentStatus(gc.Request.Context(), gc.Param(compIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, status)
	}
}

func getComponentHealthH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		status, err := a.HealthCheck(gc.Request.Context(), gc.Param(compIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, status)
	}
}

func postComponentCommunicationH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		var config lib_model.CommConfig
		if err := gc.ShouldBindJSON(&config); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		if err := a.SetupCommunication(gc.Request.Context(), gc.Param(compIdParam), config); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func getComponentDepTreeH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		tree, err := a.GetDependencyTree(gc.Request.Context(), gc.Param(compIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, tree)
	}
}

func getComponentAffectedH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		affected, err := a.GetAffectedComponents(gc.Request.Context(), gc.Param(compIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, affected)
	}
}

func postInstallOrderH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		var req lib_model.BatchRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(lib_model.NewInvalidInputError(err))
			return
		}
		order, err := a.GetInstallOrder(gc.Request.Context(), req.IDs)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, order)
	}
}
