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
	"net/http"

	"github.com/SENERGY-Platform/mgw-component-manager/lib"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/gin-gonic/gin"
)

func getServiceHealthH(a lib.Api) gin.HandlerFunc {
	return func(gc *gin.Context) {
		if _, err := a.ListComponents(gc.Request.Context(), lib_model.ComponentFilter{}); err != nil {
			_ = gc.Error(err)
			return
		}
		if _, err := a.GetJobs(gc.Request.Context(), lib_model.JobFilter{}); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}
