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
	"os"
	"path"
	"strings"

	"github.com/SENERGY-Platform/mgw-component-manager/lib"
	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"github.com/SENERGY-Platform/mgw-component-manager/util"
	"gopkg.in/yaml.v3"
)

// loadComponentDefs registers component definitions from yaml files in the
// given directory. Already registered components are skipped.
func loadComponentDefs(ctx context.Context, cmApi lib.Api, dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yml") && !strings.HasSuffix(name, ".yaml") {
			continue
		}
		file, err := os.ReadFile(path.Join(dirPath, name))
		if err != nil {
			return err
		}
		var defs []lib_model.ComponentDefinition
		if err = yaml.Unmarshal(file, &defs); err != nil {
			return err
		}
		for _, def := range defs {
			if _, err = cmApi.GetComponent(ctx, def.ID); err == nil {
				continue
			}
			if err = cmApi.RegisterComponent(ctx, def); err != nil {
				util.Logger.Warningf("registering component '%s' from '%s' failed: %s", def.ID, name, err)
				continue
			}
			util.Logger.Infof("registered component '%s' from '%s'", def.ID, name)
		}
	}
	return nil
}
