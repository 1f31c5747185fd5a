/*
 * Copyright 2023 InfAI (CC SES)
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

package util

import (
	"github.com/google/uuid"
	"os"
	"strings"
)

func GetManagerID(pth, val string) (string, error) {
	if val != "" {
		return val, nil
	}
	b, err := os.ReadFile(pth)
	if err == nil && len(b) > 0 {
		return strings.TrimSpace(string(b)), nil
	}
	uid, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	id := uid.String()
	if err = os.WriteFile(pth, []byte(id), 0644); err != nil {
		return "", err
	}
	return id, nil
}
