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

package storage_hdl

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
	"time"
)

func (h *Handler) CreateSnapshot(ctx context.Context, itf driver.Tx, cID string, def lib_model.ComponentDefinition, timestamp time.Time, maxHistory int) error {
	tx, ok := itf.(*sql.Tx)
	if !ok {
		return lib_model.NewInternalError(errors.New("invalid transaction type"))
	}
	b, err := json.Marshal(def)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	_, err = tx.ExecContext(ctx, "INSERT INTO `component_snapshots` (`comp_id`, `definition`, `created`) VALUES (?, ?, ?)", cID, b, timestamp)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	if maxHistory > 0 {
		row := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM `component_snapshots` WHERE `comp_id` = ?", cID)
		var n int
		if err = row.Scan(&n); err != nil {
			return lib_model.NewInternalError(err)
		}
		if n > maxHistory {
			_, err = tx.ExecContext(ctx, "DELETE FROM `component_snapshots` WHERE `comp_id` = ? ORDER BY `index` ASC LIMIT ?", cID, n-maxHistory)
			if err != nil {
				return lib_model.NewInternalError(err)
			}
		}
	}
	return nil
}

func (h *Handler) LatestSnapshot(ctx context.Context, cID string) (lib_model.ComponentDefinition, int64, error) {
	row := h.db.QueryRowContext(ctx, "SELECT `index`, `definition` FROM `component_snapshots` WHERE `comp_id` = ? ORDER BY `index` DESC LIMIT 1", cID)
	var idx int64
	var b []byte
	if err := row.Scan(&idx, &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lib_model.ComponentDefinition{}, 0, lib_model.NewNotFoundError(fmt.Errorf("no snapshots for component '%s'", cID))
		}
		return lib_model.ComponentDefinition{}, 0, lib_model.NewInternalError(err)
	}
	var def lib_model.ComponentDefinition
	if err := json.Unmarshal(b, &def); err != nil {
		return lib_model.ComponentDefinition{}, 0, lib_model.NewInternalError(err)
	}
	return def, idx, nil
}

func (h *Handler) ListSnapshots(ctx context.Context, cID string) ([]lib_model.ComponentDefinition, error) {
	rows, err := h.db.QueryContext(ctx, "SELECT `definition` FROM `component_snapshots` WHERE `comp_id` = ? ORDER BY `index` ASC", cID)
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	defer rows.Close()
	var defs []lib_model.ComponentDefinition
	for rows.Next() {
		var b []byte
		if err = rows.Scan(&b); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		var def lib_model.ComponentDefinition
		if err = json.Unmarshal(b, &def); err != nil {
			return nil, lib_model.NewInternalError(err)
		}
		defs = append(defs, def)
	}
	if err = rows.Err(); err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return defs, nil
}

func (h *Handler) DeleteSnapshot(ctx context.Context, itf driver.Tx, index int64) error {
	tx, ok := itf.(*sql.Tx)
	if !ok {
		return lib_model.NewInternalError(errors.New("invalid transaction type"))
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM `component_snapshots` WHERE `index` = ?", index)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}

func (h *Handler) DeleteSnapshots(ctx context.Context, itf driver.Tx, cID string) error {
	tx, ok := itf.(*sql.Tx)
	if !ok {
		return lib_model.NewInternalError(errors.New("invalid transaction type"))
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM `component_snapshots` WHERE `comp_id` = ?", cID)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}
