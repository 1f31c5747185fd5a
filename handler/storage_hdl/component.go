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
	"strings"
	"time"

	lib_model "github.com/SENERGY-Platform/mgw-component-manager/lib/model"
)

func genListCompFilter(filter lib_model.ComponentFilter) (string, []any) {
	var fc []string
	var val []any
	if filter.Name != "" {
		fc = append(fc, "`name` = ?")
		val = append(val, filter.Name)
	}
	if filter.Type != "" {
		fc = append(fc, "`type` = ?")
		val = append(val, filter.Type)
	}
	if len(fc) > 0 {
		return " WHERE " + strings.Join(fc, " AND "), val
	}
	return "", nil
}

func (h *Handler) ListComp(ctx context.Context, filter lib_model.ComponentFilter) (map[string]lib_model.Component, error) {
	q := "SELECT `id`, `definition`, `created`, `updated` FROM `components`"
	fc, val := genListCompFilter(filter)
	if fc != "" {
		q += fc
	}
	q += " ORDER BY `name`"
	rows, err := h.db.QueryContext(ctx, q, val...)
	if err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	defer rows.Close()
	components := make(map[string]lib_model.Component)
	for rows.Next() {
		comp, err := scanComp(rows)
		if err != nil {
			return nil, err
		}
		components[comp.ID] = comp
	}
	if err = rows.Err(); err != nil {
		return nil, lib_model.NewInternalError(err)
	}
	return components, nil
}

func (h *Handler) CreateComp(ctx context.Context, itf driver.Tx, comp lib_model.Component) error {
	tx, ok := itf.(*sql.Tx)
	if !ok {
		return lib_model.NewInternalError(errors.New("invalid transaction type"))
	}
	def, err := json.Marshal(comp.ComponentDefinition)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	_, err = tx.ExecContext(ctx, "INSERT INTO `components` (`id`, `name`, `version`, `type`, `definition`, `created`, `updated`) VALUES (?, ?, ?, ?, ?, ?, ?)", comp.ID, comp.Name, comp.Version, comp.Type, def, comp.Created, comp.Updated)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	return nil
}

func (h *Handler) ReadComp(ctx context.Context, cID string) (lib_model.Component, error) {
	row := h.db.QueryRowContext(ctx, "SELECT `id`, `definition`, `created`, `updated` FROM `components` WHERE `id` = ?", cID)
	comp, err := scanComp(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lib_model.Component{}, lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
		}
		return lib_model.Component{}, err
	}
	return comp, nil
}

func (h *Handler) UpdateComp(ctx context.Context, itf driver.Tx, comp lib_model.Component) error {
	tx, ok := itf.(*sql.Tx)
	if !ok {
		return lib_model.NewInternalError(errors.New("invalid transaction type"))
	}
	def, err := json.Marshal(comp.ComponentDefinition)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	res, err := tx.ExecContext(ctx, "UPDATE `components` SET `name` = ?, `version` = ?, `type` = ?, `definition` = ?, `updated` = ? WHERE `id` = ?", comp.Name, comp.Version, comp.Type, def, comp.Updated, comp.ID)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	if n < 1 {
		return lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", comp.ID))
	}
	return nil
}

func (h *Handler) DeleteComp(ctx context.Context, itf driver.Tx, cID string) error {
	tx, ok := itf.(*sql.Tx)
	if !ok {
		return lib_model.NewInternalError(errors.New("invalid transaction type"))
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM `components` WHERE `id` = ?", cID)
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return lib_model.NewInternalError(err)
	}
	if n < 1 {
		return lib_model.NewNotFoundError(fmt.Errorf("component '%s' not found", cID))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComp(r rowScanner) (lib_model.Component, error) {
	var comp lib_model.Component
	var def []byte
	var ct, ut []uint8
	if err := r.Scan(&comp.ID, &def, &ct, &ut); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lib_model.Component{}, err
		}
		return lib_model.Component{}, lib_model.NewInternalError(err)
	}
	if err := json.Unmarshal(def, &comp.ComponentDefinition); err != nil {
		return lib_model.Component{}, lib_model.NewInternalError(err)
	}
	tc, err := time.Parse(tLayout, string(ct))
	if err != nil {
		return lib_model.Component{}, lib_model.NewInternalError(err)
	}
	tu, err := time.Parse(tLayout, string(ut))
	if err != nil {
		return lib_model.Component{}, lib_model.NewInternalError(err)
	}
	comp.Created = tc
	comp.Updated = tu
	return comp, nil
}
