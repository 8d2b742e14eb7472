// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package generation

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet layout.
const (
	EnvVarSheetName   = "Environment Variables"
	envVarHeaderRow   = 2
	envVarFirstColumn = 2 // column B
	envVarHeaderFill  = "90BCF2"
	envVarHeaderFont  = "FFFFFF"
)

// EnvVarColumns is the fixed header row.
var EnvVarColumns = []string{
	"Environment Variable Name",
	"Type",
	"Description",
	"Dev Value - Name of Dev Environment - DEV",
	"Test Value - Name of UAT Environment - UAT",
	"Production Value - Name of Production Environment",
}

// WriteEnvVarSheet renders records as a styled table and saves it to path.
func WriteEnvVarSheet(path string, records []EnvVarRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", EnvVarSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: envVarHeaderFont},
		Fill: excelize.Fill{Type: "pattern", Color: []string{envVarHeaderFill}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, title := range EnvVarColumns {
		cell, err := excelize.CoordinatesToCellName(envVarFirstColumn+i, envVarHeaderRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(EnvVarSheetName, cell, title); err != nil {
			return err
		}
		if err := f.SetCellStyle(EnvVarSheetName, cell, cell, header); err != nil {
			return err
		}
	}

	for r, rec := range records {
		row := []string{rec.Name, rec.Type, rec.Description, rec.DevValue, rec.TestValue, rec.ProductionValue}
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(envVarFirstColumn+c, envVarHeaderRow+1+r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(EnvVarSheetName, cell, v); err != nil {
				return err
			}
		}
	}

	first, _ := excelize.ColumnNumberToName(envVarFirstColumn)
	last, _ := excelize.ColumnNumberToName(envVarFirstColumn + len(EnvVarColumns) - 1)
	if err := f.SetColWidth(EnvVarSheetName, first, last, 32); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
