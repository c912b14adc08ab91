// Package export writes tabular answers to spreadsheet files.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"askdb/pkg/normalize"
)

const sheetName = "Sheet1"

// WriteXLSX writes a tabular answer payload to an xlsx file at path.
// Both backend table shapes are accepted: a 2D array whose first row
// is the header, and an array of row objects (columns are emitted in
// sorted key order).
func WriteXLSX(path string, table any) error {
	rows, err := tableRows(table)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("askdb: export xlsx: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("askdb: export xlsx: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("askdb: export xlsx: %w", err)
	}
	return nil
}

// tableRows flattens either table shape into header plus data rows.
func tableRows(table any) ([][]any, error) {
	arr, ok := table.([]any)
	if !ok || len(arr) == 0 {
		return nil, fmt.Errorf("askdb: export xlsx: answer is not tabular")
	}
	switch arr[0].(type) {
	case []any:
		out := make([][]any, 0, len(arr))
		for _, r := range arr {
			row, ok := r.([]any)
			if !ok {
				return nil, fmt.Errorf("askdb: export xlsx: mixed row shapes")
			}
			cells := make([]any, len(row))
			for i, c := range row {
				cells[i] = normalize.CoerceCell(c)
			}
			out = append(out, cells)
		}
		return out, nil
	case map[string]any:
		first := arr[0].(map[string]any)
		cols := make([]string, 0, len(first))
		for k := range first {
			cols = append(cols, k)
		}
		sort.Strings(cols)
		header := make([]any, len(cols))
		for i, c := range cols {
			header[i] = c
		}
		out := [][]any{header}
		for _, r := range arr {
			obj, ok := r.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("askdb: export xlsx: mixed row shapes")
			}
			cells := make([]any, len(cols))
			for i, c := range cols {
				cells[i] = normalize.CoerceCell(obj[c])
			}
			out = append(out, cells)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("askdb: export xlsx: answer is not tabular")
	}
}
