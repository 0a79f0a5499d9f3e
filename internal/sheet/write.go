package sheet

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"costsync/internal"
)

// WriteXLSX saves ds as a single-sheet workbook: titles on row 1, data
// from row 2, columns in dataset order.
func WriteXLSX(ds internal.Dataset, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range ds.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, row := range ds.Rows {
		r := i + 2
		for c, col := range ds.Columns {
			value, ok := row[col]
			if !ok || value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
