package pipeline

import (
	"costsync/internal"
	"costsync/internal/sheet"
)

type ColumnsInfo struct {
	HeaderRow int
	Detected  bool
	Columns   []string
	Code      string
	Price     string
}

// PreviewInput returns the first rows of a file as text, before any header
// row is applied.
func PreviewInput(ref internal.TableRef, rows int) ([][]string, error) {
	grid, err := sheet.LoadGrid(ref)
	if err != nil {
		return nil, err
	}
	return grid.Preview(rows), nil
}

// InspectColumns resolves the header row of ref (detecting it when
// ref.HeaderRow is 0) and suggests the code and price columns.
func InspectColumns(ref internal.TableRef, scanRows int) (ColumnsInfo, error) {
	grid, err := sheet.LoadGrid(ref)
	if err != nil {
		return ColumnsInfo{}, err
	}

	info := ColumnsInfo{HeaderRow: ref.HeaderRow}
	if info.HeaderRow == 0 {
		info.HeaderRow = sheet.DetectHeaderRow(grid, scanRows)
		info.Detected = info.HeaderRow > 0
		if !info.Detected {
			info.HeaderRow = 1
		}
	}

	ds, err := grid.Table(ref.Path, info.HeaderRow)
	if err != nil {
		return ColumnsInfo{}, err
	}
	info.Columns = ds.Columns
	info.Code, info.Price = sheet.SuggestColumns(ds.Columns)
	return info, nil
}
