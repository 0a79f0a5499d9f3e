package pricing

import (
	"fmt"

	"costsync/internal"
	"costsync/internal/util"
)

// MasterColumns names the columns of the master inventory the engine reads
// and writes.
type MasterColumns struct {
	Code    string
	Cost    string
	NewCost string
}

type MasterRow struct {
	Index          int
	RawCode        string
	CurrentCost    float64
	HasCost        bool
	NormalizedCode string
}

// Differs reports whether price would change the row's cost. A row whose
// current cost is not numeric differs from every price.
func (r MasterRow) Differs(price float64) bool {
	return !r.HasCost || price != r.CurrentCost
}

type Result struct {
	Dataset  internal.Dataset
	NewCosts []float64
	Sources  []SourceResult
	// Totals sums the per-source statistics; a code listed by two sources
	// is counted twice.
	Totals SourceStats
	// Final is computed once against the merged mapping.
	Final SourceStats
}

// MasterRows validates the master columns and derives the join key of
// every row.
func MasterRows(ds internal.Dataset, cols MasterColumns) ([]MasterRow, error) {
	for _, col := range []string{cols.Code, cols.Cost} {
		if !ds.HasColumn(col) {
			return nil, &MissingColumnError{Dataset: ds.Name, Column: col}
		}
	}

	out := make([]MasterRow, 0, len(ds.Rows))
	for i, row := range ds.Rows {
		cost, ok := util.ParsePrice(row[cols.Cost])
		out = append(out, MasterRow{
			Index:          i,
			RawCode:        util.CellString(row[cols.Code]),
			CurrentCost:    cost,
			HasCost:        ok,
			NormalizedCode: util.MasterCodeKey(row[cols.Code]),
		})
	}
	return out, nil
}

// Merge folds mappings in the given order; for a code present in several
// mappings the last one wins.
func Merge(mappings ...Mapping) Mapping {
	size := 0
	for _, m := range mappings {
		size += len(m)
	}
	global := make(Mapping, size)
	for _, m := range mappings {
		for code, price := range m {
			global[code] = price
		}
	}
	return global
}

// NewCost is the value written for one row: 0 when nothing matched or the
// price is unchanged, otherwise the matched price.
func NewCost(row MasterRow, global Mapping) float64 {
	price, ok := global.Lookup(row.NormalizedCode)
	if !ok || !row.Differs(price) {
		return 0
	}
	return price
}

// Reconcile applies the sources, in order, to the master dataset. The input
// dataset is left untouched; the result carries a copy with the new-cost
// column filled in.
func Reconcile(master internal.Dataset, cols MasterColumns, sources []SourceResult) (Result, error) {
	if cols.NewCost == "" {
		return Result{}, fmt.Errorf("master %q: new cost column name is empty", master.Name)
	}
	rows, err := MasterRows(master, cols)
	if err != nil {
		return Result{}, err
	}

	mappings := make([]Mapping, 0, len(sources))
	result := Result{Sources: sources}
	for _, src := range sources {
		mappings = append(mappings, src.Mapping)
		result.Totals.Matches += src.Stats.Matches
		result.Totals.Modifications += src.Stats.Modifications
	}
	global := Merge(mappings...)
	result.Final = global.Stats(rows)

	out := internal.Dataset{
		Name:    master.Name,
		Columns: append([]string(nil), master.Columns...),
		Rows:    make([]internal.Row, 0, len(master.Rows)),
	}
	if !out.HasColumn(cols.NewCost) {
		out.Columns = append(out.Columns, cols.NewCost)
	}

	result.NewCosts = make([]float64, len(rows))
	for i, row := range rows {
		cost := NewCost(row, global)
		result.NewCosts[i] = cost

		copied := make(internal.Row, len(master.Rows[i])+1)
		for k, v := range master.Rows[i] {
			copied[k] = v
		}
		copied[cols.NewCost] = cost
		out.Rows = append(out.Rows, copied)
	}
	result.Dataset = out
	return result, nil
}
