package pricing

import (
	"costsync/internal"
	"costsync/internal/util"
)

// Mapping is normalized code -> effective price for one or more sources.
type Mapping map[string]float64

type SourceSpec struct {
	Name            string
	CodeColumn      string
	PriceColumn     string
	DiscountPercent float64
}

type SourceStats struct {
	Matches       int
	Modifications int
}

// SourceResult is one price list after mapping, with its statistics
// against the master.
type SourceResult struct {
	Spec    SourceSpec
	Mapping Mapping
	Stats   SourceStats
	Rows    int
	Mapped  int
	Skipped int
}

// EffectivePrice applies a percentage discount to a list price.
func EffectivePrice(price, discountPercent float64) float64 {
	return price * (1 - discountPercent/100)
}

// BuildMapping keys every usable row of a price list by its normalized code.
// Rows with an empty code or an unparseable price are left out; a later row
// with the same code replaces an earlier one.
func BuildMapping(ds internal.Dataset, spec SourceSpec) (Mapping, error) {
	mapping, _, err := buildMapping(ds, spec)
	return mapping, err
}

func buildMapping(ds internal.Dataset, spec SourceSpec) (Mapping, int, error) {
	name := spec.Name
	if name == "" {
		name = ds.Name
	}
	if spec.DiscountPercent < 0 || spec.DiscountPercent > 100 {
		return nil, 0, &InvalidDiscountError{Source: name, Discount: spec.DiscountPercent}
	}
	for _, col := range []string{spec.CodeColumn, spec.PriceColumn} {
		if !ds.HasColumn(col) {
			return nil, 0, &MissingColumnError{Dataset: name, Column: col}
		}
	}

	mapping := Mapping{}
	parsedPrices := 0
	skipped := 0
	for _, row := range ds.Rows {
		price, ok := util.ParsePrice(row[spec.PriceColumn])
		if ok {
			parsedPrices++
		}
		code := util.NormalizeCode(row[spec.CodeColumn])
		if !ok || code == "" {
			skipped++
			continue
		}
		mapping[code] = EffectivePrice(price, spec.DiscountPercent)
	}

	if parsedPrices == 0 {
		return nil, skipped, &NoUsablePricesError{Source: name, Column: spec.PriceColumn}
	}
	return mapping, skipped, nil
}

// Stats counts master rows present in the mapping and, of those, the ones
// whose price would change. It does not modify the mapping.
func (m Mapping) Stats(master []MasterRow) SourceStats {
	var stats SourceStats
	for _, row := range master {
		price, ok := m.Lookup(row.NormalizedCode)
		if !ok {
			continue
		}
		stats.Matches++
		if row.Differs(price) {
			stats.Modifications++
		}
	}
	return stats
}

// Lookup never matches the empty code.
func (m Mapping) Lookup(code string) (float64, bool) {
	if code == "" {
		return 0, false
	}
	price, ok := m[code]
	return price, ok
}

// MapSource builds the mapping of one price list and its statistics against
// the master rows.
func MapSource(master []MasterRow, ds internal.Dataset, spec SourceSpec) (SourceResult, error) {
	if spec.Name == "" {
		spec.Name = ds.Name
	}
	mapping, skipped, err := buildMapping(ds, spec)
	if err != nil {
		return SourceResult{}, err
	}
	return SourceResult{
		Spec:    spec,
		Mapping: mapping,
		Stats:   mapping.Stats(master),
		Rows:    len(ds.Rows),
		Mapped:  len(mapping),
		Skipped: skipped,
	}, nil
}
