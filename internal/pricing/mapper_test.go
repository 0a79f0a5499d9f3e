package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costsync/internal"
)

func priceList(name string, rows ...[2]any) internal.Dataset {
	ds := internal.Dataset{Name: name, Columns: []string{"ISBN", "PVP"}}
	for _, r := range rows {
		ds.Rows = append(ds.Rows, internal.Row{"ISBN": r[0], "PVP": r[1]})
	}
	return ds
}

func TestBuildMappingAppliesDiscount(t *testing.T) {
	ds := priceList("editorial", [2]any{"555", 100.0}, [2]any{"12-345", "20,5"})
	m, err := BuildMapping(ds, SourceSpec{CodeColumn: "ISBN", PriceColumn: "PVP", DiscountPercent: 10})
	require.NoError(t, err)

	assert.Equal(t, 90.0, m["555"])
	assert.InDelta(t, 18.45, m["12345"], 1e-9)
}

func TestBuildMappingLastWriteWins(t *testing.T) {
	ds := priceList("dup", [2]any{"777", 10.0}, [2]any{"777.0", 12.0})
	m, err := BuildMapping(ds, SourceSpec{CodeColumn: "ISBN", PriceColumn: "PVP"})
	require.NoError(t, err)

	assert.Len(t, m, 1)
	assert.Equal(t, 12.0, m["777"])
}

func TestBuildMappingSkipsUnusableRows(t *testing.T) {
	ds := priceList("mixed",
		[2]any{"111", "n/a"},
		[2]any{"ABC", 5.0},
		[2]any{"", 6.0},
		[2]any{"222", "7"},
	)
	m, err := BuildMapping(ds, SourceSpec{CodeColumn: "ISBN", PriceColumn: "PVP"})
	require.NoError(t, err)

	assert.Equal(t, Mapping{"222": 7}, m)
	_, ok := m.Lookup("")
	assert.False(t, ok)
}

func TestBuildMappingNoUsablePrices(t *testing.T) {
	ds := priceList("text-only", [2]any{"111", "agotado"}, [2]any{"222", ""})
	_, err := BuildMapping(ds, SourceSpec{CodeColumn: "ISBN", PriceColumn: "PVP"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoUsablePrices))

	var target *NoUsablePricesError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "text-only", target.Source)
	assert.Equal(t, "PVP", target.Column)
}

func TestBuildMappingMissingColumn(t *testing.T) {
	ds := priceList("lista")
	_, err := BuildMapping(ds, SourceSpec{CodeColumn: "ISBN", PriceColumn: "Precio"})
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Precio")
}

func TestBuildMappingRejectsDiscount(t *testing.T) {
	ds := priceList("lista", [2]any{"1", 1.0})
	_, err := BuildMapping(ds, SourceSpec{CodeColumn: "ISBN", PriceColumn: "PVP", DiscountPercent: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = BuildMapping(ds, SourceSpec{CodeColumn: "ISBN", PriceColumn: "PVP", DiscountPercent: 120})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMapSourceStats(t *testing.T) {
	master := []MasterRow{
		{Index: 0, NormalizedCode: "555", CurrentCost: 90, HasCost: true},
		{Index: 1, NormalizedCode: "666", CurrentCost: 10, HasCost: true},
		{Index: 2, NormalizedCode: "999", CurrentCost: 10, HasCost: true},
		{Index: 3, NormalizedCode: "", CurrentCost: 10, HasCost: true},
	}
	ds := priceList("editorial",
		[2]any{"555", 100.0},
		[2]any{"666", 100.0},
		[2]any{"888", "x"},
	)
	res, err := MapSource(master, ds, SourceSpec{CodeColumn: "ISBN", PriceColumn: "PVP", DiscountPercent: 10})
	require.NoError(t, err)

	assert.Equal(t, "editorial", res.Spec.Name)
	assert.Equal(t, SourceStats{Matches: 2, Modifications: 1}, res.Stats)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Mapped)
	assert.Equal(t, 1, res.Skipped)
}
