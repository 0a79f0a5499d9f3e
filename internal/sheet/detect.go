package sheet

import (
	"strings"

	"costsync/internal/util"
)

var (
	codeHeaderProbes  = []string{"codigo", "cod", "sku", "isbn", "ean", "code", "referencia", "ref", "articulo"}
	priceHeaderProbes = []string{"precio", "pvp", "costo", "coste", "price", "cost", "tarifa", "importe", "valor"}
)

// SuggestColumns guesses the code and price columns of a price list from
// its titles. Either result may be empty.
func SuggestColumns(columns []string) (code, price string) {
	norm := make([]string, 0, len(columns))
	for _, c := range columns {
		norm = append(norm, util.NormalizeHeader(c))
	}

	codeIdx := findHeaderIndex(norm, codeHeaderProbes, -1)
	priceIdx := findHeaderIndex(norm, priceHeaderProbes, codeIdx)
	if codeIdx >= 0 {
		code = columns[codeIdx]
	}
	if priceIdx >= 0 {
		price = columns[priceIdx]
	}
	return code, price
}

// DetectHeaderRow returns the 1-based row, among the first scanRows, whose
// cells look like both a code title and a price title. It returns 0 when no
// row qualifies.
func DetectHeaderRow(g Grid, scanRows int) int {
	if scanRows <= 0 || scanRows > len(g) {
		scanRows = len(g)
	}
	for i, row := range g[:scanRows] {
		titles := make([]string, 0, len(row))
		for _, v := range row {
			if s, ok := v.(string); ok {
				titles = append(titles, util.NormalizeHeader(s))
			}
		}
		codeIdx := findHeaderIndex(titles, codeHeaderProbes, -1)
		if codeIdx < 0 {
			continue
		}
		if findHeaderIndex(titles, priceHeaderProbes, codeIdx) >= 0 {
			return i + 1
		}
	}
	return 0
}

// findHeaderIndex tries probes in priority order and returns the first
// header containing one, ignoring index skip.
func findHeaderIndex(headers []string, probes []string, skip int) int {
	for _, probe := range probes {
		for i, h := range headers {
			if i != skip && strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}
