package util

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice coerces a cell into a price. Comma decimal separators are
// accepted ("12,5" -> 12.5). ok is false for empty, non-numeric, NaN and
// infinite values; callers must never treat those as zero.
func ParsePrice(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case bool:
		return 0, false
	}

	token := strings.TrimSpace(strings.ReplaceAll(CellString(v), "\u00A0", " "))
	if token == "" {
		return 0, false
	}
	token = strings.ReplaceAll(token, ",", ".")
	parsed, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return finite(parsed)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
