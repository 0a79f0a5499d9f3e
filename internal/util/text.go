package util

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	rePlainInt = regexp.MustCompile(`^[+-]?\d+$`)
)

// CellString renders a cell value the way it would be shown to a user.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.DateTime)
	default:
		return fmt.Sprint(t)
	}
}

// NormalizeCode turns a product code into its digits-only join key.
// "12345", "12345.0" and "12-345" all become "12345".
func NormalizeCode(v any) string {
	s := strings.TrimSpace(CellString(v))
	if s == "" {
		return ""
	}

	// Plain integers skip float64, which would round codes longer than 15
	// digits, but still lose sign and leading zeros like a numeric cell.
	if rePlainInt.MatchString(s) {
		s = strings.TrimLeft(strings.TrimLeft(s, "+-"), "0")
		if s == "" {
			s = "0"
		}
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) {
			s = strconv.FormatFloat(f, 'f', 0, 64)
		} else {
			// Fractions are written out in full: "1e-5" keeps "000001".
			s = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MasterCodeKey normalizes only the part of a master code before the first
// "/"; the rest is an annotation.
func MasterCodeKey(v any) string {
	s := CellString(v)
	if idx := strings.Index(s, "/"); idx >= 0 {
		s = s[:idx]
	}
	return NormalizeCode(s)
}

// NormalizeHeader lower-cases a column title, strips accents and collapses
// whitespace so "Código  SKU" and "codigo sku" compare equal.
func NormalizeHeader(input string) string {
	foldAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(foldAccents, input)
	if err != nil {
		s = input
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
