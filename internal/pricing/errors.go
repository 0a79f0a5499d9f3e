package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is matched by MissingColumnError.
	ErrMissingColumn = errors.New("missing column")

	// ErrNoUsablePrices is matched by NoUsablePricesError.
	ErrNoUsablePrices = errors.New("no usable numeric prices")

	// ErrInvalidInput is matched by InvalidDiscountError.
	ErrInvalidInput = errors.New("invalid input")
)

// MissingColumnError reports a dataset that lacks a required column.
type MissingColumnError struct {
	Dataset string
	Column  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("dataset %q has no column %q", e.Dataset, e.Column)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// NoUsablePricesError means not a single cell of the chosen price column
// could be read as a number. The caller has to pick another column.
type NoUsablePricesError struct {
	Source string
	Column string
}

func (e *NoUsablePricesError) Error() string {
	return fmt.Sprintf("source %q: column %q has no usable numeric prices", e.Source, e.Column)
}

func (e *NoUsablePricesError) Is(target error) bool {
	return target == ErrNoUsablePrices
}

// InvalidDiscountError rejects a discount percentage outside 0..100.
type InvalidDiscountError struct {
	Source   string
	Discount float64
}

func (e *InvalidDiscountError) Error() string {
	return fmt.Sprintf("source %q: discount %g%% is outside 0..100", e.Source, e.Discount)
}

func (e *InvalidDiscountError) Is(target error) bool {
	return target == ErrInvalidInput
}
