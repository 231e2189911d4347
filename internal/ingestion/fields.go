package ingestion

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/shsdb/reconciler/internal/domain"
)

// field binds one schema column to a slot of record type T. decode receives
// the trimmed, non-empty token; encode renders the slot back, "" when unset.
type field[T any] struct {
	column    domain.Column
	mandatory bool
	decode    func(rec *T, raw string) error
	encode    func(rec *T) string
}

func required[T any](f field[T]) field[T] {
	f.mandatory = true
	return f
}

func stringField[T any](col domain.Column, slot func(*T) *string) field[T] {
	return field[T]{
		column: col,
		decode: func(rec *T, raw string) error {
			*slot(rec) = raw
			return nil
		},
		encode: func(rec *T) string { return *slot(rec) },
	}
}

func intField[T any](col domain.Column, slot func(*T) *int) field[T] {
	return field[T]{
		column: col,
		decode: func(rec *T, raw string) error {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return err
			}
			*slot(rec) = v
			return nil
		},
		encode: func(rec *T) string { return strconv.Itoa(*slot(rec)) },
	}
}

func periodField[T any](col domain.Column, slot func(*T) *int) field[T] {
	f := intField(col, slot)
	f.decode = func(rec *T, raw string) error {
		p, err := NormalizePeriod(raw)
		if err != nil {
			return err
		}
		*slot(rec) = p
		return nil
	}
	return f
}

func decimalField[T any](col domain.Column, slot func(*T) *decimal.NullDecimal) field[T] {
	return field[T]{
		column: col,
		decode: func(rec *T, raw string) error {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return err
			}
			*slot(rec) = decimal.NewNullDecimal(d)
			return nil
		},
		encode: func(rec *T) string {
			nd := *slot(rec)
			if !nd.Valid {
				return ""
			}
			return formatDecimal(nd.Decimal)
		},
	}
}

func amountField[T any](col domain.Column, slot func(*T) *decimal.Decimal) field[T] {
	return field[T]{
		column: col,
		decode: func(rec *T, raw string) error {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return err
			}
			*slot(rec) = d
			return nil
		},
		encode: func(rec *T) string { return formatDecimal(*slot(rec)) },
	}
}

func dateField[T any](col domain.Column, slot func(*T) **domain.Date) field[T] {
	return field[T]{
		column: col,
		decode: func(rec *T, raw string) error {
			d, err := domain.ParseDate(raw)
			if err != nil {
				return err
			}
			*slot(rec) = &d
			return nil
		},
		encode: func(rec *T) string {
			if d := *slot(rec); d != nil {
				return d.String()
			}
			return ""
		},
	}
}

// flagField decodes a Y/N token. Anything else is no value at all, which is
// an error since every flag of the schemas is mandatory.
func flagField[T any](col domain.Column, slot func(*T) *bool) field[T] {
	return field[T]{
		column:    col,
		mandatory: true,
		decode: func(rec *T, raw string) error {
			v := ParseFlag(raw)
			if v == nil {
				return fmt.Errorf("flag %q is neither Y nor N", raw)
			}
			*slot(rec) = *v
			return nil
		},
		encode: func(rec *T) string {
			if *slot(rec) {
				return "Y"
			}
			return "N"
		},
	}
}

// ParseFlag maps Y/y to true and N/n to false. Any other token yields nil,
// which callers must not read as false.
func ParseFlag(raw string) *bool {
	var v bool
	switch raw {
	case "Y", "y":
		v = true
	case "N", "n":
		v = false
	default:
		return nil
	}
	return &v
}

// formatDecimal keeps the scale of d so that a re-decoded value is identical.
func formatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
