package coldata

import (
	"database/sql/driver"

	shopspring "github.com/shopspring/decimal"
	"github.com/tdsproto/go-coldata/internal/decimal"
)

// ColumnData is one decoded numeric cell: either a fixed-point value or
// NULL. A NULL is never represented as zero.
type ColumnData struct {
	valid   bool
	numeric decimal.Decimal
}

// NullNumeric returns the NULL numeric value.
func NullNumeric() ColumnData {
	return ColumnData{}
}

func newNumeric(d decimal.Decimal) ColumnData {
	return ColumnData{valid: true, numeric: d}
}

// NumericWithScale returns the value mantissa * 10^-scale.
func NumericWithScale(mantissa int64, scale uint8) ColumnData {
	return newNumeric(decimal.Int64ToDecimalScale(mantissa, scale))
}

func (c ColumnData) IsNull() bool {
	return !c.valid
}

// Scale is the number of implied decimal digits; zero for NULL.
func (c ColumnData) Scale() uint8 {
	if !c.valid {
		return 0
	}
	return c.numeric.Scale()
}

// Mantissa returns the unscaled integer. ok is false for NULL.
func (c ColumnData) Mantissa() (mantissa int64, ok bool) {
	if !c.valid {
		return 0, false
	}
	return c.numeric.Int64()
}

// Decimal returns the value as a shopspring decimal. ok is false for NULL.
func (c ColumnData) Decimal() (d shopspring.Decimal, ok bool) {
	if !c.valid {
		return shopspring.Decimal{}, false
	}
	return c.numeric.Shopspring(), true
}

func (c ColumnData) String() string {
	if !c.valid {
		return "NULL"
	}
	return c.numeric.String()
}

// Value returns the decimal text, or nil for NULL, the same shape the
// driver hands numeric columns to database/sql.
func (c ColumnData) Value() (driver.Value, error) {
	if !c.valid {
		return nil, nil
	}
	return c.numeric.Bytes(), nil
}
