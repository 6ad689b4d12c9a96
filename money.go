package coldata

import (
	"github.com/shopspring/decimal"
	idecimal "github.com/tdsproto/go-coldata/internal/decimal"
)

// Both money types travel with a scale of 4 (ten-thousandths).
const moneyScale = 4

// DecodeMoney reads a MONEYN field whose byte length, already consumed
// from the stream, is size: 0 for NULL, 4 for smallmoney, 8 for money.
// Errors from src are returned unchanged.
func DecodeMoney(src ByteSource, size uint8) (ColumnData, error) {
	return decodeMoney(src, size)
}

func decodeMoney(src ByteSource, size uint8) (ColumnData, error) {
	switch size {
	case 0:
		return NullNumeric(), nil
	case 4:
		v, err := src.ReadInt32()
		if err != nil {
			return ColumnData{}, err
		}
		return newNumeric(idecimal.Int64ToDecimalScale(int64(v), moneyScale)), nil
	case 8:
		// money is sent as the high 32 bits, then the low 32 bits; each word little-endian
		high, err := src.ReadInt32()
		if err != nil {
			return ColumnData{}, err
		}
		low, err := src.ReadUint32()
		if err != nil {
			return ColumnData{}, err
		}
		v := int64(high)<<32 | int64(low)
		return newNumeric(idecimal.Int64ToDecimalScale(v, moneyScale)), nil
	default:
		return ColumnData{}, ProtocolError.New("money: length of %d is invalid", size)
	}
}

type Money struct {
	decimal.Decimal
}

// Scan accepts a decoded ColumnData as well as everything decimal.Decimal
// scans. NULL is an error; use NullMoney for nullable columns.
func (m *Money) Scan(v interface{}) error {
	switch v := v.(type) {
	case nil:
		return ScanError.New("cannot scan NULL into Money")
	case ColumnData:
		d, ok := v.Decimal()
		if !ok {
			return ScanError.New("cannot scan NULL into Money")
		}
		m.Decimal = d
		return nil
	default:
		return m.Decimal.Scan(v)
	}
}

type NullMoney struct {
	decimal.NullDecimal
}

func (n *NullMoney) Scan(v interface{}) error {
	if c, ok := v.(ColumnData); ok {
		n.NullDecimal.Decimal, n.NullDecimal.Valid = c.Decimal()
		return nil
	}
	return n.NullDecimal.Scan(v)
}
