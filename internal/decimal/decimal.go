// Package decimal holds the fixed-point representation used for numeric
// column values decoded off the wire.
package decimal

import (
	"math/big"

	shopspring "github.com/shopspring/decimal"
)

// Decimal represents decimal type in the Microsoft Open Specifications: http://msdn.microsoft.com/en-us/library/ee780893.aspx
type Decimal struct {
	integer  [4]uint32 // Little-endian
	positive bool
	prec     uint8
	scale    uint8
}

const int64Prec = 19

// Int64ToDecimalScale builds a Decimal whose unscaled integer is v, so the
// represented value is v * 10^-scale.
func Int64ToDecimalScale(v int64, scale uint8) Decimal {
	positive := v >= 0
	// two's complement negation in uint64 also covers math.MinInt64
	u := uint64(v)
	if !positive {
		u = -u
	}
	return Decimal{
		integer:  [4]uint32{uint32(u), uint32(u >> 32), 0, 0},
		positive: positive,
		prec:     int64Prec,
		scale:    scale,
	}
}

func (d Decimal) Scale() uint8 {
	return d.scale
}

func (d Decimal) Prec() uint8 {
	return d.prec
}

func (d Decimal) IsPositive() bool {
	return d.positive
}

// Int64 returns the unscaled integer when it fits in an int64.
func (d Decimal) Int64() (int64, bool) {
	if d.integer[2] != 0 || d.integer[3] != 0 {
		return 0, false
	}
	u := uint64(d.integer[1])<<32 | uint64(d.integer[0])
	if d.positive {
		if u > 1<<63-1 {
			return 0, false
		}
		return int64(u), true
	}
	if u > 1<<63 {
		return 0, false
	}
	return int64(-u), true
}

// BigInt returns the signed unscaled integer.
func (d Decimal) BigInt() big.Int {
	var bytes [16]byte
	for i := 0; i < 4; i++ {
		w := d.integer[3-i]
		bytes[i*4] = byte(w >> 24)
		bytes[i*4+1] = byte(w >> 16)
		bytes[i*4+2] = byte(w >> 8)
		bytes[i*4+3] = byte(w)
	}
	var x big.Int
	x.SetBytes(bytes[:])
	if !d.positive {
		x.Neg(&x)
	}
	return x
}

// Shopspring converts d into the arbitrary precision decimal handed out to
// callers.
func (d Decimal) Shopspring() shopspring.Decimal {
	x := d.BigInt()
	return shopspring.NewFromBigInt(&x, -int32(d.scale))
}

func (d Decimal) Bytes() []byte {
	x := d.BigInt()
	return ScaleBytes(x.String(), d.scale)
}

func (d Decimal) String() string {
	return string(d.Bytes())
}

// ScaleBytes inserts a decimal point scale digits from the right of the
// integer text s, padding with zeros as needed. s may carry a leading '-'.
func ScaleBytes(s string, scale uint8) []byte {
	buf := make([]byte, 0, len(s)+int(scale)+3)
	if len(s) > 0 && s[0] == '-' {
		buf = append(buf, '-')
		s = s[1:]
	}
	if scale == 0 {
		return append(buf, s...)
	}
	if len(s) <= int(scale) {
		buf = append(buf, '0', '.')
		for i := len(s); i < int(scale); i++ {
			buf = append(buf, '0')
		}
		return append(buf, s...)
	}
	split := len(s) - int(scale)
	buf = append(buf, s[:split]...)
	buf = append(buf, '.')
	return append(buf, s[split:]...)
}
