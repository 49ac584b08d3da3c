package common

import (
	"math/big"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/kunichan2013/dremio-oss/errors"
)

// DecimalByteWidth is the width of a 128-bit decimal in a fixed width vector or row block
const DecimalByteWidth = 16

// Decimal is a 128-bit fixed-point value. The scale lives on the column type, not on the value.
type Decimal struct {
	num decimal128.Num
}

func NewDecFromInt64(i int64) Decimal {
	return Decimal{num: decimal128.FromI64(i)}
}

func NewDecFromBigInt(i *big.Int) Decimal {
	return Decimal{num: decimal128.FromBigInt(i)}
}

func NewDecFromString(s string, precision int, scale int) (Decimal, error) {
	num, err := decimal128.FromString(s, int32(precision), int32(scale))
	if err != nil {
		return Decimal{}, errors.WithStack(err)
	}
	return Decimal{num: num}, nil
}

// DecodeDecimal reads a little-endian two's complement decimal, low word first
func DecodeDecimal(buffer []byte, offset int) (Decimal, int) {
	lo, offset := ReadUint64FromBufferLE(buffer, offset)
	hi, offset := ReadUint64FromBufferLE(buffer, offset)
	return Decimal{num: decimal128.New(int64(hi), lo)}, offset
}

// Encode writes the decimal in place at offset, using the same layout DecodeDecimal reads
func (d Decimal) Encode(buffer []byte, offset int) int {
	offset = WriteUint64ToBufferLE(buffer, offset, d.num.LowBits())
	return WriteUint64ToBufferLE(buffer, offset, uint64(d.num.HighBits()))
}

func (d Decimal) Num() decimal128.Num {
	return d.num
}

func (d Decimal) CompareTo(other Decimal) int {
	return d.num.Cmp(other.num)
}

func (d Decimal) ToString(scale int) string {
	return d.num.ToString(int32(scale))
}
