package vector

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
)

// Fixed is a vector of values which all occupy Width bytes, stored back to back in native little-endian layout
type Fixed struct {
	base
	width int
	data  *memory.Buffer
}

func NewFixed(mem memory.Allocator, name string, width int) *Fixed {
	switch width {
	case 1, 2, 4, 8, 16:
	default:
		panic(fmt.Sprintf("unsupported fixed width %d", width))
	}
	return &Fixed{base: newBase(mem, name), width: width, data: memory.NewResizableBuffer(mem)}
}

// Allocate makes room for capacity rows. Existing values are kept, new rows are null and zeroed.
func (v *Fixed) Allocate(capacity int) {
	v.allocateValidity(capacity)
	growBuffer(v.data, capacity*v.width)
	if capacity > v.capacity {
		v.capacity = capacity
	}
}

func (v *Fixed) Width() int {
	return v.width
}

// Data returns the value bytes for all allocated rows
func (v *Fixed) Data() []byte {
	return v.data.Bytes()[:v.capacity*v.width]
}

func (v *Fixed) Value(i int) []byte {
	return v.data.Bytes()[i*v.width : (i+1)*v.width]
}

func (v *Fixed) Set(i int, value []byte) {
	if len(value) != v.width {
		panic(fmt.Sprintf("value has %d bytes, vector width is %d", len(value), v.width))
	}
	copy(v.Value(i), value)
	v.setPresent(i)
}

func (v *Fixed) SetInt8(i int, val int8) {
	v.data.Bytes()[i] = byte(val)
	v.setPresent(i)
}

func (v *Fixed) Int8(i int) int8 {
	return int8(v.data.Bytes()[i])
}

func (v *Fixed) SetInt16(i int, val int16) {
	b := v.data.Bytes()
	b[2*i] = byte(val)
	b[2*i+1] = byte(uint16(val) >> 8)
	v.setPresent(i)
}

func (v *Fixed) Int16(i int) int16 {
	b := v.data.Bytes()
	return int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
}

func (v *Fixed) SetInt32(i int, val int32) {
	common.WriteUint32ToBufferLE(v.data.Bytes(), 4*i, uint32(val))
	v.setPresent(i)
}

func (v *Fixed) Int32(i int) int32 {
	u, _ := common.ReadUint32FromBufferLE(v.data.Bytes(), 4*i)
	return int32(u)
}

func (v *Fixed) SetInt64(i int, val int64) {
	common.WriteUint64ToBufferLE(v.data.Bytes(), 8*i, uint64(val))
	v.setPresent(i)
}

func (v *Fixed) Int64(i int) int64 {
	u, _ := common.ReadUint64FromBufferLE(v.data.Bytes(), 8*i)
	return int64(u)
}

func (v *Fixed) SetFloat64(i int, val float64) {
	common.WriteUint64ToBufferLE(v.data.Bytes(), 8*i, math.Float64bits(val))
	v.setPresent(i)
}

func (v *Fixed) Float64(i int) float64 {
	u, _ := common.ReadUint64FromBufferLE(v.data.Bytes(), 8*i)
	return math.Float64frombits(u)
}

func (v *Fixed) SetDecimal(i int, val common.Decimal) {
	val.Encode(v.data.Bytes(), common.DecimalByteWidth*i)
	v.setPresent(i)
}

func (v *Fixed) Decimal(i int) common.Decimal {
	dec, _ := common.DecodeDecimal(v.data.Bytes(), common.DecimalByteWidth*i)
	return dec
}

func (v *Fixed) Release() {
	v.release()
	v.data.Release()
	v.data = nil
}
