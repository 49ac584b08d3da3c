package vector

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
)

// Variable is a vector of byte strings. Row i occupies data[offsets[i]:offsets[i+1]] where offsets are little-endian
// int32 values, the Arrow string/binary layout.
//
// Rows must be set in increasing row order. Rows skipped over are recorded as empty, and are null unless set.
type Variable struct {
	base
	offsets *memory.Buffer
	data    *memory.Buffer
	lastSet int
}

func NewVariable(mem memory.Allocator, name string) *Variable {
	return &Variable{
		base:    newBase(mem, name),
		offsets: memory.NewResizableBuffer(mem),
		data:    memory.NewResizableBuffer(mem),
		lastSet: -1,
	}
}

// Allocate makes room for capacity rows and dataBytes bytes of values
func (v *Variable) Allocate(capacity int, dataBytes int) {
	v.allocateValidity(capacity)
	growBuffer(v.offsets, (capacity+1)*4)
	growBuffer(v.data, dataBytes)
	if capacity > v.capacity {
		v.capacity = capacity
	}
}

// DataCapacity is the number of value bytes that can be held without growing
func (v *Variable) DataCapacity() int {
	return v.data.Len()
}

// DataSize is the number of value bytes used by the rows set so far
func (v *Variable) DataSize() int {
	return v.offset(v.lastSet + 1)
}

// SetBytes sets row i to a copy of value. The data buffer is grown if needed.
func (v *Variable) SetBytes(i int, value []byte) {
	v.fillHoles(i)
	start := v.offset(i)
	end := start + len(value)
	if end > v.data.Len() {
		growBuffer(v.data, 2*end)
	}
	copy(v.data.Bytes()[start:end], value)
	common.WriteUint32ToBufferLE(v.offsets.Bytes(), 4*(i+1), uint32(end))
	v.lastSet = i
	v.setPresent(i)
}

func (v *Variable) SetString(i int, value string) {
	v.SetBytes(i, common.StringToByteSliceZeroCopy(value))
}

func (v *Variable) SetNull(i int) {
	v.fillHoles(i + 1)
	if i > v.lastSet {
		v.lastSet = i
	}
	v.base.SetNull(i)
}

func (v *Variable) SetValueCount(n int) {
	v.base.SetValueCount(n)
	v.fillHoles(n)
	if n-1 > v.lastSet {
		v.lastSet = n - 1
	}
}

// Reset empties the vector so rows can be set again from row 0. Allocated capacity is kept.
func (v *Variable) Reset() {
	memory.Set(v.validity.Bytes(), 0)
	memory.Set(v.offsets.Bytes(), 0)
	v.lastSet = -1
	v.count = 0
}

// ValueRange returns the start and end of row i within Data
func (v *Variable) ValueRange(i int) (int, int) {
	return v.offset(i), v.offset(i + 1)
}

func (v *Variable) Bytes(i int) []byte {
	start, end := v.ValueRange(i)
	return v.data.Bytes()[start:end]
}

func (v *Variable) String(i int) string {
	return string(v.Bytes(i))
}

// Data returns the whole value buffer
func (v *Variable) Data() []byte {
	return v.data.Bytes()
}

// Offsets returns the raw little-endian offsets, capacity+1 entries
func (v *Variable) Offsets() []byte {
	return v.offsets.Bytes()
}

func (v *Variable) offset(i int) int {
	o, _ := common.ReadUint32FromBufferLE(v.offsets.Bytes(), 4*i)
	return int(o)
}

// fillHoles records every row between the last one set and i (exclusive) as empty
func (v *Variable) fillHoles(i int) {
	if i <= v.lastSet {
		panic(fmt.Sprintf("row %d set out of order, last set row is %d", i, v.lastSet))
	}
	end := v.offset(v.lastSet + 1)
	for j := v.lastSet + 1; j < i; j++ {
		common.WriteUint32ToBufferLE(v.offsets.Bytes(), 4*(j+1), uint32(end))
	}
}

func (v *Variable) Release() {
	v.release()
	v.offsets.Release()
	v.data.Release()
	v.offsets = nil
	v.data = nil
	v.lastSet = -1
}
