package vector

import (
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Bit is a vector of booleans packed one bit per row, value bit i belongs to row i
type Bit struct {
	base
	values *memory.Buffer
}

func NewBit(mem memory.Allocator, name string) *Bit {
	return &Bit{base: newBase(mem, name), values: memory.NewResizableBuffer(mem)}
}

func (v *Bit) Allocate(capacity int) {
	v.allocateValidity(capacity)
	growBuffer(v.values, BitmapBytes(capacity))
	if capacity > v.capacity {
		v.capacity = capacity
	}
}

// Values returns the packed value bits, padded like the validity bitmap
func (v *Bit) Values() []byte {
	return v.values.Bytes()
}

func (v *Bit) SetBool(i int, val bool) {
	bitutil.SetBitTo(v.values.Bytes(), i, val)
	v.setPresent(i)
}

func (v *Bit) Bool(i int) bool {
	return bitutil.BitIsSet(v.values.Bytes(), i)
}

func (v *Bit) Release() {
	v.release()
	v.values.Release()
	v.values = nil
}
