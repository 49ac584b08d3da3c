// Package vector holds the columnar side of the transcoder: one column of a batch with a packed validity bitmap.
//
// Buffers are allocated from an Arrow memory.Allocator and must be returned with Release. Validity bitmaps are
// LSB-first with 1 meaning the value is present, the same layout Arrow uses, and are always padded to whole 64-bit
// words so they can be scanned a word at a time.
package vector

import (
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
)

// Vector is a single column of a batch
type Vector interface {
	Name() string

	// ValueCount is the number of rows populated, as recorded by SetValueCount
	ValueCount() int

	// Capacity is the number of rows the vector has been allocated for
	Capacity() int

	// Validity returns the validity bitmap, covering at least Capacity rows
	Validity() []byte

	IsNull(i int) bool

	SetNull(i int)

	SetValueCount(n int)

	Release()
}

type base struct {
	name     string
	mem      memory.Allocator
	validity *memory.Buffer
	capacity int
	count    int
}

func newBase(mem memory.Allocator, name string) base {
	return base{name: name, mem: mem, validity: memory.NewResizableBuffer(mem)}
}

func (b *base) Name() string {
	return b.name
}

func (b *base) ValueCount() int {
	return b.count
}

func (b *base) Capacity() int {
	return b.capacity
}

func (b *base) Validity() []byte {
	return b.validity.Bytes()
}

func (b *base) IsNull(i int) bool {
	return !bitutil.BitIsSet(b.validity.Bytes(), i)
}

func (b *base) SetNull(i int) {
	bitutil.ClearBit(b.validity.Bytes(), i)
}

func (b *base) setPresent(i int) {
	bitutil.SetBit(b.validity.Bytes(), i)
}

func (b *base) SetValueCount(n int) {
	if n > b.capacity {
		panic("value count exceeds vector capacity")
	}
	b.count = n
}

func (b *base) allocateValidity(capacity int) {
	growBuffer(b.validity, BitmapBytes(capacity))
}

func (b *base) release() {
	b.validity.Release()
	b.validity = nil
	b.capacity = 0
	b.count = 0
}

// BitmapBytes is the size of a bitmap holding n bits, rounded up to whole 64-bit words
func BitmapBytes(n int) int {
	return common.RoundUpToMultiple(int(bitutil.BytesForBits(int64(n))), 8)
}

// growBuffer resizes buf to size bytes, keeping existing content and zeroing anything new. Buffers never shrink.
func growBuffer(buf *memory.Buffer, size int) {
	prev := buf.Len()
	if size <= prev {
		return
	}
	buf.Resize(size)
	memory.Set(buf.Bytes()[prev:], 0)
}
