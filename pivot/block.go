package pivot

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
)

// initialVariableBytesPerField sizes a new variable block store before anything has been appended
const initialVariableBytesPerField = 1024

// FixedBlockStore is an array of fixed width row blocks. Row r occupies bytes [r*RowWidth, (r+1)*RowWidth).
//
// The store has a write cursor, RowCount, which is where Pivot writes its next batch. Capacity only grows through
// EnsureAvailableBlocks, the engines never grow a store.
type FixedBlockStore struct {
	buf      *memory.Buffer
	rowWidth int
	capacity int
	rowCount int
}

func NewFixedBlockStore(mem memory.Allocator, rowWidth int) *FixedBlockStore {
	return &FixedBlockStore{buf: memory.NewResizableBuffer(mem), rowWidth: rowWidth}
}

// EnsureAvailableBlocks makes sure there is room for rows more rows after the cursor. Existing blocks are kept and
// new ones are zeroed.
func (s *FixedBlockStore) EnsureAvailableBlocks(rows int) {
	required := s.rowCount + rows
	if required <= s.capacity {
		return
	}
	prev := s.buf.Len()
	s.buf.Resize(required * s.rowWidth)
	memory.Set(s.buf.Bytes()[prev:], 0)
	s.capacity = required
}

func (s *FixedBlockStore) RowWidth() int {
	return s.rowWidth
}

func (s *FixedBlockStore) Capacity() int {
	return s.capacity
}

// RowCount is the number of rows written so far, and the row the next Pivot starts at
func (s *FixedBlockStore) RowCount() int {
	return s.rowCount
}

// Bytes returns the blocks of all allocated rows
func (s *FixedBlockStore) Bytes() []byte {
	return s.buf.Bytes()[:s.capacity*s.rowWidth]
}

func (s *FixedBlockStore) Block(row int) []byte {
	start := row * s.rowWidth
	return s.buf.Bytes()[start : start+s.rowWidth]
}

func (s *FixedBlockStore) ByteAt(row int, offset int) byte {
	return s.buf.Bytes()[row*s.rowWidth+offset]
}

// BitAt returns bit number bit of the row block, counting from the least significant bit of its first byte
func (s *FixedBlockStore) BitAt(row int, bit int) bool {
	return s.ByteAt(row, bit/8)&(byte(1)<<uint(bit%8)) != 0
}

func (s *FixedBlockStore) markWritten(end int) {
	if end > s.rowCount {
		s.rowCount = end
	}
}

// Reset rewinds the cursor to row 0 and zeroes the blocks written so far, keeping the memory
func (s *FixedBlockStore) Reset() {
	memory.Set(s.buf.Bytes()[:s.rowCount*s.rowWidth], 0)
	s.rowCount = 0
}

func (s *FixedBlockStore) Release() {
	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
	s.capacity = 0
	s.rowCount = 0
}

// VariableBlockStore is an append only buffer holding the payloads of variable width fields. Offsets handed out by
// Append stay valid until Reset or Release.
type VariableBlockStore struct {
	buf  *memory.Buffer
	size int
}

// NewVariableBlockStore creates a store with an initial size hint derived from the number of variable fields
func NewVariableBlockStore(mem memory.Allocator, variableFieldCount int) *VariableBlockStore {
	s := &VariableBlockStore{buf: memory.NewResizableBuffer(mem)}
	if variableFieldCount > 0 {
		s.EnsureAvailableDataSpace(variableFieldCount * initialVariableBytesPerField)
	}
	return s
}

// EnsureAvailableDataSpace makes sure bytes more bytes can be appended. Existing data is kept.
func (s *VariableBlockStore) EnsureAvailableDataSpace(bytes int) {
	required := s.size + bytes
	if required <= s.buf.Len() {
		return
	}
	prev := s.buf.Len()
	newSize := common.RoundUpToMultiple(required, 64)
	if 2*prev > newSize {
		newSize = 2 * prev
	}
	s.buf.Resize(newSize)
	memory.Set(s.buf.Bytes()[prev:], 0)
}

func (s *VariableBlockStore) Capacity() int {
	return s.buf.Len()
}

// Len is the append cursor, the number of bytes appended so far
func (s *VariableBlockStore) Len() int {
	return s.size
}

func (s *VariableBlockStore) Available() int {
	return s.buf.Len() - s.size
}

// Append copies value to the end of the store. It never grows the store, it fails with BufferTooSmall instead.
func (s *VariableBlockStore) Append(value []byte) (int, int, error) {
	if len(value) > s.Available() {
		return 0, 0, errors.NewBufferTooSmallError("variable block store", s.size+len(value), s.buf.Len())
	}
	offset, length := s.appendUnchecked(value)
	return offset, length, nil
}

func (s *VariableBlockStore) appendUnchecked(value []byte) (int, int) {
	offset := s.size
	copy(s.buf.Bytes()[offset:], value)
	s.size += len(value)
	return offset, len(value)
}

func (s *VariableBlockStore) Slice(offset int, length int) []byte {
	return s.buf.Bytes()[offset : offset+length]
}

// Reset rewinds the append cursor, invalidating every offset handed out so far
func (s *VariableBlockStore) Reset() {
	memory.Set(s.buf.Bytes()[:s.size], 0)
	s.size = 0
}

func (s *VariableBlockStore) Release() {
	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
	s.size = 0
}
