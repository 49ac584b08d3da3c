package pivot

import (
	"bytes"
	"hash"

	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/twmb/murmur3"
)

// RowHasher computes murmur3 hashes of pivoted rows. Two rows holding the same values hash the same even when
// their variable width payloads sit at different offsets in the variable block store.
//
// A RowHasher is not safe for concurrent use.
type RowHasher struct {
	layout *Layout
	h      hash.Hash64
	lenBuf []byte
}

func NewRowHasher(layout *Layout) *RowHasher {
	return &RowHasher{layout: layout, h: murmur3.New64(), lenBuf: make([]byte, 0, 4)}
}

// Hash returns the hash of one row of the fixed block store
func (r *RowHasher) Hash(fixed *FixedBlockStore, variable *VariableBlockStore, row int) uint64 {
	r.h.Reset()
	block := fixed.Block(row)
	_, _ = r.h.Write(block[:r.layout.VariableOffset()])
	for _, slot := range r.layout.variables {
		nullByte, nullMask := r.layout.NullBit(slot.FieldIndex)
		if block[nullByte]&nullMask != 0 {
			continue
		}
		offset, off := common.ReadUint32FromBufferLE(block, slot.Offset)
		length, _ := common.ReadUint32FromBufferLE(block, off)
		r.lenBuf = common.AppendUint32ToBufferLE(r.lenBuf[:0], length)
		_, _ = r.h.Write(r.lenBuf)
		_, _ = r.h.Write(variable.Slice(int(offset), int(length)))
	}
	return r.h.Sum64()
}

// HashRow hashes a single pivoted row
func HashRow(layout *Layout, fixed *FixedBlockStore, variable *VariableBlockStore, row int) uint64 {
	return NewRowHasher(layout).Hash(fixed, variable, row)
}

// HashRows hashes rows [start, start+count) into hashes, which must have room for count values
func HashRows(layout *Layout, fixed *FixedBlockStore, variable *VariableBlockStore, start int, count int,
	hashes []uint64) error {
	if fixed.RowWidth() != layout.RowWidth() {
		return errors.Errorf("fixed block store row width is %d but layout row width is %d", fixed.RowWidth(), layout.RowWidth())
	}
	if start < 0 || count < 0 || start+count > fixed.RowCount() {
		return errors.NewRowCountMismatchError("fixed block store", start+count, fixed.RowCount())
	}
	if len(hashes) < count {
		return errors.NewBufferTooSmallError("hashes", count, len(hashes))
	}
	hasher := NewRowHasher(layout)
	for i := 0; i < count; i++ {
		hashes[i] = hasher.Hash(fixed, variable, start+i)
	}
	return nil
}

// RowsEqual reports whether row a of one pair of stores holds the same values as row b of another. Both must have
// been written with the same layout, and each row must lie below its store's row count.
func RowsEqual(layout *Layout, fixedA *FixedBlockStore, variableA *VariableBlockStore, a int,
	fixedB *FixedBlockStore, variableB *VariableBlockStore, b int) (bool, error) {
	if err := checkRow(layout, fixedA, a); err != nil {
		return false, err
	}
	if err := checkRow(layout, fixedB, b); err != nil {
		return false, err
	}
	blockA := fixedA.Block(a)
	blockB := fixedB.Block(b)
	prefix := layout.VariableOffset()
	if !bytes.Equal(blockA[:prefix], blockB[:prefix]) {
		return false, nil
	}
	for _, slot := range layout.variables {
		nullByte, nullMask := layout.NullBit(slot.FieldIndex)
		if blockA[nullByte]&nullMask != 0 {
			// null bits already matched as part of the prefix
			continue
		}
		payloadA, err := payload(blockA, slot.Offset, variableA)
		if err != nil {
			return false, err
		}
		payloadB, err := payload(blockB, slot.Offset, variableB)
		if err != nil {
			return false, err
		}
		if !bytes.Equal(payloadA, payloadB) {
			return false, nil
		}
	}
	return true, nil
}

func checkRow(layout *Layout, fixed *FixedBlockStore, row int) error {
	if fixed.RowWidth() != layout.RowWidth() {
		return errors.Errorf("fixed block store row width is %d but layout row width is %d", fixed.RowWidth(), layout.RowWidth())
	}
	if row < 0 || row >= fixed.RowCount() {
		return errors.NewRowCountMismatchError("fixed block store", row+1, fixed.RowCount())
	}
	return nil
}

// payload resolves the pointer slot at offset of block against the variable block store
func payload(block []byte, offset int, variable *VariableBlockStore) ([]byte, error) {
	start, off := common.ReadUint32FromBufferLE(block, offset)
	length, _ := common.ReadUint32FromBufferLE(block, off)
	if length == 0 {
		return nil, nil
	}
	storeLen := 0
	if variable != nil {
		storeLen = variable.Len()
	}
	if int(start)+int(length) > storeLen {
		return nil, errors.NewBufferTooSmallError("variable block store", int(start)+int(length), storeLen)
	}
	return variable.Slice(int(start), int(length)), nil
}
