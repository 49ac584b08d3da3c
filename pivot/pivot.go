package pivot

import (
	"fmt"
	"math"

	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/kunichan2013/dremio-oss/vector"
)

// Pivot writes count rows of every field into the row blocks starting at the fixed store's cursor, then advances the
// cursor. Fields are written one after the other, so the result is byte for byte the same as calling PivotField for
// each field in order.
//
// All arguments are checked before anything is written. The fixed store must have room for count more rows and the
// variable store must have room for every non-null variable width value.
func Pivot(layout *Layout, in []vector.Vector, count int, fixed *FixedBlockStore, variable *VariableBlockStore) error {
	if len(in) != layout.FieldCount() {
		return errors.NewFieldCountMismatchError(layout.FieldCount(), len(in))
	}
	start := fixed.RowCount()
	if err := checkFixedStore(layout, fixed, start, count); err != nil {
		return err
	}
	for i, v := range in {
		if err := checkInput(layout, i, v, count); err != nil {
			return err
		}
	}
	if err := checkVariableSpace(layout, RequiredVariableSpace(layout, in, count), variable); err != nil {
		return err
	}
	for i, v := range in {
		pivotField(layout, i, v, start, count, fixed, variable)
	}
	fixed.markWritten(start + count)
	return nil
}

// PivotField writes count rows of a single field into the row blocks starting at row start. Fields of one batch can
// be pivoted independently, in any order.
func PivotField(layout *Layout, fieldIndex int, in vector.Vector, start int, count int, fixed *FixedBlockStore,
	variable *VariableBlockStore) error {
	if fieldIndex < 0 || fieldIndex >= layout.FieldCount() {
		return errors.Errorf("field index %d out of range, layout has %d fields", fieldIndex, layout.FieldCount())
	}
	if err := checkFixedStore(layout, fixed, start, count); err != nil {
		return err
	}
	if err := checkInput(layout, fieldIndex, in, count); err != nil {
		return err
	}
	if layout.Field(fieldIndex).Kind.Kind == KindVariable {
		if err := checkVariableSpace(layout, variableBytes(in.(*vector.Variable), count), variable); err != nil {
			return err
		}
	}
	pivotField(layout, fieldIndex, in, start, count, fixed, variable)
	fixed.markWritten(start + count)
	return nil
}

// RequiredVariableSpace is the number of bytes Pivot will append to the variable block store for these vectors
func RequiredVariableSpace(layout *Layout, in []vector.Vector, count int) int {
	total := 0
	for _, slot := range layout.variables {
		if v, ok := in[slot.FieldIndex].(*vector.Variable); ok {
			total += variableBytes(v, count)
		}
	}
	return total
}

// variableBytes sums the lengths of the non-null values in the first count rows of v
func variableBytes(v *vector.Variable, count int) int {
	validity := v.Validity()
	total := 0
	for rowBase := 0; rowBase < count; rowBase += WordBits {
		n := wordRows(count, rowBase)
		valid := common.ReadBitmapWordLE(validity, rowBase/WordBits) & wordMask(n)
		if valid == wordMask(n) {
			s, _ := v.ValueRange(rowBase)
			_, e := v.ValueRange(rowBase + n - 1)
			total += e - s
			continue
		}
		for i := 0; valid != 0 && i < n; i++ {
			if valid&(1<<uint(i)) != 0 {
				s, e := v.ValueRange(rowBase + i)
				total += e - s
			}
		}
	}
	return total
}

func checkFixedStore(layout *Layout, fixed *FixedBlockStore, start int, count int) error {
	if fixed.RowWidth() != layout.RowWidth() {
		return errors.Errorf("fixed block store row width is %d but layout row width is %d", fixed.RowWidth(), layout.RowWidth())
	}
	if start < 0 || count < 0 {
		return errors.Errorf("invalid row range start %d count %d", start, count)
	}
	if start+count > fixed.Capacity() {
		return errors.NewBufferTooSmallError("fixed block store", start+count, fixed.Capacity())
	}
	return nil
}

func checkInput(layout *Layout, fieldIndex int, v vector.Vector, count int) error {
	field := layout.Field(fieldIndex)
	kind, err := KindOf(v)
	if err != nil {
		return err
	}
	if kind != field.Kind {
		return errors.NewFieldKindMismatchError(field.Name, field.Kind.String(), kind.String())
	}
	if v.ValueCount() != count {
		return errors.NewRowCountMismatchError(field.Name, count, v.ValueCount())
	}
	return nil
}

func checkVariableSpace(layout *Layout, required int, variable *VariableBlockStore) error {
	if layout.VariableCount() == 0 {
		return nil
	}
	if variable == nil {
		return errors.NewBufferTooSmallError("variable block store", required, 0)
	}
	if required > variable.Available() {
		return errors.NewBufferTooSmallError("variable block store", variable.Len()+required, variable.Capacity())
	}
	if variable.Len()+required > math.MaxUint32 {
		return errors.NewBufferTooSmallError("variable block store", variable.Len()+required, math.MaxUint32)
	}
	return nil
}

func pivotField(layout *Layout, fieldIndex int, in vector.Vector, start int, count int, fixed *FixedBlockStore,
	variable *VariableBlockStore) {
	switch v := in.(type) {
	case *vector.Fixed:
		pivotFixed(layout, fieldIndex, v, start, count, fixed)
	case *vector.Bit:
		pivotBit(layout, fieldIndex, v, start, count, fixed)
	case *vector.Variable:
		pivotVariable(layout, fieldIndex, v, start, count, fixed, variable)
	default:
		panic(fmt.Sprintf("unexpected vector type %T", in))
	}
}

// pivotFixed copies one fixed width field. Rows are taken a word of validity at a time: a word with every row present
// is copied without looking at individual rows, a word with no row present only sets null bits, anything else
// branches per row.
func pivotFixed(layout *Layout, fieldIndex int, in *vector.Fixed, start int, count int, fixed *FixedBlockStore) {
	slot := layout.fixedSlot(fieldIndex)
	nullByte, nullMask := layout.NullBit(fieldIndex)
	rowWidth := layout.RowWidth()
	width := slot.Width
	blocks := fixed.Bytes()
	src := in.Data()
	validity := in.Validity()

	for rowBase := 0; rowBase < count; rowBase += WordBits {
		n := wordRows(count, rowBase)
		all := wordMask(n)
		valid := common.ReadBitmapWordLE(validity, rowBase/WordBits) & all
		block := (start + rowBase) * rowWidth
		srcOff := rowBase * width
		switch valid {
		case all:
			for i := 0; i < n; i++ {
				copy(blocks[block+slot.Offset:block+slot.Offset+width], src[srcOff:srcOff+width])
				blocks[block+nullByte] &^= nullMask
				block += rowWidth
				srcOff += width
			}
		case 0:
			for i := 0; i < n; i++ {
				clear(blocks[block+slot.Offset : block+slot.Offset+width])
				blocks[block+nullByte] |= nullMask
				block += rowWidth
			}
		default:
			for i := 0; i < n; i++ {
				if valid&(1<<uint(i)) != 0 {
					copy(blocks[block+slot.Offset:block+slot.Offset+width], src[srcOff:srcOff+width])
					blocks[block+nullByte] &^= nullMask
				} else {
					clear(blocks[block+slot.Offset : block+slot.Offset+width])
					blocks[block+nullByte] |= nullMask
				}
				block += rowWidth
				srcOff += width
			}
		}
	}
}

// pivotBit copies a boolean field. Value bits are read a word at a time from the vector and written one bit per
// row block. Null rows always store a zero value bit.
func pivotBit(layout *Layout, fieldIndex int, in *vector.Bit, start int, count int, fixed *FixedBlockStore) {
	slot := layout.bitSlot(fieldIndex)
	nullByte, nullMask := layout.NullBit(fieldIndex)
	valueByte, valueShift := slot.Bit/8, uint(slot.Bit%8)
	valueMask := byte(1) << valueShift
	rowWidth := layout.RowWidth()
	blocks := fixed.Bytes()
	validity := in.Validity()
	values := in.Values()

	for rowBase := 0; rowBase < count; rowBase += WordBits {
		n := wordRows(count, rowBase)
		all := wordMask(n)
		word := rowBase / WordBits
		valid := common.ReadBitmapWordLE(validity, word) & all
		block := (start + rowBase) * rowWidth
		switch valid {
		case all:
			bits := common.ReadBitmapWordLE(values, word)
			for i := 0; i < n; i++ {
				b := blocks[block+valueByte] &^ valueMask
				blocks[block+valueByte] = b | byte((bits>>uint(i))&1)<<valueShift
				blocks[block+nullByte] &^= nullMask
				block += rowWidth
			}
		case 0:
			for i := 0; i < n; i++ {
				blocks[block+valueByte] &^= valueMask
				blocks[block+nullByte] |= nullMask
				block += rowWidth
			}
		default:
			bits := common.ReadBitmapWordLE(values, word) & valid
			for i := 0; i < n; i++ {
				b := blocks[block+valueByte] &^ valueMask
				blocks[block+valueByte] = b | byte((bits>>uint(i))&1)<<valueShift
				if valid&(1<<uint(i)) != 0 {
					blocks[block+nullByte] &^= nullMask
				} else {
					blocks[block+nullByte] |= nullMask
				}
				block += rowWidth
			}
		}
	}
}

// pivotVariable appends each non-null value to the variable block store and records its offset and length in the
// row's pointer slot. Null rows get a zeroed slot and append nothing.
func pivotVariable(layout *Layout, fieldIndex int, in *vector.Variable, start int, count int, fixed *FixedBlockStore,
	variable *VariableBlockStore) {
	slot := layout.variableSlot(fieldIndex)
	nullByte, nullMask := layout.NullBit(fieldIndex)
	rowWidth := layout.RowWidth()
	blocks := fixed.Bytes()
	validity := in.Validity()
	data := in.Data()

	writeValue := func(block int, row int) {
		s, e := in.ValueRange(row)
		offset, length := variable.appendUnchecked(data[s:e])
		off := common.WriteUint32ToBufferLE(blocks, block+slot.Offset, uint32(offset))
		common.WriteUint32ToBufferLE(blocks, off, uint32(length))
		blocks[block+nullByte] &^= nullMask
	}
	writeNull := func(block int) {
		clear(blocks[block+slot.Offset : block+slot.Offset+VariableSlotWidth])
		blocks[block+nullByte] |= nullMask
	}

	for rowBase := 0; rowBase < count; rowBase += WordBits {
		n := wordRows(count, rowBase)
		all := wordMask(n)
		valid := common.ReadBitmapWordLE(validity, rowBase/WordBits) & all
		block := (start + rowBase) * rowWidth
		switch valid {
		case all:
			for i := 0; i < n; i++ {
				writeValue(block, rowBase+i)
				block += rowWidth
			}
		case 0:
			for i := 0; i < n; i++ {
				writeNull(block)
				block += rowWidth
			}
		default:
			for i := 0; i < n; i++ {
				if valid&(1<<uint(i)) != 0 {
					writeValue(block, rowBase+i)
				} else {
					writeNull(block)
				}
				block += rowWidth
			}
		}
	}
}

// wordRows is the number of rows in the word starting at rowBase, only the last word of a batch can be short
func wordRows(count int, rowBase int) int {
	if n := count - rowBase; n < WordBits {
		return n
	}
	return WordBits
}

func wordMask(n int) uint64 {
	if n >= WordBits {
		return math.MaxUint64
	}
	return (uint64(1) << uint(n)) - 1
}
