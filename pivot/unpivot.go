package pivot

import (
	"fmt"

	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/kunichan2013/dremio-oss/vector"
)

// Unpivot reads the first count rows of the fixed block store back into out, one vector per field
func Unpivot(layout *Layout, fixed *FixedBlockStore, variable *VariableBlockStore, count int, out []vector.Vector) error {
	return UnpivotRange(layout, fixed, variable, 0, count, out)
}

// UnpivotRange reads rows [start, start+count) of the fixed block store into rows [0, count) of out and sets the
// value count of every output vector to count. Output vectors must already be allocated for count rows, variable
// width outputs also for VariableDataSize bytes. Reading the same unmodified rows again gives the same output.
func UnpivotRange(layout *Layout, fixed *FixedBlockStore, variable *VariableBlockStore, start int, count int,
	out []vector.Vector) error {
	if len(out) != layout.FieldCount() {
		return errors.NewFieldCountMismatchError(layout.FieldCount(), len(out))
	}
	if fixed.RowWidth() != layout.RowWidth() {
		return errors.Errorf("fixed block store row width is %d but layout row width is %d", fixed.RowWidth(), layout.RowWidth())
	}
	if start < 0 || count < 0 {
		return errors.Errorf("invalid row range start %d count %d", start, count)
	}
	if start+count > fixed.RowCount() {
		return errors.NewRowCountMismatchError("fixed block store", start+count, fixed.RowCount())
	}
	for i, v := range out {
		field := layout.Field(i)
		kind, err := KindOf(v)
		if err != nil {
			return err
		}
		if kind != field.Kind {
			return errors.NewFieldKindMismatchError(field.Name, field.Kind.String(), kind.String())
		}
		if v.Capacity() < count {
			return errors.NewBufferTooSmallError(v.Name(), count, v.Capacity())
		}
		if vv, ok := v.(*vector.Variable); ok {
			required, err := VariableDataSize(layout, fixed, variable, i, start, count)
			if err != nil {
				return err
			}
			if vv.DataCapacity() < required {
				return errors.NewBufferTooSmallError(v.Name(), required, vv.DataCapacity())
			}
		}
	}
	for i, v := range out {
		switch vec := v.(type) {
		case *vector.Fixed:
			unpivotFixed(layout, i, fixed, start, count, vec)
		case *vector.Bit:
			unpivotBit(layout, i, fixed, start, count, vec)
		case *vector.Variable:
			unpivotVariable(layout, i, fixed, variable, start, count, vec)
		default:
			panic(fmt.Sprintf("unexpected vector type %T", v))
		}
		v.SetValueCount(count)
	}
	return nil
}

// VariableDataSize is the number of bytes the non-null values of a variable width field take over rows
// [start, start+count). Pointer slots are checked against the variable block store.
func VariableDataSize(layout *Layout, fixed *FixedBlockStore, variable *VariableBlockStore, fieldIndex int, start int,
	count int) (int, error) {
	if layout.Field(fieldIndex).Kind.Kind != KindVariable {
		return 0, nil
	}
	slot := layout.variableSlot(fieldIndex)
	nullByte, nullMask := layout.NullBit(fieldIndex)
	rowWidth := layout.RowWidth()
	blocks := fixed.Bytes()
	storeLen := 0
	if variable != nil {
		storeLen = variable.Len()
	}
	total := 0
	block := start * rowWidth
	for i := 0; i < count; i++ {
		if blocks[block+nullByte]&nullMask == 0 {
			offset, off := common.ReadUint32FromBufferLE(blocks, block+slot.Offset)
			length, _ := common.ReadUint32FromBufferLE(blocks, off)
			if int(offset)+int(length) > storeLen {
				return 0, errors.NewBufferTooSmallError("variable block store", int(offset)+int(length), storeLen)
			}
			total += int(length)
		}
		block += rowWidth
	}
	return total, nil
}

// nullWord gathers the null bits of field for the n rows starting at the given block offset
func nullWord(blocks []byte, block int, rowWidth int, nullByte int, nullMask byte, n int) uint64 {
	var nulls uint64
	for i := 0; i < n; i++ {
		if blocks[block+nullByte]&nullMask != 0 {
			nulls |= 1 << uint(i)
		}
		block += rowWidth
	}
	return nulls
}

func unpivotFixed(layout *Layout, fieldIndex int, fixed *FixedBlockStore, start int, count int, out *vector.Fixed) {
	slot := layout.fixedSlot(fieldIndex)
	nullByte, nullMask := layout.NullBit(fieldIndex)
	rowWidth := layout.RowWidth()
	width := slot.Width
	blocks := fixed.Bytes()
	dst := out.Data()
	validity := out.Validity()

	for rowBase := 0; rowBase < count; rowBase += WordBits {
		n := wordRows(count, rowBase)
		all := wordMask(n)
		block := (start + rowBase) * rowWidth
		valid := ^nullWord(blocks, block, rowWidth, nullByte, nullMask, n) & all
		dstOff := rowBase * width
		switch valid {
		case all:
			for i := 0; i < n; i++ {
				copy(dst[dstOff:dstOff+width], blocks[block+slot.Offset:block+slot.Offset+width])
				block += rowWidth
				dstOff += width
			}
		case 0:
			clear(dst[dstOff : dstOff+n*width])
		default:
			for i := 0; i < n; i++ {
				if valid&(1<<uint(i)) != 0 {
					copy(dst[dstOff:dstOff+width], blocks[block+slot.Offset:block+slot.Offset+width])
				} else {
					clear(dst[dstOff : dstOff+width])
				}
				block += rowWidth
				dstOff += width
			}
		}
		common.WriteBitmapWordLE(validity, rowBase/WordBits, valid, n)
	}
}

func unpivotBit(layout *Layout, fieldIndex int, fixed *FixedBlockStore, start int, count int, out *vector.Bit) {
	slot := layout.bitSlot(fieldIndex)
	nullByte, nullMask := layout.NullBit(fieldIndex)
	valueByte, valueMask := slot.Bit/8, byte(1)<<uint(slot.Bit%8)
	rowWidth := layout.RowWidth()
	blocks := fixed.Bytes()
	validity := out.Validity()
	values := out.Values()

	for rowBase := 0; rowBase < count; rowBase += WordBits {
		n := wordRows(count, rowBase)
		all := wordMask(n)
		block := (start + rowBase) * rowWidth
		valid := ^nullWord(blocks, block, rowWidth, nullByte, nullMask, n) & all
		var bits uint64
		switch valid {
		case 0:
		default:
			for i := 0; i < n; i++ {
				if blocks[block+valueByte]&valueMask != 0 {
					bits |= 1 << uint(i)
				}
				block += rowWidth
			}
			bits &= valid
		}
		word := rowBase / WordBits
		common.WriteBitmapWordLE(values, word, bits, n)
		common.WriteBitmapWordLE(validity, word, valid, n)
	}
}

func unpivotVariable(layout *Layout, fieldIndex int, fixed *FixedBlockStore, variable *VariableBlockStore, start int,
	count int, out *vector.Variable) {
	slot := layout.variableSlot(fieldIndex)
	nullByte, nullMask := layout.NullBit(fieldIndex)
	rowWidth := layout.RowWidth()
	blocks := fixed.Bytes()
	out.Reset()
	validity := out.Validity()

	readValue := func(block int, row int) {
		offset, off := common.ReadUint32FromBufferLE(blocks, block+slot.Offset)
		length, _ := common.ReadUint32FromBufferLE(blocks, off)
		out.SetBytes(row, variable.Slice(int(offset), int(length)))
	}

	for rowBase := 0; rowBase < count; rowBase += WordBits {
		n := wordRows(count, rowBase)
		all := wordMask(n)
		block := (start + rowBase) * rowWidth
		valid := ^nullWord(blocks, block, rowWidth, nullByte, nullMask, n) & all
		switch valid {
		case all:
			for i := 0; i < n; i++ {
				readValue(block, rowBase+i)
				block += rowWidth
			}
		case 0:
			// null rows are left as holes, the next value or SetValueCount records them as empty
		default:
			for i := 0; i < n; i++ {
				if valid&(1<<uint(i)) != 0 {
					readValue(block, rowBase+i)
				}
				block += rowWidth
			}
		}
		common.WriteBitmapWordLE(validity, rowBase/WordBits, valid, n)
	}
}
