package vector

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
)

// FromArrow copies an Arrow array into a new vector allocated from mem. Array slices with a non-zero offset are
// supported, the resulting vector always starts at row 0.
func FromArrow(mem memory.Allocator, name string, arr arrow.Array) (Vector, error) {
	n := arr.Len()
	switch a := arr.(type) {
	case *array.Boolean:
		v := NewBit(mem, name)
		v.Allocate(n)
		for i := 0; i < n; i++ {
			if a.IsValid(i) {
				v.SetBool(i, a.Value(i))
			}
		}
		v.SetValueCount(n)
		return v, nil
	case *array.String:
		v := NewVariable(mem, name)
		v.Allocate(n, len(a.ValueBytes()))
		for i := 0; i < n; i++ {
			if a.IsValid(i) {
				v.SetString(i, a.Value(i))
			}
		}
		v.SetValueCount(n)
		return v, nil
	case *array.Binary:
		v := NewVariable(mem, name)
		v.Allocate(n, len(a.ValueBytes()))
		for i := 0; i < n; i++ {
			if a.IsValid(i) {
				v.SetBytes(i, a.Value(i))
			}
		}
		v.SetValueCount(n)
		return v, nil
	}
	fw, ok := arr.DataType().(arrow.FixedWidthDataType)
	if !ok || fw.BitWidth()%8 != 0 {
		return nil, errors.NewUnsupportedFieldKindError(name, arr.DataType().String())
	}
	width := fw.BitWidth() / 8
	switch width {
	case 1, 2, 4, 8, 16:
	default:
		return nil, errors.NewUnsupportedFieldKindError(name, arr.DataType().String())
	}
	v := NewFixed(mem, name, width)
	v.Allocate(n)
	if n > 0 {
		data := arr.Data()
		values := data.Buffers()[1].Bytes()
		copy(v.Data(), values[data.Offset()*width:(data.Offset()+n)*width])
		for i := 0; i < n; i++ {
			if arr.IsValid(i) {
				v.setPresent(i)
			}
		}
	}
	v.SetValueCount(n)
	return v, nil
}

// ToArrow copies the populated rows of v into a new Arrow array of type dt. Null rows of fixed width vectors keep
// whatever bytes the vector holds for them.
func ToArrow(v Vector, dt arrow.DataType) (arrow.Array, error) {
	n := v.ValueCount()
	nulls := n - bitutil.CountSetBits(v.Validity(), 0, n)
	validity := memory.NewBufferBytes(common.CopyByteSlice(v.Validity()[:bitutil.BytesForBits(int64(n))]))
	var buffers []*memory.Buffer
	switch vec := v.(type) {
	case *Fixed:
		fw, ok := dt.(arrow.FixedWidthDataType)
		if !ok || dt.ID() == arrow.BOOL || fw.BitWidth() != vec.Width()*8 {
			return nil, errors.NewFieldKindMismatchError(v.Name(), dt.String(), fmt.Sprintf("fixed(%d)", vec.Width()))
		}
		buffers = []*memory.Buffer{validity, memory.NewBufferBytes(common.CopyByteSlice(vec.Data()[:n*vec.Width()]))}
	case *Bit:
		if dt.ID() != arrow.BOOL {
			return nil, errors.NewFieldKindMismatchError(v.Name(), dt.String(), "bit")
		}
		values := common.CopyByteSlice(vec.Values()[:bitutil.BytesForBits(int64(n))])
		buffers = []*memory.Buffer{validity, memory.NewBufferBytes(values)}
	case *Variable:
		if dt.ID() != arrow.STRING && dt.ID() != arrow.BINARY {
			return nil, errors.NewFieldKindMismatchError(v.Name(), dt.String(), "variable")
		}
		end := vec.offset(n)
		offsets := common.CopyByteSlice(vec.Offsets()[:4*(n+1)])
		buffers = []*memory.Buffer{validity, memory.NewBufferBytes(offsets), memory.NewBufferBytes(common.CopyByteSlice(vec.Data()[:end]))}
	default:
		return nil, errors.Errorf("unexpected vector type %T", v)
	}
	data := array.NewData(dt, n, buffers, nil, nulls, 0)
	defer data.Release()
	return array.MakeFromData(data), nil
}
